package commands

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/ccollicutt/oldtimer/internal/ctxlog"
	"github.com/ccollicutt/oldtimer/pkg/config"
	"github.com/ccollicutt/oldtimer/pkg/output"
	"github.com/ccollicutt/oldtimer/pkg/parser"
	"github.com/ccollicutt/oldtimer/pkg/registry"
	"github.com/ccollicutt/oldtimer/pkg/webhook"
)

// ReportOptions holds command-line options for the report command.
type ReportOptions struct {
	Output  string
	Verbose bool
	Quiet   bool
	Steps   bool

	// Webhook options
	WebhookURL     string
	WebhookToken   string
	WebhookTrigger string
}

// NewReportCommand creates the report command.
func NewReportCommand(g *GlobalOptions) *cobra.Command {
	opts := &ReportOptions{}

	cmd := &cobra.Command{
		Use:   "report <log-file>...",
		Short: "Summarize per-step timings of simulation logs",
		Long: `Parse one or more simulation logs and print per-step and whole-log
timing summaries (sum, average, min, max and standard deviation) for every
metric.

Globs are expanded. A log that cannot be read is reported on stderr and
skipped; the remaining logs are still reported.

Exit codes:
  0 - All logs parsed cleanly
  1 - Some logs carried diagnostics (e.g. malformed rung lines)
  2 - A log could not be read, or configuration/runtime error`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runReport(cmd, args, g, opts)
		},
	}

	cmd.Flags().StringVarP(&opts.Output, "output", "o", "text", "Output format (text|json)")
	cmd.Flags().BoolVarP(&opts.Verbose, "verbose", "v", false, "Show sample counts, per-step sum summaries and timing")
	cmd.Flags().BoolVarP(&opts.Quiet, "quiet", "q", false, "Summary only, no details")
	cmd.Flags().BoolVar(&opts.Steps, "steps", true, "Show per-step blocks")

	cmd.Flags().StringVar(&opts.WebhookURL, "webhook-url", "", "Webhook endpoint URL")
	cmd.Flags().StringVar(&opts.WebhookToken, "webhook-token", "", "Bearer token for webhook auth")
	cmd.Flags().StringVar(&opts.WebhookTrigger, "webhook-trigger", string(config.WebhookTriggerAlways), "When to fire webhook (on_issues|always|never)")

	return cmd
}

func runReport(cmd *cobra.Command, args []string, g *GlobalOptions, opts *ReportOptions) error {
	ctx := commandContext(cmd)
	stdout, stderr := cmd.OutOrStdout(), cmd.ErrOrStderr()

	formatter, err := output.NewFormatter(opts.Output, output.FormatOptions{
		Verbose:   opts.Verbose,
		Quiet:     opts.Quiet,
		HideSteps: !opts.Steps,
	})
	if err != nil {
		return err
	}

	cfg, err := loadConfig(ctx, g)
	if err != nil {
		return err
	}

	files, err := parser.ExpandGlobs(args)
	if err != nil {
		return fmt.Errorf("expanding log paths: %w", err)
	}

	p, err := newParser(ctx, cfg)
	if err != nil {
		return err
	}

	result, err := p.ParseFiles(ctx, files)
	if err != nil {
		return fmt.Errorf("parsing logs: %w", err)
	}

	for _, f := range result.Failures {
		fmt.Fprintf(stderr, "Error: reading %s: %v\n", f.Path, f.Err)
	}
	if len(result.Models) == 0 {
		return fmt.Errorf("no log could be parsed (%d failed)", len(result.Failures))
	}

	reg := registry.New()
	names, err := register(reg, result.Models)
	if err != nil {
		return err
	}
	ctxlog.FromContext(ctx).Debug("registered logs", "names", reg.List())

	report := output.NewReport(result, names, g.ConfigPath)
	if err := formatter.Format(ctx, report, stdout); err != nil {
		return fmt.Errorf("formatting output: %w", err)
	}

	sendWebhooks(ctx, cfg, opts, report, stderr)

	switch {
	case result.Failed():
		ExitCode = 2
	case report.HasIssues():
		ExitCode = 1
	}

	return nil
}

// sendWebhooks sends the report to all configured webhooks.
// Errors are printed to stderr but don't fail the report.
func sendWebhooks(ctx context.Context, cfg *config.Config, opts *ReportOptions, report *output.Report, stderr io.Writer) {
	hooks := collectWebhooks(cfg, opts)
	if len(hooks) == 0 {
		return
	}

	client := webhook.NewClient(
		webhook.WithVersion(Version),
		webhook.WithLogger(ctxlog.FromContext(ctx)),
	)

	for _, resp := range client.Dispatch(ctx, hooks, report) {
		if resp.Success() {
			fmt.Fprintf(stderr, "Webhook %s: sent (%d, %s)\n", resp.Name, resp.StatusCode, resp.Duration)
		} else {
			fmt.Fprintf(stderr, "Webhook %s: failed (%v)\n", resp.Name, resp.Error)
		}
	}
}

// collectWebhooks merges config file webhooks with the CLI webhook.
func collectWebhooks(cfg *config.Config, opts *ReportOptions) []config.WebhookConfig {
	hooks := make([]config.WebhookConfig, 0, len(cfg.Webhooks)+1)
	hooks = append(hooks, cfg.Webhooks...)

	if opts.WebhookURL != "" {
		trigger := config.WebhookTrigger(opts.WebhookTrigger)
		if trigger == "" {
			trigger = config.WebhookTriggerAlways
		}

		hooks = append(hooks, config.WebhookConfig{
			Name:    "cli",
			URL:     opts.WebhookURL,
			Token:   opts.WebhookToken,
			Trigger: trigger,
			Timeout: config.DefaultWebhookTimeout,
		})
	}

	return hooks
}
