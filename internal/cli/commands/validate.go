package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ccollicutt/oldtimer/pkg/analyzer"
	"github.com/ccollicutt/oldtimer/pkg/config"
)

// NewValidateCommand creates the validate command.
func NewValidateCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "validate <config-file>",
		Short: "Validate a configuration file",
		Long: `Validate an oldtimer configuration file without parsing any log.

Checks:
  - YAML syntax
  - Segmentation, trailing and malformed-rung policies
  - Rung pattern validity and its named groups (from, to, gravity)
  - Metric keyword overrides
  - Webhook URLs, triggers and timeouts`,
		Args: cobra.ExactArgs(1),
		RunE: runValidate,
	}
}

func runValidate(cmd *cobra.Command, args []string) error {
	configPath := args[0]
	ctx := commandContext(cmd)
	out := cmd.OutOrStdout()

	fmt.Fprintf(out, "Validating %s...\n", configPath)

	cfg, err := config.Load(ctx, configPath)
	if err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}

	// NewParser also resolves the metric overrides.
	p, err := analyzer.NewParser(cfg)
	if err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}

	seg := cfg.Segmentation
	fmt.Fprintf(out, "\nConfiguration valid!\n")
	fmt.Fprintf(out, "  Segmentation:    %s (trailing: %s)\n", seg.Policy, seg.Trailing)
	fmt.Fprintf(out, "  Step marker:     %q\n", seg.StepMarker)
	fmt.Fprintf(out, "  Report marker:   %q\n", seg.ReportMarker)
	fmt.Fprintf(out, "  Terminal marker: %q\n", seg.TerminalMarker)
	fmt.Fprintf(out, "  Rung marker:     %q (malformed: %s)\n", cfg.Rungs.Marker, cfg.Rungs.Malformed)
	fmt.Fprintf(out, "  Webhooks:        %d\n", len(cfg.Webhooks))

	fmt.Fprintf(out, "\nMetric keywords:\n")
	for _, m := range analyzer.Metrics() {
		marker := ""
		if p.Keyword(m) != m.Keyword() {
			marker = " (override)"
		}
		fmt.Fprintf(out, "  %-18s %q%s\n", m, p.Keyword(m), marker)
	}

	return nil
}
