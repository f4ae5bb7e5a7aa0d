package commands

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/ccollicutt/oldtimer/pkg/detector"
)

// DetectOptions holds command-line options for the detect command.
type DetectOptions struct {
	Output      string
	SampleSize  int
	WriteConfig string
}

// NewDetectCommand creates the detect command.
func NewDetectCommand(g *GlobalOptions) *cobra.Command {
	opts := &DetectOptions{}

	cmd := &cobra.Command{
		Use:   "detect <log-file>",
		Short: "Detect which markers a simulation log carries",
		Long: `Take a census of a simulation log: step, report, terminal and rung
markers, rung lines the pattern cannot parse, and how often each metric
keyword appears with a parsable timing.

Recommends a segmentation policy and can write a starter config file with
--write-config.

Example:
  oldtimer detect run.log
  oldtimer detect --sample 5000 run.log
  oldtimer detect -w oldtimer.yaml run.log`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDetect(cmd, args, g, opts)
		},
	}

	cmd.Flags().StringVarP(&opts.Output, "output", "o", "text", "Output format (text|json)")
	cmd.Flags().IntVarP(&opts.SampleSize, "sample", "n", 0, "Number of lines to examine (0 = whole log)")
	cmd.Flags().StringVarP(&opts.WriteConfig, "write-config", "w", "", "Write starter config to file (will not overwrite)")

	return cmd
}

func runDetect(cmd *cobra.Command, args []string, g *GlobalOptions, opts *DetectOptions) error {
	logFile := args[0]
	ctx := commandContext(cmd)
	out := cmd.OutOrStdout()

	if _, err := os.Stat(logFile); os.IsNotExist(err) {
		return fmt.Errorf("log file not found: %s", logFile)
	}

	cfg, err := loadConfig(ctx, g)
	if err != nil {
		return err
	}

	d, err := detector.New(detector.WithConfig(cfg), detector.WithSampleSize(opts.SampleSize))
	if err != nil {
		return fmt.Errorf("creating detector: %w", err)
	}

	census, err := d.DetectFromFile(ctx, logFile)
	if err != nil {
		return fmt.Errorf("detection failed: %w", err)
	}

	if opts.WriteConfig != "" {
		if err := writeStarterConfig(d, census, opts.WriteConfig); err != nil {
			return err
		}
		fmt.Fprintf(cmd.ErrOrStderr(), "Wrote starter config to: %s\n", opts.WriteConfig)
	}

	switch opts.Output {
	case "json":
		encoder := json.NewEncoder(out)
		encoder.SetIndent("", "  ")
		return encoder.Encode(census)
	case "text":
		outputDetectText(census, out)
		return nil
	default:
		return fmt.Errorf("unknown output format %q (use text or json)", opts.Output)
	}
}

func outputDetectText(c *detector.Census, w io.Writer) {
	fmt.Fprintln(w, "=== Marker Census ===")
	fmt.Fprintln(w)
	fmt.Fprintf(w, "File: %s\n", c.Source)
	fmt.Fprintf(w, "Lines examined: %d\n", c.SampledLines)
	fmt.Fprintln(w)

	fmt.Fprintf(w, "Step markers:      %d\n", c.StepMarkers)
	fmt.Fprintf(w, "Report markers:    %d (%d timed)\n", c.ReportMarkers, c.TimedReports)
	if c.Terminated() {
		fmt.Fprintf(w, "Terminal marker:   line %d\n", c.TerminalLine+1)
	} else {
		fmt.Fprintln(w, "Terminal marker:   not found")
	}
	fmt.Fprintf(w, "Rung markers:      %d (%d malformed)\n", c.RungMarkers, c.MalformedRungs)
	for _, ex := range c.MalformedExamples {
		fmt.Fprintf(w, "  ! %s\n", ex)
	}
	fmt.Fprintln(w)

	fmt.Fprintln(w, "Metric keywords:")
	for _, hit := range c.Keywords {
		fmt.Fprintf(w, "  %-20s %5d lines, %5d timed  (%q)\n", hit.Metric, hit.Lines, hit.Timed, hit.Keyword)
	}
	fmt.Fprintln(w)

	fmt.Fprintf(w, "Recommended segmentation policy: %s\n", c.Recommended)
	for _, n := range c.Notes {
		fmt.Fprintf(w, "Note: %s\n", n)
	}
}

// writeStarterConfig writes the recommended configuration to configPath.
func writeStarterConfig(d *detector.Detector, c *detector.Census, configPath string) error {
	if _, err := os.Stat(configPath); err == nil {
		return fmt.Errorf("config file already exists: %s (will not overwrite)", configPath)
	}

	// #nosec G304 - config path is provided by user via CLI
	f, err := os.Create(configPath)
	if err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	if err := detector.WriteConfig(f, d.StarterConfig(c), c); err != nil {
		_ = f.Close()
		return err
	}
	return f.Close()
}
