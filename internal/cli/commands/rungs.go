package commands

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ccollicutt/oldtimer/pkg/analyzer"
	"github.com/ccollicutt/oldtimer/pkg/chart"
)

// RungsOptions holds command-line options for the rungs command.
type RungsOptions struct {
	Metric string
	Output string
	Plot   string
}

// RungsOutput is the JSON form of the rungs command.
type RungsOutput struct {
	Log     string                `json:"log"`
	Metric  analyzer.Metric       `json:"metric"`
	Buckets []analyzer.RungBucket `json:"buckets"`
}

// NewRungsCommand creates the rungs command.
func NewRungsCommand(g *GlobalOptions) *cobra.Command {
	opts := &RungsOptions{}

	cmd := &cobra.Command{
		Use:   "rungs <log-file>",
		Short: "Total a metric per rung",
		Long: `Assign every sample of a metric to the rung interval it falls in and
total the time per starting rung across the whole log.

Samples logged before the first rung transition of their step are not
counted. Every rung that appears in the log is listed, even with no samples.

Example:
  oldtimer rungs run.log --metric Gravity
  oldtimer rungs run.log --metric Density -o json
  oldtimer rungs run.log --metric Gravity --plot gravity-rungs.png`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRungs(cmd, args, g, opts)
		},
	}

	cmd.Flags().StringVarP(&opts.Metric, "metric", "m", analyzer.Gravity.String(), "Metric to total")
	cmd.Flags().StringVarP(&opts.Output, "output", "o", "text", "Output format (text|json)")
	cmd.Flags().StringVar(&opts.Plot, "plot", "", "Also draw a bar chart to this file (.png, .svg or .pdf)")

	return cmd
}

func runRungs(cmd *cobra.Command, args []string, g *GlobalOptions, opts *RungsOptions) error {
	out := cmd.OutOrStdout()

	metric, err := analyzer.ParseMetric(opts.Metric)
	if err != nil {
		return err
	}
	if opts.Output != "text" && opts.Output != "json" {
		return fmt.Errorf("unknown output format %q (use text or json)", opts.Output)
	}
	if opts.Plot != "" {
		if err := chart.CheckPath(opts.Plot); err != nil {
			return err
		}
	}

	model, err := loadLog(commandContext(cmd), g, args[0])
	if err != nil {
		return err
	}
	buckets := model.RungBuckets(metric)

	if opts.Output == "json" {
		encoder := json.NewEncoder(out)
		encoder.SetIndent("", "  ")
		if err := encoder.Encode(RungsOutput{Log: model.Name, Metric: metric, Buckets: buckets}); err != nil {
			return err
		}
	} else {
		fmt.Fprintf(out, "%s time by rung (%s)\n", metric.Label(), model.Name)
		if len(buckets) == 0 {
			fmt.Fprintln(out, "  no rung transitions found")
		}
		for _, b := range buckets {
			fmt.Fprintf(out, "  rung %-3d %10.4f s  (%d samples)\n", b.Rung, b.Sum, b.Samples)
		}
	}

	if opts.Plot != "" {
		if err := chart.RungBuckets(metric, buckets, opts.Plot, chart.Options{}); err != nil {
			return err
		}
		fmt.Fprintf(cmd.ErrOrStderr(), "Wrote %s\n", opts.Plot)
	}

	return nil
}
