package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ccollicutt/oldtimer/pkg/analyzer"
	"github.com/ccollicutt/oldtimer/pkg/chart"
)

// PlotOptions holds command-line options for the plot command.
type PlotOptions struct {
	Y          string
	X          string
	Resolution string
	Out        string
	Title      string
	List       bool
}

// NewPlotCommand creates the plot command.
func NewPlotCommand(g *GlobalOptions) *cobra.Command {
	opts := &PlotOptions{}

	cmd := &cobra.Command{
		Use:   "plot <log-file>",
		Short: "Plot one timing axis against another",
		Long: `Plot a y axis against an x axis and write the chart to a PNG, SVG or
PDF file (chosen by the --out extension).

Axes are Step, TotalStepTime or any metric name (DomainDecomp, Balancer,
BuildTrees, Gravity, Density, MarkNeighbor, DensityOfNeighbor,
PressureGradient). With --resolution big every step contributes its metric
sum; with --resolution sub every individual sample is plotted. Sub-step data
plotted against Step uses the sample's line position as x.

Example:
  oldtimer plot run.log --y Gravity --out gravity.png
  oldtimer plot run.log --y Gravity --resolution sub --out gravity.svg
  oldtimer plot run.log --y Gravity --x TotalStepTime --out scatter.pdf
  oldtimer plot --list`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runPlot(cmd, args, g, opts)
		},
	}

	cmd.Flags().StringVar(&opts.Y, "y", "", "Axis plotted vertically")
	cmd.Flags().StringVar(&opts.X, "x", string(analyzer.AxisStep), "Axis plotted horizontally")
	cmd.Flags().StringVarP(&opts.Resolution, "resolution", "r", string(analyzer.ResolutionBigStep), "Resolution (big|sub)")
	cmd.Flags().StringVar(&opts.Out, "out", "", "Output file (.png, .svg or .pdf)")
	cmd.Flags().StringVar(&opts.Title, "title", "", "Chart title")
	cmd.Flags().BoolVar(&opts.List, "list", false, "List the available axes and exit")

	return cmd
}

func runPlot(cmd *cobra.Command, args []string, g *GlobalOptions, opts *PlotOptions) error {
	out := cmd.OutOrStdout()

	if opts.List {
		for _, a := range analyzer.Axes() {
			fmt.Fprintln(out, a)
		}
		return nil
	}

	if len(args) != 1 {
		return fmt.Errorf("plot needs exactly one log file")
	}
	if opts.Y == "" {
		return fmt.Errorf("--y is required (see --list)")
	}
	if opts.Out == "" {
		return fmt.Errorf("--out is required")
	}
	if err := chart.CheckPath(opts.Out); err != nil {
		return err
	}

	yName, err := analyzer.ParseAxisName(opts.Y)
	if err != nil {
		return err
	}
	xName, err := analyzer.ParseAxisName(opts.X)
	if err != nil {
		return err
	}
	res, err := analyzer.ParseResolution(opts.Resolution)
	if err != nil {
		return err
	}

	ctx := commandContext(cmd)
	model, err := loadLog(ctx, g, args[0])
	if err != nil {
		return err
	}

	y, err := model.Axis(yName, res)
	if err != nil {
		return err
	}

	var x analyzer.AxisData
	if xName == analyzer.AxisStep && y.Resolution == analyzer.ResolutionSubStep {
		x = chart.LineAxis(y)
	} else if x, err = model.Axis(xName, res); err != nil {
		return err
	}

	if err := chart.Axis(x, y, opts.Out, chart.Options{Title: opts.Title}); err != nil {
		return err
	}

	fmt.Fprintf(out, "Wrote %s (%d points)\n", opts.Out, y.Len())
	return nil
}
