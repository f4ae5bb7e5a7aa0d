// Package cli provides the command-line interface for oldtimer.
package cli

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/ccollicutt/oldtimer/internal/cli/commands"
	"github.com/ccollicutt/oldtimer/internal/ctxlog"
)

// Execute runs the root command and returns the exit code.
func Execute() int {
	return run(os.Args[1:], os.Stdout, os.Stderr)
}

func run(args []string, stdout, stderr io.Writer) int {
	commands.ExitCode = 0

	rootCmd := NewRootCommand()
	rootCmd.SetArgs(args)
	rootCmd.SetOut(stdout)
	rootCmd.SetErr(stderr)

	if err := rootCmd.Execute(); err != nil {
		// SilenceErrors prevents Cobra from printing this itself.
		_, _ = fmt.Fprintf(stderr, "Error: %v\n", err)
		return 2
	}
	return commands.ExitCode
}

// NewRootCommand creates the root cobra command.
func NewRootCommand() *cobra.Command {
	g := &commands.GlobalOptions{}

	rootCmd := &cobra.Command{
		Use:   "oldtimer",
		Short: "Per-step timing reports for ChaNGa simulation logs",
		Long: `oldtimer reads the text log of a ChaNGa-style simulation run, splits it
into big steps and rung intervals, and extracts the time spent in each
computational phase (domain decomposition, load balancing, tree building,
gravity, densities, neighbor marking, pressure gradients).

It prints per-step and whole-log summaries, plots any timing axis against
another, and totals phase time per rung.

Without --config the ChaNGa defaults apply. Environment overrides:
  OLDTIMER_SEGMENTATION_POLICY  marker|report
  OLDTIMER_TRAILING             flush|discard
  OLDTIMER_MALFORMED_RUNG       skip|abort`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			level, err := ctxlog.ParseLevel(g.LogLevel)
			if err != nil {
				return err
			}
			logger := ctxlog.New(cmd.ErrOrStderr(), level)
			cmd.SetContext(ctxlog.WithLogger(cmd.Context(), logger))
			return nil
		},
	}

	rootCmd.PersistentFlags().StringVarP(&g.ConfigPath, "config", "c", "", "Configuration file (YAML)")
	rootCmd.PersistentFlags().StringVar(&g.LogLevel, "log-level", "warn", "Log level (debug|info|warn|error)")

	rootCmd.AddCommand(commands.NewReportCommand(g))
	rootCmd.AddCommand(commands.NewPlotCommand(g))
	rootCmd.AddCommand(commands.NewRungsCommand(g))
	rootCmd.AddCommand(commands.NewDetectCommand(g))
	rootCmd.AddCommand(commands.NewValidateCommand())
	rootCmd.AddCommand(commands.NewVersionCommand())

	return rootCmd
}
