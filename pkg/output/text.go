package output

import (
	"context"
	"fmt"
	"io"

	"github.com/ccollicutt/oldtimer/pkg/analyzer"
	"github.com/ccollicutt/oldtimer/pkg/stats"
)

// TextFormatter formats reports as human-readable text.
type TextFormatter struct {
	opts FormatOptions
}

// NewTextFormatter creates a new text formatter with the given options.
func NewTextFormatter(opts FormatOptions) *TextFormatter {
	return &TextFormatter{opts: opts}
}

// Name returns the format name.
func (f *TextFormatter) Name() string {
	return "text"
}

// Format renders the report as text.
func (f *TextFormatter) Format(ctx context.Context, report *Report, w io.Writer) error {
	if f.opts.Quiet {
		return f.formatQuiet(report, w)
	}
	return f.formatFull(report, w)
}

func (f *TextFormatter) formatQuiet(report *Report, w io.Writer) error {
	_, err := fmt.Fprintf(w, "oldtimer: %d logs parsed, %d failed, %d big steps, %d diagnostics\n",
		report.Summary.LogsParsed,
		report.Summary.LogsFailed,
		report.Summary.BigSteps,
		report.Summary.Diagnostics)
	return err
}

func (f *TextFormatter) formatFull(report *Report, w io.Writer) error {
	fmt.Fprintln(w, "=== oldtimer report ===")
	fmt.Fprintln(w)

	for i := range report.Logs {
		f.formatLog(&report.Logs[i], w)
	}

	for _, failure := range report.Failures {
		fmt.Fprintf(w, "[FAILED] %s: %s\n", failure.Path, failure.Error)
	}
	if len(report.Failures) > 0 {
		fmt.Fprintln(w)
	}

	fmt.Fprintln(w, "---")
	_, err := fmt.Fprintf(w, "Summary: %d logs parsed, %d failed, %d big steps, %d diagnostics\n",
		report.Summary.LogsParsed,
		report.Summary.LogsFailed,
		report.Summary.BigSteps,
		report.Summary.Diagnostics)
	if err != nil {
		return err
	}

	if f.opts.Verbose {
		fmt.Fprintf(w, "Lines processed: %d\n", report.Summary.LinesProcessed)
		if report.Metadata.Policy != "" {
			fmt.Fprintf(w, "Segmentation: %s\n", report.Metadata.Policy)
		}
		fmt.Fprintf(w, "Duration: %s\n", report.Metadata.Duration.Round(1e6))
	}

	return nil
}

func (f *TextFormatter) formatLog(section *LogSection, w io.Writer) {
	fmt.Fprintf(w, "== %s (%d lines) ==\n", section.Name, section.Totals.Lines)
	if section.Source != "" && section.Source != section.Name {
		fmt.Fprintf(w, "Source: %s\n", section.Source)
	}

	if !f.opts.HideSteps {
		for i := range section.Steps {
			f.formatStep(&section.Steps[i], w)
		}
	}

	f.formatTotals(&section.Totals, w)

	if !section.Totals.Terminated {
		fmt.Fprintln(w, "Warning: terminal marker not found")
	}
	for _, d := range section.Diagnostics {
		fmt.Fprintf(w, "  - %s\n", d)
	}
	fmt.Fprintln(w)
}

func (f *TextFormatter) formatStep(step *analyzer.StepReport, w io.Writer) {
	if step.Init {
		fmt.Fprintln(w, "Init:")
	} else {
		fmt.Fprintf(w, "Big step: %d\n", step.Number)
	}

	for _, m := range step.Metrics {
		fmt.Fprintf(w, "  %-26s%s", m.Metric.Label()+" time:", formatSummary(m.Summary))
		if f.opts.Verbose {
			fmt.Fprintf(w, " n=%d", m.Samples)
		}
		fmt.Fprintln(w)
	}
	fmt.Fprintf(w, "  %-26s%g\n", "Big step time (r):", step.TotalTime)
}

func (f *TextFormatter) formatTotals(totals *analyzer.LogReport, w io.Writer) {
	fmt.Fprintln(w, " - - - - - - - - - -")
	fmt.Fprintf(w, "Total Big steps: %d\n", totals.BigSteps)

	for _, m := range totals.Metrics {
		fmt.Fprintf(w, "%-32s%s\n", "Total "+m.Metric.Label()+" times:", formatSummary(m.SubStep))
		if f.opts.Verbose {
			fmt.Fprintf(w, "%-32s%s\n", "  per step:", formatSummary(m.BigStep))
		}
	}
	fmt.Fprintf(w, "%-32s%s\n", "Total Big Step (r) times:", formatSummary(totals.StepTime))
}

func formatSummary(s stats.Summary) string {
	return fmt.Sprintf("sum %.4f  avg %.4f  min %.4f  max %.4f  std %.4f",
		s.Sum, s.Mean, s.Min, s.Max, s.Std)
}
