// Package output renders parsed simulation logs as reports.
package output

import (
	"time"

	"github.com/ccollicutt/oldtimer/pkg/analyzer"
)

// Report is the complete output of one report run.
type Report struct {
	// Summary provides aggregate counts over all logs.
	Summary Summary

	// Logs holds one section per parsed log, in input order.
	Logs []LogSection

	// Failures lists logs that produced no model.
	Failures []Failure `json:",omitempty"`

	// Metadata provides context about the run.
	Metadata Metadata
}

// Summary provides aggregate counts.
type Summary struct {
	LogsParsed     int
	LogsFailed     int
	BigSteps       int
	Diagnostics    int
	LinesProcessed int
}

// LogSection is the rendered data of one log.
type LogSection struct {
	// Name is the registry name of the log.
	Name string

	// Source is the file the log was read from.
	Source string

	// Steps holds the per-step summaries in step order.
	Steps []analyzer.StepReport `json:",omitempty"`

	// Totals is the whole-log summary.
	Totals analyzer.LogReport

	Diagnostics []string `json:",omitempty"`
}

// Failure records a log that could not be read or parsed.
type Failure struct {
	Path  string
	Error string
}

// Metadata provides context about the run.
type Metadata struct {
	// ConfigFile is the configuration used, empty for defaults.
	ConfigFile string

	// Policy is the segmentation policy in effect.
	Policy string

	// Sources lists every file that was attempted.
	Sources []string

	// AnalyzedAt is when parsing completed.
	AnalyzedAt time.Time

	// Duration is how long parsing took.
	Duration time.Duration
}

// NewReport builds a Report from a batch result. names holds the registry
// name of each model; a missing entry falls back to the model name.
func NewReport(result *analyzer.BatchResult, names []string, configFile string) *Report {
	report := &Report{
		Logs: make([]LogSection, 0, len(result.Models)),
		Metadata: Metadata{
			ConfigFile: configFile,
			Sources:    result.Metadata.Sources,
			AnalyzedAt: result.Metadata.EndTime,
			Duration:   result.Metadata.EndTime.Sub(result.Metadata.StartTime),
		},
		Summary: Summary{
			LogsParsed:     len(result.Models),
			LogsFailed:     len(result.Failures),
			Diagnostics:    result.Diagnostics(),
			LinesProcessed: result.Metadata.LinesProcessed,
		},
	}

	for i, model := range result.Models {
		name := model.Name
		if i < len(names) && names[i] != "" {
			name = names[i]
		}
		report.Logs = append(report.Logs, NewLogSection(name, model))
		report.Summary.BigSteps += model.BigStepCount()
		if report.Metadata.Policy == "" {
			report.Metadata.Policy = string(model.Policy)
		}
	}

	for _, f := range result.Failures {
		report.Failures = append(report.Failures, Failure{Path: f.Path, Error: f.Err.Error()})
	}

	return report
}

// NewLogSection renders one model.
func NewLogSection(name string, model *analyzer.LogModel) LogSection {
	section := LogSection{
		Name:   name,
		Source: model.Name,
		Steps:  model.StepReports(),
		Totals: model.LogReport(),
	}
	for _, d := range model.Diagnostics {
		section.Diagnostics = append(section.Diagnostics, d.String())
	}
	return section
}

// HasIssues reports whether any log failed or carried diagnostics.
func (r *Report) HasIssues() bool {
	return r.Summary.LogsFailed > 0 || r.Summary.Diagnostics > 0
}
