// Package detector takes a census of the markers a simulation log carries
// and recommends a configuration for it.
package detector

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/ccollicutt/oldtimer/pkg/analyzer"
	"github.com/ccollicutt/oldtimer/pkg/config"
	"github.com/ccollicutt/oldtimer/pkg/parser"
)

// maxExamples bounds the malformed rung lines kept in a Census.
const maxExamples = 5

// Census counts marker and keyword occurrences in a log.
type Census struct {
	Source string

	// SampledLines is the number of lines examined.
	SampledLines int

	StepMarkers int

	// ReportMarkers counts report marker lines; TimedReports counts those
	// carrying a took clause.
	ReportMarkers int
	TimedReports  int

	// TerminalLine is the position of the first terminal marker, -1 if none.
	TerminalLine int

	RungMarkers    int
	MalformedRungs int

	// MalformedExamples holds the first few unparsable rung lines.
	MalformedExamples []string `json:",omitempty"`

	Keywords []KeywordHit

	// Recommended is the segmentation policy suggested for this log.
	Recommended config.SegmentationPolicy

	Notes []string `json:",omitempty"`
}

// KeywordHit counts the lines mentioning one metric keyword.
type KeywordHit struct {
	Metric  analyzer.Metric
	Keyword string
	Lines   int

	// Timed counts the lines with a parsable took clause.
	Timed int
}

// Terminated reports whether the terminal marker was seen.
func (c *Census) Terminated() bool {
	return c.TerminalLine >= 0
}

// HasMarkers reports whether any step boundary was found.
func (c *Census) HasMarkers() bool {
	return c.StepMarkers > 0 || c.TimedReports > 0
}

// Detector takes marker censuses using one configuration.
type Detector struct {
	cfg        *config.Config
	parser     *analyzer.Parser
	rungs      *analyzer.RungIndexer
	sampleSize int
}

// Option configures the Detector.
type Option func(*Detector)

// WithSampleSize limits the census to the first n lines. Zero or less
// examines the whole log.
func WithSampleSize(n int) Option {
	return func(d *Detector) {
		d.sampleSize = n
	}
}

// WithConfig sets the markers and keywords to look for. The default
// configuration is used otherwise.
func WithConfig(cfg *config.Config) Option {
	return func(d *Detector) {
		if cfg != nil {
			d.cfg = cfg
		}
	}
}

// New creates a Detector.
func New(opts ...Option) (*Detector, error) {
	d := &Detector{cfg: config.DefaultConfig()}
	for _, opt := range opts {
		opt(d)
	}

	p, err := analyzer.NewParser(d.cfg)
	if err != nil {
		return nil, err
	}
	d.parser = p

	if d.rungs, err = analyzer.NewRungIndexer(&d.cfg.Rungs); err != nil {
		return nil, err
	}
	return d, nil
}

// DetectFromFile takes the census of the log at path.
func (d *Detector) DetectFromFile(ctx context.Context, path string) (*Census, error) {
	src, err := parser.OpenFile(path)
	if err != nil {
		return nil, err
	}
	defer src.Close()

	var lines []parser.LogLine
	for d.sampleSize <= 0 || len(lines) < d.sampleSize {
		line, err := src.Next(ctx)
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, err
		}
		lines = append(lines, *line)
	}

	return d.DetectFromLines(path, lines), nil
}

// DetectFromLines takes the census of an in-memory line sequence.
func (d *Detector) DetectFromLines(source string, lines []parser.LogLine) *Census {
	seg := &d.cfg.Segmentation
	c := &Census{
		Source:       source,
		SampledLines: len(lines),
		TerminalLine: -1,
	}

	for _, m := range analyzer.Metrics() {
		c.Keywords = append(c.Keywords, KeywordHit{Metric: m, Keyword: d.parser.Keyword(m)})
	}

	for _, line := range lines {
		text := line.Content

		if strings.Contains(text, seg.StepMarker) {
			c.StepMarkers++
		}
		if strings.Contains(text, seg.ReportMarker) {
			c.ReportMarkers++
			if _, ok := analyzer.ParseTook(text); ok {
				c.TimedReports++
			}
		}
		if c.TerminalLine < 0 && strings.Contains(text, seg.TerminalMarker) {
			c.TerminalLine = line.Position
		}

		if d.rungs.IsMarker(text) {
			c.RungMarkers++
			if _, err := d.rungs.ParseLine(line); err != nil {
				c.MalformedRungs++
				if len(c.MalformedExamples) < maxExamples {
					c.MalformedExamples = append(c.MalformedExamples, text)
				}
			}
		}

		for i := range c.Keywords {
			hit := &c.Keywords[i]
			if hit.Keyword == "" || !strings.Contains(text, hit.Keyword) {
				continue
			}
			hit.Lines++
			if _, ok := analyzer.ParseTook(text); ok {
				hit.Timed++
			}
		}
	}

	d.recommend(c)
	return c
}

func (d *Detector) recommend(c *Census) {
	seg := &d.cfg.Segmentation

	switch {
	case c.StepMarkers > 0:
		c.Recommended = config.SegmentOnMarker
	case c.TimedReports > 0:
		c.Recommended = config.SegmentOnReport
		c.Notes = append(c.Notes, fmt.Sprintf("no %q lines; steps will close on timed %q lines", seg.StepMarker, seg.ReportMarker))
	default:
		c.Recommended = config.SegmentOnMarker
		c.Notes = append(c.Notes, "no step boundaries found; the whole log will be a single step")
	}

	if c.StepMarkers > 0 && c.ReportMarkers > 0 && c.TimedReports < c.ReportMarkers {
		c.Notes = append(c.Notes, fmt.Sprintf("%d of %d %q lines carry no took clause",
			c.ReportMarkers-c.TimedReports, c.ReportMarkers, seg.ReportMarker))
	}
	if !c.Terminated() {
		c.Notes = append(c.Notes, fmt.Sprintf("terminal marker %q not found; the run may have been cut short", seg.TerminalMarker))
	}
	if c.MalformedRungs > 0 {
		c.Notes = append(c.Notes, fmt.Sprintf("%d of %d rung marker lines do not match the rung pattern", c.MalformedRungs, c.RungMarkers))
	}

	missing := 0
	for _, hit := range c.Keywords {
		if hit.Lines == 0 {
			missing++
		}
	}
	if missing == len(c.Keywords) {
		c.Notes = append(c.Notes, "no metric keyword found; check the metrics section of the config")
	}
}

// StarterConfig returns the detector's configuration with the recommended
// policy applied.
func (d *Detector) StarterConfig(c *Census) *config.Config {
	cfg := *d.cfg
	cfg.Segmentation.Policy = c.Recommended
	cfg.Webhooks = nil
	return &cfg
}

// WriteConfig encodes cfg as YAML with a short header naming the log.
func WriteConfig(w io.Writer, cfg *config.Config, c *Census) error {
	if _, err := fmt.Fprintf(w, "# oldtimer configuration\n# Generated by: oldtimer detect %s\n\n", c.Source); err != nil {
		return err
	}

	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(cfg); err != nil {
		return fmt.Errorf("encoding config: %w", err)
	}
	return enc.Close()
}
