package analyzer

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/ccollicutt/oldtimer/pkg/config"
	"github.com/ccollicutt/oldtimer/pkg/parser"
)

// LogModel is the parsed form of one simulation log. It is built once by
// Parser.Parse and never modified afterwards, so it can be shared between
// goroutines without locking.
type LogModel struct {
	// Name identifies the log, usually its file path.
	Name string

	// Steps are the big steps in log order.
	Steps []BigStep

	// Diagnostics lists recoverable problems, such as skipped rung lines.
	Diagnostics []Diagnostic

	// LineCount is the number of lines read from the source.
	LineCount int

	// Terminated is set when the terminal marker was found.
	Terminated bool

	// Discarded counts trailing lines dropped by the discard policy.
	Discarded int

	// Policy is the segmentation policy the log was parsed with.
	Policy config.SegmentationPolicy
}

// BigStepCount returns the number of steps excluding the init step.
func (m *LogModel) BigStepCount() int {
	n := len(m.Steps)
	if n > 0 && m.Steps[0].Init {
		n--
	}
	return n
}

// Parser turns line sequences into LogModels.
type Parser struct {
	segmenter    Segmenter
	rungs        *RungIndexer
	keywords     [numMetrics]string
	reportMarker string
	logger       *slog.Logger
}

// ParserOption configures parser behavior.
type ParserOption func(*Parser)

// WithLogger sets the logger used for parse diagnostics.
func WithLogger(l *slog.Logger) ParserOption {
	return func(p *Parser) {
		if l != nil {
			p.logger = l
		}
	}
}

// NewParser creates a parser from configuration. The configuration is
// validated first if that has not happened yet.
func NewParser(cfg *config.Config, opts ...ParserOption) (*Parser, error) {
	if cfg.Rungs.CompiledPattern() == nil {
		if err := config.Validate(cfg); err != nil {
			return nil, fmt.Errorf("validating config: %w", err)
		}
	}

	p := &Parser{
		reportMarker: cfg.Segmentation.ReportMarker,
		logger:       slog.New(slog.NewTextHandler(io.Discard, nil)),
	}

	for _, opt := range opts {
		opt(p)
	}

	seg, err := NewSegmenter(&cfg.Segmentation)
	if err != nil {
		return nil, err
	}
	p.segmenter = seg

	if p.rungs, err = NewRungIndexer(&cfg.Rungs); err != nil {
		return nil, err
	}

	for _, m := range Metrics() {
		p.keywords[m] = m.Keyword()
	}
	for name, keyword := range cfg.Metrics {
		m, err := ParseMetric(name)
		if err != nil {
			return nil, fmt.Errorf("metrics: %w", err)
		}
		p.keywords[m] = keyword
	}

	return p, nil
}

// Keyword returns the keyword the parser searches for m.
func (p *Parser) Keyword(m Metric) string {
	if !m.valid() {
		return ""
	}
	return p.keywords[m]
}

// Parse builds a LogModel from a fully read line sequence. The only error
// conditions are structural: a malformed rung line under the abort policy.
func (p *Parser) Parse(name string, lines []parser.LogLine) (*LogModel, error) {
	seg := p.segmenter.Segment(lines)

	model := &LogModel{
		Name:       name,
		Steps:      make([]BigStep, 0, len(seg.Segments)),
		LineCount:  len(lines),
		Terminated: seg.Terminated,
		Discarded:  seg.Discarded,
		Policy:     p.segmenter.Policy(),
	}

	for i, s := range seg.Segments {
		step, skipped, err := p.parseStep(i, s, lines[s.Start:s.End+1])
		if err != nil {
			return nil, fmt.Errorf("%s: step %d: %w", name, i, err)
		}

		for _, e := range skipped {
			d := Diagnostic{Step: i, Err: e}
			var rpe *RungParseError
			if errors.As(e, &rpe) {
				d.Position = rpe.Position
				d.Line = rpe.Line
			}
			p.logger.Warn("skipping rung marker",
				"log", name, "step", i, "line", d.Position, "error", e)
			model.Diagnostics = append(model.Diagnostics, d)
		}

		model.Steps = append(model.Steps, step)
	}

	if !seg.Terminated {
		p.logger.Warn("terminal marker not found",
			"log", name, "lines", len(lines), "discarded", seg.Discarded)
	}

	p.logger.Debug("parsed log",
		"log", name,
		"lines", len(lines),
		"steps", len(model.Steps),
		"policy", model.Policy,
		"diagnostics", len(model.Diagnostics))

	return model, nil
}

func (p *Parser) parseStep(number int, s Segment, lines []parser.LogLine) (BigStep, []error, error) {
	step := BigStep{
		Number:    number,
		Init:      s.Leading,
		Start:     lines[0].Position,
		End:       lines[len(lines)-1].Position,
		TotalTime: stepTime(lines, p.reportMarker),
		Lines:     lines,
	}

	for _, m := range Metrics() {
		*step.Metrics.field(m) = ExtractMetric(lines, p.keywords[m])
	}

	rungs, skipped, err := p.rungs.Index(lines)
	if err != nil {
		return BigStep{}, nil, err
	}
	step.Rungs = rungs

	return step, skipped, nil
}

// Load reads every line from src and parses them.
func (p *Parser) Load(ctx context.Context, name string, src parser.LineSource) (*LogModel, error) {
	lines, err := parser.ReadAll(ctx, src)
	if err != nil {
		return nil, err
	}
	return p.Parse(name, lines)
}

// ParseFile reads and parses the log at path. The model is named after path.
func (p *Parser) ParseFile(ctx context.Context, path string) (*LogModel, error) {
	lines, err := parser.ReadFile(ctx, path)
	if err != nil {
		return nil, err
	}
	return p.Parse(path, lines)
}
