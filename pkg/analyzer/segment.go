package analyzer

import (
	"fmt"
	"strings"

	"github.com/ccollicutt/oldtimer/pkg/config"
	"github.com/ccollicutt/oldtimer/pkg/parser"
)

// Segment is an inclusive range of indexes into the line sequence.
type Segment struct {
	Start int
	End   int

	// Leading marks content preceding the first step boundary.
	Leading bool
}

// Segmentation is the result of splitting a log into big steps.
type Segmentation struct {
	Segments []Segment

	// Terminated is set when the terminal marker was found.
	Terminated bool

	// Discarded counts trailing lines dropped by the discard policy.
	Discarded int
}

// Segmenter splits a full line sequence into ordered big-step ranges.
// Each boundary policy implements this interface.
type Segmenter interface {
	// Policy returns the boundary policy the segmenter applies.
	Policy() config.SegmentationPolicy

	// Segment assigns every line up to the terminal marker to exactly one
	// segment, in order.
	Segment(lines []parser.LogLine) Segmentation
}

// NewSegmenter creates the segmenter selected by cfg.
func NewSegmenter(cfg *config.SegmentationConfig) (Segmenter, error) {
	switch cfg.Policy {
	case config.SegmentOnMarker:
		return &MarkerSegmenter{
			StepMarker:     cfg.StepMarker,
			TerminalMarker: cfg.TerminalMarker,
			Trailing:       cfg.Trailing,
		}, nil
	case config.SegmentOnReport:
		return &ReportSegmenter{
			ReportMarker:   cfg.ReportMarker,
			TerminalMarker: cfg.TerminalMarker,
			Trailing:       cfg.Trailing,
		}, nil
	default:
		return nil, fmt.Errorf("unknown segmentation policy: %s", cfg.Policy)
	}
}

// MarkerSegmenter opens a new step on every step marker line. The marker
// line is the first line of the step it opens.
type MarkerSegmenter struct {
	StepMarker     string
	TerminalMarker string
	Trailing       config.TrailingPolicy
}

// Policy returns config.SegmentOnMarker.
func (s *MarkerSegmenter) Policy() config.SegmentationPolicy {
	return config.SegmentOnMarker
}

// Segment splits lines at step markers.
func (s *MarkerSegmenter) Segment(lines []parser.LogLine) Segmentation {
	var result Segmentation
	start := 0

	for i, line := range lines {
		// A marker on the very first line opens the first step; no empty
		// leading segment is produced.
		if strings.Contains(line.Content, s.StepMarker) && i > start {
			result.Segments = append(result.Segments, Segment{Start: start, End: i - 1})
			start = i
		}

		if strings.Contains(line.Content, s.TerminalMarker) {
			result.Segments = append(result.Segments, Segment{Start: start, End: i})
			result.Terminated = true
			break
		}
	}

	if !result.Terminated {
		flushTrailing(&result, start, len(lines), s.Trailing)
	}

	if len(result.Segments) > 0 && !strings.Contains(lines[result.Segments[0].Start].Content, s.StepMarker) {
		result.Segments[0].Leading = true
	}

	return result
}

// ReportSegmenter closes a step on every report line carrying a took clause,
// inclusive of that line.
type ReportSegmenter struct {
	ReportMarker   string
	TerminalMarker string
	Trailing       config.TrailingPolicy
}

// Policy returns config.SegmentOnReport.
func (s *ReportSegmenter) Policy() config.SegmentationPolicy {
	return config.SegmentOnReport
}

// Segment splits lines after step reports.
func (s *ReportSegmenter) Segment(lines []parser.LogLine) Segmentation {
	var result Segmentation
	start := 0

	for i, line := range lines {
		if strings.Contains(line.Content, s.TerminalMarker) {
			result.Segments = append(result.Segments, Segment{Start: start, End: i})
			result.Terminated = true
			break
		}

		if strings.Contains(line.Content, s.ReportMarker) {
			if _, ok := ParseTook(line.Content); ok {
				result.Segments = append(result.Segments, Segment{Start: start, End: i})
				start = i + 1
			}
		}
	}

	if !result.Terminated {
		flushTrailing(&result, start, len(lines), s.Trailing)
	}

	return result
}

// flushTrailing handles lines [start, n) left open when no terminal marker
// was found.
func flushTrailing(result *Segmentation, start, n int, policy config.TrailingPolicy) {
	if start >= n {
		return
	}
	if policy == config.TrailingDiscard {
		result.Discarded = n - start
		return
	}
	result.Segments = append(result.Segments, Segment{Start: start, End: n - 1})
}
