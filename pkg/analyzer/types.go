// Package analyzer splits simulation logs into big steps and rung intervals
// and extracts per-phase timings from them.
package analyzer

import (
	"errors"
	"fmt"

	"github.com/ccollicutt/oldtimer/pkg/parser"
)

var (
	// ErrMalformedRung is wrapped by every RungParseError.
	ErrMalformedRung = errors.New("malformed rung marker")

	// ErrUnknownMetric is returned for metric names outside the fixed set.
	ErrUnknownMetric = errors.New("unknown metric")

	// ErrUnknownAxis is returned for axis names that are neither a metric
	// nor Step/TotalStepTime.
	ErrUnknownAxis = errors.New("unknown axis")

	// ErrUnknownResolution is returned for resolutions other than big and sub.
	ErrUnknownResolution = errors.New("unknown resolution")

	// ErrStepOutOfRange is returned when a step number does not exist.
	ErrStepOutOfRange = errors.New("step out of range")
)

// Sample is one timing value extracted from the log.
type Sample struct {
	// Position is the 0-based line position the value was read from.
	Position int

	// Value is the elapsed time in seconds.
	Value float64
}

// MetricSeries is the ordered list of samples for one metric in one step.
type MetricSeries []Sample

// Values returns the sample values in order.
func (s MetricSeries) Values() []float64 {
	vals := make([]float64, len(s))
	for i, sample := range s {
		vals[i] = sample.Value
	}
	return vals
}

// Sum returns the sum of all sample values.
func (s MetricSeries) Sum() float64 {
	total := 0.0
	for _, sample := range s {
		total += sample.Value
	}
	return total
}

// StepMetrics holds one series per metric.
type StepMetrics struct {
	DomainDecomp      MetricSeries
	Balancer          MetricSeries
	BuildTrees        MetricSeries
	Gravity           MetricSeries
	Density           MetricSeries
	MarkNeighbor      MetricSeries
	DensityOfNeighbor MetricSeries
	PressureGradient  MetricSeries
}

// Series returns the series recorded for m.
func (s *StepMetrics) Series(m Metric) MetricSeries {
	if f := s.field(m); f != nil {
		return *f
	}
	return nil
}

func (s *StepMetrics) field(m Metric) *MetricSeries {
	switch m {
	case DomainDecomp:
		return &s.DomainDecomp
	case Balancer:
		return &s.Balancer
	case BuildTrees:
		return &s.BuildTrees
	case Gravity:
		return &s.Gravity
	case Density:
		return &s.Density
	case MarkNeighbor:
		return &s.MarkNeighbor
	case DensityOfNeighbor:
		return &s.DensityOfNeighbor
	case PressureGradient:
		return &s.PressureGradient
	default:
		return nil
	}
}

// RungInterval is the line range computed under one rung transition.
type RungInterval struct {
	FromRung int
	ToRung   int

	// FromIndex and ToIndex are inclusive line positions within the step.
	FromIndex int
	ToIndex   int

	GravityActive int

	// GasActive is only meaningful when HasGasActive is set.
	GasActive    int
	HasGasActive bool
}

// Contains reports whether position lies within the interval.
func (r RungInterval) Contains(position int) bool {
	return position >= r.FromIndex && position <= r.ToIndex
}

// BigStep is one top-level simulation iteration.
type BigStep struct {
	// Number is the step's sequence position in the log.
	Number int

	// Init is set on the leading step holding start-up output that precedes
	// the first step boundary.
	Init bool

	// Start and End are the inclusive line positions of the step.
	Start int
	End   int

	// TotalTime is the step's own reported elapsed time, 0 if unreported.
	TotalTime float64

	Metrics StepMetrics
	Rungs   []RungInterval

	// Lines are the raw lines of the step, in order.
	Lines []parser.LogLine
}

// Diagnostic records a recoverable problem found while parsing.
type Diagnostic struct {
	Step     int
	Position int
	Line     string
	Err      error
}

// String renders the diagnostic for humans.
func (d Diagnostic) String() string {
	return fmt.Sprintf("step %d, line %d: %v", d.Step, d.Position, d.Err)
}

// RungParseError describes a rung marker line that the rung pattern rejected.
type RungParseError struct {
	Position int
	Line     string
	Reason   string
}

func (e *RungParseError) Error() string {
	return fmt.Sprintf("line %d: %s: %s", e.Position, ErrMalformedRung, e.Reason)
}

// Unwrap allows errors.Is(err, ErrMalformedRung).
func (e *RungParseError) Unwrap() error {
	return ErrMalformedRung
}
