package analyzer

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/ccollicutt/oldtimer/pkg/stats"
)

// MetricSummary is the summary of one metric's samples.
type MetricSummary struct {
	Metric  Metric
	Samples int
	Summary stats.Summary
}

// StepReport is the per-step data handed to report renderers.
type StepReport struct {
	Number    int
	Init      bool
	TotalTime float64
	Metrics   []MetricSummary
}

// MetricTotals summarizes one metric across the whole log.
type MetricTotals struct {
	Metric Metric

	// BigStep summarizes the per-step sums.
	BigStep stats.Summary

	// SubStep summarizes every individual sample.
	SubStep stats.Summary
}

// LogReport is the whole-log data handed to report renderers.
type LogReport struct {
	Name  string
	Lines int

	// Steps counts every step; BigSteps leaves out the init step.
	Steps    int
	BigSteps int

	Metrics []MetricTotals

	// StepTime summarizes the steps' own reported total times.
	StepTime stats.Summary

	Terminated  bool
	Diagnostics int
}

// StepReport returns the summaries for step n.
func (m *LogModel) StepReport(n int) (StepReport, error) {
	if n < 0 || n >= len(m.Steps) {
		return StepReport{}, fmt.Errorf("%w: %d (log has %d steps)", ErrStepOutOfRange, n, len(m.Steps))
	}
	return buildStepReport(&m.Steps[n]), nil
}

// StepReports returns the summaries of every step in order.
func (m *LogModel) StepReports() []StepReport {
	reports := make([]StepReport, len(m.Steps))
	for i := range m.Steps {
		reports[i] = buildStepReport(&m.Steps[i])
	}
	return reports
}

func buildStepReport(step *BigStep) StepReport {
	r := StepReport{
		Number:    step.Number,
		Init:      step.Init,
		TotalTime: step.TotalTime,
		Metrics:   make([]MetricSummary, 0, numMetrics),
	}
	for _, metric := range Metrics() {
		series := step.Metrics.Series(metric)
		r.Metrics = append(r.Metrics, MetricSummary{
			Metric:  metric,
			Samples: len(series),
			Summary: stats.Summarize(series.Values()),
		})
	}
	return r
}

// LogReport summarizes every metric across all steps at big-step and
// sub-step resolution.
func (m *LogModel) LogReport() LogReport {
	r := LogReport{
		Name:        m.Name,
		Lines:       m.LineCount,
		Steps:       len(m.Steps),
		BigSteps:    m.BigStepCount(),
		Metrics:     make([]MetricTotals, 0, numMetrics),
		Terminated:  m.Terminated,
		Diagnostics: len(m.Diagnostics),
	}

	for _, metric := range Metrics() {
		r.Metrics = append(r.Metrics, MetricTotals{
			Metric:  metric,
			BigStep: stats.Summarize(m.stepSums(metric)),
			SubStep: stats.Summarize(m.Samples(metric).Values()),
		})
	}

	r.StepTime = stats.Summarize(m.stepTimes())
	return r
}

// Samples returns every sample of metric across the log, in order.
func (m *LogModel) Samples(metric Metric) MetricSeries {
	var all MetricSeries
	for i := range m.Steps {
		all = append(all, m.Steps[i].Metrics.Series(metric)...)
	}
	return all
}

func (m *LogModel) stepSums(metric Metric) []float64 {
	sums := make([]float64, len(m.Steps))
	for i := range m.Steps {
		sums[i] = m.Steps[i].Metrics.Series(metric).Sum()
	}
	return sums
}

func (m *LogModel) stepTimes() []float64 {
	times := make([]float64, len(m.Steps))
	for i := range m.Steps {
		times[i] = m.Steps[i].TotalTime
	}
	return times
}

// AxisName selects a plottable quantity: a metric name, Step or TotalStepTime.
type AxisName string

const (
	AxisStep          AxisName = "Step"
	AxisTotalStepTime AxisName = "TotalStepTime"
)

// Axes lists every axis name in the order the original tool offered them.
func Axes() []AxisName {
	axes := []AxisName{AxisStep, AxisTotalStepTime}
	for _, metric := range Metrics() {
		axes = append(axes, AxisName(metric.String()))
	}
	return axes
}

// ParseAxisName resolves an axis selector case-insensitively.
func ParseAxisName(s string) (AxisName, error) {
	name := strings.TrimSpace(s)
	for _, special := range []AxisName{AxisStep, AxisTotalStepTime} {
		if strings.EqualFold(name, string(special)) {
			return special, nil
		}
	}
	if metric, err := ParseMetric(name); err == nil {
		return AxisName(metric.String()), nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownAxis, s)
}

// Resolution selects per-step or per-sample granularity.
type Resolution string

const (
	ResolutionBigStep Resolution = "big"
	ResolutionSubStep Resolution = "sub"
)

// ParseResolution resolves a resolution selector.
func ParseResolution(s string) (Resolution, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "big", "big-step", "bigstep", "":
		return ResolutionBigStep, nil
	case "sub", "sub-step", "substep":
		return ResolutionSubStep, nil
	default:
		return "", fmt.Errorf("%w: %q (must be big or sub)", ErrUnknownResolution, s)
	}
}

// AxisData is a plottable sequence. Values, Index and Labels always have the
// same length.
type AxisData struct {
	Name       AxisName
	Resolution Resolution
	Values     []float64

	// Index is the step number (big) or line position (sub) of each value.
	Index  []float64
	Labels []string
}

// Len returns the number of points.
func (a AxisData) Len() int {
	return len(a.Values)
}

// Axis returns the data for one axis. Step and TotalStepTime exist only per
// step and ignore the resolution.
func (m *LogModel) Axis(name AxisName, res Resolution) (AxisData, error) {
	if res != ResolutionBigStep && res != ResolutionSubStep {
		return AxisData{}, fmt.Errorf("%w: %q", ErrUnknownResolution, res)
	}

	switch name {
	case AxisStep:
		steps := make([]float64, len(m.Steps))
		for i := range m.Steps {
			steps[i] = float64(m.Steps[i].Number)
		}
		return m.perStep(name, steps), nil
	case AxisTotalStepTime:
		return m.perStep(name, m.stepTimes()), nil
	}

	metric, err := ParseMetric(string(name))
	if err != nil {
		return AxisData{}, fmt.Errorf("%w: %q", ErrUnknownAxis, name)
	}

	if res == ResolutionBigStep {
		axis := m.perStep(name, m.stepSums(metric))
		axis.Name = AxisName(metric.String())
		return axis, nil
	}

	axis := AxisData{Name: AxisName(metric.String()), Resolution: ResolutionSubStep}
	for i := range m.Steps {
		step := &m.Steps[i]
		for _, sample := range step.Metrics.Series(metric) {
			axis.Values = append(axis.Values, sample.Value)
			axis.Index = append(axis.Index, float64(sample.Position))
			axis.Labels = append(axis.Labels, fmt.Sprintf("%d:%d", step.Number, sample.Position))
		}
	}
	return axis, nil
}

func (m *LogModel) perStep(name AxisName, values []float64) AxisData {
	axis := AxisData{
		Name:       name,
		Resolution: ResolutionBigStep,
		Values:     values,
		Index:      make([]float64, len(m.Steps)),
		Labels:     make([]string, len(m.Steps)),
	}
	for i := range m.Steps {
		axis.Index[i] = float64(m.Steps[i].Number)
		axis.Labels[i] = StepLabel(&m.Steps[i])
	}
	return axis
}

// StepLabel names a step for display: "Init" for the init step, otherwise
// its number.
func StepLabel(step *BigStep) string {
	if step.Init {
		return "Init"
	}
	return strconv.Itoa(step.Number)
}

// RungBucket is the total of one metric over every interval sharing a
// from-rung.
type RungBucket struct {
	Rung    int
	Sum     float64
	Samples int
}

// RungBuckets assigns every sample of metric to the rung interval whose line
// range contains it and totals the values per from-rung across the whole
// log. Buckets are sorted by rung; every from-rung observed in the log gets a
// bucket, even when no sample falls into it. Samples before the first
// transition of their step are not counted.
func (m *LogModel) RungBuckets(metric Metric) []RungBucket {
	byRung := make(map[int]*RungBucket)

	for i := range m.Steps {
		step := &m.Steps[i]
		for _, iv := range step.Rungs {
			if byRung[iv.FromRung] == nil {
				byRung[iv.FromRung] = &RungBucket{Rung: iv.FromRung}
			}
		}

		for _, sample := range step.Metrics.Series(metric) {
			iv, ok := intervalAt(step.Rungs, sample.Position)
			if !ok {
				continue
			}
			b := byRung[iv.FromRung]
			b.Sum += sample.Value
			b.Samples++
		}
	}

	buckets := make([]RungBucket, 0, len(byRung))
	for _, b := range byRung {
		buckets = append(buckets, *b)
	}
	sort.Slice(buckets, func(i, j int) bool {
		return buckets[i].Rung < buckets[j].Rung
	})
	return buckets
}

// intervalAt finds the interval containing position. Intervals are ordered
// and contiguous.
func intervalAt(intervals []RungInterval, position int) (RungInterval, bool) {
	i := sort.Search(len(intervals), func(i int) bool {
		return intervals[i].ToIndex >= position
	})
	if i < len(intervals) && intervals[i].Contains(position) {
		return intervals[i], true
	}
	return RungInterval{}, false
}
