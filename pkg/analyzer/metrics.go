package analyzer

import (
	"fmt"
	"strings"
)

// Metric is one of the fixed computational phases timed in the log.
type Metric int

const (
	DomainDecomp Metric = iota
	Balancer
	BuildTrees
	Gravity
	Density
	MarkNeighbor
	DensityOfNeighbor
	PressureGradient

	numMetrics
)

type metricInfo struct {
	name    string
	keyword string
	label   string
}

var metricTable = [numMetrics]metricInfo{
	DomainDecomp:      {"DomainDecomp", "Domain decomposition", "Domain Decomp"},
	Balancer:          {"Balancer", "Load balancer", "LB"},
	BuildTrees:        {"BuildTrees", "Building trees", "Build trees"},
	Gravity:           {"Gravity", "Calculating gravity", "Gravity"},
	Density:           {"Density", "Calculating densities", "Density"},
	MarkNeighbor:      {"MarkNeighbor", "Marking Neighbors", "Mark Neighbor"},
	DensityOfNeighbor: {"DensityOfNeighbor", "Density of Neighbors", "Density of Neighbor"},
	PressureGradient:  {"PressureGradient", "Calculating pressure gradients", "Pressure Gradient"},
}

// Metrics returns every metric in report order.
func Metrics() []Metric {
	ms := make([]Metric, numMetrics)
	for i := range ms {
		ms[i] = Metric(i)
	}
	return ms
}

func (m Metric) valid() bool {
	return m >= 0 && m < numMetrics
}

// String returns the metric name, e.g. "Gravity".
func (m Metric) String() string {
	if !m.valid() {
		return fmt.Sprintf("Metric(%d)", int(m))
	}
	return metricTable[m].name
}

// Keyword returns the default log text identifying the metric.
func (m Metric) Keyword() string {
	if !m.valid() {
		return ""
	}
	return metricTable[m].keyword
}

// Label returns the short human label used in text reports.
func (m Metric) Label() string {
	if !m.valid() {
		return m.String()
	}
	return metricTable[m].label
}

// MarshalText encodes the metric by name.
func (m Metric) MarshalText() ([]byte, error) {
	if !m.valid() {
		return nil, fmt.Errorf("%w: %d", ErrUnknownMetric, int(m))
	}
	return []byte(m.String()), nil
}

// UnmarshalText decodes a metric name.
func (m *Metric) UnmarshalText(b []byte) error {
	parsed, err := ParseMetric(string(b))
	if err != nil {
		return err
	}
	*m = parsed
	return nil
}

// ParseMetric resolves a metric name case-insensitively. The original
// axis spelling with a "Times" suffix (GravityTimes) is accepted too.
func ParseMetric(name string) (Metric, error) {
	n := strings.TrimSuffix(strings.TrimSpace(name), "Times")
	for i, info := range metricTable {
		if strings.EqualFold(n, info.name) {
			return Metric(i), nil
		}
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownMetric, name)
}
