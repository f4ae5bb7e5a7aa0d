// Package chart renders axis data and rung buckets with gonum/plot.
package chart

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"

	"github.com/ccollicutt/oldtimer/pkg/analyzer"
)

var (
	// ErrUnsupportedFormat is returned for output files that are not
	// .png, .svg or .pdf.
	ErrUnsupportedFormat = errors.New("unsupported chart format")

	// ErrLengthMismatch is returned when x and y have different lengths.
	ErrLengthMismatch = errors.New("axis lengths differ")

	// ErrNoData is returned when there is nothing to draw.
	ErrNoData = errors.New("no data to plot")
)

// AxisLine is the synthetic x axis holding line positions.
const AxisLine analyzer.AxisName = "Line"

// Options controls the rendered image.
type Options struct {
	Title  string
	Width  vg.Length
	Height vg.Length
}

func (o Options) size() (vg.Length, vg.Length) {
	w, h := o.Width, o.Height
	if w == 0 {
		w = 8 * vg.Inch
	}
	if h == 0 {
		h = 5 * vg.Inch
	}
	return w, h
}

// Formats lists the supported file extensions.
func Formats() []string {
	return []string{"png", "svg", "pdf"}
}

// CheckPath verifies that path has a supported extension.
func CheckPath(path string) error {
	ext := strings.TrimPrefix(strings.ToLower(filepath.Ext(path)), ".")
	for _, f := range Formats() {
		if ext == f {
			return nil
		}
	}
	return fmt.Errorf("%w: %q (use %s)", ErrUnsupportedFormat, filepath.Ext(path), strings.Join(Formats(), ", "))
}

// LineAxis returns an x axis of the line positions of y's samples, for
// plotting sub-step data against where it occurs in the log.
func LineAxis(y analyzer.AxisData) analyzer.AxisData {
	return analyzer.AxisData{
		Name:       AxisLine,
		Resolution: y.Resolution,
		Values:     y.Index,
		Index:      y.Index,
		Labels:     y.Labels,
	}
}

// XY pairs x and y point by point.
func XY(x, y analyzer.AxisData) (plotter.XYs, error) {
	if x.Len() != y.Len() {
		return nil, fmt.Errorf("%w: %s has %d points, %s has %d", ErrLengthMismatch, x.Name, x.Len(), y.Name, y.Len())
	}
	xys := make(plotter.XYs, x.Len())
	for i := range xys {
		xys[i].X = x.Values[i]
		xys[i].Y = y.Values[i]
	}
	return xys, nil
}

// Axis plots y against x and writes the image to path. The format follows
// the extension. Step and line axes are drawn as connected lines, anything
// else as a scatter.
func Axis(x, y analyzer.AxisData, path string, opts Options) error {
	if err := CheckPath(path); err != nil {
		return err
	}
	if y.Len() == 0 {
		return fmt.Errorf("%w: %s", ErrNoData, y.Name)
	}

	xys, err := XY(x, y)
	if err != nil {
		return err
	}

	p := plot.New()
	p.Title.Text = opts.Title
	if p.Title.Text == "" {
		p.Title.Text = fmt.Sprintf("%s vs %s", y.Name, x.Name)
	}
	p.X.Label.Text = string(x.Name)
	p.Y.Label.Text = axisLabel(y)
	p.Add(plotter.NewGrid())

	if x.Name == analyzer.AxisStep || x.Name == AxisLine {
		line, err := plotter.NewLine(xys)
		if err != nil {
			return fmt.Errorf("building line: %w", err)
		}
		p.Add(line)
	} else {
		scatter, err := plotter.NewScatter(xys)
		if err != nil {
			return fmt.Errorf("building scatter: %w", err)
		}
		p.Add(scatter)
	}

	return save(p, path, opts)
}

// RungBuckets draws one bar per rung bucket and writes the image to path.
func RungBuckets(metric analyzer.Metric, buckets []analyzer.RungBucket, path string, opts Options) error {
	if err := CheckPath(path); err != nil {
		return err
	}
	if len(buckets) == 0 {
		return fmt.Errorf("%w: no rung intervals", ErrNoData)
	}

	values := make(plotter.Values, len(buckets))
	labels := make([]string, len(buckets))
	for i, b := range buckets {
		values[i] = b.Sum
		labels[i] = fmt.Sprintf("rung %d", b.Rung)
	}

	bars, err := plotter.NewBarChart(values, vg.Points(20))
	if err != nil {
		return fmt.Errorf("building bars: %w", err)
	}

	p := plot.New()
	p.Title.Text = opts.Title
	if p.Title.Text == "" {
		p.Title.Text = fmt.Sprintf("%s time by rung", metric.Label())
	}
	p.Y.Label.Text = "seconds"
	p.Add(plotter.NewGrid(), bars)
	p.NominalX(labels...)

	return save(p, path, opts)
}

func axisLabel(a analyzer.AxisData) string {
	switch a.Name {
	case analyzer.AxisStep, AxisLine:
		return string(a.Name)
	case analyzer.AxisTotalStepTime:
		return "step time (s)"
	}
	if a.Resolution == analyzer.ResolutionSubStep {
		return string(a.Name) + " per sample (s)"
	}
	return string(a.Name) + " per step (s)"
}

func save(p *plot.Plot, path string, opts Options) error {
	w, h := opts.size()
	if err := p.Save(w, h, path); err != nil {
		return fmt.Errorf("saving chart %s: %w", path, err)
	}
	return nil
}
