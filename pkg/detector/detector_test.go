package detector

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/ccollicutt/oldtimer/pkg/analyzer"
	"github.com/ccollicutt/oldtimer/pkg/config"
	"github.com/ccollicutt/oldtimer/pkg/parser"
)

const changaLog = `ChaNGa version 3.4
Domain decomposition ... took 0.25 seconds.
Rung distribution: 0 12 0
Step: 0.0 Time: 0.0 Rungs 0 to 2. Gravity Active: 4096, Gas Active: 2048
Calculating gravity (tree bucket) took 1.5 seconds.
Step: 0.5 Time: 0.1 Rungs ?? to 2. Gravity Active: 1024
Calculating gravity (tree bucket) took 0.5 seconds.
Big step 1 took 3.0 seconds.
Rung distribution: 0 12 0
Calculating gravity (tree bucket) took n/a seconds.
Big step 2 took 2.5 seconds.
Done.`

func toLines(text string) []parser.LogLine {
	raw := strings.Split(text, "\n")
	lines := make([]parser.LogLine, len(raw))
	for i, c := range raw {
		lines[i] = parser.LogLine{Content: c, Source: "test.log", Position: i}
	}
	return lines
}

func newDetector(t *testing.T, opts ...Option) *Detector {
	t.Helper()
	d, err := New(opts...)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	return d
}

func keyword(c *Census, m analyzer.Metric) KeywordHit {
	for _, hit := range c.Keywords {
		if hit.Metric == m {
			return hit
		}
	}
	return KeywordHit{}
}

func TestDetectFromLines_ChaNGa(t *testing.T) {
	c := newDetector(t).DetectFromLines("test.log", toLines(changaLog))

	if c.SampledLines != 12 {
		t.Errorf("SampledLines = %d, want 12", c.SampledLines)
	}
	if c.StepMarkers != 2 {
		t.Errorf("StepMarkers = %d, want 2", c.StepMarkers)
	}
	if c.ReportMarkers != 2 || c.TimedReports != 2 {
		t.Errorf("reports = %d/%d, want 2/2", c.TimedReports, c.ReportMarkers)
	}
	if c.TerminalLine != 11 || !c.Terminated() {
		t.Errorf("TerminalLine = %d, want 11", c.TerminalLine)
	}
	if c.RungMarkers != 2 || c.MalformedRungs != 1 {
		t.Errorf("rungs = %d markers, %d malformed; want 2, 1", c.RungMarkers, c.MalformedRungs)
	}
	if len(c.MalformedExamples) != 1 || !strings.Contains(c.MalformedExamples[0], "??") {
		t.Errorf("MalformedExamples = %v", c.MalformedExamples)
	}
	if c.Recommended != config.SegmentOnMarker {
		t.Errorf("Recommended = %q, want marker", c.Recommended)
	}

	g := keyword(c, analyzer.Gravity)
	if g.Keyword != "Calculating gravity" || g.Lines != 3 || g.Timed != 2 {
		t.Errorf("gravity hit = %+v, want 3 lines, 2 timed", g)
	}
	if dd := keyword(c, analyzer.DomainDecomp); dd.Lines != 1 {
		t.Errorf("domain decomposition hit = %+v", dd)
	}
	if len(c.Keywords) != len(analyzer.Metrics()) {
		t.Errorf("Keywords = %d entries", len(c.Keywords))
	}

	found := false
	for _, n := range c.Notes {
		if strings.Contains(n, "1 of 2 rung marker lines") {
			found = true
		}
	}
	if !found {
		t.Errorf("Notes = %v, want malformed rung note", c.Notes)
	}
}

func TestDetectFromLines_ReportOnly(t *testing.T) {
	log := "Calculating gravity took 1.0 seconds.\nBig step 1 took 2.0 seconds.\nBig step 2 took 2.0 seconds."
	c := newDetector(t).DetectFromLines("single.log", toLines(log))

	if c.Recommended != config.SegmentOnReport {
		t.Errorf("Recommended = %q, want report", c.Recommended)
	}
	if c.Terminated() {
		t.Error("Terminated() = true without terminal marker")
	}
	if !c.HasMarkers() {
		t.Error("HasMarkers() = false with timed report lines")
	}
	if len(c.Notes) < 2 {
		t.Errorf("Notes = %v, want policy and terminal notes", c.Notes)
	}
}

func TestDetectFromLines_Nothing(t *testing.T) {
	c := newDetector(t).DetectFromLines("noise.log", toLines("hello\nworld"))

	if c.HasMarkers() {
		t.Error("HasMarkers() = true for a log without markers")
	}
	if c.Recommended != config.SegmentOnMarker {
		t.Errorf("Recommended = %q, want marker fallback", c.Recommended)
	}

	joined := strings.Join(c.Notes, "\n")
	for _, want := range []string{"single step", "not found", "no metric keyword"} {
		if !strings.Contains(joined, want) {
			t.Errorf("Notes missing %q: %v", want, c.Notes)
		}
	}
}

func TestDetectFromLines_Empty(t *testing.T) {
	c := newDetector(t).DetectFromLines("empty.log", nil)
	if c.SampledLines != 0 || c.TerminalLine != -1 {
		t.Errorf("Census = %+v", c)
	}
}

func TestWithConfig_CustomMarkers(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Segmentation.StepMarker = "=== iteration"
	cfg.Metrics = map[string]string{"Gravity": "gravity walk"}

	d := newDetector(t, WithConfig(cfg))
	c := d.DetectFromLines("custom.log", toLines("=== iteration 1\ngravity walk took 2 seconds.\n=== iteration 2\nDone."))

	if c.StepMarkers != 2 {
		t.Errorf("StepMarkers = %d, want 2", c.StepMarkers)
	}
	if g := keyword(c, analyzer.Gravity); g.Lines != 1 || g.Timed != 1 || g.Keyword != "gravity walk" {
		t.Errorf("gravity hit = %+v", g)
	}
}

func TestDetectFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "run.log")
	if err := os.WriteFile(path, []byte(changaLog), 0644); err != nil {
		t.Fatal(err)
	}

	c, err := newDetector(t).DetectFromFile(context.Background(), path)
	if err != nil {
		t.Fatalf("DetectFromFile() error = %v", err)
	}
	if c.Source != path || c.SampledLines != 12 {
		t.Errorf("Census = %s, %d lines", c.Source, c.SampledLines)
	}
}

func TestDetectFromFile_SampleSize(t *testing.T) {
	path := filepath.Join(t.TempDir(), "run.log")
	if err := os.WriteFile(path, []byte(changaLog), 0644); err != nil {
		t.Fatal(err)
	}

	c, err := newDetector(t, WithSampleSize(3)).DetectFromFile(context.Background(), path)
	if err != nil {
		t.Fatalf("DetectFromFile() error = %v", err)
	}
	if c.SampledLines != 3 || c.StepMarkers != 1 || c.Terminated() {
		t.Errorf("Census = %d lines, %d step markers, terminated %v", c.SampledLines, c.StepMarkers, c.Terminated())
	}
}

func TestDetectFromFile_NotFound(t *testing.T) {
	_, err := newDetector(t).DetectFromFile(context.Background(), "/nonexistent/run.log")
	if err == nil {
		t.Error("DetectFromFile() expected error for missing file")
	}
}

func TestStarterConfig_RoundTrip(t *testing.T) {
	d := newDetector(t)
	c := d.DetectFromLines("single.log", toLines("Big step 1 took 2.0 seconds.\nDone."))

	var buf bytes.Buffer
	if err := WriteConfig(&buf, d.StarterConfig(c), c); err != nil {
		t.Fatalf("WriteConfig() error = %v", err)
	}

	out := buf.String()
	if !strings.HasPrefix(out, "# oldtimer configuration") || !strings.Contains(out, "single.log") {
		t.Errorf("header missing:\n%s", out)
	}
	if !strings.Contains(out, "policy: report") {
		t.Errorf("config missing recommended policy:\n%s", out)
	}

	path := filepath.Join(t.TempDir(), "oldtimer.yaml")
	if err := os.WriteFile(path, buf.Bytes(), 0644); err != nil {
		t.Fatal(err)
	}
	cfg, err := config.Load(context.Background(), path)
	if err != nil {
		t.Fatalf("Load() of generated config error = %v", err)
	}
	if cfg.Segmentation.Policy != config.SegmentOnReport {
		t.Errorf("loaded policy = %q", cfg.Segmentation.Policy)
	}
	if cfg.Rungs.Pattern != config.DefaultRungPattern {
		t.Error("rung pattern did not survive the round trip")
	}
}

func TestStarterConfig_DoesNotModifyDetector(t *testing.T) {
	d := newDetector(t)
	c := d.DetectFromLines("single.log", toLines("Big step 1 took 2.0 seconds."))
	_ = d.StarterConfig(c)

	again := d.DetectFromLines("x.log", toLines("Rung distribution\nDone."))
	if again.StepMarkers != 1 {
		t.Error("StarterConfig changed the detector's markers")
	}
}
