package output

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/ccollicutt/oldtimer/pkg/analyzer"
	"github.com/ccollicutt/oldtimer/pkg/config"
	"github.com/ccollicutt/oldtimer/pkg/parser"
)

const testLog = `ChaNGa
Rung distribution
Calculating gravity took 1.5 seconds.
Big step 1 took 2.0 seconds.
Rung distribution
Calculating gravity took 3.0 seconds.
Big step 2 took 3.5 seconds.
Done.`

func parseTestLog(t *testing.T, name, text string) *analyzer.LogModel {
	t.Helper()
	p, err := analyzer.NewParser(config.DefaultConfig())
	if err != nil {
		t.Fatalf("NewParser() error = %v", err)
	}

	raw := strings.Split(text, "\n")
	lines := make([]parser.LogLine, len(raw))
	for i, c := range raw {
		lines[i] = parser.LogLine{Content: c, Source: name, Position: i}
	}

	model, err := p.Parse(name, lines)
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	return model
}

func createTestReport(t *testing.T) *Report {
	t.Helper()
	start := time.Date(2024, 1, 15, 10, 0, 0, 0, time.UTC)
	model := parseTestLog(t, "/data/run.log", testLog)

	result := &analyzer.BatchResult{
		Models:   []*analyzer.LogModel{model},
		Failures: []analyzer.FileFailure{{Path: "/data/missing.log", Err: errors.New("opening log file: no such file")}},
		Metadata: analyzer.BatchMetadata{
			Sources:        []string{"/data/run.log", "/data/missing.log"},
			StartTime:      start,
			EndTime:        start.Add(150 * time.Millisecond),
			LinesProcessed: model.LineCount,
		},
	}
	return NewReport(result, []string{"run.log"}, "oldtimer.yaml")
}
