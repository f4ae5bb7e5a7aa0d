package analyzer

import (
	"strings"
	"testing"

	"github.com/ccollicutt/oldtimer/pkg/config"
	"github.com/ccollicutt/oldtimer/pkg/parser"
)

// changaLog is a trimmed ChaNGa run: an init phase, two big steps with rung
// transitions, the terminal marker and a stray line after it.
const changaLog = `ChaNGa version 3.4
Domain decomposition ... total 0.2 took 0.25 seconds.
Load balancer ... took 0.5 seconds.
Building trees ... took 0.1 seconds.
Rung distribution: 0 12 0
Step: 0.000000 Time: 0.000000 Rungs 0 to 2. Gravity Active: 4096, Gas Active: 2048
Domain decomposition ... took 0.3 seconds.
Calculating gravity (tree bucket, theta = 0.7) took 1.5 seconds.
Calculating densities took 0.4 seconds.
Step: 0.500000 Time: 0.000100 Rungs 1 to 2. Gravity Active: 1024
Calculating gravity (tree bucket, theta = 0.7) took 0.5 seconds.
Big step 1 took 3.0 seconds.
Rung distribution: 0 12 0
Step: 1.000000 Time: 0.000200 Rungs 0 to 2. Gravity Active: 4096, Gas Active: 2048
Calculating gravity (tree bucket, theta = 0.7) took 2.0 seconds.
Calculating pressure gradients took 0.2 seconds.
Big step 2 took 2.5 seconds.
Done.
Trailing noise`

func toLines(text string) []parser.LogLine {
	raw := strings.Split(text, "\n")
	lines := make([]parser.LogLine, len(raw))
	for i, content := range raw {
		lines[i] = parser.LogLine{Content: content, Source: "test.log", Position: i}
	}
	return lines
}

func newTestParser(t *testing.T, mutate func(*config.Config)) *Parser {
	t.Helper()
	cfg := config.DefaultConfig()
	if mutate != nil {
		mutate(cfg)
	}
	if err := config.Validate(cfg); err != nil {
		t.Fatalf("Validate() error = %v", err)
	}
	p, err := NewParser(cfg)
	if err != nil {
		t.Fatalf("NewParser() error = %v", err)
	}
	return p
}

func mustParse(t *testing.T, p *Parser, text string) *LogModel {
	t.Helper()
	model, err := p.Parse("test.log", toLines(text))
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	return model
}

// checkRungInvariant fails if a step's intervals are not ordered, contiguous
// and closed at the end of the step.
func checkRungInvariant(t *testing.T, step *BigStep) {
	t.Helper()
	rungs := step.Rungs
	for i := 0; i+1 < len(rungs); i++ {
		if rungs[i].ToIndex+1 != rungs[i+1].FromIndex {
			t.Errorf("step %d: interval %d ends at %d, next starts at %d",
				step.Number, i, rungs[i].ToIndex, rungs[i+1].FromIndex)
		}
	}
	for i, iv := range rungs {
		if iv.FromIndex > iv.ToIndex {
			t.Errorf("step %d: interval %d is empty [%d, %d]", step.Number, i, iv.FromIndex, iv.ToIndex)
		}
	}
	if n := len(rungs); n > 0 && rungs[n-1].ToIndex != step.End {
		t.Errorf("step %d: last interval ends at %d, step ends at %d", step.Number, rungs[n-1].ToIndex, step.End)
	}
}
