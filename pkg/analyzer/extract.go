package analyzer

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/ccollicutt/oldtimer/pkg/parser"
)

const (
	tookToken    = "took"
	secondsToken = "seconds"
)

// tookValue accepts plain decimals only: no sign, no exponent.
var tookValue = regexp.MustCompile(`^[0-9]*\.?[0-9]+$`)

// ParseTook reads the value of a "took N seconds" clause: the text strictly
// between a "took" and the next "seconds", trimmed. Every "took" in the line
// is tried in order until one yields a number.
func ParseTook(line string) (float64, bool) {
	rest := line
	for {
		i := strings.Index(rest, tookToken)
		if i < 0 {
			return 0, false
		}
		rest = rest[i+len(tookToken):]

		j := strings.Index(rest, secondsToken)
		if j < 0 {
			return 0, false
		}

		num := strings.TrimSpace(rest[:j])
		if tookValue.MatchString(num) {
			if v, err := strconv.ParseFloat(num, 64); err == nil {
				return v, true
			}
		}
	}
}

// ExtractMetric scans lines for keyword and returns the took values of the
// matching lines, keeping their positions. Matching lines without a
// parsable clause are skipped.
func ExtractMetric(lines []parser.LogLine, keyword string) MetricSeries {
	var series MetricSeries
	for _, line := range lines {
		if !strings.Contains(line.Content, keyword) {
			continue
		}
		if v, ok := ParseTook(line.Content); ok {
			series = append(series, Sample{Position: line.Position, Value: v})
		}
	}
	return series
}

// stepTime returns the took value of the first line containing marker, or 0.
func stepTime(lines []parser.LogLine, marker string) float64 {
	for _, line := range lines {
		if !strings.Contains(line.Content, marker) {
			continue
		}
		if v, ok := ParseTook(line.Content); ok {
			return v
		}
	}
	return 0.0
}
