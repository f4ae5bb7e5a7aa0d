package analyzer

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/ccollicutt/oldtimer/pkg/config"
	"github.com/ccollicutt/oldtimer/pkg/parser"
)

// RungIndexer finds rung transition lines in a step and builds the
// contiguous intervals between them.
type RungIndexer struct {
	marker  string
	pattern *regexp.Regexp
	policy  config.MalformedPolicy

	fromIdx, toIdx, gravityIdx, gasIdx int
}

// NewRungIndexer creates an indexer from a validated rung configuration.
func NewRungIndexer(cfg *config.RungConfig) (*RungIndexer, error) {
	re := cfg.CompiledPattern()
	if re == nil {
		var err error
		if re, err = regexp.Compile(cfg.Pattern); err != nil {
			return nil, fmt.Errorf("compiling rung pattern: %w", err)
		}
	}

	r := &RungIndexer{
		marker:     cfg.Marker,
		pattern:    re,
		policy:     cfg.Malformed,
		fromIdx:    re.SubexpIndex(config.GroupFrom),
		toIdx:      re.SubexpIndex(config.GroupTo),
		gravityIdx: re.SubexpIndex(config.GroupGravity),
		gasIdx:     re.SubexpIndex(config.GroupGas),
	}
	if r.fromIdx < 0 || r.toIdx < 0 || r.gravityIdx < 0 {
		return nil, fmt.Errorf("rung pattern must define groups %q, %q and %q",
			config.GroupFrom, config.GroupTo, config.GroupGravity)
	}
	return r, nil
}

// IsMarker reports whether content is a rung transition line.
func (r *RungIndexer) IsMarker(content string) bool {
	return strings.Contains(content, r.marker)
}

// ParseLine parses a transition line into an interval starting at the
// line's position. ToIndex is left equal to FromIndex.
func (r *RungIndexer) ParseLine(line parser.LogLine) (RungInterval, error) {
	m := r.pattern.FindStringSubmatch(line.Content)
	if m == nil {
		return RungInterval{}, &RungParseError{
			Position: line.Position,
			Line:     line.Content,
			Reason:   "rung pattern did not match",
		}
	}

	atoi := func(group string, idx int) (int, error) {
		v, err := strconv.Atoi(m[idx])
		if err != nil {
			return 0, &RungParseError{
				Position: line.Position,
				Line:     line.Content,
				Reason:   fmt.Sprintf("%s: %v", group, err),
			}
		}
		return v, nil
	}

	iv := RungInterval{FromIndex: line.Position, ToIndex: line.Position}
	var err error
	if iv.FromRung, err = atoi(config.GroupFrom, r.fromIdx); err != nil {
		return RungInterval{}, err
	}
	if iv.ToRung, err = atoi(config.GroupTo, r.toIdx); err != nil {
		return RungInterval{}, err
	}
	if iv.GravityActive, err = atoi(config.GroupGravity, r.gravityIdx); err != nil {
		return RungInterval{}, err
	}
	if r.gasIdx >= 0 && m[r.gasIdx] != "" {
		if iv.GasActive, err = atoi(config.GroupGas, r.gasIdx); err != nil {
			return RungInterval{}, err
		}
		iv.HasGasActive = true
	}

	return iv, nil
}

// Index builds the ordered rung intervals of one step. Each interval runs
// from its marker line to the line before the next accepted marker; the last
// one runs to the end of the step. Malformed marker lines are returned as
// diagnostics under the skip policy and stay inside the preceding interval;
// under the abort policy the first one is returned as an error.
func (r *RungIndexer) Index(lines []parser.LogLine) ([]RungInterval, []error, error) {
	var intervals []RungInterval
	var skipped []error

	for _, line := range lines {
		if !r.IsMarker(line.Content) {
			continue
		}

		iv, err := r.ParseLine(line)
		if err != nil {
			if r.policy == config.MalformedAbort {
				return nil, nil, err
			}
			skipped = append(skipped, err)
			continue
		}

		if n := len(intervals); n > 0 {
			intervals[n-1].ToIndex = line.Position - 1
		}
		intervals = append(intervals, iv)
	}

	if n := len(intervals); n > 0 {
		intervals[n-1].ToIndex = lines[len(lines)-1].Position
	}

	return intervals, skipped, nil
}
