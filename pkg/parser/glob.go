package parser

import (
	"fmt"
	"path/filepath"
)

// ExpandGlobs expands a list of file paths and glob patterns into a deduplicated
// list of log paths. Patterns keep the order they were given in; matches of a
// single pattern are sorted. Patterns that don't match any files are returned
// as-is so that opening them reports a proper file-not-found error.
func ExpandGlobs(patterns []string) ([]string, error) {
	seen := make(map[string]bool)
	var result []string

	add := func(p string) {
		if !seen[p] {
			seen[p] = true
			result = append(result, p)
		}
	}

	for _, pattern := range patterns {
		matches, err := filepath.Glob(pattern)
		if err != nil {
			return nil, fmt.Errorf("invalid glob pattern %q: %w", pattern, err)
		}

		if len(matches) == 0 {
			add(pattern)
			continue
		}

		// filepath.Glob returns matches in lexical order.
		for _, match := range matches {
			add(match)
		}
	}

	return result, nil
}
