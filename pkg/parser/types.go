// Package parser reads simulation log files into ordered line sequences.
package parser

// LogLine is a single raw line of a simulation log.
type LogLine struct {
	// Content is the line text without its trailing newline.
	Content string

	// Source is the file path (or name) the line came from.
	Source string

	// Position is the 0-based ordinal of the line in its log.
	Position int
}
