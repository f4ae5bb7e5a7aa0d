package parser

import (
	"context"
)

// LineSource provides an iterator over the lines of one log.
// Implementations must be safe for sequential access (not concurrent).
type LineSource interface {
	// Next returns the next line.
	// Returns io.EOF when no more lines are available.
	Next(ctx context.Context) (*LogLine, error)

	// Name identifies the log the lines belong to.
	Name() string

	// Close releases any resources held by the source.
	Close() error
}
