package parser

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
)

// MaxLineSize bounds a single log line. ChaNGa writes long rung tables on
// one line, so this is well above bufio's default.
const MaxLineSize = 1024 * 1024

// ReaderSource implements LineSource on top of an io.Reader.
type ReaderSource struct {
	name    string
	scanner *bufio.Scanner
	closer  io.Closer
	pos     int
}

// NewReaderSource creates a LineSource reading lines from r.
// The name is recorded as the Source of every line.
func NewReaderSource(name string, r io.Reader) *ReaderSource {
	s := bufio.NewScanner(r)
	s.Buffer(make([]byte, 0, 64*1024), MaxLineSize)
	return &ReaderSource{name: name, scanner: s}
}

// OpenFile opens a log file for reading.
func OpenFile(path string) (*ReaderSource, error) {
	f, err := os.Open(path) // #nosec G304 -- user-provided paths are expected
	if err != nil {
		return nil, fmt.Errorf("opening log file %s: %w", path, err)
	}
	src := NewReaderSource(path, f)
	src.closer = f
	return src, nil
}

// Name returns the source name.
func (s *ReaderSource) Name() string {
	return s.name
}

// Next returns the next line.
// Returns io.EOF when the reader is exhausted.
func (s *ReaderSource) Next(ctx context.Context) (*LogLine, error) {
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	default:
	}

	if s.scanner.Scan() {
		line := &LogLine{
			Content:  s.scanner.Text(),
			Source:   s.name,
			Position: s.pos,
		}
		s.pos++
		return line, nil
	}

	if err := s.scanner.Err(); err != nil {
		return nil, fmt.Errorf("reading %s: %w", s.name, err)
	}
	return nil, io.EOF
}

// Close releases the underlying file, if any.
func (s *ReaderSource) Close() error {
	if s.closer != nil {
		err := s.closer.Close()
		s.closer = nil
		return err
	}
	return nil
}

// ReadAll drains src into a fully materialized line sequence.
func ReadAll(ctx context.Context, src LineSource) ([]LogLine, error) {
	var lines []LogLine
	for {
		line, err := src.Next(ctx)
		if errors.Is(err, io.EOF) {
			return lines, nil
		}
		if err != nil {
			return nil, err
		}
		lines = append(lines, *line)
	}
}

// ReadFile opens path and reads every line.
func ReadFile(ctx context.Context, path string) ([]LogLine, error) {
	src, err := OpenFile(path)
	if err != nil {
		return nil, err
	}
	defer src.Close()

	return ReadAll(ctx, src)
}
