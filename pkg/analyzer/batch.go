package analyzer

import (
	"context"
	"time"
)

// BatchResult is the outcome of parsing several log files.
type BatchResult struct {
	// Models holds the successfully parsed logs in input order.
	Models []*LogModel

	// Failures lists files that could not be read or parsed.
	Failures []FileFailure

	// Metadata provides context about the run.
	Metadata BatchMetadata
}

// FileFailure records why one file produced no model.
type FileFailure struct {
	Path string
	Err  error
}

// BatchMetadata provides context about a batch run.
type BatchMetadata struct {
	// Sources lists every file that was attempted.
	Sources []string

	StartTime time.Time
	EndTime   time.Time

	// LinesProcessed is the total number of lines in the parsed models.
	LinesProcessed int
}

// Diagnostics returns the number of diagnostics across all models.
func (r *BatchResult) Diagnostics() int {
	total := 0
	for _, m := range r.Models {
		total += len(m.Diagnostics)
	}
	return total
}

// Failed reports whether any file produced no model.
func (r *BatchResult) Failed() bool {
	return len(r.Failures) > 0
}

// ParseFiles parses every path. A file that cannot be read, or that fails
// under the abort policy, is recorded as a failure and the remaining files
// are still parsed. Only context cancellation stops the batch early.
func (p *Parser) ParseFiles(ctx context.Context, paths []string) (*BatchResult, error) {
	result := &BatchResult{
		Models: make([]*LogModel, 0, len(paths)),
		Metadata: BatchMetadata{
			Sources:   make([]string, 0, len(paths)),
			StartTime: time.Now(),
		},
	}

	for _, path := range paths {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		result.Metadata.Sources = append(result.Metadata.Sources, path)

		model, err := p.ParseFile(ctx, path)
		if err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return nil, ctxErr
			}
			p.logger.Warn("skipping log", "log", path, "error", err)
			result.Failures = append(result.Failures, FileFailure{Path: path, Err: err})
			continue
		}

		result.Metadata.LinesProcessed += model.LineCount
		result.Models = append(result.Models, model)
	}

	result.Metadata.EndTime = time.Now()
	return result, nil
}
