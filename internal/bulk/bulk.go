// Package bulk feeds large barcode lists through the classifier in chunks,
// yielding control to the caller between chunks so a host UI stays
// responsive. Classification runs silent: scan events and the seen set are
// updated, but the per-scan side channel stays quiet (ISBN hits excepted).
package bulk

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/ismailkaraca/kohasayim/internal/classify"
)

// DefaultChunkSize is the number of codes classified between yield points.
const DefaultChunkSize = 200

// Progress reports the state of a bulk run after each chunk.
type Progress struct {
	Processed int
	Total     int
	Logged    int
	ISBNs     int
	Ignored   int
}

// Runner drives a chunked bulk reconciliation over one classifier.
type Runner struct {
	classifier *classify.Classifier
	chunkSize  int
}

// New creates a runner. A non-positive chunk size falls back to the default.
func New(classifier *classify.Classifier, chunkSize int) *Runner {
	if chunkSize <= 0 {
		chunkSize = DefaultChunkSize
	}
	return &Runner{classifier: classifier, chunkSize: chunkSize}
}

// Run classifies every code, chunk by chunk. onChunk is the yield point,
// called after each chunk completes; a nil onChunk just runs to completion.
// Cancellation is checked between chunks only: there is no way to interrupt
// a chunk mid-flight, matching the single-writer model of the ledger.
func (r *Runner) Run(ctx context.Context, codes []string, onChunk func(Progress)) (Progress, error) {
	progress := Progress{Total: len(codes)}

	for start := 0; start < len(codes); start += r.chunkSize {
		if err := ctx.Err(); err != nil {
			return progress, fmt.Errorf("bulk run canceled after %d of %d codes: %w",
				progress.Processed, progress.Total, err)
		}

		end := start + r.chunkSize
		if end > len(codes) {
			end = len(codes)
		}

		for _, code := range codes[start:end] {
			outcome := r.classifier.ClassifySilent(code)
			progress.Processed++
			switch outcome.Kind {
			case classify.OutcomeLogged:
				progress.Logged++
			case classify.OutcomeISBN:
				progress.ISBNs++
			case classify.OutcomeIgnored:
				progress.Ignored++
			}
		}

		if onChunk != nil {
			onChunk(progress)
		}
	}

	return progress, nil
}

// ReadCodes reads one barcode per line, skipping blank lines.
func ReadCodes(r io.Reader) ([]string, error) {
	var codes []string
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		codes = append(codes, line)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read barcode list: %w", err)
	}
	return codes, nil
}
