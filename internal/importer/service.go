package importer

// service.go wires the pipeline stages together: decode the uploaded
// workbook, reconcile headers, build record candidates, assemble the batch
// and drive submission. Decode failures abort before any batch exists; all
// later failures are record-scoped and land in the summary.

import (
	"context"

	"github.com/dmutonyi/assetimport/internal/workbook"
)

// Service runs complete import pipelines against one asset store.
type Service struct {
	submitter *Submitter
}

// NewService creates a Service submitting through creator with the given
// concurrency bound.
func NewService(creator Creator, workers int) *Service {
	return &Service{submitter: NewSubmitter(creator, workers)}
}

// Import runs the full pipeline over raw workbook bytes and returns the run
// summary. The only error return is a decode failure; partial success is a
// summary, not an error.
func (s *Service) Import(ctx context.Context, data []byte) (Summary, error) {
	rows, err := workbook.Decode(data)
	if err != nil {
		return Summary{}, err
	}

	batch := s.BuildBatch(rows)
	return s.submitter.Submit(ctx, batch), nil
}

// BuildBatch maps the header row, builds one record candidate per data row
// and assembles the validated batch. A workbook with only a header row (or
// none) yields an empty batch; no submissions are issued for it.
func (s *Service) BuildBatch(rows [][]string) *Batch {
	if len(rows) == 0 {
		return NewBatch(nil)
	}

	keys := MapHeaders(rows[0])

	candidates := make([]Record, 0, len(rows)-1)
	for i, row := range rows[1:] {
		// Workbook line numbers are 1-indexed and the header is line 1.
		candidates = append(candidates, BuildRecord(keys, row, i+2))
	}

	return NewBatch(candidates)
}

// SubmitOne submits a single record outside any batch, for the manual-entry
// flow.
func (s *Service) SubmitOne(ctx context.Context, rec Record) error {
	return s.submitter.SubmitOne(ctx, rec)
}
