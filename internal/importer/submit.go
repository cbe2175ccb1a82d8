package importer

// submit.go drives a batch through the asset store's single-record creation
// endpoint.
//
// The default is one in-flight request: record n+1 is not started until
// record n has reached a terminal status, which preserves workbook order on
// the wire and bounds load on the store to a single request. The bound is
// explicit and configurable — with more than one worker a bounded pool
// submits concurrently, each worker writing only its own status slot.
// A single record's failure never aborts the batch.

import (
	"context"
	"log/slog"
	"sync"
	"time"
)

// Creator is the collaborator capability the submitter consumes: create one
// asset record, returning nil on an explicit success acknowledgment.
type Creator interface {
	CreateAsset(ctx context.Context, rec Record) error
}

// Submitter submits batches to an asset store.
type Submitter struct {
	creator Creator
	workers int
}

// NewSubmitter creates a Submitter with the given concurrency bound.
// Bounds below 1 are treated as 1, the single-in-flight default.
func NewSubmitter(creator Creator, workers int) *Submitter {
	if workers < 1 {
		workers = 1
	}
	return &Submitter{creator: creator, workers: workers}
}

// Submit drives every Pending record to a terminal status and returns the
// run summary. Records that were Failed at batch construction are never
// sent. On context cancellation the remaining non-terminal records are
// marked Failed so that submitted+failed still equals the batch size.
func (s *Submitter) Submit(ctx context.Context, b *Batch) Summary {
	start := time.Now()
	logger := slog.Default().With("batch_id", b.ID)

	logger.Info("batch submission started",
		"records", b.Size(),
		"pending", b.Pending(),
		"workers", s.workers,
	)

	if s.workers == 1 {
		s.submitSequential(ctx, b)
	} else {
		s.submitPool(ctx, b)
	}

	sum := b.Summarize(time.Since(start))
	logger.Info("batch submission finished",
		"submitted", sum.Submitted,
		"failed", sum.Failed,
		"duration", sum.Duration,
	)
	return sum
}

// SubmitOne submits a single record, the degenerate case of a batch of size
// one used by the manual-entry flow. No header mapping is involved.
func (s *Submitter) SubmitOne(ctx context.Context, rec Record) error {
	if field, ok := missingRequired(rec); !ok {
		return &MissingRequiredFieldError{Line: rec.Line, Field: field}
	}
	if err := s.creator.CreateAsset(ctx, rec); err != nil {
		return &SubmissionError{Line: rec.Line, Err: err}
	}
	return nil
}

func (s *Submitter) submitSequential(ctx context.Context, b *Batch) {
	for i := range b.Records {
		if b.Records[i].Status.State != StatePending {
			continue
		}
		b.Records[i].Status = s.submitRecord(ctx, b.Records[i].Record)
	}
}

func (s *Submitter) submitPool(ctx context.Context, b *Batch) {
	indices := make(chan int)

	var wg sync.WaitGroup
	for w := 0; w < s.workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range indices {
				b.Records[i].Status = s.submitRecord(ctx, b.Records[i].Record)
			}
		}()
	}

	for i := range b.Records {
		if b.Records[i].Status.State == StatePending {
			indices <- i
		}
	}
	close(indices)
	wg.Wait()
}

// submitRecord performs one submission and returns the terminal status.
func (s *Submitter) submitRecord(ctx context.Context, rec Record) Status {
	if err := ctx.Err(); err != nil {
		return Status{State: StateFailed, Reason: "import cancelled"}
	}

	if err := s.creator.CreateAsset(ctx, rec); err != nil {
		serr := &SubmissionError{Line: rec.Line, Err: err}
		slog.Warn("record submission failed", "line", rec.Line, "error", err)
		return Status{State: StateFailed, Reason: serr.Error()}
	}

	return Status{State: StateSubmitted}
}
