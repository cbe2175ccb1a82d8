package importer

// batch.go holds the in-memory collection of record candidates for one
// import run, with a per-record status machine.
//
// Status is a tagged variant, not a boolean: a Failed record keeps its
// reason so the summary can report exactly which rows were rejected and why.
// The batch is exclusively owned by the Submitter while a run is in
// progress; nothing else reads or writes record status concurrently.

import (
	"time"

	"github.com/dmutonyi/assetimport/internal/schema"
	"github.com/google/uuid"
)

// State is the lifecycle position of one record within a batch run.
type State string

const (
	StatePending   State = "pending"
	StateSubmitted State = "submitted"
	StateFailed    State = "failed"
)

// Status pairs a state with a failure reason. Reason is empty unless the
// state is StateFailed.
type Status struct {
	State  State  `json:"state"`
	Reason string `json:"reason,omitempty"`
}

// Terminal reports whether the status will not change again within this run.
func (s Status) Terminal() bool {
	return s.State == StateSubmitted || s.State == StateFailed
}

// BatchRecord is one (record, status) pair in batch order.
type BatchRecord struct {
	Record Record
	Status Status
}

// Batch is one import run's ordered set of candidate records and their
// per-record outcomes.
type Batch struct {
	ID      string
	Records []BatchRecord
}

// NewBatch validates record candidates and assembles them into a batch.
// Candidates with no cells at all (blank workbook rows) are dropped.
// Candidates missing a required attribute are retained with a Failed status
// rather than silently dropped; valid candidates start Pending.
func NewBatch(candidates []Record) *Batch {
	b := &Batch{ID: uuid.NewString()}

	for _, rec := range candidates {
		if rec.Empty() {
			continue
		}

		status := Status{State: StatePending}
		if field, ok := missingRequired(rec); !ok {
			err := &MissingRequiredFieldError{Line: rec.Line, Field: field}
			status = Status{State: StateFailed, Reason: err.Error()}
		}

		b.Records = append(b.Records, BatchRecord{Record: rec, Status: status})
	}

	return b
}

// missingRequired returns the first required attribute that the record
// carries but left empty. Presence checking is scoped to the columns the
// source actually has: a template without a required column is the store's
// problem to reject, while an empty cell in a required column fails fast
// here. The boolean is true when no required attribute is empty.
func missingRequired(rec Record) (string, bool) {
	for _, field := range schema.RequiredFields {
		if v, ok := rec.Fields[field]; ok && v == "" {
			return field, false
		}
	}
	return "", true
}

// Size returns the number of records in the batch.
func (b *Batch) Size() int { return len(b.Records) }

// Pending returns the count of records still awaiting submission.
func (b *Batch) Pending() int {
	n := 0
	for _, br := range b.Records {
		if br.Status.State == StatePending {
			n++
		}
	}
	return n
}

// Failure describes one rejected or failed record in the summary.
type Failure struct {
	Line   int    `json:"line"`
	Reason string `json:"reason"`
}

// Summary is the final report of one batch run, surfaced to the caller and
// then discarded. Submitted+Failed always equals the batch's pre-run size.
type Summary struct {
	BatchID   string            `json:"batchId"`
	Total     int               `json:"total"`
	Submitted int               `json:"submitted"`
	Failed    int               `json:"failed"`
	Failures  []Failure         `json:"failures,omitempty"`
	Warnings  []CoercionWarning `json:"warnings,omitempty"`
	Duration  time.Duration     `json:"-"`
}

// Summarize tallies terminal statuses into a Summary. Records still Pending
// are not counted; call it after a submitter run completes.
func (b *Batch) Summarize(elapsed time.Duration) Summary {
	sum := Summary{BatchID: b.ID, Total: len(b.Records), Duration: elapsed}

	for _, br := range b.Records {
		switch br.Status.State {
		case StateSubmitted:
			sum.Submitted++
		case StateFailed:
			sum.Failed++
			sum.Failures = append(sum.Failures, Failure{
				Line:   br.Record.Line,
				Reason: br.Status.Reason,
			})
		}
		sum.Warnings = append(sum.Warnings, br.Record.Warnings...)
	}

	return sum
}
