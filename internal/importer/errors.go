package importer

// errors.go defines the record-scoped error taxonomy for an import run.
//
// Decode failures (workbook.DecodeError) abort before a batch exists and are
// the only whole-import errors. Everything here is scoped to a single record
// and accumulates into the run summary instead of aborting the batch.

import "fmt"

// MissingRequiredFieldError marks a record candidate that lacks a required
// attribute. The record stays in the batch with a Failed status so the
// summary can report exactly which input row was rejected and why.
type MissingRequiredFieldError struct {
	Line  int
	Field string
}

func (e *MissingRequiredFieldError) Error() string {
	return fmt.Sprintf("line %d: missing required field %q", e.Line, e.Field)
}

// SubmissionError marks a per-record submission failure, either an explicit
// failure acknowledgment from the asset store or a transport fault. It never
// aborts the batch; remaining records are still submitted.
type SubmissionError struct {
	Line int
	Err  error
}

func (e *SubmissionError) Error() string {
	return fmt.Sprintf("line %d: submission failed: %v", e.Line, e.Err)
}

func (e *SubmissionError) Unwrap() error { return e.Err }

// CoercionWarning records a value that could not be coerced to its canonical
// form. The raw value is preserved on the record and submission proceeds;
// the asset store is the final authority on whether to accept it.
type CoercionWarning struct {
	Line    int    `json:"line"`
	Field   string `json:"field"`
	Value   string `json:"value"`
	Message string `json:"message"`
}

func (w CoercionWarning) String() string {
	return fmt.Sprintf("line %d: %s: %s (%q)", w.Line, w.Field, w.Message, w.Value)
}
