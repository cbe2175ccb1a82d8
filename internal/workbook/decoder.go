// Package workbook decodes uploaded spreadsheet files into raw rows.
//
// Decoding is a pure transform: the same bytes always yield the same row
// sequence. Only the first worksheet is read and row 1 is treated as the
// header row by downstream stages. Every physical row is kept, including
// blank ones; blank xlsx rows surface as empty slices and it is up to batch
// construction to drop them. Rows shorter than the header row are returned
// as-is — missing trailing cells map to empty values when zipped.
package workbook

import (
	"bytes"
	"fmt"

	"github.com/xuri/excelize/v2"
)

// DecodeError indicates the uploaded content is not a readable workbook.
// It is fatal to the whole import attempt; no batch is created.
type DecodeError struct {
	Reason string
	Err    error
}

func (e *DecodeError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("decode workbook: %s: %v", e.Reason, e.Err)
	}
	return fmt.Sprintf("decode workbook: %s", e.Reason)
}

func (e *DecodeError) Unwrap() error { return e.Err }

// Decode parses raw workbook bytes and returns the first worksheet's cells
// as an ordered sequence of rows. Cell values are the raw text as stored
// (numbers and dates arrive formatted, not typed).
func Decode(data []byte) ([][]string, error) {
	if len(data) == 0 {
		return nil, &DecodeError{Reason: "empty file"}
	}

	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		return nil, &DecodeError{Reason: "not a parseable workbook", Err: err}
	}
	defer f.Close()

	sheet := f.GetSheetName(0)
	if sheet == "" {
		return nil, &DecodeError{Reason: "workbook contains no worksheet"}
	}

	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, &DecodeError{Reason: fmt.Sprintf("reading worksheet %q", sheet), Err: err}
	}

	return rows, nil
}
