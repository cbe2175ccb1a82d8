package importer

// record.go builds one typed asset record from one raw workbook row.
//
// BuildRecord is a pure mapper over arbitrary row shapes: it zips cells with
// field keys positionally, coerces date-like and currency-like values to
// their canonical forms, and never rejects a candidate. Required-field
// validation happens at batch construction, not here.

import (
	"strings"
	"time"

	"github.com/dmutonyi/assetimport/internal/schema"
	"github.com/shopspring/decimal"
)

// CanonicalDateLayout is the form date values are submitted in.
const CanonicalDateLayout = "2006-01-02 15:04:05"

// Date layouts split by year width. Two-digit years are pivoted so that a
// parse landing too far in the future rolls back a century.
var (
	twoDigitYearLayouts = []string{
		"1/2/06", "01/02/06", "1-2-06", "1.2.06", "01.02.06",
	}
	fourDigitYearLayouts = []string{
		"2006-01-02 15:04:05",
		"2006-01-02", "2006/01/02", "2006.01.02",
		"1/2/2006", "01/02/2006", "1-2-2006", "01-02-2006", "1.2.2006", "01.02.2006",
		"Jan 2, 2006", "2 Jan 2006",
		"20060102",
	}
)

// TwoDigitYearPivot is how many years into the future a parsed 2-digit year
// may land before it is shifted to the previous century.
var TwoDigitYearPivot = 20

// Attachment is an optional binary blob carried alongside a record, sent as
// the `logo` multipart part when present.
type Attachment struct {
	Filename    string
	ContentType string
	Data        []byte
}

// Record is one asset record candidate: an open field map keyed by canonical
// field keys plus whatever pass-through keys the workbook carried.
type Record struct {
	// Line is the 1-indexed workbook line the record was built from,
	// used in failure reporting. Zero for records not built from a file.
	Line int

	Fields map[string]string

	Logo *Attachment

	// Warnings collects non-fatal coercion problems; the raw value stays
	// in Fields when a coercion fails.
	Warnings []CoercionWarning
}

// Field returns the trimmed value for a canonical field key, or "".
func (r Record) Field(key string) string {
	return r.Fields[key]
}

// Empty reports whether the record carries no fields at all. Rows that
// decode to zero cells produce empty records, which batch construction
// filters out before validation.
func (r Record) Empty() bool {
	return len(r.Fields) == 0
}

// BuildRecord zips one data row with the field-key sequence from MapHeaders.
// Cells beyond the key sequence are ignored; missing trailing cells map to
// empty values. Date-like fields are coerced to CanonicalDateLayout and
// currency-like fields to plain decimal text; when a coercion fails the raw
// value is preserved and a warning recorded.
func BuildRecord(keys []string, row []string, line int) Record {
	rec := Record{Line: line, Fields: make(map[string]string, len(keys))}

	// A row with no cells at all (blank workbook line) stays an empty
	// record; batch construction drops it.
	if len(row) == 0 {
		return rec
	}

	for i, key := range keys {
		var value string
		if i < len(row) {
			value = strings.TrimSpace(row[i])
		}

		if value != "" {
			switch {
			case schema.DateFields[key]:
				if coerced, ok := CoerceDate(value); ok {
					value = coerced
				} else {
					rec.Warnings = append(rec.Warnings, CoercionWarning{
						Line:    line,
						Field:   key,
						Value:   value,
						Message: "unparseable date, raw value submitted",
					})
				}
			case schema.CurrencyFields[key]:
				if coerced, ok := normalizeCurrency(value); ok {
					value = coerced
				}
			}
		}

		rec.Fields[key] = value
	}

	return rec
}

// CoerceDate parses a raw cell value as a calendar date and returns it in
// CanonicalDateLayout form. The boolean is false when no known layout
// matches, in which case the caller keeps the raw value.
func CoerceDate(s string) (string, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return "", false
	}

	for _, layout := range fourDigitYearLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.Format(CanonicalDateLayout), true
		}
	}

	pivot := time.Now().Year() + TwoDigitYearPivot
	for _, layout := range twoDigitYearLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			if t.Year() > pivot {
				t = t.AddDate(-100, 0, 0)
			}
			return t.Format(CanonicalDateLayout), true
		}
	}

	return "", false
}

// normalizeCurrency strips currency symbols, thousands separators and
// accounting-style negatives, returning plain decimal text. Unparseable
// values are left to the caller untouched.
func normalizeCurrency(s string) (string, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return "", false
	}

	negative := false
	if strings.HasPrefix(s, "(") && strings.HasSuffix(s, ")") {
		negative = true
		s = strings.TrimSpace(s[1 : len(s)-1])
	}

	for _, sym := range []string{"$", "€", "£", ","} {
		s = strings.ReplaceAll(s, sym, "")
	}
	s = strings.TrimSpace(s)

	if negative {
		s = "-" + s
	}

	d, err := decimal.NewFromString(s)
	if err != nil {
		return "", false
	}
	return d.String(), true
}
