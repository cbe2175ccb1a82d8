package importer

import (
	"strings"

	"github.com/dmutonyi/assetimport/internal/schema"
)

// MapHeaders translates a workbook header row into canonical field keys,
// one per column. A header is looked up in schema.HeaderMapping exactly as
// authored (case-sensitive, surrounding whitespace trimmed); headers not in
// the mapping are kept verbatim as field keys. The function is pure and
// total — unknown headers are forward compatibility, not an error.
func MapHeaders(headers []string) []string {
	keys := make([]string, len(headers))
	for i, h := range headers {
		h = strings.TrimSpace(h)
		if key, ok := schema.HeaderMapping[h]; ok {
			keys[i] = key
		} else {
			keys[i] = h
		}
	}
	return keys
}
