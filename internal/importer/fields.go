// Package importer implements the bulk job import pipeline: it tokenizes a
// delimited-text payload, maps each row against the header, applies the
// declarative job schema, and aggregates typed records and per-row errors
// into a single result. Per-row failures are collected, never thrown past
// the pipeline boundary, so one bad row cannot abort an import.
package importer

import "strings"

// Fields is one mapped row. In header mode values are addressed by trimmed
// column name; in headerless mode only positional access is available.
// Surrounding whitespace on every value is trimmed, and a row shorter than
// the header reads as empty strings for the missing columns.
type Fields struct {
	byName map[string]string
	values []string
}

// MapRow associates raw field values with the header's column names.
// A nil header leaves the row positional.
func MapRow(raw []string, header []string) Fields {
	f := Fields{values: make([]string, len(raw))}
	for i, v := range raw {
		f.values[i] = strings.TrimSpace(v)
	}

	if header == nil {
		return f
	}

	f.byName = make(map[string]string, len(header))
	for i, name := range header {
		name = strings.TrimSpace(name)
		if i < len(f.values) {
			f.byName[name] = f.values[i]
		} else {
			f.byName[name] = ""
		}
	}
	return f
}

// Get returns the trimmed value for a column name, or "" when the column is
// absent or the row is positional.
func (f Fields) Get(name string) string {
	return f.byName[name]
}

// At returns the trimmed value at position i, or "" past the end of the row.
func (f Fields) At(i int) string {
	if i < 0 || i >= len(f.values) {
		return ""
	}
	return f.values[i]
}

// Len returns the number of fields in the row.
func (f Fields) Len() int {
	return len(f.values)
}
