package csvio

import (
	"sort"
	"strings"
)

// GenerateOptions controls how Generate lays out its output.
type GenerateOptions struct {
	// Headers fixes the column order. When empty, the sorted key order of
	// the first record is used.
	Headers []string

	// OmitHeader suppresses the header row.
	OmitHeader bool

	// Delimiter is the field separator. Zero means DefaultDelimiter.
	Delimiter rune
}

// Generate serializes a sequence of uniform flat records into delimited
// text. Missing keys render as empty cells. Cells containing the delimiter,
// a double quote, or a newline are wrapped in double quotes with internal
// quotes doubled.
//
// An empty record sequence yields the empty string, with no header row even
// when one was requested. Callers relying on a bare header line (templates)
// should pass at least one record or build the header themselves.
func Generate(records []map[string]string, opts GenerateOptions) string {
	if len(records) == 0 {
		return ""
	}

	delim := opts.Delimiter
	if delim == 0 {
		delim = DefaultDelimiter
	}

	headers := opts.Headers
	if len(headers) == 0 {
		headers = make([]string, 0, len(records[0]))
		for k := range records[0] {
			headers = append(headers, k)
		}
		sort.Strings(headers)
	}

	var b strings.Builder
	if !opts.OmitHeader {
		writeRow(&b, headers, delim)
	}
	cells := make([]string, len(headers))
	for _, rec := range records {
		for i, h := range headers {
			cells[i] = rec[h]
		}
		writeRow(&b, cells, delim)
	}

	return strings.TrimSuffix(b.String(), "\n")
}

func writeRow(b *strings.Builder, cells []string, delim rune) {
	for i, cell := range cells {
		if i > 0 {
			b.WriteRune(delim)
		}
		b.WriteString(escapeCell(cell, delim))
	}
	b.WriteByte('\n')
}

// escapeCell quotes a cell when its content would otherwise be ambiguous.
func escapeCell(s string, delim rune) string {
	if !strings.ContainsAny(s, string(delim)+"\"\n\r") {
		return s
	}
	return `"` + strings.ReplaceAll(s, `"`, `""`) + `"`
}
