// Package csvio provides the low-level delimited-text handling for bulk
// job imports: splitting raw upload payloads into lines, tokenizing lines
// into fields, and serializing records back out for templates and error
// exports.
//
// The tokenizer is deliberately more permissive than encoding/csv. Import
// files come from spreadsheets and hand-edited text, so malformed quoting
// degrades into literal text instead of failing the whole file, and the
// delimiter is configurable per call.
package csvio

import "strings"

// DefaultDelimiter is the field separator used when none is configured.
const DefaultDelimiter = ','

// SplitLines splits a raw import payload into its retained lines.
// Lines that are empty after trimming are dropped, including the trailing
// blank produced by a final newline. A trailing carriage return is stripped
// from each retained line so CRLF files tokenize the same as LF files.
func SplitLines(text string) []string {
	raw := strings.Split(text, "\n")
	lines := make([]string, 0, len(raw))
	for _, line := range raw {
		line = strings.TrimSuffix(line, "\r")
		if strings.TrimSpace(line) == "" {
			continue
		}
		lines = append(lines, line)
	}
	return lines
}

// SplitLine tokenizes a single line into an ordered sequence of fields.
//
// A field may be wrapped in double quotes; inside quotes the delimiter is
// literal content and a doubled quote ("") is one literal quote character.
// Quote state toggles on each unescaped quote. An unterminated quote runs
// to the end of the line. SplitLine never fails: malformed quoting falls
// through as literal text.
func SplitLine(line string, delim rune) []string {
	if delim == 0 {
		delim = DefaultDelimiter
	}

	fields := make([]string, 0, 8)
	var cur strings.Builder
	inQuotes := false

	runes := []rune(line)
	for i := 0; i < len(runes); i++ {
		c := runes[i]
		switch {
		case c == '"':
			if inQuotes && i+1 < len(runes) && runes[i+1] == '"' {
				// Escaped quote inside a quoted field.
				cur.WriteRune('"')
				i++
			} else {
				inQuotes = !inQuotes
			}
		case c == delim && !inQuotes:
			fields = append(fields, cur.String())
			cur.Reset()
		default:
			cur.WriteRune(c)
		}
	}

	fields = append(fields, cur.String())
	return fields
}
