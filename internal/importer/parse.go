package importer

import (
	"fmt"
	"io"
	"strings"

	"github.com/fixerhq/job-import/internal/csvio"
)

// Options configures one Parse invocation.
type Options struct {
	// NoHeader treats every line as a data row instead of taking column
	// names from the first line. Header mode is the default.
	NoHeader bool

	// Delimiter is the field separator. Zero means csvio.DefaultDelimiter.
	Delimiter rune
}

// RowError is one validation or parsing failure, addressed by 1-based row
// number over the retained input lines (the header occupies row 1 when
// present). Field is empty for row-level structural failures and for the
// empty-input error, which reports row 0.
type RowError struct {
	Row     int    `json:"row"`
	Field   string `json:"field,omitempty"`
	Message string `json:"message"`
	Value   string `json:"value,omitempty"`
}

// ParseResult is the aggregate outcome of one import parse.
//
// SuccessfulRows always equals len(Data), and the number of distinct rows
// appearing in Errors plus SuccessfulRows equals TotalRows. A single row may
// contribute several Errors, one per failing field.
type ParseResult[T any] struct {
	Data           []T        `json:"data"`
	Errors         []RowError `json:"errors"`
	TotalRows      int        `json:"totalRows"`
	SuccessfulRows int        `json:"successfulRows"`

	// Rows holds the source row number for each element of Data, letting
	// callers that persist records individually report late failures
	// (e.g. database errors) against the original row.
	Rows []int `json:"-"`
}

// RecordBuilder transforms one mapped row into a typed record or a list of
// field-level errors. It must return at least one error when it returns no
// record.
type RecordBuilder[T any] func(fields Fields) (T, []FieldError)

// Parse drives the whole pipeline over r: read the full payload, split and
// drop blank lines, take the header, then tokenize/map/build every data row
// in order. Per-row problems are collected in the result, never returned as
// an error; the only error return is a failure reading r.
//
// Processing is single-pass and strictly sequential. Each row's outcome
// depends only on that row, and the result is deterministic for a given
// payload.
func Parse[T any](r io.Reader, build RecordBuilder[T], opts Options) (*ParseResult[T], error) {
	payload, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read import payload: %w", err)
	}

	res := &ParseResult[T]{Data: []T{}, Errors: []RowError{}}

	lines := csvio.SplitLines(string(payload))
	if len(lines) == 0 {
		res.Errors = append(res.Errors, RowError{Row: 0, Message: "import file is empty"})
		return res, nil
	}

	delim := opts.Delimiter
	if delim == 0 {
		delim = csvio.DefaultDelimiter
	}

	var header []string
	dataStart := 0
	if !opts.NoHeader {
		header = csvio.SplitLine(lines[0], delim)
		for i := range header {
			header[i] = strings.TrimSpace(header[i])
		}
		dataStart = 1
	}

	for i := dataStart; i < len(lines); i++ {
		rowNum := i + 1
		fields := MapRow(csvio.SplitLine(lines[i], delim), header)

		rec, ferrs := buildRow(build, fields)
		if len(ferrs) == 0 {
			res.Data = append(res.Data, rec)
			res.Rows = append(res.Rows, rowNum)
			continue
		}
		for _, fe := range ferrs {
			res.Errors = append(res.Errors, RowError{
				Row:     rowNum,
				Field:   fe.Field,
				Message: fe.Message,
				Value:   fe.Value,
			})
		}
	}

	res.TotalRows = len(lines) - dataStart
	res.SuccessfulRows = len(res.Data)
	return res, nil
}

// buildRow isolates the builder so a panic while transforming one row
// becomes a single structural error for that row instead of taking down
// the import.
func buildRow[T any](build RecordBuilder[T], fields Fields) (rec T, errs []FieldError) {
	defer func() {
		if r := recover(); r != nil {
			var zero T
			rec = zero
			errs = []FieldError{{Message: fmt.Sprintf("row could not be processed: %v", r)}}
		}
	}()
	return build(fields)
}

// ParseJobs parses a bulk job import payload with the job schema.
func ParseJobs(r io.Reader, opts Options) (*ParseResult[JobImportRecord], error) {
	return Parse(r, BuildJobRecord, opts)
}
