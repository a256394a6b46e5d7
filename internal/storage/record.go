// Package storage provides the in-memory category and transaction stores and
// their persistence to flat record files or SQLite.
package storage

import (
	"bufio"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"
)

const (
	fieldDelimiter = ','
	quoteChar      = '"'
)

// LoadResult reports what a best-effort load did with each record.
type LoadResult struct {
	Loaded     int // Records stored
	Skipped    int // Records dropped for having too few fields or unreadable quoting
	Defaulted  int // Loaded records where an unparsable field fell back to a default
	Unresolved int // Transactions whose recorded category name had no match
}

// Add accumulates another result into r.
func (r *LoadResult) Add(other LoadResult) {
	r.Loaded += other.Loaded
	r.Skipped += other.Skipped
	r.Defaulted += other.Defaulted
	r.Unresolved += other.Unresolved
}

// quoteField wraps s in quotes, doubling any embedded quote characters.
// CRLF line breaks are written as LF, since that is how they read back.
func quoteField(s string) string {
	for strings.Contains(s, "\r\n") {
		s = strings.ReplaceAll(s, "\r\n", "\n")
	}

	var b strings.Builder
	b.Grow(len(s) + 2)
	b.WriteByte(quoteChar)
	for i := 0; i < len(s); i++ {
		if s[i] == quoteChar {
			b.WriteByte(quoteChar)
		}
		b.WriteByte(s[i])
	}
	b.WriteByte(quoteChar)
	return b.String()
}

// recordWriter writes one record per line. Fields are written as given, so
// callers quote text fields with quoteField and leave numeric fields bare.
type recordWriter struct {
	w *bufio.Writer
}

func newRecordWriter(w io.Writer) *recordWriter {
	return &recordWriter{w: bufio.NewWriter(w)}
}

func (rw *recordWriter) write(fields ...string) error {
	for i, f := range fields {
		if i > 0 {
			if err := rw.w.WriteByte(fieldDelimiter); err != nil {
				return err
			}
		}
		if _, err := rw.w.WriteString(f); err != nil {
			return err
		}
	}
	return rw.w.WriteByte('\n')
}

func (rw *recordWriter) flush() error {
	return rw.w.Flush()
}

// readRecords feeds every record in r to fn. Records that fail to parse are
// counted as skipped; fn decides what to do with the rest.
func readRecords(r io.Reader, fn func(fields []string)) (skipped int, err error) {
	reader := csv.NewReader(bufio.NewReader(r))
	reader.Comma = fieldDelimiter
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true

	for {
		fields, readErr := reader.Read()
		if errors.Is(readErr, io.EOF) {
			return skipped, nil
		}

		var parseErr *csv.ParseError
		if errors.As(readErr, &parseErr) {
			skipped++
			continue
		}
		if readErr != nil {
			return skipped, fmt.Errorf("failed to read record: %w", readErr)
		}

		fn(fields)
	}
}
