package record

import (
	"encoding/csv"
	"fmt"
	"io"
	"slices"
)

// FieldError is returned when a record carries a field the output header
// does not know about.
type FieldError struct {
	Pos   Position
	Field string
}

func (e *FieldError) Error() string {
	return fmt.Sprintf("%s: field %q is not in the output header", e.Pos, e.Field)
}

// GetPosition returns where the record came from.
func (e *FieldError) GetPosition() Position {
	return e.Pos
}

// Writer writes records as CSV under a fixed header.
type Writer struct {
	csv         *csv.Writer
	header      []string
	wroteHeader bool
}

// NewWriter creates a writer for header.
func NewWriter(out io.Writer, header []string) *Writer {
	return &Writer{csv: csv.NewWriter(out), header: slices.Clone(header)}
}

// WritePreamble writes raw rows verbatim. It must be called before any record.
func (w *Writer) WritePreamble(rows [][]string) error {
	if w.wroteHeader {
		return fmt.Errorf("preamble must precede the header")
	}
	return w.csv.WriteAll(rows)
}

// Write writes rec, writing the header first when needed. Fields missing
// from rec are written empty.
func (w *Writer) Write(rec Record) error {
	if !w.wroteHeader {
		if err := w.csv.Write(w.header); err != nil {
			return err
		}
		w.wroteHeader = true
	}
	for _, k := range rec.keys {
		if !slices.Contains(w.header, k) {
			return &FieldError{Pos: rec.Pos, Field: k}
		}
	}
	return w.csv.Write(rec.Values(w.header))
}

// Flush writes buffered data, including the header when no record was
// written.
func (w *Writer) Flush() error {
	if !w.wroteHeader {
		if err := w.csv.Write(w.header); err != nil {
			return err
		}
		w.wroteHeader = true
	}
	w.csv.Flush()
	return w.csv.Error()
}
