package record

import (
	"bufio"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"iter"
	"slices"
	"strings"
)

// Reader reads records from CSV input. A number of raw preamble rows can be
// captured ahead of the header row, as found in exchange exports.
type Reader struct {
	in       *bufio.Reader
	csv      *csv.Reader
	filename string
	skip     int

	preamble [][]string
	header   []string
	started  bool
	err      error
}

// Option configures a Reader.
type Option func(*Reader)

// WithPreamble captures n lines before the header. Blank lines count and are
// kept as empty rows.
func WithPreamble(n int) Option {
	return func(r *Reader) {
		r.skip = n
	}
}

// WithFilename sets the filename reported in record positions.
func WithFilename(name string) Option {
	return func(r *Reader) {
		r.filename = name
	}
}

// NewReader creates a reader over CSV input.
func NewReader(in io.Reader, opts ...Option) *Reader {
	r := &Reader{in: bufio.NewReader(in)}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Filename returns the name used in record positions.
func (r *Reader) Filename() string {
	return r.filename
}

func (r *Reader) start() error {
	if r.started {
		return r.err
	}
	r.started = true

	for i := 0; i < r.skip; i++ {
		row, err := r.preambleRow()
		if err != nil {
			r.err = r.wrap(fmt.Errorf("reading preamble row %d: %w", i+1, unexpected(err)))
			return r.err
		}
		r.preamble = append(r.preamble, row)
	}

	// encoding/csv skips blank lines, so the preamble is read line by line
	// and only the rest goes through the CSV reader.
	r.csv = newCSVReader(r.in)

	header, err := r.csv.Read()
	if err != nil {
		r.err = r.wrap(fmt.Errorf("reading header: %w", unexpected(err)))
		return r.err
	}
	r.header = slices.Clone(header)
	return nil
}

func newCSVReader(in io.Reader) *csv.Reader {
	c := csv.NewReader(in)
	c.FieldsPerRecord = -1
	c.LazyQuotes = true
	return c
}

// preambleRow reads one raw line. A blank line is an empty row.
func (r *Reader) preambleRow() ([]string, error) {
	line, err := r.in.ReadString('\n')
	if err != nil && (err != io.EOF || line == "") {
		return nil, err
	}
	line = strings.TrimRight(line, "\r\n")
	if strings.TrimSpace(line) == "" {
		return []string{}, nil
	}
	row, err := newCSVReader(strings.NewReader(line)).Read()
	if err != nil {
		return nil, err
	}
	return row, nil
}

func unexpected(err error) error {
	if errors.Is(err, io.EOF) {
		return io.ErrUnexpectedEOF
	}
	return err
}

func (r *Reader) wrap(err error) error {
	if r.filename == "" {
		return err
	}
	return fmt.Errorf("%s: %w", r.filename, err)
}

// Header returns the field names of the input.
func (r *Reader) Header() ([]string, error) {
	if err := r.start(); err != nil {
		return nil, err
	}
	return slices.Clone(r.header), nil
}

// Preamble returns the raw rows read ahead of the header.
func (r *Reader) Preamble() ([][]string, error) {
	if err := r.start(); err != nil {
		return nil, err
	}
	return r.preamble, nil
}

// All iterates the records after the header. Reading stops at the first
// error, which is yielded with a zero record. The input is consumed, so All
// can only be ranged over once.
func (r *Reader) All() iter.Seq2[Record, error] {
	return func(yield func(Record, error) bool) {
		if err := r.start(); err != nil {
			yield(Record{}, err)
			return
		}
		for {
			row, err := r.csv.Read()
			if errors.Is(err, io.EOF) {
				return
			}
			if err != nil {
				yield(Record{}, r.wrap(err))
				return
			}
			line, _ := r.csv.FieldPos(0)
			line += r.skip
			rec := New(r.header, row)
			rec.Pos = Position{Filename: r.filename, Line: line}
			if !yield(rec, nil) {
				return
			}
		}
	}
}

// ReadAll returns every remaining record.
func (r *Reader) ReadAll() ([]Record, error) {
	var out []Record
	for rec, err := range r.All() {
		if err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	return out, nil
}
