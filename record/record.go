// Package record reads and writes the ordered field records consumed by the
// lot allocator. A record maps the field names of an input header to string
// values and remembers where in its input it came from, so errors can point
// at the offending line.
package record

import (
	"fmt"
	"slices"
)

// Position identifies a line in an input file.
type Position struct {
	Filename string
	Line     int
}

func (p Position) String() string {
	switch {
	case p.Filename == "" && p.Line == 0:
		return "-"
	case p.Filename == "":
		return fmt.Sprintf("line %d", p.Line)
	default:
		return fmt.Sprintf("%s:%d", p.Filename, p.Line)
	}
}

// Record is an ordered set of named string fields.
type Record struct {
	Pos    Position
	keys   []string
	values map[string]string
}

// New creates a record from parallel key and value slices. Missing values
// are empty and extra values are dropped.
func New(keys, values []string) Record {
	r := Record{
		keys:   slices.Clone(keys),
		values: make(map[string]string, len(keys)),
	}
	for i, k := range keys {
		if i < len(values) {
			r.values[k] = values[i]
		} else {
			r.values[k] = ""
		}
	}
	return r
}

// Get returns the value of key, or an empty string when absent.
func (r Record) Get(key string) string {
	return r.values[key]
}

// Lookup returns the value of key and whether the record has it.
func (r Record) Lookup(key string) (string, bool) {
	v, ok := r.values[key]
	return v, ok
}

// Set assigns value to key, appending key when it is new.
func (r *Record) Set(key, value string) {
	if r.values == nil {
		r.values = make(map[string]string)
	}
	if _, ok := r.values[key]; !ok {
		r.keys = append(r.keys, key)
	}
	r.values[key] = value
}

// Keys returns the field names in order.
func (r Record) Keys() []string {
	return slices.Clone(r.keys)
}

// Len returns the number of fields.
func (r Record) Len() int {
	return len(r.keys)
}

// Values returns the values for keys, in that order. Missing fields are
// empty.
func (r Record) Values(keys []string) []string {
	out := make([]string, len(keys))
	for i, k := range keys {
		out[i] = r.values[k]
	}
	return out
}

// Clone returns a deep copy of the record.
func (r Record) Clone() Record {
	c := Record{Pos: r.Pos, keys: slices.Clone(r.keys), values: make(map[string]string, len(r.values))}
	for k, v := range r.values {
		c.values[k] = v
	}
	return c
}

// Equal reports whether both records hold the same fields in the same order.
// Positions are ignored.
func (r Record) Equal(other Record) bool {
	if !slices.Equal(r.keys, other.keys) {
		return false
	}
	for _, k := range r.keys {
		if r.values[k] != other.values[k] {
			return false
		}
	}
	return true
}
