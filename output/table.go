package output

import (
	"fmt"
	"io"
	"strings"

	"github.com/mattn/go-runewidth"
)

// Table writes rows as aligned columns. Column widths account for wide
// runes, so merchant and payee names in any script line up.
type Table struct {
	header []string
	right  []bool
	rows   [][]string
}

// NewTable creates a table with the given column headers.
func NewTable(header ...string) *Table {
	return &Table{header: header, right: make([]bool, len(header))}
}

// AlignRight right-aligns the given columns, typically amounts.
func (t *Table) AlignRight(cols ...int) *Table {
	for _, c := range cols {
		if c >= 0 && c < len(t.right) {
			t.right[c] = true
		}
	}
	return t
}

// Append adds a row. Missing cells are empty.
func (t *Table) Append(cells ...string) {
	t.rows = append(t.rows, cells)
}

// Len returns the number of rows.
func (t *Table) Len() int {
	return len(t.rows)
}

func (t *Table) widths() []int {
	widths := make([]int, len(t.header))
	for i, h := range t.header {
		widths[i] = runewidth.StringWidth(h)
	}
	for _, row := range t.rows {
		for i := 0; i < len(widths) && i < len(row); i++ {
			widths[i] = max(widths[i], runewidth.StringWidth(row[i]))
		}
	}
	return widths
}

func (t *Table) line(cells []string, widths []int) string {
	parts := make([]string, len(widths))
	for i, w := range widths {
		cell := ""
		if i < len(cells) {
			cell = cells[i]
		}
		if t.right[i] {
			parts[i] = runewidth.FillLeft(cell, w)
		} else {
			parts[i] = runewidth.FillRight(cell, w)
		}
	}
	return strings.TrimRight(strings.Join(parts, "  "), " ")
}

// Render writes the table. Header cells are passed through style when it
// is not nil.
func (t *Table) Render(w io.Writer, styles *Styles) error {
	widths := t.widths()
	header := t.line(t.header, widths)
	if styles != nil {
		header = styles.Keyword(header)
	}
	if _, err := fmt.Fprintln(w, header); err != nil {
		return err
	}
	for _, row := range t.rows {
		if _, err := fmt.Fprintln(w, t.line(row, widths)); err != nil {
			return err
		}
	}
	return nil
}
