// Package spreadsheet writes simple tabular workbooks: one sheet per table,
// a bold header row and numeric cells for anything that parses as a number.
package spreadsheet

import (
	"io"
	"strings"

	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"
)

// Workbook is an xlsx document under construction.
type Workbook struct {
	xlsx   *excelize.File
	sheets int
}

// New creates an empty workbook.
func New() *Workbook {
	xlsx := excelize.NewFile()
	_ = xlsx.SetAppProps(&excelize.AppProperties{
		Application: "financial",
		DocSecurity: 2,
	})
	return &Workbook{xlsx: xlsx}
}

// Sheet adds a sheet. The first call reuses the default sheet of a new
// workbook.
func (w *Workbook) Sheet(name string) (*Sheet, error) {
	name = sheetName(name)
	if w.sheets == 0 {
		current := w.xlsx.GetSheetName(w.xlsx.GetActiveSheetIndex())
		if err := w.xlsx.SetSheetName(current, name); err != nil {
			return nil, err
		}
	} else if _, err := w.xlsx.NewSheet(name); err != nil {
		return nil, err
	}
	w.sheets++
	return &Sheet{xlsx: w.xlsx, name: name, row: 1}, nil
}

// WriteTo writes the workbook.
func (w *Workbook) WriteTo(out io.Writer) (int64, error) {
	return w.xlsx.WriteTo(out)
}

// SaveAs writes the workbook to path.
func (w *Workbook) SaveAs(path string) error {
	return w.xlsx.SaveAs(path)
}

// Close releases the workbook.
func (w *Workbook) Close() error {
	return w.xlsx.Close()
}

// sheetName strips characters xlsx forbids in sheet names and truncates to
// 31 characters.
func sheetName(name string) string {
	name = strings.Map(func(r rune) rune {
		if strings.ContainsRune(`[]:*?/\`, r) {
			return '_'
		}
		return r
	}, name)
	if name == "" {
		name = "Sheet"
	}
	if r := []rune(name); len(r) > 31 {
		name = string(r[:31])
	}
	return name
}

// Sheet appends rows to one worksheet.
type Sheet struct {
	xlsx *excelize.File
	name string
	row  int
}

// Name returns the sanitized sheet name.
func (s *Sheet) Name() string {
	return s.name
}

// Header writes a bold row with a bottom border and sizes the columns.
func (s *Sheet) Header(cols ...string) error {
	for i, c := range cols {
		if err := s.xlsx.SetCellValue(s.name, cell(i+1, s.row), c); err != nil {
			return err
		}
	}
	if err := s.style(len(cols), mergeStyles(defaultStyle(), fontBold(), thinBorder("bottom"))); err != nil {
		return err
	}
	if len(cols) > 0 {
		last, _ := excelize.ColumnNumberToName(len(cols))
		_ = s.xlsx.SetColWidth(s.name, "A", last, 18)
	}
	s.row++
	return nil
}

// Row writes values. Strings holding a number and decimals are written as
// numbers.
func (s *Sheet) Row(values ...any) error {
	numeric := false
	for i, v := range values {
		v, isNum := cellValue(v)
		numeric = numeric || isNum
		if err := s.xlsx.SetCellValue(s.name, cell(i+1, s.row), v); err != nil {
			return err
		}
	}
	style := defaultStyle()
	if numeric {
		style = mergeStyles(style, numberFormat())
	}
	if err := s.style(len(values), style); err != nil {
		return err
	}
	s.row++
	return nil
}

// Total writes a bold row with a top border.
func (s *Sheet) Total(values ...any) error {
	if err := s.Row(values...); err != nil {
		return err
	}
	s.row--
	err := s.style(len(values), mergeStyles(defaultStyle(), fontBold(), numberFormat(), thickBorder("top")))
	s.row++
	return err
}

func (s *Sheet) style(cols int, style *excelize.Style) error {
	if cols == 0 {
		return nil
	}
	id, err := s.xlsx.NewStyle(style)
	if err != nil {
		return err
	}
	return s.xlsx.SetCellStyle(s.name, cell(1, s.row), cell(cols, s.row), id)
}

func cellValue(v any) (any, bool) {
	switch v := v.(type) {
	case decimal.Decimal:
		return v.InexactFloat64(), true
	case string:
		if v == "" {
			return v, false
		}
		if d, err := decimal.NewFromString(v); err == nil {
			return d.InexactFloat64(), true
		}
		return v, false
	case int, int64, float64:
		return v, true
	default:
		return v, false
	}
}

func cell(col, row int) string {
	name, _ := excelize.CoordinatesToCellName(col, row)
	return name
}
