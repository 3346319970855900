// Package qif rewrites the dates of QIF files exported with US month/day
// ordering (D1/31/2010) into the unambiguous day-month-year form
// (D31-01-2010) that day-first importers accept.
package qif

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"regexp"
	"strconv"
	"time"

	"github.com/robinvdvleuten/financial/loader"
)

var dateLine = regexp.MustCompile(`(?m)^D(\d+)/(\d+)/(\d{2,4})(\r?)$`)

// DateError is returned for a date line that is not a calendar date.
type DateError struct {
	Line  int
	Value string
}

func (e *DateError) Error() string {
	return fmt.Sprintf("line %d: invalid date %q", e.Line, e.Value)
}

// FixDates rewrites every date line of src and returns the result with the
// number of rewritten lines. Other lines are copied unchanged.
func FixDates(src []byte) ([]byte, int, error) {
	matches := dateLine.FindAllSubmatchIndex(src, -1)
	if len(matches) == 0 {
		return src, 0, nil
	}

	var out bytes.Buffer
	out.Grow(len(src))
	last := 0
	for _, m := range matches {
		out.Write(src[last:m[0]])

		month, day, year := src[m[2]:m[3]], src[m[4]:m[5]], src[m[6]:m[7]]
		date, err := parseDate(string(month), string(day), string(year))
		if err != nil {
			line := bytes.Count(src[:m[0]], []byte("\n")) + 1
			return nil, 0, &DateError{Line: line, Value: string(bytes.TrimRight(src[m[0]:m[1]], "\r"))}
		}
		out.WriteString("D" + date.Format("02-01-2006"))
		out.Write(src[m[8]:m[9]])
		last = m[1]
	}
	out.Write(src[last:])
	return out.Bytes(), len(matches), nil
}

// parseDate builds a date from its parts. Two-digit years follow Go's
// pivot: 69-99 are 19xx and 00-68 are 20xx.
func parseDate(month, day, year string) (time.Time, error) {
	m, err := strconv.Atoi(month)
	if err != nil {
		return time.Time{}, err
	}
	d, err := strconv.Atoi(day)
	if err != nil {
		return time.Time{}, err
	}

	var y int
	if len(year) == 2 {
		t, err := time.Parse("06", year)
		if err != nil {
			return time.Time{}, err
		}
		y = t.Year()
	} else if y, err = strconv.Atoi(year); err != nil {
		return time.Time{}, err
	}

	date := time.Date(y, time.Month(m), d, 0, 0, 0, 0, time.UTC)
	if date.Year() != y || int(date.Month()) != m || date.Day() != d {
		return time.Time{}, fmt.Errorf("%s/%s/%s is not a calendar date", month, day, year)
	}
	return date, nil
}

// FixFile rewrites the dates of the QIF file at path in place. The file is
// replaced atomically and keeps its permissions. Nothing is written when no
// date needs fixing.
func FixFile(path string) (int, error) {
	info, err := os.Stat(path)
	if err != nil {
		return 0, err
	}
	src, err := os.ReadFile(path)
	if err != nil {
		return 0, err
	}

	fixed, n, err := FixDates(src)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", path, err)
	}
	if n == 0 {
		return 0, nil
	}

	err = loader.WriteFile(path, info.Mode().Perm(), func(w io.Writer) error {
		_, err := w.Write(fixed)
		return err
	})
	return n, err
}
