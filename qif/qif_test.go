package qif

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/alecthomas/assert/v2"
)

const export = `!Type:Bank
D1/31/2010
T-12.50
PCorner Cafe
^
D12/1/09
T100.00
PPayPal Transfer
^
`

func TestFixDates(t *testing.T) {
	fixed, n, err := FixDates([]byte(export))
	assert.NoError(t, err)
	assert.Equal(t, 2, n)
	assert.Equal(t, `!Type:Bank
D31-01-2010
T-12.50
PCorner Cafe
^
D01-12-2009
T100.00
PPayPal Transfer
^
`, string(fixed))
}

func TestFixDatesKeepsOtherLines(t *testing.T) {
	src := "MD1/2/2010 memo\nD1/2/2010 trailing\nD3/4/2011\r\n"
	fixed, n, err := FixDates([]byte(src))
	assert.NoError(t, err)
	assert.Equal(t, 1, n)
	assert.Equal(t, "MD1/2/2010 memo\nD1/2/2010 trailing\nD04-03-2011\r\n", string(fixed))
}

func TestFixDatesTwoDigitYears(t *testing.T) {
	fixed, _, err := FixDates([]byte("D7/4/76\nD7/4/68\n"))
	assert.NoError(t, err)
	assert.Equal(t, "D04-07-1976\nD04-07-2068\n", string(fixed))
}

func TestFixDatesInvalid(t *testing.T) {
	_, _, err := FixDates([]byte("!Type:Bank\nD2/30/2010\n"))
	var dateErr *DateError
	assert.True(t, errors.As(err, &dateErr))
	assert.Equal(t, 2, dateErr.Line)
	assert.Equal(t, "D2/30/2010", dateErr.Value)

	_, _, err = FixDates([]byte("D13/1/2010"))
	assert.Error(t, err)
}

func TestFixDatesNothingToDo(t *testing.T) {
	src := []byte("D31-01-2010\n")
	fixed, n, err := FixDates(src)
	assert.NoError(t, err)
	assert.Equal(t, 0, n)
	assert.Equal(t, src, fixed)
}

func TestFixFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "paypal.qif")
	assert.NoError(t, os.WriteFile(path, []byte(export), 0o600))

	n, err := FixFile(path)
	assert.NoError(t, err)
	assert.Equal(t, 2, n)

	data, err := os.ReadFile(path)
	assert.NoError(t, err)
	assert.Contains(t, string(data), "D31-01-2010\n")

	info, err := os.Stat(path)
	assert.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())

	n, err = FixFile(path)
	assert.NoError(t, err)
	assert.Equal(t, 0, n)

	entries, err := os.ReadDir(filepath.Dir(path))
	assert.NoError(t, err)
	assert.Equal(t, 1, len(entries))
}

func TestFixFileMissing(t *testing.T) {
	_, err := FixFile(filepath.Join(t.TempDir(), "missing.qif"))
	assert.Error(t, err)
}
