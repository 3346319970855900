package record

import (
	"bytes"
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/alecthomas/assert/v2"
)

const export = `Transactions
User,Jane,abc123
Account,BTC Wallet

Timestamp,Transaction Type,Asset,Quantity Transacted
2024-01-02T10:00:00Z,Buy,BTC,2
2024-02-02T10:00:00Z,Sell,BTC,1
`

func TestPosition(t *testing.T) {
	assert.Equal(t, "-", Position{}.String())
	assert.Equal(t, "line 4", Position{Line: 4}.String())
	assert.Equal(t, "in.csv:4", Position{Filename: "in.csv", Line: 4}.String())
}

func TestRecord(t *testing.T) {
	r := New([]string{"a", "b", "c"}, []string{"1", "2"})
	assert.Equal(t, "1", r.Get("a"))
	assert.Equal(t, "", r.Get("c"))
	_, ok := r.Lookup("c")
	assert.True(t, ok)
	_, ok = r.Lookup("z")
	assert.False(t, ok)
	assert.Equal(t, 3, r.Len())

	c := r.Clone()
	c.Set("a", "9")
	c.Set("d", "4")
	assert.Equal(t, "1", r.Get("a"))
	assert.Equal(t, []string{"a", "b", "c"}, r.Keys())
	assert.Equal(t, []string{"a", "b", "c", "d"}, c.Keys())
	assert.Equal(t, []string{"4", "9"}, c.Values([]string{"d", "a"}))

	other := New([]string{"a", "b", "c"}, []string{"1", "2", ""})
	other.Pos = Position{Line: 8}
	assert.True(t, r.Equal(other))
	assert.False(t, r.Equal(c))
}

func TestReader(t *testing.T) {
	r := NewReader(strings.NewReader(export), WithPreamble(4), WithFilename("export.csv"))

	header, err := r.Header()
	assert.NoError(t, err)
	assert.Equal(t, []string{"Timestamp", "Transaction Type", "Asset", "Quantity Transacted"}, header)

	preamble, err := r.Preamble()
	assert.NoError(t, err)
	assert.Equal(t, 4, len(preamble))
	assert.Equal(t, []string{"User", "Jane", "abc123"}, preamble[1])
	assert.Equal(t, 0, len(preamble[3]))

	recs, err := r.ReadAll()
	assert.NoError(t, err)
	assert.Equal(t, 2, len(recs))
	assert.Equal(t, "Buy", recs[0].Get("Transaction Type"))
	assert.Equal(t, "1", recs[1].Get("Quantity Transacted"))
	assert.Equal(t, Position{Filename: "export.csv", Line: 6}, recs[0].Pos)
	assert.Equal(t, Position{Filename: "export.csv", Line: 7}, recs[1].Pos)
}

func TestReaderBlankPreambleLine(t *testing.T) {
	const input = "Transactions\nUser,Jane,abc123\n\nTimestamp,Transaction Type,Asset,Quantity Transacted\n2024-01-02,Buy,BTC,2\n"
	r := NewReader(strings.NewReader(input), WithPreamble(3))

	header, err := r.Header()
	assert.NoError(t, err)
	assert.Equal(t, []string{"Timestamp", "Transaction Type", "Asset", "Quantity Transacted"}, header)

	preamble, err := r.Preamble()
	assert.NoError(t, err)
	assert.Equal(t, 3, len(preamble))
	assert.Equal(t, []string{"Transactions"}, preamble[0])
	assert.Equal(t, 0, len(preamble[2]))

	recs, err := r.ReadAll()
	assert.NoError(t, err)
	assert.Equal(t, 1, len(recs))
	assert.Equal(t, "Buy", recs[0].Get("Transaction Type"))
	assert.Equal(t, 5, recs[0].Pos.Line)

	var buf bytes.Buffer
	w := NewWriter(&buf, header)
	assert.NoError(t, w.WritePreamble(preamble))
	assert.NoError(t, w.Write(recs[0]))
	assert.NoError(t, w.Flush())
	assert.Equal(t, input, buf.String())
}

func TestReaderMissingHeader(t *testing.T) {
	r := NewReader(strings.NewReader("only\n"), WithPreamble(1))
	_, err := r.Header()
	assert.Error(t, err)
	assert.True(t, errors.Is(err, io.ErrUnexpectedEOF))

	_, err = r.ReadAll()
	assert.Error(t, err)
}

func TestWriterRoundTrip(t *testing.T) {
	r := NewReader(strings.NewReader(export), WithPreamble(4))
	recs, err := r.ReadAll()
	assert.NoError(t, err)
	header, _ := r.Header()
	preamble, _ := r.Preamble()

	var buf bytes.Buffer
	w := NewWriter(&buf, header)
	assert.NoError(t, w.WritePreamble(preamble))
	for _, rec := range recs {
		assert.NoError(t, w.Write(rec))
	}
	assert.NoError(t, w.Flush())

	assert.Equal(t, export, buf.String())

	again := NewReader(&buf, WithPreamble(4))
	got, err := again.ReadAll()
	assert.NoError(t, err)
	assert.Equal(t, len(recs), len(got))
	for i := range recs {
		assert.True(t, recs[i].Equal(got[i]))
	}
}

func TestWriterUnknownField(t *testing.T) {
	var buf bytes.Buffer
	w := NewWriter(&buf, []string{"a"})

	rec := New([]string{"a", "b"}, []string{"1", "2"})
	rec.Pos = Position{Filename: "in.csv", Line: 3}
	err := w.Write(rec)

	var fieldErr *FieldError
	assert.True(t, errors.As(err, &fieldErr))
	assert.Equal(t, "b", fieldErr.Field)
	assert.Equal(t, 3, fieldErr.GetPosition().Line)

	assert.Error(t, w.WritePreamble([][]string{{"late"}}))
}

func TestWriterEmpty(t *testing.T) {
	var buf bytes.Buffer
	w := NewWriter(&buf, []string{"a", "b"})
	assert.NoError(t, w.Flush())
	assert.Equal(t, "a,b\n", buf.String())
}
