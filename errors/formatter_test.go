package errors

import (
	"encoding/json"
	"fmt"
	"testing"

	"github.com/alecthomas/assert/v2"
	"github.com/robinvdvleuten/financial/lots"
	"github.com/robinvdvleuten/financial/record"
)

const source = `Transactions
User,jane@example.com
Timestamp,Transaction Type,Asset,Quantity Transacted
2021-01-01,Buy,BTC,1
2021-01-02,Sell,BTC,one
2021-01-03,Sell,BTC,1
`

func numberError() error {
	return &lots.NumberError{
		Pos:   record.Position{Filename: "report.csv", Line: 5},
		Field: "Quantity Transacted",
		Value: "one",
	}
}

func TestTextFormatterWithSource(t *testing.T) {
	tf := NewTextFormatter(WithSource([]byte(source)))
	assert.Equal(t, `report.csv:5: invalid number "one" in field "Quantity Transacted"`+"\n\n"+
		"   Timestamp,Transaction Type,Asset,Quantity Transacted\n"+
		"   2021-01-01,Buy,BTC,1\n"+
		" > 2021-01-02,Sell,BTC,one\n"+
		"   2021-01-03,Sell,BTC,1\n", tf.Format(numberError()))
}

func TestTextFormatterWrapped(t *testing.T) {
	tf := NewTextFormatter(WithSource([]byte(source)))
	wrapped := fmt.Errorf("lifo: %w", numberError())
	assert.Contains(t, tf.Format(wrapped), " > 2021-01-02,Sell,BTC,one")
}

func TestTextFormatterWithoutSource(t *testing.T) {
	tf := NewTextFormatter()
	assert.Equal(t, `report.csv:5: invalid number "one" in field "Quantity Transacted"`, tf.Format(numberError()))
	assert.Equal(t, "plain", tf.Format(fmt.Errorf("plain")))
	assert.Equal(t, "a\n\nb", tf.FormatAll([]error{fmt.Errorf("a"), fmt.Errorf("b")}))
}

func TestSourceContextBounds(t *testing.T) {
	lines := SourceContext([]byte("a\nb\n"), 1)
	assert.Equal(t, []ContextLine{
		{Number: 1, Text: "a", Current: true},
		{Number: 2, Text: "b"},
	}, lines)
}

func TestJSONFormatter(t *testing.T) {
	jf := NewJSONFormatter()

	var got ErrorJSON
	assert.NoError(t, json.Unmarshal([]byte(jf.Format(numberError())), &got))
	assert.Equal(t, "number", got.Type)
	assert.Equal(t, &PositionJSON{Filename: "report.csv", Line: 5}, got.Position)
	assert.Equal(t, map[string]any{"field": "Quantity Transacted", "value": "one"}, got.Details)

	cfg := &lots.ConfigError{Setting: "buy pattern", Value: "(Buy", Err: fmt.Errorf("bad")}
	all := jf.FormatAllToSlice([]error{cfg, fmt.Errorf("plain")})
	assert.Equal(t, 2, len(all))
	assert.Equal(t, "config", all[0].Type)
	assert.Equal(t, "buy pattern", all[0].Details["setting"])
	assert.Equal(t, "*errors.errorString", all[1].Type)
	assert.True(t, all[1].Position == nil)
	assert.True(t, all[1].Details == nil)
}

func TestNew(t *testing.T) {
	f, err := New("json", nil)
	assert.NoError(t, err)
	_, ok := f.(*JSONFormatter)
	assert.True(t, ok)

	_, err = New("xml", nil)
	assert.EqualError(t, err, `unknown error format "xml"`)
}
