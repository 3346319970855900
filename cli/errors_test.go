package cli

import (
	"bytes"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/alecthomas/assert/v2"

	"github.com/robinvdvleuten/financial/lots"
	"github.com/robinvdvleuten/financial/record"
)

const source = `Timestamp,Transaction Type,Asset,Quantity Transacted
2024-01-01,Buy,BTC,1
2024-01-02,Buy,BTC,abc
2024-01-03,Sell,BTC,1
`

func numberError() error {
	return &lots.NumberError{
		Pos:   record.Position{Filename: "in.csv", Line: 3},
		Field: "Quantity Transacted",
		Value: "abc",
		Err:   errors.New("can't convert abc to decimal"),
	}
}

func TestErrorRenderer(t *testing.T) {
	t.Run("QuotesOffendingLine", func(t *testing.T) {
		out := NewErrorRenderer([]byte(source)).Render(numberError())

		assert.Contains(t, out, `in.csv:3: invalid number "abc"`)
		assert.Contains(t, out, "   1 | Timestamp,Transaction Type")
		assert.Contains(t, out, "2024-01-02,Buy,BTC,abc")
		assert.Contains(t, out, "   4 | 2024-01-03,Sell,BTC,1")

		for _, line := range strings.Split(out, "\n") {
			if strings.Contains(line, "abc") && strings.Contains(line, "|") {
				assert.Contains(t, line, ">")
			}
		}
	})

	t.Run("WithoutSource", func(t *testing.T) {
		out := NewErrorRenderer(nil).Render(numberError())
		assert.Contains(t, out, "invalid number")
		assert.NotContains(t, out, "|")
	})

	t.Run("PlainError", func(t *testing.T) {
		out := NewErrorRenderer([]byte(source)).Render(errors.New("boom"))
		assert.Contains(t, out, "boom")
		assert.NotContains(t, out, "Timestamp")
	})

	t.Run("RenderAll", func(t *testing.T) {
		out := NewErrorRenderer(nil).RenderAll([]error{errors.New("first"), errors.New("second")})
		assert.Contains(t, out, "first")
		assert.Contains(t, out, "\n\n")
		assert.Contains(t, out, "second")
	})
}

func TestGlobalsFail(t *testing.T) {
	t.Run("Text", func(t *testing.T) {
		var stderr bytes.Buffer
		g := &Globals{ErrorFormat: "text"}

		err := g.fail(&stderr, numberError(), []byte(source))
		assert.Equal(t, 1, ExitCode(err))
		assert.Contains(t, stderr.String(), "invalid number")
		assert.Contains(t, stderr.String(), "failed")
	})

	t.Run("JSON", func(t *testing.T) {
		var stderr bytes.Buffer
		g := &Globals{ErrorFormat: "json"}

		err := g.fail(&stderr, numberError(), nil)
		assert.Equal(t, 1, ExitCode(err))

		var got struct {
			Type     string `json:"type"`
			Position struct {
				Line int `json:"line"`
			} `json:"position"`
		}
		assert.NoError(t, json.Unmarshal(stderr.Bytes(), &got))
		assert.Equal(t, "number", got.Type)
		assert.Equal(t, 3, got.Position.Line)
	})
}
