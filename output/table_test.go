package output

import (
	"bytes"
	"testing"

	"github.com/alecthomas/assert/v2"
	"github.com/shopspring/decimal"
)

func TestTableRender(t *testing.T) {
	table := NewTable("Asset", "Acquired", "Remaining").AlignRight(2)
	table.Append("BTC", "2021-01-01", "6")
	table.Append("ETH", "2021-02-01", "0.25")
	table.Append("日本", "2021-03-01")

	var buf bytes.Buffer
	assert.NoError(t, table.Render(&buf, nil))
	assert.Equal(t, ""+
		"Asset  Acquired    Remaining\n"+
		"BTC    2021-01-01          6\n"+
		"ETH    2021-02-01       0.25\n"+
		"日本   2021-03-01\n", buf.String())
	assert.Equal(t, 3, table.Len())
}

func TestFormatMoney(t *testing.T) {
	tests := []struct {
		amount string
		code   string
		want   string
	}{
		{"1234.567", "USD", "$1,234.57"},
		{"-1234.5", "USD", "-$1,234.50"},
		{"0", "USD", "$0.00"},
		{"12.5", "???", "$12.50"},
	}
	for _, tt := range tests {
		t.Run(tt.amount+" "+tt.code, func(t *testing.T) {
			assert.Equal(t, tt.want, FormatMoney(decimal.RequireFromString(tt.amount), tt.code))
		})
	}
}
