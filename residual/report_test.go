package residual

import (
	"strings"
	"testing"
	"time"

	"github.com/alecthomas/assert/v2"
)

const sampleReport = `
<table class="report">
  <tr>
    <td>Sales Rep Number</td><td>Sales Rep Name</td><td>Merchant ID</td><td>DBA Name</td>
    <td>11/2010</td><td>12/2010</td><td>1/2011</td>
  </tr>
  <tr>
    <td> 042 </td><td> Jane Doe </td><td>5001</td><td> Corner Cafe </td>
    <td>$12.50</td><td>$0.00</td><td>$1,030.10</td>
  </tr>
  <tr>
    <td>042</td><td>Jane Doe</td><td>5002</td><td>Book <b>Nook</b></td>
    <td>($3.00)</td><td>$4.00</td><td>$0.00</td>
  </tr>
  <tr>
    <td>077</td><td>John Roe</td><td>5001</td><td>Corner Cafe</td>
    <td>$0.00</td><td>$0.00</td><td>$7.25</td>
  </tr>
</table>
`

func TestParseReport(t *testing.T) {
	report, err := ParseReport(strings.NewReader(sampleReport))
	assert.NoError(t, err)

	assert.Equal(t, 2, report.Agents.Len())
	assert.Equal(t, 2, report.Merchants.Len())

	jane, ok := report.Agents.Get("042")
	assert.True(t, ok)
	assert.Equal(t, "Jane Doe", jane.Name)
	assert.Equal(t, 2, len(jane.Merchants()))

	cafe := jane.Merchants()[0]
	assert.Equal(t, "Corner Cafe (5001)", cafe.String())
	assert.Equal(t, []Residual{
		{Period: "11/2010", Amount: "$12.50"},
		{Period: "1/2011", Amount: "$1,030.10"},
	}, jane.Residuals(cafe))

	nook := jane.Merchants()[1]
	assert.Equal(t, "Book Nook", nook.Name)
	assert.Equal(t, 2, len(jane.Residuals(nook)))

	john, ok := report.Agents.Get("077")
	assert.True(t, ok)
	assert.True(t, john.Merchants()[0] == cafe, "merchants are shared between agents")
	assert.Equal(t, []Residual{{Period: "1/2011", Amount: "$7.25"}}, john.Residuals(cafe))

	assert.Equal(t, "John Roe (077)\n  Corner Cafe (5001)\n    Residual(1/2011, $7.25)", john.String())
}

func TestParseReportTables(t *testing.T) {
	_, err := ParseReport(strings.NewReader("<p>nothing here</p>"))
	assert.EqualError(t, err, "report has 0 tables, expected exactly 1")

	_, err = ParseReport(strings.NewReader("<table><tr><td>a</td></tr></table><table></table>"))
	assert.EqualError(t, err, "report has 2 tables, expected exactly 1")
}

func TestParseReportMissingColumn(t *testing.T) {
	_, err := ParseReport(strings.NewReader(`<table>
<tr><td>Sales Rep Number</td><td>Merchant ID</td></tr>
<tr><td>1</td><td>2</td></tr>
</table>`))
	assert.EqualError(t, err, `line 2: missing column "Sales Rep Name"`)
}

func TestResidualDate(t *testing.T) {
	d, err := Residual{Period: "1/2011"}.Date()
	assert.NoError(t, err)
	assert.Equal(t, time.Date(2011, time.January, 1, 0, 0, 0, 0, time.UTC), d)

	_, err = Residual{Period: "13/2011"}.Date()
	assert.Error(t, err)
}

func TestRegistry(t *testing.T) {
	r := NewRegistry[string, *Merchant]()
	calls := 0
	create := func() *Merchant {
		calls++
		return &Merchant{ID: "1"}
	}
	first := r.GetOrCreate("1", create)
	second := r.GetOrCreate("1", create)
	r.GetOrCreate("0", func() *Merchant { return &Merchant{ID: "0"} })

	assert.True(t, first == second)
	assert.Equal(t, 1, calls)

	var keys []string
	for k := range r.All() {
		keys = append(keys, k)
	}
	assert.Equal(t, []string{"1", "0"}, keys)
}
