package residual

import (
	"bytes"
	"path/filepath"
	"strings"
	"testing"

	"github.com/alecthomas/assert/v2"
	"github.com/robinvdvleuten/financial/ledger"
	"github.com/xuri/excelize/v2"
)

func parseSample(t *testing.T) *Report {
	t.Helper()
	report, err := ParseReport(strings.NewReader(sampleReport))
	assert.NoError(t, err)
	return report
}

func TestApply(t *testing.T) {
	b := NewBook()
	sum, err := b.Apply(parseSample(t), DefaultShare)
	assert.NoError(t, err)
	assert.Equal(t, Summary{Booked: 5}, sum)

	jane := b.Account("042", "")
	assert.Equal(t, "Jane Doe", jane.Name)
	assert.Equal(t, 8, jane.Len())

	earned := ledger.ByDescriptor("Residuals Earned : Corner Cafe (5001)")
	shared := ledger.ByDescriptor("Residuals Shared : Corner Cafe (5001)")
	var earnedTotal, sharedTotal []string
	for tx := range jane.Query(earned) {
		assert.Equal(t, ledger.SourceStatement, tx.Source)
		earnedTotal = append(earnedTotal, tx.Amount().String())
	}
	for tx := range jane.Query(shared) {
		assert.Equal(t, ledger.SourceCalculated, tx.Source)
		sharedTotal = append(sharedTotal, tx.Amount().String())
	}
	assert.Equal(t, []string{"12.5", "1030.1"}, earnedTotal)
	assert.Equal(t, []string{"-6.25", "-515.05"}, sharedTotal)

	assert.Equal(t, "521.8", jane.Balance().String())
}

func TestApplyIsIdempotent(t *testing.T) {
	b := NewBook()
	_, err := b.Apply(parseSample(t), DefaultShare)
	assert.NoError(t, err)

	sum, err := b.Apply(parseSample(t), DefaultShare)
	assert.NoError(t, err)
	assert.Equal(t, Summary{Skipped: 5}, sum)
	assert.Equal(t, 8, b.Account("042", "").Len())
	assert.Equal(t, 2, b.Account("077", "").Len())
}

func TestApplyInvalidAmount(t *testing.T) {
	report, err := ParseReport(strings.NewReader(`<table>
<tr><td>Sales Rep Number</td><td>Sales Rep Name</td><td>Merchant ID</td><td>DBA Name</td><td>3/2012</td></tr>
<tr><td>1</td><td>A</td><td>9</td><td>Shop</td><td>n/a</td></tr>
</table>`))
	assert.NoError(t, err)

	_, err = NewBook().Apply(report, DefaultShare)
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "agent 1, merchant Shop (9)")
}

func TestBookSaveLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "book.json")

	missing, err := LoadBook(path)
	assert.NoError(t, err)
	assert.Equal(t, 0, missing.Len())

	b := NewBook()
	_, err = b.Apply(parseSample(t), DefaultShare)
	assert.NoError(t, err)
	assert.NoError(t, b.Save(path))

	loaded, err := LoadBook(path)
	assert.NoError(t, err)
	assert.Equal(t, 2, loaded.Len())

	for id, acct := range b.Accounts() {
		other := loaded.Account(id, "")
		assert.Equal(t, acct.Name, other.Name)
		assert.Equal(t, acct.Len(), other.Len())
		assert.True(t, acct.Balance().Equal(other.Balance()))
		for tx := range acct.All() {
			assert.True(t, other.Contains(tx), "missing %s", tx)
		}
	}

	sum, err := loaded.Apply(parseSample(t), DefaultShare)
	assert.NoError(t, err)
	assert.Equal(t, 0, sum.Booked)
}

func TestReadBookInvalid(t *testing.T) {
	_, err := ReadBook(strings.NewReader("{"))
	assert.Error(t, err)
}

func TestExportXLSX(t *testing.T) {
	b := NewBook()
	_, err := b.Apply(parseSample(t), DefaultShare)
	assert.NoError(t, err)

	var buf bytes.Buffer
	assert.NoError(t, b.ExportXLSX(&buf))

	f, err := excelize.OpenReader(&buf)
	assert.NoError(t, err)
	defer f.Close()

	assert.Equal(t, []string{"Jane Doe", "John Roe"}, f.GetSheetList())

	raw := excelize.Options{RawCellValue: true}
	header, err := f.GetCellValue("John Roe", "C1", raw)
	assert.NoError(t, err)
	assert.Equal(t, "Category", header)

	category, err := f.GetCellValue("John Roe", "C2", raw)
	assert.NoError(t, err)
	assert.Equal(t, "Residuals Earned : Corner Cafe (5001)", category)

	date, err := f.GetCellValue("John Roe", "A2", raw)
	assert.NoError(t, err)
	assert.Equal(t, "2011-01-01", date)

	balance, err := f.GetCellValue("John Roe", "D4", raw)
	assert.NoError(t, err)
	assert.Equal(t, "3.625", balance)
}
