package residual

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"iter"
	"os"
	"time"

	"github.com/robinvdvleuten/financial/ledger"
	"github.com/robinvdvleuten/financial/loader"
	"github.com/robinvdvleuten/financial/spreadsheet"
	"github.com/shopspring/decimal"
)

// Descriptor prefixes of booked residuals.
const (
	EarnedPrefix = "Residuals Earned : "
	SharedPrefix = "Residuals Shared : "
)

// DefaultShare is the part of every residual paid to the house.
var DefaultShare = decimal.New(5, -1)

// Book holds a ledger account per agent, keyed by agent ID.
type Book struct {
	accounts *Registry[string, *ledger.Account]
}

// NewBook creates an empty book.
func NewBook() *Book {
	return &Book{accounts: NewRegistry[string, *ledger.Account]()}
}

// Account returns the account of an agent, creating it named name when new.
func (b *Book) Account(agentID, name string) *ledger.Account {
	return b.accounts.GetOrCreate(agentID, func() *ledger.Account {
		return ledger.NewAccount(name)
	})
}

// Accounts iterates agent IDs and their accounts.
func (b *Book) Accounts() iter.Seq2[string, *ledger.Account] {
	return b.accounts.All()
}

// Len returns the number of agents.
func (b *Book) Len() int {
	return b.accounts.Len()
}

// Summary counts the outcome of Apply.
type Summary struct {
	Booked  int
	Skipped int
}

// Apply books the residuals of report. Every residual becomes an earned
// transaction sourced from the statement, followed by a calculated
// transaction sharing -amount*share. Residuals already booked with the same
// date, descriptor and amount are skipped, so a report can be applied again.
func (b *Book) Apply(report *Report, share decimal.Decimal) (Summary, error) {
	var sum Summary
	for id, agent := range report.Agents.All() {
		acct := b.Account(id, agent.Name)
		for _, merchant := range agent.Merchants() {
			for _, r := range agent.Residuals(merchant) {
				booked, err := book(acct, merchant, r, share)
				if err != nil {
					return sum, fmt.Errorf("agent %s, merchant %s: %w", id, merchant, err)
				}
				if booked {
					sum.Booked++
				} else {
					sum.Skipped++
				}
			}
		}
	}
	return sum, nil
}

func book(acct *ledger.Account, merchant *Merchant, r Residual, share decimal.Decimal) (bool, error) {
	amount, err := ledger.ParseAmount(r.Amount)
	if err != nil {
		return false, err
	}
	date, err := r.Date()
	if err != nil {
		return false, err
	}

	earned := ledger.NewTransaction(
		ledger.Designate(EarnedPrefix+merchant.String(), amount),
		ledger.WithDate(date),
		ledger.WithSource(ledger.SourceStatement),
	)
	if acct.Contains(earned) {
		return false, nil
	}
	acct.Add(earned)

	shared := ledger.NewTransaction(
		ledger.Designate(SharedPrefix+merchant.String(), amount.Neg().Mul(share)),
		ledger.WithDate(date),
		ledger.WithSource(ledger.SourceCalculated),
	)
	acct.Add(shared)
	return true, nil
}

type bookFile struct {
	Agents []agentFile `json:"agents"`
}

type agentFile struct {
	ID           string            `json:"id"`
	Name         string            `json:"name"`
	Transactions []transactionFile `json:"transactions"`
}

type transactionFile struct {
	Date         time.Time         `json:"date"`
	Payee        string            `json:"payee,omitempty"`
	Source       ledger.Source     `json:"source,omitempty"`
	Designations []designationFile `json:"designations"`
}

type designationFile struct {
	Descriptor string          `json:"descriptor"`
	Amount     decimal.Decimal `json:"amount"`
	Memo       string          `json:"memo,omitempty"`
}

// LoadBook reads a book saved with Save. A missing file is an empty book.
func LoadBook(path string) (*Book, error) {
	f, err := os.Open(path)
	if errors.Is(err, fs.ErrNotExist) {
		return NewBook(), nil
	}
	if err != nil {
		return nil, err
	}
	defer f.Close()

	b, err := ReadBook(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return b, nil
}

// ReadBook decodes a book.
func ReadBook(r io.Reader) (*Book, error) {
	var file bookFile
	if err := json.NewDecoder(r).Decode(&file); err != nil {
		return nil, fmt.Errorf("decoding book: %w", err)
	}

	b := NewBook()
	for _, a := range file.Agents {
		acct := b.Account(a.ID, a.Name)
		for _, t := range a.Transactions {
			acct.Add(ledger.NewTransaction(decodeDesignation(t.Designations),
				ledger.WithDate(t.Date),
				ledger.WithPayee(t.Payee),
				ledger.WithSource(t.Source),
			))
		}
	}
	return b, nil
}

func decodeDesignation(ds []designationFile) ledger.Designation {
	parts := make(ledger.SplitDesignation, len(ds))
	for i, d := range ds {
		parts[i] = ledger.SimpleDesignation{Descriptor: d.Descriptor, Amount: d.Amount, Memo: d.Memo}
	}
	if len(parts) == 1 {
		return parts[0]
	}
	return parts
}

// Write encodes the book. Nested ledgers are flattened into split
// designations.
func (b *Book) Write(w io.Writer) error {
	file := bookFile{Agents: []agentFile{}}
	for id, acct := range b.accounts.All() {
		a := agentFile{ID: id, Name: acct.Name, Transactions: []transactionFile{}}
		for tx := range acct.All() {
			t := transactionFile{Date: tx.Date, Payee: tx.Payee, Source: tx.Source}
			for d := range tx.Designations() {
				t.Designations = append(t.Designations, designationFile{
					Descriptor: d.Descriptor,
					Amount:     d.Amount,
					Memo:       d.Memo,
				})
			}
			a.Transactions = append(a.Transactions, t)
		}
		file.Agents = append(file.Agents, a)
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(file)
}

// Save writes the book to path, replacing it atomically.
func (b *Book) Save(path string) error {
	return loader.WriteFile(path, 0o644, b.Write)
}

// ExportXLSX writes a workbook with a sheet per agent listing date, payee,
// category and amount, followed by the balance.
func (b *Book) ExportXLSX(w io.Writer) error {
	wb := spreadsheet.New()
	defer wb.Close()

	for _, acct := range b.accounts.All() {
		sheet, err := wb.Sheet(acct.Name)
		if err != nil {
			return err
		}
		if err := sheet.Header("Date", "Payee", "Category", "Amount"); err != nil {
			return err
		}
		for tx := range acct.All() {
			for d := range tx.Designations() {
				if err := sheet.Row(tx.Date.Format("2006-01-02"), tx.Payee, d.Descriptor, d.Amount); err != nil {
					return err
				}
			}
		}
		if err := sheet.Total("", "", "Balance", acct.Balance()); err != nil {
			return err
		}
	}
	if b.Len() == 0 {
		if _, err := wb.Sheet("Residuals"); err != nil {
			return err
		}
	}

	_, err := wb.WriteTo(w)
	return err
}
