package ledger

import (
	"fmt"
	"iter"
	"time"

	"github.com/shopspring/decimal"
)

// Source tells where a transaction came from.
type Source string

const (
	SourceManual       Source = "manual"
	SourceBankDownload Source = "bank download"
	SourceCalculated   Source = "calculated"
	SourceInferred     Source = "inferred"
	SourceStatement    Source = "ISO statement"
)

// now is replaced in tests.
var now = time.Now

// Transaction is a financial event. Its amount is never stored: it is
// always derived from the designation.
type Transaction struct {
	Date        time.Time
	Payee       string
	Source      Source
	Designation Designation
}

// TransactionOption configures a transaction created by NewTransaction.
type TransactionOption func(*Transaction)

// WithDate sets the transaction date.
func WithDate(date time.Time) TransactionOption {
	return func(t *Transaction) {
		t.Date = date
	}
}

// WithPayee sets the payee.
func WithPayee(payee string) TransactionOption {
	return func(t *Transaction) {
		t.Payee = payee
	}
}

// WithSource sets where the transaction was sourced from.
func WithSource(source Source) TransactionOption {
	return func(t *Transaction) {
		t.Source = source
	}
}

// NewTransaction creates a transaction for the designation. Without
// WithDate the transaction is dated now, in UTC.
func NewTransaction(d Designation, opts ...TransactionOption) *Transaction {
	t := &Transaction{Designation: d}
	for _, opt := range opts {
		opt(t)
	}
	if t.Date.IsZero() {
		t.Date = now().UTC()
	}
	return t
}

// Designations iterates the simple designations of the transaction.
func (t *Transaction) Designations() iter.Seq[SimpleDesignation] {
	return Parts(t.Designation)
}

// Amount returns the sum of all designation amounts.
func (t *Transaction) Amount() decimal.Decimal {
	return t.AmountFor()
}

// AmountFor returns the sum of the designations that satisfy every filter.
func (t *Transaction) AmountFor(filters ...Filter) decimal.Decimal {
	total := decimal.Zero
	for d := range t.Designations() {
		if matchAll(d, filters) {
			total = total.Add(d.Amount)
		}
	}
	return total
}

// matches reports whether at least one designation satisfies every filter.
func (t *Transaction) matches(filters []Filter) bool {
	for d := range t.Designations() {
		if matchAll(d, filters) {
			return true
		}
	}
	return false
}

// Equal reports whether both transactions describe the same event: same
// date, payee, source and designations in the same order.
func (t *Transaction) Equal(other *Transaction) bool {
	if t == nil || other == nil {
		return t == other
	}
	if !t.Date.Equal(other.Date) || t.Payee != other.Payee || t.Source != other.Source {
		return false
	}

	next, stop := iter.Pull(other.Designations())
	defer stop()
	for d := range t.Designations() {
		o, ok := next()
		if !ok || !d.Equal(o) {
			return false
		}
	}
	_, more := next()
	return !more
}

// String returns a one-line representation of the transaction.
func (t *Transaction) String() string {
	payee := t.Payee
	if payee == "" {
		payee = "-"
	}
	return fmt.Sprintf("%s %s %s", t.Date.Format("2006-01-02"), payee, t.Amount().String())
}
