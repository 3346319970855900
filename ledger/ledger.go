// Package ledger provides the transaction data model shared by the financial
// tools: transactions with categorized designations, date-ordered ledgers and
// named accounts.
//
// A ledger keeps its transactions sorted by date. Transactions sharing a date
// keep their insertion order, so adding the same transactions in any order
// yields the same balance:
//
//	l := ledger.New()
//	l.Add(
//	    ledger.NewTransaction(ledger.Designate("Groceries", ledger.MustParseAmount("-42.10"))),
//	    ledger.NewTransaction(ledger.SplitDesignation{
//	        ledger.Designate("Salary", ledger.MustParseAmount("2500")),
//	        ledger.Designate("Taxes", ledger.MustParseAmount("-600")),
//	    }),
//	)
//	fmt.Println(l.Balance())
//
// All amounts use decimal arithmetic to avoid floating point precision issues.
package ledger

import (
	"iter"
	"time"

	"github.com/shopspring/decimal"
	"golang.org/x/exp/slices"
)

// Ledger is a date-ordered collection of transactions. The zero value is an
// empty ledger ready to use.
type Ledger struct {
	transactions []*Transaction
}

// New creates an empty ledger.
func New() *Ledger {
	return &Ledger{}
}

// Add inserts transactions in date order. A transaction is placed after any
// existing transaction with the same date.
func (l *Ledger) Add(txs ...*Transaction) {
	for _, tx := range txs {
		if tx == nil {
			continue
		}
		i := l.upperBound(tx.Date)
		l.transactions = slices.Insert(l.transactions, i, tx)
	}
}

// upperBound returns the index of the first transaction dated after date.
func (l *Ledger) upperBound(date time.Time) int {
	i, _ := slices.BinarySearchFunc(l.transactions, date, func(tx *Transaction, d time.Time) int {
		if tx.Date.After(d) {
			return 1
		}
		return -1
	})
	return i
}

// Len returns the number of transactions.
func (l *Ledger) Len() int {
	if l == nil {
		return 0
	}
	return len(l.transactions)
}

// Transactions returns a copy of the transactions in date order.
func (l *Ledger) Transactions() []*Transaction {
	if l == nil {
		return nil
	}
	return slices.Clone(l.transactions)
}

// All iterates the transactions in date order.
func (l *Ledger) All() iter.Seq[*Transaction] {
	return l.Query()
}

// Balance returns the sum of every transaction amount.
func (l *Ledger) Balance() decimal.Decimal {
	if l == nil {
		return decimal.Zero
	}
	return sumAmounts(l.transactions)
}

// BalanceThrough returns the sum of the amounts of transactions dated on or
// before date.
func (l *Ledger) BalanceThrough(date time.Time) decimal.Decimal {
	if l == nil {
		return decimal.Zero
	}
	return sumAmounts(l.transactions[:l.upperBound(date)])
}

// Query iterates the transactions that have at least one designation
// satisfying every filter. Without filters every transaction matches. Each
// transaction is yielded at most once and the sequence can be ranged over
// repeatedly.
func (l *Ledger) Query(filters ...Filter) iter.Seq[*Transaction] {
	return func(yield func(*Transaction) bool) {
		if l == nil {
			return
		}
		for _, tx := range l.transactions {
			if !tx.matches(filters) {
				continue
			}
			if !yield(tx) {
				return
			}
		}
	}
}

// AmountOf returns the sum of the designations of tx that satisfy every
// filter. A nil transaction has a zero amount.
func (l *Ledger) AmountOf(tx *Transaction, filters ...Filter) decimal.Decimal {
	if tx == nil {
		return decimal.Zero
	}
	return tx.AmountFor(filters...)
}

// Contains reports whether the ledger holds a transaction equal to tx.
func (l *Ledger) Contains(tx *Transaction) bool {
	if l == nil || tx == nil {
		return false
	}
	lo := l.lowerBound(tx.Date)
	for _, existing := range l.transactions[lo:] {
		if !existing.Date.Equal(tx.Date) {
			break
		}
		if existing.Equal(tx) {
			return true
		}
	}
	return false
}

// lowerBound returns the index of the first transaction not dated before date.
func (l *Ledger) lowerBound(date time.Time) int {
	i, _ := slices.BinarySearchFunc(l.transactions, date, func(tx *Transaction, d time.Time) int {
		if tx.Date.Before(d) {
			return -1
		}
		return 1
	})
	return i
}

// DateRange returns the dates of the first and last transactions. ok is
// false for an empty ledger.
func (l *Ledger) DateRange() (first, last time.Time, ok bool) {
	if l.Len() == 0 {
		return time.Time{}, time.Time{}, false
	}
	return l.transactions[0].Date, l.transactions[len(l.transactions)-1].Date, true
}

func sumAmounts(txs []*Transaction) decimal.Decimal {
	total := decimal.Zero
	for _, tx := range txs {
		total = total.Add(tx.Amount())
	}
	return total
}
