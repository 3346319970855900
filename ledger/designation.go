package ledger

import (
	"iter"

	"github.com/shopspring/decimal"
)

// Designation is the categorized allocation of a transaction's money.
// It is one of:
//
//   - SimpleDesignation: a single category and amount
//   - SplitDesignation: several categorized allocations (a paycheck split
//     into taxes and net pay)
//   - *Ledger: a nested ledger whose transactions make up the allocation
//
// Use Parts to iterate the simple designations regardless of the variant.
type Designation interface {
	designation()
}

var (
	_ Designation = SimpleDesignation{}
	_ Designation = SplitDesignation{}
	_ Designation = (*Ledger)(nil)
)

// SimpleDesignation is one categorized, signed amount.
type SimpleDesignation struct {
	Descriptor string
	Amount     decimal.Decimal
	Memo       string
}

// Designate creates a SimpleDesignation.
func Designate(descriptor string, amount decimal.Decimal) SimpleDesignation {
	return SimpleDesignation{Descriptor: descriptor, Amount: amount}
}

func (SimpleDesignation) designation() {}

// WithMemo returns a copy of the designation carrying memo.
func (d SimpleDesignation) WithMemo(memo string) SimpleDesignation {
	d.Memo = memo
	return d
}

// Equal reports whether both designations have the same descriptor, amount
// and memo.
func (d SimpleDesignation) Equal(other SimpleDesignation) bool {
	return d.Descriptor == other.Descriptor &&
		d.Amount.Equal(other.Amount) &&
		d.Memo == other.Memo
}

// SplitDesignation is an ordered list of simple designations.
type SplitDesignation []SimpleDesignation

func (SplitDesignation) designation() {}

func (*Ledger) designation() {}

// Parts flattens a designation into its simple designations, in order.
// A nested ledger yields the parts of each of its transactions.
func Parts(d Designation) iter.Seq[SimpleDesignation] {
	return func(yield func(SimpleDesignation) bool) {
		walkParts(d, yield)
	}
}

// walkParts reports false once yield asked to stop.
func walkParts(d Designation, yield func(SimpleDesignation) bool) bool {
	switch d := d.(type) {
	case SimpleDesignation:
		return yield(d)
	case SplitDesignation:
		for _, part := range d {
			if !yield(part) {
				return false
			}
		}
	case *Ledger:
		if d == nil {
			return true
		}
		for _, tx := range d.transactions {
			if !walkParts(tx.Designation, yield) {
				return false
			}
		}
	}
	return true
}

// Filter selects simple designations.
type Filter func(SimpleDesignation) bool

// ByDescriptor matches designations with exactly this descriptor.
func ByDescriptor(descriptor string) Filter {
	return func(d SimpleDesignation) bool {
		return d.Descriptor == descriptor
	}
}

// ByAmount matches designations with exactly this amount.
func ByAmount(amount decimal.Decimal) Filter {
	return func(d SimpleDesignation) bool {
		return d.Amount.Equal(amount)
	}
}

// matchAll reports whether d satisfies every filter. No filters match
// everything.
func matchAll(d SimpleDesignation, filters []Filter) bool {
	for _, f := range filters {
		if !f(d) {
			return false
		}
	}
	return true
}
