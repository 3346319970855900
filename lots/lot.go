package lots

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// Lot is a quantity of an asset acquired in one transaction.
type Lot struct {
	Asset string

	// Acquired is the raw date field of the acquiring record.
	Acquired string

	// Quantity is what remains to be consumed.
	Quantity decimal.Decimal

	// OriginalQuantity is the quantity when the lot was first consumed.
	OriginalQuantity decimal.Decimal

	// Cost is the total amount paid for the original quantity.
	Cost decimal.Decimal

	// costErr is set when the acquisition amount did not parse.
	costErr  error
	consumed bool
}

func newLot(asset, acquired string, quantity, cost decimal.Decimal) *Lot {
	return &Lot{
		Asset:            asset,
		Acquired:         acquired,
		Quantity:         quantity,
		OriginalQuantity: quantity,
		Cost:             cost,
	}
}

// UnitCost returns the cost per unit of the original quantity.
func (l *Lot) UnitCost() decimal.Decimal {
	if l.OriginalQuantity.IsZero() {
		return decimal.Zero
	}
	return l.Cost.Div(l.OriginalQuantity)
}

// consume takes up to qty from the lot and returns the allocated quantity and
// its proportional cost basis.
func (l *Lot) consume(qty decimal.Decimal) (alloc, basis decimal.Decimal) {
	if !l.consumed {
		l.OriginalQuantity = l.Quantity
		l.consumed = true
	}
	alloc = decimal.Min(qty, l.Quantity)
	l.Quantity = l.Quantity.Sub(alloc)
	if l.OriginalQuantity.IsZero() {
		return alloc, decimal.Zero
	}
	basis = l.Cost.Mul(alloc).Div(l.OriginalQuantity)
	return alloc, basis
}

func (l *Lot) String() string {
	return fmt.Sprintf("%s %s/%s acquired %s cost %s", l.Asset, l.Quantity, l.OriginalQuantity, l.Acquired, l.Cost)
}
