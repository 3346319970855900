package output

import (
	"github.com/Rhymond/go-money"
	"github.com/shopspring/decimal"
)

// DefaultCurrency is used when a currency code is unknown.
const DefaultCurrency = money.USD

// FormatMoney formats an amount with the symbol, separators and fraction
// digits of the currency, rounding to the currency's minor unit:
//
//	FormatMoney(decimal.RequireFromString("-1234.567"), "USD") // -$1,234.57
func FormatMoney(amount decimal.Decimal, code string) string {
	cur := money.GetCurrency(code)
	if cur == nil {
		cur = money.GetCurrency(DefaultCurrency)
	}
	minor := amount.Shift(int32(cur.Fraction)).Round(0).IntPart()
	return money.New(minor, cur.Code).Display()
}
