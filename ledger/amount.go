package ledger

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// ParseAmount converts a currency-formatted string to a decimal.Decimal.
// Currency symbols, thousands separators and surrounding whitespace are
// stripped, and a value wrapped in parentheses is negative:
//
//	$20.0     ->  20.0
//	(30)      -> -30
//	($1,030.1) -> -1030.1
//
// Anything that is not a number after normalization is an error; values are
// never silently coerced to zero.
func ParseAmount(s string) (decimal.Decimal, error) {
	value := strings.TrimSpace(s)
	value = strings.NewReplacer("$", "", ",", "", " ", "").Replace(value)

	if strings.HasPrefix(value, "(") && strings.HasSuffix(value, ")") {
		value = "-" + strings.Trim(value, "()")
	}

	if value == "" || value == "-" {
		return decimal.Zero, fmt.Errorf("invalid amount value %q: empty", s)
	}

	d, err := decimal.NewFromString(value)
	if err != nil {
		return decimal.Zero, fmt.Errorf("invalid amount value %q: %w", s, err)
	}

	return d, nil
}

// MustParseAmount converts a string to a decimal.Decimal and panics on error
// Use only in tests or when you're certain the amount is valid
func MustParseAmount(s string) decimal.Decimal {
	d, err := ParseAmount(s)
	if err != nil {
		panic(err)
	}
	return d
}
