package lots

import (
	"context"
	"regexp"
	"slices"
)

// Config maps the allocator onto the columns of an exchange export.
type Config struct {
	DateField     string
	TypeField     string
	QuantityField string
	AssetField    string
	AmountField   string

	// BuyPattern is a regular expression matched at the start of the type
	// field. Matching records open a lot; every other record is a disposal.
	BuyPattern string

	// LotSuffix is appended to the disposal type of synthesized records.
	LotSuffix string
}

// DefaultConfig returns the column mapping of a Coinbase transaction report.
func DefaultConfig() Config {
	return Config{
		DateField:     "Timestamp",
		TypeField:     "Transaction Type",
		QuantityField: "Quantity Transacted",
		AssetField:    "Asset",
		AmountField:   "USD Amount Transacted (Inclusive of Coinbase Fees)",
		BuyPattern:    "(Buy|Receive)",
		LotSuffix:     " Lot",
	}
}

func (c Config) fields() []fieldName {
	return []fieldName{
		{"date", c.DateField},
		{"type", c.TypeField},
		{"quantity", c.QuantityField},
		{"asset", c.AssetField},
		{"amount", c.AmountField},
	}
}

type fieldName struct {
	role string
	name string
}

// compile anchors the buy pattern at the start of the value.
func (c Config) compile() (*regexp.Regexp, error) {
	re, err := regexp.Compile(`^(?:` + c.BuyPattern + `)`)
	if err != nil {
		return nil, &ConfigError{Setting: "buy pattern", Value: c.BuyPattern, Err: err}
	}
	return re, nil
}

// Validate checks that the buy pattern compiles and that every configured
// field is present in header.
func (c Config) Validate(header []string) error {
	if _, err := c.compile(); err != nil {
		return err
	}
	for _, f := range c.fields() {
		if f.name == "" {
			return &ConfigError{Setting: f.role + " field", Err: errEmptyField}
		}
		if !slices.Contains(header, f.name) {
			return &ConfigError{Setting: f.role + " field", Value: f.name, Err: errUnknownField}
		}
	}
	return nil
}

// contextKey is a private type to avoid key collisions in context.
type contextKey struct{}

// WithContext returns a new context with the Config attached.
func (c Config) WithContext(ctx context.Context) context.Context {
	return context.WithValue(ctx, contextKey{}, c)
}

// ConfigFromContext retrieves the Config from context.
// Returns the default Config if not found.
func ConfigFromContext(ctx context.Context) Config {
	if cfg, ok := ctx.Value(contextKey{}).(Config); ok {
		return cfg
	}
	return DefaultConfig()
}
