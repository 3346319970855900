package lots

import (
	"errors"
	"fmt"

	"github.com/robinvdvleuten/financial/record"
)

var (
	errEmptyField   = errors.New("no field name configured")
	errUnknownField = errors.New("not in input header")
	errNoBuys       = errors.New("matches no record")
)

// ConfigError is returned when the allocator configuration does not fit the
// input. It is reported before any record is processed.
type ConfigError struct {
	Setting string
	Value   string
	Err     error
}

func (e *ConfigError) Error() string {
	if e.Value == "" {
		return fmt.Sprintf("invalid %s: %v", e.Setting, e.Err)
	}
	return fmt.Sprintf("invalid %s %q: %v", e.Setting, e.Value, e.Err)
}

func (e *ConfigError) Unwrap() error {
	return e.Err
}

// NumberError is returned when a quantity or amount field does not hold a
// number. It aborts the run.
type NumberError struct {
	Pos   record.Position
	Field string
	Value string
	Err   error
}

func (e *NumberError) Error() string {
	return fmt.Sprintf("%s: invalid number %q in field %q", e.Pos, e.Value, e.Field)
}

func (e *NumberError) Unwrap() error {
	return e.Err
}

// GetPosition returns the position of the offending record.
func (e *NumberError) GetPosition() record.Position {
	return e.Pos
}

// CheckPattern reports a ConfigError when the buy pattern of cfg matches the
// type of none of recs. Only use it on fully read input: an export holding
// nothing but disposals is indistinguishable from a wrong pattern.
func CheckPattern(cfg Config, recs []record.Record) error {
	re, err := cfg.compile()
	if err != nil {
		return err
	}
	for _, rec := range recs {
		if re.MatchString(rec.Get(cfg.TypeField)) {
			return nil
		}
	}
	if len(recs) == 0 {
		return nil
	}
	return &ConfigError{Setting: "buy pattern", Value: cfg.BuyPattern, Err: errNoBuys}
}
