package lots

import (
	"context"
	"errors"
	"testing"

	"github.com/alecthomas/assert/v2"
	"github.com/robinvdvleuten/financial/record"
)

func TestConfigValidate(t *testing.T) {
	t.Run("default matches export header", func(t *testing.T) {
		assert.NoError(t, DefaultConfig().Validate(header))
	})

	t.Run("unknown field", func(t *testing.T) {
		cfg := DefaultConfig()
		cfg.AmountField = "Total"
		err := cfg.Validate(header)
		var cfgErr *ConfigError
		assert.True(t, errors.As(err, &cfgErr))
		assert.Equal(t, "amount field", cfgErr.Setting)
		assert.IsError(t, err, errUnknownField)
		assert.Equal(t, `invalid amount field "Total": not in input header`, err.Error())
	})

	t.Run("empty field", func(t *testing.T) {
		cfg := DefaultConfig()
		cfg.AssetField = ""
		assert.IsError(t, cfg.Validate(header), errEmptyField)
	})

	t.Run("invalid pattern", func(t *testing.T) {
		cfg := DefaultConfig()
		cfg.BuyPattern = "[Buy"
		assert.Error(t, cfg.Validate(header))
	})
}

func TestCheckPattern(t *testing.T) {
	recs := []record.Record{
		row(2, "S1", "Sell", "BTC", "1", "0"),
		row(3, "S2", "Send", "BTC", "1", "0"),
	}
	assert.IsError(t, CheckPattern(DefaultConfig(), recs), errNoBuys)

	recs = append(recs, row(4, "B1", "Receive", "BTC", "1", "0"))
	assert.NoError(t, CheckPattern(DefaultConfig(), recs))
	assert.NoError(t, CheckPattern(DefaultConfig(), nil))
}

func TestConfigContext(t *testing.T) {
	assert.Equal(t, DefaultConfig(), ConfigFromContext(context.Background()))

	cfg := DefaultConfig()
	cfg.LotSuffix = " (lot)"
	ctx := cfg.WithContext(context.Background())
	assert.Equal(t, cfg, ConfigFromContext(ctx))
}
