package clearing

import (
	"math/big"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConfigValidate(t *testing.T) {
	t.Run("Defaults", func(t *testing.T) {
		assert.NoError(t, DefaultConfig().Validate())
	})

	t.Run("ZeroBatchCap", func(t *testing.T) {
		cfg := DefaultConfig()
		cfg.MaxTradesPerBatch = 0
		assert.ErrorIs(t, cfg.Validate(), ErrConfig)
	})

	t.Run("NilMinTrade", func(t *testing.T) {
		cfg := DefaultConfig()
		cfg.MinTradeAmount = nil
		assert.ErrorIs(t, cfg.Validate(), ErrConfig)
	})

	t.Run("ZeroMinTrade", func(t *testing.T) {
		cfg := DefaultConfig()
		cfg.MinTradeAmount = big.NewInt(0)
		assert.ErrorIs(t, cfg.Validate(), ErrConfig)
	})

	t.Run("FeeAboveCeiling", func(t *testing.T) {
		cfg := DefaultConfig()
		cfg.TakerFeeBps = MaxFeeBps + 1
		assert.ErrorIs(t, cfg.Validate(), ErrConfig)
	})
}

func TestConfigResolve(t *testing.T) {
	base := Config{
		MaxTradesPerBatch: 100,
		MinTradeAmount:    big.NewInt(5),
		MakerFeeBps:       10,
		TakerFeeBps:       20,
	}

	t.Run("NilTupleKeepsDefaults", func(t *testing.T) {
		eff, err := base.Resolve(nil)
		require.NoError(t, err)
		assert.Equal(t, uint64(0), eff.Timestamp)
		assert.Equal(t, "5", eff.MinTradeAmount.String())
		assert.Equal(t, uint64(10), eff.MakerFeeBps)
		assert.Equal(t, uint64(20), eff.TakerFeeBps)
		assert.Equal(t, 100, eff.MaxTradesPerBatch)
	})

	t.Run("OverridesApply", func(t *testing.T) {
		eff, err := base.Resolve(&RuntimeConfig{
			Timestamp:      1234,
			FeeBps:         50,
			MinTradeAmount: big.NewInt(7),
		})
		require.NoError(t, err)
		assert.Equal(t, uint64(1234), eff.Timestamp)
		assert.Equal(t, "7", eff.MinTradeAmount.String())

		// The flat runtime rate lands on the aggressive side only.
		assert.Equal(t, uint64(10), eff.MakerFeeBps)
		assert.Equal(t, uint64(50), eff.TakerFeeBps)
	})

	t.Run("ResolvedMinTradeIsACopy", func(t *testing.T) {
		rc := &RuntimeConfig{MinTradeAmount: big.NewInt(9)}
		eff, err := base.Resolve(rc)
		require.NoError(t, err)

		rc.MinTradeAmount.SetInt64(1000)
		assert.Equal(t, "9", eff.MinTradeAmount.String())
	})

	t.Run("FeeAboveCeilingRejected", func(t *testing.T) {
		eff, err := base.Resolve(&RuntimeConfig{FeeBps: 10001, MinTradeAmount: big.NewInt(7)})
		assert.ErrorIs(t, err, ErrConfig)

		// The whole tuple is dropped, not just the bad field.
		assert.Equal(t, uint64(20), eff.TakerFeeBps)
		assert.Equal(t, "5", eff.MinTradeAmount.String())
	})

	t.Run("NegativeMinTradeRejected", func(t *testing.T) {
		eff, err := base.Resolve(&RuntimeConfig{MinTradeAmount: big.NewInt(-1)})
		assert.ErrorIs(t, err, ErrConfig)
		assert.Equal(t, "5", eff.MinTradeAmount.String())
	})
}

func TestConfigFromEnv(t *testing.T) {
	t.Run("Defaults", func(t *testing.T) {
		cfg, err := ConfigFromEnv()
		require.NoError(t, err)
		assert.Equal(t, DefaultMaxTradesPerBatch, cfg.MaxTradesPerBatch)
		assert.Equal(t, int64(DefaultMinTradeAmount), cfg.MinTradeAmount.Int64())
		assert.Equal(t, uint64(DefaultMakerFeeBps), cfg.MakerFeeBps)
		assert.Equal(t, uint64(DefaultTakerFeeBps), cfg.TakerFeeBps)
	})

	t.Run("EnvOverrides", func(t *testing.T) {
		t.Setenv(EnvMaxTradesPerBatch, "7")
		t.Setenv(EnvMinTradeAmount, "250")
		t.Setenv(EnvMakerFeeBps, "5")
		t.Setenv(EnvTakerFeeBps, "30")

		cfg, err := ConfigFromEnv()
		require.NoError(t, err)
		assert.Equal(t, 7, cfg.MaxTradesPerBatch)
		assert.Equal(t, "250", cfg.MinTradeAmount.String())
		assert.Equal(t, uint64(5), cfg.MakerFeeBps)
		assert.Equal(t, uint64(30), cfg.TakerFeeBps)
	})

	t.Run("BadMinTrade", func(t *testing.T) {
		t.Setenv(EnvMinTradeAmount, "not-a-number")
		_, err := ConfigFromEnv()
		assert.ErrorIs(t, err, ErrConfig)
	})

	t.Run("InvalidCombination", func(t *testing.T) {
		t.Setenv(EnvMaxTradesPerBatch, "0")
		_, err := ConfigFromEnv()
		assert.ErrorIs(t, err, ErrConfig)
	})
}
