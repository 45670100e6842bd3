package clearing

import (
	"fmt"
	"math/big"
	"strings"

	"github.com/spf13/viper"

	"github.com/0x5487/clearing-engine/protocol"
)

// Config holds the build-time defaults of the engine. A SchemaV2 payload
// can override parts of it per batch through its runtime config tuple.
type Config struct {
	MaxTradesPerBatch int
	MinTradeAmount    *big.Int
	MakerFeeBps       uint64
	TakerFeeBps       uint64
}

// DefaultConfig returns the built-in defaults.
func DefaultConfig() Config {
	return Config{
		MaxTradesPerBatch: DefaultMaxTradesPerBatch,
		MinTradeAmount:    big.NewInt(DefaultMinTradeAmount),
		MakerFeeBps:       DefaultMakerFeeBps,
		TakerFeeBps:       DefaultTakerFeeBps,
	}
}

// ConfigFromEnv builds a Config from the CLEARING_* environment variables,
// falling back to the built-in defaults for anything unset.
func ConfigFromEnv() (Config, error) {
	v := viper.New()
	v.SetDefault(EnvMaxTradesPerBatch, DefaultMaxTradesPerBatch)
	v.SetDefault(EnvMinTradeAmount, DefaultMinTradeAmount)
	v.SetDefault(EnvMakerFeeBps, DefaultMakerFeeBps)
	v.SetDefault(EnvTakerFeeBps, DefaultTakerFeeBps)
	v.AutomaticEnv()

	cfg := Config{
		MaxTradesPerBatch: v.GetInt(EnvMaxTradesPerBatch),
		MakerFeeBps:       v.GetUint64(EnvMakerFeeBps),
		TakerFeeBps:       v.GetUint64(EnvTakerFeeBps),
	}

	raw := strings.TrimSpace(v.GetString(EnvMinTradeAmount))
	amount, ok := new(big.Int).SetString(raw, 10)
	if !ok {
		return Config{}, fmt.Errorf("%w: %s=%q is not an integer", ErrConfig, EnvMinTradeAmount, raw)
	}
	cfg.MinTradeAmount = amount

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks that the config can drive a batch.
func (c Config) Validate() error {
	if c.MaxTradesPerBatch <= 0 {
		return fmt.Errorf("%w: max trades per batch must be positive, got %d", ErrConfig, c.MaxTradesPerBatch)
	}
	if c.MinTradeAmount == nil || c.MinTradeAmount.Sign() <= 0 {
		return fmt.Errorf("%w: min trade amount must be positive", ErrConfig)
	}
	if c.MakerFeeBps > MaxFeeBps {
		return fmt.Errorf("%w: maker fee %d bps is above %d", ErrConfig, c.MakerFeeBps, MaxFeeBps)
	}
	if c.TakerFeeBps > MaxFeeBps {
		return fmt.Errorf("%w: taker fee %d bps is above %d", ErrConfig, c.TakerFeeBps, MaxFeeBps)
	}
	return nil
}

// EffectiveConfig is the immutable configuration one batch runs under.
// Timestamp is the batch's logical clock; it feeds logging and inspection,
// never the matching arithmetic.
type EffectiveConfig struct {
	Timestamp         uint64
	MinTradeAmount    *big.Int
	MakerFeeBps       uint64
	TakerFeeBps       uint64
	MaxTradesPerBatch int
}

// Fees returns the fee schedule the batch settles under.
func (c EffectiveConfig) Fees() FeeSchedule {
	return FeeSchedule{MakerBps: c.MakerFeeBps, TakerBps: c.TakerFeeBps}
}

// Resolve merges the optional runtime tuple into the build-time defaults.
// A nonzero runtime fee rate replaces the taker rate, a nonzero runtime
// minimum replaces the trade minimum; the maker rate always comes from the
// build-time config. When the tuple is rejected the returned config is the
// plain defaults and the error carries the reason; the batch keeps going.
func (c Config) Resolve(rc *protocol.RuntimeConfig) (EffectiveConfig, error) {
	eff := EffectiveConfig{
		MinTradeAmount:    new(big.Int).Set(c.MinTradeAmount),
		MakerFeeBps:       c.MakerFeeBps,
		TakerFeeBps:       c.TakerFeeBps,
		MaxTradesPerBatch: c.MaxTradesPerBatch,
	}
	if rc == nil {
		return eff, nil
	}

	if rc.FeeBps > MaxFeeBps {
		return eff, fmt.Errorf("%w: feeBps %d is above %d", ErrConfig, rc.FeeBps, MaxFeeBps)
	}
	if rc.MinTradeAmount != nil && rc.MinTradeAmount.Sign() < 0 {
		return eff, fmt.Errorf("%w: minTradeAmount is negative", ErrConfig)
	}

	eff.Timestamp = rc.Timestamp
	if rc.FeeBps != 0 {
		eff.TakerFeeBps = rc.FeeBps
	}
	if rc.MinTradeAmount != nil && rc.MinTradeAmount.Sign() > 0 {
		eff.MinTradeAmount = new(big.Int).Set(rc.MinTradeAmount)
	}
	return eff, nil
}
