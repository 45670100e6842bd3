package clearing

import (
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/0x5487/clearing-engine/protocol"
)

// Mode selects how the engine treats per-instrument failures.
type Mode int8

const (
	// ModeStrict aborts the whole batch when any instrument fails.
	ModeStrict Mode = 1
	// ModeBestEffort isolates a failing instrument and keeps the others.
	ModeBestEffort Mode = 2
)

func (m Mode) String() string {
	switch m {
	case ModeStrict:
		return "strict"
	case ModeBestEffort:
		return "best_effort"
	default:
		return "unknown"
	}
}

// BatchStats counts what happened to a batch on its way through the
// pipeline.
type BatchStats struct {
	OrdersSeen      int  `json:"orders_seen"`
	DustDropped     int  `json:"dust_dropped"`
	Instruments     int  `json:"instruments"`
	TradesEmitted   int  `json:"trades_emitted"`
	TradesTruncated int  `json:"trades_truncated"`
	BudgetExhausted bool `json:"budget_exhausted"`
	ConfigFallback  bool `json:"config_fallback"`
}

// BatchResult is the outcome of one executed batch.
type BatchResult struct {
	Trades    []*Trade
	Schema    protocol.SchemaVersion
	Effective EffectiveConfig
	Stats     BatchStats

	// InstrumentErrors holds the failures isolated in best-effort mode,
	// in partition order. Always empty in strict mode.
	InstrumentErrors []*MatchingError
}

// Engine runs order batches through partitioning, matching and fee
// accounting. It is immutable after construction and reusable across
// sequential batches; one call processes one batch to completion with no
// goroutines, clocks or I/O on the way.
type Engine struct {
	config    Config
	codec     protocol.Codec
	mode      Mode
	publisher PublishTrader
}

// EngineOption configures an Engine.
type EngineOption func(*Engine)

// WithCodec replaces the default ABI codec.
func WithCodec(codec protocol.Codec) EngineOption {
	return func(e *Engine) {
		e.codec = codec
	}
}

// WithMode selects the failure handling mode. The default is ModeStrict.
func WithMode(mode Mode) EngineOption {
	return func(e *Engine) {
		e.mode = mode
	}
}

// WithPublisher wires a trade publisher that observes every executed batch.
func WithPublisher(p PublishTrader) EngineOption {
	return func(e *Engine) {
		e.publisher = p
	}
}

// NewEngine creates an engine with the given build-time config.
func NewEngine(config Config, opts ...EngineOption) (*Engine, error) {
	engine := &Engine{
		config:    config,
		codec:     protocol.ABICodec{},
		mode:      ModeStrict,
		publisher: NewDiscardPublishTrader(),
	}
	for _, opt := range opts {
		opt(engine)
	}

	if err := engine.config.Validate(); err != nil {
		return nil, err
	}
	if engine.codec == nil {
		return nil, fmt.Errorf("%w: codec is nil", ErrInvalidParam)
	}
	if engine.mode != ModeStrict && engine.mode != ModeBestEffort {
		return nil, fmt.Errorf("%w: mode %d", ErrInvalidParam, engine.mode)
	}
	if engine.publisher == nil {
		return nil, fmt.Errorf("%w: publisher is nil", ErrInvalidParam)
	}

	return engine, nil
}

// Config returns the engine's build-time config.
func (e *Engine) Config() Config {
	return e.config
}

// Mode returns the engine's failure handling mode.
func (e *Engine) Mode() Mode {
	return e.mode
}

// Process decodes a payload, executes the batch and encodes the resulting
// trades. The output bytes are a deterministic function of the input bytes:
// the same payload always yields the same encoding, trade for trade.
func (e *Engine) Process(payload []byte) ([]byte, *BatchResult, error) {
	batch, err := e.codec.DecodeBatch(payload)
	if err != nil {
		return nil, nil, err
	}

	result, err := e.Execute(batch)
	if err != nil {
		return nil, nil, err
	}

	out, err := e.codec.EncodeTrades(result.Trades)
	if err != nil {
		return nil, nil, err
	}
	return out, result, nil
}

// Execute runs one decoded batch through the pipeline: config resolution,
// dust filtering and instrument grouping, per-instrument matching under the
// global trade budget.
func (e *Engine) Execute(batch *Batch) (*BatchResult, error) {
	effective, cfgErr := e.config.Resolve(batch.Config)
	if cfgErr != nil {
		logger.Warn("runtime config rejected, using defaults", zap.Error(cfgErr))
	}

	groups, pstats := Partition(batch.Orders(), effective.MinTradeAmount)

	result := &BatchResult{
		Trades:    make([]*Trade, 0),
		Schema:    batch.Schema,
		Effective: effective,
		Stats: BatchStats{
			OrdersSeen:     pstats.OrdersSeen,
			DustDropped:    pstats.DustDropped,
			Instruments:    len(groups),
			ConfigFallback: cfgErr != nil,
		},
	}

	budget := NewTradeBudget(effective.MaxTradesPerBatch)

	for _, group := range groups {
		trades, err := matchInstrument(group, effective)
		if err != nil {
			var mErr *MatchingError
			if !errors.As(err, &mErr) {
				mErr = &MatchingError{Instrument: group.Instrument, Err: err}
			}
			if e.mode == ModeStrict {
				return nil, fmt.Errorf("%w: %w", ErrBatchAborted, mErr)
			}
			logger.Warn("instrument isolated",
				zap.String("instrument", group.Instrument.Hex()),
				zap.Error(mErr),
			)
			result.InstrumentErrors = append(result.InstrumentErrors, mErr)
			continue
		}

		result.Trades = append(result.Trades, budget.Apply(trades)...)
	}

	result.Stats.TradesEmitted = len(result.Trades)
	result.Stats.TradesTruncated = budget.Truncated()
	result.Stats.BudgetExhausted = budget.Exhausted()

	e.publisher.PublishTrades(result.Trades...)

	logger.Info("batch executed",
		zap.String("schema", result.Schema.String()),
		zap.Uint64("timestamp", effective.Timestamp),
		zap.Int("orders_seen", result.Stats.OrdersSeen),
		zap.Int("dust_dropped", result.Stats.DustDropped),
		zap.Int("instruments", result.Stats.Instruments),
		zap.Int("trades", result.Stats.TradesEmitted),
		zap.Int("trades_truncated", result.Stats.TradesTruncated),
		zap.Int("instrument_errors", len(result.InstrumentErrors)),
	)

	return result, nil
}
