package rollup

import (
	"fmt"
	"strings"

	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/rs/xid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	clearing "github.com/0x5487/clearing-engine"
	"github.com/0x5487/clearing-engine/protocol"
)

// Notice is the success envelope of an advance request: the ABI-encoded
// trade list of one batch.
type Notice struct {
	Payload []byte
}

// Hex returns the 0x-prefixed payload for the rollup transport.
func (n *Notice) Hex() string {
	return hexutil.Encode(n.Payload)
}

// Report is the failure envelope of an advance request. It carries a
// human-readable message and never partial trades.
type Report struct {
	Message string
}

// Adapter drives the engine from rollup-style requests. Advance requests
// carry a hex payload and come back as a notice or a report; inspect
// requests return the engine status without touching any state.
type Adapter struct {
	engine  *clearing.Engine
	notices NoticeSink
	reports ReportSink
	logger  *zap.Logger
}

// AdapterOption configures an Adapter.
type AdapterOption func(*Adapter)

// WithNoticeSink wires the sink that receives success envelopes.
func WithNoticeSink(sink NoticeSink) AdapterOption {
	return func(a *Adapter) {
		a.notices = sink
	}
}

// WithReportSink wires the sink that receives failure envelopes.
func WithReportSink(sink ReportSink) AdapterOption {
	return func(a *Adapter) {
		a.reports = sink
	}
}

// WithLogger sets the adapter's logger. Requests log under a fresh
// correlation id each.
func WithLogger(l *zap.Logger) AdapterOption {
	return func(a *Adapter) {
		a.logger = l
	}
}

// NewAdapter creates an adapter around an engine. Sinks default to
// DiscardSink and the logger to a nop logger.
func NewAdapter(engine *clearing.Engine, opts ...AdapterOption) (*Adapter, error) {
	if engine == nil {
		return nil, fmt.Errorf("%w: engine is nil", clearing.ErrInvalidParam)
	}

	adapter := &Adapter{
		engine:  engine,
		notices: NewDiscardSink(),
		reports: NewDiscardSink(),
		logger:  zap.NewNop(),
	}
	for _, opt := range opts {
		opt(adapter)
	}

	if adapter.notices == nil || adapter.reports == nil {
		return nil, fmt.Errorf("%w: sink is nil", clearing.ErrInvalidParam)
	}
	if adapter.logger == nil {
		adapter.logger = zap.NewNop()
	}

	return adapter, nil
}

// Handle routes one host envelope to the matching operation and wraps the
// outcome. Unknown request types come back as a report.
func (a *Adapter) Handle(req *Request) *Response {
	switch req.Type {
	case RequestAdvance:
		notice, err := a.Advance(req.Data.Payload)
		if err != nil {
			return &Response{Type: ResponseReport, Message: err.Error()}
		}
		return &Response{Type: ResponseNotice, Payload: notice.Hex()}
	case RequestInspect:
		return &Response{Type: ResponseStatus, Status: a.Inspect()}
	}
	return &Response{Type: ResponseReport, Message: fmt.Sprintf("unknown request type %q", req.Type)}
}

// Advance executes one batch request. The payload is hex encoded, with or
// without the 0x prefix. On success the notice goes to the notice sink and
// back to the caller; any failure produces a report instead and the
// returned error explains it.
func (a *Adapter) Advance(payload string) (*Notice, error) {
	log := a.logger.With(zap.String("request_id", xid.New().String()))

	data, err := decodePayloadHex(payload)
	if err != nil {
		return nil, a.reject(log, err)
	}

	encoded, result, err := a.engine.Process(data)
	if err != nil {
		return nil, a.reject(log, err)
	}

	notice := &Notice{Payload: encoded}
	if err := a.notices.SendNotice(notice); err != nil {
		log.Error("notice sink failed", zap.Error(err))
		return nil, err
	}

	for _, s := range result.Summary() {
		log.Debug("instrument cleared",
			zap.String("instrument", s.Instrument.Hex()),
			zap.Int("trades", s.TradeCount),
			zap.Stringer("volume", s.Volume),
			zap.Stringer("notional", s.Notional),
			zap.Stringer("fees", s.Fees),
		)
	}

	log.Info("advance request cleared",
		zap.String("schema", result.Schema.String()),
		zap.Int("orders_seen", result.Stats.OrdersSeen),
		zap.Int("trades", result.Stats.TradesEmitted),
		zap.Int("instrument_errors", len(result.InstrumentErrors)),
	)
	return notice, nil
}

// Status is the read-only view served to inspect requests.
type Status struct {
	EngineVersion     string `json:"engine_version"`
	Mode              string `json:"mode"`
	MaxTradesPerBatch int    `json:"max_trades_per_batch"`
	MinTradeAmount    string `json:"min_trade_amount"`
	MakerFeeBps       uint64 `json:"maker_fee_bps"`
	MakerFeeRate      string `json:"maker_fee_rate"`
	TakerFeeBps       uint64 `json:"taker_fee_bps"`
	TakerFeeRate      string `json:"taker_fee_rate"`
}

// Inspect reports the engine's build-time configuration and version.
func (a *Adapter) Inspect() *Status {
	cfg := a.engine.Config()
	return &Status{
		EngineVersion:     clearing.EngineVersion,
		Mode:              a.engine.Mode().String(),
		MaxTradesPerBatch: cfg.MaxTradesPerBatch,
		MinTradeAmount:    cfg.MinTradeAmount.String(),
		MakerFeeBps:       cfg.MakerFeeBps,
		MakerFeeRate:      feeRatePercent(cfg.MakerFeeBps),
		TakerFeeBps:       cfg.TakerFeeBps,
		TakerFeeRate:      feeRatePercent(cfg.TakerFeeBps),
	}
}

// reject converts a batch failure into a report on the report sink.
func (a *Adapter) reject(log *zap.Logger, cause error) error {
	report := &Report{Message: cause.Error()}
	if err := a.reports.SendReport(report); err != nil {
		log.Error("report sink failed", zap.Error(err))
	}
	log.Warn("advance request rejected", zap.Error(cause))
	return cause
}

func decodePayloadHex(payload string) ([]byte, error) {
	payload = strings.TrimSpace(payload)
	if !strings.HasPrefix(payload, "0x") {
		payload = "0x" + payload
	}
	data, err := hexutil.Decode(payload)
	if err != nil {
		return nil, fmt.Errorf("%w: payload is not hex: %v", protocol.ErrDecode, err)
	}
	return data, nil
}

// feeRatePercent renders a basis point rate as a display percentage,
// e.g. 25 bps -> "0.25%".
func feeRatePercent(bps uint64) string {
	return decimal.New(int64(bps), -2).String() + "%"
}
