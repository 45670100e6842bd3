package clearing

const (
	// EngineVersion is the current version of the clearing engine
	EngineVersion = "v1.0.0"
)

// Build-time configuration defaults. Each value can be overridden through
// its CLEARING_* environment variable, and partly again per batch through
// the payload's runtime config tuple.
const (
	DefaultMaxTradesPerBatch = 100
	DefaultMinTradeAmount    = 1
	DefaultMakerFeeBps       = 10
	DefaultTakerFeeBps       = 20
)

// MaxFeeBps is the fee rate ceiling. One basis point is 1/10000 of the
// trade value.
const MaxFeeBps = 10000

// Environment variable names for the build-time defaults.
const (
	EnvMaxTradesPerBatch = "CLEARING_MAX_TRADES_PER_BATCH"
	EnvMinTradeAmount    = "CLEARING_MIN_TRADE_AMOUNT"
	EnvMakerFeeBps       = "CLEARING_MAKER_FEE_BPS"
	EnvTakerFeeBps       = "CLEARING_TAKER_FEE_BPS"
)
