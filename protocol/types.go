package protocol

import (
	"math/big"

	"github.com/ethereum/go-ethereum/common"
)

// Side represents the order side (Buy/Sell).
type Side int8

const (
	SideBuy  Side = 1
	SideSell Side = 2
)

func (s Side) String() string {
	switch s {
	case SideBuy:
		return "buy"
	case SideSell:
		return "sell"
	default:
		return "unknown"
	}
}

// SchemaVersion identifies the payload layout on the wire.
type SchemaVersion uint8

const (
	// SchemaV1 carries two order arrays and nothing else.
	SchemaV1 SchemaVersion = 1
	// SchemaV2 carries two order arrays plus a static runtime config tuple.
	SchemaV2 SchemaVersion = 2
)

func (v SchemaVersion) String() string {
	switch v {
	case SchemaV1:
		return "v1"
	case SchemaV2:
		return "v2"
	default:
		return "unknown"
	}
}

// Order is a single limit order submitted in a batch.
// Quantity and LimitPrice are uint256 values on the wire and must never be
// negative.
type Order struct {
	ID         uint64         `json:"id"`
	Trader     common.Address `json:"trader"`
	Instrument common.Address `json:"instrument"`
	Quantity   *big.Int       `json:"quantity"`
	LimitPrice *big.Int       `json:"limit_price"`
	Side       Side           `json:"side"`

	// Filled tracks the quantity already allocated to trades while a batch
	// executes. It is engine working state and never goes over the wire.
	Filled *big.Int `json:"-"`
}

// Remaining returns the unallocated quantity of the order.
func (o *Order) Remaining() *big.Int {
	if o.Filled == nil {
		return new(big.Int).Set(o.Quantity)
	}
	return new(big.Int).Sub(o.Quantity, o.Filled)
}

// Fill allocates qty of the order's quantity to a trade.
func (o *Order) Fill(qty *big.Int) {
	if o.Filled == nil {
		o.Filled = new(big.Int)
	}
	o.Filled.Add(o.Filled, qty)
}

// IsBuy reports whether the order is on the buy side.
func (o *Order) IsBuy() bool {
	return o.Side == SideBuy
}

// RuntimeConfig is the optional per-batch configuration tuple carried by
// SchemaV2 payloads. Fee rates are basis points (parts per 10000).
type RuntimeConfig struct {
	Timestamp      uint64   `json:"timestamp"`
	FeeBps         uint64   `json:"fee_bps"`
	MinTradeAmount *big.Int `json:"min_trade_amount"`
}

// Trade is one execution between a buy and a sell order of the same
// instrument. ExecutionPrice is always the limit price of the maker side.
type Trade struct {
	BuyOrderID     uint64         `json:"buy_order_id"`
	SellOrderID    uint64         `json:"sell_order_id"`
	Buyer          common.Address `json:"buyer"`
	Seller         common.Address `json:"seller"`
	Instrument     common.Address `json:"instrument"`
	ExecutionPrice *big.Int       `json:"execution_price"`
	Quantity       *big.Int       `json:"quantity"`
	TotalFee       *big.Int       `json:"total_fee"`
}

// Batch is a decoded order batch.
type Batch struct {
	Buys   []*Order
	Sells  []*Order
	Config *RuntimeConfig // nil for SchemaV1 payloads
	Schema SchemaVersion
}

// Orders returns the batch's orders as one list, buys first, preserving
// submission order inside each side.
func (b *Batch) Orders() []*Order {
	orders := make([]*Order, 0, len(b.Buys)+len(b.Sells))
	orders = append(orders, b.Buys...)
	orders = append(orders, b.Sells...)
	return orders
}
