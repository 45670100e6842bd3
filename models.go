package clearing

import (
	"github.com/0x5487/clearing-engine/protocol"
)

type Side = protocol.Side

const (
	Buy  Side = protocol.SideBuy
	Sell Side = protocol.SideSell
)

// The wire-level order, trade and config shapes are owned by the protocol
// package; the engine works on them directly so that nothing is lost or
// reshaped between decoding and matching.
type (
	Order         = protocol.Order
	Trade         = protocol.Trade
	RuntimeConfig = protocol.RuntimeConfig
	Batch         = protocol.Batch
)
