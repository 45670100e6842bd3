package clearing

import (
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"go.uber.org/zap"
)

// InstrumentGroup holds one instrument's orders in first-seen order.
type InstrumentGroup struct {
	Instrument common.Address
	Orders     []*Order
}

// PartitionStats summarizes what the partitioner kept and dropped.
type PartitionStats struct {
	OrdersSeen  int
	DustDropped int
}

// Partition filters dust and groups the surviving orders by instrument.
// Groups come back ordered by the instrument's first occurrence in the
// input, so the order in which they later consume the trade budget is a
// function of the payload alone. Dust is an order whose quantity sits
// below minTrade; it is logged and skipped, never an error.
func Partition(orders []*Order, minTrade *big.Int) ([]InstrumentGroup, PartitionStats) {
	stats := PartitionStats{OrdersSeen: len(orders)}

	groups := make([]InstrumentGroup, 0)
	index := make(map[common.Address]int)

	for _, order := range orders {
		if order.Quantity != nil && order.Quantity.Cmp(minTrade) < 0 {
			stats.DustDropped++
			logger.Debug("dust order dropped",
				zap.Uint64("order_id", order.ID),
				zap.String("instrument", order.Instrument.Hex()),
				zap.Stringer("quantity", order.Quantity),
				zap.Stringer("min_trade", minTrade),
			)
			continue
		}
		if order.Filled == nil {
			order.Filled = new(big.Int)
		}

		i, ok := index[order.Instrument]
		if !ok {
			i = len(groups)
			index[order.Instrument] = i
			groups = append(groups, InstrumentGroup{Instrument: order.Instrument})
		}
		groups[i].Orders = append(groups[i].Orders, order)
	}

	return groups, stats
}
