package clearing

import (
	"math/big"

	"github.com/ethereum/go-ethereum/common"
)

// InstrumentSummary aggregates one instrument's executed trades. It is a
// read-only view for downstream consumers (logging, inspection, host
// dashboards) and never feeds back into matching.
type InstrumentSummary struct {
	Instrument common.Address `json:"instrument"`
	TradeCount int            `json:"trade_count"`
	Volume     *big.Int       `json:"volume"`   // sum of trade quantities
	Notional   *big.Int       `json:"notional"` // sum of quantity * execution price
	Fees       *big.Int       `json:"fees"`     // sum of total fees
}

// Summarize folds a trade list into per-instrument totals. Summaries come
// back in the order an instrument first appears in the list, which for a
// batch result is partition order.
func Summarize(trades []*Trade) []InstrumentSummary {
	summaries := make([]InstrumentSummary, 0)
	index := make(map[common.Address]int)

	for _, trade := range trades {
		i, ok := index[trade.Instrument]
		if !ok {
			i = len(summaries)
			index[trade.Instrument] = i
			summaries = append(summaries, InstrumentSummary{
				Instrument: trade.Instrument,
				Volume:     new(big.Int),
				Notional:   new(big.Int),
				Fees:       new(big.Int),
			})
		}

		s := &summaries[i]
		s.TradeCount++
		s.Volume.Add(s.Volume, trade.Quantity)
		s.Notional.Add(s.Notional, new(big.Int).Mul(trade.Quantity, trade.ExecutionPrice))
		s.Fees.Add(s.Fees, trade.TotalFee)
	}

	return summaries
}

// Summary returns the per-instrument totals of the batch's emitted trades.
func (r *BatchResult) Summary() []InstrumentSummary {
	return Summarize(r.Trades)
}
