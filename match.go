package clearing

import (
	"math/big"

	"go.uber.org/zap"
)

// matchInstrument clears one instrument group under the batch's effective
// config. Trades come out in execution order. The walk stops when either
// side empties or the best prices no longer cross; the global trade cap is
// applied afterwards by the caller.
func matchInstrument(group InstrumentGroup, cfg EffectiveConfig) ([]*Trade, error) {
	bids, asks, err := buildBooks(group)
	if err != nil {
		return nil, err
	}

	fees := cfg.Fees()
	trades := make([]*Trade, 0)

	for bids.orderCount() > 0 && asks.orderCount() > 0 {
		bestBid := bids.peek()
		bestAsk := asks.peek()

		if bestBid.LimitPrice.Cmp(bestAsk.LimitPrice) < 0 {
			break
		}

		tradable := minRemaining(bestBid, bestAsk)

		if tradable.Cmp(cfg.MinTradeAmount) < 0 {
			// A remainder below the minimum can never clear it again, so
			// the capping order leaves the book.
			if bestBid.Remaining().Cmp(tradable) == 0 {
				bids.remove(bestBid)
			}
			if bestAsk.Remaining().Cmp(tradable) == 0 {
				asks.remove(bestAsk)
			}
			continue
		}

		trade := executeTrade(bestBid, bestAsk, tradable, fees)
		trades = append(trades, trade)

		logger.Debug("trade executed",
			zap.Uint64("buy_order_id", trade.BuyOrderID),
			zap.Uint64("sell_order_id", trade.SellOrderID),
			zap.String("instrument", trade.Instrument.Hex()),
			zap.Stringer("price", trade.ExecutionPrice),
			zap.Stringer("quantity", trade.Quantity),
			zap.Stringer("total_fee", trade.TotalFee),
		)

		if bestBid.Remaining().Sign() == 0 {
			bids.remove(bestBid)
		}
		if bestAsk.Remaining().Sign() == 0 {
			asks.remove(bestAsk)
		}
	}

	return trades, nil
}

// buildBooks validates an instrument group and loads it into the two book
// sides. Order ids must be unique across the group and amounts must be
// non-negative integers.
func buildBooks(group InstrumentGroup) (bids, asks *bookSide, err error) {
	bids = newBidSide()
	asks = newAskSide()
	seen := make(map[uint64]struct{}, len(group.Orders))

	for _, order := range group.Orders {
		if order.Quantity == nil || order.LimitPrice == nil ||
			order.Quantity.Sign() < 0 || order.LimitPrice.Sign() < 0 {
			return nil, nil, &MatchingError{
				Instrument: group.Instrument,
				OrderID:    order.ID,
				Err:        ErrInvalidOrder,
			}
		}
		if _, ok := seen[order.ID]; ok {
			return nil, nil, &MatchingError{
				Instrument: group.Instrument,
				OrderID:    order.ID,
				Err:        ErrDuplicateOrderID,
			}
		}
		seen[order.ID] = struct{}{}

		if order.IsBuy() {
			bids.insert(order)
		} else {
			asks.insert(order)
		}
	}

	return bids, asks, nil
}

// executeTrade fills both orders with qty. The maker is the order placed
// first (the smaller id) and its limit price is the execution price.
func executeTrade(bid, ask *Order, qty *big.Int, fees FeeSchedule) *Trade {
	maker := bid
	if ask.ID < bid.ID {
		maker = ask
	}
	price := maker.LimitPrice

	bid.Fill(qty)
	ask.Fill(qty)

	return &Trade{
		BuyOrderID:     bid.ID,
		SellOrderID:    ask.ID,
		Buyer:          bid.Trader,
		Seller:         ask.Trader,
		Instrument:     bid.Instrument,
		ExecutionPrice: new(big.Int).Set(price),
		Quantity:       new(big.Int).Set(qty),
		TotalFee:       fees.TotalFee(qty, price),
	}
}

func minRemaining(bid, ask *Order) *big.Int {
	br := bid.Remaining()
	ar := ask.Remaining()
	if br.Cmp(ar) <= 0 {
		return br
	}
	return ar
}
