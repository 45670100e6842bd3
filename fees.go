package clearing

import "math/big"

var bpsDenominator = big.NewInt(MaxFeeBps)

// Fee computes floor(quantity * price * bps / 10000) in pure integer
// arithmetic. All rounding in the engine happens here.
func Fee(quantity, price *big.Int, bps uint64) *big.Int {
	fee := new(big.Int).Mul(quantity, price)
	fee.Mul(fee, new(big.Int).SetUint64(bps))
	return fee.Quo(fee, bpsDenominator)
}

// FeeSchedule carries the maker and taker rates one batch settles under.
type FeeSchedule struct {
	MakerBps uint64
	TakerBps uint64
}

// MakerFee returns the maker side's fee for a fill.
func (s FeeSchedule) MakerFee(quantity, price *big.Int) *big.Int {
	return Fee(quantity, price, s.MakerBps)
}

// TakerFee returns the taker side's fee for a fill.
func (s FeeSchedule) TakerFee(quantity, price *big.Int) *big.Int {
	return Fee(quantity, price, s.TakerBps)
}

// TotalFee returns the combined maker and taker fee for a fill. The two
// sides are floored separately before summing.
func (s FeeSchedule) TotalFee(quantity, price *big.Int) *big.Int {
	total := s.MakerFee(quantity, price)
	return total.Add(total, s.TakerFee(quantity, price))
}
