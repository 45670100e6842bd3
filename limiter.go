package clearing

// TradeBudget enforces the global trade cap of one batch. Instrument groups
// consume it in partition order; each group keeps at most the remaining
// budget and later groups may keep nothing. The cutoff is hard, there is no
// fairness across instruments.
type TradeBudget struct {
	remaining int
	truncated int
}

// NewTradeBudget returns a budget of n trades.
func NewTradeBudget(n int) *TradeBudget {
	return &TradeBudget{remaining: n}
}

// Apply truncates one group's trades to the remaining budget and consumes
// it. The kept prefix preserves execution order.
func (b *TradeBudget) Apply(trades []*Trade) []*Trade {
	if len(trades) <= b.remaining {
		b.remaining -= len(trades)
		return trades
	}

	kept := trades[:b.remaining]
	b.truncated += len(trades) - b.remaining
	b.remaining = 0
	return kept
}

// Remaining returns the number of unconsumed slots.
func (b *TradeBudget) Remaining() int {
	return b.remaining
}

// Truncated returns the number of trades cut off so far.
func (b *TradeBudget) Truncated() int {
	return b.truncated
}

// Exhausted reports whether the budget has run out.
func (b *TradeBudget) Exhausted() bool {
	return b.remaining <= 0
}
