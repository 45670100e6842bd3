package clearing

import (
	"math/big"

	"github.com/huandu/skiplist"
)

// bookKey sorts book entries by price first and arrival second. Order ids
// are assigned in submission order, so the id doubles as the time priority.
type bookKey struct {
	price *big.Int
	id    uint64
}

// bookSide keeps one side's orders in price-time priority for the duration
// of a batch. The skip list iterates bids from the highest price down and
// asks from the lowest price up, ties broken by the smaller order id.
type bookSide struct {
	side   Side
	list   *skiplist.SkipList
	orders map[uint64]*skiplist.Element
}

// newBidSide creates the buy side of a book (highest price first).
func newBidSide() *bookSide {
	return &bookSide{
		side: Buy,
		list: skiplist.New(skiplist.GreaterThanFunc(func(lhs, rhs any) int {
			k1, _ := lhs.(bookKey)
			k2, _ := rhs.(bookKey)

			if c := k1.price.Cmp(k2.price); c != 0 {
				return -c
			}
			return compareArrival(k1.id, k2.id)
		})),
		orders: make(map[uint64]*skiplist.Element),
	}
}

// newAskSide creates the sell side of a book (lowest price first).
func newAskSide() *bookSide {
	return &bookSide{
		side: Sell,
		list: skiplist.New(skiplist.GreaterThanFunc(func(lhs, rhs any) int {
			k1, _ := lhs.(bookKey)
			k2, _ := rhs.(bookKey)

			if c := k1.price.Cmp(k2.price); c != 0 {
				return c
			}
			return compareArrival(k1.id, k2.id)
		})),
		orders: make(map[uint64]*skiplist.Element),
	}
}

func compareArrival(id1, id2 uint64) int {
	switch {
	case id1 < id2:
		return -1
	case id1 > id2:
		return 1
	}
	return 0
}

// insert adds an order to the side. The caller guarantees id uniqueness.
func (b *bookSide) insert(order *Order) {
	el := b.list.Set(bookKey{price: order.LimitPrice, id: order.ID}, order)
	b.orders[order.ID] = el
}

// peek returns the best resting order without removing it.
func (b *bookSide) peek() *Order {
	el := b.list.Front()
	if el == nil {
		return nil
	}

	order, _ := el.Value.(*Order)
	return order
}

// pop removes and returns the best resting order.
func (b *bookSide) pop() *Order {
	order := b.peek()
	if order != nil {
		b.remove(order)
	}
	return order
}

// remove deletes an order from the side.
func (b *bookSide) remove(order *Order) {
	el, ok := b.orders[order.ID]
	if !ok {
		return
	}
	b.list.RemoveElement(el)
	delete(b.orders, order.ID)
}

// orderCount returns the number of resting orders on the side.
func (b *bookSide) orderCount() int {
	return b.list.Len()
}
