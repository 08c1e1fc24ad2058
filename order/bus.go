package order

// item is one (order, receive_ts) pair held by a Bus.
type item struct {
	order *Order
	ts    int64
}

// Bus is the latency-buffered channel an Order crosses between the
// local and exchange processors. Both ends are co-owned: one side
// appends, the other pops the front; the scheduler's serialized
// dispatch means there is never concurrent access (spec §5).
type Bus struct {
	items  []item
	counts map[int64]int64 // order_id -> count currently in bus

	// FrontmostTimestamp is the minimum receive_ts among held items,
	// or 0 when empty/unset.
	FrontmostTimestamp int64
}

// NewBus constructs an empty order bus.
func NewBus() *Bus {
	return &Bus{counts: make(map[int64]int64)}
}

// Append pushes (o, ts) onto the bus. If the bus is non-empty and ts
// is earlier than the trailing timestamp, ts is clamped up to it --
// this models monotone network serialization (spec §4.C).
func (b *Bus) Append(o *Order, ts int64) {
	if n := len(b.items); n > 0 {
		last := b.items[n-1].ts
		if ts < last {
			ts = last
		}
	}
	b.items = append(b.items, item{order: o, ts: ts})
	b.counts[o.OrderID]++

	if b.FrontmostTimestamp <= 0 {
		b.FrontmostTimestamp = ts
	} else if ts < b.FrontmostTimestamp {
		b.FrontmostTimestamp = ts
	}
}

// Len returns the number of items currently held.
func (b *Bus) Len() int {
	return len(b.items)
}

// At returns the order and receive timestamp at index i.
func (b *Bus) At(i int) (*Order, int64) {
	it := b.items[i]
	return it.order, it.ts
}

// Get returns the receive timestamp of the first held item with the
// given order ID.
func (b *Bus) Get(orderID int64) (int64, bool) {
	for _, it := range b.items {
		if it.order.OrderID == orderID {
			return it.ts, true
		}
	}
	return 0, false
}

// DelItem removes the item at index i. The caller is responsible for
// updating FrontmostTimestamp afterward (spec §4.C: "set it to the
// head's ts after a front-pop batch").
func (b *Bus) DelItem(i int) {
	o := b.items[i].order
	b.items = append(b.items[:i], b.items[i+1:]...)
	b.counts[o.OrderID]--
	if b.counts[o.OrderID] <= 0 {
		delete(b.counts, o.OrderID)
	}
}

// Contains reports whether orderID has at least one item in flight.
func (b *Bus) Contains(orderID int64) bool {
	return b.counts[orderID] >= 1
}

// Reset clears the bus back to empty.
func (b *Bus) Reset() {
	b.items = b.items[:0]
	for k := range b.counts {
		delete(b.counts, k)
	}
	b.FrontmostTimestamp = 0
}
