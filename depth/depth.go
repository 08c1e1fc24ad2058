// Package depth implements the per-side L2 market-depth replica:
// price-tick -> size maps with cached best bid/ask, updated from
// snapshot/diff/clear events.
package depth

import (
	"math"
	"sort"

	"github.com/exchange/hftbacktest/event"
)

// Sentinel best-tick values for an empty side, per spec §4.B.
const (
	InvalidMinTick = math.MinInt64
	InvalidMaxTick = math.MaxInt64
)

// MarketDepth is one side-pair of price-tick -> qty ladders plus
// cached best-bid/best-ask ticks.
type MarketDepth struct {
	TickSize float64
	LotSize  float64

	bid map[int64]float64
	ask map[int64]float64

	bestBidTick int64
	bestAskTick int64
}

// New constructs an empty market depth.
func New(tickSize, lotSize float64) *MarketDepth {
	return &MarketDepth{
		TickSize:    tickSize,
		LotSize:     lotSize,
		bid:         make(map[int64]float64),
		ask:         make(map[int64]float64),
		bestBidTick: InvalidMinTick,
		bestAskTick: InvalidMaxTick,
	}
}

// BestBidTick returns the highest bid tick with non-zero size, or
// InvalidMinTick if the bid side is empty.
func (d *MarketDepth) BestBidTick() int64 { return d.bestBidTick }

// BestAskTick returns the lowest ask tick with non-zero size, or
// InvalidMaxTick if the ask side is empty.
func (d *MarketDepth) BestAskTick() int64 { return d.bestAskTick }

// BestBid is the floating-point best bid price, or NaN if empty.
func (d *MarketDepth) BestBid() float64 {
	if d.bestBidTick == InvalidMinTick {
		return math.NaN()
	}
	return event.TickToPrice(d.bestBidTick, d.TickSize)
}

// BestAsk is the floating-point best ask price, or NaN if empty.
func (d *MarketDepth) BestAsk() float64 {
	if d.bestAskTick == InvalidMaxTick {
		return math.NaN()
	}
	return event.TickToPrice(d.bestAskTick, d.TickSize)
}

// Mid is the floating-point mid price, or NaN unless both sides are
// populated.
func (d *MarketDepth) Mid() float64 {
	bb, ba := d.BestBid(), d.BestAsk()
	if math.IsNaN(bb) || math.IsNaN(ba) {
		return math.NaN()
	}
	return (bb + ba) / 2
}

// QtyAt returns the resting size at priceTick on the given side.
func (d *MarketDepth) QtyAt(side event.Side, priceTick int64) float64 {
	if side == event.Buy {
		return d.bid[priceTick]
	}
	return d.ask[priceTick]
}

func (d *MarketDepth) ladder(side event.Side) map[int64]float64 {
	if side == event.Buy {
		return d.bid
	}
	return d.ask
}

// setQty sets (or removes, if qty<=0) the size at priceTick on side,
// maintaining the best-tick cache and the "no zero-qty entries"
// invariant (spec §4.B / §3).
func (d *MarketDepth) setQty(side event.Side, priceTick int64, qty float64) {
	ladder := d.ladder(side)
	if qty <= 0 {
		if _, ok := ladder[priceTick]; !ok {
			return
		}
		delete(ladder, priceTick)
		d.onRemove(side, priceTick)
		return
	}

	_, existed := ladder[priceTick]
	ladder[priceTick] = qty
	if !existed {
		d.onInsert(side, priceTick)
	}
}

// onInsert expands the best-tick cache outward when an insert crosses
// the currently cached best.
func (d *MarketDepth) onInsert(side event.Side, priceTick int64) {
	if side == event.Buy {
		if d.bestBidTick == InvalidMinTick || priceTick > d.bestBidTick {
			d.bestBidTick = priceTick
		}
	} else {
		if d.bestAskTick == InvalidMaxTick || priceTick < d.bestAskTick {
			d.bestAskTick = priceTick
		}
	}
}

// onRemove contracts the best-tick cache inward, rescanning the
// remaining ladder for the new extremum, only when the removed tick
// was the cached best.
func (d *MarketDepth) onRemove(side event.Side, priceTick int64) {
	if side == event.Buy {
		if priceTick != d.bestBidTick {
			return
		}
		d.bestBidTick = maxKey(d.bid)
	} else {
		if priceTick != d.bestAskTick {
			return
		}
		d.bestAskTick = minKey(d.ask)
	}
}

func maxKey(m map[int64]float64) int64 {
	best := int64(InvalidMinTick)
	for k := range m {
		if k > best {
			best = k
		}
	}
	return best
}

func minKey(m map[int64]float64) int64 {
	best := int64(InvalidMaxTick)
	for k := range m {
		if k < best {
			best = k
		}
	}
	return best
}

// ApplyRow dispatches a single event row by kind (spec §4.B).
func (d *MarketDepth) ApplyRow(row event.Row) {
	switch row.Kind {
	case event.DepthEvent, event.DepthSnapshotEvent:
		d.setQty(row.Side, row.PriceTick, row.Qty)
	case event.DepthClearEvent:
		d.clearSide(row.Side, row.PriceTick)
	}
}

// clearSide removes all ticks on side from the current best toward
// upToTick inclusive; upToTick==0 clears the entire side (spec
// §4.B DEPTH_CLEAR_EVENT semantics).
func (d *MarketDepth) clearSide(side event.Side, upToTick int64) {
	ladder := d.ladder(side)
	if upToTick == 0 {
		for k := range ladder {
			delete(ladder, k)
		}
		if side == event.Buy {
			d.bestBidTick = InvalidMinTick
		} else {
			d.bestAskTick = InvalidMaxTick
		}
		return
	}
	if side == event.Buy {
		// Clear from the best bid (the top of the ladder) down
		// through upToTick; anything below upToTick survives.
		for k := range ladder {
			if k >= upToTick {
				delete(ladder, k)
			}
		}
		d.bestBidTick = maxKey(ladder)
		if len(ladder) == 0 {
			d.bestBidTick = InvalidMinTick
		}
	} else {
		// Clear from the best ask (the bottom of the ladder) up
		// through upToTick; anything above upToTick survives.
		for k := range ladder {
			if k <= upToTick {
				delete(ladder, k)
			}
		}
		d.bestAskTick = minKey(ladder)
		if len(ladder) == 0 {
			d.bestAskTick = InvalidMaxTick
		}
	}
}

// ApplySnapshot clears both sides and applies snapshot rows as point
// sets (spec §4.B apply_snapshot).
func (d *MarketDepth) ApplySnapshot(rows []event.Row) {
	d.ClearDepth(0, 0)
	for _, row := range rows {
		d.setQty(row.Side, row.PriceTick, row.Qty)
	}
}

// Walk visits the resting side ticks in matching priority order --
// descending from best bid for side=Buy, ascending from best ask for
// side=Sell -- calling fn(priceTick, qty) at each non-empty tick until
// fn returns true (stop) or the side is exhausted. Used by the
// exchange processor to consume liquidity for a crossing/market order.
func (d *MarketDepth) Walk(side event.Side, fn func(priceTick int64, qty float64) bool) {
	ladder := d.ladder(side)
	keys := make([]int64, 0, len(ladder))
	for k := range ladder {
		keys = append(keys, k)
	}
	if side == event.Buy {
		sort.Slice(keys, func(i, j int) bool { return keys[i] > keys[j] })
	} else {
		sort.Slice(keys, func(i, j int) bool { return keys[i] < keys[j] })
	}
	for _, k := range keys {
		if fn(k, ladder[k]) {
			return
		}
	}
}

// DecrementQty reduces the resting size at priceTick on side by qty,
// removing the tick if it would reach zero or below (maintains the
// "no zero-qty entries" invariant). Used when a taker order consumes
// liquidity directly from the depth replica.
func (d *MarketDepth) DecrementQty(side event.Side, priceTick int64, qty float64) {
	remaining := d.QtyAt(side, priceTick) - qty
	d.setQty(side, priceTick, remaining)
}

// ClearDepth is the bootstrap helper used by a processor reset: it
// clears the bid side up to bidUpToTick and the ask side up to
// askUpToTick, each following the same "0 means entire side"
// convention as a DEPTH_CLEAR_EVENT.
func (d *MarketDepth) ClearDepth(bidUpToTick, askUpToTick int64) {
	d.clearSide(event.Buy, bidUpToTick)
	d.clearSide(event.Sell, askUpToTick)
}
