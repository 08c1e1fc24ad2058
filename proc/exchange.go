// Package proc implements the two halves of the simulation: the
// ExchangeProcessor (matching engine view) and the LocalProcessor
// (trader view), each owning its own depth replica, order ladder, and
// one end of the two order buses between them (spec §4.H, §4.I).
package proc

import (
	"github.com/exchange/hftbacktest/depth"
	"github.com/exchange/hftbacktest/event"
	"github.com/exchange/hftbacktest/latency"
	"github.com/exchange/hftbacktest/order"
	"github.com/exchange/hftbacktest/queue"
)

// ExchangeProcessor simulates matching against the replayed market
// depth. It owns the exchange-side depth replica, the ladder of
// orders currently resting on it, and both order-bus endpoints it is
// responsible for: it appends responses to toLocal and pops due
// requests from fromLocal.
type ExchangeProcessor struct {
	Depth *depth.MarketDepth

	orders map[int64]*order.Order

	toLocal   *order.Bus
	fromLocal *order.Bus

	latency latency.Model
	queue   queue.Model

	feed DataFeed

	// LastTradeTick is the price tick of the most recently observed
	// trade print, or 0 if none has been observed yet.
	LastTradeTick int64
}

// NewExchangeProcessor constructs an exchange processor. toLocal and
// fromLocal must be the same bus pair held by the paired
// LocalProcessor, with endpoints swapped.
func NewExchangeProcessor(d *depth.MarketDepth, toLocal, fromLocal *order.Bus, lat latency.Model, q queue.Model, feed DataFeed) *ExchangeProcessor {
	return &ExchangeProcessor{
		Depth:     d,
		orders:    make(map[int64]*order.Order),
		toLocal:   toLocal,
		fromLocal: fromLocal,
		latency:   lat,
		queue:     q,
		feed:      feed,
	}
}

func (ep *ExchangeProcessor) nextDataTimestamp() int64 {
	row, ok := ep.feed.Peek()
	if !ok {
		return 0
	}
	return row.ExchTs
}

// NextTimestamp returns the earliest of the next exchange data row
// and the inbound bus's frontmost receive timestamp, or 0 if both are
// exhausted.
func (ep *ExchangeProcessor) NextTimestamp() int64 {
	return earliest(ep.nextDataTimestamp(), ep.fromLocal.FrontmostTimestamp)
}

// Process advances by exactly one step at currentTs: a batch of due
// inbound orders, or the next data row. Ties favor the order (spec §5).
func (ep *ExchangeProcessor) Process(currentTs int64) {
	busTs := ep.fromLocal.FrontmostTimestamp
	dataTs := ep.nextDataTimestamp()
	if busTs > 0 && (dataTs <= 0 || busTs <= dataTs) {
		ep.processInbound(currentTs)
		return
	}
	ep.processDataRow(currentTs)
}

func (ep *ExchangeProcessor) processInbound(currentTs int64) {
	next := int64(0)
	for ep.fromLocal.Len() > 0 {
		o, ts := ep.fromLocal.At(0)
		if ts > ep.fromLocal.FrontmostTimestamp {
			next = ts
			break
		}
		ep.fromLocal.DelItem(0)
		ep.handleInboundOrder(o, ts)
	}
	ep.fromLocal.FrontmostTimestamp = next
}

func (ep *ExchangeProcessor) handleInboundOrder(o *order.Order, currentTs int64) {
	switch o.Req {
	case order.ReqNew:
		ep.handleNewOrder(o, currentTs)
	case order.ReqCanceled:
		ep.handleCancel(o, currentTs)
	}
}

func (ep *ExchangeProcessor) pushResponse(o *order.Order, currentTs int64) {
	resp := o.Clone()
	ep.toLocal.Append(resp, currentTs+ep.latency.ResponseLatency(currentTs, o))
}

func (ep *ExchangeProcessor) handleCancel(o *order.Order, currentTs int64) {
	resting, ok := ep.orders[o.OrderID]
	if ok && resting.Cancellable() {
		delete(ep.orders, o.OrderID)
		ep.queue.Forget(o.OrderID)
		resting.Req = order.ReqNone
		resting.Status = order.StatusCanceled
		ep.pushResponse(resting, currentTs)
		return
	}
	o.Req = order.ReqNone
	if !ok {
		o.Status = order.StatusRejected
	}
	ep.pushResponse(o, currentTs)
}

func (ep *ExchangeProcessor) handleNewOrder(o *order.Order, currentTs int64) {
	o.Req = order.ReqNone

	if o.LeavesQty <= 0 || (o.OrderType != order.Market && o.PriceTick <= 0) {
		o.Status = order.StatusRejected
		ep.pushResponse(o, currentTs)
		return
	}

	crosses := ep.crosses(o)

	if o.TimeInForce == order.GTX {
		if crosses {
			o.Status = order.StatusExpired
		} else {
			ep.restOrder(o)
		}
		ep.pushResponse(o, currentTs)
		return
	}

	if o.OrderType == order.Market || crosses {
		if o.TimeInForce == order.FOK && !ep.fillFeasible(o) {
			o.Status = order.StatusExpired
			ep.pushResponse(o, currentTs)
			return
		}
		ep.walk(o, currentTs)
		if o.LeavesQty <= 0 {
			// the final fill was already pushed by walk.
			return
		}
		switch {
		case o.TimeInForce == order.GTC && o.OrderType != order.Market:
			ep.restOrder(o)
		default: // IOC, FOK exhausted its feasible amount, or a market order hit an empty book.
			o.Status = order.StatusExpired
		}
		ep.pushResponse(o, currentTs)
		return
	}

	ep.restOrder(o)
	ep.pushResponse(o, currentTs)
}

func (ep *ExchangeProcessor) restOrder(o *order.Order) {
	ep.orders[o.OrderID] = o
	ep.queue.NewOrder(o, ep.Depth)
	o.Status = order.StatusNew
}

// crosses reports whether a limit order at o's price would take
// liquidity immediately. The sentinel best ticks on an empty side
// naturally make this false without a separate emptiness check.
func (ep *ExchangeProcessor) crosses(o *order.Order) bool {
	if o.Side == event.Buy {
		return o.PriceTick >= ep.Depth.BestAskTick()
	}
	return o.PriceTick <= ep.Depth.BestBidTick()
}

func (ep *ExchangeProcessor) oppositeSide(o *order.Order) event.Side {
	if o.Side == event.Buy {
		return event.Sell
	}
	return event.Buy
}

// beyondLimit reports whether tick is past a limit order's price, and
// thus cannot be walked (market orders never hit this).
func (ep *ExchangeProcessor) beyondLimit(o *order.Order, tick int64) bool {
	if o.OrderType == order.Market {
		return false
	}
	if o.Side == event.Buy {
		return tick > o.PriceTick
	}
	return tick < o.PriceTick
}

// fillFeasible reports whether the opposite side currently holds
// enough depth to fully satisfy o, for a FOK all-or-nothing check
// before any liquidity is consumed.
func (ep *ExchangeProcessor) fillFeasible(o *order.Order) bool {
	var available float64
	ep.Depth.Walk(ep.oppositeSide(o), func(tick int64, qty float64) bool {
		if ep.beyondLimit(o, tick) {
			return true
		}
		available += qty
		return available >= o.LeavesQty
	})
	return available >= o.LeavesQty
}

// walk consumes opposite-side depth liquidity tick by tick until o's
// leaves_qty reaches zero or the reachable book is exhausted, pushing
// one fill response per level touched (spec §4.I / §8 S3).
func (ep *ExchangeProcessor) walk(o *order.Order, currentTs int64) {
	opposite := ep.oppositeSide(o)
	ep.Depth.Walk(opposite, func(tick int64, qty float64) bool {
		if ep.beyondLimit(o, tick) {
			return true
		}
		fillQty := qty
		if fillQty > o.LeavesQty {
			fillQty = o.LeavesQty
		}
		o.LeavesQty -= fillQty
		o.ExecPriceTick = tick
		o.ExecQty = fillQty
		o.Maker = false
		if o.LeavesQty <= 0 {
			o.Status = order.StatusFilled
		} else {
			o.Status = order.StatusPartiallyFilled
		}
		ep.Depth.DecrementQty(opposite, tick, fillQty)
		ep.pushResponse(o, currentTs)
		return o.LeavesQty <= 0
	})
}

func (ep *ExchangeProcessor) processDataRow(currentTs int64) {
	row, ok := ep.feed.Peek()
	if !ok {
		return
	}
	ep.feed.Advance()
	ep.latency.Observe(row.LocalTs - row.ExchTs)

	switch row.Kind {
	case event.TradeEvent:
		ep.handleTrade(row, currentTs)
	case event.DepthEvent:
		ep.handleDepthEvent(row, currentTs)
	default:
		ep.Depth.ApplyRow(row)
	}
}

// handleTrade notifies every resting order of a trade print; trades
// never move the best-price cache directly (spec §4.I).
func (ep *ExchangeProcessor) handleTrade(row event.Row, currentTs int64) {
	ep.LastTradeTick = row.PriceTick
	for id, o := range ep.orders {
		ep.queue.Trade(row, o, ep.Depth)
		filled, execQty := ep.queue.IsFilled(o, ep.Depth)
		if !filled {
			continue
		}
		o.ExecPriceTick = o.PriceTick
		o.ExecQty = execQty
		o.Maker = true
		o.LeavesQty -= execQty
		if o.LeavesQty <= 0 {
			o.Status = order.StatusFilled
			delete(ep.orders, id)
			ep.queue.Forget(id)
		} else {
			o.Status = order.StatusPartiallyFilled
		}
		ep.pushResponse(o, currentTs)
	}
}

// handleDepthEvent applies a single-tick depth update and notifies
// any resting order at that exact tick (snapshots/clears skip this
// notification -- they are rare SOD events and queue position is a
// model choice, not a correctness property, per spec §9).
func (ep *ExchangeProcessor) handleDepthEvent(row event.Row, currentTs int64) {
	prevQty := ep.Depth.QtyAt(row.Side, row.PriceTick)
	ep.Depth.ApplyRow(row)
	newQty := ep.Depth.QtyAt(row.Side, row.PriceTick)
	for _, o := range ep.orders {
		if o.PriceTick != row.PriceTick || o.Side != row.Side {
			continue
		}
		ep.queue.Depth(row, o, prevQty, newQty, ep.Depth)
	}
}
