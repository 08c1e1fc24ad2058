// Package queue implements the pluggable queue-position model that
// decides when a resting order reaches the head of its price level
// and fills. The contract is fixed by spec §4.G; the formula is a
// model choice (spec §9).
package queue

import (
	"math"

	"github.com/exchange/hftbacktest/depth"
	"github.com/exchange/hftbacktest/event"
	"github.com/exchange/hftbacktest/order"
)

// Model is the queue-position collaborator. Implementations are
// chosen once at construction (spec §9, no hot-path virtual dispatch
// required if monomorphized).
type Model interface {
	// NewOrder initializes o.Q given the current depth, when a
	// limit order starts resting.
	NewOrder(o *order.Order, d *depth.MarketDepth)
	// Trade reduces o.Q when a trade print touches the order's
	// price level.
	Trade(row event.Row, o *order.Order, d *depth.MarketDepth)
	// Depth adjusts o.Q when a depth diff changes the size at the
	// order's own tick.
	Depth(row event.Row, o *order.Order, prevQty, newQty float64, d *depth.MarketDepth)
	// IsFilled reports whether o has reached the head of queue and
	// fills, and how much.
	IsFilled(o *order.Order, d *depth.MarketDepth) (filled bool, execQty float64)
	// Forget releases any internal bookkeeping held for orderID once
	// the order has left the exchange ladder.
	Forget(orderID int64)
}

func touchesLevel(side event.Side, orderPriceTick, tradePriceTick int64) bool {
	if side == event.Buy {
		return tradePriceTick <= orderPriceTick
	}
	return tradePriceTick >= orderPriceTick
}

// RiskAverse is the default "risk averse" queue model: q[0] tracks
// the size ahead of the order at its tick, q[1] tracks size that has
// joined behind it. A trade print or a depth decrease at the order's
// tick drains the ahead size first; any excess becomes an executable
// fill once the order has reached the head.
type RiskAverse struct {
	pending map[int64]float64
}

// NewRiskAverse constructs the default queue model.
func NewRiskAverse() *RiskAverse {
	return &RiskAverse{pending: make(map[int64]float64)}
}

func (q *RiskAverse) NewOrder(o *order.Order, d *depth.MarketDepth) {
	o.Q[0] = d.QtyAt(o.Side, o.PriceTick)
	o.Q[1] = 0
}

func (q *RiskAverse) Trade(row event.Row, o *order.Order, d *depth.MarketDepth) {
	// row.Side is the aggressor side; it must be opposite the
	// resting order's side to touch this order's level.
	if row.Side == o.Side {
		return
	}
	if !touchesLevel(o.Side, o.PriceTick, row.PriceTick) {
		return
	}
	q.consume(o, row.Qty)
}

func (q *RiskAverse) Depth(row event.Row, o *order.Order, prevQty, newQty float64, d *depth.MarketDepth) {
	if row.PriceTick != o.PriceTick || row.Side != o.Side {
		return
	}
	if newQty < prevQty {
		q.consume(o, prevQty-newQty)
	} else if newQty > prevQty {
		o.Q[1] += newQty - prevQty
	}
}

// consume drains ahead-of-queue size first; any remaining amount
// becomes a pending executable fill, capped at the order's
// outstanding quantity.
func (q *RiskAverse) consume(o *order.Order, qty float64) {
	if o.Q[0] > 0 {
		drained := qty
		if drained > o.Q[0] {
			drained = o.Q[0]
		}
		o.Q[0] -= drained
		qty -= drained
	}
	if qty <= 0 {
		return
	}
	already := q.pending[o.OrderID]
	room := o.LeavesQty - already
	if room <= 0 {
		return
	}
	if qty > room {
		qty = room
	}
	q.pending[o.OrderID] = already + qty
}

func (q *RiskAverse) IsFilled(o *order.Order, d *depth.MarketDepth) (bool, float64) {
	amt := q.pending[o.OrderID]
	if amt <= 0 {
		return false, 0
	}
	delete(q.pending, o.OrderID)
	return true, amt
}

func (q *RiskAverse) Forget(orderID int64) {
	delete(q.pending, orderID)
}

// LogProb is a second queue-model family: it dampens how quickly
// ahead-of-queue size drains as more size joins behind the order,
// modeling the reduced confidence in strict FIFO ordering once many
// participants have queued up behind a resting order (iceberg /
// hidden-liquidity reshuffling). spec §4.G explicitly leaves the
// formula open; this is offered as a second concrete strategy
// alongside RiskAverse to demonstrate the queue model is genuinely
// pluggable.
type LogProb struct {
	pending map[int64]float64
}

// NewLogProb constructs the log-probability-dampened queue model.
func NewLogProb() *LogProb {
	return &LogProb{pending: make(map[int64]float64)}
}

func (q *LogProb) NewOrder(o *order.Order, d *depth.MarketDepth) {
	o.Q[0] = d.QtyAt(o.Side, o.PriceTick)
	o.Q[1] = 0
}

func (q *LogProb) Trade(row event.Row, o *order.Order, d *depth.MarketDepth) {
	if row.Side == o.Side {
		return
	}
	if !touchesLevel(o.Side, o.PriceTick, row.PriceTick) {
		return
	}
	q.consume(o, row.Qty)
}

func (q *LogProb) Depth(row event.Row, o *order.Order, prevQty, newQty float64, d *depth.MarketDepth) {
	if row.PriceTick != o.PriceTick || row.Side != o.Side {
		return
	}
	if newQty < prevQty {
		q.consume(o, prevQty-newQty)
	} else if newQty > prevQty {
		o.Q[1] += newQty - prevQty
	}
}

func dampen(qty, behind float64) float64 {
	if behind <= 0 {
		return qty
	}
	return qty / (1 + math.Log1p(behind))
}

func (q *LogProb) consume(o *order.Order, qty float64) {
	effective := dampen(qty, o.Q[1])
	if o.Q[0] > 0 {
		drained := effective
		if drained > o.Q[0] {
			drained = o.Q[0]
		}
		o.Q[0] -= drained
		effective -= drained
	}
	if effective <= 0 {
		return
	}
	already := q.pending[o.OrderID]
	room := o.LeavesQty - already
	if room <= 0 {
		return
	}
	if effective > room {
		effective = room
	}
	q.pending[o.OrderID] = already + effective
}

func (q *LogProb) IsFilled(o *order.Order, d *depth.MarketDepth) (bool, float64) {
	amt := q.pending[o.OrderID]
	if amt <= 0 {
		return false, 0
	}
	delete(q.pending, o.OrderID)
	return true, amt
}

func (q *LogProb) Forget(orderID int64) {
	delete(q.pending, orderID)
}
