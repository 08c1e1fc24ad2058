// Package hbt implements the top-level Backtest scheduler: the
// strategy-facing public API (spec §4.K / §6) that drives a paired
// LocalProcessor/ExchangeProcessor to a target simulated time.
package hbt

import (
	"github.com/exchange/hftbacktest/event"
	"github.com/exchange/hftbacktest/internal/hfterrors"
	"github.com/exchange/hftbacktest/order"
	"github.com/exchange/hftbacktest/proc"
)

// Backtest is the single-threaded, deterministic scheduler. It is not
// safe for concurrent use from multiple goroutines -- the entire
// design exists to avoid synchronization overhead on the simulation
// hot path (spec §5).
type Backtest struct {
	currentTime int64

	lp *proc.LocalProcessor
	ep *proc.ExchangeProcessor
}

// New wires a Backtest around an already-constructed local/exchange
// processor pair. Building the processors (their shared OrderBus
// pair, depths, latency and queue models, and data feeds) is the
// composition root's job, not this package's -- spec §9's "two-way
// bus with mutual reference" note resolves the cycle by having
// neither processor own the other.
func New(lp *proc.LocalProcessor, ep *proc.ExchangeProcessor) *Backtest {
	return &Backtest{lp: lp, ep: ep}
}

// Elapse advances simulated time by durationNs, dispatching every due
// order and data event along the way. Returns false once no processor
// has any further event (end of data).
func (bt *Backtest) Elapse(durationNs int64) bool {
	target := bt.currentTime + durationNs
	for {
		nt := proc.Earliest(bt.lp.NextTimestamp(), bt.ep.NextTimestamp())
		if nt <= 0 {
			return false
		}
		if nt > target {
			bt.currentTime = target
			return true
		}
		bt.currentTime = nt
		if bt.lp.NextTimestamp() == nt {
			bt.lp.Process(nt)
		}
		if bt.ep.NextTimestamp() == nt {
			bt.ep.Process(nt)
		}
	}
}

// WaitOrderResponse elapses like Elapse, but also returns early (true)
// as soon as orderID's local record changes -- the response reached
// the local ladder and was applied. Returns false if the order is
// unknown, timeoutNs elapses first, or data is exhausted.
func (bt *Backtest) WaitOrderResponse(orderID int64, timeoutNs int64) bool {
	before, ok := bt.lp.Order(orderID)
	if !ok {
		return false
	}
	req, status, execQty := before.Req, before.Status, before.ExecQty

	target := bt.currentTime + timeoutNs
	for {
		nt := proc.Earliest(bt.lp.NextTimestamp(), bt.ep.NextTimestamp())
		if nt <= 0 {
			return false
		}
		if nt > target {
			bt.currentTime = target
			return false
		}
		bt.currentTime = nt
		if bt.lp.NextTimestamp() == nt {
			bt.lp.Process(nt)
		}
		if bt.ep.NextTimestamp() == nt {
			bt.ep.Process(nt)
		}

		cur, ok := bt.lp.Order(orderID)
		if !ok {
			return true
		}
		if cur.Req != req || cur.Status != status || cur.ExecQty != execQty {
			return true
		}
	}
}

func (bt *Backtest) submit(orderID int64, price, qty float64, side event.Side, tif order.TimeInForce, orderType order.Type) error {
	if qty <= 0 {
		return hfterrors.Newf(hfterrors.CodeInvalidOrderParams, "qty must be positive, got %v", qty)
	}
	if orderType == order.Limit && price <= 0 {
		return hfterrors.Newf(hfterrors.CodeInvalidOrderParams, "price must be positive for a limit order, got %v", price)
	}

	tickSize := bt.lp.Depth.TickSize
	priceTick := event.PriceToTick(price, tickSize)
	o := order.New(orderID, priceTick, tickSize, qty, side, tif, orderType)
	return bt.lp.SubmitOrder(bt.currentTime, o)
}

// SubmitBuyOrder submits a buy order; may fail with OrderIdDuplicate
// or InvalidOrderParams.
func (bt *Backtest) SubmitBuyOrder(orderID int64, price, qty float64, tif order.TimeInForce, orderType order.Type) error {
	return bt.submit(orderID, price, qty, event.Buy, tif, orderType)
}

// SubmitSellOrder submits a sell order; may fail with OrderIdDuplicate
// or InvalidOrderParams.
func (bt *Backtest) SubmitSellOrder(orderID int64, price, qty float64, tif order.TimeInForce, orderType order.Type) error {
	return bt.submit(orderID, price, qty, event.Sell, tif, orderType)
}

// Cancel requests cancellation of orderID. Returns false if the order
// is unknown locally. A cancel is a request, not a guarantee (spec
// §5). A cancel on a known order that is not cancellable (not NEW, or
// a request already in flight) sends nothing and returns true.
func (bt *Backtest) Cancel(orderID int64) bool {
	return bt.lp.CancelOrder(bt.currentTime, orderID) == nil
}

// ClearInactiveOrders purges terminal orders from the local ladder.
func (bt *Backtest) ClearInactiveOrders() {
	bt.lp.ClearInactiveOrders()
}

// BestBid is the local view's best bid price, or NaN if empty.
func (bt *Backtest) BestBid() float64 { return bt.lp.Depth.BestBid() }

// BestAsk is the local view's best ask price, or NaN if empty.
func (bt *Backtest) BestAsk() float64 { return bt.lp.Depth.BestAsk() }

// Mid is the local view's mid price, or NaN unless both sides are populated.
func (bt *Backtest) Mid() float64 { return bt.lp.Depth.Mid() }

// Position is the current simulated position.
func (bt *Backtest) Position() float64 { return bt.lp.State.Position }

// Balance is the current simulated balance.
func (bt *Backtest) Balance() float64 { return bt.lp.State.Balance }

// Equity is the mark-to-market account value at the given mid price.
func (bt *Backtest) Equity(mid float64) float64 { return bt.lp.State.Equity(mid) }

// Orders returns a read-only view of the local order ladder.
func (bt *Backtest) Orders() map[int64]*order.Order { return bt.lp.Orders() }

// CurrentTimestamp is the scheduler's simulated clock.
func (bt *Backtest) CurrentTimestamp() int64 { return bt.currentTime }

// TickSize is the instrument's smallest price increment.
func (bt *Backtest) TickSize() float64 { return bt.lp.Depth.TickSize }

// LotSize is the instrument's smallest quantity increment.
func (bt *Backtest) LotSize() float64 { return bt.lp.Depth.LotSize }

// NumOrders is the size of the local order ladder.
func (bt *Backtest) NumOrders() int { return len(bt.lp.Orders()) }

// LastTradePrice is the most recently observed trade print's price,
// or NaN if no trade has been observed yet.
func (bt *Backtest) LastTradePrice() float64 {
	tick := bt.ep.LastTradeTick
	if tick == 0 {
		return nanPrice
	}
	return event.TickToPrice(tick, bt.lp.Depth.TickSize)
}
