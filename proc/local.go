package proc

import (
	"github.com/exchange/hftbacktest/depth"
	"github.com/exchange/hftbacktest/internal/hfterrors"
	"github.com/exchange/hftbacktest/order"
	"github.com/exchange/hftbacktest/state"

	"github.com/exchange/hftbacktest/latency"
)

// LocalProcessor is the trader-facing view: it owns the local depth
// replica, the local order ladder, the account state, and both order-
// bus endpoints it is responsible for -- it appends submit/cancel
// requests to toExchange and pops due responses from fromExchange.
type LocalProcessor struct {
	Depth *depth.MarketDepth
	State *state.State

	orders map[int64]*order.Order

	toExchange   *order.Bus
	fromExchange *order.Bus

	latency latency.Model

	feed DataFeed
}

// NewLocalProcessor constructs a local processor.
func NewLocalProcessor(d *depth.MarketDepth, st *state.State, toExchange, fromExchange *order.Bus, lat latency.Model, feed DataFeed) *LocalProcessor {
	return &LocalProcessor{
		Depth:        d,
		State:        st,
		orders:       make(map[int64]*order.Order),
		toExchange:   toExchange,
		fromExchange: fromExchange,
		latency:      lat,
		feed:         feed,
	}
}

func (lp *LocalProcessor) nextDataTimestamp() int64 {
	row, ok := lp.feed.Peek()
	if !ok {
		return 0
	}
	return row.LocalTs
}

// NextTimestamp returns the earliest of the next local data row and
// the inbound bus's frontmost receive timestamp, or 0 if both are
// exhausted.
func (lp *LocalProcessor) NextTimestamp() int64 {
	return earliest(lp.nextDataTimestamp(), lp.fromExchange.FrontmostTimestamp)
}

// Process advances by exactly one step at currentTs: a batch of due
// inbound responses, or the next local data row. Ties favor the order
// response (spec §5).
func (lp *LocalProcessor) Process(currentTs int64) {
	busTs := lp.fromExchange.FrontmostTimestamp
	dataTs := lp.nextDataTimestamp()
	if busTs > 0 && (dataTs <= 0 || busTs <= dataTs) {
		lp.processInbound()
		return
	}
	lp.processDataRow()
}

func (lp *LocalProcessor) processInbound() {
	next := int64(0)
	for lp.fromExchange.Len() > 0 {
		resp, ts := lp.fromExchange.At(0)
		if ts > lp.fromExchange.FrontmostTimestamp {
			next = ts
			break
		}
		lp.fromExchange.DelItem(0)
		lp.reconcile(resp, ts)
	}
	lp.fromExchange.FrontmostTimestamp = next
}

// reconcile folds an exchange response into the local ladder, copying
// server-decided fields and applying any fill to the account state
// exactly once (spec §4.H).
func (lp *LocalProcessor) reconcile(resp *order.Order, ts int64) {
	local, ok := lp.orders[resp.OrderID]
	if !ok {
		return
	}

	local.Status = resp.Status
	local.ExchTs = resp.ExchTs
	local.LocalTs = ts
	local.ExecPriceTick = resp.ExecPriceTick
	local.ExecQty = resp.ExecQty
	local.LeavesQty = resp.LeavesQty
	local.Maker = resp.Maker
	local.Req = order.ReqNone

	isFill := (resp.Status == order.StatusFilled || resp.Status == order.StatusPartiallyFilled) && resp.ExecQty > 0
	if !isFill {
		return
	}

	fill := local.Clone()
	fill.ExecPriceTick = resp.ExecPriceTick
	fill.ExecQty = resp.ExecQty
	fill.Maker = resp.Maker
	lp.State.ApplyFill(fill)
	local.SeenExecQty += resp.ExecQty
}

func (lp *LocalProcessor) processDataRow() {
	row, ok := lp.feed.Peek()
	if !ok {
		return
	}
	lp.feed.Advance()
	lp.latency.Observe(row.LocalTs - row.ExchTs)
	lp.Depth.ApplyRow(row)
}

// SubmitOrder enters o into the local ladder and places it on the
// outbound bus with recv_ts = currentTs + entry latency. Submitting a
// non-terminal duplicate order id fails with OrderIdDuplicate.
func (lp *LocalProcessor) SubmitOrder(currentTs int64, o *order.Order) error {
	if existing, ok := lp.orders[o.OrderID]; ok && !existing.Status.Terminal() {
		return hfterrors.ErrOrderIdDuplicate
	}
	lp.orders[o.OrderID] = o
	lp.toExchange.Append(o.Clone(), currentTs+lp.latency.EntryLatency(currentTs, o))
	return nil
}

// CancelOrder marks the local order req=CANCELED and places a cancel
// request copy on the outbound bus. A cancel is a request, not a
// guarantee: it may race a fill at the exchange (spec §5). If the
// order is not cancellable, nothing is sent and nil is returned.
func (lp *LocalProcessor) CancelOrder(currentTs int64, orderID int64) error {
	local, ok := lp.orders[orderID]
	if !ok {
		return hfterrors.ErrOrderNotFound
	}
	if !local.Cancellable() {
		return nil
	}
	local.Req = order.ReqCanceled
	lp.toExchange.Append(local.Clone(), currentTs+lp.latency.EntryLatency(currentTs, local))
	return nil
}

// ClearInactiveOrders purges terminal orders from the local ladder.
func (lp *LocalProcessor) ClearInactiveOrders() {
	for id, o := range lp.orders {
		if o.Status.Terminal() {
			delete(lp.orders, id)
		}
	}
}

// Orders returns the live local ladder. Callers must treat it as a
// read-only view (spec §6 strategy API).
func (lp *LocalProcessor) Orders() map[int64]*order.Order {
	return lp.orders
}

// Order returns the local order with the given id, if tracked.
func (lp *LocalProcessor) Order(orderID int64) (*order.Order, bool) {
	o, ok := lp.orders[orderID]
	return o, ok
}
