package queue

import (
	"testing"

	"github.com/exchange/hftbacktest/depth"
	"github.com/exchange/hftbacktest/event"
	"github.com/exchange/hftbacktest/order"
)

// TestScenarioS1RestingMakerFill mirrors spec §8 S1: a resting buy
// order at an empty price level fills fully once a same-size trade
// print touches its level.
func TestScenarioS1RestingMakerFill(t *testing.T) {
	d := depth.New(1, 1)
	d.ApplyRow(event.Row{Kind: event.DepthEvent, Side: event.Buy, PriceTick: 100, Qty: 10})
	d.ApplyRow(event.Row{Kind: event.DepthEvent, Side: event.Sell, PriceTick: 101, Qty: 10})

	o := order.New(1, 99, 1, 5, event.Buy, order.GTC, order.Limit)
	q := NewRiskAverse()
	q.NewOrder(o, d)
	if o.Q[0] != 0 {
		t.Fatalf("expected ahead size 0 at an empty tick, got %v", o.Q[0])
	}

	q.Trade(event.Row{Kind: event.TradeEvent, Side: event.Sell, PriceTick: 99, Qty: 5}, o, d)

	filled, execQty := q.IsFilled(o, d)
	if !filled || execQty != 5 {
		t.Fatalf("expected filled with execQty=5, got filled=%v execQty=%v", filled, execQty)
	}
}

func TestRiskAverseAheadDrainsBeforeFill(t *testing.T) {
	d := depth.New(1, 1)
	d.ApplyRow(event.Row{Kind: event.DepthEvent, Side: event.Buy, PriceTick: 100, Qty: 20})

	o := order.New(1, 100, 1, 5, event.Buy, order.GTC, order.Limit)
	q := NewRiskAverse()
	q.NewOrder(o, d)
	if o.Q[0] != 20 {
		t.Fatalf("expected ahead 20, got %v", o.Q[0])
	}

	// A trade of 10 only drains the ahead queue; no fill yet.
	q.Trade(event.Row{Kind: event.TradeEvent, Side: event.Sell, PriceTick: 100, Qty: 10}, o, d)
	if filled, _ := q.IsFilled(o, d); filled {
		t.Fatalf("expected no fill while ahead size remains")
	}
	if o.Q[0] != 10 {
		t.Fatalf("expected ahead reduced to 10, got %v", o.Q[0])
	}

	// A further trade of 15 drains the remaining 10 ahead and fills
	// the order's 5 leaves qty.
	q.Trade(event.Row{Kind: event.TradeEvent, Side: event.Sell, PriceTick: 100, Qty: 15}, o, d)
	filled, execQty := q.IsFilled(o, d)
	if !filled || execQty != 5 {
		t.Fatalf("expected filled with execQty=5, got filled=%v execQty=%v", filled, execQty)
	}
}

func TestTradeIgnoresOppositeLevelsForBuy(t *testing.T) {
	d := depth.New(1, 1)
	o := order.New(1, 100, 1, 5, event.Buy, order.GTC, order.Limit)
	q := NewRiskAverse()
	q.NewOrder(o, d)

	// Trade above our buy level never touches it.
	q.Trade(event.Row{Kind: event.TradeEvent, Side: event.Sell, PriceTick: 101, Qty: 100}, o, d)
	if filled, _ := q.IsFilled(o, d); filled {
		t.Fatalf("trade above a resting buy's level must not fill it")
	}
}

func TestTradeSameSideAsRestingOrderIgnored(t *testing.T) {
	d := depth.New(1, 1)
	o := order.New(1, 100, 1, 5, event.Buy, order.GTC, order.Limit)
	q := NewRiskAverse()
	q.NewOrder(o, d)

	// A buy-side aggressor print can never touch a resting buy order.
	q.Trade(event.Row{Kind: event.TradeEvent, Side: event.Buy, PriceTick: 100, Qty: 100}, o, d)
	if filled, _ := q.IsFilled(o, d); filled {
		t.Fatalf("same-side trade print must not drain a resting order's queue")
	}
}

func TestDepthDecrementDrainsAhead(t *testing.T) {
	d := depth.New(1, 1)
	d.ApplyRow(event.Row{Kind: event.DepthEvent, Side: event.Sell, PriceTick: 100, Qty: 20})

	o := order.New(1, 100, 1, 5, event.Sell, order.GTC, order.Limit)
	q := NewRiskAverse()
	q.NewOrder(o, d)

	q.Depth(event.Row{Kind: event.DepthEvent, Side: event.Sell, PriceTick: 100}, o, 20, 3, d)
	if o.Q[0] != 3 {
		t.Fatalf("expected ahead reduced to 3, got %v", o.Q[0])
	}
}

func TestForgetClearsPendingState(t *testing.T) {
	d := depth.New(1, 1)
	o := order.New(1, 100, 1, 5, event.Buy, order.GTC, order.Limit)
	q := NewRiskAverse()
	q.NewOrder(o, d)
	q.Trade(event.Row{Kind: event.TradeEvent, Side: event.Sell, PriceTick: 100, Qty: 5}, o, d)
	q.Forget(o.OrderID)
	if filled, _ := q.IsFilled(o, d); filled {
		t.Fatalf("expected forgotten order to report no fill")
	}
}

func TestLogProbDampensWithBehindSize(t *testing.T) {
	d := depth.New(1, 1)
	o := order.New(1, 100, 1, 5, event.Buy, order.GTC, order.Limit)
	q := NewLogProb()
	q.NewOrder(o, d)
	o.Q[1] = 50 // large behind size dampens the drain rate

	q.Trade(event.Row{Kind: event.TradeEvent, Side: event.Sell, PriceTick: 100, Qty: 10}, o, d)
	if filled, _ := q.IsFilled(o, d); filled {
		t.Fatalf("a dampened drain of a zero-ahead order should still register the trade as ahead consumption, not an immediate fill beyond leaves")
	}
}
