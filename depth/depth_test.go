package depth

import (
	"math"
	"testing"

	"github.com/exchange/hftbacktest/event"
)

func TestEmptyDepthBestTicks(t *testing.T) {
	d := New(0.01, 1)
	if d.BestBidTick() != InvalidMinTick {
		t.Fatalf("expected InvalidMinTick for empty bid side")
	}
	if d.BestAskTick() != InvalidMaxTick {
		t.Fatalf("expected InvalidMaxTick for empty ask side")
	}
	if !math.IsNaN(d.BestBid()) || !math.IsNaN(d.BestAsk()) {
		t.Fatalf("expected NaN best prices for empty depth")
	}
}

func TestApplyRowDepthEventInsertAndRemove(t *testing.T) {
	d := New(1, 1)
	d.ApplyRow(event.Row{Kind: event.DepthEvent, Side: event.Buy, PriceTick: 100, Qty: 10})
	d.ApplyRow(event.Row{Kind: event.DepthEvent, Side: event.Buy, PriceTick: 101, Qty: 5})
	if d.BestBidTick() != 101 {
		t.Fatalf("expected best bid 101, got %d", d.BestBidTick())
	}
	// Remove the best bid; cache should contract to the next present tick.
	d.ApplyRow(event.Row{Kind: event.DepthEvent, Side: event.Buy, PriceTick: 101, Qty: 0})
	if d.BestBidTick() != 100 {
		t.Fatalf("expected best bid to contract to 100, got %d", d.BestBidTick())
	}
	if d.QtyAt(event.Buy, 101) != 0 {
		t.Fatalf("removed tick must not remain")
	}
}

func TestApplyRowAskSide(t *testing.T) {
	d := New(1, 1)
	d.ApplyRow(event.Row{Kind: event.DepthEvent, Side: event.Sell, PriceTick: 105, Qty: 5})
	d.ApplyRow(event.Row{Kind: event.DepthEvent, Side: event.Sell, PriceTick: 103, Qty: 4})
	if d.BestAskTick() != 103 {
		t.Fatalf("expected best ask 103, got %d", d.BestAskTick())
	}
}

func TestDepthClearEventInclusiveRange(t *testing.T) {
	d := New(1, 1)
	for _, pt := range []int64{98, 99, 100} {
		d.ApplyRow(event.Row{Kind: event.DepthEvent, Side: event.Buy, PriceTick: pt, Qty: 1})
	}
	// clear bid from best (100) down to and including 99
	d.ApplyRow(event.Row{Kind: event.DepthClearEvent, Side: event.Buy, PriceTick: 99})
	if d.QtyAt(event.Buy, 99) != 0 || d.QtyAt(event.Buy, 100) != 0 {
		t.Fatalf("expected ticks 99 and 100 cleared")
	}
	if d.QtyAt(event.Buy, 98) != 1 {
		t.Fatalf("expected tick 98 to survive the clear")
	}
	if d.BestBidTick() != 98 {
		t.Fatalf("expected best bid to become 98, got %d", d.BestBidTick())
	}
}

func TestDepthClearEventZeroClearsEntireSide(t *testing.T) {
	d := New(1, 1)
	d.ApplyRow(event.Row{Kind: event.DepthEvent, Side: event.Sell, PriceTick: 100, Qty: 1})
	d.ApplyRow(event.Row{Kind: event.DepthClearEvent, Side: event.Sell, PriceTick: 0})
	if d.BestAskTick() != InvalidMaxTick {
		t.Fatalf("expected ask side fully cleared")
	}
}

func TestApplySnapshotClearsBothSides(t *testing.T) {
	d := New(1, 1)
	d.ApplyRow(event.Row{Kind: event.DepthEvent, Side: event.Buy, PriceTick: 50, Qty: 1})
	d.ApplyRow(event.Row{Kind: event.DepthEvent, Side: event.Sell, PriceTick: 60, Qty: 1})

	snap := []event.Row{
		{Side: event.Buy, PriceTick: 99, Qty: 3},
		{Side: event.Sell, PriceTick: 101, Qty: 4},
	}
	d.ApplySnapshot(snap)

	if d.QtyAt(event.Buy, 50) != 0 || d.QtyAt(event.Sell, 60) != 0 {
		t.Fatalf("old levels must be cleared by a snapshot")
	}
	if d.BestBidTick() != 99 || d.BestAskTick() != 101 {
		t.Fatalf("expected best ticks from snapshot, got bid=%d ask=%d", d.BestBidTick(), d.BestAskTick())
	}
}

func TestNoZeroQtyEntriesInvariant(t *testing.T) {
	d := New(1, 1)
	d.ApplyRow(event.Row{Kind: event.DepthEvent, Side: event.Buy, PriceTick: 10, Qty: 5})
	d.ApplyRow(event.Row{Kind: event.DepthEvent, Side: event.Buy, PriceTick: 10, Qty: 0})
	if _, ok := d.bid[10]; ok {
		t.Fatalf("zero-qty entry must not exist in the ladder map")
	}
}

func TestWalkVisitsInMatchingPriorityOrder(t *testing.T) {
	d := New(1, 1)
	d.ApplyRow(event.Row{Kind: event.DepthEvent, Side: event.Sell, PriceTick: 103, Qty: 1})
	d.ApplyRow(event.Row{Kind: event.DepthEvent, Side: event.Sell, PriceTick: 101, Qty: 2})
	d.ApplyRow(event.Row{Kind: event.DepthEvent, Side: event.Sell, PriceTick: 102, Qty: 3})

	var seen []int64
	d.Walk(event.Sell, func(priceTick int64, qty float64) bool {
		seen = append(seen, priceTick)
		return false
	})
	want := []int64{101, 102, 103}
	for i, w := range want {
		if seen[i] != w {
			t.Fatalf("expected ascending ask walk order %v, got %v", want, seen)
		}
	}
}

func TestWalkStopsEarly(t *testing.T) {
	d := New(1, 1)
	d.ApplyRow(event.Row{Kind: event.DepthEvent, Side: event.Buy, PriceTick: 100, Qty: 1})
	d.ApplyRow(event.Row{Kind: event.DepthEvent, Side: event.Buy, PriceTick: 99, Qty: 1})

	visited := 0
	d.Walk(event.Buy, func(priceTick int64, qty float64) bool {
		visited++
		return true
	})
	if visited != 1 {
		t.Fatalf("expected Walk to stop after the first tick, visited %d", visited)
	}
}

func TestDecrementQtyRemovesExhaustedTick(t *testing.T) {
	d := New(1, 1)
	d.ApplyRow(event.Row{Kind: event.DepthEvent, Side: event.Sell, PriceTick: 101, Qty: 4})
	d.DecrementQty(event.Sell, 101, 4)
	if d.BestAskTick() != InvalidMaxTick {
		t.Fatalf("expected tick fully consumed and removed")
	}
	d.ApplyRow(event.Row{Kind: event.DepthEvent, Side: event.Sell, PriceTick: 101, Qty: 4})
	d.DecrementQty(event.Sell, 101, 1)
	if d.QtyAt(event.Sell, 101) != 3 {
		t.Fatalf("expected remaining qty 3, got %v", d.QtyAt(event.Sell, 101))
	}
}

func TestMid(t *testing.T) {
	d := New(1, 1)
	d.ApplyRow(event.Row{Kind: event.DepthEvent, Side: event.Buy, PriceTick: 100, Qty: 1})
	d.ApplyRow(event.Row{Kind: event.DepthEvent, Side: event.Sell, PriceTick: 102, Qty: 1})
	if d.Mid() != 101 {
		t.Fatalf("expected mid 101, got %v", d.Mid())
	}
}
