package event

import "testing"

func TestPriceTickRoundTrip(t *testing.T) {
	tickSize := 0.01
	price := 101.23
	tick := PriceToTick(price, tickSize)
	if tick != 10123 {
		t.Fatalf("expected tick 10123, got %d", tick)
	}
	back := TickToPrice(tick, tickSize)
	if back != price {
		t.Fatalf("expected price %v, got %v", price, back)
	}
}

func TestMatrixRoundTrip(t *testing.T) {
	tickSize := 0.5
	row := Row{
		Kind:      TradeEvent,
		ExchTs:    1000,
		LocalTs:   1500,
		Side:      Sell,
		PriceTick: 200,
		Qty:       3.5,
	}
	cols := row.ToMatrixRow(tickSize)
	back := RowFromMatrixRow(cols, tickSize)
	if back != row {
		t.Fatalf("round trip mismatch: got %+v, want %+v", back, row)
	}
}

func TestKindString(t *testing.T) {
	cases := map[Kind]string{
		DepthEvent:         "DEPTH_EVENT",
		DepthSnapshotEvent: "DEPTH_SNAPSHOT_EVENT",
		DepthClearEvent:    "DEPTH_CLEAR_EVENT",
		TradeEvent:         "TRADE_EVENT",
		Kind(99):           "UNKNOWN_EVENT",
	}
	for k, want := range cases {
		if got := k.String(); got != want {
			t.Errorf("Kind(%d).String() = %q, want %q", k, got, want)
		}
	}
}

func TestSideString(t *testing.T) {
	if Buy.String() != "BUY" {
		t.Errorf("expected BUY, got %s", Buy.String())
	}
	if Sell.String() != "SELL" {
		t.Errorf("expected SELL, got %s", Sell.String())
	}
}
