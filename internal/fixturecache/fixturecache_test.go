package fixturecache

import (
	"context"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"

	"github.com/exchange/hftbacktest/event"
)

func newTestRedis(t *testing.T) (*miniredis.Miniredis, *redis.Client) {
	t.Helper()
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("start miniredis: %v", err)
	}
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	return mr, rdb
}

func TestGetMissesOnUnknownKey(t *testing.T) {
	mr, rdb := newTestRedis(t)
	defer mr.Close()
	defer rdb.Close()

	c := New(rdb, time.Minute)
	_, found, err := c.Get(context.Background(), "nope")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if found {
		t.Fatal("expected cache miss on unknown key")
	}
}

func TestPutThenGetRoundTrips(t *testing.T) {
	mr, rdb := newTestRedis(t)
	defer mr.Close()
	defer rdb.Close()

	c := New(rdb, time.Minute)
	rows := []event.Row{
		{Kind: event.DepthEvent, ExchTs: 1, LocalTs: 2, Side: event.Buy, PriceTick: 100, Qty: 1.5},
		{Kind: event.TradeEvent, ExchTs: 3, LocalTs: 4, Side: event.Sell, PriceTick: 101, Qty: 0.5},
	}

	if err := c.Put(context.Background(), "fixture-a", rows); err != nil {
		t.Fatalf("Put failed: %v", err)
	}

	got, found, err := c.Get(context.Background(), "fixture-a")
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if !found {
		t.Fatal("expected cache hit after Put")
	}
	if len(got) != len(rows) || got[0].PriceTick != rows[0].PriceTick || got[1].Kind != rows[1].Kind {
		t.Fatalf("expected round-tripped rows to match, got %v", got)
	}
}
