package latency

import "testing"

func TestConstantLatency(t *testing.T) {
	m := NewConstant(100, 200)
	if m.EntryLatency(0, nil) != 100 {
		t.Fatalf("expected entry 100")
	}
	if m.ResponseLatency(0, nil) != 200 {
		t.Fatalf("expected response 200")
	}
	m.Reset() // no-op, must not panic
}

func TestFeedLatencyFloorsBeforeAnyObservation(t *testing.T) {
	f := NewFeed(2.0, 50, 60)
	if f.EntryLatency(0, nil) != 50 {
		t.Fatalf("expected floor 50 before any observation")
	}
	if f.ResponseLatency(0, nil) != 60 {
		t.Fatalf("expected floor 60 before any observation")
	}
}

func TestFeedLatencyScalesObservedLatency(t *testing.T) {
	f := NewFeed(2.0, 0, 0)
	f.Observe(100)
	if f.EntryLatency(0, nil) != 200 {
		t.Fatalf("expected scaled entry 200, got %d", f.EntryLatency(0, nil))
	}
	f.Reset()
	if f.EntryLatency(0, nil) != 0 {
		t.Fatalf("expected reset to clear observed latency")
	}
}
