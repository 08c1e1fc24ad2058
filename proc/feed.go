package proc

import "github.com/exchange/hftbacktest/event"

// DataFeed is a processor's one-row lookahead view of its ingested
// event column (spec §4.J / §6): local_ts for the local processor,
// exch_ts for the exchange processor. The reader package supplies
// concrete implementations.
type DataFeed interface {
	// Peek returns the next unconsumed row without consuming it, and
	// false once the feed is exhausted.
	Peek() (event.Row, bool)
	// Advance consumes the row last returned by Peek.
	Advance()
}

// Earliest returns the smaller of a and b, treating any value <= 0 as
// "no event" (spec §4.J next_timestamp semantics); 0 if both are
// absent. Exported so the top-level scheduler can apply the same rule
// across both processors.
func Earliest(a, b int64) int64 {
	return earliest(a, b)
}

func earliest(a, b int64) int64 {
	switch {
	case a > 0 && b > 0:
		if a < b {
			return a
		}
		return b
	case a > 0:
		return a
	case b > 0:
		return b
	default:
		return 0
	}
}
