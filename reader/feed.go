package reader

import "github.com/exchange/hftbacktest/event"

// Feed adapts a chunked Reader into proc.DataFeed's one-row lookahead,
// pulling and releasing chunks transparently as the cursor crosses
// chunk boundaries.
type Feed struct {
	r     Reader
	chunk []event.Row
	idx   int
	done  bool
}

// NewFeed wraps r for one-row-at-a-time consumption.
func NewFeed(r Reader) *Feed {
	return &Feed{r: r}
}

// Peek returns the next unconsumed row without consuming it.
func (f *Feed) Peek() (event.Row, bool) {
	for {
		if f.done {
			return event.Row{}, false
		}
		if f.idx < len(f.chunk) {
			return f.chunk[f.idx], true
		}
		if f.chunk != nil {
			f.r.Release(f.chunk)
		}
		next, err := f.r.Next()
		if err != nil || len(next) == 0 {
			f.done = true
			f.chunk = nil
			return event.Row{}, false
		}
		f.chunk = next
		f.idx = 0
	}
}

// Advance consumes the row last returned by Peek.
func (f *Feed) Advance() {
	if f.idx < len(f.chunk) {
		f.idx++
	}
}
