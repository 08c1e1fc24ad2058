// Package latency provides pluggable order-roundtrip latency models:
// the entry offset (submit -> exchange receipt) and the response
// offset (exchange decision -> local receipt) applied to OrderBus
// receive timestamps.
package latency

import "github.com/exchange/hftbacktest/order"

// Model is the order-latency collaborator constructed once and shared
// by both processors (spec §4.F, §9 polymorphism).
type Model interface {
	// EntryLatency returns the nanosecond offset added to ts when an
	// order is submitted locally and placed on the local->exchange
	// bus.
	EntryLatency(ts int64, o *order.Order) int64
	// ResponseLatency returns the nanosecond offset added to ts when
	// the exchange pushes an order update back on the
	// exchange->local bus.
	ResponseLatency(ts int64, o *order.Order) int64
	// Reset restores any internal state to its construction-time
	// defaults (used by a processor reset).
	Reset()
	// Observe records a freshly seen feed latency sample (local_ts -
	// exch_ts) from a just-processed data row. Models that don't
	// derive latency from the feed ignore it.
	Observe(feedLatency int64)
}

// Constant applies fixed entry/response offsets to every order,
// independent of its content. This is the default model.
type Constant struct {
	Entry    int64
	Response int64
}

// NewConstant constructs a Constant latency model.
func NewConstant(entry, response int64) *Constant {
	return &Constant{Entry: entry, Response: response}
}

func (c *Constant) EntryLatency(ts int64, o *order.Order) int64    { return c.Entry }
func (c *Constant) ResponseLatency(ts int64, o *order.Order) int64 { return c.Response }
func (c *Constant) Reset()                                        {}
func (c *Constant) Observe(feedLatency int64)                     {}

// Feed derives order latency from the most recently observed feed
// latency (local_ts - exch_ts, per spec's Glossary), scaled by a
// multiplier, instead of being constant -- useful for strategies that
// want simulated order latency to track real market conditions
// observed in the data. The feed latency is recorded by calling
// Observe whenever a data row is processed.
type Feed struct {
	Multiplier      float64
	MinEntry        int64
	MinResponse     int64
	lastFeedLatency int64
}

// NewFeed constructs a Feed latency model. multiplier scales the most
// recently observed feed latency to produce the order latency; floors
// ensure a sane minimum even before any feed latency has been
// observed.
func NewFeed(multiplier float64, minEntry, minResponse int64) *Feed {
	return &Feed{Multiplier: multiplier, MinEntry: minEntry, MinResponse: minResponse}
}

// Observe records a freshly seen feed latency sample (local_ts - exch_ts).
func (f *Feed) Observe(feedLatency int64) {
	if feedLatency > 0 {
		f.lastFeedLatency = feedLatency
	}
}

func (f *Feed) scaled(floor int64) int64 {
	v := int64(float64(f.lastFeedLatency) * f.Multiplier)
	if v < floor {
		return floor
	}
	return v
}

func (f *Feed) EntryLatency(ts int64, o *order.Order) int64    { return f.scaled(f.MinEntry) }
func (f *Feed) ResponseLatency(ts int64, o *order.Order) int64 { return f.scaled(f.MinResponse) }
func (f *Feed) Reset()                                         { f.lastFeedLatency = 0 }
