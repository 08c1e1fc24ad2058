package hbt

import "math"

// nanPrice is returned by price accessors when no value is defined yet
// (e.g. no trade has printed). Mirrors depth.MarketDepth's empty-side
// convention of signaling "absent" through NaN rather than a sentinel
// the caller must special-case.
var nanPrice = math.NaN()
