// Package order defines the Order record and the latency-buffered
// OrderBus that carries orders between the local and exchange
// processors.
package order

import "github.com/exchange/hftbacktest/event"

// Status is the order's current lifecycle state.
type Status int8

const (
	StatusNone Status = iota
	StatusNew
	StatusExpired
	StatusFilled
	StatusCanceled
	StatusPartiallyFilled
	StatusModify
	StatusRejected
)

func (s Status) Terminal() bool {
	switch s {
	case StatusFilled, StatusExpired, StatusCanceled, StatusRejected:
		return true
	default:
		return false
	}
}

func (s Status) String() string {
	switch s {
	case StatusNone:
		return "NONE"
	case StatusNew:
		return "NEW"
	case StatusExpired:
		return "EXPIRED"
	case StatusFilled:
		return "FILLED"
	case StatusCanceled:
		return "CANCELED"
	case StatusPartiallyFilled:
		return "PARTIALLY_FILLED"
	case StatusModify:
		return "MODIFY"
	case StatusRejected:
		return "REJECTED"
	default:
		return "UNKNOWN_STATUS"
	}
}

// Req is the in-flight request marker: what the local side has asked
// the exchange to do to this order, pending acknowledgement.
type Req int8

const (
	ReqNone Req = iota
	ReqNew
	ReqCanceled
	ReqModify
)

func (r Req) String() string {
	switch r {
	case ReqNone:
		return "NONE"
	case ReqNew:
		return "NEW"
	case ReqCanceled:
		return "CANCELED"
	case ReqModify:
		return "MODIFY"
	default:
		return "UNKNOWN_REQ"
	}
}

// TimeInForce controls how an order behaves when it cannot fully
// execute immediately.
type TimeInForce int8

const (
	GTC TimeInForce = iota // Good till canceled: rests at the limit price.
	GTX                    // Post only: rejected if it would take liquidity.
	FOK                    // Fill or kill: all-or-nothing, immediate.
	IOC                    // Immediate or cancel: partial fill ok, residue canceled.
)

func (t TimeInForce) String() string {
	switch t {
	case GTC:
		return "GTC"
	case GTX:
		return "GTX"
	case FOK:
		return "FOK"
	case IOC:
		return "IOC"
	default:
		return "UNKNOWN_TIF"
	}
}

// Type distinguishes limit from market orders.
type Type int8

const (
	Limit Type = iota
	Market
)

func (t Type) String() string {
	switch t {
	case Limit:
		return "LIMIT"
	case Market:
		return "MARKET"
	default:
		return "UNKNOWN_TYPE"
	}
}

// Order is exclusively owned, at any instant, by whichever processor
// holds it in its ladder. Copies crossing an OrderBus are independent
// value copies; see Clone.
type Order struct {
	// Identity.
	OrderID int64

	// Immutable at creation.
	PriceTick   int64
	TickSize    float64
	Side        event.Side
	TimeInForce TimeInForce
	OrderType   Type
	Qty         float64

	// Mutable.
	LeavesQty     float64
	Status        Status
	Req           Req
	ExecPriceTick int64
	ExecQty       float64
	ExchTs        int64
	LocalTs       int64
	Maker         bool
	Q             [2]float64 // queue-model scratch: Q[0] ahead, Q[1] behind

	// SeenExecQty accumulates the exec_qty the local processor has
	// applied to PnL for this order, one increment per fill response.
	SeenExecQty float64
}

// New constructs an order in its initial submitted state
// (status=NEW, req=NEW per spec §3 lifecycle).
func New(orderID int64, priceTick int64, tickSize float64, qty float64, side event.Side, tif TimeInForce, orderType Type) *Order {
	return &Order{
		OrderID:     orderID,
		PriceTick:   priceTick,
		TickSize:    tickSize,
		Side:        side,
		TimeInForce: tif,
		OrderType:   orderType,
		Qty:         qty,
		LeavesQty:   qty,
		Status:      StatusNew,
		Req:         ReqNew,
	}
}

// Price is the derived floating-point price; see spec §4 "Numeric
// stability" -- comparisons use PriceTick, this is for display/PnL
// math only.
func (o *Order) Price() float64 {
	return float64(o.PriceTick) * o.TickSize
}

// ExecPrice is the derived floating-point execution price.
func (o *Order) ExecPrice() float64 {
	return float64(o.ExecPriceTick) * o.TickSize
}

// Cancellable reports whether a cancel request can still be issued:
// the order must be resting (NEW) with no other request in flight.
func (o *Order) Cancellable() bool {
	return o.Status == StatusNew && o.Req == ReqNone
}

// Clone returns an independent value copy of the order, as crosses an
// OrderBus; mutating the returned order never affects o. See spec §9
// "order cloning across the bus".
func (o *Order) Clone() *Order {
	c := *o
	return &c
}
