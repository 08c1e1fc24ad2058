// Package event defines the fixed-layout market event row that flows
// between the data reader, the local processor and the exchange
// processor.
package event

// Kind identifies what a Row represents.
type Kind int8

const (
	DepthEvent Kind = iota + 1
	DepthSnapshotEvent
	DepthClearEvent
	TradeEvent
)

// Side of a book or aggressor. Buy is +1, Sell is -1, matching the
// original hftbacktest order-side convention.
type Side int8

const (
	Buy  Side = 1
	Sell Side = -1
)

// Row is one market event: a depth diff, a snapshot entry, a clear
// marker or a public trade print.
//
// Invariant (enforced by the reader, not by Row itself): LocalTs >=
// ExchTs for every row after ingestion.
type Row struct {
	Kind      Kind
	ExchTs    int64
	LocalTs   int64
	Side      Side
	PriceTick int64
	Qty       float64
}

// NumColumns is the width of the external float64[N,6] ingestion
// schema described in spec §6.
const NumColumns = 6

// ToMatrixRow renders a Row as the 6 numeric columns of the external
// ingestion schema: kind, exch_ts, local_ts, side, price, qty.
func (r Row) ToMatrixRow(tickSize float64) [NumColumns]float64 {
	return [NumColumns]float64{
		float64(r.Kind),
		float64(r.ExchTs),
		float64(r.LocalTs),
		float64(r.Side),
		float64(r.PriceTick) * tickSize,
		r.Qty,
	}
}

// RowFromMatrixRow parses one external schema row back into a Row.
// Price is converted to an integer tick using tickSize.
func RowFromMatrixRow(cols [NumColumns]float64, tickSize float64) Row {
	return Row{
		Kind:      Kind(int8(cols[0])),
		ExchTs:    int64(cols[1]),
		LocalTs:   int64(cols[2]),
		Side:      Side(int8(cols[3])),
		PriceTick: PriceToTick(cols[4], tickSize),
		Qty:       cols[5],
	}
}

// RowsFromMatrix converts a whole float64[N,6] matrix into Rows.
func RowsFromMatrix(rows [][NumColumns]float64, tickSize float64) []Row {
	out := make([]Row, len(rows))
	for i, cols := range rows {
		out[i] = RowFromMatrixRow(cols, tickSize)
	}
	return out
}

// PriceToTick converts a floating-point price to its integer tick
// representation given a tick size. Prices are always stored as
// ticks internally; this conversion happens only at the ingestion
// and display boundary per spec §4 "Numeric stability".
func PriceToTick(price, tickSize float64) int64 {
	if tickSize <= 0 {
		return 0
	}
	return int64(price/tickSize + 0.5)
}

// TickToPrice is the inverse of PriceToTick.
func TickToPrice(tick int64, tickSize float64) float64 {
	return float64(tick) * tickSize
}

func (k Kind) String() string {
	switch k {
	case DepthEvent:
		return "DEPTH_EVENT"
	case DepthSnapshotEvent:
		return "DEPTH_SNAPSHOT_EVENT"
	case DepthClearEvent:
		return "DEPTH_CLEAR_EVENT"
	case TradeEvent:
		return "TRADE_EVENT"
	default:
		return "UNKNOWN_EVENT"
	}
}

func (s Side) String() string {
	switch s {
	case Buy:
		return "BUY"
	case Sell:
		return "SELL"
	default:
		return "UNKNOWN_SIDE"
	}
}
