// Package state tracks position, balance, fee and trade counters for
// a single simulated account and applies asset-type-aware PnL
// accounting to fills.
package state

import (
	"github.com/exchange/hftbacktest/assettype"
	"github.com/exchange/hftbacktest/order"
)

// State is the PnL accumulator shared by the local processor across
// the lifetime of a backtest run.
type State struct {
	Position    float64
	Balance     float64
	Fee         float64
	TradeNum    int64
	TradeQty    float64
	TradeAmount float64

	MakerFee float64
	TakerFee float64

	AssetType assettype.AssetType
}

// New constructs a State with the given starting balances and fee
// schedule.
func New(startPosition, startBalance, startFee, makerFee, takerFee float64, at assettype.AssetType) *State {
	return &State{
		Position:  startPosition,
		Balance:   startBalance,
		Fee:       startFee,
		MakerFee:  makerFee,
		TakerFee:  takerFee,
		AssetType: at,
	}
}

// ApplyFill folds a filled order's execution into position, balance,
// fee and trade counters (spec §3 State.apply_fill).
func (s *State) ApplyFill(o *order.Order) {
	feeRate := s.TakerFee
	if o.Maker {
		feeRate = s.MakerFee
	}
	amount := s.AssetType.Amount(o.ExecPrice(), o.ExecQty)
	side := float64(o.Side)
	s.Position += o.ExecQty * side
	s.Balance -= amount * side
	s.Fee += amount * feeRate
	s.TradeNum++
	s.TradeQty += o.ExecQty
	s.TradeAmount += amount
}

// Equity returns the mark-to-market account value at the given mid
// price.
func (s *State) Equity(mid float64) float64 {
	return s.AssetType.Equity(mid, s.Balance, s.Position, s.Fee)
}

// Reset restores starting balances and trade counters; maker/taker
// fee are left unchanged unless explicitly overridden by the caller
// afterward (mirrors the optional-override reset of the original
// hftbacktest state.py).
func (s *State) Reset(startPosition, startBalance, startFee float64) {
	s.Position = startPosition
	s.Balance = startBalance
	s.Fee = startFee
	s.TradeNum = 0
	s.TradeQty = 0
	s.TradeAmount = 0
}
