// Package assettype implements the notional/equity math for the two
// contract families the backtester core supports.
package assettype

// AssetType computes the notional amount of a fill and the mark-to-market
// equity of a position, both denominated the way the contract's
// settlement currency requires.
type AssetType interface {
	// Amount is the notional value of qty units executed at execPrice.
	Amount(execPrice, qty float64) float64
	// Equity is the mark-to-market account value at the given mid price.
	Equity(mid, balance, position, fee float64) float64
}

// Linear is the common asset type: notional is contractSize * price * qty.
type Linear struct {
	ContractSize float64
}

// NewLinear constructs a Linear asset type. contractSize defaults to 1
// when zero.
func NewLinear(contractSize float64) *Linear {
	if contractSize == 0 {
		contractSize = 1
	}
	return &Linear{ContractSize: contractSize}
}

func (a *Linear) Amount(execPrice, qty float64) float64 {
	return a.ContractSize * execPrice * qty
}

func (a *Linear) Equity(mid, balance, position, fee float64) float64 {
	return balance + a.ContractSize*position*mid - fee
}

// Inverse is the coin-margined asset type: notional is denominated in
// the quote currency and settlement happens in the base currency, so
// amount and equity divide by price instead of multiplying.
type Inverse struct {
	ContractSize float64
}

// NewInverse constructs an Inverse asset type. contractSize defaults
// to 1 when zero.
func NewInverse(contractSize float64) *Inverse {
	if contractSize == 0 {
		contractSize = 1
	}
	return &Inverse{ContractSize: contractSize}
}

func (a *Inverse) Amount(execPrice, qty float64) float64 {
	return a.ContractSize * qty / execPrice
}

func (a *Inverse) Equity(mid, balance, position, fee float64) float64 {
	return -balance - a.ContractSize*position/mid - fee
}
