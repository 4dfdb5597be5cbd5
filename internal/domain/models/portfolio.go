package models

import "github.com/shopspring/decimal"

// Intent is the rebalance action implied by a position's delta.
type Intent string

const (
	IntentHold Intent = "HOLD"
	IntentBuy  Intent = "BUY"
	IntentSell Intent = "SELL"
)

// PortfolioPosition is supplied by an external source and never mutated here.
type PortfolioPosition struct {
	Symbol         string          `json:"symbol"`
	Qty            decimal.Decimal `json:"qty"`
	TargetQty      decimal.Decimal `json:"targetQty"`
	CurrentPrice   decimal.Decimal `json:"currentPrice"`
	UnrealizedPlPc decimal.Decimal `json:"unrealizedPlPc"`
}

// Delta is the quantity needed to reach the target.
func (p PortfolioPosition) Delta() decimal.Decimal {
	return p.TargetQty.Sub(p.Qty)
}

// Intent derives the action from the sign of Delta.
func (p PortfolioPosition) Intent() Intent {
	switch p.Delta().Sign() {
	case 1:
		return IntentBuy
	case -1:
		return IntentSell
	default:
		return IntentHold
	}
}

// View projects the position with its derived fields.
func (p PortfolioPosition) View() PositionView {
	return PositionView{
		PortfolioPosition: p,
		Delta:             p.Delta(),
		Intent:            p.Intent(),
	}
}

// PositionView is the read-side projection; it is recomputed on every read.
type PositionView struct {
	PortfolioPosition
	Delta  decimal.Decimal `json:"delta"`
	Intent Intent          `json:"intent"`
}

// GlobalMetrics are scope-wide figures that are always replaced as a whole.
type GlobalMetrics struct {
	NetEquity       decimal.Decimal `json:"netEquity"`
	BuyingPower     decimal.Decimal `json:"buyingPower"`
	ActivePositions int             `json:"activePositions"`
}

// AccountSnapshot is what an account source returns on each poll.
type AccountSnapshot struct {
	Metrics   GlobalMetrics       `json:"metrics"`
	Positions []PortfolioPosition `json:"positions"`
}
