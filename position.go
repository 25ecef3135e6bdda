package trackfolio

import "fmt"

// OverSellError reports a sell for more units than are held. The
// offending trade must be rejected whole, nothing is applied.
type OverSellError struct {
	Ticker    string
	Held      Quantity
	Requested Quantity
}

func (e *OverSellError) Error() string {
	return fmt.Sprintf("oversell %s: held %s, sell %s", e.Ticker, e.Held, e.Requested)
}

// Position is the running weighted-average cost state of one
// instrument. TotalCost covers only the currently held quantity,
// RealizedPL accumulates over the whole replay.
type Position struct {
	Ticker     string
	Quantity   Quantity
	TotalCost  Money
	RealizedPL Money
}

// NewPosition returns an empty position for ticker.
func NewPosition(ticker string) *Position {
	return &Position{Ticker: ticker}
}

// AverageCost is TotalCost spread over the held quantity, zero when
// nothing is held.
func (p *Position) AverageCost() Money {
	if !p.Quantity.IsPositive() {
		return M(0, p.TotalCost.Currency())
	}
	return p.TotalCost.Div(p.Quantity)
}

// ApplyBuy blends the lot into the average cost.
func (p *Position) ApplyBuy(qty Quantity, price Money) {
	p.TotalCost = p.TotalCost.Add(price.Mul(qty))
	p.Quantity = p.Quantity.Add(qty)
}

// ApplySell realizes profit against the current average cost and
// releases the matching share of TotalCost. Selling more than held
// fails with *OverSellError and leaves the position untouched.
func (p *Position) ApplySell(qty Quantity, price Money) error {
	if qty.GreaterThan(p.Quantity) {
		return &OverSellError{Ticker: p.Ticker, Held: p.Quantity, Requested: qty}
	}
	avg := p.AverageCost()
	proceeds := price.Mul(qty)
	costOut := avg.Mul(qty)
	p.RealizedPL = p.RealizedPL.Add(proceeds.Sub(costOut))
	p.Quantity = p.Quantity.Sub(qty)
	p.TotalCost = p.TotalCost.Sub(costOut)
	if p.Quantity.IsZero() {
		// flush rounding residue once the position is flat
		p.TotalCost = M(0, p.TotalCost.Currency())
	}
	return nil
}

// ApplyTrade dispatches on the trade side.
func (p *Position) ApplyTrade(t Trade) error {
	switch t.Side {
	case Buy:
		p.ApplyBuy(t.Quantity, t.Price)
		return nil
	case Sell:
		return p.ApplySell(t.Quantity, t.Price)
	default:
		return fmt.Errorf("%w: unknown side %q", ErrInvalidTrade, t.Side)
	}
}

// MarketValue prices the held quantity.
func (p *Position) MarketValue(price Money) Money { return price.Mul(p.Quantity) }

// UnrealizedPL is the paper gain of the held quantity at price.
func (p *Position) UnrealizedPL(price Money) Money {
	return p.MarketValue(price).Sub(p.TotalCost)
}
