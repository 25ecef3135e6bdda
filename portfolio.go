package trackfolio

import (
	"sort"

	"github.com/okutan/trackfolio/date"
)

// Portfolio is the aggregate of positions derived from a trade
// replay. It carries no identity of its own and is cheap to rebuild
// from the trade log at any cutoff.
type Portfolio struct {
	positions map[string]*Position
}

// NewPortfolio returns an empty aggregate.
func NewPortfolio() *Portfolio {
	return &Portfolio{positions: make(map[string]*Position)}
}

// FromTrades builds the aggregate by replaying trades in order. The
// input slice is not modified. Replay is deterministic: the same
// trades always produce the same state.
func FromTrades(trades []Trade) (*Portfolio, error) {
	sorted := make([]Trade, len(trades))
	copy(sorted, trades)
	SortTrades(sorted)

	p := NewPortfolio()
	for _, t := range sorted {
		if err := p.Apply(t); err != nil {
			return nil, err
		}
	}
	return p, nil
}

// FromTradesUntil replays only trades dated on or before cutoff.
func FromTradesUntil(trades []Trade, cutoff date.Date) (*Portfolio, error) {
	kept := make([]Trade, 0, len(trades))
	for _, t := range trades {
		if !t.Date.After(cutoff) {
			kept = append(kept, t)
		}
	}
	return FromTrades(kept)
}

// Apply folds one trade into its position, creating it on demand.
func (p *Portfolio) Apply(t Trade) error {
	pos, ok := p.positions[t.Ticker]
	if !ok {
		pos = NewPosition(t.Ticker)
		p.positions[t.Ticker] = pos
	}
	return pos.ApplyTrade(t)
}

// Position returns the position for ticker, nil if never traded.
func (p *Portfolio) Position(ticker string) *Position {
	return p.positions[ticker]
}

// Tickers lists every traded instrument in ascending order.
func (p *Portfolio) Tickers() []string {
	out := make([]string, 0, len(p.positions))
	for t := range p.positions {
		out = append(out, t)
	}
	sort.Strings(out)
	return out
}

// Held lists positions with positive quantity, ordered by ticker.
func (p *Portfolio) Held() []*Position {
	var out []*Position
	for _, t := range p.Tickers() {
		if pos := p.positions[t]; pos.Quantity.IsPositive() {
			out = append(out, pos)
		}
	}
	return out
}

// TotalCost sums the cost basis of all held positions.
func (p *Portfolio) TotalCost() Money {
	var sum Money
	for _, pos := range p.positions {
		sum = sum.Add(pos.TotalCost)
	}
	return sum
}

// TotalRealizedPL sums realized profit across all positions,
// including fully sold ones.
func (p *Portfolio) TotalRealizedPL() Money {
	var sum Money
	for _, pos := range p.positions {
		sum = sum.Add(pos.RealizedPL)
	}
	return sum
}

// TotalMarketValue prices the held positions with the given closes.
// Instruments without a quote contribute nothing.
func (p *Portfolio) TotalMarketValue(prices PriceMap) Money {
	var sum Money
	for _, pos := range p.Held() {
		if close, ok := prices[pos.Ticker]; ok {
			sum = sum.Add(pos.MarketValue(close))
		}
	}
	return sum
}

// TotalUnrealizedPL sums the paper gains of quoted held positions.
func (p *Portfolio) TotalUnrealizedPL(prices PriceMap) Money {
	var sum Money
	for _, pos := range p.Held() {
		if close, ok := prices[pos.Ticker]; ok {
			sum = sum.Add(pos.UnrealizedPL(close))
		}
	}
	return sum
}
