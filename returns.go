package trackfolio

import (
	"context"
	"errors"
	"fmt"

	"github.com/okutan/trackfolio/date"
	"github.com/rs/zerolog"
)

// ErrInvalidRange rejects return computations whose start date falls
// after the end date. Unlike history reconstruction, bounds are never
// swapped here, a reversed window is a caller bug.
var ErrInvalidRange = errors.New("invalid range: start after end")

// Valuation is the portfolio measured at one date.
type Valuation struct {
	Date         date.Date
	TotalCost    Money
	MarketValue  Money
	UnrealizedPL Money
	RealizedPL   Money
}

// ReturnCalculator derives window returns from two independent point
// in time valuations.
type ReturnCalculator struct {
	trades TradeSource
	prices PriceSource
	log    zerolog.Logger
}

func NewReturnCalculator(trades TradeSource, prices PriceSource, log zerolog.Logger) *ReturnCalculator {
	return &ReturnCalculator{
		trades: trades,
		prices: prices,
		log:    log.With().Str("component", "returns").Logger(),
	}
}

// ValueOn replays the trade log up to day and prices the held
// positions with that day's closes. Held instruments with no quote
// that day contribute nothing to market value.
func (c *ReturnCalculator) ValueOn(ctx context.Context, day date.Date) (Valuation, error) {
	trades, err := c.trades.AllTrades(ctx)
	if err != nil {
		return Valuation{}, fmt.Errorf("loading trades: %w", err)
	}
	p, err := FromTradesUntil(trades, day)
	if err != nil {
		return Valuation{}, fmt.Errorf("replaying trades to %s: %w", day, err)
	}
	prices, err := c.prices.PricesOn(ctx, day)
	if err != nil {
		c.log.Warn().Err(err).Stringer("date", day).Msg("price lookup failed, valuing without quotes")
		prices = nil
	}

	return Valuation{
		Date:         day,
		TotalCost:    p.TotalCost(),
		MarketValue:  p.TotalMarketValue(prices),
		UnrealizedPL: p.TotalUnrealizedPL(prices),
		RealizedPL:   p.TotalRealizedPL(),
	}, nil
}

// ReturnBetween is the rate of change of market value from d1 to d2.
// It is nil, not zero, when no value existed at d1.
func (c *ReturnCalculator) ReturnBetween(ctx context.Context, d1, d2 date.Date) (*Percent, error) {
	if d1.After(d2) {
		return nil, fmt.Errorf("%w: %s > %s", ErrInvalidRange, d1, d2)
	}
	start, err := c.ValueOn(ctx, d1)
	if err != nil {
		return nil, err
	}
	end, err := c.ValueOn(ctx, d2)
	if err != nil {
		return nil, err
	}
	if !start.MarketValue.IsPositive() {
		return nil, nil
	}
	r := end.MarketValue.Sub(start.MarketValue).Ratio(start.MarketValue)
	return &r, nil
}

// WeeklyReturn measures the seven calendar days ending at end.
func (c *ReturnCalculator) WeeklyReturn(ctx context.Context, end date.Date) (*Percent, error) {
	return c.ReturnBetween(ctx, end.Add(-7), end)
}

// MonthlyReturn measures the thirty calendar days ending at end.
func (c *ReturnCalculator) MonthlyReturn(ctx context.Context, end date.Date) (*Percent, error) {
	return c.ReturnBetween(ctx, end.Add(-30), end)
}
