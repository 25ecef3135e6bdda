package trackfolio

import (
	"context"
	"fmt"

	"github.com/okutan/trackfolio/date"
	"github.com/rs/zerolog"
)

// TradeStore is a trade source that also accepts new trades.
type TradeStore interface {
	TradeSource
	AppendTrade(ctx context.Context, t Trade) error
}

// Service is the write side of the trade log. It guarantees that
// every persisted trade replays cleanly: a trade is either fully
// valid and stored, or rejected with nothing written.
type Service struct {
	store  TradeStore
	prices PriceSource
	log    zerolog.Logger
}

func NewService(store TradeStore, prices PriceSource, log zerolog.Logger) *Service {
	return &Service{
		store:  store,
		prices: prices,
		log:    log.With().Str("component", "service").Logger(),
	}
}

// RecordTrade validates, replay-checks and appends one trade. A sell
// that exceeds the held quantity fails with *OverSellError before
// anything is persisted.
func (s *Service) RecordTrade(ctx context.Context, ticker string, day date.Date, at string, side Side, qty Quantity, price Money) (Trade, error) {
	t, err := NewTrade(ticker, day, at, side, qty, price)
	if err != nil {
		return Trade{}, err
	}
	existing, err := s.store.AllTrades(ctx)
	if err != nil {
		return Trade{}, fmt.Errorf("loading trades: %w", err)
	}
	if _, err := FromTrades(append(existing, t)); err != nil {
		return Trade{}, err
	}
	if err := s.store.AppendTrade(ctx, t); err != nil {
		return Trade{}, fmt.Errorf("storing trade: %w", err)
	}
	s.log.Info().
		Str("id", t.ID).
		Str("ticker", t.Ticker).
		Stringer("date", t.Date).
		Str("side", string(t.Side)).
		Stringer("quantity", t.Quantity).
		Msg("trade recorded")
	return t, nil
}

// Buy records a purchase dated day.
func (s *Service) Buy(ctx context.Context, ticker string, day date.Date, qty Quantity, price Money) (Trade, error) {
	return s.RecordTrade(ctx, ticker, day, "", Buy, qty, price)
}

// Sell records a sale dated day, rejected if it oversells.
func (s *Service) Sell(ctx context.Context, ticker string, day date.Date, qty Quantity, price Money) (Trade, error) {
	return s.RecordTrade(ctx, ticker, day, "", Sell, qty, price)
}

// CurrentPortfolio replays the whole trade log.
func (s *Service) CurrentPortfolio(ctx context.Context) (*Portfolio, error) {
	trades, err := s.store.AllTrades(ctx)
	if err != nil {
		return nil, fmt.Errorf("loading trades: %w", err)
	}
	return FromTrades(trades)
}

// PortfolioOn replays trades up to day and returns the aggregate with
// that day's stored closes.
func (s *Service) PortfolioOn(ctx context.Context, day date.Date) (*Portfolio, PriceMap, error) {
	trades, err := s.store.AllTrades(ctx)
	if err != nil {
		return nil, nil, fmt.Errorf("loading trades: %w", err)
	}
	p, err := FromTradesUntil(trades, day)
	if err != nil {
		return nil, nil, fmt.Errorf("replaying trades to %s: %w", day, err)
	}
	prices, err := s.prices.PricesOn(ctx, day)
	if err != nil {
		return nil, nil, fmt.Errorf("loading prices for %s: %w", day, err)
	}
	return p, prices, nil
}
