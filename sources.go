package trackfolio

import (
	"context"

	"github.com/okutan/trackfolio/date"
)

// PriceMap holds the closing prices known for one day, keyed by
// ticker. An empty map is a valid "no data" answer, not an error.
type PriceMap map[string]Money

// TradeSource supplies the full trade log. Order is not guaranteed,
// consumers re-sort.
type TradeSource interface {
	AllTrades(ctx context.Context) ([]Trade, error)
}

// PriceSource answers point lookups of stored closing prices.
type PriceSource interface {
	PricesOn(ctx context.Context, day date.Date) (PriceMap, error)
}

// PriceUpserter stores closing prices, replacing any previous value
// for the same (day, ticker).
type PriceUpserter interface {
	UpsertPrices(ctx context.Context, day date.Date, prices PriceMap) error
}

// QuoteFetcher pulls closing prices from a live market data feed.
// Implementations may return a partial map when some tickers have no
// quote for the day.
type QuoteFetcher interface {
	ClosingPrices(ctx context.Context, tickers []string, day date.Date) (PriceMap, error)
}

// TabularSink persists named tables of string records. Reading a
// table that does not exist yet yields no rows and no error.
type TabularSink interface {
	Read(table string) ([]Record, error)
	Write(table string, header []string, rows []Record) error
}
