package cmd

import (
	"context"
	"flag"
	"fmt"

	"github.com/google/subcommands"
	"github.com/rs/zerolog"

	trackfolio "github.com/okutan/trackfolio"
	"github.com/okutan/trackfolio/date"
	"github.com/okutan/trackfolio/yahoo"
)

type updateCmd struct {
	day string
}

func (*updateCmd) Name() string     { return "update" }
func (*updateCmd) Synopsis() string { return "fetch and store closing prices for held instruments" }
func (*updateCmd) Usage() string {
	return `update [-d <date>]

  Asks the market data feed for the closing prices of every held
  instrument and stores them, replacing earlier values for the day.
`
}

func (c *updateCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.day, "d", "", "date YYYY-MM-DD, defaults to today")
}

func (c *updateCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	day, err := parseDay(c.day)
	if err != nil {
		return fail(err)
	}
	a, err := newApp()
	if err != nil {
		return fail(err)
	}
	defer a.Close()

	n, err := updatePrices(context.Background(), a, day, a.log)
	if err != nil {
		return fail(err)
	}
	fmt.Printf("Stored %d closing prices for %s\n", n, day)
	return subcommands.ExitSuccess
}

// updatePrices pulls the day's closes for every held ticker and
// upserts them into the store. Returns how many quotes were stored.
func updatePrices(ctx context.Context, a *app, day date.Date, log zerolog.Logger) (int, error) {
	trades, err := a.store.AllTrades(ctx)
	if err != nil {
		return 0, err
	}
	p, err := trackfolio.FromTradesUntil(trades, day)
	if err != nil {
		return 0, fmt.Errorf("replaying trades: %w", err)
	}
	var tickers []string
	for _, pos := range p.Held() {
		tickers = append(tickers, pos.Ticker)
	}
	if len(tickers) == 0 {
		log.Info().Stringer("date", day).Msg("nothing held, no prices to fetch")
		return 0, nil
	}

	feed := yahoo.NewClient(log)
	if a.cfg.YahooBaseURL != "" {
		feed.WithBaseURL(a.cfg.YahooBaseURL)
	}
	quotes, err := feed.ClosingPrices(ctx, tickers, day)
	if err != nil {
		return 0, fmt.Errorf("fetching quotes: %w", err)
	}
	if len(quotes) == 0 {
		log.Warn().Stringer("date", day).Msg("feed returned no closes")
		return 0, nil
	}
	if err := a.store.UpsertPrices(ctx, day, quotes); err != nil {
		return 0, err
	}
	return len(quotes), nil
}
