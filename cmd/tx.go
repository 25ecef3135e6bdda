package cmd

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"

	"github.com/google/subcommands"

	trackfolio "github.com/okutan/trackfolio"
)

// tradeCmd carries the flags shared by buy and sell.
type tradeCmd struct {
	ticker string
	day    string
	at     string
	qty    int64
	price  float64
}

func (c *tradeCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.ticker, "s", "", "ticker of the traded instrument")
	f.StringVar(&c.day, "d", "", "trade date YYYY-MM-DD, defaults to today")
	f.StringVar(&c.at, "t", "", "optional trade time HH:MM:SS, orders same-day trades")
	f.Int64Var(&c.qty, "q", 0, "traded quantity")
	f.Float64Var(&c.price, "p", 0, "unit price")
}

func (c *tradeCmd) record(side trackfolio.Side) subcommands.ExitStatus {
	day, err := parseDay(c.day)
	if err != nil {
		return fail(err)
	}
	a, err := newApp()
	if err != nil {
		return fail(err)
	}
	defer a.Close()

	svc := trackfolio.NewService(a.store, a.store, a.log)
	t, err := svc.RecordTrade(context.Background(), c.ticker, day, c.at, side,
		trackfolio.Q(c.qty), trackfolio.M(c.price, a.cfg.Currency))
	var oversell *trackfolio.OverSellError
	if errors.As(err, &oversell) {
		fmt.Fprintf(os.Stderr, "Rejected: %v\n", oversell)
		return subcommands.ExitFailure
	}
	if err != nil {
		return fail(err)
	}
	fmt.Printf("Recorded %s\n", t)
	return subcommands.ExitSuccess
}

type buyCmd struct{ tradeCmd }

func (*buyCmd) Name() string     { return "buy" }
func (*buyCmd) Synopsis() string { return "record a purchase in the trade log" }
func (*buyCmd) Usage() string {
	return `buy -s <ticker> -q <quantity> -p <price> [-d <date>] [-t <time>]

  Appends a buy trade. Quantity and price must be positive.
`
}

func (c *buyCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	return c.record(trackfolio.Buy)
}

type sellCmd struct{ tradeCmd }

func (*sellCmd) Name() string     { return "sell" }
func (*sellCmd) Synopsis() string { return "record a sale in the trade log" }
func (*sellCmd) Usage() string {
	return `sell -s <ticker> -q <quantity> -p <price> [-d <date>] [-t <time>]

  Appends a sell trade. A sale exceeding the held quantity is
  rejected and nothing is written.
`
}

func (c *sellCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	return c.record(trackfolio.Sell)
}
