package cmd

import (
	"context"
	"flag"
	"fmt"

	"github.com/google/subcommands"

	trackfolio "github.com/okutan/trackfolio"
	"github.com/okutan/trackfolio/date"
)

type returnsCmd struct {
	on   string
	from string
}

func (*returnsCmd) Name() string     { return "returns" }
func (*returnsCmd) Synopsis() string { return "show point-in-time value and window returns" }
func (*returnsCmd) Usage() string {
	return `returns [-on <date>] [-from <date>]

  Values the portfolio on a date and prints its weekly and monthly
  returns. With -from, also prints the return since that date; -from
  must not be after the valuation date.
`
}

func (c *returnsCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.on, "on", "", "valuation date YYYY-MM-DD, defaults to today")
	f.StringVar(&c.from, "from", "", "optional start date for an arbitrary window")
}

func (c *returnsCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	on, err := parseDay(c.on)
	if err != nil {
		return fail(err)
	}
	a, err := newApp()
	if err != nil {
		return fail(err)
	}
	defer a.Close()

	ctx := context.Background()
	calc := trackfolio.NewReturnCalculator(a.store, a.store, a.log)

	v, err := calc.ValueOn(ctx, on)
	if err != nil {
		return fail(err)
	}
	fmt.Printf("Valuation on %s\n", v.Date)
	fmt.Printf("  Market value:   %s\n", v.MarketValue)
	fmt.Printf("  Cost basis:     %s\n", v.TotalCost)
	fmt.Printf("  Unrealized P&L: %s\n", v.UnrealizedPL.SignedString())
	fmt.Printf("  Realized P&L:   %s\n", v.RealizedPL.SignedString())

	weekly, err := calc.WeeklyReturn(ctx, on)
	if err != nil {
		return fail(err)
	}
	monthly, err := calc.MonthlyReturn(ctx, on)
	if err != nil {
		return fail(err)
	}
	fmt.Printf("  Weekly return:  %s\n", pctOrDash(weekly))
	fmt.Printf("  Monthly return: %s\n", pctOrDash(monthly))

	if c.from != "" {
		from, err := date.Parse(c.from)
		if err != nil {
			return fail(err)
		}
		r, err := calc.ReturnBetween(ctx, from, on)
		if err != nil {
			return fail(err)
		}
		fmt.Printf("  Since %s: %s\n", from, pctOrDash(r))
	}
	return subcommands.ExitSuccess
}
