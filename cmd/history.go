package cmd

import (
	"context"
	"flag"
	"fmt"

	"github.com/google/subcommands"

	trackfolio "github.com/okutan/trackfolio"
	"github.com/okutan/trackfolio/date"
)

type historyCmd struct {
	from     string
	to       string
	weekends bool
}

func (*historyCmd) Name() string     { return "history" }
func (*historyCmd) Synopsis() string { return "display daily portfolio value over a date range" }
func (*historyCmd) Usage() string {
	return `history -from <date> [-to <date>] [-weekends]

  Reconstructs the portfolio day by day and prints one line per day.
  Days without price data carry the last known value forward.
`
}

func (c *historyCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.from, "from", "", "first day YYYY-MM-DD")
	f.StringVar(&c.to, "to", "", "last day YYYY-MM-DD, defaults to today")
	f.BoolVar(&c.weekends, "weekends", false, "include weekend rows in the output")
}

func (c *historyCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if c.from == "" {
		return fail(fmt.Errorf("-from is required"))
	}
	from, err := date.Parse(c.from)
	if err != nil {
		return fail(err)
	}
	to, err := parseDay(c.to)
	if err != nil {
		return fail(err)
	}
	a, err := newApp()
	if err != nil {
		return fail(err)
	}
	defer a.Close()

	h, err := a.engine().Reconstruct(context.Background(), from, to)
	if err != nil {
		return fail(err)
	}

	fmt.Printf("Date\t\tValue\t\tDaily\tCumulative\tStatus\n")
	for _, s := range h.Snapshots {
		if !c.weekends && s.Date.IsWeekend() {
			continue
		}
		fmt.Printf("%s\t%s\t%s\t%s\t%s\n",
			s.Date, moneyOrDash(s.TotalValue), pctOrDash(s.DailyReturn),
			pctOrDash(s.CumulativeReturn), s.Status)
	}
	return subcommands.ExitSuccess
}

func moneyOrDash(m *trackfolio.Money) string {
	if m == nil {
		return "-"
	}
	return m.String()
}

func pctOrDash(p *trackfolio.Percent) string {
	if p == nil {
		return "-"
	}
	return p.SignedString()
}
