package cmd

import (
	"context"
	"flag"
	"fmt"

	"github.com/google/subcommands"

	trackfolio "github.com/okutan/trackfolio"
	"github.com/okutan/trackfolio/date"
)

type exportCmd struct {
	from      string
	to        string
	overwrite bool
	toDB      bool
}

func (*exportCmd) Name() string     { return "export" }
func (*exportCmd) Synopsis() string { return "reconstruct a range and merge it into the report tables" }
func (*exportCmd) Usage() string {
	return `export -from <date> [-to <date>] [-overwrite] [-db]

  Writes the portfolio_summary, position_detail and instrument_summary
  tables. Re-exporting an overlapping range replaces rows with the
  same key, so repeated runs converge to the same content. Tables go
  to CSV files under EXPORT_DIR, or into the database with -db.
`
}

func (c *exportCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.from, "from", "", "first day YYYY-MM-DD")
	f.StringVar(&c.to, "to", "", "last day YYYY-MM-DD, defaults to today")
	f.BoolVar(&c.overwrite, "overwrite", false, "discard previous table content instead of merging")
	f.BoolVar(&c.toDB, "db", false, "export into the database instead of CSV files")
}

func (c *exportCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
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

	var sink trackfolio.TabularSink
	if c.toDB {
		sink = a.store.Sink()
	} else {
		sink, err = a.csvSink()
		if err != nil {
			return fail(err)
		}
	}
	if err := trackfolio.NewExporter(sink, a.log).Export(h, c.overwrite); err != nil {
		return fail(err)
	}
	fmt.Printf("Exported %d days, %d position rows\n", len(h.Snapshots), len(h.Positions))
	return subcommands.ExitSuccess
}
