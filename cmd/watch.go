package cmd

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/google/subcommands"
	"github.com/robfig/cron/v3"

	trackfolio "github.com/okutan/trackfolio"
	"github.com/okutan/trackfolio/date"
)

type watchCmd struct {
	spec string
}

func (*watchCmd) Name() string     { return "watch" }
func (*watchCmd) Synopsis() string { return "keep closing prices updated on a schedule" }
func (*watchCmd) Usage() string {
	return `watch [-spec <cron>]

  Runs the price update on a cron schedule until interrupted. The
  default schedule comes from WATCH_SPEC and fires each weekday after
  market close.
`
}

func (c *watchCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.spec, "spec", "", "cron schedule, overrides WATCH_SPEC")
}

func (c *watchCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	a, err := newApp()
	if err != nil {
		return fail(err)
	}
	defer a.Close()

	spec := c.spec
	if spec == "" {
		spec = a.cfg.WatchSpec
	}

	sched := cron.New()
	_, err = sched.AddFunc(spec, func() {
		ctx := context.Background()
		day := date.Today()
		n, err := updatePrices(ctx, a, day, a.log)
		if err != nil {
			a.log.Error().Err(err).Stringer("date", day).Msg("scheduled price update failed")
			return
		}
		a.log.Info().Stringer("date", day).Int("prices", n).Msg("scheduled price update done")

		// fold the fresh day into the report tables
		h, err := a.engine().Reconstruct(ctx, day, day)
		if err != nil {
			a.log.Error().Err(err).Stringer("date", day).Msg("scheduled reconstruction failed")
			return
		}
		sink, err := a.csvSink()
		if err != nil {
			a.log.Error().Err(err).Msg("opening export dir failed")
			return
		}
		if err := trackfolio.NewExporter(sink, a.log).Export(h, false); err != nil {
			a.log.Error().Err(err).Stringer("date", day).Msg("scheduled export failed")
		}
	})
	if err != nil {
		return fail(fmt.Errorf("bad schedule %q: %w", spec, err))
	}

	sched.Start()
	a.log.Info().Str("spec", spec).Msg("watching, ctrl-c to stop")

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	ctx := sched.Stop()
	<-ctx.Done()
	return subcommands.ExitSuccess
}
