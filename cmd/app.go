// Package cmd implements the CLI application to manage the portfolio.
package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/subcommands"
	"github.com/rs/zerolog"

	trackfolio "github.com/okutan/trackfolio"
	"github.com/okutan/trackfolio/csvtable"
	"github.com/okutan/trackfolio/date"
	"github.com/okutan/trackfolio/sqlstore"
)

// Register the subcommands.
// A main package calls Register() and Execute() on the user-selected one.
func Register(c *subcommands.Commander) {
	c.Register(&buyCmd{}, "trades")
	c.Register(&sellCmd{}, "trades")

	c.Register(&historyCmd{}, "reports")
	c.Register(&returnsCmd{}, "reports")
	c.Register(&exportCmd{}, "reports")

	c.Register(&updateCmd{}, "prices")
	c.Register(&watchCmd{}, "prices")
}

// app bundles what every subcommand needs. As a CLI it is short
// lived, opening everything per invocation is fine.
type app struct {
	cfg   *Config
	log   zerolog.Logger
	store *sqlstore.Store
}

func newApp() (*app, error) {
	cfg, err := LoadConfig()
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}
	log := newLogger(cfg.LogLevel)
	if err := os.MkdirAll(filepath.Dir(cfg.DatabasePath), 0o755); err != nil {
		return nil, fmt.Errorf("creating data dir: %w", err)
	}
	store, err := sqlstore.Open(cfg.DatabasePath, log)
	if err != nil {
		return nil, err
	}
	return &app{cfg: cfg, log: log, store: store}, nil
}

func (a *app) Close() error { return a.store.Close() }

func (a *app) engine() *trackfolio.Engine {
	return trackfolio.NewEngine(a.store, a.store, a.log)
}

func (a *app) csvSink() (*csvtable.Sink, error) {
	return csvtable.New(a.cfg.ExportDir, a.log)
}

func newLogger(level string) zerolog.Logger {
	lvl, err := zerolog.ParseLevel(level)
	if err != nil {
		lvl = zerolog.InfoLevel
	}
	out := zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339}
	return zerolog.New(out).Level(lvl).With().Timestamp().Logger()
}

// parseDay reads a -date style flag, empty means today.
func parseDay(s string) (date.Date, error) {
	if s == "" {
		return date.Today(), nil
	}
	return date.Parse(s)
}

func fail(err error) subcommands.ExitStatus {
	fmt.Fprintf(os.Stderr, "Error: %v\n", err)
	return subcommands.ExitFailure
}
