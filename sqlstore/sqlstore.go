// Package sqlstore persists trades, daily closing prices and report
// tables in a single SQLite database.
package sqlstore

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	trackfolio "github.com/okutan/trackfolio"
	"github.com/okutan/trackfolio/date"

	_ "modernc.org/sqlite"
)

const schema = `
CREATE TABLE IF NOT EXISTS trades (
	id       TEXT PRIMARY KEY,
	ticker   TEXT NOT NULL,
	date     TEXT NOT NULL,
	time     TEXT NOT NULL DEFAULT '',
	side     TEXT NOT NULL,
	quantity TEXT NOT NULL,
	price    TEXT NOT NULL,
	currency TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_trades_date ON trades(date);

CREATE TABLE IF NOT EXISTS prices (
	date     TEXT NOT NULL,
	ticker   TEXT NOT NULL,
	price    TEXT NOT NULL,
	currency TEXT NOT NULL,
	PRIMARY KEY (date, ticker)
);

CREATE TABLE IF NOT EXISTS report_tables (
	name   TEXT PRIMARY KEY,
	header TEXT NOT NULL
);
CREATE TABLE IF NOT EXISTS report_rows (
	table_name TEXT NOT NULL,
	idx        INTEGER NOT NULL,
	row        TEXT NOT NULL,
	PRIMARY KEY (table_name, idx)
);
`

// Store is the SQLite backing for the trade log, the price cache and
// the report sink.
type Store struct {
	db  *sql.DB
	log zerolog.Logger
}

// Open opens or creates the database at path and applies the schema.
func Open(path string, log zerolog.Logger) (*Store, error) {
	db, err := sql.Open("sqlite", path+"?_pragma=journal_mode(WAL)&_pragma=foreign_keys(1)")
	if err != nil {
		return nil, fmt.Errorf("opening %s: %w", path, err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("pinging %s: %w", path, err)
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("applying schema: %w", err)
	}
	l := log.With().Str("component", "sqlstore").Logger()
	l.Debug().Str("path", path).Msg("database opened")
	return &Store{db: db, log: l}, nil
}

func (s *Store) Close() error { return s.db.Close() }

// AllTrades loads the whole trade log, oldest date first.
func (s *Store) AllTrades(ctx context.Context) ([]trackfolio.Trade, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, ticker, date, time, side, quantity, price, currency
		 FROM trades ORDER BY date, time, rowid`)
	if err != nil {
		return nil, fmt.Errorf("querying trades: %w", err)
	}
	defer rows.Close()

	var trades []trackfolio.Trade
	for rows.Next() {
		var id, ticker, day, at, side, qty, price, currency string
		if err := rows.Scan(&id, &ticker, &day, &at, &side, &qty, &price, &currency); err != nil {
			return nil, fmt.Errorf("scanning trade: %w", err)
		}
		t, err := decodeTrade(id, ticker, day, at, side, qty, price, currency)
		if err != nil {
			return nil, err
		}
		trades = append(trades, t)
	}
	return trades, rows.Err()
}

func decodeTrade(id, ticker, day, at, side, qty, price, currency string) (trackfolio.Trade, error) {
	d, err := date.Parse(day)
	if err != nil {
		return trackfolio.Trade{}, fmt.Errorf("trade %s: %w", id, err)
	}
	q, err := decimal.NewFromString(qty)
	if err != nil {
		return trackfolio.Trade{}, fmt.Errorf("trade %s quantity: %w", id, err)
	}
	p, err := decimal.NewFromString(price)
	if err != nil {
		return trackfolio.Trade{}, fmt.Errorf("trade %s price: %w", id, err)
	}
	return trackfolio.Trade{
		ID:       id,
		Ticker:   ticker,
		Date:     d,
		Time:     at,
		Side:     trackfolio.Side(side),
		Quantity: trackfolio.Q(q),
		Price:    trackfolio.M(p, currency),
	}, nil
}

// AppendTrade stores one validated trade.
func (s *Store) AppendTrade(ctx context.Context, t trackfolio.Trade) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO trades (id, ticker, date, time, side, quantity, price, currency)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		t.ID, t.Ticker, t.Date.String(), t.Time, string(t.Side),
		t.Quantity.Decimal().String(), t.Price.Decimal().String(), t.Price.Currency())
	if err != nil {
		return fmt.Errorf("inserting trade %s: %w", t.ID, err)
	}
	return nil
}

// PricesOn returns the stored closes for a day, empty when none.
func (s *Store) PricesOn(ctx context.Context, day date.Date) (trackfolio.PriceMap, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT ticker, price, currency FROM prices WHERE date = ?`, day.String())
	if err != nil {
		return nil, fmt.Errorf("querying prices for %s: %w", day, err)
	}
	defer rows.Close()

	out := make(trackfolio.PriceMap)
	for rows.Next() {
		var ticker, price, currency string
		if err := rows.Scan(&ticker, &price, &currency); err != nil {
			return nil, fmt.Errorf("scanning price: %w", err)
		}
		p, err := decimal.NewFromString(price)
		if err != nil {
			return nil, fmt.Errorf("price for %s on %s: %w", ticker, day, err)
		}
		out[ticker] = trackfolio.M(p, currency)
	}
	return out, rows.Err()
}

// UpsertPrices stores closes for a day, replacing previous values for
// the same (day, ticker).
func (s *Store) UpsertPrices(ctx context.Context, day date.Date, prices trackfolio.PriceMap) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning price upsert: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO prices (date, ticker, price, currency) VALUES (?, ?, ?, ?)
		 ON CONFLICT(date, ticker) DO UPDATE SET price = excluded.price, currency = excluded.currency`)
	if err != nil {
		return fmt.Errorf("preparing price upsert: %w", err)
	}
	defer stmt.Close()

	for ticker, price := range prices {
		if _, err := stmt.ExecContext(ctx, day.String(), ticker, price.Decimal().String(), price.Currency()); err != nil {
			return fmt.Errorf("upserting %s on %s: %w", ticker, day, err)
		}
	}
	return tx.Commit()
}
