package trackfolio

import (
	"context"
	"fmt"
	"sort"

	"github.com/okutan/trackfolio/date"
	"github.com/rs/zerolog"
)

// DayStatus tags how a reconstructed day got its valuation.
//
// Status alone does not prove trading activity: a Normal day with
// partial quote coverage can still carry values forward.
type DayStatus string

const (
	StatusNormal          DayStatus = "NORMAL"
	StatusWeekendNoData   DayStatus = "WEEKEND_NO_DATA"
	StatusHolidayOrNoData DayStatus = "HOLIDAY_NO_DATA"
)

// DailySnapshot is the portfolio level row for one calendar day.
// Pointer fields are nil when the figure is undefined, which is not
// the same as zero.
type DailySnapshot struct {
	Date             date.Date
	TotalValue       *Money
	CostBasis        Money
	DailyPL          *Money
	DailyReturn      *Percent
	CumulativePL     *Money
	CumulativeReturn *Percent
	Status           DayStatus
}

// DailyPosition is the per instrument row for one priced day.
type DailyPosition struct {
	Date            date.Date
	Ticker          string
	Quantity        Quantity
	AverageCost     Money
	CostBasis       Money
	Close           *Money
	Value           *Money
	DayChange       *Percent
	DailyPL         *Money
	UnrealizedPL    *Money
	UnrealizedPLPct *Percent
	Weight          *Percent
}

// History is one reconstruction run over an inclusive date range.
type History struct {
	Range     date.Range
	Snapshots []DailySnapshot
	Positions []DailyPosition
}

// Engine replays the trade log day by day against stored prices and
// produces valuation history. Each run owns its own state, so runs
// over different ranges may proceed concurrently.
type Engine struct {
	trades TradeSource
	prices PriceSource
	quotes QuoteFetcher
	upsert PriceUpserter
	log    zerolog.Logger
}

// NewEngine wires the engine to its trade and price sources.
func NewEngine(trades TradeSource, prices PriceSource, log zerolog.Logger) *Engine {
	return &Engine{
		trades: trades,
		prices: prices,
		log:    log.With().Str("component", "engine").Logger(),
	}
}

// WithQuotes enables live backfill: when the price store has nothing
// for a weekday, the engine asks the feed and stores what it gets.
func (e *Engine) WithQuotes(q QuoteFetcher, up PriceUpserter) *Engine {
	e.quotes = q
	e.upsert = up
	return e
}

// Reconstruct walks every calendar day between from and to, bounds
// included and swapped if reversed, and emits one snapshot per day
// plus position rows for priced days.
func (e *Engine) Reconstruct(ctx context.Context, from, to date.Date) (*History, error) {
	trades, err := e.trades.AllTrades(ctx)
	if err != nil {
		return nil, fmt.Errorf("loading trades: %w", err)
	}
	rng := date.NewRange(from, to)

	lookup := func(d date.Date, held []string) PriceMap {
		prices, err := e.prices.PricesOn(ctx, d)
		if err != nil {
			// a broken lookup degrades to a no-data day
			e.log.Warn().Err(err).Stringer("date", d).Msg("price lookup failed, treating day as no-data")
			prices = nil
		}
		if e.quotes == nil || d.IsWeekend() {
			return prices
		}
		var missing []string
		for _, ticker := range held {
			if _, ok := prices[ticker]; !ok {
				missing = append(missing, ticker)
			}
		}
		if len(missing) == 0 {
			return prices
		}
		fetched, err := e.quotes.ClosingPrices(ctx, missing, d)
		if err != nil {
			e.log.Warn().Err(err).Stringer("date", d).Msg("quote backfill failed")
			return prices
		}
		if len(fetched) == 0 {
			return prices
		}
		if e.upsert != nil {
			if err := e.upsert.UpsertPrices(ctx, d, fetched); err != nil {
				e.log.Warn().Err(err).Stringer("date", d).Msg("storing backfilled prices failed")
			}
		}
		merged := make(PriceMap, len(prices)+len(fetched))
		for ticker, price := range prices {
			merged[ticker] = price
		}
		for ticker, price := range fetched {
			merged[ticker] = price
		}
		return merged
	}

	h := replay(trades, rng, lookup, e.log)
	e.log.Info().
		Stringer("from", rng.From).
		Stringer("to", rng.To).
		Int("days", len(h.Snapshots)).
		Int("position_rows", len(h.Positions)).
		Msg("history reconstructed")
	return h, nil
}

// replay is the single pass reconstruction loop. The lookup callback
// must treat failures as empty maps, replay itself never errors on
// missing data.
func replay(trades []Trade, rng date.Range, lookup func(date.Date, []string) PriceMap, log zerolog.Logger) *History {
	sorted := make([]Trade, 0, len(trades))
	for _, t := range trades {
		if !t.Date.After(rng.To) {
			sorted = append(sorted, t)
		}
	}
	SortTrades(sorted)

	h := &History{Range: rng}
	positions := make(map[string]*Position)
	lastPrice := make(map[string]Money)
	var carried *Money  // last strictly positive total, for no-data days
	var baseline *Money // first strictly positive total, fixed once set
	next := 0           // replay pointer, never rewound

	for d := range rng.Days() {
		for next < len(sorted) && !sorted[next].Date.After(d) {
			t := sorted[next]
			pos, ok := positions[t.Ticker]
			if !ok {
				pos = NewPosition(t.Ticker)
				positions[t.Ticker] = pos
			}
			// the log was validated on append, an oversell here means
			// corrupted storage, skip the trade rather than abort
			if err := pos.ApplyTrade(t); err != nil {
				log.Warn().Err(err).Str("id", t.ID).Stringer("date", t.Date).Msg("skipping unreplayable trade")
			}
			next++
		}

		held := heldTickers(positions)
		prices := lookup(d, held)

		snap := DailySnapshot{Date: d, CostBasis: costBasis(positions)}
		if len(prices) == 0 {
			if d.IsWeekend() {
				snap.Status = StatusWeekendNoData
			} else {
				snap.Status = StatusHolidayOrNoData
			}
			if carried != nil {
				v := *carried
				snap.TotalValue = &v
				if baseline != nil && baseline.IsPositive() {
					cumPL := v.Sub(*baseline)
					cum := cumPL.Ratio(*baseline)
					snap.CumulativePL = &cumPL
					snap.CumulativeReturn = &cum
				}
			}
			h.Snapshots = append(h.Snapshots, snap)
			continue
		}

		snap.Status = StatusNormal
		var total Money
		rows := make([]DailyPosition, 0, len(held))
		for _, ticker := range held {
			pos := positions[ticker]
			row := DailyPosition{
				Date:        d,
				Ticker:      ticker,
				Quantity:    pos.Quantity,
				AverageCost: pos.AverageCost(),
				CostBasis:   pos.TotalCost,
			}
			if close, ok := prices[ticker]; ok {
				value := pos.MarketValue(close)
				upl := pos.UnrealizedPL(close)
				row.Close = &close
				row.Value = &value
				row.UnrealizedPL = &upl
				if pos.TotalCost.IsPositive() {
					pct := upl.Ratio(pos.TotalCost)
					row.UnrealizedPLPct = &pct
				}
				if prev, ok := lastPrice[ticker]; ok && prev.IsPositive() {
					chg := close.Sub(prev).Ratio(prev)
					row.DayChange = &chg
					pl := close.Sub(prev).Mul(pos.Quantity)
					row.DailyPL = &pl
				} else {
					// first priced day, the move since purchase is the
					// whole of the day's profit
					pl := upl
					row.DailyPL = &pl
				}
				total = total.Add(value)
			}
			rows = append(rows, row)
		}
		// last known prices advance for every quoted ticker, held or not
		for ticker, price := range prices {
			lastPrice[ticker] = price
		}

		if total.IsPositive() {
			for i := range rows {
				if rows[i].Value != nil {
					w := rows[i].Value.Ratio(total)
					rows[i].Weight = &w
				}
			}
		}
		h.Positions = append(h.Positions, rows...)

		v := total
		snap.TotalValue = &v
		if carried != nil {
			pl := total.Sub(*carried)
			snap.DailyPL = &pl
			if carried.IsPositive() {
				r := pl.Ratio(*carried)
				snap.DailyReturn = &r
			}
		}
		if baseline == nil && total.IsPositive() {
			b := total
			baseline = &b
		}
		if baseline != nil {
			cumPL := total.Sub(*baseline)
			cum := cumPL.Ratio(*baseline)
			snap.CumulativePL = &cumPL
			snap.CumulativeReturn = &cum
		}
		// only strictly positive totals replace the carried value, a
		// liquidated day never becomes the no-data fallback
		if total.IsPositive() {
			c := total
			carried = &c
		}
		h.Snapshots = append(h.Snapshots, snap)
	}
	return h
}

func sortedPositions(positions map[string]*Position) []*Position {
	tickers := make([]string, 0, len(positions))
	for t := range positions {
		tickers = append(tickers, t)
	}
	sort.Strings(tickers)
	out := make([]*Position, 0, len(tickers))
	for _, t := range tickers {
		out = append(out, positions[t])
	}
	return out
}

func heldTickers(positions map[string]*Position) []string {
	var out []string
	for _, p := range sortedPositions(positions) {
		if p.Quantity.IsPositive() {
			out = append(out, p.Ticker)
		}
	}
	return out
}

func costBasis(positions map[string]*Position) Money {
	var sum Money
	for _, p := range positions {
		sum = sum.Add(p.TotalCost)
	}
	return sum
}
