package trackfolio

import (
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"

	"github.com/rs/zerolog"
)

// Record is one normalized report row. All figures are pre-formatted
// so that identical inputs always produce identical bytes.
type Record []string

// Schema names a report table and the leading columns that form its
// upsert key.
type Schema struct {
	Name    string
	Columns []string
	Key     int
}

var (
	// SummarySchema holds one row per reconstructed day.
	SummarySchema = Schema{
		Name: "portfolio_summary",
		Columns: []string{
			"date", "status", "total_value", "cost_basis",
			"daily_pl", "daily_return_pct", "cumulative_pl", "cumulative_return_pct",
		},
		Key: 1,
	}
	// DetailSchema holds one row per day and held instrument.
	DetailSchema = Schema{
		Name: "position_detail",
		Columns: []string{
			"date", "ticker", "quantity", "average_cost", "cost_basis",
			"close", "value", "day_change_pct", "daily_pl",
			"unrealized_pl", "unrealized_pl_pct", "weight_pct",
		},
		Key: 2,
	}
	// InstrumentSchema keeps only the most recent row per instrument.
	InstrumentSchema = Schema{
		Name: "instrument_summary",
		Columns: []string{
			"ticker", "date", "quantity", "average_cost", "cost_basis",
			"close", "value", "unrealized_pl", "unrealized_pl_pct", "days_tracked",
		},
		Key: 1,
	}
	// DashboardSchema holds one row per portfolio-level metric.
	DashboardSchema = Schema{
		Name:    "dashboard",
		Columns: []string{"metric", "value"},
		Key:     1,
	}
)

func fmtMoney(m *Money) string {
	if m == nil {
		return ""
	}
	return m.Fixed(2)
}

func fmtPct(p *Percent) string {
	if p == nil {
		return ""
	}
	return p.Fixed(6)
}

// SummaryRecords flattens snapshots into SummarySchema rows.
func SummaryRecords(h *History) []Record {
	out := make([]Record, 0, len(h.Snapshots))
	for _, s := range h.Snapshots {
		cb := s.CostBasis
		out = append(out, Record{
			s.Date.String(),
			string(s.Status),
			fmtMoney(s.TotalValue),
			fmtMoney(&cb),
			fmtMoney(s.DailyPL),
			fmtPct(s.DailyReturn),
			fmtMoney(s.CumulativePL),
			fmtPct(s.CumulativeReturn),
		})
	}
	return out
}

// DetailRecords flattens position rows into DetailSchema rows.
func DetailRecords(h *History) []Record {
	out := make([]Record, 0, len(h.Positions))
	for _, p := range h.Positions {
		avg, cb := p.AverageCost, p.CostBasis
		out = append(out, Record{
			p.Date.String(),
			p.Ticker,
			p.Quantity.String(),
			fmtMoney(&avg),
			fmtMoney(&cb),
			fmtMoney(p.Close),
			fmtMoney(p.Value),
			fmtPct(p.DayChange),
			fmtMoney(p.DailyPL),
			fmtMoney(p.UnrealizedPL),
			fmtPct(p.UnrealizedPLPct),
			fmtPct(p.Weight),
		})
	}
	return out
}

// InstrumentRecords keeps, per ticker, the latest position row of the
// run, so the table always reflects the most recent known state.
func InstrumentRecords(h *History) []Record {
	latest := make(map[string]DailyPosition)
	tracked := make(map[string]int)
	for _, p := range h.Positions {
		tracked[p.Ticker]++
		if prev, ok := latest[p.Ticker]; !ok || !p.Date.Before(prev.Date) {
			latest[p.Ticker] = p
		}
	}
	tickers := make([]string, 0, len(latest))
	for t := range latest {
		tickers = append(tickers, t)
	}
	sort.Strings(tickers)

	out := make([]Record, 0, len(tickers))
	for _, t := range tickers {
		p := latest[t]
		avg, cb := p.AverageCost, p.CostBasis
		out = append(out, Record{
			p.Ticker,
			p.Date.String(),
			p.Quantity.String(),
			fmtMoney(&avg),
			fmtMoney(&cb),
			fmtMoney(p.Close),
			fmtMoney(p.Value),
			fmtMoney(p.UnrealizedPL),
			fmtPct(p.UnrealizedPLPct),
			strconv.Itoa(tracked[t]),
		})
	}
	return out
}

// DashboardRecords condenses a run into headline metrics: ending cost
// and value, daily return volatility, max drawdown of the valued
// days, and the best and worst instrument by unrealized return.
// Undefined metrics render as empty cells.
func DashboardRecords(h *History) []Record {
	var totalValue *Money
	var returns []float64
	var peak, maxDD float64
	valued := false
	for _, s := range h.Snapshots {
		if s.DailyReturn != nil {
			returns = append(returns, float64(*s.DailyReturn))
		}
		if s.TotalValue == nil {
			continue
		}
		v := *s.TotalValue
		totalValue = &v
		valued = true
		f := v.AsFloat()
		if f > peak {
			peak = f
		}
		if peak > 0 {
			if dd := (peak - f) / peak * 100; dd > maxDD {
				maxDD = dd
			}
		}
	}
	var costBasis *Money
	if n := len(h.Snapshots); n > 0 {
		cb := h.Snapshots[n-1].CostBasis
		costBasis = &cb
	}

	latest := make(map[string]DailyPosition)
	for _, p := range h.Positions {
		if prev, ok := latest[p.Ticker]; !ok || !p.Date.Before(prev.Date) {
			latest[p.Ticker] = p
		}
	}
	tickers := make([]string, 0, len(latest))
	for t := range latest {
		tickers = append(tickers, t)
	}
	sort.Strings(tickers)

	var best, worst string
	var bestPct, worstPct *Percent
	for _, t := range tickers {
		p := latest[t]
		if p.UnrealizedPLPct == nil {
			continue
		}
		if bestPct == nil || *p.UnrealizedPLPct > *bestPct {
			best, bestPct = t, p.UnrealizedPLPct
		}
		if worstPct == nil || *p.UnrealizedPLPct < *worstPct {
			worst, worstPct = t, p.UnrealizedPLPct
		}
	}

	volatility, drawdown := "", ""
	if len(returns) > 0 {
		volatility = Percent(stddev(returns)).Fixed(6)
	}
	if valued {
		drawdown = Percent(maxDD).Fixed(6)
	}
	return []Record{
		{"best_instrument", best},
		{"best_instrument_return_pct", fmtPct(bestPct)},
		{"daily_return_volatility_pct", volatility},
		{"max_drawdown_pct", drawdown},
		{"total_cost", fmtMoney(costBasis)},
		{"total_value", fmtMoney(totalValue)},
		{"worst_instrument", worst},
		{"worst_instrument_return_pct", fmtPct(worstPct)},
	}
}

// stddev is the population standard deviation.
func stddev(xs []float64) float64 {
	mean := 0.0
	for _, x := range xs {
		mean += x
	}
	mean /= float64(len(xs))
	ss := 0.0
	for _, x := range xs {
		d := x - mean
		ss += d * d
	}
	return math.Sqrt(ss / float64(len(xs)))
}

func recordKey(r Record, key int) string {
	if key > len(r) {
		key = len(r)
	}
	return strings.Join(r[:key], "\x00")
}

// Merge upserts incoming rows over existing ones. On a key conflict
// the incoming row wins. The result is sorted by key, so merging is
// idempotent: applying the same rows again changes nothing.
func Merge(existing, incoming []Record, key int) []Record {
	byKey := make(map[string]Record, len(existing)+len(incoming))
	for _, r := range existing {
		byKey[recordKey(r, key)] = r
	}
	for _, r := range incoming {
		byKey[recordKey(r, key)] = r
	}
	keys := make([]string, 0, len(byKey))
	for k := range byKey {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	out := make([]Record, 0, len(keys))
	for _, k := range keys {
		out = append(out, byKey[k])
	}
	return out
}

// Exporter merges history rows into a tabular sink. Writers to the
// same sink must not run concurrently, merge is a read-modify-write
// over whole tables.
type Exporter struct {
	sink TabularSink
	log  zerolog.Logger
}

func NewExporter(sink TabularSink, log zerolog.Logger) *Exporter {
	return &Exporter{sink: sink, log: log.With().Str("component", "export").Logger()}
}

// Export writes the three report tables. With overwrite set, previous
// sink content is discarded, otherwise new rows merge over it. Both
// modes converge to the same content given the same cumulative runs.
func (e *Exporter) Export(h *History, overwrite bool) error {
	tables := []struct {
		schema Schema
		rows   []Record
	}{
		{SummarySchema, SummaryRecords(h)},
		{DetailSchema, DetailRecords(h)},
		{InstrumentSchema, InstrumentRecords(h)},
		{DashboardSchema, DashboardRecords(h)},
	}
	for _, t := range tables {
		var existing []Record
		if !overwrite {
			var err error
			existing, err = e.sink.Read(t.schema.Name)
			if err != nil {
				return fmt.Errorf("reading %s: %w", t.schema.Name, err)
			}
		}
		merged := Merge(existing, t.rows, t.schema.Key)
		if err := e.sink.Write(t.schema.Name, t.schema.Columns, merged); err != nil {
			return fmt.Errorf("writing %s: %w", t.schema.Name, err)
		}
		e.log.Debug().Str("table", t.schema.Name).Int("rows", len(merged)).Msg("table written")
	}
	return nil
}
