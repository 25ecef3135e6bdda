package trackfolio

import (
	"context"
	"fmt"

	"github.com/okutan/trackfolio/date"
)

// in-memory fakes for the collaborator contracts

type memTrades struct {
	trades []Trade
	err    error
}

func (m *memTrades) AllTrades(ctx context.Context) ([]Trade, error) {
	if m.err != nil {
		return nil, m.err
	}
	out := make([]Trade, len(m.trades))
	copy(out, m.trades)
	return out, nil
}

func (m *memTrades) AppendTrade(ctx context.Context, t Trade) error {
	if m.err != nil {
		return m.err
	}
	m.trades = append(m.trades, t)
	return nil
}

type memPrices struct {
	byDay map[string]PriceMap
	err   error
}

func (m *memPrices) PricesOn(ctx context.Context, day date.Date) (PriceMap, error) {
	if m.err != nil {
		return nil, m.err
	}
	return m.byDay[day.String()], nil
}

func (m *memPrices) UpsertPrices(ctx context.Context, day date.Date, prices PriceMap) error {
	if m.byDay == nil {
		m.byDay = make(map[string]PriceMap)
	}
	pm := m.byDay[day.String()]
	if pm == nil {
		pm = make(PriceMap)
		m.byDay[day.String()] = pm
	}
	for t, p := range prices {
		pm[t] = p
	}
	return nil
}

type memSink struct {
	tables  map[string][]Record
	headers map[string][]string
}

func newMemSink() *memSink {
	return &memSink{tables: make(map[string][]Record), headers: make(map[string][]string)}
}

func (m *memSink) Read(table string) ([]Record, error) {
	return m.tables[table], nil
}

func (m *memSink) Write(table string, header []string, rows []Record) error {
	m.headers[table] = header
	m.tables[table] = rows
	return nil
}

// dump renders a table as one comparable string.
func (m *memSink) dump(table string) string {
	s := fmt.Sprintf("%v\n", m.headers[table])
	for _, r := range m.tables[table] {
		s += fmt.Sprintf("%v\n", r)
	}
	return s
}

func mustTrade(t Trade, err error) Trade {
	if err != nil {
		panic(err)
	}
	return t
}

func buy(ticker, day string, qty int, price float64) Trade {
	return mustTrade(NewTrade(ticker, date.MustParse(day), "", Buy, Q(qty), M(price, "USD")))
}

func sell(ticker, day string, qty int, price float64) Trade {
	return mustTrade(NewTrade(ticker, date.MustParse(day), "", Sell, Q(qty), M(price, "USD")))
}
