package trackfolio

import (
	"errors"
	"testing"

	"github.com/okutan/trackfolio/date"
)

func TestNewTradeValidation(t *testing.T) {
	day := date.MustParse("2024-03-01")
	tests := []struct {
		name   string
		ticker string
		day    date.Date
		at     string
		side   Side
		qty    Quantity
		price  Money
		ok     bool
	}{
		{name: "valid buy", ticker: "ACME", day: day, side: Buy, qty: Q(10), price: M(5.0, "USD"), ok: true},
		{name: "valid sell with time", ticker: "ACME", day: day, at: "14:30:00", side: Sell, qty: Q(1), price: M(5.0, "USD"), ok: true},
		{name: "lowercase ticker normalized", ticker: " acme ", day: day, side: Buy, qty: Q(1), price: M(1.0, "USD"), ok: true},
		{name: "empty ticker", ticker: "  ", day: day, side: Buy, qty: Q(1), price: M(1.0, "USD")},
		{name: "zero date", ticker: "ACME", side: Buy, qty: Q(1), price: M(1.0, "USD")},
		{name: "zero quantity", ticker: "ACME", day: day, side: Buy, qty: Q(0), price: M(1.0, "USD")},
		{name: "negative quantity", ticker: "ACME", day: day, side: Buy, qty: Q(-3), price: M(1.0, "USD")},
		{name: "zero price", ticker: "ACME", day: day, side: Buy, qty: Q(1), price: M(0, "USD")},
		{name: "negative price", ticker: "ACME", day: day, side: Buy, qty: Q(1), price: M(-1.0, "USD")},
		{name: "unknown side", ticker: "ACME", day: day, side: Side("HOLD"), qty: Q(1), price: M(1.0, "USD")},
		{name: "bad time", ticker: "ACME", day: day, at: "25:00:00", side: Buy, qty: Q(1), price: M(1.0, "USD")},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tr, err := NewTrade(tt.ticker, tt.day, tt.at, tt.side, tt.qty, tt.price)
			if tt.ok {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				if tr.Ticker != "ACME" {
					t.Errorf("ticker = %q, want ACME", tr.Ticker)
				}
				if tr.ID == "" {
					t.Error("missing id")
				}
				return
			}
			if !errors.Is(err, ErrInvalidTrade) {
				t.Errorf("error = %v, want ErrInvalidTrade", err)
			}
		})
	}
}

func TestTradeAmount(t *testing.T) {
	tr := buy("ACME", "2024-03-01", 12, 2.5)
	if !tr.Amount().Equal(M(30, "USD")) {
		t.Errorf("amount = %s, want $30.00", tr.Amount())
	}
}

func TestSortTrades(t *testing.T) {
	a := buy("ACME", "2024-03-02", 1, 1)
	b := buy("ACME", "2024-03-01", 1, 1)
	c := mustTrade(NewTrade("ACME", date.MustParse("2024-03-01"), "15:00:00", Buy, Q(1), M(1.0, "USD")))
	d := mustTrade(NewTrade("ACME", date.MustParse("2024-03-01"), "09:00:00", Buy, Q(1), M(1.0, "USD")))

	trades := []Trade{a, c, d, b}
	SortTrades(trades)

	// date first, then time with untimed trades leading, stable otherwise
	want := []string{b.ID, d.ID, c.ID, a.ID}
	for i, w := range want {
		if trades[i].ID != w {
			t.Fatalf("order[%d] = %s (%s %s), want %s", i, trades[i].ID, trades[i].Date, trades[i].Time, w)
		}
	}
}
