package trackfolio

import (
	"errors"
	"testing"

	"github.com/okutan/trackfolio/date"
)

func TestFromTradesReplayIsDeterministic(t *testing.T) {
	trades := []Trade{
		buy("ACME", "2024-03-02", 50, 13),
		buy("ZETA", "2024-03-01", 5, 100),
		buy("ACME", "2024-03-01", 100, 10),
		sell("ACME", "2024-03-03", 30, 15),
	}

	first, err := FromTrades(trades)
	if err != nil {
		t.Fatal(err)
	}
	second, err := FromTrades(trades)
	if err != nil {
		t.Fatal(err)
	}
	for _, ticker := range first.Tickers() {
		a, b := first.Position(ticker), second.Position(ticker)
		if !a.Quantity.Equal(b.Quantity) || !a.TotalCost.Equal(b.TotalCost) || !a.RealizedPL.Equal(b.RealizedPL) {
			t.Errorf("%s: replay diverged: %+v != %+v", ticker, a, b)
		}
	}
	// sorting happens on a copy, the input keeps its order
	if trades[0].Ticker != "ACME" || trades[0].Date != date.MustParse("2024-03-02") {
		t.Error("FromTrades mutated its input slice")
	}
}

func TestFromTradesSortsBeforeReplay(t *testing.T) {
	// the sell precedes the buy in slice order but follows it by date
	trades := []Trade{
		sell("ACME", "2024-03-05", 10, 12),
		buy("ACME", "2024-03-01", 10, 10),
	}
	p, err := FromTrades(trades)
	if err != nil {
		t.Fatalf("date ordering should make this replay valid: %v", err)
	}
	if !p.Position("ACME").Quantity.IsZero() {
		t.Errorf("quantity = %s, want 0", p.Position("ACME").Quantity)
	}
}

func TestFromTradesRejectsOversell(t *testing.T) {
	trades := []Trade{
		buy("ACME", "2024-03-01", 10, 10),
		sell("ACME", "2024-03-02", 11, 12),
	}
	_, err := FromTrades(trades)
	var oversell *OverSellError
	if !errors.As(err, &oversell) {
		t.Fatalf("expected *OverSellError, got %v", err)
	}
}

func TestFromTradesUntilCutoff(t *testing.T) {
	trades := []Trade{
		buy("ACME", "2024-03-01", 10, 10),
		buy("ACME", "2024-03-10", 5, 20),
	}
	p, err := FromTradesUntil(trades, date.MustParse("2024-03-05"))
	if err != nil {
		t.Fatal(err)
	}
	pos := p.Position("ACME")
	if !pos.Quantity.Equal(Q(10)) {
		t.Errorf("quantity at cutoff = %s, want 10", pos.Quantity)
	}
	if !pos.TotalCost.Equal(M(100, "USD")) {
		t.Errorf("cost at cutoff = %s, want $100.00", pos.TotalCost)
	}
}

func TestHeldAndTotals(t *testing.T) {
	trades := []Trade{
		buy("ACME", "2024-03-01", 10, 10),
		buy("ZETA", "2024-03-01", 5, 100),
		sell("ZETA", "2024-03-02", 5, 110),
	}
	p, err := FromTrades(trades)
	if err != nil {
		t.Fatal(err)
	}
	held := p.Held()
	if len(held) != 1 || held[0].Ticker != "ACME" {
		t.Fatalf("held = %v, want only ACME", held)
	}
	if !p.TotalCost().Equal(M(100, "USD")) {
		t.Errorf("total cost = %s, want $100.00", p.TotalCost())
	}
	if !p.TotalRealizedPL().Equal(M(50, "USD")) {
		t.Errorf("realized = %s, want $50.00", p.TotalRealizedPL())
	}
}
