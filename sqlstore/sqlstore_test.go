package sqlstore

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	trackfolio "github.com/okutan/trackfolio"
	"github.com/okutan/trackfolio/date"
)

func open(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "trackfolio.db"), zerolog.Nop())
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func TestTradeRoundTrip(t *testing.T) {
	s := open(t)
	ctx := context.Background()

	in, err := trackfolio.NewTrade("ACME", date.MustParse("2024-03-01"), "14:30:00",
		trackfolio.Buy, trackfolio.Q(100), trackfolio.M(10.5, "USD"))
	require.NoError(t, err)
	require.NoError(t, s.AppendTrade(ctx, in))

	got, err := s.AllTrades(ctx)
	require.NoError(t, err)
	require.Len(t, got, 1)

	out := got[0]
	assert.Equal(t, in.ID, out.ID)
	assert.Equal(t, "ACME", out.Ticker)
	assert.Equal(t, date.MustParse("2024-03-01"), out.Date)
	assert.Equal(t, "14:30:00", out.Time)
	assert.Equal(t, trackfolio.Buy, out.Side)
	assert.True(t, out.Quantity.Equal(trackfolio.Q(100)))
	assert.True(t, out.Price.Equal(trackfolio.M(10.5, "USD")))
}

func TestAllTradesOrderedByDate(t *testing.T) {
	s := open(t)
	ctx := context.Background()

	later, err := trackfolio.NewTrade("ACME", date.MustParse("2024-03-10"), "",
		trackfolio.Buy, trackfolio.Q(1), trackfolio.M(1.0, "USD"))
	require.NoError(t, err)
	earlier, err := trackfolio.NewTrade("ACME", date.MustParse("2024-03-01"), "",
		trackfolio.Buy, trackfolio.Q(1), trackfolio.M(1.0, "USD"))
	require.NoError(t, err)

	require.NoError(t, s.AppendTrade(ctx, later))
	require.NoError(t, s.AppendTrade(ctx, earlier))

	got, err := s.AllTrades(ctx)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, earlier.ID, got[0].ID)
	assert.Equal(t, later.ID, got[1].ID)
}

func TestPricesUpsertAndLookup(t *testing.T) {
	s := open(t)
	ctx := context.Background()
	day := date.MustParse("2024-03-01")

	empty, err := s.PricesOn(ctx, day)
	require.NoError(t, err)
	assert.Empty(t, empty, "a day without data reads as an empty map")

	require.NoError(t, s.UpsertPrices(ctx, day, trackfolio.PriceMap{
		"ACME": trackfolio.M(10.0, "USD"),
		"ZETA": trackfolio.M(42.5, "USD"),
	}))
	// replace one of them
	require.NoError(t, s.UpsertPrices(ctx, day, trackfolio.PriceMap{
		"ACME": trackfolio.M(11.0, "USD"),
	}))

	got, err := s.PricesOn(ctx, day)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.True(t, got["ACME"].Equal(trackfolio.M(11.0, "USD")))
	assert.True(t, got["ZETA"].Equal(trackfolio.M(42.5, "USD")))
}

func TestSinkReadWriteAndOverwrite(t *testing.T) {
	s := open(t)
	sink := s.Sink()

	rows, err := sink.Read("portfolio_summary")
	require.NoError(t, err)
	assert.Nil(t, rows, "an unwritten table reads as empty")

	header := []string{"date", "total_value"}
	first := []trackfolio.Record{
		{"2024-03-01", "100.00"},
		{"2024-03-02", "110.00"},
	}
	require.NoError(t, sink.Write("portfolio_summary", header, first))

	got, err := sink.Read("portfolio_summary")
	require.NoError(t, err)
	assert.Equal(t, first, got)

	second := []trackfolio.Record{{"2024-03-03", "120.00"}}
	require.NoError(t, sink.Write("portfolio_summary", header, second))

	got, err = sink.Read("portfolio_summary")
	require.NoError(t, err)
	assert.Equal(t, second, got, "write replaces the whole table")
}

func TestStoreSatisfiesEngineContracts(t *testing.T) {
	var s *Store
	var _ trackfolio.TradeStore = s
	var _ trackfolio.PriceSource = s
	var _ trackfolio.PriceUpserter = s
}
