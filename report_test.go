package trackfolio

import (
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleHistory(t *testing.T) *History {
	t.Helper()
	trades := []Trade{
		buy("ACME", "2024-03-01", 100, 95),
		buy("ZETA", "2024-03-01", 10, 40),
	}
	src := prices(map[string]map[string]float64{
		"2024-03-01": {"ACME": 100, "ZETA": 42},
		"2024-03-04": {"ACME": 101, "ZETA": 41},
	})
	return reconstruct(t, trades, src, "2024-03-01", "2024-03-04")
}

func TestMergeKeepsLatestOnConflict(t *testing.T) {
	existing := []Record{
		{"2024-03-01", "old"},
		{"2024-03-02", "kept"},
	}
	incoming := []Record{
		{"2024-03-01", "new"},
		{"2024-03-03", "added"},
	}
	got := Merge(existing, incoming, 1)
	want := []Record{
		{"2024-03-01", "new"},
		{"2024-03-02", "kept"},
		{"2024-03-03", "added"},
	}
	assert.Equal(t, want, got)
}

func TestMergeCompositeKey(t *testing.T) {
	existing := []Record{{"2024-03-01", "ACME", "old"}}
	incoming := []Record{
		{"2024-03-01", "ZETA", "other instrument, no conflict"},
		{"2024-03-01", "ACME", "new"},
	}
	got := Merge(existing, incoming, 2)
	require.Len(t, got, 2)
	assert.Equal(t, Record{"2024-03-01", "ACME", "new"}, got[0])
	assert.Equal(t, Record{"2024-03-01", "ZETA", "other instrument, no conflict"}, got[1])
}

func TestExportIsIdempotent(t *testing.T) {
	h := sampleHistory(t)
	sink := newMemSink()
	exp := NewExporter(sink, zerolog.Nop())

	require.NoError(t, exp.Export(h, false))
	first := map[string]string{}
	for _, name := range []string{SummarySchema.Name, DetailSchema.Name, InstrumentSchema.Name, DashboardSchema.Name} {
		first[name] = sink.dump(name)
	}

	require.NoError(t, exp.Export(h, false))
	for name, before := range first {
		assert.Equal(t, before, sink.dump(name), "table %s changed on re-export", name)
	}
}

func TestOverwriteAndMergeConverge(t *testing.T) {
	h := sampleHistory(t)

	merged := newMemSink()
	expMerged := NewExporter(merged, zerolog.Nop())
	require.NoError(t, expMerged.Export(h, false))
	require.NoError(t, expMerged.Export(h, false))

	fresh := newMemSink()
	require.NoError(t, NewExporter(fresh, zerolog.Nop()).Export(h, true))

	for _, name := range []string{SummarySchema.Name, DetailSchema.Name, InstrumentSchema.Name, DashboardSchema.Name} {
		assert.Equal(t, fresh.dump(name), merged.dump(name), "table %s diverged between modes", name)
	}
}

func TestIncrementalExportSupersedesOverlap(t *testing.T) {
	trades := []Trade{buy("ACME", "2024-03-01", 10, 10)}
	firstRun := reconstruct(t, trades, prices(map[string]map[string]float64{
		"2024-03-01": {"ACME": 10},
	}), "2024-03-01", "2024-03-02")

	// the price for the second day arrives later, the re-export of an
	// overlapping range must replace the stale no-data row
	secondRun := reconstruct(t, trades, prices(map[string]map[string]float64{
		"2024-03-01": {"ACME": 10},
		"2024-03-02": {"ACME": 12},
	}), "2024-03-02", "2024-03-02")

	sink := newMemSink()
	exp := NewExporter(sink, zerolog.Nop())
	require.NoError(t, exp.Export(firstRun, false))
	require.NoError(t, exp.Export(secondRun, false))

	rows, err := sink.Read(SummarySchema.Name)
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "2024-03-01", rows[0][0])
	assert.Equal(t, "2024-03-02", rows[1][0])
	assert.Equal(t, string(StatusNormal), rows[1][1], "stale weekend/no-data row should be superseded")
	assert.Equal(t, "120.00", rows[1][2])
}

func TestInstrumentRecordsKeepLatestPerTicker(t *testing.T) {
	h := sampleHistory(t)
	rows := InstrumentRecords(h)
	require.Len(t, rows, 2)
	assert.Equal(t, "ACME", rows[0][0])
	assert.Equal(t, "2024-03-04", rows[0][1])
	assert.Equal(t, "ZETA", rows[1][0])
	assert.Equal(t, "2024-03-04", rows[1][1])
}

func TestDashboardRecords(t *testing.T) {
	h := sampleHistory(t)
	rows := DashboardRecords(h)
	want := []Record{
		{"best_instrument", "ACME"},
		{"best_instrument_return_pct", "6.315789"},
		{"daily_return_volatility_pct", "0.000000"},
		{"max_drawdown_pct", "0.000000"},
		{"total_cost", "9900.00"},
		{"total_value", "10510.00"},
		{"worst_instrument", "ZETA"},
		{"worst_instrument_return_pct", "2.500000"},
	}
	assert.Equal(t, want, rows)
}

func TestDashboardDrawdownAndVolatility(t *testing.T) {
	trades := []Trade{buy("ACME", "2024-03-04", 10, 10)}
	src := prices(map[string]map[string]float64{
		"2024-03-04": {"ACME": 10},
		"2024-03-05": {"ACME": 12},
		"2024-03-06": {"ACME": 9},
	})
	h := reconstruct(t, trades, src, "2024-03-04", "2024-03-06")
	rows := DashboardRecords(h)
	byMetric := map[string]string{}
	for _, r := range rows {
		byMetric[r[0]] = r[1]
	}
	// peak 120, trough 90: (120-90)/120 = 25%
	assert.Equal(t, "25.000000", byMetric["max_drawdown_pct"])
	// returns +20% and -25%, population stddev = 22.5
	assert.Equal(t, "22.500000", byMetric["daily_return_volatility_pct"])
}

func TestDashboardUndefinedWithoutValuation(t *testing.T) {
	trades := []Trade{buy("ACME", "2024-03-04", 10, 10)}
	h := reconstruct(t, trades, prices(nil), "2024-03-04", "2024-03-04")
	rows := DashboardRecords(h)
	byMetric := map[string]string{}
	for _, r := range rows {
		byMetric[r[0]] = r[1]
	}
	assert.Equal(t, "", byMetric["total_value"])
	assert.Equal(t, "", byMetric["daily_return_volatility_pct"])
	assert.Equal(t, "", byMetric["max_drawdown_pct"])
	assert.Equal(t, "", byMetric["best_instrument"])
	assert.Equal(t, "100.00", byMetric["total_cost"])
}

func TestRecordFormattingOfUndefined(t *testing.T) {
	// the first snapshot has no prior value, its daily figures render empty
	h := sampleHistory(t)
	rows := SummaryRecords(h)
	require.NotEmpty(t, rows)
	assert.Equal(t, "", rows[0][4], "daily_pl")
	assert.Equal(t, "", rows[0][5], "daily_return_pct")
	assert.Equal(t, "10420.00", rows[0][2], "total_value")
}
