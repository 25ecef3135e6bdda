// Package trackfolio reconstructs and values a simulated equities
// portfolio from an append-only trade log.
//
// Trades fold into per-instrument weighted-average cost positions.
// The engine replays the log day by day over a calendar range,
// bridging days without price data by carrying the last known
// valuation forward, and emits daily snapshots and position rows that
// merge idempotently into tabular report sinks.
package trackfolio
