// Package store persists the local trade history.
//
// The history is a convenience cache for display: the settlement reference
// (transaction hash) is authoritative, so callers report store failures as
// warnings and never roll back a settled trade.
//
// Backends:
//   - Memory: process-local, optional record quota
//   - Postgres: append-only trade_history table (pgxpool)
//
// Both return records in insertion order filtered by (event, timeline).
package store
