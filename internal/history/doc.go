// Package history keeps an optional SQLite ledger of indexer runs.
//
// Each run gets a row with its counters, plus one row per record it appended
// to a store. The ledger is diagnostic only: stores on disk remain the source
// of truth and nothing here is consulted for deduplication.
package history
