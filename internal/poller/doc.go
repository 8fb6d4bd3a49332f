// Package poller implements the ingestion loop.
//
// The poller:
//   - Fetches recent sale pages from the auction API on a fixed interval
//   - Validates raw records and drops malformed ones without failing the cycle
//   - Appends the remainder to the store, which deduplicates across polls
//   - Treats upstream failures as transient: log, skip cycle, retry next tick
//
// Nothing else writes to the store.
package poller
