// Package store implements the deduplicated transaction log.
//
// The store is append-only: transactions are never mutated or deleted once
// accepted. On disk it is a JSON-lines log replayed at startup; in memory
// it keeps a timestamp-ordered index for range scans and a per-identity-key
// index for grouped lookups.
//
// Writers are serialized (only the poller ingests); any number of readers
// may scan concurrently and observe either the pre- or post-ingestion state
// of a given batch, never a torn one.
package store
