// Package archive mirrors ingested transactions into Postgres.
//
// The archive is optional and strictly downstream of the store: it consumes
// committed batches from a buffer, batches them again, and inserts with
// ON CONFLICT DO NOTHING so a replayed batch is harmless. Queries never
// read from it; it exists for long-term analytics outside this process.
package archive
