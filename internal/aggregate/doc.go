// Package aggregate computes windowed market statistics over the
// transaction store.
//
// All results are pure projections: nothing here is persisted, and every
// report is recomputed from the store's committed history at call time.
// Filters (price range, blacklist) are query-time parameters only.
package aggregate
