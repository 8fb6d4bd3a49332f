// Package metrics provides Prometheus collectors for the tracker.
//
// Key metrics:
//   - Poll cycle counts and upstream fetch errors
//   - Records fetched / rejected / inserted / deduplicated
//   - Store size
//   - Query request counts per endpoint
package metrics
