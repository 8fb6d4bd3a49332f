// Package server exposes the tracker's query API over HTTP.
//
// Endpoints:
//   - GET /api/report: market-cap report (window, price range, blacklist)
//   - GET /api/history/{key}: price history for one identity key
//   - GET /api/high-value: sales at or above a threshold
//   - GET /api/sellers/{key}: seller breakdown for one identity key
//   - GET /api/stats/{player}: cached upstream player stats
//   - GET /api/live: websocket feed of newly ingested transactions
//   - GET /health: liveness and store size
//
// Timestamps in responses are epoch seconds; money is integer.
package server
