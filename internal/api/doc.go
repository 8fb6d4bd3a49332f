// Package api provides the DonutSMP auction API client.
//
// Endpoints:
//   - /v1/auction/transactions/{page}: recent sales, newest first
//   - /v1/auction/list/{page}: live listings
//   - /v1/stats/{player}: player statistics (display enrichment only)
//
// All requests carry the account token in the Authorization header.
package api
