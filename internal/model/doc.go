// Package model defines shared data types used across the market tracker.
//
// Conventions:
//   - Prices: int64 in the smallest currency unit
//   - Timestamps: int64 seconds since Unix epoch
//   - Identity keys: canonical strings produced by the identity package
package model
