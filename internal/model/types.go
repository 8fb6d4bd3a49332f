package model

// -----------------------------------------------------------------------------
// Stored Types
// -----------------------------------------------------------------------------

// Transaction represents one recorded auction sale. Transactions are
// immutable once accepted by the store.
type Transaction struct {
	ID        string `json:"id,omitempty"` // Upstream transaction id; empty when upstream omits it
	Timestamp int64  `json:"ts"`           // Sale time (seconds since epoch), upstream-supplied
	Seller    string `json:"seller"`       // Seller account name
	Price     int64  `json:"price"`        // Sale price (smallest currency unit)
	Item      Item   `json:"item"`         // What was sold
}

// Item is the structural description of a sold item. Container items
// (shulker boxes) carry their contents recursively; contents order is
// significant for grouping.
type Item struct {
	BaseID       string        `json:"base_id"`            // Material/type identifier (e.g. "diamond_sword")
	Count        int           `json:"count"`              // Stack size, must be positive
	Enchantments []Enchantment `json:"enchants,omitempty"` // Unordered enchantment set
	Trim         *Trim         `json:"trim,omitempty"`     // Armor trim, nil when absent
	Contents     []Item        `json:"contents,omitempty"` // Nested items, order-preserving
}

// Enchantment is one (id, level) pair on an item.
type Enchantment struct {
	ID    string `json:"id"`
	Level int    `json:"level"`
}

// Trim is an armor trim applied to an item.
type Trim struct {
	Material string `json:"material"`
	Pattern  string `json:"pattern"`
}

// -----------------------------------------------------------------------------
// Derived Types
// -----------------------------------------------------------------------------

// MarketGroup is the aggregation result for one identity key within a
// window. Recomputed on every query; never persisted.
type MarketGroup struct {
	IdentityKey string  `json:"identity_key"`
	Item        Item    `json:"item"`    // Representative item for the group
	Total       int64   `json:"total"`   // Market cap: sum of sale prices
	Count       int     `json:"count"`   // Number of transactions
	Sellers     []string `json:"sellers"` // Distinct sellers, sorted
	Prices      []int64 `json:"prices"`  // All sale prices, sorted ascending
	Median      float64 `json:"median"`  // Exact multiset median of Prices
}

// SellerStats is the per-seller breakdown for one group.
type SellerStats struct {
	Count int   `json:"count"`
	Total int64 `json:"total"`
}

// PricePoint is one sale on a price-history timeline.
type PricePoint struct {
	Timestamp     int64  `json:"ts"`
	Price         int64  `json:"price"`
	Seller        string `json:"seller"`
	TransactionID string `json:"transaction_id,omitempty"`
}
