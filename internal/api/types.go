package api

// TransactionsResponse wraps one page of historical sales.
type TransactionsResponse struct {
	Status int              `json:"status"`
	Result []RawTransaction `json:"result"`
}

// ListingsResponse wraps one page of live auction listings.
type ListingsResponse struct {
	Status int          `json:"status"`
	Result []RawListing `json:"result"`
}

// StatsResponse wraps a player statistics lookup.
type StatsResponse struct {
	Status int         `json:"status"`
	Result PlayerStats `json:"result"`
}

// RawTransaction is one sale record as served by the auction API.
type RawTransaction struct {
	ID                string    `json:"id"`
	UnixMillisSold    int64     `json:"unixMillisDateSold"`
	Price             int64     `json:"price"`
	Seller            RawPlayer `json:"seller"`
	Item              RawItem   `json:"item"`
}

// RawListing is one live listing. Listings are not ingested into the store;
// they back the live-listings passthrough only.
type RawListing struct {
	ID              string    `json:"id"`
	UnixMillisListed int64    `json:"unixMillisDateListed"`
	Price           int64     `json:"price"`
	Seller          RawPlayer `json:"seller"`
	Item            RawItem   `json:"item"`
}

// RawPlayer identifies a player on either side of a sale.
type RawPlayer struct {
	Name string `json:"name"`
	UUID string `json:"uuid,omitempty"`
}

// RawItem mirrors the upstream item description, recursively for shulker
// contents.
type RawItem struct {
	ID          string           `json:"id"`
	Count       int              `json:"count"`
	DisplayName string           `json:"display_name,omitempty"`
	Enchants    []RawEnchantment `json:"enchants,omitempty"`
	Trim        *RawTrim         `json:"trim,omitempty"`
	Contents    []RawItem        `json:"shulker_contents,omitempty"`
}

// RawEnchantment is one enchantment entry on an upstream item.
type RawEnchantment struct {
	ID    string `json:"id"`
	Level int    `json:"level"`
}

// RawTrim is the upstream armor trim description.
type RawTrim struct {
	Material string `json:"material"`
	Pattern  string `json:"pattern"`
}

// PlayerStats is the subset of player statistics used for seller display.
type PlayerStats struct {
	Money  string `json:"money"`
	Shards string `json:"shards,omitempty"`
}
