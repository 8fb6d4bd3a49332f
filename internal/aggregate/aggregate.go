package aggregate

import (
	"iter"
	"sort"

	"github.com/samber/lo"

	"github.com/akselmisiel/DonutSMP-advanced-market-tracker/internal/identity"
	"github.com/akselmisiel/DonutSMP-advanced-market-tracker/internal/model"
)

// Source is the slice of the store the aggregator reads. Satisfied by
// *store.Store.
type Source interface {
	QueryRange(window model.Window, keyFilter string) iter.Seq[model.Transaction]
}

// Aggregator groups stored transactions by identity key and computes
// windowed statistics. Stateless; safe for concurrent use.
type Aggregator struct {
	source Source
}

// New creates an Aggregator reading from source.
func New(source Source) *Aggregator {
	return &Aggregator{source: source}
}

// group accumulates one identity key's transactions during a scan.
type group struct {
	item    model.Item
	total   int64
	count   int
	sellers map[string]struct{}
	prices  []int64
}

// MarketCapReport groups the window's transactions by identity key and
// returns one MarketGroup per key, sorted by total value descending, then
// transaction count descending, then identity key ascending. Transactions
// with a blacklisted base id or a price outside [priceMin, priceMax] are
// discarded before grouping.
func (a *Aggregator) MarketCapReport(window model.Window, priceMin, priceMax int64, blacklist map[string]struct{}) []model.MarketGroup {
	groups := make(map[string]*group)

	for tx := range a.source.QueryRange(window, "") {
		if _, banned := blacklist[tx.Item.BaseID]; banned {
			continue
		}
		if tx.Price < priceMin || tx.Price > priceMax {
			continue
		}

		key := identity.Key(tx.Item)
		g, ok := groups[key]
		if !ok {
			g = &group{item: tx.Item, sellers: make(map[string]struct{})}
			groups[key] = g
		}
		g.total += tx.Price
		g.count++
		g.sellers[tx.Seller] = struct{}{}
		g.prices = append(g.prices, tx.Price)
	}

	report := make([]model.MarketGroup, 0, len(groups))
	for key, g := range groups {
		sort.Slice(g.prices, func(i, j int) bool { return g.prices[i] < g.prices[j] })

		sellers := lo.Keys(g.sellers)
		sort.Strings(sellers)

		report = append(report, model.MarketGroup{
			IdentityKey: key,
			Item:        g.item,
			Total:       g.total,
			Count:       g.count,
			Sellers:     sellers,
			Prices:      g.prices,
			Median:      medianOfSorted(g.prices),
		})
	}

	sort.Slice(report, func(i, j int) bool {
		if report[i].Total != report[j].Total {
			return report[i].Total > report[j].Total
		}
		if report[i].Count != report[j].Count {
			return report[i].Count > report[j].Count
		}
		return report[i].IdentityKey < report[j].IdentityKey
	})

	return report
}

// PriceHistory returns every sale of one identity key inside the window,
// ascending by timestamp.
func (a *Aggregator) PriceHistory(identityKey string, window model.Window) []model.PricePoint {
	points := []model.PricePoint{}
	for tx := range a.source.QueryRange(window, identityKey) {
		points = append(points, model.PricePoint{
			Timestamp:     tx.Timestamp,
			Price:         tx.Price,
			Seller:        tx.Seller,
			TransactionID: tx.ID,
		})
	}
	return points
}

// HighValueSales returns the window's transactions priced at or above
// threshold, ascending by timestamp.
func (a *Aggregator) HighValueSales(window model.Window, threshold int64) []model.Transaction {
	sales := []model.Transaction{}
	for tx := range a.source.QueryRange(window, "") {
		if tx.Price >= threshold {
			sales = append(sales, tx)
		}
	}
	return sales
}

// SellersForGroup returns the per-seller sale count and total value for one
// identity key inside the window.
func (a *Aggregator) SellersForGroup(identityKey string, window model.Window) map[string]model.SellerStats {
	sellers := make(map[string]model.SellerStats)
	for tx := range a.source.QueryRange(window, identityKey) {
		s := sellers[tx.Seller]
		s.Count++
		s.Total += tx.Price
		sellers[tx.Seller] = s
	}
	return sellers
}

// medianOfSorted computes the exact multiset median of an ascending price
// list. Even counts average the two middle values; the result is exact for
// any realistic price (sums stay far below 2^53).
func medianOfSorted(prices []int64) float64 {
	n := len(prices)
	if n == 0 {
		return 0
	}
	if n%2 == 1 {
		return float64(prices[n/2])
	}
	return float64(prices[n/2-1]+prices[n/2]) / 2
}
