// Package query is the facade in front of the aggregation engine: it
// validates parameters, resolves window shorthands, and maps tracker
// targets onto identity keys. It adds no aggregation logic of its own.
package query

import (
	"time"

	"github.com/akselmisiel/DonutSMP-advanced-market-tracker/internal/aggregate"
	"github.com/akselmisiel/DonutSMP-advanced-market-tracker/internal/identity"
	"github.com/akselmisiel/DonutSMP-advanced-market-tracker/internal/model"
)

// Service dispatches the three tracker kinds onto aggregator operations.
type Service struct {
	agg *aggregate.Aggregator
	now func() time.Time
}

// New creates the facade. now is replaceable for tests; nil means
// time.Now.
func New(agg *aggregate.Aggregator, now func() time.Time) *Service {
	if now == nil {
		now = time.Now
	}
	return &Service{agg: agg, now: now}
}

// WindowParams is a window as supplied by a caller: either an explicit
// [Start, End] pair or a named shorthand.
type WindowParams struct {
	Name  string // "1h", "6h", "1d", "1w"; wins over Start/End when set
	Start int64
	End   int64
}

// Resolve turns the params into a validated window.
func (s *Service) Resolve(p WindowParams) (model.Window, error) {
	if p.Name != "" {
		return model.NamedWindow(p.Name, s.now())
	}
	w := model.Window{Start: p.Start, End: p.End}
	if err := w.Validate(); err != nil {
		return model.Window{}, err
	}
	return w, nil
}

// ReportParams parameterizes a market-cap report.
type ReportParams struct {
	Window    WindowParams
	PriceMin  int64
	PriceMax  int64
	Blacklist []string
}

// MarketCapReport runs the market-cap tracker operation. A window with no
// matching transactions yields an empty report, not an error.
func (s *Service) MarketCapReport(p ReportParams) ([]model.MarketGroup, error) {
	window, err := s.Resolve(p.Window)
	if err != nil {
		return nil, err
	}
	if p.PriceMin < 0 {
		return nil, &model.ValidationError{Field: "price_min", Reason: "must not be negative"}
	}
	if p.PriceMax <= 0 {
		p.PriceMax = int64(1)<<62 - 1
	}
	if p.PriceMin > p.PriceMax {
		return nil, &model.ValidationError{Field: "price_range", Reason: "min exceeds max"}
	}

	blacklist := make(map[string]struct{}, len(p.Blacklist))
	for _, id := range p.Blacklist {
		if id != "" {
			blacklist[id] = struct{}{}
		}
	}

	return s.agg.MarketCapReport(window, p.PriceMin, p.PriceMax, blacklist), nil
}

// PriceHistory runs the item-tracker operation for an already resolved
// identity key.
func (s *Service) PriceHistory(identityKey string, wp WindowParams) ([]model.PricePoint, error) {
	if identityKey == "" {
		return nil, &model.ValidationError{Field: "identity_key", Reason: "must not be empty"}
	}
	window, err := s.Resolve(wp)
	if err != nil {
		return nil, err
	}
	return s.agg.PriceHistory(identityKey, window), nil
}

// PriceHistoryForItem maps a target item description onto its identity key
// and runs the item tracker. This is how "track item" requests (including
// shulker-content matching) reach the aggregator.
func (s *Service) PriceHistoryForItem(item model.Item, wp WindowParams) ([]model.PricePoint, error) {
	if err := model.ValidateTransaction(model.Transaction{
		Timestamp: 1, Seller: "-", Price: 0, Item: item,
	}); err != nil {
		return nil, err
	}
	return s.PriceHistory(identity.Key(item), wp)
}

// HighValueSales runs the price-tracker operation.
func (s *Service) HighValueSales(wp WindowParams, threshold int64) ([]model.Transaction, error) {
	if threshold < 0 {
		return nil, &model.ValidationError{Field: "threshold", Reason: "must not be negative"}
	}
	window, err := s.Resolve(wp)
	if err != nil {
		return nil, err
	}
	return s.agg.HighValueSales(window, threshold), nil
}

// SellersForGroup returns the seller breakdown for one identity key.
func (s *Service) SellersForGroup(identityKey string, wp WindowParams) (map[string]model.SellerStats, error) {
	if identityKey == "" {
		return nil, &model.ValidationError{Field: "identity_key", Reason: "must not be empty"}
	}
	window, err := s.Resolve(wp)
	if err != nil {
		return nil, err
	}
	return s.agg.SellersForGroup(identityKey, window), nil
}
