package query

import (
	"errors"
	"iter"
	"testing"
	"time"

	"github.com/akselmisiel/DonutSMP-advanced-market-tracker/internal/aggregate"
	"github.com/akselmisiel/DonutSMP-advanced-market-tracker/internal/identity"
	"github.com/akselmisiel/DonutSMP-advanced-market-tracker/internal/model"
)

type fixedSource struct {
	txs []model.Transaction
}

func (s *fixedSource) QueryRange(window model.Window, keyFilter string) iter.Seq[model.Transaction] {
	return func(yield func(model.Transaction) bool) {
		for _, tx := range s.txs {
			if !window.Contains(tx.Timestamp) {
				continue
			}
			if keyFilter != "" && identity.Key(tx.Item) != keyFilter {
				continue
			}
			if !yield(tx) {
				return
			}
		}
	}
}

func newService(txs ...model.Transaction) *Service {
	agg := aggregate.New(&fixedSource{txs: txs})
	fixedNow := func() time.Time { return time.Unix(1_000_000, 0) }
	return New(agg, fixedNow)
}

func TestResolve_NamedWindows(t *testing.T) {
	s := newService()

	tests := []struct {
		name  string
		span  int64
	}{
		{"1h", 3600},
		{"6h", 6 * 3600},
		{"1d", 24 * 3600},
		{"1w", 7 * 24 * 3600},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w, err := s.Resolve(WindowParams{Name: tt.name})
			if err != nil {
				t.Fatalf("Resolve(%s) failed: %v", tt.name, err)
			}
			if w.End != 1_000_000 {
				t.Errorf("End = %d, want now (1000000)", w.End)
			}
			if w.End-w.Start != tt.span {
				t.Errorf("span = %d, want %d", w.End-w.Start, tt.span)
			}
		})
	}
}

func TestResolve_RejectsInvertedWindow(t *testing.T) {
	s := newService()

	_, err := s.Resolve(WindowParams{Start: 500, End: 100})
	var verr *model.ValidationError
	if !errors.As(err, &verr) {
		t.Errorf("expected ValidationError for inverted window, got %v", err)
	}
}

func TestResolve_RejectsUnknownShorthand(t *testing.T) {
	s := newService()

	if _, err := s.Resolve(WindowParams{Name: "1y"}); err == nil {
		t.Error("expected error for unknown shorthand 1y")
	}
}

func TestMarketCapReport_ParamValidation(t *testing.T) {
	s := newService()

	if _, err := s.MarketCapReport(ReportParams{
		Window:   WindowParams{Start: 0, End: 100},
		PriceMin: -1,
	}); err == nil {
		t.Error("expected error for negative price_min")
	}

	if _, err := s.MarketCapReport(ReportParams{
		Window:   WindowParams{Start: 0, End: 100},
		PriceMin: 2000,
		PriceMax: 1000,
	}); err == nil {
		t.Error("expected error for min > max")
	}
}

func TestMarketCapReport_NoMatchesIsEmptyNotError(t *testing.T) {
	s := newService(model.Transaction{
		ID: "t1", Timestamp: 100, Seller: "A", Price: 50,
		Item: model.Item{BaseID: "diamond", Count: 1},
	})

	report, err := s.MarketCapReport(ReportParams{
		Window: WindowParams{Start: 900, End: 950},
	})
	if err != nil {
		t.Fatalf("empty window returned error: %v", err)
	}
	if len(report) != 0 {
		t.Errorf("got %d groups, want 0", len(report))
	}
}

func TestPriceHistoryForItem_ResolvesIdentityKey(t *testing.T) {
	item := model.Item{
		BaseID: "diamond_sword",
		Count:  1,
		Enchantments: []model.Enchantment{
			{ID: "sharpness", Level: 5},
			{ID: "unbreaking", Level: 3},
		},
	}
	s := newService(
		model.Transaction{ID: "t1", Timestamp: 100, Seller: "A", Price: 500, Item: item},
		model.Transaction{ID: "t2", Timestamp: 200, Seller: "B", Price: 10,
			Item: model.Item{BaseID: "diamond_sword", Count: 1}},
	)

	// Same item with enchantments listed in another order must match.
	target := model.Item{
		BaseID: "diamond_sword",
		Count:  1,
		Enchantments: []model.Enchantment{
			{ID: "unbreaking", Level: 3},
			{ID: "sharpness", Level: 5},
		},
	}
	points, err := s.PriceHistoryForItem(target, WindowParams{Start: 0, End: 1000})
	if err != nil {
		t.Fatalf("PriceHistoryForItem failed: %v", err)
	}
	if len(points) != 1 || points[0].TransactionID != "t1" {
		t.Errorf("points = %+v, want just t1", points)
	}
}

func TestHighValueSales_RejectsNegativeThreshold(t *testing.T) {
	s := newService()

	_, err := s.HighValueSales(WindowParams{Start: 0, End: 100}, -5)
	var verr *model.ValidationError
	if !errors.As(err, &verr) {
		t.Errorf("expected ValidationError, got %v", err)
	}
}

func TestSellersForGroup_RequiresKey(t *testing.T) {
	s := newService()

	if _, err := s.SellersForGroup("", WindowParams{Start: 0, End: 100}); err == nil {
		t.Error("expected error for empty identity key")
	}
}
