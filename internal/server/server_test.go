package server

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"path/filepath"
	"sync/atomic"
	"testing"

	"github.com/akselmisiel/DonutSMP-advanced-market-tracker/internal/aggregate"
	"github.com/akselmisiel/DonutSMP-advanced-market-tracker/internal/api"
	"github.com/akselmisiel/DonutSMP-advanced-market-tracker/internal/model"
	"github.com/akselmisiel/DonutSMP-advanced-market-tracker/internal/query"
	"github.com/akselmisiel/DonutSMP-advanced-market-tracker/internal/store"
)

type fakeStats struct {
	calls atomic.Int32
}

func (f *fakeStats) GetPlayerStats(ctx context.Context, player string) (*api.PlayerStats, error) {
	f.calls.Add(1)
	return &api.PlayerStats{Money: "123456"}, nil
}

func (f *fakeStats) GetListings(ctx context.Context, page int) ([]api.RawListing, error) {
	return []api.RawListing{{Seller: api.RawPlayer{Name: "A"}, Price: 100}}, nil
}

func newTestServer(t *testing.T, txs ...model.Transaction) (*Server, *fakeStats) {
	t.Helper()

	st, err := store.Open(filepath.Join(t.TempDir(), "history.jsonl"), nil)
	if err != nil {
		t.Fatalf("store open failed: %v", err)
	}
	t.Cleanup(func() { st.Close() })

	if len(txs) > 0 {
		if _, err := st.Ingest(txs); err != nil {
			t.Fatalf("seed ingest failed: %v", err)
		}
	}

	queries := query.New(aggregate.New(st), nil)
	stats := &fakeStats{}
	return New(Config{}, queries, stats, st, nil, nil, nil), stats
}

func seedTx(id string, ts int64, seller string, price int64) model.Transaction {
	return model.Transaction{
		ID: id, Timestamp: ts, Seller: seller, Price: price,
		Item: model.Item{BaseID: "diamond", Count: 1},
	}
}

func get(t *testing.T, srv *Server, path string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	rec := httptest.NewRecorder()
	srv.Routes().ServeHTTP(rec, req)
	return rec
}

func TestHandleReport(t *testing.T) {
	srv, _ := newTestServer(t,
		seedTx("t1", 100, "A", 50),
		seedTx("t2", 200, "B", 70),
	)

	rec := get(t, srv, "/api/report?start=0&end=300&price_min=0&price_max=1000")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200; body %s", rec.Code, rec.Body)
	}

	var report []model.MarketGroup
	if err := json.Unmarshal(rec.Body.Bytes(), &report); err != nil {
		t.Fatalf("bad body: %v", err)
	}
	if len(report) != 1 || report[0].Total != 120 || report[0].Median != 60 {
		t.Errorf("report = %+v, want one diamond group total 120 median 60", report)
	}
}

func TestHandleReport_InvalidWindowIs400(t *testing.T) {
	srv, _ := newTestServer(t)

	rec := get(t, srv, "/api/report?start=500&end=100")
	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rec.Code)
	}

	var body errorBody
	json.Unmarshal(rec.Body.Bytes(), &body)
	if body.Error == "" {
		t.Error("expected a structured error message")
	}
}

func TestHandleReport_NoDataIsEmpty200(t *testing.T) {
	srv, _ := newTestServer(t)

	rec := get(t, srv, "/api/report?start=0&end=100")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	var report []model.MarketGroup
	json.Unmarshal(rec.Body.Bytes(), &report)
	if len(report) != 0 {
		t.Errorf("report = %+v, want empty", report)
	}
}

func TestHandleHistory(t *testing.T) {
	srv, _ := newTestServer(t,
		seedTx("t1", 100, "A", 50),
		seedTx("t2", 200, "B", 70),
	)

	key := url.PathEscape("diamond|1|-|-|[]")
	rec := get(t, srv, "/api/history/"+key+"?start=0&end=300")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200; body %s", rec.Code, rec.Body)
	}

	var points []model.PricePoint
	if err := json.Unmarshal(rec.Body.Bytes(), &points); err != nil {
		t.Fatalf("bad body: %v", err)
	}
	if len(points) != 2 || points[0].Timestamp != 100 {
		t.Errorf("points = %+v, want 2 ascending", points)
	}
}

func TestHandleHighValue(t *testing.T) {
	srv, _ := newTestServer(t,
		seedTx("t1", 100, "A", 50),
		seedTx("t2", 200, "B", 7000),
	)

	rec := get(t, srv, "/api/high-value?start=0&end=300&threshold=1000")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	var sales []model.Transaction
	json.Unmarshal(rec.Body.Bytes(), &sales)
	if len(sales) != 1 || sales[0].ID != "t2" {
		t.Errorf("sales = %+v, want just t2", sales)
	}

	rec = get(t, srv, "/api/high-value?start=0&end=300&threshold=abc")
	if rec.Code != http.StatusBadRequest {
		t.Errorf("non-integer threshold: status = %d, want 400", rec.Code)
	}
}

func TestHandlePlayerStats_Cached(t *testing.T) {
	srv, stats := newTestServer(t)

	for i := 0; i < 3; i++ {
		rec := get(t, srv, "/api/stats/Steve")
		if rec.Code != http.StatusOK {
			t.Fatalf("status = %d, want 200", rec.Code)
		}
	}

	if stats.calls.Load() != 1 {
		t.Errorf("upstream saw %d stats calls, want 1 (cache)", stats.calls.Load())
	}
}

func TestHandleListings(t *testing.T) {
	srv, _ := newTestServer(t)

	rec := get(t, srv, "/api/listings/1")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	var listings []api.RawListing
	json.Unmarshal(rec.Body.Bytes(), &listings)
	if len(listings) != 1 || listings[0].Seller.Name != "A" {
		t.Errorf("listings = %+v, want the one stub listing", listings)
	}

	rec = get(t, srv, "/api/listings/0")
	if rec.Code != http.StatusBadRequest {
		t.Errorf("page 0: status = %d, want 400", rec.Code)
	}
}

func TestHandleHealth(t *testing.T) {
	srv, _ := newTestServer(t, seedTx("t1", 100, "A", 50))

	rec := get(t, srv, "/health")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}

	var body map[string]any
	json.Unmarshal(rec.Body.Bytes(), &body)
	if body["transactions"].(float64) != 1 {
		t.Errorf("transactions = %v, want 1", body["transactions"])
	}
}

func TestRequestIDHeader(t *testing.T) {
	srv, _ := newTestServer(t)

	rec := get(t, srv, "/health")
	if rec.Header().Get("X-Request-Id") == "" {
		t.Error("missing X-Request-Id header")
	}
}
