package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/akselmisiel/DonutSMP-advanced-market-tracker/internal/model"
)

func TestGetTransactions(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/auction/transactions/1" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if got := r.Header.Get("Authorization"); got != "test-token" {
			t.Errorf("Authorization = %q, want test-token", got)
		}
		json.NewEncoder(w).Encode(TransactionsResponse{
			Status: 200,
			Result: []RawTransaction{
				{
					ID:             "abc",
					UnixMillisSold: 1724900000000,
					Price:          120,
					Seller:         RawPlayer{Name: "Steve"},
					Item:           RawItem{ID: "diamond", Count: 1},
				},
			},
		})
	}))
	defer server.Close()

	client := NewClient(server.URL, "test-token")

	txs, err := client.GetTransactions(context.Background(), 1)
	if err != nil {
		t.Fatalf("GetTransactions failed: %v", err)
	}
	if len(txs) != 1 {
		t.Fatalf("got %d transactions, want 1", len(txs))
	}
	if txs[0].Seller.Name != "Steve" {
		t.Errorf("Seller = %q, want Steve", txs[0].Seller.Name)
	}
}

func TestGetPlayerStats_NotFoundMapsToUnknown(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	}))
	defer server.Close()

	client := NewClient(server.URL, "test-token")

	stats, err := client.GetPlayerStats(context.Background(), "ghost.player")
	if err != nil {
		t.Fatalf("GetPlayerStats failed: %v", err)
	}
	if stats.Money != "Unknown" {
		t.Errorf("Money = %q, want Unknown", stats.Money)
	}
}

func TestDoWithRetry_RetriesServerErrors(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) < 3 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		json.NewEncoder(w).Encode(TransactionsResponse{Status: 200})
	}))
	defer server.Close()

	client := NewClient(server.URL, "t", WithRetries(5, time.Millisecond))

	if _, err := client.GetTransactions(context.Background(), 1); err != nil {
		t.Fatalf("expected eventual success, got %v", err)
	}
	if calls.Load() != 3 {
		t.Errorf("server saw %d calls, want 3", calls.Load())
	}
}

func TestDoWithRetry_DoesNotRetryClientErrors(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer server.Close()

	client := NewClient(server.URL, "bad-token", WithRetries(5, time.Millisecond))

	_, err := client.GetTransactions(context.Background(), 1)
	var apiErr *APIError
	if !errors.As(err, &apiErr) || apiErr.StatusCode != 401 {
		t.Fatalf("expected 401 APIError, got %v", err)
	}
	if calls.Load() != 1 {
		t.Errorf("server saw %d calls, want 1", calls.Load())
	}
}

func TestRawTransaction_ToModel(t *testing.T) {
	raw := RawTransaction{
		ID:             "abc",
		UnixMillisSold: 1724900123999,
		Price:          5000,
		Seller:         RawPlayer{Name: "Alex"},
		Item: RawItem{
			ID:    "shulker_box",
			Count: 1,
			Contents: []RawItem{
				{ID: "diamond", Count: 64},
				{ID: "iron_ingot", Count: 32, Enchants: []RawEnchantment{{ID: "unbreaking", Level: 3}}},
			},
		},
	}

	tx, err := raw.ToModel()
	if err != nil {
		t.Fatalf("ToModel failed: %v", err)
	}
	if tx.Timestamp != 1724900123 {
		t.Errorf("Timestamp = %d, want 1724900123 (millis truncated to seconds)", tx.Timestamp)
	}
	if len(tx.Item.Contents) != 2 {
		t.Fatalf("Contents len = %d, want 2", len(tx.Item.Contents))
	}
	if tx.Item.Contents[1].Enchantments[0].ID != "unbreaking" {
		t.Errorf("nested enchantment not converted: %+v", tx.Item.Contents[1])
	}
}

func TestRawTransaction_ToModel_RejectsMalformed(t *testing.T) {
	tests := []struct {
		name string
		raw  RawTransaction
	}{
		{
			name: "negative price",
			raw: RawTransaction{
				UnixMillisSold: 1724900000000,
				Price:          -1,
				Seller:         RawPlayer{Name: "A"},
				Item:           RawItem{ID: "diamond", Count: 1},
			},
		},
		{
			name: "zero count",
			raw: RawTransaction{
				UnixMillisSold: 1724900000000,
				Price:          10,
				Seller:         RawPlayer{Name: "A"},
				Item:           RawItem{ID: "diamond", Count: 0},
			},
		},
		{
			name: "missing base id",
			raw: RawTransaction{
				UnixMillisSold: 1724900000000,
				Price:          10,
				Seller:         RawPlayer{Name: "A"},
				Item:           RawItem{Count: 1},
			},
		},
		{
			name: "bad nested item",
			raw: RawTransaction{
				UnixMillisSold: 1724900000000,
				Price:          10,
				Seller:         RawPlayer{Name: "A"},
				Item: RawItem{
					ID:       "shulker_box",
					Count:    1,
					Contents: []RawItem{{ID: "diamond", Count: -3}},
				},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := tt.raw.ToModel()
			var verr *model.ValidationError
			if !errors.As(err, &verr) {
				t.Errorf("expected ValidationError, got %v", err)
			}
		})
	}
}
