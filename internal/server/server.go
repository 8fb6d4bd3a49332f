package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	gocache "github.com/patrickmn/go-cache"

	"github.com/akselmisiel/DonutSMP-advanced-market-tracker/internal/api"
	"github.com/akselmisiel/DonutSMP-advanced-market-tracker/internal/metrics"
	"github.com/akselmisiel/DonutSMP-advanced-market-tracker/internal/query"
)

// StatsSource looks up player statistics upstream. Satisfied by
// *api.Client.
type StatsSource interface {
	GetPlayerStats(ctx context.Context, player string) (*api.PlayerStats, error)
	GetListings(ctx context.Context, page int) ([]api.RawListing, error)
}

// StoreInfo is the slice of the store the health endpoint reads.
type StoreInfo interface {
	Len() int
}

// Config holds HTTP server settings.
type Config struct {
	Addr         string        // listen address (default ":8080")
	StatsTTL     time.Duration // player-stats cache TTL (default 5m)
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

// Server serves the query API.
type Server struct {
	cfg     Config
	queries *query.Service
	stats   StatsSource
	store   StoreInfo
	live    *LiveHub
	logger  *slog.Logger
	metrics *metrics.Metrics

	statsCache *gocache.Cache
	httpSrv    *http.Server
}

// New creates the server. live may be nil when the websocket feed is
// disabled.
func New(cfg Config, queries *query.Service, stats StatsSource, store StoreInfo, live *LiveHub, m *metrics.Metrics, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.Addr == "" {
		cfg.Addr = ":8080"
	}
	if cfg.StatsTTL <= 0 {
		cfg.StatsTTL = 5 * time.Minute
	}
	if cfg.ReadTimeout <= 0 {
		cfg.ReadTimeout = 15 * time.Second
	}
	if cfg.WriteTimeout <= 0 {
		cfg.WriteTimeout = 30 * time.Second
	}

	return &Server{
		cfg:        cfg,
		queries:    queries,
		stats:      stats,
		store:      store,
		live:       live,
		logger:     logger,
		metrics:    m,
		statsCache: gocache.New(cfg.StatsTTL, 2*cfg.StatsTTL),
	}
}

// Routes builds the router. Exposed separately so tests can drive the
// handlers without a listener.
func (s *Server) Routes() chi.Router {
	r := chi.NewRouter()
	r.Use(requestID)
	r.Use(s.requestLogging)

	r.Route("/api", func(r chi.Router) {
		r.Get("/report", s.handleReport)
		r.Get("/history/{key}", s.handleHistory)
		r.Get("/high-value", s.handleHighValue)
		r.Get("/sellers/{key}", s.handleSellers)
		r.Get("/stats/{player}", s.handlePlayerStats)
		r.Get("/listings/{page}", s.handleListings)
		if s.live != nil {
			r.Get("/live", s.live.handleWS)
		}
	})
	r.Get("/health", s.handleHealth)

	return r
}

// Run serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	s.httpSrv = &http.Server{
		Addr:         s.cfg.Addr,
		Handler:      s.Routes(),
		ReadTimeout:  s.cfg.ReadTimeout,
		WriteTimeout: s.cfg.WriteTimeout,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		s.httpSrv.Shutdown(shutdownCtx)
	}()

	s.logger.Info("query api listening", "addr", s.cfg.Addr)

	if err := s.httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("query api: %w", err)
	}
	return nil
}

// writeJSON writes v with the given status.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// errorBody is the structured error envelope.
type errorBody struct {
	Error string `json:"error"`
}
