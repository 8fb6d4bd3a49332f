package server

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/akselmisiel/DonutSMP-advanced-market-tracker/internal/model"
	"github.com/akselmisiel/DonutSMP-advanced-market-tracker/internal/query"
)

// windowFromQuery reads either ?window=1d or ?start=..&end=.. .
func windowFromQuery(r *http.Request) query.WindowParams {
	q := r.URL.Query()
	wp := query.WindowParams{Name: q.Get("window")}
	if wp.Name != "" {
		return wp
	}
	wp.Start, _ = strconv.ParseInt(q.Get("start"), 10, 64)
	wp.End, _ = strconv.ParseInt(q.Get("end"), 10, 64)
	return wp
}

// respondQueryError maps facade errors onto HTTP statuses: validation
// failures are 400s, everything else a 500. "No data" never lands here; it
// is an empty 200.
func (s *Server) respondQueryError(w http.ResponseWriter, err error) {
	var verr *model.ValidationError
	if errors.As(err, &verr) {
		writeJSON(w, http.StatusBadRequest, errorBody{Error: verr.Error()})
		return
	}
	writeJSON(w, http.StatusInternalServerError, errorBody{Error: err.Error()})
}

func (s *Server) countQuery(endpoint string) {
	if s.metrics != nil {
		s.metrics.QueryRequests.WithLabelValues(endpoint).Inc()
	}
}

func (s *Server) handleReport(w http.ResponseWriter, r *http.Request) {
	s.countQuery("report")
	q := r.URL.Query()

	params := query.ReportParams{Window: windowFromQuery(r)}
	params.PriceMin, _ = strconv.ParseInt(q.Get("price_min"), 10, 64)
	params.PriceMax, _ = strconv.ParseInt(q.Get("price_max"), 10, 64)
	if bl := q.Get("blacklist"); bl != "" {
		params.Blacklist = strings.Split(bl, ",")
	}

	report, err := s.queries.MarketCapReport(params)
	if err != nil {
		s.respondQueryError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, report)
}

func (s *Server) handleHistory(w http.ResponseWriter, r *http.Request) {
	s.countQuery("history")

	key := chi.URLParam(r, "key")
	points, err := s.queries.PriceHistory(key, windowFromQuery(r))
	if err != nil {
		s.respondQueryError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, points)
}

func (s *Server) handleHighValue(w http.ResponseWriter, r *http.Request) {
	s.countQuery("high_value")

	threshold, err := strconv.ParseInt(r.URL.Query().Get("threshold"), 10, 64)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody{Error: "invalid threshold: must be an integer"})
		return
	}

	sales, err := s.queries.HighValueSales(windowFromQuery(r), threshold)
	if err != nil {
		s.respondQueryError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, sales)
}

func (s *Server) handleSellers(w http.ResponseWriter, r *http.Request) {
	s.countQuery("sellers")

	key := chi.URLParam(r, "key")
	sellers, err := s.queries.SellersForGroup(key, windowFromQuery(r))
	if err != nil {
		s.respondQueryError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, sellers)
}

// handlePlayerStats proxies the upstream stats lookup through a TTL cache
// so repeated seller lookups from the UI don't hammer the auction API.
func (s *Server) handlePlayerStats(w http.ResponseWriter, r *http.Request) {
	s.countQuery("stats")

	player := chi.URLParam(r, "player")
	if player == "" {
		writeJSON(w, http.StatusBadRequest, errorBody{Error: "empty player name"})
		return
	}

	if cached, ok := s.statsCache.Get(player); ok {
		writeJSON(w, http.StatusOK, cached)
		return
	}

	stats, err := s.stats.GetPlayerStats(r.Context(), player)
	if err != nil {
		s.logger.Warn("player stats lookup failed", "player", player, "err", err)
		writeJSON(w, http.StatusBadGateway, errorBody{Error: "upstream stats lookup failed"})
		return
	}

	s.statsCache.SetDefault(player, stats)
	writeJSON(w, http.StatusOK, stats)
}

// handleListings proxies a page of currently open auctions. Listings are
// ephemeral upstream state, so nothing here touches the store.
func (s *Server) handleListings(w http.ResponseWriter, r *http.Request) {
	s.countQuery("listings")

	page, err := strconv.Atoi(chi.URLParam(r, "page"))
	if err != nil || page < 1 {
		writeJSON(w, http.StatusBadRequest, errorBody{Error: "invalid page: must be a positive integer"})
		return
	}

	listings, err := s.stats.GetListings(r.Context(), page)
	if err != nil {
		s.logger.Warn("listings lookup failed", "page", page, "err", err)
		writeJSON(w, http.StatusBadGateway, errorBody{Error: "upstream listings lookup failed"})
		return
	}
	writeJSON(w, http.StatusOK, listings)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":       "healthy",
		"transactions": s.store.Len(),
	})
}
