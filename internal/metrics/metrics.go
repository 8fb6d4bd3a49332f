package metrics

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds every collector the tracker exports.
type Metrics struct {
	PollCycles      prometheus.Counter
	FetchErrors     prometheus.Counter
	RecordsFetched  prometheus.Counter
	RecordsRejected prometheus.Counter
	RecordsInserted prometheus.Counter
	RecordsDuplicate prometheus.Counter
	StoreSize       prometheus.Gauge
	QueryRequests   *prometheus.CounterVec

	registry *prometheus.Registry
}

// New creates and registers all collectors on a fresh registry.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	m := &Metrics{
		PollCycles: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "tracker_poll_cycles_total",
			Help: "Completed poll cycles, including failed ones.",
		}),
		FetchErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "tracker_fetch_errors_total",
			Help: "Upstream fetch failures (network, timeout, non-2xx).",
		}),
		RecordsFetched: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "tracker_records_fetched_total",
			Help: "Raw records received from upstream.",
		}),
		RecordsRejected: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "tracker_records_rejected_total",
			Help: "Raw records dropped by validation.",
		}),
		RecordsInserted: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "tracker_records_inserted_total",
			Help: "Records newly accepted by the store.",
		}),
		RecordsDuplicate: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "tracker_records_duplicate_total",
			Help: "Records skipped as already seen.",
		}),
		StoreSize: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "tracker_store_transactions",
			Help: "Transactions currently held by the store.",
		}),
		QueryRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "tracker_query_requests_total",
			Help: "Query API requests by endpoint.",
		}, []string{"endpoint"}),
		registry: reg,
	}

	reg.MustRegister(
		m.PollCycles,
		m.FetchErrors,
		m.RecordsFetched,
		m.RecordsRejected,
		m.RecordsInserted,
		m.RecordsDuplicate,
		m.StoreSize,
		m.QueryRequests,
	)

	return m
}

// Serve runs the metrics endpoint until ctx is cancelled.
func (m *Metrics) Serve(ctx context.Context, addr, path string, logger *slog.Logger) error {
	if logger == nil {
		logger = slog.Default()
	}

	mux := http.NewServeMux()
	mux.Handle(path, promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{}))

	srv := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		srv.Shutdown(shutdownCtx)
	}()

	logger.Info("metrics server started", "addr", addr, "path", path)

	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("metrics server: %w", err)
	}
	return nil
}
