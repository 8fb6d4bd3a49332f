package main

import (
	"context"
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/lmittmann/tint"
	"golang.org/x/sync/errgroup"

	"github.com/akselmisiel/DonutSMP-advanced-market-tracker/internal/aggregate"
	"github.com/akselmisiel/DonutSMP-advanced-market-tracker/internal/api"
	"github.com/akselmisiel/DonutSMP-advanced-market-tracker/internal/archive"
	"github.com/akselmisiel/DonutSMP-advanced-market-tracker/internal/config"
	"github.com/akselmisiel/DonutSMP-advanced-market-tracker/internal/metrics"
	"github.com/akselmisiel/DonutSMP-advanced-market-tracker/internal/model"
	"github.com/akselmisiel/DonutSMP-advanced-market-tracker/internal/poller"
	"github.com/akselmisiel/DonutSMP-advanced-market-tracker/internal/query"
	"github.com/akselmisiel/DonutSMP-advanced-market-tracker/internal/server"
	"github.com/akselmisiel/DonutSMP-advanced-market-tracker/internal/store"
	"github.com/akselmisiel/DonutSMP-advanced-market-tracker/internal/version"
)

func main() {
	configPath := flag.String("config", "configs/tracker.yaml", "path to config file")
	flag.Parse()

	// .env is optional; the config loader expands ${VAR} references.
	godotenv.Load()

	logger := slog.New(tint.NewHandler(os.Stdout, &tint.Options{
		Level:      slog.LevelDebug,
		TimeFormat: time.TimeOnly,
	}))
	slog.SetDefault(logger)

	logger.Info("starting market tracker",
		"version", version.Version,
		"commit", version.Commit,
		"config", *configPath,
	)

	if err := run(*configPath, logger); err != nil {
		logger.Error("tracker failed", "error", err)
		os.Exit(1)
	}

	logger.Info("tracker stopped")
}

func run(configPath string, logger *slog.Logger) error {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	cfg, err := config.LoadAndValidate(configPath)
	if err != nil {
		return err
	}

	logger.Info("configuration loaded",
		"api_url", cfg.API.BaseURL,
		"store", cfg.Store.Path,
		"trackers", len(cfg.Trackers),
	)

	m := metrics.New()

	// Transaction store
	st, err := store.Open(cfg.Store.Path, logger)
	if err != nil {
		return err
	}
	defer st.Close()
	m.StoreSize.Set(float64(st.Len()))

	// Live feed
	var live *server.LiveHub
	if cfg.Server.LiveFeed {
		live = server.NewLiveHub(logger)
		st.AddSink(live.Broadcast)
	}

	// Optional Postgres mirror
	var archiveWriter *archive.Writer
	if cfg.Archive.Enabled {
		pool, err := archive.Connect(ctx, cfg.Archive.DSN, cfg.Archive.MinConns, cfg.Archive.MaxConns)
		if err != nil {
			return err
		}
		defer pool.Close()

		buf := archive.NewBuffer[model.Transaction](1024)
		archiveWriter = archive.NewWriter(archive.Config{
			BatchSize:     cfg.Archive.BatchSize,
			FlushInterval: cfg.Archive.FlushInterval,
		}, buf, pool, logger)
		st.AddSink(archiveWriter.Sink())

		if err := archiveWriter.Start(ctx); err != nil {
			return err
		}
		defer func() {
			stopCtx, stopCancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer stopCancel()
			archiveWriter.Stop(stopCtx)
		}()
		logger.Info("archive enabled")
	}

	// Upstream client
	apiClient := api.NewClient(
		cfg.API.BaseURL,
		cfg.API.Token,
		api.WithLogger(logger),
		api.WithTimeout(cfg.API.Timeout),
		api.WithRetries(cfg.API.MaxRetries, time.Second),
	)

	// Poller
	trackers := make([]poller.Tracker, len(cfg.Trackers))
	for i, tr := range cfg.Trackers {
		trackers[i] = poller.Tracker{Kind: tr.Kind, Name: tr.Name, Pages: tr.Pages}
	}

	p := poller.New(poller.Config{
		Interval: cfg.Poller.Interval,
		Timeout:  cfg.Poller.Timeout,
	}, apiClient, st, trackers, m, logger)

	if err := p.Start(ctx); err != nil {
		return err
	}
	defer func() {
		stopCtx, stopCancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer stopCancel()
		p.Stop(stopCtx)
	}()

	// Query surface
	queries := query.New(aggregate.New(st), nil)
	srv := server.New(server.Config{
		Addr:     cfg.Server.Addr,
		StatsTTL: cfg.Server.StatsTTL,
	}, queries, apiClient, st, live, m, logger)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return srv.Run(gctx)
	})
	if cfg.Metrics.Enabled {
		g.Go(func() error {
			return m.Serve(gctx, cfg.Metrics.Addr, cfg.Metrics.Path, logger)
		})
	}

	logger.Info("tracker running",
		"api_addr", cfg.Server.Addr,
		"poll_interval", cfg.Poller.Interval,
	)

	return g.Wait()
}
