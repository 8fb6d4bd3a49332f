package poller

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/akselmisiel/DonutSMP-advanced-market-tracker/internal/api"
	"github.com/akselmisiel/DonutSMP-advanced-market-tracker/internal/metrics"
	"github.com/akselmisiel/DonutSMP-advanced-market-tracker/internal/model"
)

// Upstream provides raw sale batches. Satisfied by *api.Client.
type Upstream interface {
	GetTransactions(ctx context.Context, page int) ([]api.RawTransaction, error)
}

// Ingester accepts validated batches. Satisfied by *store.Store.
type Ingester interface {
	Ingest(batch []model.Transaction) (int, error)
	Len() int
}

// Tracker is one configured watch. All trackers funnel into the same store;
// they differ in how deep into the sale history each cycle reaches.
type Tracker struct {
	Kind  string // "item", "price" or "market-cap"
	Name  string // display name for logs
	Pages int    // page depth per cycle, min 1
}

// Config holds poller configuration.
type Config struct {
	Interval time.Duration // Poll interval (default: 45s)
	Timeout  time.Duration // Per-cycle timeout (default: 20s)
}

// DefaultConfig returns sensible defaults.
func DefaultConfig() Config {
	return Config{
		Interval: 45 * time.Second,
		Timeout:  20 * time.Second,
	}
}

// Poller periodically ingests auction sales for the configured trackers.
type Poller struct {
	cfg      Config
	upstream Upstream
	store    Ingester
	trackers []Tracker
	logger   *slog.Logger
	metrics  *metrics.Metrics

	// depth shrinks to one page while upstream serves nothing new, and
	// springs back to the configured depth as soon as data flows again.
	depth int

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// New creates a new Poller.
func New(cfg Config, upstream Upstream, store Ingester, trackers []Tracker, m *metrics.Metrics, logger *slog.Logger) *Poller {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.Interval <= 0 {
		cfg.Interval = DefaultConfig().Interval
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultConfig().Timeout
	}
	return &Poller{
		cfg:      cfg,
		upstream: upstream,
		store:    store,
		trackers: trackers,
		logger:   logger,
		metrics:  m,
		depth:    maxPages(trackers),
	}
}

// Start begins the polling loop.
func (p *Poller) Start(ctx context.Context) error {
	p.ctx, p.cancel = context.WithCancel(ctx)

	p.wg.Add(1)
	go p.run()

	p.logger.Info("poller started",
		"interval", p.cfg.Interval,
		"trackers", len(p.trackers),
		"max_pages", maxPages(p.trackers),
	)

	return nil
}

// Stop gracefully shuts down the poller.
func (p *Poller) Stop(ctx context.Context) error {
	if p.cancel != nil {
		p.cancel()
	}

	done := make(chan struct{})
	go func() {
		p.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		p.logger.Info("poller stopped")
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// run is the main polling loop.
func (p *Poller) run() {
	defer p.wg.Done()

	ticker := time.NewTicker(p.cfg.Interval)
	defer ticker.Stop()

	// Poll immediately on start.
	p.pollOnce()

	for {
		select {
		case <-p.ctx.Done():
			return
		case <-ticker.C:
			p.pollOnce()
		}
	}
}

// pollOnce runs one complete cycle: fetch, validate, ingest. A failed or
// timed-out fetch skips the cycle; the next tick retries.
func (p *Poller) pollOnce() {
	start := time.Now()
	if p.metrics != nil {
		p.metrics.PollCycles.Inc()
	}

	ctx, cancel := context.WithTimeout(p.ctx, p.cfg.Timeout)
	defer cancel()

	raw, err := p.fetchAll(ctx)
	if err != nil {
		if errors.Is(err, context.Canceled) && p.ctx.Err() != nil {
			return
		}
		if p.metrics != nil {
			p.metrics.FetchErrors.Inc()
		}
		p.logger.Warn("upstream fetch failed, skipping cycle", "err", err)
		return
	}

	batch, rejected := p.validate(raw)

	inserted, err := p.store.Ingest(batch)
	if err != nil {
		// The batch is not marked ingested; upstream re-serves it and dedup
		// prevents double counting once the write succeeds.
		p.logger.Error("ingest failed", "err", err, "batch", len(batch))
		return
	}

	p.adjustDepth(inserted)

	if p.metrics != nil {
		p.metrics.RecordsFetched.Add(float64(len(raw)))
		p.metrics.RecordsRejected.Add(float64(rejected))
		p.metrics.RecordsInserted.Add(float64(inserted))
		p.metrics.RecordsDuplicate.Add(float64(len(batch) - inserted))
		p.metrics.StoreSize.Set(float64(p.store.Len()))
	}

	p.logger.Info("poll cycle complete",
		"fetched", len(raw),
		"rejected", rejected,
		"inserted", inserted,
		"duplicates", len(batch)-inserted,
		"duration", time.Since(start),
	)
}

// fetchAll collects the raw batches for every tracker. Trackers share the
// same upstream sale feed, so a page already fetched this cycle is not
// fetched again for another tracker.
func (p *Poller) fetchAll(ctx context.Context) ([]api.RawTransaction, error) {
	var (
		all     []api.RawTransaction
		fetched = make(map[int]bool)
	)

	for _, tracker := range p.trackers {
		pages := tracker.Pages
		if pages < 1 {
			pages = 1
		}
		if pages > p.depth {
			pages = p.depth
		}

		for page := 1; page <= pages; page++ {
			if fetched[page] {
				continue
			}
			fetched[page] = true

			raw, err := p.upstream.GetTransactions(ctx, page)
			if err != nil {
				return nil, err
			}
			if len(raw) == 0 {
				break
			}
			all = append(all, raw...)
		}
	}

	return all, nil
}

// validate converts raw records, dropping and logging malformed ones.
func (p *Poller) validate(raw []api.RawTransaction) (batch []model.Transaction, rejected int) {
	batch = make([]model.Transaction, 0, len(raw))
	for _, r := range raw {
		tx, err := r.ToModel()
		if err != nil {
			rejected++
			p.logger.Warn("rejecting malformed record",
				"upstream_id", r.ID,
				"err", err,
			)
			continue
		}
		batch = append(batch, tx)
	}
	return batch, rejected
}

// adjustDepth backs the page depth off to 1 while nothing new arrives.
func (p *Poller) adjustDepth(inserted int) {
	if inserted == 0 {
		p.depth = 1
		return
	}
	p.depth = maxPages(p.trackers)
}

func maxPages(trackers []Tracker) int {
	max := 1
	for _, t := range trackers {
		if t.Pages > max {
			max = t.Pages
		}
	}
	return max
}
