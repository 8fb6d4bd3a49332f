package archive

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/akselmisiel/DonutSMP-advanced-market-tracker/internal/identity"
	"github.com/akselmisiel/DonutSMP-advanced-market-tracker/internal/model"
	"github.com/akselmisiel/DonutSMP-advanced-market-tracker/internal/store"
)

// Config holds archive writer settings.
type Config struct {
	BatchSize     int           // rows per insert batch (default 500)
	FlushInterval time.Duration // max time a row waits (default 2s)
}

// WriterMetrics counts writer activity.
type WriterMetrics struct {
	Inserts   int64
	Conflicts int64
	Flushes   int64
	Errors    int64
}

// saleRow is the flattened table form of one transaction.
type saleRow struct {
	DedupID     string
	Timestamp   int64
	Seller      string
	Price       int64
	BaseID      string
	Count       int
	IdentityKey string
	ItemJSON    []byte
}

// Writer consumes committed transactions from its buffer and mirrors them
// into the auction_sales table.
type Writer struct {
	cfg    Config
	logger *slog.Logger

	input *Buffer[model.Transaction]
	db    *pgxpool.Pool

	mu      sync.Mutex
	metrics WriterMetrics

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// NewWriter creates an archive writer reading from input.
func NewWriter(cfg Config, input *Buffer[model.Transaction], db *pgxpool.Pool, logger *slog.Logger) *Writer {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = 500
	}
	if cfg.FlushInterval <= 0 {
		cfg.FlushInterval = 2 * time.Second
	}
	return &Writer{
		cfg:    cfg,
		input:  input,
		db:     db,
		logger: logger,
	}
}

// Sink returns a store sink feeding this writer's buffer.
func (w *Writer) Sink() store.Sink {
	return func(txs []model.Transaction) {
		for _, tx := range txs {
			w.input.Send(tx)
		}
	}
}

// Start begins the flush loop.
func (w *Writer) Start(ctx context.Context) error {
	w.ctx, w.cancel = context.WithCancel(ctx)

	w.wg.Add(1)
	go w.flushLoop()

	w.logger.Info("archive writer started",
		"batch_size", w.cfg.BatchSize,
		"flush_interval", w.cfg.FlushInterval,
	)
	return nil
}

// Stop drains the buffer and shuts the writer down.
func (w *Writer) Stop(ctx context.Context) error {
	if w.cancel != nil {
		w.cancel()
	}

	done := make(chan struct{})
	go func() {
		w.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
	case <-ctx.Done():
		w.logger.Warn("archive writer stop timed out")
		return ctx.Err()
	}

	// Final flush of whatever arrived during shutdown.
	w.flush(context.Background())
	w.logger.Info("archive writer stopped")
	return nil
}

// Stats returns current metrics.
func (w *Writer) Stats() WriterMetrics {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.metrics
}

func (w *Writer) flushLoop() {
	defer w.wg.Done()

	ticker := time.NewTicker(w.cfg.FlushInterval)
	defer ticker.Stop()

	for {
		select {
		case <-w.ctx.Done():
			return
		case <-ticker.C:
			w.flush(w.ctx)
		}
	}
}

// flush drains and inserts pending rows in batches.
func (w *Writer) flush(ctx context.Context) {
	for {
		txs := w.input.DrainTo(w.cfg.BatchSize)
		if len(txs) == 0 {
			return
		}

		rows := make([]saleRow, 0, len(txs))
		for _, tx := range txs {
			row, err := transform(tx)
			if err != nil {
				w.logger.Error("skipping unencodable transaction", "id", tx.ID, "err", err)
				continue
			}
			rows = append(rows, row)
		}

		start := time.Now()
		conflicts, err := w.batchInsert(ctx, rows)

		w.mu.Lock()
		if err != nil {
			w.metrics.Errors++
		} else {
			w.metrics.Inserts += int64(len(rows) - conflicts)
			w.metrics.Conflicts += int64(conflicts)
			w.metrics.Flushes++
		}
		w.mu.Unlock()

		if err != nil {
			w.logger.Error("archive insert failed", "err", err, "count", len(rows))
			return
		}

		w.logger.Debug("archived sales",
			"count", len(rows),
			"conflicts", conflicts,
			"duration", time.Since(start),
		)
	}
}

// transform flattens a transaction into its table row.
func transform(tx model.Transaction) (saleRow, error) {
	itemJSON, err := json.Marshal(tx.Item)
	if err != nil {
		return saleRow{}, fmt.Errorf("encode item: %w", err)
	}
	key := identity.Key(tx.Item)
	return saleRow{
		DedupID:     store.DedupKey(tx, key),
		Timestamp:   tx.Timestamp,
		Seller:      tx.Seller,
		Price:       tx.Price,
		BaseID:      tx.Item.BaseID,
		Count:       tx.Item.Count,
		IdentityKey: key,
		ItemJSON:    itemJSON,
	}, nil
}

// batchInsert writes rows with ON CONFLICT DO NOTHING keyed on the dedup id.
func (w *Writer) batchInsert(ctx context.Context, rows []saleRow) (conflicts int, err error) {
	batch := &pgx.Batch{}
	for _, r := range rows {
		batch.Queue(`
			INSERT INTO auction_sales (dedup_id, ts, seller, price, base_id, count, identity_key, item)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
			ON CONFLICT (dedup_id) DO NOTHING
		`, r.DedupID, r.Timestamp, r.Seller, r.Price, r.BaseID, r.Count, r.IdentityKey, r.ItemJSON)
	}

	results := w.db.SendBatch(ctx, batch)
	defer results.Close()

	for range rows {
		ct, err := results.Exec()
		if err != nil {
			return 0, err
		}
		if ct.RowsAffected() == 0 {
			conflicts++
		}
	}

	return conflicts, nil
}
