package store

import (
	"fmt"
	"log/slog"
	"sort"
	"sync"

	"github.com/google/uuid"

	"github.com/akselmisiel/DonutSMP-advanced-market-tracker/internal/identity"
	"github.com/akselmisiel/DonutSMP-advanced-market-tracker/internal/model"
)

// fingerprintNS namespaces derived dedup fingerprints so they can never
// collide with upstream-supplied transaction ids.
var fingerprintNS = uuid.MustParse("6ba7b810-9dad-11d1-80b4-00c04fd430c8")

// Sink receives every batch of newly accepted transactions, after the batch
// is durably written and published to readers.
type Sink func(txs []model.Transaction)

// record is one accepted transaction plus its precomputed identity key.
type record struct {
	tx  model.Transaction
	key string
}

// Store is the deduplicated, append-only transaction log.
type Store struct {
	logger *slog.Logger

	// writeMu serializes ingestion; seen is only touched under it.
	writeMu sync.Mutex
	seen    map[string]struct{}
	log     *walFile

	// mu guards the read indexes.
	mu     sync.RWMutex
	byTime []*record           // ascending by timestamp
	byKey  map[string][]*record // per identity key, ascending by timestamp

	sinks []Sink
}

// Open replays the log at path and returns a ready store. A truncated final
// line (crash mid-append) is discarded and the file trimmed back to the last
// complete record.
func Open(path string, logger *slog.Logger) (*Store, error) {
	if logger == nil {
		logger = slog.Default()
	}

	s := &Store{
		logger: logger,
		seen:   make(map[string]struct{}),
		byKey:  make(map[string][]*record),
	}

	wal, replayed, err := openWAL(path)
	if err != nil {
		return nil, fmt.Errorf("open transaction log: %w", err)
	}
	s.log = wal

	// Replay dedups too: a crash between the durable write and the next
	// poll can leave the same record appended twice.
	dups := 0
	for _, tx := range replayed {
		key := identity.Key(tx.Item)
		dk := DedupKey(tx, key)
		if _, ok := s.seen[dk]; ok {
			dups++
			continue
		}
		s.seen[dk] = struct{}{}
		s.insertLocked(&record{tx: tx, key: key})
	}

	logger.Info("transaction log replayed",
		"path", path,
		"records", len(s.byTime),
		"duplicates_skipped", dups,
	)

	return s, nil
}

// Close flushes and closes the underlying log file.
func (s *Store) Close() error {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()
	return s.log.Close()
}

// AddSink registers a listener for newly accepted batches. Must be called
// before ingestion starts.
func (s *Store) AddSink(sink Sink) {
	s.sinks = append(s.sinks, sink)
}

// Len returns the number of stored transactions.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.byTime)
}

// Ingest appends the previously unseen records of batch and returns how
// many were newly inserted. Replaying an already ingested batch is a no-op
// returning 0. On a persistence failure nothing is published: the batch is
// not marked seen and will be re-attempted when upstream serves it again.
func (s *Store) Ingest(batch []model.Transaction) (int, error) {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	accepted := make([]*record, 0, len(batch))
	for _, tx := range batch {
		key := identity.Key(tx.Item)
		dk := DedupKey(tx, key)
		if _, ok := s.seen[dk]; ok {
			continue
		}
		// Dedup inside the batch itself as well.
		dup := false
		for _, r := range accepted {
			if DedupKey(r.tx, r.key) == dk {
				dup = true
				break
			}
		}
		if dup {
			continue
		}
		accepted = append(accepted, &record{tx: tx, key: key})
	}

	if len(accepted) == 0 {
		return 0, nil
	}

	txs := make([]model.Transaction, len(accepted))
	for i, r := range accepted {
		txs[i] = r.tx
	}

	// Durable write first; only then mark seen and publish to readers.
	if err := s.log.Append(txs); err != nil {
		return 0, fmt.Errorf("append batch: %w", err)
	}

	s.mu.Lock()
	for _, r := range accepted {
		s.seen[DedupKey(r.tx, r.key)] = struct{}{}
		s.insertLocked(r)
	}
	s.mu.Unlock()

	for _, sink := range s.sinks {
		sink(txs)
	}

	return len(accepted), nil
}

// insertLocked places r into both indexes keeping timestamp order. Callers
// hold mu (or run before the store is shared).
func (s *Store) insertLocked(r *record) {
	s.byTime = insertByTime(s.byTime, r)
	s.byKey[r.key] = insertByTime(s.byKey[r.key], r)
}

func insertByTime(recs []*record, r *record) []*record {
	// Batches arrive mostly in time order; the common case is a tail append.
	if n := len(recs); n == 0 || recs[n-1].tx.Timestamp <= r.tx.Timestamp {
		return append(recs, r)
	}
	i := sort.Search(len(recs), func(i int) bool {
		return recs[i].tx.Timestamp > r.tx.Timestamp
	})
	recs = append(recs, nil)
	copy(recs[i+1:], recs[i:])
	recs[i] = r
	return recs
}

// DedupKey prefers the upstream transaction id; when upstream omits it, a
// fingerprint over (seller, timestamp, price, identity key) stands in.
// Best effort: if upstream ever serves two genuinely distinct sales with
// identical fields and no id, they collapse into one record.
func DedupKey(tx model.Transaction, identityKey string) string {
	if tx.ID != "" {
		return "id:" + tx.ID
	}
	raw := fmt.Sprintf("%s\x00%d\x00%d\x00%s", tx.Seller, tx.Timestamp, tx.Price, identityKey)
	return "fp:" + uuid.NewSHA1(fingerprintNS, []byte(raw)).String()
}
