package store

import (
	"iter"
	"sort"

	"github.com/akselmisiel/DonutSMP-advanced-market-tracker/internal/model"
)

// QueryRange returns the transactions whose timestamp falls inside window
// (endpoints inclusive), ascending by timestamp. An empty keyFilter matches
// everything. The sequence is restartable and iterates over an immutable
// snapshot, so it stays consistent while ingestion continues.
func (s *Store) QueryRange(window model.Window, keyFilter string) iter.Seq[model.Transaction] {
	snap := s.snapshot(window, keyFilter)
	return func(yield func(model.Transaction) bool) {
		for _, r := range snap {
			if !yield(r.tx) {
				return
			}
		}
	}
}

// IdentityKeysInWindow returns the set of identity keys with at least one
// transaction inside the window.
func (s *Store) IdentityKeysInWindow(window model.Window) map[string]struct{} {
	keys := make(map[string]struct{})
	for _, r := range s.snapshot(window, "") {
		keys[r.key] = struct{}{}
	}
	return keys
}

// snapshot copies the matching slice of the time index under the read lock.
// Records themselves are immutable, so the copied pointers are safe to use
// after the lock is released.
func (s *Store) snapshot(window model.Window, keyFilter string) []*record {
	s.mu.RLock()
	defer s.mu.RUnlock()

	src := s.byTime
	if keyFilter != "" {
		src = s.byKey[keyFilter]
	}

	lo := sort.Search(len(src), func(i int) bool {
		return src[i].tx.Timestamp >= window.Start
	})
	hi := sort.Search(len(src), func(i int) bool {
		return src[i].tx.Timestamp > window.End
	})
	if lo >= hi {
		return nil
	}

	out := make([]*record, hi-lo)
	copy(out, src[lo:hi])
	return out
}
