// Package dedup keeps the set of records harvested during one crawl.
//
// A record's identity is its permalink when present, otherwise its handle
// joined with the first 1000 characters of its text. The first record seen
// for a key wins; later duplicates are discarded even if their counts
// differ.
package dedup

import (
	"sync"

	"feedharvest/pkg/models"
)

const textKeyLimit = 1000

// Key returns the identity of a record
func Key(r models.Record) string {
	if r.Permalink != nil && *r.Permalink != "" {
		return *r.Permalink
	}
	text := []rune(r.Text)
	if len(text) > textKeyLimit {
		text = text[:textKeyLimit]
	}
	return r.Handle + "\x00" + string(text)
}

// Store is an insertion-ordered, grow-only record set
type Store struct {
	mu    sync.RWMutex
	index map[string]struct{}
	order []models.Record
}

// New creates an empty store
func New() *Store {
	return &Store{index: make(map[string]struct{})}
}

// Merge adds records whose keys are unseen and returns the net-new count
func (s *Store) Merge(records []models.Record) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	added := 0
	for _, r := range records {
		k := Key(r)
		if _, seen := s.index[k]; seen {
			continue
		}
		s.index[k] = struct{}{}
		s.order = append(s.order, r)
		added++
	}
	return added
}

// Size returns the number of distinct records
func (s *Store) Size() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.order)
}

// Values returns up to limit records in first-seen order. A limit <= 0
// returns everything.
func (s *Store) Values(limit int) []models.Record {
	s.mu.RLock()
	defer s.mu.RUnlock()

	n := len(s.order)
	if limit > 0 && limit < n {
		n = limit
	}
	out := make([]models.Record, n)
	copy(out, s.order[:n])
	return out
}
