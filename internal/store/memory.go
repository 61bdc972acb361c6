package store

import (
	"context"
	"sort"
	"strings"
	"sync"

	"github.com/JakeFAU/listing-harvester/internal/listing"
)

// MemoryStore is an in-memory Store for tests and DSN-less runs.
type MemoryStore struct {
	mu      sync.RWMutex
	records map[string]listing.Record
}

// NewMemoryStore returns an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{records: make(map[string]listing.Record)}
}

// Upsert inserts or replaces the record keyed by its ID.
func (s *MemoryStore) Upsert(_ context.Context, record listing.Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.records[record.ID] = record
	return nil
}

// Query returns records matching every set filter, ordered by price.
func (s *MemoryStore) Query(_ context.Context, filter Filter) ([]listing.Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]listing.Record, 0, len(s.records))
	for _, r := range s.records {
		if matches(r, filter) {
			out = append(out, r)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Price < out[j].Price })
	return out, nil
}

// Close is a no-op for the in-memory store.
func (s *MemoryStore) Close() {}

func matches(r listing.Record, f Filter) bool {
	if f.Location != "" {
		needle := strings.ToLower(f.Location)
		if !strings.Contains(strings.ToLower(r.City), needle) &&
			!strings.Contains(strings.ToLower(r.State), needle) &&
			!strings.Contains(strings.ToLower(r.PostalCode), needle) {
			return false
		}
	}
	if f.MinPrice != nil && r.Price < *f.MinPrice {
		return false
	}
	if f.MaxPrice != nil && r.Price > *f.MaxPrice {
		return false
	}
	if f.MinBeds != nil && r.Bedrooms < *f.MinBeds {
		return false
	}
	if f.MinBaths != nil && r.Bathrooms < *f.MinBaths {
		return false
	}
	return true
}
