// Package store persists normalized listing records with upsert-by-identity
// semantics.
package store

import (
	"context"

	"github.com/JakeFAU/listing-harvester/internal/listing"
)

// Filter narrows a query. All set filters are conjunctive; zero-value fields
// impose no constraint. Location matches as a substring of city, state, or
// postal code.
type Filter struct {
	Location string
	MinPrice *float64
	MaxPrice *float64
	MinBeds  *float64
	MinBaths *float64
}

// Store is the persistence contract for listing records. Upsert replaces the
// whole row keyed by record ID; it never merges. A failed upsert leaves the
// previous row untouched.
type Store interface {
	Upsert(ctx context.Context, record listing.Record) error
	Query(ctx context.Context, filter Filter) ([]listing.Record, error)
	Close()
}
