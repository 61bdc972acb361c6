package store

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/JakeFAU/listing-harvester/internal/listing"
)

func TestMemoryUpsertIdempotence(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()

	rec := testRecord()
	require.NoError(t, s.Upsert(ctx, rec))

	rec.Price = 460000
	require.NoError(t, s.Upsert(ctx, rec))

	got, err := s.Query(ctx, Filter{})
	require.NoError(t, err)
	require.Len(t, got, 1)
	require.Equal(t, 460000.0, got[0].Price)
}

func TestMemoryCrossSourceCollapse(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()

	first := testRecord()
	require.NoError(t, s.Upsert(ctx, first))

	// Same physical address found by a second site: same id, last write wins.
	second := first
	second.Source = listing.SourceRedfin
	second.URL = "https://www.redfin.com/home/123-main"
	require.NoError(t, s.Upsert(ctx, second))

	got, err := s.Query(ctx, Filter{})
	require.NoError(t, err)
	require.Len(t, got, 1)
	require.Equal(t, listing.SourceRedfin, got[0].Source)
}

func TestMemoryFilterConjunction(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()

	add := func(addr string, price, beds, baths float64) {
		rec := listing.Record{
			ID:        listing.Identity(addr, "Denver", "80203"),
			Source:    listing.SourceZillow,
			Address:   addr,
			City:      "Denver",
			State:     "CO",
			Price:     price,
			Bedrooms:  beds,
			Bathrooms: baths,
		}
		require.NoError(t, s.Upsert(ctx, rec))
	}
	add("1 A St", 150000, 2, 1)
	add("2 B St", 250000, 3, 2)
	add("3 C St", 350000, 4, 2)
	add("4 D St", 450000, 3, 3)

	minPrice, maxPrice, minBeds := 200000.0, 400000.0, 3.0
	got, err := s.Query(ctx, Filter{MinPrice: &minPrice, MaxPrice: &maxPrice, MinBeds: &minBeds})
	require.NoError(t, err)
	require.Len(t, got, 2)
	for _, r := range got {
		require.GreaterOrEqual(t, r.Price, minPrice)
		require.LessOrEqual(t, r.Price, maxPrice)
		require.GreaterOrEqual(t, r.Bedrooms, minBeds)
	}
}

func TestMemoryLocationSubstring(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()
	require.NoError(t, s.Upsert(ctx, testRecord()))

	for _, loc := range []string{"spring", "IL", "627"} {
		got, err := s.Query(ctx, Filter{Location: loc})
		require.NoError(t, err)
		require.Len(t, got, 1, "location %q", loc)
	}

	got, err := s.Query(ctx, Filter{Location: "denver"})
	require.NoError(t, err)
	require.Empty(t, got)
}

func TestMemoryEmptyStore(t *testing.T) {
	s := NewMemoryStore()
	minBaths := 2.0
	got, err := s.Query(context.Background(), Filter{Location: "x", MinBaths: &minBaths})
	require.NoError(t, err)
	require.Empty(t, got)
}
