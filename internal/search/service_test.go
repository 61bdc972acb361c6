package search

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/JakeFAU/listing-harvester/internal/adapters"
	"github.com/JakeFAU/listing-harvester/internal/listing"
	"github.com/JakeFAU/listing-harvester/internal/store"
)

type fakeAdapter struct {
	tag     listing.Source
	records []listing.Record
	closed  bool

	gotLocation string
	gotMin      float64
	gotMax      float64
}

func (f *fakeAdapter) Tag() listing.Source { return f.tag }

func (f *fakeAdapter) Search(_ context.Context, location string, minPrice, maxPrice float64) []listing.Record {
	f.gotLocation = location
	f.gotMin = minPrice
	f.gotMax = maxPrice
	return f.records
}

func (f *fakeAdapter) Close() { f.closed = true }

func fakeFactory(adaptersByTag map[listing.Source]*fakeAdapter) Factory {
	return func(tag listing.Source) (adapters.Adapter, bool) {
		a, ok := adaptersByTag[tag]
		return a, ok
	}
}

func record(source listing.Source, addr string, price, beds, baths float64) listing.Record {
	return listing.Record{
		ID:        listing.Identity(addr, "Denver", "80203"),
		Source:    source,
		Address:   addr,
		City:      "Denver",
		State:     "CO",
		Price:     price,
		Bedrooms:  beds,
		Bathrooms: baths,
	}
}

func TestSearchPersistsAndCounts(t *testing.T) {
	zillow := &fakeAdapter{tag: listing.SourceZillow, records: []listing.Record{
		record(listing.SourceZillow, "2 B St", 300000, 3, 2),
		record(listing.SourceZillow, "1 A St", 200000, 2, 1),
	}}
	redfin := &fakeAdapter{tag: listing.SourceRedfin, records: []listing.Record{
		record(listing.SourceRedfin, "3 C St", 250000, 4, 3),
	}}

	st := store.NewMemoryStore()
	svc := NewService(st, fakeFactory(map[listing.Source]*fakeAdapter{
		listing.SourceZillow: zillow,
		listing.SourceRedfin: redfin,
	}), nil, zap.NewNop())

	got, err := svc.Search(context.Background(), Options{
		Location: "Denver, CO",
		MaxPrice: 500000,
		Sources:  []listing.Source{listing.SourceZillow, listing.SourceRedfin},
	})
	require.NoError(t, err)
	require.Equal(t, map[listing.Source]int{listing.SourceZillow: 2, listing.SourceRedfin: 1}, got.Counts)

	require.Len(t, got.Records, 3)
	require.Equal(t, 200000.0, got.Records[0].Price)
	require.Equal(t, 250000.0, got.Records[1].Price)
	require.Equal(t, 300000.0, got.Records[2].Price)

	stored, err := st.Query(context.Background(), store.Filter{})
	require.NoError(t, err)
	require.Len(t, stored, 3)

	require.True(t, zillow.closed)
	require.True(t, redfin.closed)
}

func TestSearchSourceIsolation(t *testing.T) {
	// One source coming back empty must not disturb the others.
	empty := &fakeAdapter{tag: listing.SourceZillow}
	redfin := &fakeAdapter{tag: listing.SourceRedfin, records: []listing.Record{
		record(listing.SourceRedfin, "3 C St", 250000, 4, 3),
	}}

	svc := NewService(store.NewMemoryStore(), fakeFactory(map[listing.Source]*fakeAdapter{
		listing.SourceZillow: empty,
		listing.SourceRedfin: redfin,
	}), nil, zap.NewNop())

	got, err := svc.Search(context.Background(), Options{
		Location: "Denver, CO",
		Sources:  []listing.Source{listing.SourceZillow, listing.SourceRedfin},
	})
	require.NoError(t, err)
	require.Equal(t, 0, got.Counts[listing.SourceZillow])
	require.Equal(t, 1, got.Counts[listing.SourceRedfin])
	require.Len(t, got.Records, 1)
}

func TestSearchRequiresLocation(t *testing.T) {
	svc := NewService(store.NewMemoryStore(), fakeFactory(nil), nil, zap.NewNop())
	_, err := svc.Search(context.Background(), Options{Location: "   "})
	require.Error(t, err)
}

func TestSearchNormalizesPriceRange(t *testing.T) {
	cases := []struct {
		name             string
		min, max         float64
		wantMin, wantMax float64
	}{
		{"missing max", 100000, 0, 100000, 1000000},
		{"negative min", -5, 500000, 0, 500000},
		{"inverted", 900000, 100000, 0, 100000},
		{"valid", 200000, 400000, 200000, 400000},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			a := &fakeAdapter{tag: listing.SourceZillow}
			svc := NewService(store.NewMemoryStore(), fakeFactory(map[listing.Source]*fakeAdapter{
				listing.SourceZillow: a,
			}), nil, zap.NewNop())

			_, err := svc.Search(context.Background(), Options{
				Location: "Denver, CO",
				MinPrice: tc.min,
				MaxPrice: tc.max,
				Sources:  []listing.Source{listing.SourceZillow},
			})
			require.NoError(t, err)
			require.Equal(t, tc.wantMin, a.gotMin)
			require.Equal(t, tc.wantMax, a.gotMax)
		})
	}
}

func TestSearchPostFilters(t *testing.T) {
	a := &fakeAdapter{tag: listing.SourceZillow, records: []listing.Record{
		record(listing.SourceZillow, "1 A St", 200000, 2, 1),
		record(listing.SourceZillow, "2 B St", 300000, 3, 2),
		record(listing.SourceZillow, "3 C St", 400000, 4, 3),
		record(listing.SourceZillow, "4 D St", 500000, 5, 3),
	}}
	st := store.NewMemoryStore()
	svc := NewService(st, fakeFactory(map[listing.Source]*fakeAdapter{
		listing.SourceZillow: a,
	}), nil, zap.NewNop())

	got, err := svc.Search(context.Background(), Options{
		Location: "Denver, CO",
		Sources:  []listing.Source{listing.SourceZillow},
		MinBeds:  3,
		MinBaths: 2,
		Limit:    2,
	})
	require.NoError(t, err)
	require.Len(t, got.Records, 2)
	require.Equal(t, 300000.0, got.Records[0].Price)
	require.Equal(t, 400000.0, got.Records[1].Price)

	// Post-hoc filters trim the response, never the persisted set.
	require.Equal(t, 4, got.Counts[listing.SourceZillow])
	stored, err := st.Query(context.Background(), store.Filter{})
	require.NoError(t, err)
	require.Len(t, stored, 4)
}

func TestSearchUnknownSourceSkipped(t *testing.T) {
	svc := NewService(store.NewMemoryStore(), fakeFactory(nil), nil, zap.NewNop())
	got, err := svc.Search(context.Background(), Options{
		Location: "Denver, CO",
		Sources:  []listing.Source{listing.Source("craigslist")},
	})
	require.NoError(t, err)
	require.Empty(t, got.Records)
	require.Empty(t, got.Counts)
}

type failingStore struct{ store.Store }

func (failingStore) Upsert(context.Context, listing.Record) error {
	return errors.New("connection reset")
}

func TestSearchStorageErrorAborts(t *testing.T) {
	a := &fakeAdapter{tag: listing.SourceZillow, records: []listing.Record{
		record(listing.SourceZillow, "1 A St", 200000, 2, 1),
	}}
	svc := NewService(failingStore{}, fakeFactory(map[listing.Source]*fakeAdapter{
		listing.SourceZillow: a,
	}), nil, zap.NewNop())

	_, err := svc.Search(context.Background(), Options{
		Location: "Denver, CO",
		Sources:  []listing.Source{listing.SourceZillow},
	})
	require.ErrorContains(t, err, "connection reset")
	require.True(t, a.closed)
}

type panickyAdapter struct {
	fakeAdapter
}

func (p *panickyAdapter) Search(context.Context, string, float64, float64) []listing.Record {
	panic("selector engine exploded")
}

func TestSearchReleasesAdapterOnPanic(t *testing.T) {
	a := &panickyAdapter{fakeAdapter{tag: listing.SourceZillow}}
	factory := func(listing.Source) (adapters.Adapter, bool) { return a, true }
	svc := NewService(store.NewMemoryStore(), factory, nil, zap.NewNop())

	require.Panics(t, func() {
		_, _ = svc.Search(context.Background(), Options{
			Location: "Denver, CO",
			Sources:  []listing.Source{listing.SourceZillow},
		})
	})
	require.True(t, a.closed)
}

type recordingNotifier struct {
	summary Summary
	called  bool
}

func (n *recordingNotifier) SearchCompleted(_ context.Context, summary Summary) {
	n.summary = summary
	n.called = true
}

func TestSearchNotifiesCompletion(t *testing.T) {
	a := &fakeAdapter{tag: listing.SourceZillow, records: []listing.Record{
		record(listing.SourceZillow, "1 A St", 200000, 2, 1),
	}}
	n := &recordingNotifier{}
	svc := NewService(store.NewMemoryStore(), fakeFactory(map[listing.Source]*fakeAdapter{
		listing.SourceZillow: a,
	}), n, zap.NewNop())
	svc.now = func() time.Time { return time.Unix(1700000000, 0) }

	_, err := svc.Search(context.Background(), Options{
		Location: "Denver, CO",
		Sources:  []listing.Source{listing.SourceZillow},
	})
	require.NoError(t, err)
	require.True(t, n.called)
	require.NotEmpty(t, n.summary.ID)
	require.Equal(t, "Denver, CO", n.summary.Location)
	require.Equal(t, 1, n.summary.Total)
	require.Equal(t, 1, n.summary.Counts[listing.SourceZillow])
}

func TestSearchCanceledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	svc := NewService(store.NewMemoryStore(), fakeFactory(nil), nil, zap.NewNop())
	_, err := svc.Search(ctx, Options{
		Location: "Denver, CO",
		Sources:  []listing.Source{listing.SourceZillow},
	})
	require.ErrorIs(t, err, context.Canceled)
}
