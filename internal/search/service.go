// Package search orchestrates multi-source listing searches: it fans a query
// out across the configured site adapters, persists everything they return,
// and applies the caller's post-hoc filters to the combined result.
package search

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/JakeFAU/listing-harvester/internal/adapters"
	"github.com/JakeFAU/listing-harvester/internal/listing"
	"github.com/JakeFAU/listing-harvester/internal/metrics"
	"github.com/JakeFAU/listing-harvester/internal/store"
	"github.com/JakeFAU/listing-harvester/internal/transport"
)

// defaultMaxPrice caps searches that do not set an upper bound.
const defaultMaxPrice = 1_000_000

// Options describes one search. MinBeds, MinBaths, and Limit are applied to
// the combined result after extraction; they never reach the sites.
type Options struct {
	Location string
	MinPrice float64
	MaxPrice float64
	Sources  []listing.Source

	MinBeds  float64
	MinBaths float64
	Limit    int
}

// Result is the outcome of one search. Counts holds raw per-source
// extraction totals, before post-hoc filtering.
type Result struct {
	Records []listing.Record
	Counts  map[listing.Source]int
}

// Summary describes a completed search for downstream consumers.
type Summary struct {
	ID       string                 `json:"id"`
	Location string                 `json:"location"`
	Counts   map[listing.Source]int `json:"counts"`
	Total    int                    `json:"total"`
	Started  time.Time              `json:"started"`
	Duration time.Duration          `json:"duration"`
}

// Notifier receives completion summaries. Implementations must not fail the
// search path; delivery problems are theirs to log.
type Notifier interface {
	SearchCompleted(ctx context.Context, summary Summary)
}

// Factory builds the adapter for one source tag, or reports false for tags
// it does not know.
type Factory func(tag listing.Source) (adapters.Adapter, bool)

// NewFactory returns a Factory that gives every adapter its own transport
// client, keeping browser sessions strictly per-adapter. wrap, when non-nil,
// decorates each transport before the adapter sees it.
func NewFactory(cfg transport.Config, logger *zap.Logger, wrap func(adapters.Transport) adapters.Transport) Factory {
	return func(tag listing.Source) (adapters.Adapter, bool) {
		var t adapters.Transport = transport.NewClient(cfg, logger)
		if wrap != nil {
			t = wrap(t)
		}
		return adapters.Build(tag, t, logger.Named(string(tag)))
	}
}

// Service runs searches across site adapters and persists every extracted
// record before returning.
type Service struct {
	store    store.Store
	build    Factory
	notifier Notifier
	logger   *zap.Logger
	now      func() time.Time
}

// NewService wires a Service. notifier may be nil.
func NewService(st store.Store, build Factory, notifier Notifier, logger *zap.Logger) *Service {
	return &Service{
		store:    st,
		build:    build,
		notifier: notifier,
		logger:   logger,
		now:      time.Now,
	}
}

// Search runs the query against every requested source sequentially. A source
// that yields nothing, for whatever reason, contributes a zero count; only
// invalid input, context cancellation, or a storage failure produce an error.
func (s *Service) Search(ctx context.Context, opts Options) (*Result, error) {
	if strings.TrimSpace(opts.Location) == "" {
		metrics.ObserveSearch("invalid")
		return nil, fmt.Errorf("location is required")
	}
	minPrice, maxPrice := normalizePriceRange(opts.MinPrice, opts.MaxPrice)

	sources := opts.Sources
	if len(sources) == 0 {
		sources = []listing.Source{listing.SourceZillow, listing.SourceRedfin, listing.SourceRealtor}
	}

	started := s.now()
	counts := make(map[listing.Source]int, len(sources))
	var all []listing.Record

	for _, tag := range sources {
		if err := ctx.Err(); err != nil {
			metrics.ObserveSearch("canceled")
			return nil, err
		}

		adapter, ok := s.build(tag)
		if !ok {
			s.logger.Warn("unknown source tag", zap.String("source", string(tag)))
			continue
		}

		records, err := s.harvestSource(ctx, adapter, opts.Location, minPrice, maxPrice)
		if err != nil {
			metrics.ObserveSearch("error")
			return nil, err
		}
		counts[tag] = len(records)
		all = append(all, records...)

		s.logger.Info("source search finished",
			zap.String("source", string(tag)),
			zap.Int("listings", len(records)),
		)
	}

	all = applyPostFilters(all, opts)
	metrics.ObserveSearch("ok")

	if s.notifier != nil {
		s.notifier.SearchCompleted(ctx, Summary{
			ID:       uuid.NewString(),
			Location: opts.Location,
			Counts:   counts,
			Total:    len(all),
			Started:  started,
			Duration: s.now().Sub(started),
		})
	}
	return &Result{Records: all, Counts: counts}, nil
}

// harvestSource runs one adapter and persists its records. The adapter is
// released on every exit path, a panic in Search included, so a browser
// session can never outlive its source run.
func (s *Service) harvestSource(ctx context.Context, adapter adapters.Adapter, location string, minPrice, maxPrice float64) ([]listing.Record, error) {
	defer adapter.Close()

	records := adapter.Search(ctx, location, minPrice, maxPrice)
	for _, record := range records {
		if err := s.store.Upsert(ctx, record); err != nil {
			return nil, fmt.Errorf("persist %s listing: %w", adapter.Tag(), err)
		}
	}
	return records, nil
}

// normalizePriceRange repairs nonsense bounds instead of rejecting them:
// a missing or non-positive maximum falls back to the default cap, and an
// inverted range drops the lower bound.
func normalizePriceRange(min, max float64) (float64, float64) {
	if min < 0 {
		min = 0
	}
	if max <= 0 {
		max = defaultMaxPrice
	}
	if min > max {
		min = 0
	}
	return min, max
}

func applyPostFilters(records []listing.Record, opts Options) []listing.Record {
	if opts.MinBeds > 0 || opts.MinBaths > 0 {
		kept := records[:0]
		for _, r := range records {
			if opts.MinBeds > 0 && r.Bedrooms < opts.MinBeds {
				continue
			}
			if opts.MinBaths > 0 && r.Bathrooms < opts.MinBaths {
				continue
			}
			kept = append(kept, r)
		}
		records = kept
	}
	sort.SliceStable(records, func(i, j int) bool { return records[i].Price < records[j].Price })
	if opts.Limit > 0 && len(records) > opts.Limit {
		records = records[:opts.Limit]
	}
	return records
}
