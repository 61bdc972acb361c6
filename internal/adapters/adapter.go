// Package adapters implements the per-site search contract. Each site gets
// one adapter that encapsulates all of its structural brittleness: query
// encoding, fetch strategy, and fragment selection.
package adapters

import (
	"context"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"go.uber.org/zap"

	"github.com/JakeFAU/listing-harvester/internal/listing"
	"github.com/JakeFAU/listing-harvester/internal/metrics"
	"github.com/JakeFAU/listing-harvester/internal/transport"
)

// Transport is the document delivery surface an adapter drives. Each adapter
// owns its Transport exclusively; the headless session behind it must never
// be shared across adapters.
type Transport interface {
	FetchStatic(ctx context.Context, url string) (*transport.Document, error)
	FetchRendered(ctx context.Context, url, waitSelector string) (*transport.Document, error)
	Close()
}

// Adapter is the uniform search contract over heterogeneous sites. Search
// never fails past this boundary: adapter-level errors degrade to an empty
// result so one misbehaving source cannot abort a multi-source search.
type Adapter interface {
	Tag() listing.Source
	Search(ctx context.Context, location string, minPrice, maxPrice float64) []listing.Record
	Close()
}

type builder func(t Transport, logger *zap.Logger) Adapter

var builders = map[listing.Source]builder{
	listing.SourceZillow:  func(t Transport, l *zap.Logger) Adapter { return NewZillow(t, l) },
	listing.SourceRedfin:  func(t Transport, l *zap.Logger) Adapter { return NewRedfin(t, l) },
	listing.SourceRealtor: func(t Transport, l *zap.Logger) Adapter { return NewRealtor(t, l) },
}

// Build returns the adapter for tag backed by t, or false for unknown tags.
func Build(tag listing.Source, t Transport, logger *zap.Logger) (Adapter, bool) {
	b, ok := builders[tag]
	if !ok {
		return nil, false
	}
	return b(t, logger), true
}

// cardRules is the per-site selector table for one listing card. Price,
// address, and link are required fields; a fragment missing any of them is
// skipped. Details feeds the shared bed/bath/sqft patterns and degrades to
// defaults when it does not match.
type cardRules struct {
	Card    string
	Price   string
	Address string
	Link    string
	Details func(s *goquery.Selection) string
}

// detailsText returns a Details blob builder for a single selector.
func detailsText(selector string) func(*goquery.Selection) string {
	return func(s *goquery.Selection) string {
		return s.Find(selector).First().Text()
	}
}

// extractListings maps every card fragment in doc through the shared
// extraction pipeline. Extraction failures are strictly per-fragment: a bad
// card is skipped (or degraded) without touching its siblings.
func extractListings(
	doc *transport.Document,
	rules cardRules,
	source listing.Source,
	baseURL string,
	now time.Time,
	logger *zap.Logger,
) []listing.Record {
	var records []listing.Record
	doc.Find(rules.Card).Each(func(i int, card *goquery.Selection) {
		record, ok := extractFragment(card, rules, source, baseURL, now, logger)
		if ok {
			records = append(records, record)
		}
	})
	metrics.ObserveListings(string(source), len(records))
	return records
}

func extractFragment(
	card *goquery.Selection,
	rules cardRules,
	source listing.Source,
	baseURL string,
	now time.Time,
	logger *zap.Logger,
) (record listing.Record, ok bool) {
	// Selector panics in one fragment must not abort the rest of the page.
	defer func() {
		if r := recover(); r != nil {
			logger.Warn("fragment extraction panicked",
				zap.String("source", string(source)),
				zap.Any("panic", r),
			)
			ok = false
		}
	}()

	priceText := listing.CleanText(card.Find(rules.Price).First().Text())
	if priceText == "" {
		return listing.Record{}, false
	}
	price, err := ParsePrice(priceText)
	if err != nil {
		logger.Debug("skipping fragment with unparseable price",
			zap.String("source", string(source)),
			zap.String("price", priceText),
		)
		return listing.Record{}, false
	}

	addressText := listing.CleanText(card.Find(rules.Address).First().Text())
	if addressText == "" {
		return listing.Record{}, false
	}

	href, exists := card.Find(rules.Link).First().Attr("href")
	href = strings.TrimSpace(href)
	if !exists || href == "" {
		return listing.Record{}, false
	}
	if !strings.HasPrefix(href, "http") {
		href = baseURL + href
	}

	var details Details
	if rules.Details != nil {
		details = ParseDetails(rules.Details(card))
	}

	parsed := listing.ParseAddress(addressText)
	record = listing.Record{
		ID:          listing.Identity(parsed.Address, parsed.City, parsed.PostalCode),
		Source:      source,
		URL:         href,
		Address:     parsed.Address,
		City:        parsed.City,
		State:       parsed.State,
		PostalCode:  parsed.PostalCode,
		Price:       price,
		Bedrooms:    details.Bedrooms,
		Bathrooms:   details.Bathrooms,
		SquareFeet:  details.SquareFeet,
		DateScraped: now,
	}
	return record, true
}

// fetchPreferRendered tries the headless strategy first and falls back to a
// static fetch before giving up. A nil document means both strategies failed;
// the caller reports zero results, not an error.
func fetchPreferRendered(ctx context.Context, t Transport, url, waitSelector string, logger *zap.Logger) *transport.Document {
	doc, err := t.FetchRendered(ctx, url, waitSelector)
	if err == nil {
		return doc
	}
	logger.Warn("rendered fetch failed, falling back to static",
		zap.String("url", url),
		zap.Error(err),
	)
	doc, err = t.FetchStatic(ctx, url)
	if err != nil {
		logger.Warn("static fallback failed", zap.String("url", url), zap.Error(err))
		return nil
	}
	return doc
}

// fetchPreferStatic tries the plain HTTP strategy first and falls back to a
// rendered fetch before giving up.
func fetchPreferStatic(ctx context.Context, t Transport, url, waitSelector string, logger *zap.Logger) *transport.Document {
	doc, err := t.FetchStatic(ctx, url)
	if err == nil {
		return doc
	}
	logger.Warn("static fetch failed, falling back to rendered",
		zap.String("url", url),
		zap.Error(err),
	)
	doc, err = t.FetchRendered(ctx, url, waitSelector)
	if err != nil {
		logger.Warn("rendered fallback failed", zap.String("url", url), zap.Error(err))
		return nil
	}
	return doc
}
