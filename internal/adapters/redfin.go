package adapters

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/JakeFAU/listing-harvester/internal/listing"
	"github.com/JakeFAU/listing-harvester/internal/metrics"
)

const redfinBaseURL = "https://www.redfin.com"

const redfinWaitSelector = ".HomeCardContainer"

var redfinRules = cardRules{
	Card:    ".HomeCardContainer",
	Price:   ".homecardV2Price",
	Address: ".homeAddressV2",
	Link:    "a.homeCardV2Link",
	Details: detailsText(".HomeStatsV2"),
}

// Redfin searches redfin.com. Its city URLs do not carry price bounds, so the
// bounds are applied to the extracted records instead.
type Redfin struct {
	base      string
	transport Transport
	logger    *zap.Logger
	now       func() time.Time
}

// NewRedfin builds a Redfin adapter that owns t.
func NewRedfin(t Transport, logger *zap.Logger) *Redfin {
	return &Redfin{
		base:      redfinBaseURL,
		transport: t,
		logger:    logger.Named("redfin"),
		now:       func() time.Time { return time.Now().UTC() },
	}
}

// Tag reports the source tag stamped onto extracted records.
func (r *Redfin) Tag() listing.Source {
	return listing.SourceRedfin
}

// Search returns normalized listings for the location and price bounds.
// Failures degrade to an empty result.
func (r *Redfin) Search(ctx context.Context, location string, minPrice, maxPrice float64) []listing.Record {
	start := r.now()
	defer func() {
		metrics.ObserveSourceSearch(string(r.Tag()), time.Since(start))
	}()

	searchURL := fmt.Sprintf("%s/city/%s", r.base, cityPath(location))

	doc := fetchPreferRendered(ctx, r.transport, searchURL, redfinWaitSelector, r.logger)
	if doc == nil {
		return nil
	}

	records := extractListings(doc, redfinRules, r.Tag(), r.base, r.now(), r.logger)

	// Price bounds cannot be pushed into the URL for this site.
	filtered := records[:0]
	for _, rec := range records {
		if rec.Price < minPrice || (maxPrice > 0 && rec.Price > maxPrice) {
			continue
		}
		filtered = append(filtered, rec)
	}
	return filtered
}

// Close releases the transport, including any headless session it acquired.
func (r *Redfin) Close() {
	r.transport.Close()
}
