package adapters

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"go.uber.org/zap"

	"github.com/JakeFAU/listing-harvester/internal/listing"
	"github.com/JakeFAU/listing-harvester/internal/metrics"
)

const realtorBaseURL = "https://www.realtor.com"

const realtorWaitSelector = "div[data-testid='property-card']"

var realtorRules = cardRules{
	Card:    "div[data-testid='property-card']",
	Price:   "span[data-testid='property-price']",
	Address: "div[data-testid='property-address']",
	Link:    "a[data-testid='property-anchor']",
	Details: realtorDetails,
}

// realtorDetails assembles a labeled blob from the site's discrete meta
// elements so the shared bed/bath/sqft patterns can match it.
func realtorDetails(card *goquery.Selection) string {
	var parts []string
	if v := card.Find("li[data-testid='property-meta-beds'] span").First().Text(); v != "" {
		parts = append(parts, v+" bd")
	}
	if v := card.Find("li[data-testid='property-meta-baths'] span").First().Text(); v != "" {
		parts = append(parts, v+" ba")
	}
	if v := card.Find("li[data-testid='property-meta-sqft'] span").First().Text(); v != "" {
		parts = append(parts, v+" sqft")
	}
	return strings.Join(parts, " ")
}

// Realtor searches realtor.com, which serves useful static HTML; rendered
// fetches are only a fallback.
type Realtor struct {
	base      string
	transport Transport
	logger    *zap.Logger
	now       func() time.Time
}

// NewRealtor builds a Realtor adapter that owns t.
func NewRealtor(t Transport, logger *zap.Logger) *Realtor {
	return &Realtor{
		base:      realtorBaseURL,
		transport: t,
		logger:    logger.Named("realtor"),
		now:       func() time.Time { return time.Now().UTC() },
	}
}

// Tag reports the source tag stamped onto extracted records.
func (r *Realtor) Tag() listing.Source {
	return listing.SourceRealtor
}

// Search returns normalized listings for the location and price bounds.
// Failures degrade to an empty result.
func (r *Realtor) Search(ctx context.Context, location string, minPrice, maxPrice float64) []listing.Record {
	start := r.now()
	defer func() {
		metrics.ObserveSourceSearch(string(r.Tag()), time.Since(start))
	}()

	slug := citySlug(location)
	searchURL := fmt.Sprintf("%s/homes-for-sale/%s?price-%d-%d",
		r.base, slug, int(minPrice), int(maxPrice))

	doc := fetchPreferStatic(ctx, r.transport, searchURL, realtorWaitSelector, r.logger)
	if doc == nil {
		// Some regions only resolve under the legacy path.
		altURL := fmt.Sprintf("%s/realestateandhomes-search/%s", r.base, slug)
		doc = fetchPreferStatic(ctx, r.transport, altURL, realtorWaitSelector, r.logger)
	}
	if doc == nil {
		return nil
	}
	return extractListings(doc, realtorRules, r.Tag(), r.base, r.now(), r.logger)
}

// Close releases the transport, including any headless session it acquired.
func (r *Realtor) Close() {
	r.transport.Close()
}
