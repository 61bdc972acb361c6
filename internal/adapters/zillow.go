package adapters

import (
	"context"
	"fmt"
	"net/url"
	"time"

	"go.uber.org/zap"

	"github.com/JakeFAU/listing-harvester/internal/listing"
	"github.com/JakeFAU/listing-harvester/internal/metrics"
)

const zillowBaseURL = "https://www.zillow.com"

// zillowWaitSelector marks that the script-rendered result list has loaded.
const zillowWaitSelector = ".property-card-data"

var zillowRules = cardRules{
	Card:    "div[data-test='property-card']",
	Price:   ".property-card-price",
	Address: "address",
	Link:    "a.property-card-link",
	Details: detailsText(".property-card-details"),
}

// Zillow searches zillow.com. The site is script-heavy, so rendered fetches
// are preferred.
type Zillow struct {
	base      string
	transport Transport
	logger    *zap.Logger
	now       func() time.Time
}

// NewZillow builds a Zillow adapter that owns t.
func NewZillow(t Transport, logger *zap.Logger) *Zillow {
	return &Zillow{
		base:      zillowBaseURL,
		transport: t,
		logger:    logger.Named("zillow"),
		now:       func() time.Time { return time.Now().UTC() },
	}
}

// Tag reports the source tag stamped onto extracted records.
func (z *Zillow) Tag() listing.Source {
	return listing.SourceZillow
}

// Search returns normalized listings for the location and price bounds.
// Failures degrade to an empty result.
func (z *Zillow) Search(ctx context.Context, location string, minPrice, maxPrice float64) []listing.Record {
	start := z.now()
	defer func() {
		metrics.ObserveSourceSearch(string(z.Tag()), time.Since(start))
	}()

	searchURL := fmt.Sprintf("%s/homes/for_sale/%s/%d-%d_price/",
		z.base, url.PathEscape(location), int(minPrice), int(maxPrice))

	doc := fetchPreferRendered(ctx, z.transport, searchURL, zillowWaitSelector, z.logger)
	if doc == nil {
		return nil
	}
	return extractListings(doc, zillowRules, z.Tag(), z.base, z.now(), z.logger)
}

// Close releases the transport, including any headless session it acquired.
func (z *Zillow) Close() {
	z.transport.Close()
}
