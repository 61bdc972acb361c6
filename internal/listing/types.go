// Package listing defines the canonical listing record shared across subsystems.
package listing

import (
	"strings"
	"time"
)

// Source identifies the site a record was extracted from.
type Source string

// Supported listing sources.
const (
	SourceZillow  Source = "zillow"
	SourceRedfin  Source = "redfin"
	SourceRealtor Source = "realtor"
)

// ParseSources converts a comma-separated tag list into known Source values.
// Unknown tags are dropped.
func ParseSources(raw string) []Source {
	var out []Source
	for _, part := range strings.Split(raw, ",") {
		switch Source(strings.ToLower(strings.TrimSpace(part))) {
		case SourceZillow:
			out = append(out, SourceZillow)
		case SourceRedfin:
			out = append(out, SourceRedfin)
		case SourceRealtor:
			out = append(out, SourceRealtor)
		}
	}
	return out
}

// Record is the normalized unit of listing data. A Record is assembled once
// inside an adapter at parse time and never mutated afterwards; re-scrapes
// produce a new Record that replaces the stored row wholesale under the same ID.
type Record struct {
	ID         string `json:"id"`
	Source     Source `json:"source"`
	URL        string `json:"url"`
	Address    string `json:"address"`
	City       string `json:"city"`
	State      string `json:"state"`
	PostalCode string `json:"zip_code"`

	Price     float64 `json:"price"`
	Bedrooms  float64 `json:"bedrooms"`
	Bathrooms float64 `json:"bathrooms"`

	SquareFeet   *float64   `json:"square_feet,omitempty"`
	LotSize      *float64   `json:"lot_size,omitempty"`
	YearBuilt    *int       `json:"year_built,omitempty"`
	PropertyType string     `json:"property_type,omitempty"`
	Description  string     `json:"description,omitempty"`
	Features     []string   `json:"features,omitempty"`
	ImageURLs    []string   `json:"image_urls,omitempty"`
	DateListed   *time.Time `json:"date_listed,omitempty"`

	DateScraped time.Time `json:"date_scraped"`
}

// FullAddress renders the location fields as a single display string,
// skipping components that failed to parse.
func (r Record) FullAddress() string {
	parts := make([]string, 0, 4)
	for _, p := range []string{r.Address, r.City, r.State, r.PostalCode} {
		if p != "" {
			parts = append(parts, p)
		}
	}
	return strings.Join(parts, ", ")
}

// JoinList flattens an ordered sequence for column storage.
func JoinList(items []string) string {
	return strings.Join(items, ",")
}

// SplitList reverses JoinList. An empty column yields a nil slice.
func SplitList(raw string) []string {
	if raw == "" {
		return nil
	}
	return strings.Split(raw, ",")
}
