package adapters

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// Numeric extraction convention shared by every adapter: prices are stripped
// of everything but digits and dots, and secondary fields are matched against
// their unit label with a documented default when the label is missing.
var (
	nonNumeric = regexp.MustCompile(`[^\d.]`)

	bedsPattern  = regexp.MustCompile(`(?i)(\d+(?:\.\d+)?)\s*(?:bd|beds?)`)
	bathsPattern = regexp.MustCompile(`(?i)(\d+(?:\.\d+)?)\s*(?:ba|baths?)`)
	sqftPattern  = regexp.MustCompile(`(?i)([\d,]+)\s*(?:sqft|sq\s*ft)`)
)

// Details holds the secondary attributes of a listing fragment. Beds and
// baths default to zero, square footage to absent.
type Details struct {
	Bedrooms   float64
	Bathrooms  float64
	SquareFeet *float64
}

// ParsePrice strips every non-digit/non-dot character and parses the rest as
// a non-negative real. "$1,234.50" -> 1234.50.
func ParsePrice(text string) (float64, error) {
	cleaned := nonNumeric.ReplaceAllString(text, "")
	if cleaned == "" {
		return 0, fmt.Errorf("no digits in price %q", text)
	}
	price, err := strconv.ParseFloat(cleaned, 64)
	if err != nil {
		return 0, fmt.Errorf("parse price %q: %w", text, err)
	}
	if price < 0 {
		return 0, fmt.Errorf("negative price %q", text)
	}
	return price, nil
}

// ParseDetails extracts beds, baths, and square footage from a details blob
// like "3 bd | 2 ba | 1,450 sqft". Fields whose label is not found resolve
// to their defaults rather than failing the fragment.
func ParseDetails(text string) Details {
	var d Details
	if m := bedsPattern.FindStringSubmatch(text); m != nil {
		if v, err := strconv.ParseFloat(m[1], 64); err == nil {
			d.Bedrooms = v
		}
	}
	if m := bathsPattern.FindStringSubmatch(text); m != nil {
		if v, err := strconv.ParseFloat(m[1], 64); err == nil {
			d.Bathrooms = v
		}
	}
	if m := sqftPattern.FindStringSubmatch(text); m != nil {
		raw := strings.ReplaceAll(m[1], ",", "")
		if v, err := strconv.ParseFloat(raw, 64); err == nil && v > 0 {
			d.SquareFeet = &v
		}
	}
	return d
}
