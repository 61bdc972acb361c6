package listing

import (
	"regexp"
	"strings"
)

// ParsedAddress is the structured form of a free-text address line.
// Fields are empty strings, never absent, when a component cannot be parsed.
type ParsedAddress struct {
	Address    string
	City       string
	State      string
	PostalCode string
}

var (
	// "{street}, {city}, {ST} {ZIP}" with an optional ZIP+4 suffix.
	strictAddressPattern = regexp.MustCompile(`^(.*?),\s*(.*?),\s*([A-Z]{2})\s*(\d{5}(?:-\d{4})?)`)
	// Same shape without the ZIP requirement.
	relaxedAddressPattern = regexp.MustCompile(`^(.*?),\s*(.*?),\s*([A-Z]{2})`)

	whitespaceRun = regexp.MustCompile(`\s+`)
	zipPattern    = regexp.MustCompile(`\b\d{5}(?:-\d{4})?\b`)
)

// ParseAddress splits a free-text address into street, city, state, and ZIP.
// It tries the strict US shape first, then a relaxed shape without a ZIP, and
// finally degrades to returning the whole input as the street line. Callers
// must tolerate partially populated results rather than reject the record.
func ParseAddress(text string) ParsedAddress {
	text = CleanText(text)
	if text == "" {
		return ParsedAddress{}
	}

	if m := strictAddressPattern.FindStringSubmatch(text); m != nil {
		return ParsedAddress{
			Address:    strings.TrimSpace(m[1]),
			City:       strings.TrimSpace(m[2]),
			State:      m[3],
			PostalCode: m[4],
		}
	}

	if m := relaxedAddressPattern.FindStringSubmatch(text); m != nil {
		return ParsedAddress{
			Address: strings.TrimSpace(m[1]),
			City:    strings.TrimSpace(m[2]),
			State:   m[3],
		}
	}

	return ParsedAddress{Address: text}
}

// CleanText collapses whitespace runs into single spaces and trims the ends.
func CleanText(text string) string {
	return strings.TrimSpace(whitespaceRun.ReplaceAllString(text, " "))
}

// ExtractZIP returns the first ZIP (or ZIP+4) found in text, or "".
func ExtractZIP(text string) string {
	return zipPattern.FindString(text)
}
