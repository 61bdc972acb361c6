package adapters

import "strings"

// stateCodes maps hyphenated full state names to their two-letter codes for
// sites whose URL schemes expect codes.
var stateCodes = map[string]string{
	"alabama": "al", "alaska": "ak", "arizona": "az", "arkansas": "ar",
	"california": "ca", "colorado": "co", "connecticut": "ct", "delaware": "de",
	"florida": "fl", "georgia": "ga", "hawaii": "hi", "idaho": "id",
	"illinois": "il", "indiana": "in", "iowa": "ia", "kansas": "ks",
	"kentucky": "ky", "louisiana": "la", "maine": "me", "maryland": "md",
	"massachusetts": "ma", "michigan": "mi", "minnesota": "mn", "mississippi": "ms",
	"missouri": "mo", "montana": "mt", "nebraska": "ne", "nevada": "nv",
	"new-hampshire": "nh", "new-jersey": "nj", "new-mexico": "nm", "new-york": "ny",
	"north-carolina": "nc", "north-dakota": "nd", "ohio": "oh", "oklahoma": "ok",
	"oregon": "or", "pennsylvania": "pa", "rhode-island": "ri", "south-carolina": "sc",
	"south-dakota": "sd", "tennessee": "tn", "texas": "tx", "utah": "ut",
	"vermont": "vt", "virginia": "va", "washington": "wa", "west-virginia": "wv",
	"wisconsin": "wi", "wyoming": "wy",
}

// splitLocation breaks "City, State" into lowercased hyphenated city and
// state parts, mapping full state names to two-letter codes. When the input
// has no comma the whole string comes back as the city with an empty state.
func splitLocation(location string) (city, state string) {
	parts := strings.SplitN(location, ",", 2)
	city = hyphenate(parts[0])
	if len(parts) == 2 {
		state = hyphenate(parts[1])
		if code, ok := stateCodes[state]; ok {
			state = code
		}
	}
	return city, state
}

// citySlug renders "Denver, CO" as "denver-co".
func citySlug(location string) string {
	city, state := splitLocation(location)
	if state == "" {
		return city
	}
	return city + "-" + state
}

// cityPath renders "Denver, CO" as "denver/co".
func cityPath(location string) string {
	city, state := splitLocation(location)
	if state == "" {
		return city
	}
	return city + "/" + state
}

func hyphenate(s string) string {
	return strings.ReplaceAll(strings.ToLower(strings.TrimSpace(s)), " ", "-")
}
