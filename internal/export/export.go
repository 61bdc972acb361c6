// Package export renders listing records to CSV and JSON files.
package export

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strconv"
	"time"

	"github.com/JakeFAU/listing-harvester/internal/listing"
)

// Format names a supported export encoding.
type Format string

// Supported export formats.
const (
	FormatCSV  Format = "csv"
	FormatJSON Format = "json"
)

// ParseFormat validates a user-supplied format name.
func ParseFormat(raw string) (Format, error) {
	switch Format(raw) {
	case FormatCSV:
		return FormatCSV, nil
	case FormatJSON:
		return FormatJSON, nil
	default:
		return "", fmt.Errorf("unsupported export format %q", raw)
	}
}

// csvHeader fixes the column order; readers downstream rely on it.
var csvHeader = []string{
	"id", "source", "url", "address", "city", "state", "zip_code",
	"price", "bedrooms", "bathrooms", "square_feet", "lot_size", "year_built",
	"property_type", "description", "features", "image_urls",
	"date_listed", "date_scraped",
}

// WriteCSV writes records with a fixed header row. Optional numeric fields
// render as empty cells rather than zeroes.
func WriteCSV(w io.Writer, records []listing.Record) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(csvHeader); err != nil {
		return fmt.Errorf("write csv header: %w", err)
	}
	for _, r := range records {
		if err := cw.Write(csvRow(r)); err != nil {
			return fmt.Errorf("write csv row %s: %w", r.ID, err)
		}
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		return fmt.Errorf("flush csv: %w", err)
	}
	return nil
}

func csvRow(r listing.Record) []string {
	return []string{
		r.ID,
		string(r.Source),
		r.URL,
		r.Address,
		r.City,
		r.State,
		r.PostalCode,
		strconv.FormatFloat(r.Price, 'f', -1, 64),
		strconv.FormatFloat(r.Bedrooms, 'f', -1, 64),
		strconv.FormatFloat(r.Bathrooms, 'f', -1, 64),
		optFloat(r.SquareFeet),
		optFloat(r.LotSize),
		optInt(r.YearBuilt),
		r.PropertyType,
		r.Description,
		listing.JoinList(r.Features),
		listing.JoinList(r.ImageURLs),
		optTime(r.DateListed),
		r.DateScraped.Format(time.RFC3339),
	}
}

func optFloat(v *float64) string {
	if v == nil {
		return ""
	}
	return strconv.FormatFloat(*v, 'f', -1, 64)
}

func optInt(v *int) string {
	if v == nil {
		return ""
	}
	return strconv.Itoa(*v)
}

func optTime(v *time.Time) string {
	if v == nil {
		return ""
	}
	return v.Format(time.RFC3339)
}

// WriteJSON writes records as an indented JSON array.
func WriteJSON(w io.Writer, records []listing.Record) error {
	if records == nil {
		records = []listing.Record{}
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(records); err != nil {
		return fmt.Errorf("encode json: %w", err)
	}
	return nil
}

// WriteFile exports records to path in the given format.
func WriteFile(path string, format Format, records []listing.Record) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create export file: %w", err)
	}
	defer f.Close()

	switch format {
	case FormatCSV:
		err = WriteCSV(f, records)
	case FormatJSON:
		err = WriteJSON(f, records)
	default:
		err = fmt.Errorf("unsupported export format %q", format)
	}
	if err != nil {
		return err
	}
	return f.Close()
}
