package export

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/JakeFAU/listing-harvester/internal/listing"
)

func sampleRecords() []listing.Record {
	sqft := 1450.0
	listed := time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC)
	return []listing.Record{
		{
			ID:          "abc123",
			Source:      listing.SourceZillow,
			URL:         "https://www.zillow.com/homedetails/1",
			Address:     "123 Main St",
			City:        "Springfield",
			State:       "IL",
			PostalCode:  "62704",
			Price:       450000,
			Bedrooms:    3,
			Bathrooms:   2.5,
			SquareFeet:  &sqft,
			Features:    []string{"pool", "garage"},
			DateListed:  &listed,
			DateScraped: time.Date(2026, 8, 28, 12, 0, 0, 0, time.UTC),
		},
		{
			ID:          "def456",
			Source:      listing.SourceRedfin,
			URL:         "https://www.redfin.com/home/2",
			Address:     "9 Elm St",
			City:        "Springfield",
			State:       "IL",
			PostalCode:  "62704",
			Price:       325000,
			Bedrooms:    2,
			Bathrooms:   1,
			DateScraped: time.Date(2026, 8, 28, 12, 0, 0, 0, time.UTC),
		},
	}
}

func TestWriteCSV(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteCSV(&buf, sampleRecords()))

	rows, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, 3)

	require.Equal(t, csvHeader, rows[0])

	first := rows[1]
	require.Equal(t, "abc123", first[0])
	require.Equal(t, "zillow", first[1])
	require.Equal(t, "450000", first[7])
	require.Equal(t, "2.5", first[9])
	require.Equal(t, "1450", first[10])
	require.Equal(t, "pool,garage", first[15])
	require.Equal(t, "2026-08-01T00:00:00Z", first[17])

	// Optional fields absent on the second record come out empty, not zero.
	second := rows[2]
	require.Equal(t, "", second[10])
	require.Equal(t, "", second[12])
	require.Equal(t, "", second[17])
}

func TestWriteCSVEmpty(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteCSV(&buf, nil))

	rows, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, 1)
}

func TestWriteJSON(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteJSON(&buf, sampleRecords()))

	var decoded []listing.Record
	require.NoError(t, json.Unmarshal(buf.Bytes(), &decoded))
	require.Len(t, decoded, 2)
	require.Equal(t, "abc123", decoded[0].ID)
	require.Equal(t, listing.SourceRedfin, decoded[1].Source)
}

func TestWriteJSONEmptyIsArray(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteJSON(&buf, nil))
	require.Equal(t, "[]", string(bytes.TrimSpace(buf.Bytes())))
}

func TestWriteFile(t *testing.T) {
	dir := t.TempDir()

	path := filepath.Join(dir, "out.csv")
	require.NoError(t, WriteFile(path, FormatCSV, sampleRecords()))
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	require.Contains(t, string(data), "123 Main St")

	_, err = ParseFormat("xml")
	require.Error(t, err)

	f, err := ParseFormat("json")
	require.NoError(t, err)
	require.Equal(t, FormatJSON, f)
}
