package adapters

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestParsePrice(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    float64
		wantErr bool
	}{
		{name: "dollar with commas", input: "$450,000", want: 450000},
		{name: "decimal", input: "$1,234.50", want: 1234.50},
		{name: "suffix text", input: "450000+", want: 450000},
		{name: "no digits", input: "Contact agent", wantErr: true},
		{name: "empty", input: "", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParsePrice(tt.input)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			require.InDelta(t, tt.want, got, 0.001)
		})
	}
}

func TestParseDetails(t *testing.T) {
	t.Run("zillow style", func(t *testing.T) {
		d := ParseDetails("3 bd | 2 ba | 1,450 sqft")
		require.Equal(t, 3.0, d.Bedrooms)
		require.Equal(t, 2.0, d.Bathrooms)
		require.NotNil(t, d.SquareFeet)
		require.Equal(t, 1450.0, *d.SquareFeet)
	})

	t.Run("redfin style labels", func(t *testing.T) {
		d := ParseDetails("4 Beds 2.5 Baths 2,100 Sq Ft")
		require.Equal(t, 4.0, d.Bedrooms)
		require.Equal(t, 2.5, d.Bathrooms)
		require.NotNil(t, d.SquareFeet)
		require.Equal(t, 2100.0, *d.SquareFeet)
	})

	t.Run("missing labels default", func(t *testing.T) {
		d := ParseDetails("studio apartment")
		require.Zero(t, d.Bedrooms)
		require.Zero(t, d.Bathrooms)
		require.Nil(t, d.SquareFeet)
	})

	t.Run("empty", func(t *testing.T) {
		d := ParseDetails("")
		require.Zero(t, d.Bedrooms)
		require.Zero(t, d.Bathrooms)
		require.Nil(t, d.SquareFeet)
	})
}
