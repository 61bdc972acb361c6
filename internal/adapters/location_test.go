package adapters

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestCitySlug(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"Denver, CO", "denver-co"},
		{"Denver, Colorado", "denver-co"},
		{"New York, New York", "new-york-ny"},
		{"Salt Lake City, Utah", "salt-lake-city-ut"},
		{"Springfield", "springfield"},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			require.Equal(t, tt.want, citySlug(tt.input))
		})
	}
}

func TestCityPath(t *testing.T) {
	require.Equal(t, "denver/co", cityPath("Denver, CO"))
	require.Equal(t, "boston/ma", cityPath("Boston, Massachusetts"))
	require.Equal(t, "boston", cityPath("Boston"))
}
