package listing

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestIdentity(t *testing.T) {
	t.Run("deterministic", func(t *testing.T) {
		a := Identity("123 Main St", "Springfield", "62704")
		b := Identity("123 Main St", "Springfield", "62704")
		require.Equal(t, a, b)
		require.Len(t, a, 64)
	})

	t.Run("distinct inputs produce distinct ids", func(t *testing.T) {
		a := Identity("123 Main St", "Springfield", "62704")
		b := Identity("124 Main St", "Springfield", "62704")
		require.NotEqual(t, a, b)
	})

	t.Run("separator prevents field bleed", func(t *testing.T) {
		a := Identity("1 Main", "XTown", "11111")
		b := Identity("1 MainX", "Town", "11111")
		require.NotEqual(t, a, b)
	})

	t.Run("empty components are valid", func(t *testing.T) {
		a := Identity("123 Main St", "", "")
		b := Identity("123 Main St", "", "")
		require.Equal(t, a, b)
	})
}

func TestSplitJoinList(t *testing.T) {
	require.Nil(t, SplitList(""))
	require.Equal(t, []string{"pool", "garage"}, SplitList(JoinList([]string{"pool", "garage"})))
}

func TestParseSources(t *testing.T) {
	require.Equal(t,
		[]Source{SourceZillow, SourceRedfin, SourceRealtor},
		ParseSources("zillow, Redfin,realtor"))
	require.Nil(t, ParseSources("craigslist"))
}
