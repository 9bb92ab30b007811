package hazard

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestScore(t *testing.T) {
	t.Run("empty dataset is an error", func(t *testing.T) {
		_, _, err := Score(nil)
		require.ErrorIs(t, err, ErrEmptyDataset)
	})

	t.Run("population floor", func(t *testing.T) {
		records, _, err := Score([]PlanRow{
			{PlaceName: "a", Population: 0},
			{PlaceName: "b", Population: -5},
			{PlaceName: "c", Population: 500},
		})
		require.NoError(t, err)
		assert.Equal(t, int64(1000), records[0].Population)
		assert.Equal(t, int64(1000), records[1].Population)
		assert.Equal(t, int64(500), records[2].Population)
	})

	t.Run("log transform", func(t *testing.T) {
		records, _, err := Score([]PlanRow{
			{PlaceName: "a", Population: 999},
			{PlaceName: "b", Population: 1},
		})
		require.NoError(t, err)
		assert.InDelta(t, math.Log1p(999), records[0].LogPopulation, 1e-12)
		assert.InDelta(t, math.Log1p(1), records[1].LogPopulation, 1e-12)
	})

	t.Run("linear rescale spans 1 to 100", func(t *testing.T) {
		records, stats, err := Score([]PlanRow{
			{PlaceName: "small", Population: 1200},
			{PlaceName: "mid", Population: 140000},
			{PlaceName: "big", Population: 4000000},
		})
		require.NoError(t, err)

		assert.Equal(t, 1.0, records[0].ScoreLogLinear)
		assert.Equal(t, 100.0, records[2].ScoreLogLinear)
		assert.Greater(t, records[1].ScoreLogLinear, records[0].ScoreLogLinear)
		assert.Less(t, records[1].ScoreLogLinear, records[2].ScoreLogLinear)

		assert.InDelta(t, math.Log1p(1200), stats.LogMin, 1e-12)
		assert.InDelta(t, math.Log1p(4000000), stats.LogMax, 1e-12)
		assert.InDelta(t, math.Log1p(140000), stats.LogMedian, 1e-12)
	})

	t.Run("monotonic in population", func(t *testing.T) {
		records, _, err := Score([]PlanRow{
			{PlaceName: "a", Population: 1500},
			{PlaceName: "b", Population: 30000},
			{PlaceName: "c", Population: 2000},
			{PlaceName: "d", Population: 900000},
			{PlaceName: "e", Population: 85000},
		})
		require.NoError(t, err)

		for i := range records {
			assert.GreaterOrEqual(t, records[i].ScoreLogLinear, 1.0)
			assert.LessOrEqual(t, records[i].ScoreLogLinear, 100.0)
			for j := range records {
				if records[i].Population > records[j].Population {
					assert.Greater(t, records[i].ScoreLogLinear, records[j].ScoreLogLinear)
					assert.Greater(t, records[i].ScorePercentile, records[j].ScorePercentile)
				}
			}
		}
	})

	t.Run("degenerate dataset scores midpoint", func(t *testing.T) {
		records, stats, err := Score([]PlanRow{
			{PlaceName: "a", Population: 7000},
			{PlaceName: "b", Population: 7000},
			{PlaceName: "c", Population: 7000},
		})
		require.NoError(t, err)
		for _, rec := range records {
			assert.Equal(t, 50.0, rec.ScoreLogLinear)
		}
		assert.Equal(t, 50.0, stats.GlobalFallbackScore())
	})

	t.Run("percentile uses average ranks for ties", func(t *testing.T) {
		records, _, err := Score([]PlanRow{
			{PlaceName: "a", Population: 1000},
			{PlaceName: "b", Population: 5000},
			{PlaceName: "c", Population: 5000},
			{PlaceName: "d", Population: 90000},
		})
		require.NoError(t, err)

		// Ranks 1, 2.5, 2.5, 4 over 4 records.
		assert.Equal(t, 25.0, records[0].ScorePercentile)
		assert.Equal(t, 62.5, records[1].ScorePercentile)
		assert.Equal(t, 62.5, records[2].ScorePercentile)
		assert.Equal(t, 100.0, records[3].ScorePercentile)
	})

	t.Run("median of even count averages middle pair", func(t *testing.T) {
		_, stats, err := Score([]PlanRow{
			{PlaceName: "a", Population: 1000},
			{PlaceName: "b", Population: 2000},
			{PlaceName: "c", Population: 4000},
			{PlaceName: "d", Population: 8000},
		})
		require.NoError(t, err)
		want := (math.Log1p(2000) + math.Log1p(4000)) / 2
		assert.InDelta(t, want, stats.LogMedian, 1e-12)
	})

	t.Run("scores rounded to two decimals", func(t *testing.T) {
		records, _, err := Score([]PlanRow{
			{PlaceName: "a", Population: 1000},
			{PlaceName: "b", Population: 123457},
			{PlaceName: "c", Population: 7654321},
		})
		require.NoError(t, err)
		for _, rec := range records {
			assert.Equal(t, round2(rec.ScoreLogLinear), rec.ScoreLogLinear)
			assert.Equal(t, round2(rec.ScorePercentile), rec.ScorePercentile)
		}
	})
}

func TestGlobalFallbackScore(t *testing.T) {
	_, stats, err := Score([]PlanRow{
		{PlaceName: "a", Population: 1200},
		{PlaceName: "b", Population: 4000000},
	})
	require.NoError(t, err)

	// Median of two records sits exactly between min and max.
	assert.Equal(t, 50.5, stats.GlobalFallbackScore())
}
