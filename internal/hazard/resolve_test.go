package hazard

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// laDataset mirrors two real plan filings in one county; CA's state
// aggregate follows from the same two records.
func laDataset(t *testing.T) *Snapshot {
	t.Helper()
	s, err := BuildSnapshot([]RawTableRow{
		{StateAbbreviation: "CA", CountyName: "Los Angeles County", PlaceName: "Los Angeles", Population: "4000000", PlanApprovalDate: "2022-06-01"},
		{StateAbbreviation: "CA", CountyName: "Los Angeles County", PlaceName: "Pasadena", Population: "140000", PlanApprovalDate: "2021-03-15"},
	})
	require.NoError(t, err)
	return s
}

func TestResolve_FallbackChain(t *testing.T) {
	s := laDataset(t)

	t.Run("town match wins", func(t *testing.T) {
		res := s.Resolve("CA", "Los Angeles County", "Los Angeles")

		assert.Equal(t, LevelTown, res.Level)
		assert.Equal(t, 100.0, res.Score)
		assert.Equal(t, "Los Angeles", res.Details["place_name"])
		assert.Equal(t, int64(4000000), res.Details["population"])
	})

	t.Run("unknown town falls to county", func(t *testing.T) {
		res := s.Resolve("CA", "Los Angeles County", "Burbank")

		assert.Equal(t, LevelCounty, res.Level)
		// (4000000*100 + 140000*1) / 4140000
		assert.InDelta(t, 96.65, res.Score, 0.01)
		assert.Equal(t, "los angeles county", res.Details["county_name"])
	})

	t.Run("unknown county falls to state", func(t *testing.T) {
		res := s.Resolve("CA", "Unknown County", "Unknown Place")

		assert.Equal(t, LevelState, res.Level)
		assert.InDelta(t, 96.65, res.Score, 0.01)
		assert.Equal(t, "CA", res.Details["state_abbreviation"])
	})

	t.Run("unknown state falls to global", func(t *testing.T) {
		res := s.Resolve("ZZ", "X", "Y")

		assert.Equal(t, LevelGlobalFallback, res.Level)
		assert.Equal(t, 50.5, res.Score) // median of two records sits mid-range
		assert.Equal(t, "no match found for town/county/state", res.Details["note"])
	})

	t.Run("empty inputs fall through to global", func(t *testing.T) {
		res := s.Resolve("", "", "")
		assert.Equal(t, LevelGlobalFallback, res.Level)
		assert.NotZero(t, res.Score)
	})
}

func TestResolve_InputNormalization(t *testing.T) {
	s := laDataset(t)

	t.Run("case-insensitive matching", func(t *testing.T) {
		res := s.Resolve("ca", "LOS ANGELES COUNTY", "LOS ANGELES")
		assert.Equal(t, LevelTown, res.Level)
	})

	t.Run("surrounding whitespace trimmed", func(t *testing.T) {
		res := s.Resolve(" CA ", " Los Angeles County ", " Pasadena ")
		assert.Equal(t, LevelTown, res.Level)
		assert.Equal(t, 1.0, res.Score)
	})

	t.Run("town beats county even when both would match", func(t *testing.T) {
		// Pasadena exists as a town and its county has an aggregate; the
		// town score must win over the county composite.
		res := s.Resolve("CA", "Los Angeles County", "Pasadena")
		assert.Equal(t, LevelTown, res.Level)
		assert.Equal(t, 1.0, res.Score)
	})
}
