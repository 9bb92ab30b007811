package hazard

import "strings"

// Level identifies the geographic granularity a query resolved at.
type Level string

const (
	LevelTown           Level = "town"
	LevelCounty         Level = "county"
	LevelState          Level = "state"
	LevelGlobalFallback Level = "global_fallback"
)

// Resolution is the outcome of a fallback lookup. Score is always defined;
// callers that care about confidence inspect Level, where LevelGlobalFallback
// means nothing matched at any granularity.
type Resolution struct {
	Score   float64        `json:"score"`
	Level   Level          `json:"level"`
	Details map[string]any `json:"details"`
}

// Resolve returns the best-available coverage score for a (state, county,
// place) triple by trying the town index, then the county index, then the
// state index, then the global fallback. The first hit wins; index misses are
// ordinary control flow. Inputs are trimmed, with state upper-cased and
// county/place lower-cased, to match index key normalization.
func (s *Snapshot) Resolve(state, county, place string) Resolution {
	state = strings.ToUpper(strings.TrimSpace(state))
	county = strings.ToLower(strings.TrimSpace(county))
	place = strings.ToLower(strings.TrimSpace(place))

	if rec, ok := s.towns[townKey{state: state, place: place}]; ok {
		return Resolution{
			Score: rec.ScoreLogLinear,
			Level: LevelTown,
			Details: map[string]any{
				"resolved_at":      string(LevelTown),
				"place_name":       rec.PlaceName,
				"population":       rec.Population,
				"score_log_linear": rec.ScoreLogLinear,
			},
		}
	}

	if agg, ok := s.counties[countyKey{state: state, county: county}]; ok {
		return Resolution{
			Score: agg.ScoreWeighted,
			Level: LevelCounty,
			Details: map[string]any{
				"resolved_at":           string(LevelCounty),
				"county_name":           county,
				"county_score_weighted": agg.ScoreWeighted,
			},
		}
	}

	if agg, ok := s.states[state]; ok {
		return Resolution{
			Score: agg.ScoreWeighted,
			Level: LevelState,
			Details: map[string]any{
				"resolved_at":          string(LevelState),
				"state_abbreviation":   state,
				"state_score_weighted": agg.ScoreWeighted,
			},
		}
	}

	return Resolution{
		Score: s.stats.GlobalFallbackScore(),
		Level: LevelGlobalFallback,
		Details: map[string]any{
			"resolved_at": string(LevelGlobalFallback),
			"note":        "no match found for town/county/state",
		},
	}
}
