package hazard

import "time"

// RawTableRow holds the string-typed columns of one plan status table row,
// exactly as read from the file. Column values may be empty, padded, or
// formatted (comma-grouped numbers, assorted date layouts).
type RawTableRow struct {
	StateAbbreviation  string
	CountyName         string
	PlaceName          string
	Population         string
	PlanApprovalDate   string
	PlanExpirationDate string
	AdoptionDate       string
}

// PlanRow is a typed-but-unscored plan record produced by the normalizer.
// Zero time values mean the date was absent or unparsable.
type PlanRow struct {
	StateAbbreviation  string
	CountyName         string
	PlaceName          string
	Population         int64
	PlanApprovalDate   time.Time
	PlanExpirationDate time.Time
	AdoptionDate       time.Time
}

// PlanRecord is a deduplicated plan row with derived scores attached.
type PlanRecord struct {
	StateAbbreviation string    `json:"state_abbreviation"`
	CountyName        string    `json:"county_name"`
	PlaceName         string    `json:"place_name"`
	Population        int64     `json:"population"`
	PlanApprovalDate  time.Time `json:"plan_approval_date,omitzero"`

	LogPopulation   float64 `json:"log_population"`
	ScoreLogLinear  float64 `json:"score_log_linear"`
	ScorePercentile float64 `json:"score_percentile"`
}

// CountyAggregate is the population-weighted roll-up of a county's records.
type CountyAggregate struct {
	StateAbbreviation string  `json:"state_abbreviation"`
	CountyName        string  `json:"county_name"`
	Population        int64   `json:"county_population"`
	ScoreWeighted     float64 `json:"county_score_weighted"`
}

// StateAggregate is the population-weighted roll-up of a state's records.
type StateAggregate struct {
	StateAbbreviation string  `json:"state_abbreviation"`
	Population        int64   `json:"state_population"`
	ScoreWeighted     float64 `json:"state_score_weighted"`
}

// GlobalStats summarizes the log-population distribution of the full
// deduplicated dataset.
type GlobalStats struct {
	LogMin    float64 `json:"log_min"`
	LogMax    float64 `json:"log_max"`
	LogMedian float64 `json:"log_median"`
}
