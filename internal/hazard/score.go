package hazard

import (
	"errors"
	"math"
	"sort"
)

// populationFloor replaces missing or non-positive populations so the log
// transform and the aggregation weights stay well-defined.
const populationFloor = 1000

// ErrEmptyDataset is returned when scoring is attempted on a dataset with no
// records. Global statistics cannot be computed, so initialization must fail
// rather than produce a resolver that returns nonsense.
var ErrEmptyDataset = errors.New("hazard dataset contains no records")

// Score derives per-record scores and global statistics from deduplicated
// plan rows. Populations ≤ 0 are floored to 1000 first; global min/max are
// computed before any per-record rescale.
func Score(rows []PlanRow) ([]PlanRecord, GlobalStats, error) {
	if len(rows) == 0 {
		return nil, GlobalStats{}, ErrEmptyDataset
	}

	records := make([]PlanRecord, len(rows))
	logs := make([]float64, len(rows))
	for i, row := range rows {
		pop := row.Population
		if pop <= 0 {
			pop = populationFloor
		}
		lp := math.Log1p(float64(pop))
		logs[i] = lp
		records[i] = PlanRecord{
			StateAbbreviation: row.StateAbbreviation,
			CountyName:        row.CountyName,
			PlaceName:         row.PlaceName,
			Population:        pop,
			PlanApprovalDate:  row.PlanApprovalDate,
			LogPopulation:     lp,
		}
	}

	stats := computeGlobalStats(logs)

	for i := range records {
		records[i].ScoreLogLinear = rescaleLogLinear(records[i].LogPopulation, stats)
	}

	ranks := percentileRanks(logs)
	for i := range records {
		records[i].ScorePercentile = round2(ranks[i] * 100)
	}

	return records, stats, nil
}

func computeGlobalStats(logs []float64) GlobalStats {
	sorted := make([]float64, len(logs))
	copy(sorted, logs)
	sort.Float64s(sorted)

	n := len(sorted)
	var median float64
	if n%2 == 1 {
		median = sorted[n/2]
	} else {
		median = (sorted[n/2-1] + sorted[n/2]) / 2
	}

	return GlobalStats{
		LogMin:    sorted[0],
		LogMax:    sorted[n-1],
		LogMedian: median,
	}
}

// rescaleLogLinear maps a log-population onto [1, 100] against the dataset
// range. A collapsed range (single distinct population) yields the midpoint
// 50.0 rather than an error.
func rescaleLogLinear(logPop float64, stats GlobalStats) float64 {
	if stats.LogMax == stats.LogMin {
		return 50.0
	}
	return round2((logPop-stats.LogMin)/(stats.LogMax-stats.LogMin)*99 + 1)
}

// GlobalFallbackScore is the score returned when no town, county, or state
// matches: the dataset median rescaled the same way as per-record scores.
func (g GlobalStats) GlobalFallbackScore() float64 {
	return rescaleLogLinear(g.LogMedian, g)
}

// percentileRanks returns each value's percentile rank in (0, 1] using the
// average-rank method: tied values all receive the mean of the 1-indexed
// ranks they would occupy, divided by the total count.
func percentileRanks(values []float64) []float64 {
	n := len(values)
	idx := make([]int, n)
	for i := range idx {
		idx[i] = i
	}
	sort.Slice(idx, func(a, b int) bool { return values[idx[a]] < values[idx[b]] })

	ranks := make([]float64, n)
	for i := 0; i < n; {
		j := i
		for j < n && values[idx[j]] == values[idx[i]] {
			j++
		}
		// 1-indexed ranks i+1..j share the average (i+1+j)/2.
		avg := float64(i+1+j) / 2
		for k := i; k < j; k++ {
			ranks[idx[k]] = avg / float64(n)
		}
		i = j
	}
	return ranks
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
