package hazard

// AggregateCounties groups records by (state abbreviation, county name) as
// given and computes each group's total population and population-weighted
// mean of the log-linear score. The population floor guarantees every group's
// weight sum is positive.
func AggregateCounties(records []PlanRecord) []CountyAggregate {
	type key struct{ state, county string }

	order := make([]key, 0)
	groups := make(map[key][]PlanRecord)
	for _, rec := range records {
		k := key{state: rec.StateAbbreviation, county: rec.CountyName}
		if _, ok := groups[k]; !ok {
			order = append(order, k)
		}
		groups[k] = append(groups[k], rec)
	}

	out := make([]CountyAggregate, 0, len(order))
	for _, k := range order {
		pop, score := weightedScore(groups[k])
		out = append(out, CountyAggregate{
			StateAbbreviation: k.state,
			CountyName:        k.county,
			Population:        pop,
			ScoreWeighted:     score,
		})
	}
	return out
}

// AggregateStates is AggregateCounties scoped to the state abbreviation alone.
func AggregateStates(records []PlanRecord) []StateAggregate {
	order := make([]string, 0)
	groups := make(map[string][]PlanRecord)
	for _, rec := range records {
		if _, ok := groups[rec.StateAbbreviation]; !ok {
			order = append(order, rec.StateAbbreviation)
		}
		groups[rec.StateAbbreviation] = append(groups[rec.StateAbbreviation], rec)
	}

	out := make([]StateAggregate, 0, len(order))
	for _, state := range order {
		pop, score := weightedScore(groups[state])
		out = append(out, StateAggregate{
			StateAbbreviation: state,
			Population:        pop,
			ScoreWeighted:     score,
		})
	}
	return out
}

// weightedScore returns the group's population sum and the population-
// weighted mean of ScoreLogLinear: sum(score_i * pop_i) / sum(pop_i).
func weightedScore(records []PlanRecord) (int64, float64) {
	var totalPop int64
	var weighted float64
	for _, rec := range records {
		totalPop += rec.Population
		weighted += rec.ScoreLogLinear * float64(rec.Population)
	}
	return totalPop, weighted / float64(totalPop)
}
