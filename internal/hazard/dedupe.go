package hazard

// Dedupe keeps one row per exact (state abbreviation, place name) pair: the
// row with the latest approval date. Zero approval dates are treated as the
// minimum possible value, so any dated plan beats an undated one. When dates
// are equal, or every candidate is undated, the first-encountered row wins,
// making the result deterministic for a given input order.
//
// Grouping is on the values as given; case folding happens at index-build
// time, not here. Output preserves first-encounter order of each pair.
func Dedupe(rows []PlanRow) []PlanRow {
	type key struct{ state, place string }

	order := make([]key, 0, len(rows))
	best := make(map[key]PlanRow, len(rows))

	for _, row := range rows {
		k := key{state: row.StateAbbreviation, place: row.PlaceName}
		current, seen := best[k]
		if !seen {
			order = append(order, k)
			best[k] = row
			continue
		}
		if row.PlanApprovalDate.After(current.PlanApprovalDate) {
			best[k] = row
		}
	}

	out := make([]PlanRow, 0, len(order))
	for _, k := range order {
		out = append(out, best[k])
	}
	return out
}
