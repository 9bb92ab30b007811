package hazard

import (
	"strconv"
	"strings"
	"time"
)

// dateLayouts lists the date formats observed in the plan status table.
// Tried in order; the first successful parse wins.
var dateLayouts = []string{
	time.RFC3339,
	"2006-01-02 15:04:05",
	"2006-01-02",
	"2006/01/02",
	"1/2/2006",
	"01/02/2006",
}

// Normalize converts raw table rows into typed plan rows. Malformed values
// are recovered locally: unparsable dates become zero times ("unknown") and
// non-numeric populations become 0. It never fails and performs no
// deduplication or scoring.
func Normalize(rows []RawTableRow) []PlanRow {
	out := make([]PlanRow, 0, len(rows))
	for _, row := range rows {
		out = append(out, PlanRow{
			StateAbbreviation:  strings.TrimSpace(row.StateAbbreviation),
			CountyName:         strings.TrimSpace(row.CountyName),
			PlaceName:          strings.TrimSpace(row.PlaceName),
			Population:         parsePopulation(row.Population),
			PlanApprovalDate:   parseDateOrZero(row.PlanApprovalDate),
			PlanExpirationDate: parseDateOrZero(row.PlanExpirationDate),
			AdoptionDate:       parseDateOrZero(row.AdoptionDate),
		})
	}
	return out
}

// parsePopulation parses a possibly formatted population figure, returning 0
// for missing, non-numeric, or negative values. Missing populations are
// floored later by the score transformer, not here.
func parsePopulation(s string) int64 {
	s = strings.TrimSpace(strings.ReplaceAll(s, ",", ""))
	if s == "" {
		return 0
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || v < 0 {
		return 0
	}
	return int64(v)
}

// parseDateOrZero parses a date string against the known layouts, returning
// the zero time when nothing matches. Zero times sort before any real date,
// so undated plans lose deduplication against dated ones.
func parseDateOrZero(s string) time.Time {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t
		}
	}
	return time.Time{}
}
