// Package bridges derives a county-level bridge condition metric from the
// FHWA county condition workbook (one sheet per state).
package bridges

import (
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"
)

// Section markers in the workbook. Only the "Includes Federal Bridges"
// section of each sheet is read; the "Excludes" section duplicates it with
// federal bridges removed.
const (
	includesMarker = "includes federal bridges"
	excludesMarker = "excludes federal bridges"
)

var (
	// countyFootnoteRe strips numeric footnote markers like "(12)" from
	// county labels.
	countyFootnoteRe = regexp.MustCompile(`\s*\(\d+\)`)
	countyWordRe     = regexp.MustCompile(`(?i)county`)
)

// CountyRecord is one county's bridge condition counts plus derived metrics.
type CountyRecord struct {
	State  string
	County string
	All    float64
	Good   float64
	Fair   float64
	Poor   float64

	// PoorPercentage is Poor/All*100; NaN when the county reports no
	// bridges. RelativeMetric inverts and rescales it to 0-100, higher
	// meaning a smaller share of structurally poor bridges.
	PoorPercentage float64
	RelativeMetric float64
}

// Index holds all county records with derived metrics. Immutable after Load.
type Index struct {
	records []CountyRecord
}

// Load reads the workbook at path and computes relative metrics across all
// counties in all state sheets.
func Load(path string) (*Index, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("open bridge workbook: %w", err)
	}
	defer f.Close()

	var records []CountyRecord
	for _, sheet := range f.GetSheetList() {
		rows, err := f.GetRows(sheet)
		if err != nil {
			return nil, fmt.Errorf("read sheet %s: %w", sheet, err)
		}
		records = append(records, parseSheet(sheet, rows)...)
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("bridge workbook %s contains no county rows", path)
	}

	computeMetrics(records)
	return &Index{records: records}, nil
}

// parseSheet extracts county rows from one state sheet: everything between
// the "Includes Federal Bridges" marker and the "Excludes" marker, starting
// after the header row that names the County column, skipping TOTAL rows.
func parseSheet(state string, rows [][]string) []CountyRecord {
	first := func(row []string) string {
		if len(row) == 0 {
			return ""
		}
		return strings.ToLower(strings.TrimSpace(row[0]))
	}

	start := -1
	for i, row := range rows {
		if strings.Contains(first(row), includesMarker) {
			start = i
			break
		}
	}
	if start < 0 {
		return nil
	}

	end := len(rows)
	for i := start + 1; i < len(rows); i++ {
		if strings.Contains(first(row(rows, i)), excludesMarker) {
			end = i
			break
		}
	}

	header := -1
	for i := start; i < end; i++ {
		if strings.Contains(first(row(rows, i)), "county") {
			header = i
			break
		}
	}
	if header < 0 {
		return nil
	}

	var out []CountyRecord
	for i := header + 1; i < end; i++ {
		r := row(rows, i)
		county := cleanCountyName(cell(r, 0))
		if county == "" || strings.Contains(strings.ToLower(county), "total") {
			continue
		}
		out = append(out, CountyRecord{
			State:  strings.TrimSpace(state),
			County: county,
			All:    parseCount(cell(r, 1)),
			Good:   parseCount(cell(r, 2)),
			Fair:   parseCount(cell(r, 3)),
			Poor:   parseCount(cell(r, 4)),
		})
	}
	return out
}

func row(rows [][]string, i int) []string {
	if i >= len(rows) {
		return nil
	}
	return rows[i]
}

func cell(row []string, i int) string {
	if i >= len(row) {
		return ""
	}
	return row[i]
}

// cleanCountyName strips footnote markers and the "County" designation.
func cleanCountyName(s string) string {
	s = countyFootnoteRe.ReplaceAllString(s, "")
	s = countyWordRe.ReplaceAllString(s, "")
	return strings.TrimSpace(s)
}

func parseCount(s string) float64 {
	s = strings.TrimSpace(strings.ReplaceAll(s, ",", ""))
	if s == "" {
		return 0
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0
	}
	return v
}

// computeMetrics fills PoorPercentage and RelativeMetric. Counties with no
// bridges get NaN and are excluded from the min/max range and from lookups.
func computeMetrics(records []CountyRecord) {
	minPct := math.Inf(1)
	maxPct := math.Inf(-1)
	for i := range records {
		if records[i].All <= 0 {
			records[i].PoorPercentage = math.NaN()
			records[i].RelativeMetric = math.NaN()
			continue
		}
		pct := records[i].Poor / records[i].All * 100
		records[i].PoorPercentage = pct
		if pct < minPct {
			minPct = pct
		}
		if pct > maxPct {
			maxPct = pct
		}
	}

	for i := range records {
		pct := records[i].PoorPercentage
		if math.IsNaN(pct) {
			continue
		}
		if maxPct == minPct {
			records[i].RelativeMetric = 100
			continue
		}
		records[i].RelativeMetric = 100 * (1 - (pct-minPct)/(maxPct-minPct))
	}
}

// Records exposes the parsed county records.
func (ix *Index) Records() []CountyRecord { return ix.records }

// CountyMetric looks up the relative metric for a county, optionally scoped
// to a state (substring match, as state sheet names sometimes carry
// suffixes). Exact county match is tried first, then substring. Multiple
// hits average, which absorbs duplicate county names across sheets.
func (ix *Index) CountyMetric(county, state string) (float64, bool) {
	countyClean := normalizeCounty(county)
	if countyClean == "" {
		return 0, false
	}
	stateClean := strings.ToLower(strings.TrimSpace(state))

	match := func(exact bool) (float64, bool) {
		var sum float64
		var n int
		for _, rec := range ix.records {
			if stateClean != "" && !strings.Contains(strings.ToLower(rec.State), stateClean) {
				continue
			}
			recCounty := normalizeCounty(rec.County)
			if exact && recCounty != countyClean {
				continue
			}
			if !exact && !strings.Contains(recCounty, countyClean) {
				continue
			}
			if math.IsNaN(rec.RelativeMetric) {
				continue
			}
			sum += rec.RelativeMetric
			n++
		}
		if n == 0 {
			return 0, false
		}
		return sum / float64(n), true
	}

	if v, ok := match(true); ok {
		return v, true
	}
	return match(false)
}

func normalizeCounty(s string) string {
	s = strings.ToLower(s)
	s = strings.ReplaceAll(s, "county", "")
	return strings.TrimSpace(s)
}
