// Package eal looks up FEMA National Risk Index expected-annual-loss scores
// by county and state.
package eal

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"regexp"
	"strconv"
	"strings"
)

// Column names from the NRI counties table.
const (
	colCounty = "COUNTY"
	colState  = "STATE"
	colScore  = "EAL_SCORE"
)

// countyDesignationRe strips the "County"/"Parish" designation so inputs
// like "Travis County" match the table's "Travis".
var countyDesignationRe = regexp.MustCompile(`(?i)\b(County|Parish)\b`)

// Table is an immutable (state, county) -> EAL score index.
type Table struct {
	scores map[string]float64
}

// Load reads and indexes the NRI counties CSV at path.
func Load(path string) (*Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open EAL table: %w", err)
	}
	defer f.Close()

	t, err := Parse(f)
	if err != nil {
		return nil, fmt.Errorf("parse EAL table %s: %w", path, err)
	}
	return t, nil
}

// Parse reads the NRI counties table from r. Rows with a non-numeric score
// are skipped. The first occurrence of a (state, county) pair wins.
func Parse(r io.Reader) (*Table, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1

	header, err := cr.Read()
	if err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}
	cols := make(map[string]int, len(header))
	for i, name := range header {
		cols[strings.ToUpper(strings.TrimSpace(name))] = i
	}
	countyIdx, ok := cols[colCounty]
	if !ok {
		return nil, fmt.Errorf("missing required column %q", colCounty)
	}
	stateIdx, ok := cols[colState]
	if !ok {
		return nil, fmt.Errorf("missing required column %q", colState)
	}
	scoreIdx, ok := cols[colScore]
	if !ok {
		return nil, fmt.Errorf("missing required column %q", colScore)
	}

	t := &Table{scores: make(map[string]float64)}
	for {
		record, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read row: %w", err)
		}
		if countyIdx >= len(record) || stateIdx >= len(record) || scoreIdx >= len(record) {
			continue
		}
		score, err := strconv.ParseFloat(strings.TrimSpace(record[scoreIdx]), 64)
		if err != nil {
			continue
		}
		k := key(record[countyIdx], record[stateIdx])
		if _, ok := t.scores[k]; !ok {
			t.scores[k] = score
		}
	}
	return t, nil
}

// Score returns the EAL score for a county/state pair. Names are compared
// after stripping county designations and upper-casing.
func (t *Table) Score(county, state string) (float64, bool) {
	v, ok := t.scores[key(county, state)]
	return v, ok
}

func key(county, state string) string {
	return NormalizeState(state) + "|" + NormalizeCounty(county)
}

// NormalizeCounty removes "County"/"Parish" designations, trims, and
// upper-cases a county name for matching.
func NormalizeCounty(name string) string {
	name = countyDesignationRe.ReplaceAllString(name, "")
	return strings.ToUpper(strings.TrimSpace(name))
}

// NormalizeState trims and upper-cases a state name for matching.
func NormalizeState(name string) string {
	return strings.ToUpper(strings.TrimSpace(name))
}
