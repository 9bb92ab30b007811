// Package debt computes per-state government debt-to-revenue ratios from the
// Census government finance survey table and rescales them into a relative
// 0-100 score across states.
package debt

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
)

// Column names as exported by the Census data portal.
const (
	colStateName = "Geographic Area Name (NAME)"
	colCategory  = "Meaning of Aggregate Description (AGG_DESC_LABEL)"
	colAmount    = "Amount (AMOUNT)"
)

// Aggregate categories used for the ratio.
const (
	DebtKey    = "Debt - Total Debt Outstanding"
	RevenueKey = "Revenue - Total Revenue"
)

// Analyzer indexes finance amounts by state and category and precomputes
// debt/revenue ratios for all states. Immutable after construction.
type Analyzer struct {
	states map[string]map[string]float64 // state name -> category -> amount
	ratios map[string]float64            // state name -> debt/revenue
}

// Load reads and indexes the finance CSV at path.
func Load(path string) (*Analyzer, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open debt table: %w", err)
	}
	defer f.Close()

	a, err := Parse(f)
	if err != nil {
		return nil, fmt.Errorf("parse debt table %s: %w", path, err)
	}
	return a, nil
}

// Parse reads the finance table from r and builds the analyzer.
func Parse(r io.Reader) (*Analyzer, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1

	header, err := cr.Read()
	if err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}
	cols := make(map[string]int, len(header))
	for i, name := range header {
		cols[strings.TrimSpace(name)] = i
	}
	stateIdx, ok := cols[colStateName]
	if !ok {
		return nil, fmt.Errorf("missing required column %q", colStateName)
	}
	categoryIdx, ok := cols[colCategory]
	if !ok {
		return nil, fmt.Errorf("missing required column %q", colCategory)
	}
	amountIdx, ok := cols[colAmount]
	if !ok {
		return nil, fmt.Errorf("missing required column %q", colAmount)
	}

	a := &Analyzer{
		states: make(map[string]map[string]float64),
		ratios: make(map[string]float64),
	}
	for {
		record, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read row: %w", err)
		}
		if amountIdx >= len(record) || categoryIdx >= len(record) || stateIdx >= len(record) {
			continue
		}
		state := strings.TrimSpace(record[stateIdx])
		if state == "" {
			continue
		}
		if a.states[state] == nil {
			a.states[state] = make(map[string]float64)
		}
		a.states[state][strings.TrimSpace(record[categoryIdx])] = cleanAmount(record[amountIdx])
	}

	for state := range a.states {
		if ratio, _, _, ok := a.Ratio(state); ok {
			a.ratios[state] = ratio
		}
	}
	return a, nil
}

// cleanAmount parses a Census-formatted amount: comma grouping removed,
// Unicode minus normalized to ASCII, blanks read as zero.
func cleanAmount(s string) float64 {
	s = strings.ReplaceAll(s, ",", "")
	s = strings.ReplaceAll(s, "−", "-")
	s = strings.TrimSpace(s)
	if s == "" {
		return 0
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0
	}
	return v
}

// Categories lists the aggregate categories available for a state.
func (a *Analyzer) Categories(state string) []string {
	out := make([]string, 0, len(a.states[state]))
	for category := range a.states[state] {
		out = append(out, category)
	}
	return out
}

// Value returns a category amount for a state.
func (a *Analyzer) Value(state, category string) (float64, bool) {
	v, ok := a.states[state][category]
	return v, ok
}

// Ratio returns the debt/revenue ratio for a state along with the underlying
// amounts. Missing categories or zero revenue report ok=false.
func (a *Analyzer) Ratio(state string) (ratio, debtAmount, revenue float64, ok bool) {
	info := a.states[state]
	debtAmount, hasDebt := info[DebtKey]
	revenue, hasRevenue := info[RevenueKey]
	if !hasDebt || !hasRevenue || revenue == 0 {
		return 0, debtAmount, revenue, false
	}
	return debtAmount / revenue, debtAmount, revenue, true
}

// RelativeScore rescales a state's ratio against the min/max ratio across
// all states into [0, 100]. A dataset with a single distinct ratio yields
// the midpoint 50.
func (a *Analyzer) RelativeScore(state string) (float64, bool) {
	ratio, ok := a.ratios[state]
	if !ok {
		return 0, false
	}

	first := true
	var minR, maxR float64
	for _, r := range a.ratios {
		if first {
			minR, maxR = r, r
			first = false
			continue
		}
		if r < minR {
			minR = r
		}
		if r > maxR {
			maxR = r
		}
	}
	if maxR == minR {
		return 50, true
	}
	return (ratio - minR) / (maxR - minR) * 100, true
}
