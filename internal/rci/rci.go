// Package rci combines the four component metrics into the composite
// Regional Sustainability Index for a ZIP code.
package rci

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"strings"

	"github.com/ericrodrz/rci-service/internal/bridges"
	"github.com/ericrodrz/rci-service/internal/debt"
	"github.com/ericrodrz/rci-service/internal/eal"
	"github.com/ericrodrz/rci-service/internal/hazard"
	"github.com/ericrodrz/rci-service/internal/observability"
)

var (
	// ErrInvalidZIP reports a ZIP that is not 1-5 digits.
	ErrInvalidZIP = errors.New("invalid ZIP code")
	// ErrZIPNotFound reports a well-formed ZIP the postal lookup knows
	// nothing about.
	ErrZIPNotFound = errors.New("no match found for ZIP code")
	// ErrGeocodingDisabled reports that no postal lookup is configured;
	// only explicit (state, county, place) queries are possible.
	ErrGeocodingDisabled = errors.New("ZIP geocoding is disabled")
)

// Location is the geography resolved for a ZIP code by the postal lookup.
type Location struct {
	PlaceName  string
	CountyName string
	StateCode  string // two-letter abbreviation
	StateName  string
}

// Found reports whether the lookup produced any usable geography.
func (l Location) Found() bool {
	return l.PlaceName != "" || l.StateCode != ""
}

// Locator resolves a ZIP code to its geography. Implementations return a
// zero Location (not an error) when the ZIP is simply unknown.
type Locator interface {
	LocateZIP(ctx context.Context, zip string) (Location, error)
}

// Result is one composite RCI calculation. Component scores are nil when
// that component's dataset is not loaded or has no match; RCI is the
// unweighted mean of whichever components are present, nil when none are.
type Result struct {
	ZIP        string `json:"zip"`
	PlaceName  string `json:"place_name,omitempty"`
	CountyName string `json:"county_name,omitempty"`
	State      string `json:"state,omitempty"`
	StateName  string `json:"state_name,omitempty"`

	HazardScore   *float64       `json:"hazard_score"`
	HazardLevel   hazard.Level   `json:"hazard_level,omitempty"`
	HazardDetails map[string]any `json:"hazard_details,omitempty"`

	DebtRevenueScore *float64 `json:"debt_revenue_score"`
	BridgeScore      *float64 `json:"bridge_score"`
	EALScore         *float64 `json:"eal_score"`

	RCI *float64 `json:"rci"`
}

// CoverageResult is a hazard-only lookup for a ZIP code.
type CoverageResult struct {
	ZIP        string         `json:"zip"`
	PlaceName  string         `json:"place_name,omitempty"`
	CountyName string         `json:"county_name,omitempty"`
	State      string         `json:"state,omitempty"`
	Score      float64        `json:"score"`
	Level      hazard.Level   `json:"level"`
	Details    map[string]any `json:"details"`
}

// Calculator wires the hazard snapshot store and the three collaborator
// metrics behind a single ZIP-oriented API. Any collaborator may be nil; its
// component is then reported as missing rather than failing the calculation.
type Calculator struct {
	store   *hazard.Store
	locator Locator
	debt    *debt.Analyzer
	bridges *bridges.Index
	eal     *eal.Table
	logger  *slog.Logger
	metrics *observability.Metrics
}

// NewCalculator builds a Calculator. store is required; locator and the
// component datasets are optional.
func NewCalculator(store *hazard.Store, locator Locator, d *debt.Analyzer, b *bridges.Index, e *eal.Table, logger *slog.Logger, metrics *observability.Metrics) *Calculator {
	return &Calculator{
		store:   store,
		locator: locator,
		debt:    d,
		bridges: b,
		eal:     e,
		logger:  logger,
		metrics: metrics,
	}
}

// NormalizeZIP left-pads short numeric ZIPs to five digits and rejects
// anything else.
func NormalizeZIP(zip string) (string, error) {
	zip = strings.TrimSpace(zip)
	if zip == "" || len(zip) > 5 {
		return "", ErrInvalidZIP
	}
	for _, r := range zip {
		if r < '0' || r > '9' {
			return "", ErrInvalidZIP
		}
	}
	return strings.Repeat("0", 5-len(zip)) + zip, nil
}

// Calculate computes the composite RCI for a ZIP code.
func (c *Calculator) Calculate(ctx context.Context, zip string) (Result, error) {
	zip5, err := NormalizeZIP(zip)
	if err != nil {
		return Result{}, err
	}
	loc, err := c.locate(ctx, zip5)
	if err != nil {
		return Result{}, err
	}
	if !loc.Found() {
		return Result{}, fmt.Errorf("%w: %s", ErrZIPNotFound, zip5)
	}

	snapshot := c.store.Current()
	if snapshot == nil {
		return Result{}, errors.New("hazard snapshot not built yet")
	}

	place := primaryPlaceName(loc.PlaceName)
	res := snapshot.Resolve(loc.StateCode, loc.CountyName, place)
	c.metrics.Resolutions.WithLabelValues(string(res.Level)).Inc()

	result := Result{
		ZIP:           zip5,
		PlaceName:     place,
		CountyName:    loc.CountyName,
		State:         loc.StateCode,
		StateName:     loc.StateName,
		HazardScore:   ptr(round2(res.Score)),
		HazardLevel:   res.Level,
		HazardDetails: res.Details,
	}

	if c.debt != nil && loc.StateName != "" {
		if score, ok := c.debt.RelativeScore(loc.StateName); ok {
			result.DebtRevenueScore = ptr(round2(score))
		}
	}
	if c.bridges != nil && loc.CountyName != "" {
		if score, ok := c.bridges.CountyMetric(loc.CountyName, loc.StateName); ok {
			result.BridgeScore = ptr(round2(score))
		}
	}
	if c.eal != nil && loc.CountyName != "" {
		if score, ok := c.eal.Score(loc.CountyName, loc.StateName); ok {
			result.EALScore = ptr(round2(score))
		}
	}

	result.RCI = meanOfPresent(result.HazardScore, result.DebtRevenueScore, result.BridgeScore, result.EALScore)
	return result, nil
}

// Coverage computes the hazard-only coverage score for a ZIP code. An
// unknown ZIP still resolves: the empty geography falls through the whole
// chain to the global fallback.
func (c *Calculator) Coverage(ctx context.Context, zip string) (CoverageResult, error) {
	zip5, err := NormalizeZIP(zip)
	if err != nil {
		return CoverageResult{}, err
	}
	loc, err := c.locate(ctx, zip5)
	if err != nil {
		return CoverageResult{}, err
	}

	place := primaryPlaceName(loc.PlaceName)
	res, err := c.CoverageFor(loc.StateCode, loc.CountyName, place)
	if err != nil {
		return CoverageResult{}, err
	}
	res.ZIP = zip5
	return res, nil
}

// CoverageFor resolves an explicit (state, county, place) triple against the
// current snapshot. Used directly when geocoding is disabled.
func (c *Calculator) CoverageFor(state, county, place string) (CoverageResult, error) {
	snapshot := c.store.Current()
	if snapshot == nil {
		return CoverageResult{}, errors.New("hazard snapshot not built yet")
	}

	res := snapshot.Resolve(state, county, place)
	c.metrics.Resolutions.WithLabelValues(string(res.Level)).Inc()

	return CoverageResult{
		PlaceName:  strings.TrimSpace(place),
		CountyName: strings.TrimSpace(county),
		State:      strings.ToUpper(strings.TrimSpace(state)),
		Score:      round2(res.Score),
		Level:      res.Level,
		Details:    res.Details,
	}, nil
}

func (c *Calculator) locate(ctx context.Context, zip5 string) (Location, error) {
	if c.locator == nil {
		return Location{}, ErrGeocodingDisabled
	}
	loc, err := c.locator.LocateZIP(ctx, zip5)
	if err != nil {
		return Location{}, fmt.Errorf("locate ZIP %s: %w", zip5, err)
	}
	return loc, nil
}

// primaryPlaceName keeps the first comma-separated component of a place
// name; postal data sometimes lists alternates ("Austin, Tarrytown").
func primaryPlaceName(name string) string {
	name, _, _ = strings.Cut(name, ",")
	return strings.TrimSpace(name)
}

// meanOfPresent averages the non-nil scores, nil when all are absent.
func meanOfPresent(scores ...*float64) *float64 {
	var sum float64
	var n int
	for _, s := range scores {
		if s != nil {
			sum += *s
			n++
		}
	}
	if n == 0 {
		return nil
	}
	return ptr(round2(sum / float64(n)))
}

func ptr(v float64) *float64 { return &v }

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
