// Command rci computes a Regional Sustainability Index breakdown for one
// ZIP code (or an explicit state/county/place triple) from local dataset
// files and prints it.
//
// Usage:
//
//	go run ./cmd/rci \
//	  -plans data/HazardMitigationPlanStatuses.csv \
//	  -debt data/gov_revenue_metrics.csv \
//	  -bridges data/county25.xlsx \
//	  -eal data/NRI_Table_Counties.csv \
//	  -zip 78701
//
// ZIP lookup requires MAPBOX_TOKEN in the environment; without it, pass
// -state/-county/-place for a hazard-coverage query.
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/ericrodrz/rci-service/internal/adapter/planfile"
	"github.com/ericrodrz/rci-service/internal/adapter/postal"
	"github.com/ericrodrz/rci-service/internal/bridges"
	"github.com/ericrodrz/rci-service/internal/debt"
	"github.com/ericrodrz/rci-service/internal/eal"
	"github.com/ericrodrz/rci-service/internal/hazard"
	"github.com/ericrodrz/rci-service/internal/observability"
	"github.com/ericrodrz/rci-service/internal/rci"
)

func main() {
	plansPath := flag.String("plans", "", "hazard mitigation plan status CSV (required)")
	debtPath := flag.String("debt", "", "government finance CSV")
	bridgesPath := flag.String("bridges", "", "FHWA county bridge condition workbook")
	ealPath := flag.String("eal", "", "FEMA NRI counties CSV")
	zip := flag.String("zip", "", "ZIP code to score")
	state := flag.String("state", "", "state abbreviation (alternative to -zip)")
	county := flag.String("county", "", "county name (alternative to -zip)")
	place := flag.String("place", "", "place name (alternative to -zip)")
	flag.Parse()

	if *plansPath == "" || (*zip == "" && *state == "") {
		flag.Usage()
		os.Exit(2)
	}

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	metrics := observability.NewMetricsForTesting()

	rows, err := planfile.Load(*plansPath)
	fatalIf(err)
	snapshot, err := hazard.BuildSnapshot(rows)
	fatalIf(err)
	store := &hazard.Store{}
	store.Publish(snapshot)

	var locator rci.Locator
	if token := os.Getenv("MAPBOX_TOKEN"); token != "" {
		locator = postal.NewClient(token, 5*time.Second, metrics, logger)
	}

	calc := rci.NewCalculator(
		store,
		locator,
		loadOptional(*debtPath, debt.Load),
		loadOptional(*bridgesPath, bridges.Load),
		loadOptional(*ealPath, eal.Load),
		logger,
		metrics,
	)

	if *zip == "" {
		cov, err := calc.CoverageFor(*state, *county, *place)
		fatalIf(err)
		fmt.Printf("%-20s: %s\n", "state", cov.State)
		fmt.Printf("%-20s: %s\n", "county", cov.CountyName)
		fmt.Printf("%-20s: %s\n", "place", cov.PlaceName)
		fmt.Printf("%-20s: %.2f\n", "coverage score", cov.Score)
		fmt.Printf("%-20s: %s\n", "resolved at", cov.Level)
		return
	}

	result, err := calc.Calculate(context.Background(), *zip)
	fatalIf(err)

	fmt.Println("=== RCI Results ===")
	fmt.Printf("%-20s: %s\n", "zip", result.ZIP)
	fmt.Printf("%-20s: %s\n", "state", result.StateName)
	fmt.Printf("%-20s: %s\n", "county", result.CountyName)
	fmt.Printf("%-20s: %s\n", "place", result.PlaceName)
	printScore("hazard_score", result.HazardScore)
	fmt.Printf("%-20s: %s\n", "hazard_level", result.HazardLevel)
	printScore("debt_revenue_score", result.DebtRevenueScore)
	printScore("bridge_score", result.BridgeScore)
	printScore("eal_score", result.EALScore)
	printScore("rci", result.RCI)
}

// loadOptional loads a dataset when a path was given, exiting on failure.
// An empty path disables the component.
func loadOptional[T any](path string, load func(string) (*T, error)) *T {
	if path == "" {
		return nil
	}
	v, err := load(path)
	fatalIf(err)
	return v
}

func printScore(name string, score *float64) {
	if score == nil {
		fmt.Printf("%-20s: n/a\n", name)
		return
	}
	fmt.Printf("%-20s: %.2f\n", name, *score)
}

func fatalIf(err error) {
	if err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}
