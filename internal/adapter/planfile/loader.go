// Package planfile reads the hazard mitigation plan status CSV into raw
// table rows for the hazard normalizer.
package planfile

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/ericrodrz/rci-service/internal/hazard"
)

// Column names as they appear in the plan status table header. Matching is
// case-insensitive to survive export tooling differences.
const (
	colState      = "stateAbbreviation"
	colCounty     = "countyName"
	colPlace      = "placeName"
	colPopulation = "population"
	colApproval   = "planApprovalDate"
	colExpiration = "planExpirationDate"
	colAdoption   = "adoptionDate"
)

// Load reads and parses the plan status CSV at path.
func Load(path string) ([]hazard.RawTableRow, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open plan file: %w", err)
	}
	defer f.Close()

	rows, err := Parse(f)
	if err != nil {
		return nil, fmt.Errorf("parse plan file %s: %w", path, err)
	}
	return rows, nil
}

// Parse reads header-mapped CSV rows from r. Rows shorter than the header
// are tolerated; missing cells read as empty strings and are recovered
// downstream by the normalizer.
func Parse(r io.Reader) ([]hazard.RawTableRow, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1

	header, err := cr.Read()
	if err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}

	cols := make(map[string]int, len(header))
	for i, name := range header {
		cols[strings.ToLower(strings.TrimSpace(name))] = i
	}
	if _, ok := cols[strings.ToLower(colState)]; !ok {
		return nil, fmt.Errorf("missing required column %q", colState)
	}
	if _, ok := cols[strings.ToLower(colPlace)]; !ok {
		return nil, fmt.Errorf("missing required column %q", colPlace)
	}

	field := func(record []string, name string) string {
		i, ok := cols[strings.ToLower(name)]
		if !ok || i >= len(record) {
			return ""
		}
		return record[i]
	}

	var rows []hazard.RawTableRow
	for {
		record, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read row: %w", err)
		}
		rows = append(rows, hazard.RawTableRow{
			StateAbbreviation:  field(record, colState),
			CountyName:         field(record, colCounty),
			PlaceName:          field(record, colPlace),
			Population:         field(record, colPopulation),
			PlanApprovalDate:   field(record, colApproval),
			PlanExpirationDate: field(record, colExpiration),
			AdoptionDate:       field(record, colAdoption),
		})
	}
	return rows, nil
}
