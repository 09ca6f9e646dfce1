// Package dataset provides the static per-country average carbon intensity
// reference table, embedded at build time.
//
// The data derives from Our World in Data / Ember yearly electricity
// statistics, keyed by ISO 3166-1 alpha-2 country code.
package dataset

import (
	"bytes"
	_ "embed"
	"encoding/csv"
	"fmt"
	"strconv"
	"strings"
	"sync"
)

//go:embed data/carbon-intensities.csv
var intensitiesCSV []byte

const (
	countryColumn   = "alpha-2"
	intensityColumn = "Carbon intensity of electricity (gCO2eq/kWh)"
)

// Table resolves country-level average carbon intensities from the embedded
// reference data. It implements domain.CountryAverages. The CSV is parsed
// once, on first lookup.
type Table struct {
	once      sync.Once
	err       error
	byCountry map[string]float64
}

// New returns a Table backed by the embedded reference CSV.
func New() *Table {
	return &Table{}
}

// Lookup returns the yearly average intensity in gCO2eq/kWh for an ISO
// 3166-1 alpha-2 country code. Codes are matched case-insensitively. An
// unknown country and unreadable reference data both report a lookup error.
func (t *Table) Lookup(countryCode string) (float64, error) {
	t.once.Do(func() {
		t.byCountry, t.err = parseIntensities(intensitiesCSV)
	})
	if t.err != nil {
		return 0, fmt.Errorf("load intensity table: %w", t.err)
	}

	v, ok := t.byCountry[strings.ToUpper(strings.TrimSpace(countryCode))]
	if !ok {
		return 0, fmt.Errorf("no intensity data for country %q", countryCode)
	}
	return v, nil
}

// parseIntensities reads the reference CSV into a country → intensity map.
// Columns are located by header name so column order is not significant.
func parseIntensities(data []byte) (map[string]float64, error) {
	rows, err := csv.NewReader(bytes.NewReader(data)).ReadAll()
	if err != nil {
		return nil, fmt.Errorf("read csv: %w", err)
	}
	if len(rows) < 2 {
		return nil, fmt.Errorf("no data rows")
	}

	colIdx := map[string]int{}
	for i, h := range rows[0] {
		colIdx[h] = i
	}
	countryIdx, ok := colIdx[countryColumn]
	if !ok {
		return nil, fmt.Errorf("missing column %q", countryColumn)
	}
	intensityIdx, ok := colIdx[intensityColumn]
	if !ok {
		return nil, fmt.Errorf("missing column %q", intensityColumn)
	}

	byCountry := make(map[string]float64, len(rows)-1)
	for i, row := range rows[1:] {
		if len(row) <= countryIdx || len(row) <= intensityIdx {
			return nil, fmt.Errorf("row %d: too few columns", i+2)
		}
		code := strings.ToUpper(strings.TrimSpace(row[countryIdx]))
		if code == "" {
			continue
		}
		v, err := strconv.ParseFloat(strings.TrimSpace(row[intensityIdx]), 64)
		if err != nil {
			return nil, fmt.Errorf("row %d: parse intensity: %w", i+2, err)
		}
		byCountry[code] = v
	}
	return byCountry, nil
}
