package repository

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"factorexposure/internal/domain"

	"github.com/gocarina/gocsv"
)

// FactorRepository loads the daily factor panel from local files: the
// five-factor CSV (Date, Mkt-RF, SMB, HML, RMW, CMA, RF) and the
// separately-distributed momentum CSV (Date, Mom), merged by date.
type FactorRepository interface {
	LoadDailyPanel(factorsPath, momentumPath string) ([]domain.DailyFactorRow, error)
}

type csvFactorRepository struct{}

func NewCSVFactorRepository() FactorRepository {
	return csvFactorRepository{}
}

func (csvFactorRepository) LoadDailyPanel(factorsPath, momentumPath string) ([]domain.DailyFactorRow, error) {
	factorsFile, err := os.Open(factorsPath)
	if err != nil {
		return nil, fmt.Errorf("could not open factor file: %w", err)
	}
	defer factorsFile.Close()

	momentumFile, err := os.Open(momentumPath)
	if err != nil {
		return nil, fmt.Errorf("could not open momentum file: %w", err)
	}
	defer momentumFile.Close()

	return ParseDailyPanel(factorsFile, momentumFile)
}

type fiveFactorRow struct {
	Date  string  `csv:"Date"`
	MktRF float64 `csv:"Mkt-RF"`
	SMB   float64 `csv:"SMB"`
	HML   float64 `csv:"HML"`
	RMW   float64 `csv:"RMW"`
	CMA   float64 `csv:"CMA"`
	RF    float64 `csv:"RF"`
}

type momentumRow struct {
	Date string  `csv:"Date"`
	MOM  float64 `csv:"Mom"`
}

// ParseDailyPanel reads both CSVs and inner-joins them by date, so days
// missing from either series never reach the panel. Rows come out in the
// factor file's order. Every declared column must appear in the header;
// gocsv would otherwise leave an absent column's values at zero and the
// panel would silently carry a constant-0 factor.
func ParseDailyPanel(factors io.Reader, momentum io.Reader) ([]domain.DailyFactorRow, error) {
	factorBytes, err := io.ReadAll(factors)
	if err != nil {
		return nil, fmt.Errorf("failed to read factor file: %w", err)
	}
	if err := requireColumns(factorBytes, "Date", "Mkt-RF", "SMB", "HML", "RMW", "CMA", "RF"); err != nil {
		return nil, fmt.Errorf("factor file: %w", err)
	}
	ffRows := []fiveFactorRow{}
	if err := gocsv.UnmarshalBytes(factorBytes, &ffRows); err != nil {
		return nil, fmt.Errorf("failed to parse factor file: %v: %w", err, domain.ErrMalformedPanel)
	}

	momentumBytes, err := io.ReadAll(momentum)
	if err != nil {
		return nil, fmt.Errorf("failed to read momentum file: %w", err)
	}
	if err := requireColumns(momentumBytes, "Date", "Mom"); err != nil {
		return nil, fmt.Errorf("momentum file: %w", err)
	}
	momRows := []momentumRow{}
	if err := gocsv.UnmarshalBytes(momentumBytes, &momRows); err != nil {
		return nil, fmt.Errorf("failed to parse momentum file: %v: %w", err, domain.ErrMalformedPanel)
	}
	momByDate := map[time.Time]float64{}
	for _, row := range momRows {
		date, err := parseFactorDate(row.Date)
		if err != nil {
			return nil, err
		}
		momByDate[date] = row.MOM
	}

	panel := []domain.DailyFactorRow{}
	for _, row := range ffRows {
		date, err := parseFactorDate(row.Date)
		if err != nil {
			return nil, err
		}
		mom, ok := momByDate[date]
		if !ok {
			continue
		}
		panel = append(panel, domain.DailyFactorRow{
			Date:  date,
			MktRF: row.MktRF,
			SMB:   row.SMB,
			HML:   row.HML,
			RMW:   row.RMW,
			CMA:   row.CMA,
			MOM:   mom,
			RF:    row.RF,
		})
	}

	return panel, nil
}

func requireColumns(file []byte, names ...string) error {
	header, err := csv.NewReader(bytes.NewReader(file)).Read()
	if err != nil {
		return fmt.Errorf("failed to read header row: %v: %w", err, domain.ErrMalformedPanel)
	}
	present := map[string]bool{}
	for _, col := range header {
		present[strings.TrimSpace(col)] = true
	}
	for _, name := range names {
		if !present[name] {
			return fmt.Errorf("missing %s column: %w", name, domain.ErrMalformedPanel)
		}
	}
	return nil
}

// the Ken French library distributes dates as yyyymmdd integers; exports
// from other tooling tend to use ISO dates
var factorDateLayouts = []string{"20060102", time.DateOnly}

func parseFactorDate(s string) (time.Time, error) {
	for _, layout := range factorDateLayouts {
		if date, err := time.Parse(layout, s); err == nil {
			return date.UTC(), nil
		}
	}
	return time.Time{}, fmt.Errorf("unparseable date %q: %w", s, domain.ErrMalformedPanel)
}
