package internal

import (
	"fmt"
	"math"
	"sort"
	"time"

	"factorexposure/internal/domain"
	"factorexposure/internal/util"

	"github.com/montanaflynn/stats"
)

// DefaultWeekEndOffsetDays advances the Monday week start to a Saturday
// week-ending label. Both the factor panel and asset price series must be
// bucketed with the same offset.
const DefaultWeekEndOffsetDays = 5

// AggregateWeekly converts a daily factor panel into a weekly one. Return
// factors compound over each week's rows; RF is summed arithmetically.
// Output rows are sorted ascending by week-ending date.
func AggregateWeekly(panel []domain.DailyFactorRow, weekEndOffsetDays int) ([]domain.WeeklyFactorRow, error) {
	if len(panel) == 0 {
		return nil, fmt.Errorf("cannot aggregate an empty daily panel: %w", domain.ErrMalformedPanel)
	}

	buckets := map[time.Time][]domain.DailyFactorRow{}
	var prev time.Time
	for i, row := range panel {
		if row.Date.IsZero() {
			return nil, fmt.Errorf("row %d has no usable date: %w", i, domain.ErrMalformedPanel)
		}
		if i > 0 && !row.Date.After(prev) {
			return nil, fmt.Errorf("dates must be strictly increasing, got %s after %s: %w",
				row.Date.Format(time.DateOnly), prev.Format(time.DateOnly), domain.ErrMalformedPanel)
		}
		prev = row.Date
		if err := validateRow(row); err != nil {
			return nil, err
		}
		key := util.WeekEnding(row.Date, weekEndOffsetDays)
		buckets[key] = append(buckets[key], row)
	}

	weeks := make([]time.Time, 0, len(buckets))
	for week := range buckets {
		weeks = append(weeks, week)
	}
	sort.Slice(weeks, func(i, j int) bool {
		return weeks[i].Before(weeks[j])
	})

	out := make([]domain.WeeklyFactorRow, 0, len(weeks))
	for _, week := range weeks {
		rows := buckets[week]
		rf := make([]float64, len(rows))
		for i, r := range rows {
			rf[i] = r.RF
		}
		rfSum, err := stats.Sum(rf)
		if err != nil {
			return nil, fmt.Errorf("failed to sum RF for week %s: %w", week.Format(time.DateOnly), err)
		}
		out = append(out, domain.WeeklyFactorRow{
			WeekEnding: week,
			MktRF:      compound(rows, func(r domain.DailyFactorRow) float64 { return r.MktRF }),
			SMB:        compound(rows, func(r domain.DailyFactorRow) float64 { return r.SMB }),
			HML:        compound(rows, func(r domain.DailyFactorRow) float64 { return r.HML }),
			RMW:        compound(rows, func(r domain.DailyFactorRow) float64 { return r.RMW }),
			CMA:        compound(rows, func(r domain.DailyFactorRow) float64 { return r.CMA }),
			MOM:        compound(rows, func(r domain.DailyFactorRow) float64 { return r.MOM }),
			RF:         rfSum,
		})
	}

	return out, nil
}

// compound chains daily percent returns into a single weekly percent return.
// A single-row bucket reduces to that row's value.
func compound(rows []domain.DailyFactorRow, value func(domain.DailyFactorRow) float64) float64 {
	growth := 1.0
	for _, r := range rows {
		growth *= 1 + value(r)/100
	}
	return (growth - 1) * 100
}

func validateRow(row domain.DailyFactorRow) error {
	values := map[string]float64{
		"Mkt-RF": row.MktRF,
		"SMB":    row.SMB,
		"HML":    row.HML,
		"RMW":    row.RMW,
		"CMA":    row.CMA,
		"MOM":    row.MOM,
		"RF":     row.RF,
	}
	for name, v := range values {
		if math.IsNaN(v) {
			return fmt.Errorf("missing %s value on %s: %w", name, row.Date.Format(time.DateOnly), domain.ErrMalformedPanel)
		}
	}
	return nil
}
