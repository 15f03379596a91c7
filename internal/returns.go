package internal

import (
	"fmt"
	"sort"
	"time"

	"factorexposure/internal/domain"
	"factorexposure/internal/util"
)

type weeklyClose struct {
	weekEnding time.Time
	price      float64
}

// BuildMergedRows resamples an asset's daily prices to weekly closes,
// derives simple returns between consecutive closes, and left-joins the
// result onto the weekly factor panel. The first weekly close has no
// predecessor and produces no row. Weeks missing from the factor panel keep
// their return but carry nil factors and a nil excess return, so they drop
// out of any regression sample.
func BuildMergedRows(
	symbol string,
	prices []domain.AssetPrice,
	weeklyFactors []domain.WeeklyFactorRow,
	weekEndOffsetDays int,
) ([]domain.MergedAssetRow, error) {
	closes := weeklyCloses(prices, weekEndOffsetDays)
	if len(closes) < 2 {
		return nil, fmt.Errorf("%s has %d weekly price observation(s), need at least 2: %w",
			symbol, len(closes), domain.ErrInsufficientHistory)
	}

	factorsByWeek := map[time.Time]domain.WeeklyFactorRow{}
	for _, f := range weeklyFactors {
		factorsByWeek[f.WeekEnding] = f
	}

	rows := make([]domain.MergedAssetRow, 0, len(closes)-1)
	for i := 1; i < len(closes); i++ {
		ret := (closes[i].price/closes[i-1].price - 1) * 100
		row := domain.MergedAssetRow{
			WeekEnding: closes[i].weekEnding,
			Symbol:     symbol,
			Return:     ret,
		}
		if f, ok := factorsByWeek[closes[i].weekEnding]; ok {
			f := f
			excess := ret - f.RF
			row.Factors = &f
			row.ExcessReturn = &excess
		}
		rows = append(rows, row)
	}

	return rows, nil
}

// weeklyCloses buckets daily prices by week-ending date, keeping the last
// observed price within each week.
func weeklyCloses(prices []domain.AssetPrice, weekEndOffsetDays int) []weeklyClose {
	lastDate := map[time.Time]time.Time{}
	lastPrice := map[time.Time]float64{}
	for _, p := range prices {
		week := util.WeekEnding(p.Date, weekEndOffsetDays)
		if seen, ok := lastDate[week]; !ok || p.Date.After(seen) {
			lastDate[week] = p.Date
			lastPrice[week] = p.Price
		}
	}

	out := make([]weeklyClose, 0, len(lastPrice))
	for week, price := range lastPrice {
		out = append(out, weeklyClose{weekEnding: week, price: price})
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].weekEnding.Before(out[j].weekEnding)
	})

	return out
}
