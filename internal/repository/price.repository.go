package repository

import (
	"context"
	"fmt"
	"time"

	"factorexposure/internal/domain"

	"github.com/piquette/finance-go/chart"
	"github.com/piquette/finance-go/datetime"
)

// PriceRepository supplies daily adjusted closing prices for one symbol.
// Implementations own their own timeouts and retries; callers treat an
// ErrUnknownTicker result as final for that symbol.
type PriceRepository interface {
	GetDailyPrices(ctx context.Context, symbol string, start, end time.Time) ([]domain.AssetPrice, error)
}

type yahooPriceRepository struct{}

func NewYahooPriceRepository() PriceRepository {
	return yahooPriceRepository{}
}

func (yahooPriceRepository) GetDailyPrices(ctx context.Context, symbol string, start, end time.Time) ([]domain.AssetPrice, error) {
	params := &chart.Params{
		Start:    datetime.New(&start),
		End:      datetime.New(&end),
		Symbol:   symbol,
		Interval: datetime.OneDay,
	}
	iter := chart.Get(params)

	prices := []domain.AssetPrice{}
	for iter.Next() {
		prices = append(prices, domain.AssetPrice{
			Symbol: symbol,
			Date:   time.Unix(int64(iter.Bar().Timestamp), 0).UTC(),
			Price:  iter.Bar().AdjClose.InexactFloat64(),
		})
	}
	if err := iter.Err(); err != nil {
		return nil, fmt.Errorf("failed to get prices for %s: %w", symbol, err)
	}
	if len(prices) == 0 {
		return nil, fmt.Errorf("no price data returned for %s: %w", symbol, domain.ErrUnknownTicker)
	}

	return prices, nil
}
