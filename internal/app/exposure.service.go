package app

import (
	"context"
	"fmt"
	"runtime"
	"sort"
	"time"

	"factorexposure/internal"
	"factorexposure/internal/domain"
	"factorexposure/internal/logger"
	"factorexposure/internal/repository"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type ExposureService interface {
	EstimateBatch(ctx context.Context, in EstimateBatchInput) (*BatchResult, error)
}

type EstimateBatchInput struct {
	Tickers []string
	// nil exposure: report the asset but exclude it from portfolio weights
	DollarExposures map[string]*decimal.Decimal
	DecayRate       float64
	WeeklyFactors   []domain.WeeklyFactorRow
	Start           time.Time
	End             time.Time

	// 0 means internal.DefaultWeekEndOffsetDays
	WeekEndOffsetDays int
	// 0 means available cores minus one
	NumWorkers int
}

type AssetFailure struct {
	Symbol string
	Err    error
}

// BatchResult reports every requested ticker exactly once, either as an
// exposure record or as a recorded failure. Records are sorted by
// descending dollar exposure (nil exposures last), ties broken by input
// order.
type BatchResult struct {
	RunID     uuid.UUID
	Records   []domain.ExposureRecord
	Failures  []AssetFailure
	Portfolio *domain.PortfolioExposure
}

type exposureServiceHandler struct {
	PriceRepository repository.PriceRepository
}

func NewExposureService(priceRepository repository.PriceRepository) ExposureService {
	return exposureServiceHandler{
		PriceRepository: priceRepository,
	}
}

type workInput struct {
	Symbol string
	Index  int
}

type workResult struct {
	Symbol string
	Index  int
	Record *domain.ExposureRecord
	Err    error
}

// EstimateBatch fans per-ticker estimation out over a bounded worker pool.
// Each worker owns one asset end to end: price retrieval, weekly return
// merge, and regression fit. A failed asset is recorded against that asset
// only; the aggregation step at the end is fatal if it fails.
func (h exposureServiceHandler) EstimateBatch(ctx context.Context, in EstimateBatchInput) (*BatchResult, error) {
	log := logger.FromContext(ctx)

	if len(in.Tickers) == 0 {
		return nil, fmt.Errorf("cannot estimate exposures for 0 tickers")
	}
	if len(in.WeeklyFactors) == 0 {
		return nil, fmt.Errorf("cannot estimate exposures without a weekly factor panel")
	}

	offset := in.WeekEndOffsetDays
	if offset == 0 {
		offset = internal.DefaultWeekEndOffsetDays
	}
	numWorkers := in.NumWorkers
	if numWorkers <= 0 {
		numWorkers = runtime.NumCPU() - 1
	}
	if numWorkers < 1 {
		numWorkers = 1
	}

	runID := uuid.New()
	log.Infow("starting exposure estimation run",
		"runId", runID,
		"tickers", len(in.Tickers),
		"workers", numWorkers,
		"decayRate", in.DecayRate,
	)

	inputCh := make(chan workInput, len(in.Tickers))
	resultCh := make(chan workResult, len(in.Tickers))
	for i, symbol := range in.Tickers {
		inputCh <- workInput{Symbol: symbol, Index: i}
	}
	close(inputCh)

	for i := 0; i < numWorkers; i++ {
		go func() {
			for {
				select {
				case <-ctx.Done():
					return
				case input, ok := <-inputCh:
					if !ok {
						return
					}
					record, err := h.estimateOne(ctx, in, offset, input.Symbol)
					if err != nil {
						err = fmt.Errorf("failed to estimate exposures for %s: %w", input.Symbol, err)
					}
					resultCh <- workResult{
						Symbol: input.Symbol,
						Index:  input.Index,
						Record: record,
						Err:    err,
					}
				}
			}
		}()
	}

	results := make([]workResult, 0, len(in.Tickers))
	for range in.Tickers {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case res := <-resultCh:
			results = append(results, res)
		}
	}

	out := &BatchResult{RunID: runID}
	for _, res := range results {
		if res.Err != nil {
			out.Failures = append(out.Failures, AssetFailure{Symbol: res.Symbol, Err: res.Err})
			log.Warnw("asset failed", "runId", runID, "symbol", res.Symbol, "error", res.Err)
			continue
		}
		out.Records = append(out.Records, *res.Record)
	}
	sortRecords(out.Records, in.Tickers)
	sortFailures(out.Failures, in.Tickers)

	portfolio, err := internal.AggregatePortfolio(out.Records)
	if err != nil {
		return nil, fmt.Errorf("failed to aggregate portfolio exposure: %w", err)
	}
	out.Portfolio = portfolio

	log.Infow("finished exposure estimation run",
		"runId", runID,
		"succeeded", len(out.Records),
		"failed", len(out.Failures),
	)

	return out, nil
}

func (h exposureServiceHandler) estimateOne(ctx context.Context, in EstimateBatchInput, offset int, symbol string) (*domain.ExposureRecord, error) {
	prices, err := h.PriceRepository.GetDailyPrices(ctx, symbol, in.Start, in.End)
	if err != nil {
		return nil, err
	}
	rows, err := internal.BuildMergedRows(symbol, prices, in.WeeklyFactors, offset)
	if err != nil {
		return nil, err
	}
	return internal.EstimateExposure(rows, in.DecayRate, in.DollarExposures[symbol])
}

// descending dollar exposure, nil exposures last, input order breaks ties
func sortRecords(records []domain.ExposureRecord, tickers []string) {
	order := inputOrder(tickers)
	sort.SliceStable(records, func(i, j int) bool {
		a, b := records[i].DollarExposure, records[j].DollarExposure
		switch {
		case a != nil && b != nil && !a.Equal(*b):
			return a.GreaterThan(*b)
		case a != nil && b == nil:
			return true
		case a == nil && b != nil:
			return false
		}
		return order[records[i].Symbol] < order[records[j].Symbol]
	})
}

func sortFailures(failures []AssetFailure, tickers []string) {
	order := inputOrder(tickers)
	sort.SliceStable(failures, func(i, j int) bool {
		return order[failures[i].Symbol] < order[failures[j].Symbol]
	})
}

func inputOrder(tickers []string) map[string]int {
	order := make(map[string]int, len(tickers))
	for i, t := range tickers {
		if _, ok := order[t]; !ok {
			order[t] = i
		}
	}
	return order
}
