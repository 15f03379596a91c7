package main

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"factorexposure/cmd"
	"factorexposure/internal"
	"factorexposure/internal/app"
	"factorexposure/internal/logger"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"
)

var (
	flagTickers      []string
	flagExposures    []string
	flagDecayRate    float64
	flagFactorsFile  string
	flagMomentumFile string
	flagStart        string
	flagEnd          string
	flagWorkers      int
)

var rootCmd = &cobra.Command{
	Use:   "factorexposure",
	Short: "Estimate factor exposures for a set of assets",
}

var estimateCmd = &cobra.Command{
	Use:   "estimate",
	Short: "Run decay-weighted factor regressions and aggregate a portfolio exposure profile",
	RunE:  runEstimate,
}

func init() {
	estimateCmd.Flags().StringSliceVar(&flagTickers, "tickers", nil, "comma-separated ticker symbols")
	estimateCmd.Flags().StringSliceVar(&flagExposures, "exposures", nil, "dollar exposures as SYMBOL=AMOUNT pairs; omitted symbols are reported but unweighted")
	estimateCmd.Flags().Float64Var(&flagDecayRate, "decay", 0.99, "monthly decay rate in (0, 1]")
	estimateCmd.Flags().StringVar(&flagFactorsFile, "factors-file", "", "path to the daily five-factor CSV")
	estimateCmd.Flags().StringVar(&flagMomentumFile, "momentum-file", "", "path to the daily momentum CSV")
	estimateCmd.Flags().StringVar(&flagStart, "start", "2015-01-01", "price history start date (YYYY-MM-DD)")
	estimateCmd.Flags().StringVar(&flagEnd, "end", "", "price history end date (YYYY-MM-DD), default today")
	estimateCmd.Flags().IntVar(&flagWorkers, "workers", 0, "worker pool size, default cores minus one")
	_ = estimateCmd.MarkFlagRequired("tickers")
	_ = estimateCmd.MarkFlagRequired("factors-file")
	_ = estimateCmd.MarkFlagRequired("momentum-file")
	rootCmd.AddCommand(estimateCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		log.Fatal(err)
	}
}

func runEstimate(_ *cobra.Command, _ []string) error {
	l := logger.New()
	ctx := logger.AddToContext(context.Background(), l)

	start, err := time.Parse(time.DateOnly, flagStart)
	if err != nil {
		return fmt.Errorf("invalid --start date: %w", err)
	}
	end := time.Now().UTC()
	if flagEnd != "" {
		end, err = time.Parse(time.DateOnly, flagEnd)
		if err != nil {
			return fmt.Errorf("invalid --end date: %w", err)
		}
	}

	exposures, err := parseExposures(flagExposures)
	if err != nil {
		return err
	}

	handler, err := cmd.InitializeDependencies()
	if err != nil {
		return err
	}

	panel, err := handler.FactorRepository.LoadDailyPanel(flagFactorsFile, flagMomentumFile)
	if err != nil {
		return err
	}
	weekly, err := internal.AggregateWeekly(panel, internal.DefaultWeekEndOffsetDays)
	if err != nil {
		return err
	}

	result, err := handler.ExposureService.EstimateBatch(ctx, app.EstimateBatchInput{
		Tickers:         flagTickers,
		DollarExposures: exposures,
		DecayRate:       flagDecayRate,
		WeeklyFactors:   weekly,
		Start:           start,
		End:             end,
		NumWorkers:      flagWorkers,
	})
	if err != nil {
		return err
	}

	failures := map[string]string{}
	for _, f := range result.Failures {
		failures[f.Symbol] = f.Err.Error()
	}
	internal.Pprint(struct {
		RunID     string            `json:"run_id"`
		Exposures interface{}       `json:"exposures"`
		Portfolio interface{}       `json:"portfolio"`
		Failures  map[string]string `json:"failures,omitempty"`
	}{
		RunID:     result.RunID.String(),
		Exposures: result.Records,
		Portfolio: result.Portfolio,
		Failures:  failures,
	})

	return nil
}

func parseExposures(pairs []string) (map[string]*decimal.Decimal, error) {
	out := map[string]*decimal.Decimal{}
	for _, pair := range pairs {
		symbol, amountStr, found := strings.Cut(pair, "=")
		if !found {
			return nil, fmt.Errorf("invalid exposure %q, want SYMBOL=AMOUNT", pair)
		}
		amount, err := decimal.NewFromString(amountStr)
		if err != nil {
			return nil, fmt.Errorf("invalid exposure amount %q: %w", amountStr, err)
		}
		if amount.IsNegative() {
			return nil, fmt.Errorf("exposure for %s must be non-negative, got %s", symbol, amountStr)
		}
		out[symbol] = &amount
	}
	return out, nil
}
