package domain

import "errors"

var (
	// ErrMalformedPanel indicates the daily factor panel cannot be
	// aggregated: unparseable dates, out-of-order rows, or missing factor
	// values.
	ErrMalformedPanel = errors.New("malformed factor panel")

	// ErrInsufficientHistory indicates an asset has too few weekly prices
	// to produce even one return.
	ErrInsufficientHistory = errors.New("insufficient price history")

	// ErrUnknownTicker indicates the price source returned no data for a
	// symbol.
	ErrUnknownTicker = errors.New("unknown ticker")

	// ErrEmptySample indicates no rows with usable excess returns remain
	// for regression.
	ErrEmptySample = errors.New("empty regression sample")

	// ErrRankDeficient indicates the weighted design matrix is not full
	// column rank.
	ErrRankDeficient = errors.New("rank-deficient design matrix")

	// ErrZeroTotalExposure indicates no dollar exposure exists to weight
	// the portfolio aggregation by.
	ErrZeroTotalExposure = errors.New("zero total dollar exposure")
)
