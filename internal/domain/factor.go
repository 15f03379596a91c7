package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// DailyFactorRow is one day of the merged factor panel. All values are in
// percent. The momentum series is sourced separately and merged by date
// before rows reach this type, so every row carries the full factor set.
type DailyFactorRow struct {
	Date  time.Time
	MktRF float64
	SMB   float64
	HML   float64
	RMW   float64
	CMA   float64
	MOM   float64
	RF    float64
}

// WeeklyFactorRow is one week of the factor panel, keyed by the canonical
// week-ending date. Return factors are compounded over the week's trading
// days; RF is summed arithmetically.
type WeeklyFactorRow struct {
	WeekEnding time.Time
	MktRF      float64
	SMB        float64
	HML        float64
	RMW        float64
	CMA        float64
	MOM        float64
	RF         float64
}

type AssetPrice struct {
	Symbol string
	Price  float64
	Date   time.Time
}

// MergedAssetRow is one week of an asset's return history left-joined onto
// the weekly factor panel. Factors is nil when the panel has no row for the
// week, and ExcessReturn is only set when both the return and RF exist.
type MergedAssetRow struct {
	WeekEnding   time.Time
	Symbol       string
	Return       float64
	Factors      *WeeklyFactorRow
	ExcessReturn *float64
}

// ExposureRecord holds one asset's estimated factor loadings. Coefficients
// other than the market loading are zeroed when insignificant at the 5%
// level. DollarExposure is nil when the asset should be reported but
// excluded from portfolio weighting.
type ExposureRecord struct {
	Symbol         string           `json:"symbol"`
	Alpha          float64          `json:"alpha"`
	MktRF          float64          `json:"mkt_rf"`
	SMB            float64          `json:"smb"`
	HML            float64          `json:"hml"`
	RMW            float64          `json:"rmw"`
	CMA            float64          `json:"cma"`
	MOM            float64          `json:"mom"`
	R2             float64          `json:"r2"`
	DollarExposure *decimal.Decimal `json:"dollar_exposure"`
}

// PortfolioExposure is the dollar-weighted rollup of a set of exposure
// records. R2Est is a weighted average of per-asset R²s, not the R² of a
// portfolio-level fit, hence the distinct name.
type PortfolioExposure struct {
	Alpha float64 `json:"alpha"`
	MktRF float64 `json:"mkt_rf"`
	SMB   float64 `json:"smb"`
	HML   float64 `json:"hml"`
	RMW   float64 `json:"rmw"`
	CMA   float64 `json:"cma"`
	MOM   float64 `json:"mom"`
	R2Est float64 `json:"r2_est"`
}
