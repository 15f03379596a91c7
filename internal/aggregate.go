package internal

import (
	"fmt"
	"math"

	"factorexposure/internal/domain"

	"github.com/shopspring/decimal"
)

// AggregatePortfolio rolls per-asset exposure records up into a single
// dollar-weighted portfolio record. Records with a nil dollar exposure
// contribute nothing and are excluded from the weight denominator, so the
// effective weights renormalize over the funded records only.
func AggregatePortfolio(records []domain.ExposureRecord) (*domain.PortfolioExposure, error) {
	total := decimal.Zero
	for _, r := range records {
		if r.DollarExposure != nil {
			total = total.Add(*r.DollarExposure)
		}
	}
	if total.IsZero() {
		return nil, fmt.Errorf("no dollar exposure to weight by: %w", domain.ErrZeroTotalExposure)
	}

	totalF := total.InexactFloat64()
	var alpha, mkt, smb, hml, rmw, cma, mom, r2 float64
	for _, r := range records {
		if r.DollarExposure == nil {
			continue
		}
		w := r.DollarExposure.InexactFloat64() / totalF
		alpha += w * orZero(r.Alpha)
		mkt += w * orZero(r.MktRF)
		smb += w * orZero(r.SMB)
		hml += w * orZero(r.HML)
		rmw += w * orZero(r.RMW)
		cma += w * orZero(r.CMA)
		mom += w * orZero(r.MOM)
		r2 += w * orZero(r.R2)
	}

	return &domain.PortfolioExposure{
		Alpha: round4(alpha),
		MktRF: round4(mkt),
		SMB:   round4(smb),
		HML:   round4(hml),
		RMW:   round4(rmw),
		CMA:   round4(cma),
		MOM:   round4(mom),
		R2Est: round4(r2),
	}, nil
}

// orZero keeps one asset's missing value from poisoning the whole sum.
func orZero(v float64) float64 {
	if math.IsNaN(v) {
		return 0
	}
	return v
}
