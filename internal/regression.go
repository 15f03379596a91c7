package internal

import (
	"fmt"
	"math"
	"time"

	"factorexposure/internal/domain"

	"github.com/shopspring/decimal"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat/distuv"
)

const (
	// intercept plus six factor loadings
	numParams = 7

	// age is measured in 30-day months rather than calendar months
	daysPerMonth = 30.0

	significanceLevel = 0.05
)

// DecayWeight returns the observation weight for a row, given the most
// recent week in the sample. The most recent row always has weight 1;
// older rows decay exponentially in 30-day-month units.
func DecayWeight(decayRate float64, finalDate, weekEnding time.Time) float64 {
	ageMonths := finalDate.Sub(weekEnding).Hours() / 24 / daysPerMonth
	return math.Pow(decayRate, ageMonths)
}

// EstimateExposure fits excess_return ~ 1 + Mkt-RF + SMB + HML + RMW + CMA + MOM
// by weighted least squares over one asset's merged rows, with observation
// weights decayed by age relative to the asset's own most recent week.
// Every coefficient except the market loading reports 0 when its two-sided
// p-value exceeds 5%; the market loading is never gated.
func EstimateExposure(
	rows []domain.MergedAssetRow,
	decayRate float64,
	dollarExposure *decimal.Decimal,
) (*domain.ExposureRecord, error) {
	if decayRate <= 0 || decayRate > 1 {
		return nil, fmt.Errorf("decay rate must be in (0, 1], got %v", decayRate)
	}

	sample := make([]domain.MergedAssetRow, 0, len(rows))
	for _, r := range rows {
		if r.ExcessReturn != nil && r.Factors != nil {
			sample = append(sample, r)
		}
	}
	if len(sample) == 0 {
		return nil, fmt.Errorf("no rows with usable excess returns: %w", domain.ErrEmptySample)
	}

	symbol := sample[0].Symbol
	n := len(sample)
	if n < numParams {
		return nil, fmt.Errorf("%s: %d usable observation(s) for %d parameters: %w",
			symbol, n, numParams, domain.ErrRankDeficient)
	}

	finalDate := sample[0].WeekEnding
	for _, r := range sample[1:] {
		if r.WeekEnding.After(finalDate) {
			finalDate = r.WeekEnding
		}
	}

	// scale each design row and response by sqrt(w) so the ordinary normal
	// equations on the scaled system solve the weighted problem
	x := mat.NewDense(n, numParams, nil)
	y := mat.NewVecDense(n, nil)
	weights := make([]float64, n)
	var sumW, sumWY float64
	for i, r := range sample {
		w := DecayWeight(decayRate, finalDate, r.WeekEnding)
		weights[i] = w
		sw := math.Sqrt(w)
		f := r.Factors
		x.SetRow(i, []float64{sw, sw * f.MktRF, sw * f.SMB, sw * f.HML, sw * f.RMW, sw * f.CMA, sw * f.MOM})
		y.SetVec(i, sw*(*r.ExcessReturn))
		sumW += w
		sumWY += w * *r.ExcessReturn
	}

	var xtx mat.Dense
	xtx.Mul(x.T(), x)
	normal := mat.NewSymDense(numParams, nil)
	for i := 0; i < numParams; i++ {
		for j := i; j < numParams; j++ {
			normal.SetSym(i, j, xtx.At(i, j))
		}
	}

	var chol mat.Cholesky
	if ok := chol.Factorize(normal); !ok {
		return nil, fmt.Errorf("%s: weighted design matrix is not full column rank: %w",
			symbol, domain.ErrRankDeficient)
	}

	xty := mat.NewVecDense(numParams, nil)
	xty.MulVec(x.T(), y)
	beta := mat.NewVecDense(numParams, nil)
	if err := chol.SolveVecTo(beta, xty); err != nil {
		return nil, fmt.Errorf("%s: failed to solve normal equations: %w", symbol, domain.ErrRankDeficient)
	}
	var inv mat.SymDense
	if err := chol.InverseTo(&inv); err != nil {
		return nil, fmt.Errorf("%s: failed to invert normal matrix: %w", symbol, domain.ErrRankDeficient)
	}

	fitted := mat.NewVecDense(n, nil)
	fitted.MulVec(x, beta)
	rss := 0.0
	for i := 0; i < n; i++ {
		resid := y.AtVec(i) - fitted.AtVec(i)
		rss += resid * resid
	}
	weightedMean := sumWY / sumW
	tss := 0.0
	for i, r := range sample {
		dev := *r.ExcessReturn - weightedMean
		tss += weights[i] * dev * dev
	}

	dof := float64(n - numParams)
	var sigma2 float64
	if dof > 0 {
		sigma2 = rss / dof
	}
	pValues := make([]float64, numParams)
	for j := 0; j < numParams; j++ {
		se := math.Sqrt(sigma2 * inv.At(j, j))
		pValues[j] = twoSidedPValue(beta.AtVec(j), se, dof)
	}

	r2 := 1.0
	if tss > 0 {
		r2 = 1 - rss/tss
	}

	return &domain.ExposureRecord{
		Symbol: symbol,
		Alpha:  gateCoefficient(beta.AtVec(0), pValues[0]),
		// the market loading is reported as estimated regardless of significance
		MktRF:          round4(beta.AtVec(1)),
		SMB:            gateCoefficient(beta.AtVec(2), pValues[2]),
		HML:            gateCoefficient(beta.AtVec(3), pValues[3]),
		RMW:            gateCoefficient(beta.AtVec(4), pValues[4]),
		CMA:            gateCoefficient(beta.AtVec(5), pValues[5]),
		MOM:            gateCoefficient(beta.AtVec(6), pValues[6]),
		R2:             round4(r2),
		DollarExposure: dollarExposure,
	}, nil
}

// twoSidedPValue tests estimate against zero with n-p degrees of freedom.
// An exact fit leaves a zero standard error: a nonzero estimate is then
// certainly nonzero (p = 0) and a zero one certainly zero (p = 1).
func twoSidedPValue(estimate, stderr, dof float64) float64 {
	if stderr == 0 {
		if estimate == 0 {
			return 1
		}
		return 0
	}
	if dof < 1 {
		return 1
	}
	t := distuv.StudentsT{Mu: 0, Sigma: 1, Nu: dof}
	return 2 * t.CDF(-math.Abs(estimate/stderr))
}

func gateCoefficient(estimate, pValue float64) float64 {
	if pValue > significanceLevel {
		return 0
	}
	return round4(estimate)
}

func round4(v float64) float64 {
	return math.Round(v*1e4) / 1e4
}
