package internal

import (
	"math"
	"testing"

	"factorexposure/internal/domain"
	"factorexposure/internal/util"

	"github.com/stretchr/testify/require"
)

func Test_AggregateWeekly(t *testing.T) {
	t.Run("single row per week is the identity", func(t *testing.T) {
		panel := []domain.DailyFactorRow{
			{Date: util.NewDate(2024, 1, 3), MktRF: 1.5, SMB: -0.2, HML: 0.4, RMW: 0.1, CMA: -0.3, MOM: 0.8, RF: 0.02},
			{Date: util.NewDate(2024, 1, 10), MktRF: -0.7, SMB: 0.5, HML: -0.1, RMW: 0.3, CMA: 0.2, MOM: -0.4, RF: 0.02},
		}

		weekly, err := AggregateWeekly(panel, DefaultWeekEndOffsetDays)
		require.NoError(t, err)
		require.Len(t, weekly, 2)

		require.Equal(t, util.NewDate(2024, 1, 6), weekly[0].WeekEnding)
		require.Equal(t, util.NewDate(2024, 1, 13), weekly[1].WeekEnding)

		require.InDelta(t, 1.5, weekly[0].MktRF, 1e-9)
		require.InDelta(t, -0.2, weekly[0].SMB, 1e-9)
		require.InDelta(t, 0.4, weekly[0].HML, 1e-9)
		require.InDelta(t, 0.1, weekly[0].RMW, 1e-9)
		require.InDelta(t, -0.3, weekly[0].CMA, 1e-9)
		require.InDelta(t, 0.8, weekly[0].MOM, 1e-9)
		require.InDelta(t, 0.02, weekly[0].RF, 1e-9)
		require.InDelta(t, -0.7, weekly[1].MktRF, 1e-9)
	})

	t.Run("return factors compound, RF sums", func(t *testing.T) {
		panel := []domain.DailyFactorRow{
			{Date: util.NewDate(2024, 1, 2), MktRF: 1, SMB: 0.5, RF: 0.01},
			{Date: util.NewDate(2024, 1, 3), MktRF: 2, SMB: -0.5, RF: 0.02},
			{Date: util.NewDate(2024, 1, 9), MktRF: 3, SMB: 1, RF: 0.03},
		}

		weekly, err := AggregateWeekly(panel, DefaultWeekEndOffsetDays)
		require.NoError(t, err)
		require.Len(t, weekly, 2)

		// (1.01 * 1.02 - 1) * 100
		require.InDelta(t, 3.02, weekly[0].MktRF, 1e-9)
		// (1.005 * 0.995 - 1) * 100
		require.InDelta(t, -0.0025, weekly[0].SMB, 1e-9)
		require.InDelta(t, 0.03, weekly[0].RF, 1e-9)

		require.InDelta(t, 3, weekly[1].MktRF, 1e-9)
		require.InDelta(t, 0.03, weekly[1].RF, 1e-9)
	})

	t.Run("empty panel is malformed", func(t *testing.T) {
		_, err := AggregateWeekly(nil, DefaultWeekEndOffsetDays)
		require.ErrorIs(t, err, domain.ErrMalformedPanel)
	})

	t.Run("duplicate dates are malformed", func(t *testing.T) {
		panel := []domain.DailyFactorRow{
			{Date: util.NewDate(2024, 1, 2), MktRF: 1},
			{Date: util.NewDate(2024, 1, 2), MktRF: 2},
		}
		_, err := AggregateWeekly(panel, DefaultWeekEndOffsetDays)
		require.ErrorIs(t, err, domain.ErrMalformedPanel)
	})

	t.Run("out of order dates are malformed", func(t *testing.T) {
		panel := []domain.DailyFactorRow{
			{Date: util.NewDate(2024, 1, 3)},
			{Date: util.NewDate(2024, 1, 2)},
		}
		_, err := AggregateWeekly(panel, DefaultWeekEndOffsetDays)
		require.ErrorIs(t, err, domain.ErrMalformedPanel)
	})

	t.Run("missing factor value is malformed", func(t *testing.T) {
		panel := []domain.DailyFactorRow{
			{Date: util.NewDate(2024, 1, 2), HML: math.NaN()},
		}
		_, err := AggregateWeekly(panel, DefaultWeekEndOffsetDays)
		require.ErrorIs(t, err, domain.ErrMalformedPanel)
	})

	t.Run("zero date is malformed", func(t *testing.T) {
		_, err := AggregateWeekly([]domain.DailyFactorRow{{MktRF: 1}}, DefaultWeekEndOffsetDays)
		require.ErrorIs(t, err, domain.ErrMalformedPanel)
	})
}
