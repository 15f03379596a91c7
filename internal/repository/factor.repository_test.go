package repository

import (
	"strings"
	"testing"

	"factorexposure/internal/domain"
	"factorexposure/internal/util"

	"github.com/stretchr/testify/require"
)

func Test_ParseDailyPanel(t *testing.T) {
	t.Run("merges momentum into the five-factor panel by date", func(t *testing.T) {
		factors := strings.NewReader(
			"Date,Mkt-RF,SMB,HML,RMW,CMA,RF\n" +
				"20240102,1.0,0.2,-0.3,0.1,0.05,0.01\n" +
				"20240103,-0.5,0.1,0.4,-0.2,0.15,0.01\n")
		momentum := strings.NewReader(
			"Date,Mom\n" +
				"20240102,0.8\n" +
				"20240103,-0.6\n")

		panel, err := ParseDailyPanel(factors, momentum)
		require.NoError(t, err)
		require.Len(t, panel, 2)

		require.Equal(t, util.NewDate(2024, 1, 2), panel[0].Date)
		require.Equal(t, 1.0, panel[0].MktRF)
		require.Equal(t, 0.8, panel[0].MOM)
		require.Equal(t, 0.01, panel[0].RF)
		require.Equal(t, -0.6, panel[1].MOM)
	})

	t.Run("days missing from the momentum series are dropped", func(t *testing.T) {
		factors := strings.NewReader(
			"Date,Mkt-RF,SMB,HML,RMW,CMA,RF\n" +
				"20240102,1.0,0.2,-0.3,0.1,0.05,0.01\n" +
				"20240103,-0.5,0.1,0.4,-0.2,0.15,0.01\n")
		momentum := strings.NewReader(
			"Date,Mom\n" +
				"20240103,-0.6\n")

		panel, err := ParseDailyPanel(factors, momentum)
		require.NoError(t, err)
		require.Len(t, panel, 1)
		require.Equal(t, util.NewDate(2024, 1, 3), panel[0].Date)
	})

	t.Run("accepts ISO dates", func(t *testing.T) {
		factors := strings.NewReader(
			"Date,Mkt-RF,SMB,HML,RMW,CMA,RF\n" +
				"2024-01-02,1.0,0.2,-0.3,0.1,0.05,0.01\n")
		momentum := strings.NewReader(
			"Date,Mom\n" +
				"2024-01-02,0.8\n")

		panel, err := ParseDailyPanel(factors, momentum)
		require.NoError(t, err)
		require.Len(t, panel, 1)
		require.Equal(t, util.NewDate(2024, 1, 2), panel[0].Date)
	})

	t.Run("a factor file missing a declared column is malformed", func(t *testing.T) {
		// no RMW column; absent columns must not silently parse as zeros
		factors := strings.NewReader(
			"Date,Mkt-RF,SMB,HML,CMA,RF\n" +
				"20240102,1.0,0.2,-0.3,0.05,0.01\n")
		momentum := strings.NewReader("Date,Mom\n20240102,0.8\n")

		_, err := ParseDailyPanel(factors, momentum)
		require.ErrorIs(t, err, domain.ErrMalformedPanel)
		require.ErrorContains(t, err, "RMW")
	})

	t.Run("a momentum file missing the Mom column is malformed", func(t *testing.T) {
		factors := strings.NewReader(
			"Date,Mkt-RF,SMB,HML,RMW,CMA,RF\n" +
				"20240102,1.0,0.2,-0.3,0.1,0.05,0.01\n")
		momentum := strings.NewReader("Date,Momentum\n20240102,0.8\n")

		_, err := ParseDailyPanel(factors, momentum)
		require.ErrorIs(t, err, domain.ErrMalformedPanel)
	})

	t.Run("unparseable dates are malformed", func(t *testing.T) {
		factors := strings.NewReader(
			"Date,Mkt-RF,SMB,HML,RMW,CMA,RF\n" +
				"Jan 2 2024,1.0,0.2,-0.3,0.1,0.05,0.01\n")
		momentum := strings.NewReader("Date,Mom\n20240102,0.8\n")

		_, err := ParseDailyPanel(factors, momentum)
		require.ErrorIs(t, err, domain.ErrMalformedPanel)
	})

	t.Run("unparseable values are malformed", func(t *testing.T) {
		factors := strings.NewReader(
			"Date,Mkt-RF,SMB,HML,RMW,CMA,RF\n" +
				"20240102,not-a-number,0.2,-0.3,0.1,0.05,0.01\n")
		momentum := strings.NewReader("Date,Mom\n20240102,0.8\n")

		_, err := ParseDailyPanel(factors, momentum)
		require.ErrorIs(t, err, domain.ErrMalformedPanel)
	})
}
