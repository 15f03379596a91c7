package util

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func Test_FloorToWeekStart(t *testing.T) {
	monday := NewDate(2024, 1, 1)

	// every day Monday through Sunday floors to the same Monday
	for offset := 0; offset < 7; offset++ {
		got := FloorToWeekStart(monday.AddDate(0, 0, offset))
		require.Equal(t, monday, got, "offset %d", offset)
	}

	require.Equal(t, NewDate(2024, 1, 8), FloorToWeekStart(NewDate(2024, 1, 8)))
}

func Test_WeekEnding(t *testing.T) {
	// the five-day offset lands every day of the week on the same Saturday
	saturday := NewDate(2024, 1, 6)
	for offset := 0; offset < 7; offset++ {
		got := WeekEnding(NewDate(2024, 1, 1).AddDate(0, 0, offset), 5)
		require.Equal(t, saturday, got, "offset %d", offset)
	}
}
