package util

import (
	"time"
)

func NewDate(year, month, day int) time.Time {
	return time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)
}

// FloorToWeekStart returns the Monday of t's week at midnight UTC.
func FloorToWeekStart(t time.Time) time.Time {
	d := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
	back := (int(d.Weekday()) + 6) % 7
	return d.AddDate(0, 0, -back)
}

// WeekEnding maps t to its canonical week-ending date: the week's Monday
// advanced by offsetDays. Asset and factor calendars must use the same
// offset or their weekly rows will not join.
func WeekEnding(t time.Time, offsetDays int) time.Time {
	return FloorToWeekStart(t).AddDate(0, 0, offsetDays)
}
