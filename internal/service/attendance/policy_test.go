package attendance

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func date(year int, month time.Month, day int) time.Time {
	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
}

func TestWeeklySchedule_ExpectedHours(t *testing.T) {
	schedule := DefaultWeeklySchedule()

	tests := []struct {
		name string
		day  time.Time
		want float64
	}{
		{"monday", date(2024, time.January, 1), 8.5},
		{"wednesday", date(2024, time.January, 3), 8.5},
		{"friday", date(2024, time.January, 5), 8.5},
		{"saturday", date(2024, time.January, 6), 4},
		{"sunday", date(2024, time.January, 7), 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, schedule.ExpectedHours(tt.day))
			assert.Equal(t, tt.want > 0, schedule.IsWorkingDay(tt.day))
		})
	}
}

func TestWeeklySchedule_Custom(t *testing.T) {
	schedule := NewWeeklySchedule(8, 0)

	assert.Equal(t, 8.0, schedule.ExpectedHours(date(2024, time.January, 2)))
	assert.False(t, schedule.IsWorkingDay(date(2024, time.January, 6)))
	assert.False(t, schedule.IsWorkingDay(date(2024, time.January, 7)))
}

func TestMonthBounds(t *testing.T) {
	first, last := MonthBounds(2024, time.February)
	assert.Equal(t, date(2024, time.February, 1), first)
	assert.Equal(t, date(2024, time.February, 29), last)

	first, last = MonthBounds(2023, time.December)
	assert.Equal(t, date(2023, time.December, 1), first)
	assert.Equal(t, date(2023, time.December, 31), last)
}

func TestTotalExpectedHoursForMonth(t *testing.T) {
	schedule := DefaultWeeklySchedule()

	// 23 weekdays and 4 Saturdays.
	assert.Equal(t, 211.5, TotalExpectedHoursForMonth(schedule, 2024, time.January))
	// 21 weekdays and 4 Saturdays.
	assert.Equal(t, 194.5, TotalExpectedHoursForMonth(schedule, 2024, time.February))
}

func TestTotalExpectedHoursForMonth_MatchesDailySum(t *testing.T) {
	schedule := DefaultWeeklySchedule()

	for year := 2023; year <= 2025; year++ {
		for month := time.January; month <= time.December; month++ {
			first, last := MonthBounds(year, month)
			var sum float64
			for day := first; !day.After(last); day = day.AddDate(0, 0, 1) {
				sum += schedule.ExpectedHours(day)
			}
			assert.InDelta(t, sum, TotalExpectedHoursForMonth(schedule, year, month), 1e-9, "%d-%02d", year, month)
		}
	}
}
