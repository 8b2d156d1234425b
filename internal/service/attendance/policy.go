package attendance

import (
	"time"

	"github.com/cmlabs-hris/attendance-analyzer/internal/domain/attendance"
	"github.com/shopspring/decimal"
)

const (
	DefaultWeekdayHours  = 8.5 // 10:00 - 18:30
	DefaultSaturdayHours = 4.0 // 10:00 - 14:00
)

// WeeklySchedule is a day-of-week work-hours policy. A day with zero hours is
// not a working day.
type WeeklySchedule struct {
	hours [7]float64 // indexed by time.Weekday
}

var _ attendance.Schedule = (*WeeklySchedule)(nil)

// NewWeeklySchedule builds the standard policy: Monday-Friday weekdayHours,
// Saturday saturdayHours, Sunday off.
func NewWeeklySchedule(weekdayHours, saturdayHours float64) *WeeklySchedule {
	s := &WeeklySchedule{}
	for d := time.Monday; d <= time.Friday; d++ {
		s.hours[d] = weekdayHours
	}
	s.hours[time.Saturday] = saturdayHours
	s.hours[time.Sunday] = 0
	return s
}

func DefaultWeeklySchedule() *WeeklySchedule {
	return NewWeeklySchedule(DefaultWeekdayHours, DefaultSaturdayHours)
}

// ExpectedHours implements attendance.Schedule.
func (s *WeeklySchedule) ExpectedHours(date time.Time) float64 {
	return s.hours[date.Weekday()]
}

// IsWorkingDay implements attendance.Schedule.
func (s *WeeklySchedule) IsWorkingDay(date time.Time) bool {
	return s.ExpectedHours(date) > 0
}

// MonthBounds returns the first and last calendar day of the month.
func MonthBounds(year int, month time.Month) (time.Time, time.Time) {
	first := time.Date(year, month, 1, 0, 0, 0, 0, time.UTC)
	last := first.AddDate(0, 1, -1)
	return first, last
}

// TotalExpectedHoursForMonth sums the schedule over every day of the month.
func TotalExpectedHoursForMonth(schedule attendance.Schedule, year int, month time.Month) float64 {
	first, last := MonthBounds(year, month)
	total := decimal.Zero
	for day := first; !day.After(last); day = day.AddDate(0, 0, 1) {
		total = total.Add(decimal.NewFromFloat(schedule.ExpectedHours(day)))
	}
	return total.InexactFloat64()
}
