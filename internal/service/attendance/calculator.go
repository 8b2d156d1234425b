package attendance

import (
	"time"

	"github.com/cmlabs-hris/attendance-analyzer/internal/domain/attendance"
	"github.com/shopspring/decimal"
)

const minutesPerDay = 24 * 60

var sixty = decimal.NewFromInt(60)

// WorkedHours returns the hours between two canonical times, rounded to two
// decimals. An out time earlier than the in time is read as the next day.
// Either time missing yields 0.
func WorkedHours(inTime, outTime *string) float64 {
	if inTime == nil || outTime == nil {
		return 0
	}
	in, ok := minutesSinceMidnight(*inTime)
	if !ok {
		return 0
	}
	out, ok := minutesSinceMidnight(*outTime)
	if !ok {
		return 0
	}

	diff := out - in
	if diff < 0 {
		diff += minutesPerDay
	}
	return decimal.NewFromInt(int64(diff)).Div(sixty).Round(2).InexactFloat64()
}

// round2 rounds half away from zero to two decimals; every value rounded here
// is non-negative, so this is round-half-up.
func round2(v float64) float64 {
	return decimal.NewFromFloat(v).Round(2).InexactFloat64()
}

// Classification is the outcome of the leave rules for one day.
type Classification struct {
	Status  attendance.Status
	IsLeave bool
}

// Classify decides the status of a day. A non-working day is a holiday whatever
// the times say; on a working day a missing in or out time is a leave.
// Worked-hours magnitude never matters: in == out is still present.
func Classify(schedule attendance.Schedule, inTime, outTime *string, date time.Time) Classification {
	if !schedule.IsWorkingDay(date) {
		return Classification{Status: attendance.StatusHoliday}
	}
	if inTime == nil || outTime == nil {
		return Classification{Status: attendance.StatusLeave, IsLeave: true}
	}
	return Classification{Status: attendance.StatusPresent}
}
