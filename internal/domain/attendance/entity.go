package attendance

import (
	"time"
)

type Status string

const (
	StatusPresent Status = "present"
	StatusLeave   Status = "leave"
	StatusHoliday Status = "holiday"
)

// DateLayout is the calendar-day key used in storage and reports.
const DateLayout = "2006-01-02"

// Record is the canonical attendance entry, one per employee per calendar date.
type Record struct {
	ID           string
	EmployeeName string
	// Date carries a civil date at midnight UTC; the zone is never used for
	// anything other than holding the year, month and day.
	Date time.Time
	// InTime and OutTime are canonical "HH:mm" values; nil means no time recorded.
	InTime  *string
	OutTime *string
	// ExpectedHours is nil when the stored row carries no value, in which case
	// readers fall back to the schedule.
	ExpectedHours *float64
	WorkedHours   float64
	Status        Status
	IsLeave       bool
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// DateKey returns the record's calendar day as YYYY-MM-DD.
func (r Record) DateKey() string {
	return r.Date.Format(DateLayout)
}

// CivilDate strips the time of day and zone from t, keeping its calendar day.
func CivilDate(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// Schedule decides how many hours are expected on a calendar day.
type Schedule interface {
	ExpectedHours(date time.Time) float64
	IsWorkingDay(date time.Time) bool
}

// MonthlySummary is derived from stored records and never persisted.
type MonthlySummary struct {
	EmployeeName       string
	Year               int
	Month              time.Month
	TotalExpectedHours float64
	TotalActualHours   float64
	LeavesUsed         int
	MaxLeavesAllowed   int
	Productivity       float64
	RecordCount        int
}

// DailyEntry is one calendar day of a reconciled month.
type DailyEntry struct {
	Date          time.Time
	ExpectedHours float64
	WorkedHours   float64
	Status        Status
	InTime        *string
	OutTime       *string
	IsLeave       bool
}

// MonthReport pairs the gap-filled daily breakdown with its summary.
type MonthReport struct {
	Daily   []DailyEntry
	Summary MonthlySummary
}
