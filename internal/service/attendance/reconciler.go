package attendance

import (
	"time"

	"github.com/cmlabs-hris/attendance-analyzer/internal/domain/attendance"
	"github.com/shopspring/decimal"
)

const DefaultMaxLeavesPerMonth = 2

var hundred = decimal.NewFromInt(100)

// Reconciler merges sparse stored records with the calendar of a month.
type Reconciler struct {
	schedule         attendance.Schedule
	maxLeavesAllowed int
}

// NewReconciler creates a reconciler. maxLeavesAllowed is reported in the
// summary and never enforced.
func NewReconciler(schedule attendance.Schedule, maxLeavesAllowed int) *Reconciler {
	return &Reconciler{
		schedule:         schedule,
		maxLeavesAllowed: maxLeavesAllowed,
	}
}

// Reconcile produces one entry per calendar day of the month plus the monthly
// summary. Records outside the month are ignored.
//
// Days without a record are synthesized from the schedule: a working day
// becomes a leave. The summary counts leaves from stored records only, so
// synthesized leaves show in the breakdown but not in LeavesUsed.
func (r *Reconciler) Reconcile(employeeName string, year int, month time.Month, records []attendance.Record) attendance.MonthReport {
	first, last := MonthBounds(year, month)

	byDay := make(map[string]attendance.Record, len(records))
	inMonth := make([]attendance.Record, 0, len(records))
	for _, rec := range records {
		day := attendance.CivilDate(rec.Date)
		if day.Before(first) || day.After(last) {
			continue
		}
		byDay[day.Format(attendance.DateLayout)] = rec
		inMonth = append(inMonth, rec)
	}

	daily := make([]attendance.DailyEntry, 0, last.Day())
	for day := first; !day.After(last); day = day.AddDate(0, 0, 1) {
		if rec, ok := byDay[day.Format(attendance.DateLayout)]; ok {
			daily = append(daily, r.storedEntry(day, rec))
		} else {
			daily = append(daily, r.missingEntry(day))
		}
	}

	return attendance.MonthReport{
		Daily:   daily,
		Summary: r.summarize(employeeName, year, month, inMonth),
	}
}

func (r *Reconciler) storedEntry(day time.Time, rec attendance.Record) attendance.DailyEntry {
	expected := r.schedule.ExpectedHours(day)
	if rec.ExpectedHours != nil {
		expected = *rec.ExpectedHours
	}

	status := rec.Status
	if status == "" {
		status = attendance.StatusPresent
	}
	if !r.schedule.IsWorkingDay(day) {
		status = attendance.StatusHoliday
	} else if Classify(r.schedule, rec.InTime, rec.OutTime, day).IsLeave {
		status = attendance.StatusLeave
	}

	return attendance.DailyEntry{
		Date:          day,
		ExpectedHours: expected,
		WorkedHours:   round2(rec.WorkedHours),
		Status:        status,
		InTime:        rec.InTime,
		OutTime:       rec.OutTime,
		IsLeave:       status == attendance.StatusLeave,
	}
}

func (r *Reconciler) missingEntry(day time.Time) attendance.DailyEntry {
	expected := r.schedule.ExpectedHours(day)
	working := r.schedule.IsWorkingDay(day)
	leave := working && expected > 0

	status := attendance.StatusPresent
	switch {
	case !working:
		status = attendance.StatusHoliday
	case leave:
		status = attendance.StatusLeave
	}

	return attendance.DailyEntry{
		Date:          day,
		ExpectedHours: expected,
		Status:        status,
		IsLeave:       leave,
	}
}

func (r *Reconciler) summarize(employeeName string, year int, month time.Month, records []attendance.Record) attendance.MonthlySummary {
	totalExpected := TotalExpectedHoursForMonth(r.schedule, year, month)

	actual := decimal.Zero
	leavesUsed := 0
	for _, rec := range records {
		actual = actual.Add(decimal.NewFromFloat(rec.WorkedHours))
		if rec.IsLeave {
			leavesUsed++
		}
	}

	productivity := 0.0
	if totalExpected > 0 {
		productivity = actual.Mul(hundred).Div(decimal.NewFromFloat(totalExpected)).Round(2).InexactFloat64()
	}

	return attendance.MonthlySummary{
		EmployeeName:       employeeName,
		Year:               year,
		Month:              month,
		TotalExpectedHours: totalExpected,
		TotalActualHours:   actual.Round(2).InexactFloat64(),
		LeavesUsed:         leavesUsed,
		MaxLeavesAllowed:   r.maxLeavesAllowed,
		Productivity:       productivity,
		RecordCount:        len(records),
	}
}
