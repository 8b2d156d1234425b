package attendance

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/cmlabs-hris/attendance-analyzer/internal/domain/attendance"
	"github.com/cmlabs-hris/attendance-analyzer/internal/pkg/spreadsheet"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestColumnResolver_Resolve(t *testing.T) {
	resolver := NewColumnResolver(DefaultColumnRules())

	tests := []struct {
		name    string
		headers []string
		want    map[Field]string
	}{
		{
			name:    "canonical headers",
			headers: []string{"Employee Name", "Date", "In-Time", "Out-Time"},
			want: map[Field]string{
				FieldEmployee: "Employee Name",
				FieldDate:     "Date",
				FieldInTime:   "In-Time",
				FieldOutTime:  "Out-Time",
			},
		},
		{
			name:    "case and spacing",
			headers: []string{"DATE", "OUT TIME", "IN TIME", "employee id"},
			want: map[Field]string{
				FieldEmployee: "employee id",
				FieldDate:     "DATE",
				FieldInTime:   "IN TIME",
				FieldOutTime:  "OUT TIME",
			},
		},
		{
			name:    "employee preferred over name",
			headers: []string{"Name", "Employee", "Date", "Time In", "Time Out"},
			want: map[Field]string{
				FieldEmployee: "Employee",
				FieldDate:     "Date",
				FieldInTime:   "Time In",
				FieldOutTime:  "Time Out",
			},
		},
		{
			name:    "id fallback",
			headers: []string{"Staff ID", "Work Date", "Check In Time", "Check Out Time"},
			want: map[Field]string{
				FieldEmployee: "Staff ID",
				FieldDate:     "Work Date",
				FieldInTime:   "Check In Time",
				FieldOutTime:  "Check Out Time",
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := resolver.Resolve(tt.headers)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestColumnResolver_ClaimedHeaderNotReused(t *testing.T) {
	// "Date Time In" matches both the date and in-time rules; date claims it first.
	resolver := NewColumnResolver(DefaultColumnRules())

	_, err := resolver.Resolve([]string{"Name", "Date Time In", "Out Time"})
	require.Error(t, err)
	assert.ErrorIs(t, err, attendance.ErrMissingColumns)
	assert.Contains(t, err.Error(), "missing: In-Time")
	assert.NotContains(t, err.Error(), "missing: Date")
}

func TestColumnResolver_ReportsEveryMissingField(t *testing.T) {
	resolver := NewColumnResolver(DefaultColumnRules())

	_, err := resolver.Resolve([]string{"Employee", "Remarks"})
	require.ErrorIs(t, err, attendance.ErrMissingColumns)
	assert.Contains(t, err.Error(), "missing: Date, In-Time, Out-Time")
}

func TestNormalizer_Normalize(t *testing.T) {
	normalizer := NewNormalizer(DefaultWeeklySchedule(), nil)

	sheet := &spreadsheet.Sheet{
		Headers: []string{"Employee Name", "Date", "In Time", "Out Time"},
		Rows: []spreadsheet.Row{
			{"Employee Name": " John Doe ", "Date": "2024-01-02", "In Time": "10:00", "Out Time": "18:30"},
			{"Employee Name": "John Doe", "Date": "45297", "In Time": "0.4166666667", "Out Time": ""},
			{"Employee Name": "", "Date": "2024-01-04", "In Time": "10:00", "Out Time": "18:30"},
			{"Employee Name": "John Doe", "Date": "", "In Time": "10:00", "Out Time": "18:30"},
			{"Employee Name": "John Doe", "Date": "next tuesday", "In Time": "10:00", "Out Time": "18:30"},
			{"Employee Name": "John Doe", "Date": "1/7/2024", "In Time": "10:00", "Out Time": "14:00"},
		},
	}

	result, err := normalizer.Normalize(sheet)
	require.NoError(t, err)
	require.Len(t, result.Records, 3)

	present := result.Records[0]
	assert.Equal(t, "John Doe", present.EmployeeName)
	assert.Equal(t, date(2024, time.January, 2), present.Date)
	assert.Equal(t, "10:00", *present.InTime)
	assert.Equal(t, "18:30", *present.OutTime)
	assert.Equal(t, 8.5, present.WorkedHours)
	assert.Equal(t, 8.5, *present.ExpectedHours)
	assert.Equal(t, attendance.StatusPresent, present.Status)
	assert.False(t, present.IsLeave)

	// Serial 45297 is Saturday 2024-01-06.
	leave := result.Records[1]
	assert.Equal(t, date(2024, time.January, 6), leave.Date)
	assert.Equal(t, "10:00", *leave.InTime)
	assert.Nil(t, leave.OutTime)
	assert.Equal(t, 0.0, leave.WorkedHours)
	assert.Equal(t, 4.0, *leave.ExpectedHours)
	assert.Equal(t, attendance.StatusLeave, leave.Status)
	assert.True(t, leave.IsLeave)

	holiday := result.Records[2]
	assert.Equal(t, date(2024, time.January, 7), holiday.Date)
	assert.Equal(t, 4.0, holiday.WorkedHours)
	assert.Equal(t, 0.0, *holiday.ExpectedHours)
	assert.Equal(t, attendance.StatusHoliday, holiday.Status)
	assert.False(t, holiday.IsLeave)

	require.Len(t, result.Skipped, 3)
	assert.Equal(t, RowIssue{Row: 4, Reason: "blank employee or date"}, result.Skipped[0])
	assert.Equal(t, RowIssue{Row: 5, Reason: "blank employee or date"}, result.Skipped[1])
	assert.Equal(t, 6, result.Skipped[2].Row)
	assert.Contains(t, result.Skipped[2].Reason, "next tuesday")
}

func TestNormalizer_NormalizeErrors(t *testing.T) {
	normalizer := NewNormalizer(DefaultWeeklySchedule(), nil)

	t.Run("nil sheet", func(t *testing.T) {
		_, err := normalizer.Normalize(nil)
		assert.ErrorIs(t, err, attendance.ErrEmptySheet)
	})

	t.Run("headers only", func(t *testing.T) {
		_, err := normalizer.Normalize(&spreadsheet.Sheet{Headers: []string{"Employee", "Date", "In Time", "Out Time"}})
		assert.ErrorIs(t, err, attendance.ErrEmptySheet)
	})

	t.Run("missing columns", func(t *testing.T) {
		_, err := normalizer.Normalize(&spreadsheet.Sheet{
			Headers: []string{"Employee", "Date"},
			Rows:    []spreadsheet.Row{{"Employee": "John Doe", "Date": "2024-01-02"}},
		})
		assert.ErrorIs(t, err, attendance.ErrMissingColumns)
	})
}

func TestNormalizer_NormalizeRecordIgnoresInputStatus(t *testing.T) {
	normalizer := NewNormalizer(DefaultWeeklySchedule(), nil)

	// Wednesday with only an out time is a leave whatever hours it implies.
	rec := normalizer.NormalizeRecord("Jane Roe", time.Date(2024, time.January, 3, 17, 45, 0, 0, time.Local), nil, ptr("18:30"))
	assert.Equal(t, date(2024, time.January, 3), rec.Date)
	assert.Equal(t, attendance.StatusLeave, rec.Status)
	assert.True(t, rec.IsLeave)
	assert.Equal(t, 0.0, rec.WorkedHours)
}

func TestParseDateValue(t *testing.T) {
	tests := []struct {
		raw  string
		want time.Time
	}{
		{"2024-01-15", date(2024, time.January, 15)},
		{"2024/1/5", date(2024, time.January, 5)},
		{"1/15/2024", date(2024, time.January, 15)},
		{"2024-01-15 08:00:00", date(2024, time.January, 15)},
		{"2024-01-15T08:00:00Z", date(2024, time.January, 15)},
		{"Jan 15, 2024", date(2024, time.January, 15)},
		{"15 January 2024", date(2024, time.January, 15)},
		{"45306", date(2024, time.January, 15)},
	}

	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			got, err := parseDateValue(tt.raw, false)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}

	for _, raw := range []string{"someday", "2024.01", "20240105", "0", "-3", "NaN"} {
		t.Run("rejects "+raw, func(t *testing.T) {
			_, err := parseDateValue(raw, false)
			assert.Error(t, err)
		})
	}
}

func TestNormalizer_SkipsDatesWithoutADay(t *testing.T) {
	normalizer := NewNormalizer(DefaultWeeklySchedule(), nil)

	result, err := normalizer.Normalize(&spreadsheet.Sheet{
		Headers: []string{"Employee", "Date", "In Time", "Out Time"},
		Rows: []spreadsheet.Row{
			{"Employee": "John Doe", "Date": "2024.01", "In Time": "08:00", "Out Time": "16:30"},
			{"Employee": "John Doe", "Date": "20240105", "In Time": "08:00", "Out Time": "16:30"},
			{"Employee": "John Doe", "Date": "45296", "In Time": "08:00", "Out Time": "16:30"},
		},
	})
	require.NoError(t, err)

	require.Len(t, result.Records, 1)
	assert.Equal(t, date(2024, time.January, 5), result.Records[0].Date)

	require.Len(t, result.Skipped, 2)
	assert.Equal(t, 2, result.Skipped[0].Row)
	assert.Contains(t, result.Skipped[0].Reason, "2024.01")
	assert.Equal(t, 3, result.Skipped[1].Row)
	assert.Contains(t, result.Skipped[1].Reason, "20240105")
}

func TestNormalizer_NormalizeLegacyWorkbook(t *testing.T) {
	sheet, err := spreadsheet.DecodeFile(filepath.Join("..", "..", "pkg", "spreadsheet", "testdata", "timesheet.xls"))
	require.NoError(t, err)

	result, err := NewNormalizer(DefaultWeeklySchedule(), nil).Normalize(sheet)
	require.NoError(t, err)
	assert.Empty(t, result.Skipped)
	require.Len(t, result.Records, 4)

	tests := []struct {
		employee string
		date     time.Time
		inTime   string
		outTime  string
		worked   float64
		status   attendance.Status
	}{
		{"John Doe", date(2024, time.January, 5), "08:15", "16:30", 8.25, attendance.StatusPresent},
		{"John Doe", date(2024, time.January, 6), "09:00", "13:30", 4.5, attendance.StatusPresent},
		{"Jane Roe", date(2024, time.January, 8), "08:15", "17:00", 8.75, attendance.StatusPresent},
	}
	for i, tt := range tests {
		rec := result.Records[i]
		assert.Equal(t, tt.employee, rec.EmployeeName)
		assert.Equal(t, tt.date, rec.Date)
		require.NotNil(t, rec.InTime)
		require.NotNil(t, rec.OutTime)
		assert.Equal(t, tt.inTime, *rec.InTime)
		assert.Equal(t, tt.outTime, *rec.OutTime)
		assert.Equal(t, tt.worked, rec.WorkedHours)
		assert.Equal(t, tt.status, rec.Status)
	}

	leave := result.Records[3]
	assert.Equal(t, date(2024, time.January, 9), leave.Date)
	assert.Nil(t, leave.InTime)
	assert.Nil(t, leave.OutTime)
	assert.Equal(t, attendance.StatusLeave, leave.Status)
	assert.True(t, leave.IsLeave)
}
