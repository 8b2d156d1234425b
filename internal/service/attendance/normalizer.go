package attendance

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/cmlabs-hris/attendance-analyzer/internal/domain/attendance"
	"github.com/cmlabs-hris/attendance-analyzer/internal/pkg/spreadsheet"
)

// Field is a logical column of an attendance sheet.
type Field string

const (
	FieldEmployee Field = "employee"
	FieldDate     Field = "date"
	FieldInTime   Field = "inTime"
	FieldOutTime  Field = "outTime"
)

// HeaderPredicate reports whether a lower-cased header can hold a field.
type HeaderPredicate func(header string) bool

// ContainsAll matches headers containing every token.
func ContainsAll(tokens ...string) HeaderPredicate {
	return func(header string) bool {
		for _, token := range tokens {
			if !strings.Contains(header, token) {
				return false
			}
		}
		return true
	}
}

// ColumnRule lists the acceptable headers for one field, strongest first.
type ColumnRule struct {
	Field      Field
	Label      string
	Predicates []HeaderPredicate
}

func DefaultColumnRules() []ColumnRule {
	return []ColumnRule{
		{
			Field: FieldEmployee,
			Label: "Employee Name/ID",
			Predicates: []HeaderPredicate{
				ContainsAll("employee"),
				ContainsAll("name"),
				ContainsAll("id"),
			},
		},
		{
			Field:      FieldDate,
			Label:      "Date",
			Predicates: []HeaderPredicate{ContainsAll("date")},
		},
		{
			Field:      FieldInTime,
			Label:      "In-Time",
			Predicates: []HeaderPredicate{ContainsAll("in", "time")},
		},
		{
			Field:      FieldOutTime,
			Label:      "Out-Time",
			Predicates: []HeaderPredicate{ContainsAll("out", "time")},
		},
	}
}

// ColumnResolver maps sheet headers to logical fields. Rules are evaluated in
// order, and a header taken by an earlier rule is not offered to later ones.
type ColumnResolver struct {
	rules []ColumnRule
}

func NewColumnResolver(rules []ColumnRule) *ColumnResolver {
	return &ColumnResolver{rules: rules}
}

// Resolve returns the header chosen for each field, or ErrMissingColumns
// naming every field no header could satisfy.
func (c *ColumnResolver) Resolve(headers []string) (map[Field]string, error) {
	resolved := make(map[Field]string, len(c.rules))
	claimed := make(map[string]bool, len(headers))
	var missing []string

	for _, rule := range c.rules {
		header, ok := c.match(rule, headers, claimed)
		if !ok {
			missing = append(missing, rule.Label)
			continue
		}
		claimed[header] = true
		resolved[rule.Field] = header
	}

	if len(missing) > 0 {
		return nil, fmt.Errorf("%w (missing: %s)", attendance.ErrMissingColumns, strings.Join(missing, ", "))
	}
	return resolved, nil
}

func (c *ColumnResolver) match(rule ColumnRule, headers []string, claimed map[string]bool) (string, bool) {
	for _, predicate := range rule.Predicates {
		for _, header := range headers {
			if claimed[header] {
				continue
			}
			if predicate(strings.ToLower(header)) {
				return header, true
			}
		}
	}
	return "", false
}

// RowIssue describes a sheet row that was skipped. Row is the 1-based
// spreadsheet row number, header included.
type RowIssue struct {
	Row    int
	Reason string
}

type NormalizeResult struct {
	Records []attendance.Record
	Skipped []RowIssue
}

// Normalizer turns decoded sheet rows into canonical attendance records.
type Normalizer struct {
	schedule attendance.Schedule
	resolver *ColumnResolver
}

func NewNormalizer(schedule attendance.Schedule, resolver *ColumnResolver) *Normalizer {
	if resolver == nil {
		resolver = NewColumnResolver(DefaultColumnRules())
	}
	return &Normalizer{schedule: schedule, resolver: resolver}
}

// Normalize fails only when the sheet is empty or its columns cannot be
// resolved. Rows with a blank employee or date, or an unparseable date, are
// skipped and reported in the result.
func (n *Normalizer) Normalize(sheet *spreadsheet.Sheet) (NormalizeResult, error) {
	if sheet == nil || len(sheet.Rows) == 0 {
		return NormalizeResult{}, attendance.ErrEmptySheet
	}

	columns, err := n.resolver.Resolve(sheet.Headers)
	if err != nil {
		return NormalizeResult{}, err
	}

	var result NormalizeResult
	for i, row := range sheet.Rows {
		rowNumber := i + 2

		employeeName := strings.TrimSpace(row[columns[FieldEmployee]])
		rawDate := strings.TrimSpace(row[columns[FieldDate]])
		if employeeName == "" || rawDate == "" {
			result.Skipped = append(result.Skipped, RowIssue{Row: rowNumber, Reason: "blank employee or date"})
			continue
		}

		date, err := parseDateValue(rawDate, sheet.Date1904)
		if err != nil {
			result.Skipped = append(result.Skipped, RowIssue{
				Row:    rowNumber,
				Reason: fmt.Sprintf("invalid date %q", rawDate),
			})
			continue
		}

		result.Records = append(result.Records, n.NormalizeRecord(
			employeeName,
			date,
			ParseTimeValue(row[columns[FieldInTime]]),
			ParseTimeValue(row[columns[FieldOutTime]]),
		))
	}

	return result, nil
}

// NormalizeRecord derives expected hours, worked hours and status for one
// employee day. Nothing derived is taken from the input.
func (n *Normalizer) NormalizeRecord(employeeName string, date time.Time, inTime, outTime *string) attendance.Record {
	day := attendance.CivilDate(date)
	expected := n.schedule.ExpectedHours(day)
	class := Classify(n.schedule, inTime, outTime, day)

	return attendance.Record{
		EmployeeName:  employeeName,
		Date:          day,
		InTime:        inTime,
		OutTime:       outTime,
		ExpectedHours: &expected,
		WorkedHours:   WorkedHours(inTime, outTime),
		Status:        class.Status,
		IsLeave:       class.IsLeave,
	}
}

var dateLayouts = []string{
	"2006-1-2",
	"2006/1/2",
	"1/2/2006",
	"1-2-2006",
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
	"2006-01-02T15:04:05",
	time.RFC3339Nano,
	"Jan 2, 2006",
	"January 2, 2006",
	"2 Jan 2006",
	"2 January 2006",
	"02-Jan-2006",
	"Mon Jan 2 2006",
	"Mon, 02 Jan 2006",
}

// maxDateSerial is 9999-12-31 in the 1900 date system.
const maxDateSerial = 2958465

// yearMonthText is how some readers render a date cell once the day is lost.
var yearMonthText = regexp.MustCompile(`^\d{4}\.\d{2}$`)

// parseDateValue accepts a spreadsheet date serial or a date string.
func parseDateValue(raw string, date1904 bool) (time.Time, error) {
	if yearMonthText.MatchString(raw) {
		return time.Time{}, fmt.Errorf("date %q has no day", raw)
	}

	if serial, err := strconv.ParseFloat(raw, 64); err == nil {
		if !(serial >= 1 && serial <= maxDateSerial) {
			return time.Time{}, fmt.Errorf("date serial %q out of range", raw)
		}
		return spreadsheet.SerialToDate(serial, date1904)
	}

	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, raw); err == nil {
			return attendance.CivilDate(t), nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized date %q", raw)
}
