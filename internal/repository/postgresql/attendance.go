package postgresql

import (
	"context"
	"fmt"
	"time"

	"github.com/cmlabs-hris/attendance-analyzer/internal/domain/attendance"
	"github.com/cmlabs-hris/attendance-analyzer/internal/pkg/database"
	"github.com/jackc/pgx/v5"
)

type attendanceRepository struct {
	db *database.DB
}

func NewAttendanceRepository(db *database.DB) attendance.AttendanceRepository {
	return &attendanceRepository{
		db: db,
	}
}

const recordColumns = `
	id::text, employee_name, date, in_time, out_time,
	expected_hours, worked_hours, status, is_leave,
	created_at, updated_at
`

// Upsert implements attendance.AttendanceRepository.
func (a *attendanceRepository) Upsert(ctx context.Context, record attendance.Record) (attendance.Record, error) {
	q := GetQuerier(ctx, a.db)

	query := `
		INSERT INTO attendance_records (
			employee_name, date, in_time, out_time,
			expected_hours, worked_hours, status, is_leave
		) VALUES (
			$1, $2, $3, $4, $5, $6, $7, $8
		)
		ON CONFLICT (employee_name, date) DO UPDATE SET
			in_time = EXCLUDED.in_time,
			out_time = EXCLUDED.out_time,
			expected_hours = EXCLUDED.expected_hours,
			worked_hours = EXCLUDED.worked_hours,
			status = EXCLUDED.status,
			is_leave = EXCLUDED.is_leave,
			updated_at = NOW()
		RETURNING ` + recordColumns

	saved, err := scanRecord(q.QueryRow(ctx, query,
		record.EmployeeName,
		attendance.CivilDate(record.Date),
		record.InTime,
		record.OutTime,
		record.ExpectedHours,
		record.WorkedHours,
		string(record.Status),
		record.IsLeave,
	))
	if err != nil {
		return attendance.Record{}, fmt.Errorf("failed to upsert attendance record: %w", err)
	}

	return saved, nil
}

// UpsertBatch implements attendance.AttendanceRepository.
func (a *attendanceRepository) UpsertBatch(ctx context.Context, records []attendance.Record) ([]attendance.Record, error) {
	saved := make([]attendance.Record, 0, len(records))

	err := WithTransaction(ctx, a.db, func(ctx context.Context) error {
		for i, record := range records {
			rec, err := a.Upsert(ctx, record)
			if err != nil {
				return fmt.Errorf("record %d (%s, %s): %w", i+1, record.EmployeeName, record.DateKey(), err)
			}
			saved = append(saved, rec)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return saved, nil
}

// FindByEmployeeAndRange implements attendance.AttendanceRepository.
func (a *attendanceRepository) FindByEmployeeAndRange(ctx context.Context, employeeName string, from, to time.Time) ([]attendance.Record, error) {
	q := GetQuerier(ctx, a.db)

	query := `
		SELECT ` + recordColumns + `
		FROM attendance_records
		WHERE employee_name = $1
		  AND date >= $2
		  AND date <= $3
		ORDER BY date ASC
	`

	rows, err := q.Query(ctx, query, employeeName, attendance.CivilDate(from), attendance.CivilDate(to))
	if err != nil {
		return nil, fmt.Errorf("failed to query attendance records: %w", err)
	}
	defer rows.Close()

	var records []attendance.Record
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan attendance record: %w", err)
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate attendance records: %w", err)
	}

	return records, nil
}

// DistinctEmployeeNames implements attendance.AttendanceRepository.
func (a *attendanceRepository) DistinctEmployeeNames(ctx context.Context) ([]string, error) {
	q := GetQuerier(ctx, a.db)

	rows, err := q.Query(ctx, `SELECT DISTINCT employee_name FROM attendance_records ORDER BY employee_name ASC`)
	if err != nil {
		return nil, fmt.Errorf("failed to query employee names: %w", err)
	}

	names, err := pgx.CollectRows(rows, pgx.RowTo[string])
	if err != nil {
		return nil, fmt.Errorf("failed to collect employee names: %w", err)
	}

	return names, nil
}

func scanRecord(row pgx.Row) (attendance.Record, error) {
	var (
		rec    attendance.Record
		status string
	)
	err := row.Scan(
		&rec.ID, &rec.EmployeeName, &rec.Date, &rec.InTime, &rec.OutTime,
		&rec.ExpectedHours, &rec.WorkedHours, &status, &rec.IsLeave,
		&rec.CreatedAt, &rec.UpdatedAt,
	)
	if err != nil {
		return attendance.Record{}, err
	}
	rec.Status = attendance.Status(status)
	rec.Date = attendance.CivilDate(rec.Date)
	return rec, nil
}
