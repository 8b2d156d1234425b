// Package sqlite stores attendance records in a single SQLite file. The schema
// is created on New; use ":memory:" for a throwaway database.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/cmlabs-hris/attendance-analyzer/internal/domain/attendance"
	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"
)

const timestampLayout = time.RFC3339Nano

// Store implements attendance.AttendanceRepository on SQLite.
type Store struct {
	db *sql.DB
}

var _ attendance.AttendanceRepository = (*Store)(nil)

// New opens the database at dbPath and migrates the schema.
func New(dbPath string) (*Store, error) {
	dsn := dbPath + "?_busy_timeout=5000"
	if dbPath != ":memory:" {
		dsn += "&_journal_mode=WAL"
	}

	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	// One connection keeps ":memory:" databases shared and serializes writers.
	db.SetMaxOpenConns(1)

	store := &Store{db: db}
	if err := store.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	return store, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS attendance_records (
		id TEXT PRIMARY KEY,
		employee_name TEXT NOT NULL CHECK (employee_name <> ''),
		date TEXT NOT NULL,
		in_time TEXT,
		out_time TEXT,
		expected_hours REAL,
		worked_hours REAL NOT NULL DEFAULT 0,
		status TEXT NOT NULL DEFAULT 'present' CHECK (status IN ('present', 'leave', 'holiday')),
		is_leave INTEGER NOT NULL DEFAULT 0,
		created_at TEXT NOT NULL,
		updated_at TEXT NOT NULL,
		UNIQUE (employee_name, date)
	);

	CREATE INDEX IF NOT EXISTS idx_attendance_records_date
		ON attendance_records(date);
	`
	_, err := s.db.Exec(schema)
	return err
}

// querier is satisfied by both *sql.DB and *sql.Tx.
type querier interface {
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
}

const selectColumns = `id, employee_name, date, in_time, out_time, expected_hours,
	worked_hours, status, is_leave, created_at, updated_at`

const upsertQuery = `
	INSERT INTO attendance_records (
		id, employee_name, date, in_time, out_time, expected_hours,
		worked_hours, status, is_leave, created_at, updated_at
	) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	ON CONFLICT (employee_name, date) DO UPDATE SET
		in_time = excluded.in_time,
		out_time = excluded.out_time,
		expected_hours = excluded.expected_hours,
		worked_hours = excluded.worked_hours,
		status = excluded.status,
		is_leave = excluded.is_leave,
		updated_at = excluded.updated_at
	RETURNING ` + selectColumns

// Upsert implements attendance.AttendanceRepository.
func (s *Store) Upsert(ctx context.Context, record attendance.Record) (attendance.Record, error) {
	saved, err := upsert(ctx, s.db, record)
	if err != nil {
		return attendance.Record{}, fmt.Errorf("failed to upsert attendance record: %w", err)
	}
	return saved, nil
}

// UpsertBatch implements attendance.AttendanceRepository. Either every record
// is written or none is.
func (s *Store) UpsertBatch(ctx context.Context, records []attendance.Record) ([]attendance.Record, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	saved := make([]attendance.Record, 0, len(records))
	for i, record := range records {
		rec, err := upsert(ctx, tx, record)
		if err != nil {
			return nil, fmt.Errorf("record %d (%s, %s): %w", i+1, record.EmployeeName, record.DateKey(), err)
		}
		saved = append(saved, rec)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit transaction: %w", err)
	}
	return saved, nil
}

func upsert(ctx context.Context, q querier, record attendance.Record) (attendance.Record, error) {
	if strings.TrimSpace(record.EmployeeName) == "" {
		return attendance.Record{}, errors.New("employee name is required")
	}

	now := time.Now().UTC().Format(timestampLayout)
	return scanRecord(q.QueryRowContext(ctx, upsertQuery,
		uuid.Must(uuid.NewV7()).String(),
		record.EmployeeName,
		record.DateKey(),
		nullString(record.InTime),
		nullString(record.OutTime),
		nullFloat(record.ExpectedHours),
		record.WorkedHours,
		string(record.Status),
		record.IsLeave,
		now,
		now,
	))
}

// FindByEmployeeAndRange implements attendance.AttendanceRepository.
func (s *Store) FindByEmployeeAndRange(ctx context.Context, employeeName string, from, to time.Time) ([]attendance.Record, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT `+selectColumns+`
		FROM attendance_records
		WHERE employee_name = ? AND date >= ? AND date <= ?
		ORDER BY date ASC`,
		employeeName,
		attendance.CivilDate(from).Format(attendance.DateLayout),
		attendance.CivilDate(to).Format(attendance.DateLayout),
	)
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
	return records, rows.Err()
}

// DistinctEmployeeNames implements attendance.AttendanceRepository.
func (s *Store) DistinctEmployeeNames(ctx context.Context) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT DISTINCT employee_name FROM attendance_records ORDER BY employee_name ASC`)
	if err != nil {
		return nil, fmt.Errorf("failed to query employee names: %w", err)
	}
	defer rows.Close()

	var names []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, err
		}
		names = append(names, name)
	}
	return names, rows.Err()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanRecord(row scanner) (attendance.Record, error) {
	var (
		rec                  attendance.Record
		date, status         string
		createdAt, updatedAt string
		inTime, outTime      sql.NullString
		expected             sql.NullFloat64
	)
	err := row.Scan(
		&rec.ID, &rec.EmployeeName, &date, &inTime, &outTime, &expected,
		&rec.WorkedHours, &status, &rec.IsLeave, &createdAt, &updatedAt,
	)
	if err != nil {
		return attendance.Record{}, err
	}

	if rec.Date, err = time.Parse(attendance.DateLayout, date); err != nil {
		return attendance.Record{}, fmt.Errorf("invalid stored date %q: %w", date, err)
	}
	rec.CreatedAt, _ = time.Parse(timestampLayout, createdAt)
	rec.UpdatedAt, _ = time.Parse(timestampLayout, updatedAt)
	rec.Status = attendance.Status(status)
	if inTime.Valid {
		rec.InTime = &inTime.String
	}
	if outTime.Valid {
		rec.OutTime = &outTime.String
	}
	if expected.Valid {
		rec.ExpectedHours = &expected.Float64
	}
	return rec, nil
}

func nullString(s *string) sql.NullString {
	if s == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: *s, Valid: true}
}

func nullFloat(f *float64) sql.NullFloat64 {
	if f == nil {
		return sql.NullFloat64{}
	}
	return sql.NullFloat64{Float64: *f, Valid: true}
}
