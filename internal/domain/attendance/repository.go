package attendance

import (
	"context"
	"time"
)

// AttendanceRepository defines data access methods for attendance records.
// Records are keyed by (employee name, date); writing the same key twice replaces the first.
type AttendanceRepository interface {
	// Upsert inserts or replaces the record for its (employee, date) key
	Upsert(ctx context.Context, record Record) (Record, error)

	// UpsertBatch upserts every record in one transaction; on error nothing is committed
	UpsertBatch(ctx context.Context, records []Record) ([]Record, error)

	// FindByEmployeeAndRange returns records with from <= date <= to, sorted by date ascending
	FindByEmployeeAndRange(ctx context.Context, employeeName string, from, to time.Time) ([]Record, error)

	// DistinctEmployeeNames lists every employee with at least one record
	DistinctEmployeeNames(ctx context.Context) ([]string, error)
}
