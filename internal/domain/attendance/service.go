package attendance

import (
	"context"
)

// AttendanceService defines business logic for attendance ingestion and reporting
type AttendanceService interface {
	// Import stages an uploaded spreadsheet, normalizes its rows and upserts them
	Import(ctx context.Context, req UploadRequest) (UploadResponse, error)

	// GetMonthlySummary computes totals and productivity for one employee month
	GetMonthlySummary(ctx context.Context, query MonthlyQuery) (MonthlySummaryResponse, error)

	// GetDailyBreakdown returns one entry per calendar day of the month
	GetDailyBreakdown(ctx context.Context, query MonthlyQuery) (DailyBreakdownResponse, error)

	// ListEmployees returns every employee name seen in stored records
	ListEmployees(ctx context.Context) (EmployeesResponse, error)
}
