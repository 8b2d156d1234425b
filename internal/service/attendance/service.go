package attendance

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/cmlabs-hris/attendance-analyzer/internal/domain/attendance"
	"github.com/cmlabs-hris/attendance-analyzer/internal/pkg/spreadsheet"
	"github.com/cmlabs-hris/attendance-analyzer/internal/service/file"
)

type AttendanceServiceImpl struct {
	attendance.AttendanceRepository
	fileService file.FileService
	schedule    attendance.Schedule
	normalizer  *Normalizer
	reconciler  *Reconciler
}

func NewAttendanceService(
	attendanceRepository attendance.AttendanceRepository,
	fileService file.FileService,
	schedule attendance.Schedule,
	maxLeavesPerMonth int,
) attendance.AttendanceService {
	return &AttendanceServiceImpl{
		AttendanceRepository: attendanceRepository,
		fileService:          fileService,
		schedule:             schedule,
		normalizer:           NewNormalizer(schedule, nil),
		reconciler:           NewReconciler(schedule, maxLeavesPerMonth),
	}
}

// Import implements attendance.AttendanceService.
func (s *AttendanceServiceImpl) Import(ctx context.Context, req attendance.UploadRequest) (attendance.UploadResponse, error) {
	if err := req.Validate(); err != nil {
		return attendance.UploadResponse{}, err
	}

	stagedPath, err := s.fileService.StageSpreadsheet(ctx, req.File, req.FileHeader.Filename)
	if err != nil {
		return attendance.UploadResponse{}, err
	}
	defer func() {
		// Cleanup must run even when the request context is already cancelled.
		if err := s.fileService.DiscardStaged(context.WithoutCancel(ctx), stagedPath); err != nil {
			slog.Error("Failed to delete staged upload", "path", stagedPath, "error", err)
		}
	}()

	sheet, err := s.decodeStaged(ctx, stagedPath)
	if err != nil {
		return attendance.UploadResponse{}, fmt.Errorf("%w: %w", attendance.ErrUnreadableSpreadsheet, err)
	}

	result, err := s.normalizer.Normalize(sheet)
	if err != nil {
		return attendance.UploadResponse{}, fmt.Errorf("%w: %w", attendance.ErrUnreadableSpreadsheet, err)
	}

	for _, issue := range result.Skipped {
		slog.Warn("Skipping attendance row", "file", req.FileHeader.Filename, "row", issue.Row, "reason", issue.Reason)
	}

	if len(result.Records) == 0 {
		return attendance.UploadResponse{}, attendance.ErrNoValidRecords
	}

	saved, err := s.AttendanceRepository.UpsertBatch(ctx, result.Records)
	if err != nil {
		slog.Error("Failed to save attendance records", "file", req.FileHeader.Filename, "records", len(result.Records), "error", err)
		return attendance.UploadResponse{}, fmt.Errorf("failed to save attendance records: %w", err)
	}

	slog.Info("Attendance sheet imported",
		"file", req.FileHeader.Filename,
		"records", len(saved),
		"skipped", len(result.Skipped),
	)

	records := make([]attendance.RecordResponse, 0, len(saved))
	for _, rec := range saved {
		records = append(records, s.toRecordResponse(rec))
	}

	return attendance.UploadResponse{
		Message:          "File uploaded and processed successfully",
		RecordsProcessed: len(saved),
		RowsSkipped:      len(result.Skipped),
		Records:          records,
	}, nil
}

func (s *AttendanceServiceImpl) decodeStaged(ctx context.Context, stagedPath string) (*spreadsheet.Sheet, error) {
	rc, err := s.fileService.OpenStaged(ctx, stagedPath)
	if err != nil {
		return nil, err
	}
	defer rc.Close()

	return spreadsheet.Decode(rc, stagedPath)
}

// GetMonthlySummary implements attendance.AttendanceService.
func (s *AttendanceServiceImpl) GetMonthlySummary(ctx context.Context, query attendance.MonthlyQuery) (attendance.MonthlySummaryResponse, error) {
	report, err := s.reconcileMonth(ctx, query)
	if err != nil {
		return attendance.MonthlySummaryResponse{}, err
	}

	summary := report.Summary
	return attendance.MonthlySummaryResponse{
		EmployeeName:       summary.EmployeeName,
		Year:               summary.Year,
		Month:              query.Month,
		TotalExpectedHours: summary.TotalExpectedHours,
		TotalActualHours:   summary.TotalActualHours,
		LeavesUsed:         summary.LeavesUsed,
		MaxLeavesAllowed:   summary.MaxLeavesAllowed,
		Productivity:       summary.Productivity,
		RecordCount:        summary.RecordCount,
	}, nil
}

// GetDailyBreakdown implements attendance.AttendanceService.
func (s *AttendanceServiceImpl) GetDailyBreakdown(ctx context.Context, query attendance.MonthlyQuery) (attendance.DailyBreakdownResponse, error) {
	report, err := s.reconcileMonth(ctx, query)
	if err != nil {
		return attendance.DailyBreakdownResponse{}, err
	}

	entries := make([]attendance.DailyBreakdownEntryResponse, 0, len(report.Daily))
	for _, day := range report.Daily {
		entries = append(entries, attendance.DailyBreakdownEntryResponse{
			Date:          day.Date.Format(attendance.DateLayout),
			ExpectedHours: day.ExpectedHours,
			WorkedHours:   day.WorkedHours,
			Status:        day.Status,
			InTime:        day.InTime,
			OutTime:       day.OutTime,
			IsLeave:       day.IsLeave,
		})
	}

	return attendance.DailyBreakdownResponse{
		EmployeeName:   query.EmployeeName,
		Year:           query.Year,
		Month:          query.Month,
		DailyBreakdown: entries,
	}, nil
}

func (s *AttendanceServiceImpl) reconcileMonth(ctx context.Context, query attendance.MonthlyQuery) (attendance.MonthReport, error) {
	if err := query.Validate(); err != nil {
		return attendance.MonthReport{}, err
	}

	month := time.Month(query.Month + 1)
	from, to := MonthBounds(query.Year, month)

	records, err := s.AttendanceRepository.FindByEmployeeAndRange(ctx, query.EmployeeName, from, to)
	if err != nil {
		return attendance.MonthReport{}, fmt.Errorf("failed to fetch attendance records: %w", err)
	}

	return s.reconciler.Reconcile(query.EmployeeName, query.Year, month, records), nil
}

// ListEmployees implements attendance.AttendanceService.
func (s *AttendanceServiceImpl) ListEmployees(ctx context.Context) (attendance.EmployeesResponse, error) {
	names, err := s.AttendanceRepository.DistinctEmployeeNames(ctx)
	if err != nil {
		return attendance.EmployeesResponse{}, fmt.Errorf("failed to list employees: %w", err)
	}
	if names == nil {
		names = []string{}
	}
	return attendance.EmployeesResponse{Employees: names}, nil
}

func (s *AttendanceServiceImpl) toRecordResponse(rec attendance.Record) attendance.RecordResponse {
	expected := s.schedule.ExpectedHours(rec.Date)
	if rec.ExpectedHours != nil {
		expected = *rec.ExpectedHours
	}
	return attendance.RecordResponse{
		ID:            rec.ID,
		EmployeeName:  rec.EmployeeName,
		Date:          rec.DateKey(),
		InTime:        rec.InTime,
		OutTime:       rec.OutTime,
		ExpectedHours: expected,
		WorkedHours:   rec.WorkedHours,
		Status:        rec.Status,
		IsLeave:       rec.IsLeave,
	}
}
