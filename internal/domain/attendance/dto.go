package attendance

import (
	"fmt"
	"mime/multipart"
	"path/filepath"
	"strings"

	"github.com/cmlabs-hris/attendance-analyzer/internal/pkg/validator"
)

// AllowedUploadExtensions lists the spreadsheet formats accepted for import.
var AllowedUploadExtensions = []string{".xlsx", ".xls"}

// ========================================
// UPLOAD DTOs
// ========================================

type UploadRequest struct {
	File         multipart.File        `json:"-"`
	FileHeader   *multipart.FileHeader `json:"-"`
	MaxSizeBytes int64                 `json:"-"`
}

func (r *UploadRequest) Validate() error {
	if r.FileHeader == nil || r.File == nil {
		return ErrFileRequired
	}

	ext := strings.ToLower(filepath.Ext(r.FileHeader.Filename))
	if !validator.IsInSlice(ext, AllowedUploadExtensions) {
		return ErrInvalidFileType
	}

	if r.MaxSizeBytes > 0 && r.FileHeader.Size > r.MaxSizeBytes {
		return fmt.Errorf("%w of %dMB", ErrFileTooLarge, r.MaxSizeBytes>>20)
	}

	return nil
}

type RecordResponse struct {
	ID            string  `json:"id"`
	EmployeeName  string  `json:"employeeName"`
	Date          string  `json:"date"`
	InTime        *string `json:"inTime"`
	OutTime       *string `json:"outTime"`
	ExpectedHours float64 `json:"expectedHours"`
	WorkedHours   float64 `json:"workedHours"`
	Status        Status  `json:"status"`
	IsLeave       bool    `json:"isLeave"`
}

type UploadResponse struct {
	Message          string           `json:"message"`
	RecordsProcessed int              `json:"recordsProcessed"`
	RowsSkipped      int              `json:"rowsSkipped"`
	Records          []RecordResponse `json:"records"`
}

// ========================================
// REPORT DTOs
// ========================================

// MonthlyQuery selects one employee month. Month is zero-based (0 = January).
type MonthlyQuery struct {
	EmployeeName string `json:"employeeName" validate:"required"`
	Year         int    `json:"year" validate:"gte=1900,lte=9999"`
	Month        int    `json:"month" validate:"gte=0,lte=11"`
}

func (q *MonthlyQuery) Validate() error {
	q.EmployeeName = strings.TrimSpace(q.EmployeeName)
	return validator.Struct(q)
}

type MonthlySummaryResponse struct {
	EmployeeName       string  `json:"employeeName"`
	Year               int     `json:"year"`
	Month              int     `json:"month"`
	TotalExpectedHours float64 `json:"totalExpectedHours"`
	TotalActualHours   float64 `json:"totalActualHours"`
	LeavesUsed         int     `json:"leavesUsed"`
	MaxLeavesAllowed   int     `json:"maxLeavesAllowed"`
	Productivity       float64 `json:"productivity"`
	RecordCount        int     `json:"recordCount"`
}

type DailyBreakdownEntryResponse struct {
	Date          string  `json:"date"`
	ExpectedHours float64 `json:"expectedHours"`
	WorkedHours   float64 `json:"workedHours"`
	Status        Status  `json:"status"`
	InTime        *string `json:"inTime"`
	OutTime       *string `json:"outTime"`
	IsLeave       bool    `json:"isLeave"`
}

type DailyBreakdownResponse struct {
	EmployeeName   string                        `json:"employeeName"`
	Year           int                           `json:"year"`
	Month          int                           `json:"month"`
	DailyBreakdown []DailyBreakdownEntryResponse `json:"dailyBreakdown"`
}

type EmployeesResponse struct {
	Employees []string `json:"employees"`
}
