package http

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/cmlabs-hris/attendance-analyzer/internal/domain/attendance"
	"github.com/cmlabs-hris/attendance-analyzer/internal/handler/http/response"
	"github.com/cmlabs-hris/attendance-analyzer/internal/pkg/validator"
)

// multipartOverhead leaves room for boundaries and headers around the file part.
const multipartOverhead = 1 << 20

type AttendanceHandler interface {
	Upload(w http.ResponseWriter, r *http.Request)
	MonthlySummary(w http.ResponseWriter, r *http.Request)
	DailyBreakdown(w http.ResponseWriter, r *http.Request)
	Employees(w http.ResponseWriter, r *http.Request)
}

type attendanceHandlerImpl struct {
	attendanceService attendance.AttendanceService
	maxUploadBytes    int64
}

func NewAttendanceHandler(attendanceService attendance.AttendanceService, maxUploadBytes int64) AttendanceHandler {
	return &attendanceHandlerImpl{
		attendanceService: attendanceService,
		maxUploadBytes:    maxUploadBytes,
	}
}

// Upload implements AttendanceHandler.
func (h *attendanceHandlerImpl) Upload(w http.ResponseWriter, r *http.Request) {
	if h.maxUploadBytes > 0 {
		r.Body = http.MaxBytesReader(w, r.Body, h.maxUploadBytes+multipartOverhead)
	}

	if err := r.ParseMultipartForm(32 << 20); err != nil {
		var maxBytesErr *http.MaxBytesError
		if errors.As(err, &maxBytesErr) {
			response.HandleError(w, fmt.Errorf("%w of %dMB", attendance.ErrFileTooLarge, h.maxUploadBytes>>20))
			return
		}
		if errors.Is(err, http.ErrNotMultipart) || errors.Is(err, http.ErrMissingBoundary) {
			response.HandleError(w, attendance.ErrFileRequired)
			return
		}
		slog.Error("Failed to parse multipart form", "error", err)
		response.BadRequest(w, "Failed to parse form data", nil)
		return
	}
	defer r.MultipartForm.RemoveAll()

	file, fileHeader, err := r.FormFile("file")
	if err != nil {
		if errors.Is(err, http.ErrMissingFile) {
			response.HandleError(w, attendance.ErrFileRequired)
			return
		}
		slog.Error("Failed to get file from form", "error", err)
		response.BadRequest(w, "Invalid file upload", nil)
		return
	}
	defer file.Close()

	req := attendance.UploadRequest{
		File:         file,
		FileHeader:   fileHeader,
		MaxSizeBytes: h.maxUploadBytes,
	}

	result, err := h.attendanceService.Import(r.Context(), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, result.Message, result)
}

// MonthlySummary implements AttendanceHandler.
func (h *attendanceHandlerImpl) MonthlySummary(w http.ResponseWriter, r *http.Request) {
	query, ok := parseMonthlyQuery(w, r)
	if !ok {
		return
	}

	result, err := h.attendanceService.GetMonthlySummary(r.Context(), query)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, result)
}

// DailyBreakdown implements AttendanceHandler.
func (h *attendanceHandlerImpl) DailyBreakdown(w http.ResponseWriter, r *http.Request) {
	query, ok := parseMonthlyQuery(w, r)
	if !ok {
		return
	}

	result, err := h.attendanceService.GetDailyBreakdown(r.Context(), query)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, result)
}

// Employees implements AttendanceHandler.
func (h *attendanceHandlerImpl) Employees(w http.ResponseWriter, r *http.Request) {
	result, err := h.attendanceService.ListEmployees(r.Context())
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, result)
}

// parseMonthlyQuery reads employeeName, year and month (0-11) from the query
// string. It writes the error response itself and reports whether to continue.
func parseMonthlyQuery(w http.ResponseWriter, r *http.Request) (attendance.MonthlyQuery, bool) {
	q := r.URL.Query()
	employeeName := strings.TrimSpace(q.Get("employeeName"))
	yearStr := strings.TrimSpace(q.Get("year"))
	monthStr := strings.TrimSpace(q.Get("month"))

	if validator.IsEmpty(employeeName) || validator.IsEmpty(yearStr) || validator.IsEmpty(monthStr) {
		response.BadRequest(w, "Missing required parameters: employeeName, year, month", nil)
		return attendance.MonthlyQuery{}, false
	}

	details := make(map[string]string)
	year, err := strconv.Atoi(yearStr)
	if err != nil {
		details["year"] = "must be an integer"
	}
	month, err := strconv.Atoi(monthStr)
	if err != nil {
		details["month"] = "must be an integer"
	}
	if len(details) > 0 {
		response.BadRequest(w, "Invalid query parameters", details)
		return attendance.MonthlyQuery{}, false
	}

	return attendance.MonthlyQuery{
		EmployeeName: employeeName,
		Year:         year,
		Month:        month,
	}, true
}

// Health reports that the server is accepting requests.
func Health(w http.ResponseWriter, r *http.Request) {
	response.Success(w, map[string]string{
		"status":  "ok",
		"message": "Server is running",
	})
}
