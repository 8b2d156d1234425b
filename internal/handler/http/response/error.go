package response

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"unicode"

	"github.com/cmlabs-hris/attendance-analyzer/internal/domain/attendance"
	"github.com/cmlabs-hris/attendance-analyzer/internal/pkg/validator"
)

// HandleError maps domain errors to HTTP responses
func HandleError(w http.ResponseWriter, err error) {
	var validationErrs validator.ValidationErrors
	if errors.As(err, &validationErrs) {
		ValidationError(w, validationErrs.ToMap())
		return
	}

	switch {
	// Upload intake
	case errors.Is(err, attendance.ErrFileRequired),
		errors.Is(err, attendance.ErrInvalidFileType),
		errors.Is(err, attendance.ErrFileTooLarge):
		BadRequest(w, sentence(err.Error()), nil)

	// Spreadsheet content
	case errors.Is(err, attendance.ErrMissingColumns):
		BadRequest(w, sentence(attendance.ErrMissingColumns.Error()), map[string]string{"cause": err.Error()})
	case errors.Is(err, attendance.ErrEmptySheet):
		BadRequest(w, sentence(attendance.ErrEmptySheet.Error()), nil)
	case errors.Is(err, attendance.ErrUnreadableSpreadsheet):
		BadRequest(w, sentence(err.Error()), nil)
	case errors.Is(err, attendance.ErrNoValidRecords):
		BadRequest(w, sentence(err.Error()), nil)

	default:
		slog.Error("Unhandled request error", "error", err)
		InternalServerError(w, "An unexpected error occurred")
	}
}

// sentence capitalizes the first letter of an error message for display.
func sentence(msg string) string {
	msg = strings.TrimSpace(msg)
	if msg == "" {
		return msg
	}
	r := []rune(msg)
	r[0] = unicode.ToUpper(r[0])
	return string(r)
}
