package attendance

import "errors"

// Attendance domain errors
var (
	// Upload errors
	ErrFileRequired    = errors.New("no file uploaded. Please ensure the field name is \"file\"")
	ErrInvalidFileType = errors.New("only Excel files (.xlsx, .xls) are allowed")
	ErrFileTooLarge    = errors.New("file size exceeds the limit")

	// Spreadsheet shape errors
	ErrUnreadableSpreadsheet = errors.New("error parsing Excel file")
	ErrEmptySheet            = errors.New("excel file is empty")
	ErrMissingColumns        = errors.New("required columns not found. Expected: Employee Name/ID, Date, In-Time, Out-Time")
	ErrNoValidRecords        = errors.New("no valid attendance records found in the file")
)
