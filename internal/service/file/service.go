package file

import (
	"context"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"time"

	"github.com/cmlabs-hris/attendance-analyzer/internal/domain/attendance"
	"github.com/cmlabs-hris/attendance-analyzer/internal/pkg/storage"
	"github.com/cmlabs-hris/attendance-analyzer/internal/pkg/validator"
	"github.com/google/uuid"
)

// StagingDir is where uploaded spreadsheets wait while they are processed.
const StagingDir = "staging"

var spreadsheetContentTypes = map[string]string{
	".xlsx": "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet",
	".xls":  "application/vnd.ms-excel",
}

type FileService interface {
	// StageSpreadsheet validates and stores an uploaded spreadsheet, returning its staged path
	StageSpreadsheet(ctx context.Context, file io.Reader, filename string) (string, error)

	// OpenStaged opens a staged spreadsheet for reading
	OpenStaged(ctx context.Context, path string) (io.ReadCloser, error)

	// DiscardStaged removes a staged spreadsheet
	DiscardStaged(ctx context.Context, path string) error

	// PurgeStaleUploads removes staged files older than maxAge
	PurgeStaleUploads(ctx context.Context, maxAge time.Duration) (int, error)
}

type fileServiceImpl struct {
	storage storage.FileStorage
	maxSize int64
}

func NewFileService(storage storage.FileStorage, maxSize int64) FileService {
	return &fileServiceImpl{
		storage: storage,
		maxSize: maxSize,
	}
}

// StageSpreadsheet implements FileService.
func (s *fileServiceImpl) StageSpreadsheet(ctx context.Context, file io.Reader, filename string) (string, error) {
	ext := strings.ToLower(filepath.Ext(filename))
	if !validator.IsInSlice(ext, attendance.AllowedUploadExtensions) {
		return "", attendance.ErrInvalidFileType
	}

	// Generate unique filename: staging/attendance-{uuid}.{ext}
	newFilename := fmt.Sprintf("attendance-%s%s", uuid.NewString(), ext)
	path := filepath.Join(StagingDir, newFilename)

	var src io.Reader = file
	if s.maxSize > 0 {
		src = &sizeLimitedReader{r: file, remaining: s.maxSize, limit: s.maxSize}
	}

	stagedPath, err := s.storage.Upload(ctx, src, path, spreadsheetContentTypes[ext])
	if err != nil {
		return "", fmt.Errorf("failed to stage spreadsheet: %w", err)
	}

	return stagedPath, nil
}

// OpenStaged implements FileService.
func (s *fileServiceImpl) OpenStaged(ctx context.Context, path string) (io.ReadCloser, error) {
	return s.storage.Download(ctx, path)
}

// DiscardStaged implements FileService.
func (s *fileServiceImpl) DiscardStaged(ctx context.Context, path string) error {
	return s.storage.Delete(ctx, path)
}

// PurgeStaleUploads implements FileService.
func (s *fileServiceImpl) PurgeStaleUploads(ctx context.Context, maxAge time.Duration) (int, error) {
	return s.storage.PurgeOlderThan(ctx, StagingDir, time.Now().Add(-maxAge))
}

// sizeLimitedReader fails with ErrFileTooLarge once more than remaining bytes are read.
type sizeLimitedReader struct {
	r         io.Reader
	remaining int64
	limit     int64
}

func (l *sizeLimitedReader) Read(p []byte) (int, error) {
	n, err := l.r.Read(p)
	l.remaining -= int64(n)
	if l.remaining < 0 {
		return n, fmt.Errorf("%w of %dMB", attendance.ErrFileTooLarge, l.limit>>20)
	}
	return n, err
}
