package cron

import (
	"context"
	"log/slog"
	"time"

	"github.com/cmlabs-hris/attendance-analyzer/internal/service/file"
)

// UploadJobs removes staged spreadsheets left behind by interrupted imports.
type UploadJobs struct {
	fileService file.FileService
	staleAfter  time.Duration
	interval    time.Duration
}

func NewUploadJobs(fileService file.FileService, staleAfter, interval time.Duration) *UploadJobs {
	return &UploadJobs{
		fileService: fileService,
		staleAfter:  staleAfter,
		interval:    interval,
	}
}

func (j *UploadJobs) RegisterJobs(scheduler *Scheduler) {
	scheduler.AddJob("purge_stale_uploads", j.interval, j.PurgeStaleUploads)
}

func (j *UploadJobs) PurgeStaleUploads(ctx context.Context) error {
	removed, err := j.fileService.PurgeStaleUploads(ctx, j.staleAfter)
	if err != nil {
		return err
	}
	if removed > 0 {
		slog.Info("Cron: purged stale uploads", "removed", removed, "older_than", j.staleAfter)
	}
	return nil
}
