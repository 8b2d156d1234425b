package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/cmlabs-hris/attendance-analyzer/internal/config"
	"github.com/cmlabs-hris/attendance-analyzer/internal/domain/attendance"
	appHTTP "github.com/cmlabs-hris/attendance-analyzer/internal/handler/http"
	"github.com/cmlabs-hris/attendance-analyzer/internal/pkg/cron"
	"github.com/cmlabs-hris/attendance-analyzer/internal/pkg/database"
	"github.com/cmlabs-hris/attendance-analyzer/internal/pkg/storage"
	"github.com/cmlabs-hris/attendance-analyzer/internal/repository/postgresql"
	"github.com/cmlabs-hris/attendance-analyzer/internal/repository/sqlite"
	attendanceService "github.com/cmlabs-hris/attendance-analyzer/internal/service/attendance"
	"github.com/cmlabs-hris/attendance-analyzer/internal/service/file"
	"github.com/go-chi/httplog/v3"
)

const (
	appName    = "attendance-analyzer"
	appVersion = "v1.0.0"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error loading config:", err)
		os.Exit(1)
	}

	logFormat := httplog.SchemaECS.Concise(cfg.App.Env != "production")
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level:       cfg.SlogLevel(),
		ReplaceAttr: logFormat.ReplaceAttr,
	})).With(
		slog.String("app", appName),
		slog.String("version", appVersion),
		slog.String("env", cfg.App.Env),
	)
	slog.SetDefault(logger)

	if err := run(cfg, logger); err != nil {
		slog.Error("Server exited with error", "error", err)
		os.Exit(1)
	}
}

func run(cfg *config.Config, logger *slog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	attendanceRepo, closeStore, err := openStore(ctx, cfg)
	if err != nil {
		return err
	}
	defer closeStore.Close()

	fileStorage, err := storage.NewLocalStorage(cfg.Upload.Dir)
	if err != nil {
		return fmt.Errorf("initialize upload storage: %w", err)
	}
	fileService := file.NewFileService(fileStorage, cfg.Upload.MaxSizeBytes())

	schedule := attendanceService.NewWeeklySchedule(cfg.Policy.WeekdayHours, cfg.Policy.SaturdayHours)
	attendanceSvc := attendanceService.NewAttendanceService(
		attendanceRepo,
		fileService,
		schedule,
		cfg.Policy.MaxLeavesPerMonth,
	)

	scheduler := cron.NewScheduler()
	cron.NewUploadJobs(fileService, cfg.Upload.StaleAfter, cfg.Upload.SweepInterval).RegisterJobs(scheduler)
	scheduler.Start(ctx)
	defer scheduler.Stop()

	attendanceHandler := appHTTP.NewAttendanceHandler(attendanceSvc, cfg.Upload.MaxSizeBytes())
	router := appHTTP.NewRouter(appHTTP.RouterOptions{
		FrontendURL: cfg.App.FrontendURL,
		Logger:      logger,
		LogLevel:    cfg.SlogLevel(),
	}, attendanceHandler)

	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.App.Port),
		Handler:      router,
		ReadTimeout:  60 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	serverErr := make(chan error, 1)
	go func() {
		slog.Info("Server running", "addr", server.Addr, "db_driver", cfg.Database.Driver)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
		close(serverErr)
	}()

	select {
	case err := <-serverErr:
		return err
	case <-ctx.Done():
	}

	slog.Info("Shutting down server...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server forced to shutdown: %w", err)
	}

	slog.Info("Server stopped")
	return nil
}

// openStore builds the repository selected by DB_DRIVER.
func openStore(ctx context.Context, cfg *config.Config) (attendance.AttendanceRepository, io.Closer, error) {
	switch cfg.Database.Driver {
	case config.DriverSQLite:
		store, err := sqlite.New(cfg.Database.SQLitePath)
		if err != nil {
			return nil, nil, fmt.Errorf("initialize sqlite store: %w", err)
		}
		return store, store, nil
	case config.DriverPostgres:
		db, err := database.NewPostgreSQLDB(ctx, cfg.DatabaseURL(), database.PoolOptions{
			MaxConns: cfg.Database.MaxConns,
			MinConns: cfg.Database.MinConns,
		})
		if err != nil {
			return nil, nil, fmt.Errorf("connect to database: %w", err)
		}
		return postgresql.NewAttendanceRepository(db), closerFunc(db.Close), nil
	default:
		return nil, nil, fmt.Errorf("unsupported database driver %q", cfg.Database.Driver)
	}
}

type closerFunc func()

func (f closerFunc) Close() error {
	f()
	return nil
}
