package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

type Config struct {
	App      AppConfig
	Database DatabaseConfig
	Upload   UploadConfig
	Policy   PolicyConfig
}

// AppConfig holds application configuration
type AppConfig struct {
	Port        int
	Env         string
	LogLevel    string
	FrontendURL string
}

type DatabaseConfig struct {
	Driver     string
	Host       string
	Port       int
	User       string
	Password   string
	Name       string
	SSLMode    string
	SQLitePath string
	MaxConns   int32
	MinConns   int32
}

// UploadConfig controls where spreadsheets are staged and how long they may linger.
type UploadConfig struct {
	Dir           string
	MaxSizeMB     int
	StaleAfter    time.Duration
	SweepInterval time.Duration
}

// MaxSizeBytes returns the upload limit in bytes.
func (u UploadConfig) MaxSizeBytes() int64 {
	return int64(u.MaxSizeMB) << 20
}

// PolicyConfig holds the working-hour and leave policy.
type PolicyConfig struct {
	MaxLeavesPerMonth int
	WeekdayHours      float64
	SaturdayHours     float64
}

func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("error loading .env file: %w", err)
	} else if err != nil {
		slog.Debug("No .env file found, using process environment")
	}

	config := &Config{}

	appPort, err := getEnvInt("APP_PORT", 8080)
	if err != nil {
		return nil, err
	}
	config.App = AppConfig{
		Port:        appPort,
		Env:         getEnv("APP_ENV", "development"),
		LogLevel:    getEnv("LOG_LEVEL", "info"),
		FrontendURL: getEnv("FRONTEND_URL", ""),
	}

	dbPort, err := getEnvInt("DB_PORT", 5432)
	if err != nil {
		return nil, err
	}
	maxConns, err := getEnvInt("DB_MAX_CONNS", 10)
	if err != nil {
		return nil, err
	}
	minConns, err := getEnvInt("DB_MIN_CONNS", 2)
	if err != nil {
		return nil, err
	}
	config.Database = DatabaseConfig{
		Driver:     strings.ToLower(getEnv("DB_DRIVER", DriverPostgres)),
		Host:       getEnv("DB_HOST", "localhost"),
		Port:       dbPort,
		User:       getEnv("DB_USER", "postgres"),
		Password:   getEnv("DB_PASSWORD", ""),
		Name:       getEnv("DB_NAME", "attendance"),
		SSLMode:    getEnv("DB_SSL_MODE", "disable"),
		SQLitePath: getEnv("SQLITE_PATH", "./attendance.db"),
		MaxConns:   int32(maxConns),
		MinConns:   int32(minConns),
	}

	maxSize, err := getEnvInt("UPLOAD_MAX_SIZE_MB", 10)
	if err != nil {
		return nil, err
	}
	staleAfter, err := getEnvDuration("UPLOAD_STALE_AFTER", time.Hour)
	if err != nil {
		return nil, err
	}
	sweepInterval, err := getEnvDuration("UPLOAD_SWEEP_INTERVAL", 15*time.Minute)
	if err != nil {
		return nil, err
	}
	config.Upload = UploadConfig{
		Dir:           getEnv("UPLOAD_DIR", "./uploads"),
		MaxSizeMB:     maxSize,
		StaleAfter:    staleAfter,
		SweepInterval: sweepInterval,
	}

	maxLeaves, err := getEnvInt("POLICY_MAX_LEAVES_PER_MONTH", 2)
	if err != nil {
		return nil, err
	}
	weekdayHours, err := getEnvFloat("POLICY_WEEKDAY_HOURS", 8.5)
	if err != nil {
		return nil, err
	}
	saturdayHours, err := getEnvFloat("POLICY_SATURDAY_HOURS", 4)
	if err != nil {
		return nil, err
	}
	config.Policy = PolicyConfig{
		MaxLeavesPerMonth: maxLeaves,
		WeekdayHours:      weekdayHours,
		SaturdayHours:     saturdayHours,
	}

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return config, nil
}

// Validate validates the configuration
func (c *Config) Validate() error {
	switch c.Database.Driver {
	case DriverPostgres:
		if c.Database.Password == "" {
			return fmt.Errorf("DB_PASSWORD is required")
		}
	case DriverSQLite:
		if c.Database.SQLitePath == "" {
			return fmt.Errorf("SQLITE_PATH is required")
		}
	default:
		return fmt.Errorf("unsupported DB_DRIVER %q", c.Database.Driver)
	}
	if c.Upload.MaxSizeMB <= 0 {
		return fmt.Errorf("UPLOAD_MAX_SIZE_MB must be positive")
	}
	if c.Upload.StaleAfter <= 0 || c.Upload.SweepInterval <= 0 {
		return fmt.Errorf("UPLOAD_STALE_AFTER and UPLOAD_SWEEP_INTERVAL must be positive")
	}
	if c.Policy.MaxLeavesPerMonth < 0 {
		return fmt.Errorf("POLICY_MAX_LEAVES_PER_MONTH must not be negative")
	}
	if c.Policy.WeekdayHours < 0 || c.Policy.SaturdayHours < 0 {
		return fmt.Errorf("policy hours must not be negative")
	}
	return nil
}

// DatabaseURL returns the PostgreSQL connection string
func (c *Config) DatabaseURL() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=%s",
		c.Database.User,
		c.Database.Password,
		c.Database.Host,
		c.Database.Port,
		c.Database.Name,
		c.Database.SSLMode,
	)
}

// SlogLevel maps LOG_LEVEL onto a slog level, defaulting to info.
func (c *Config) SlogLevel() slog.Level {
	switch strings.ToLower(c.App.LogLevel) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func getEnvInt(key string, fallback int) (int, error) {
	value, err := strconv.Atoi(getEnv(key, strconv.Itoa(fallback)))
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return value, nil
}

func getEnvFloat(key string, fallback float64) (float64, error) {
	value, err := strconv.ParseFloat(getEnv(key, strconv.FormatFloat(fallback, 'f', -1, 64)), 64)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return value, nil
}

func getEnvDuration(key string, fallback time.Duration) (time.Duration, error) {
	value, err := time.ParseDuration(getEnv(key, fallback.String()))
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return value, nil
}
