package config

import (
	"log/slog"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	chdir(t, t.TempDir())
	t.Setenv("DB_PASSWORD", "secret")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.App.Port)
	assert.Equal(t, "", cfg.App.FrontendURL)
	assert.Equal(t, DriverPostgres, cfg.Database.Driver)
	assert.Equal(t, "./uploads", cfg.Upload.Dir)
	assert.Equal(t, int64(10<<20), cfg.Upload.MaxSizeBytes())
	assert.Equal(t, time.Hour, cfg.Upload.StaleAfter)
	assert.Equal(t, 15*time.Minute, cfg.Upload.SweepInterval)
	assert.Equal(t, 2, cfg.Policy.MaxLeavesPerMonth)
	assert.Equal(t, 8.5, cfg.Policy.WeekdayHours)
	assert.Equal(t, 4.0, cfg.Policy.SaturdayHours)
	assert.Equal(t, slog.LevelInfo, cfg.SlogLevel())
}

func TestLoad_Overrides(t *testing.T) {
	chdir(t, t.TempDir())
	t.Setenv("DB_DRIVER", "SQLite")
	t.Setenv("SQLITE_PATH", "/tmp/attendance.db")
	t.Setenv("APP_PORT", "9090")
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("UPLOAD_MAX_SIZE_MB", "5")
	t.Setenv("UPLOAD_STALE_AFTER", "30m")
	t.Setenv("POLICY_MAX_LEAVES_PER_MONTH", "3")
	t.Setenv("POLICY_SATURDAY_HOURS", "0")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, DriverSQLite, cfg.Database.Driver)
	assert.Equal(t, "/tmp/attendance.db", cfg.Database.SQLitePath)
	assert.Equal(t, 9090, cfg.App.Port)
	assert.Equal(t, slog.LevelDebug, cfg.SlogLevel())
	assert.Equal(t, int64(5<<20), cfg.Upload.MaxSizeBytes())
	assert.Equal(t, 30*time.Minute, cfg.Upload.StaleAfter)
	assert.Equal(t, 3, cfg.Policy.MaxLeavesPerMonth)
	assert.Equal(t, 0.0, cfg.Policy.SaturdayHours)
}

func TestLoad_Invalid(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
	}{
		{"non-numeric port", map[string]string{"DB_PASSWORD": "x", "APP_PORT": "eighty"}},
		{"bad duration", map[string]string{"DB_PASSWORD": "x", "UPLOAD_STALE_AFTER": "soon"}},
		{"postgres without password", map[string]string{}},
		{"unknown driver", map[string]string{"DB_DRIVER": "oracle"}},
		{"zero upload size", map[string]string{"DB_PASSWORD": "x", "UPLOAD_MAX_SIZE_MB": "0"}},
		{"negative leaves", map[string]string{"DB_PASSWORD": "x", "POLICY_MAX_LEAVES_PER_MONTH": "-1"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			chdir(t, t.TempDir())
			t.Setenv("DB_PASSWORD", "")
			for k, v := range tt.env {
				t.Setenv(k, v)
			}

			_, err := Load()
			assert.Error(t, err)
		})
	}
}

func TestConfig_DatabaseURL(t *testing.T) {
	cfg := &Config{Database: DatabaseConfig{
		User:     "postgres",
		Password: "secret",
		Host:     "db",
		Port:     5433,
		Name:     "attendance",
		SSLMode:  "disable",
	}}

	assert.Equal(t, "postgres://postgres:secret@db:5433/attendance?sslmode=disable", cfg.DatabaseURL())
}

// chdir changes the working directory for the duration of the test,
// equivalent to testing.T.Chdir (Go 1.24+).
func chdir(t *testing.T, dir string) {
	t.Helper()
	old, err := os.Getwd()
	if err != nil {
		t.Fatal(err)
	}
	if err := os.Chdir(dir); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() {
		if err := os.Chdir(old); err != nil {
			t.Fatal(err)
		}
	})
}
