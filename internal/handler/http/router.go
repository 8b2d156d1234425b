package http

import (
	"log/slog"
	"net/http"

	"github.com/cmlabs-hris/attendance-analyzer/internal/handler/http/response"
	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httplog/v3"
)

type RouterOptions struct {
	// FrontendURL restricts CORS to a single origin; empty allows any origin.
	FrontendURL string
	Logger      *slog.Logger
	LogLevel    slog.Level
}

func NewRouter(opts RouterOptions, attendanceHandler AttendanceHandler) *chi.Mux {
	r := chi.NewRouter()

	r.Use(cors.Handler(corsOptions(opts.FrontendURL)))

	if opts.Logger != nil {
		r.Use(httplog.RequestLogger(opts.Logger, &httplog.Options{
			Level:  opts.LogLevel,
			Schema: httplog.SchemaECS,
		}))
	}

	r.Use(chiMiddleware.CleanPath)
	r.Use(chiMiddleware.Recoverer)
	r.Use(chiMiddleware.Heartbeat("/ping"))

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		response.NotFound(w, "Route not found", map[string]string{
			"path":   r.URL.Path,
			"method": r.Method,
		})
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		response.MethodNotAllowed(w, map[string]string{
			"path":   r.URL.Path,
			"method": r.Method,
		})
	})

	r.Post("/upload", attendanceHandler.Upload)

	r.Route("/api", func(r chi.Router) {
		r.Get("/health", Health)
		r.Post("/upload", attendanceHandler.Upload)

		r.Route("/attendance", func(r chi.Router) {
			r.Get("/monthly-summary", attendanceHandler.MonthlySummary)
			r.Get("/daily-breakdown", attendanceHandler.DailyBreakdown)
			r.Get("/employees", attendanceHandler.Employees)
		})
	})

	return r
}

func corsOptions(frontendURL string) cors.Options {
	opts := cors.Options{
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type", "X-Requested-With"},
		ExposedHeaders: []string{"Link"},
		MaxAge:         300,
	}
	if frontendURL == "" {
		opts.AllowedOrigins = []string{"*"}
		return opts
	}
	opts.AllowedOrigins = []string{frontendURL}
	opts.AllowCredentials = true
	return opts
}
