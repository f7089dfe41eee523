package api

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"tablehub/internal/middleware"
)

// RouterConfig holds the cross-cutting settings of the HTTP stack.
type RouterConfig struct {
	AllowedOrigins []string
	// RateLimiter is optional; nil disables rate limiting.
	RateLimiter *middleware.RateLimiter
	// Auth resolves the caller on /api/v1 routes.
	Auth   func(http.Handler) http.Handler
	Logger *slog.Logger
}

// NewRouter mounts the public and authenticated routes of h.
func NewRouter(cfg RouterConfig, h *Handler) http.Handler {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	r := chi.NewRouter()
	r.Use(chimw.RealIP)
	r.Use(middleware.RequestID)
	r.Use(middleware.RequestLogger(logger))
	r.Use(chimw.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Authorization", "Content-Type", middleware.RequestIDHeader},
		ExposedHeaders:   []string{middleware.RequestIDHeader},
		AllowCredentials: true,
		MaxAge:           300,
	}))
	if cfg.RateLimiter != nil {
		r.Use(cfg.RateLimiter.Middleware)
	}

	r.Get("/health", h.Health)
	r.Get("/openapi.json", h.OpenAPI)

	r.Route("/api/v1", func(r chi.Router) {
		if cfg.Auth != nil {
			r.Use(cfg.Auth)
		}
		r.Route("/databases", func(r chi.Router) {
			r.Get("/", h.ListDatabases)
			r.Post("/", h.CreateDatabase)
			r.Route("/{dbID}", func(r chi.Router) {
				r.Get("/", h.GetDatabase)
				r.Patch("/", h.RenameDatabase)
				r.Delete("/", h.DeleteDatabase)
				r.Route("/tables", func(r chi.Router) {
					r.Get("/", h.ListTables)
					r.Post("/", h.CreateTable)
					r.Route("/{table}", func(r chi.Router) {
						r.Patch("/", h.RenameTable)
						r.Delete("/", h.DeleteTable)
						r.Get("/schema", h.GetTableSchema)
						r.Post("/columns", h.AddColumn)
						r.Delete("/columns/{column}", h.DropColumn)
						r.Get("/rows", h.QueryRows)
						r.Post("/rows", h.InsertRow)
						r.Put("/rows/{pk}", h.UpdateRow)
						r.Delete("/rows/{pk}", h.DeleteRow)
						r.Post("/upload", h.UploadTable)
					})
				})
			})
		})
	})
	return r
}
