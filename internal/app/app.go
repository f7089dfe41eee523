// Package app wires the tablehub repositories, services and HTTP stack.
package app

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"net/http"

	"tablehub/internal/api"
	"tablehub/internal/config"
	"tablehub/internal/db/repository"
	"tablehub/internal/middleware"
	"tablehub/internal/service/catalog"
	"tablehub/internal/service/data"
	"tablehub/internal/service/ingestion"
)

// Deps holds the external dependencies that main() must provide.
type Deps struct {
	Cfg    *config.Config
	DB     *sql.DB
	Logger *slog.Logger
	// Validator overrides the token validator chosen from Cfg.Auth.
	Validator middleware.TokenValidator
}

// Services groups the domain services.
type Services struct {
	Databases *catalog.DatabaseService
	Tables    *catalog.TableService
	Reaper    *catalog.Reaper
	Rows      *data.Service
	Ingestion *ingestion.Service
}

// App is the fully wired application.
type App struct {
	Services    Services
	Store       *repository.Store
	RateLimiter *middleware.RateLimiter
	Router      http.Handler
}

// New wires every component from deps. It does not touch the database.
func New(ctx context.Context, deps Deps) (*App, error) {
	cfg := deps.Cfg
	logger := deps.Logger
	if logger == nil {
		logger = slog.Default()
	}

	store := repository.NewStore(deps.DB, cfg.PhysicalSchema, logger.With("component", "store"))

	svcs := Services{
		Databases: catalog.NewDatabaseService(store, cfg.PhysicalSchema, logger.With("component", "databases")),
		Tables:    catalog.NewTableService(store, cfg.PhysicalSchema, logger.With("component", "tables")),
		Reaper:    catalog.NewReaper(store, cfg.PhysicalSchema, logger.With("component", "reaper")),
		Rows:      data.NewService(store, cfg.PhysicalSchema, logger.With("component", "rows")),
		Ingestion: ingestion.NewService(store, cfg.PhysicalSchema, logger.With("component", "ingestion")),
	}

	validator := deps.Validator
	if validator == nil {
		v, err := NewValidator(ctx, cfg.Auth)
		if err != nil {
			return nil, err
		}
		validator = v
	}

	limiter := middleware.NewRateLimiter(middleware.RateLimitConfig{
		RequestsPerSecond: cfg.RateLimitRPS,
		Burst:             cfg.RateLimitBurst,
	})

	handler := api.NewHandler(svcs.Databases, svcs.Tables, svcs.Rows, svcs.Ingestion, cfg.MaxUploadBytes, logger)
	router := api.NewRouter(api.RouterConfig{
		AllowedOrigins: cfg.CORSAllowedOrigins,
		RateLimiter:    limiter,
		Auth:           middleware.Auth(validator, cfg.Auth.UserClaim, logger.With("component", "auth")),
		Logger:         logger,
	}, handler)

	return &App{
		Services:    svcs,
		Store:       store,
		RateLimiter: limiter,
		Router:      router,
	}, nil
}

// NewValidator verifies tokens against the OIDC issuer when one is
// configured and with the HS256 shared secret otherwise.
func NewValidator(ctx context.Context, auth config.AuthConfig) (middleware.TokenValidator, error) {
	if auth.OIDCEnabled() {
		v, err := middleware.NewOIDCValidator(ctx, auth.OIDCIssuerURL, auth.OIDCAudience)
		if err != nil {
			return nil, fmt.Errorf("oidc validator: %w", err)
		}
		return v, nil
	}
	if auth.JWTSecret == "" {
		return nil, fmt.Errorf("no token validator configured: set JWT_SECRET or OIDC_ISSUER_URL")
	}
	return middleware.NewHS256Validator(auth.JWTSecret), nil
}
