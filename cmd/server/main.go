// Package main is the entry point for the tablehub HTTP server.
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/pflag"
	"golang.org/x/sync/errgroup"

	"tablehub/internal/app"
	"tablehub/internal/config"
	internaldb "tablehub/internal/db"
)

func main() {
	if err := run(os.Args[1:]); err != nil {
		fmt.Fprintf(os.Stderr, "fatal: %v\n", err)
		os.Exit(1)
	}
}

func run(args []string) error {
	fs := pflag.NewFlagSet("tablehub-server", pflag.ContinueOnError)
	configFile := fs.String("config", "", "YAML config file (overrides CONFIG_FILE)")
	envFile := fs.String("env-file", ".env", "dotenv file loaded before the environment is read")
	migrate := fs.Bool("migrate", true, "apply pending metadata migrations on startup")
	if err := fs.Parse(args); err != nil {
		return err
	}

	if err := config.LoadDotEnv(*envFile); err != nil {
		return fmt.Errorf("load env file: %w", err)
	}
	if *configFile != "" {
		if err := os.Setenv("CONFIG_FILE", *configFile); err != nil {
			return err
		}
	}
	cfg, err := config.LoadFromEnv()
	if err != nil {
		return fmt.Errorf("config: %w", err)
	}
	if err := cfg.RequireDatabase(); err != nil {
		return fmt.Errorf("config: %w", err)
	}

	logger := newLogger(cfg)
	slog.SetDefault(logger)
	for _, w := range cfg.Warnings {
		logger.Warn("config warning", "warning", w)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGINT)
	defer cancel()

	db, err := internaldb.OpenPostgres(ctx, cfg.DatabaseURL, internaldb.PoolOptions{
		MaxOpenConns: cfg.DBMaxOpenConns,
		MaxIdleConns: cfg.DBMaxIdleConns,
	})
	if err != nil {
		return err
	}
	defer db.Close() //nolint:errcheck

	if *migrate {
		if err := internaldb.RunMigrations(db); err != nil {
			return fmt.Errorf("migrate: %w", err)
		}
		if v, err := internaldb.MigrationVersion(db); err == nil {
			logger.Info("metadata schema ready", "version", v)
		}
	}

	a, err := app.New(ctx, app.Deps{Cfg: cfg, DB: db, Logger: logger})
	if err != nil {
		return err
	}
	a.ReportOrphans(ctx, logger)

	srv := &http.Server{
		Addr:              cfg.ListenAddr,
		Handler:           a.Router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info("HTTP API listening", "addr", cfg.ListenAddr,
			"try", fmt.Sprintf("curl http://%s/health", curlHostForListenAddr(cfg.ListenAddr)))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		a.RateLimiter.Run(gctx)
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		logger.Info("shutting down", "timeout", cfg.ShutdownTimeout)
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})
	return g.Wait()
}

func newLogger(cfg *config.Config) *slog.Logger {
	opts := &slog.HandlerOptions{Level: cfg.SlogLevel()}
	if cfg.IsProduction() {
		return slog.New(slog.NewJSONHandler(os.Stderr, opts))
	}
	return slog.New(slog.NewTextHandler(os.Stderr, opts))
}

// curlHostForListenAddr turns a listen address into a host:port usable from
// the local machine.
func curlHostForListenAddr(listenAddr string) string {
	addr := strings.TrimSpace(listenAddr)
	if addr == "" {
		return "localhost:8080"
	}
	host, port, err := net.SplitHostPort(addr)
	if err != nil {
		return addr
	}
	switch host {
	case "", "0.0.0.0", "::":
		host = "localhost"
	}
	return net.JoinHostPort(host, port)
}
