// Package cli implements the tablehub admin command line.
package cli

import (
	"context"
	"database/sql"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"tablehub/internal/config"
	internaldb "tablehub/internal/db"
)

var (
	version = "dev"
	commit  = "none"
)

// env carries the process-level collaborators of the commands.
type env struct {
	stdout     io.Writer
	stderr     io.Writer
	isTerminal func() bool
	openDB     func(ctx context.Context, cfg *config.Config) (*sql.DB, error)
}

func defaultEnv() *env {
	return &env{
		stdout:     os.Stdout,
		stderr:     os.Stderr,
		isTerminal: func() bool { return term.IsTerminal(int(os.Stdout.Fd())) }, //nolint:gosec // fd fits in int
		openDB: func(ctx context.Context, cfg *config.Config) (*sql.DB, error) {
			if err := cfg.RequireDatabase(); err != nil {
				return nil, err
			}
			return internaldb.OpenPostgres(ctx, cfg.DatabaseURL, internaldb.PoolOptions{
				MaxOpenConns: cfg.DBMaxOpenConns,
				MaxIdleConns: cfg.DBMaxIdleConns,
			})
		},
	}
}

// Execute runs the CLI and returns the process exit code.
func Execute() int {
	e := defaultEnv()
	rootCmd := newRootCmd(e)
	if err := rootCmd.Execute(); err != nil {
		if resolveFormat(rootCmd, e) == formatJSON {
			_ = printJSON(e.stdout, map[string]any{"error": err.Error()})
		} else {
			fmt.Fprintf(e.stderr, "Error: %v\n", err)
		}
		return 1
	}
	return 0
}

func newRootCmd(e *env) *cobra.Command {
	var (
		configFile string
		envFile    string
		output     string
		verbose    bool
	)

	rootCmd := &cobra.Command{
		Use:           "tablehub",
		Short:         "tablehub admin CLI",
		Long:          "Administrative commands for a tablehub deployment: migrations, bulk imports, orphan cleanup and dev tokens.",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			if err := validateOutputFormat(output); err != nil {
				return err
			}
			if err := config.LoadDotEnv(envFile); err != nil {
				return err
			}
			if configFile != "" {
				return os.Setenv("CONFIG_FILE", configFile)
			}
			return nil
		},
	}
	rootCmd.SetOut(e.stdout)
	rootCmd.SetErr(e.stderr)

	rootCmd.PersistentFlags().StringVar(&configFile, "config", "", "YAML config file")
	rootCmd.PersistentFlags().StringVar(&envFile, "env-file", ".env", "dotenv file")
	rootCmd.PersistentFlags().StringVarP(&output, "output", "o", formatAuto, "Output format (auto, table, json)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Log debug output to stderr")

	rootCmd.AddCommand(
		newMigrateCmd(e),
		newImportCmd(e),
		newReapCmd(e),
		newTokenCmd(e),
		newVersionCmd(e),
	)
	return rootCmd
}

// loadConfig reads the configuration for a command.
func loadConfig() (*config.Config, error) {
	cfg, err := config.LoadFromEnv()
	if err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	return cfg, nil
}

func commandLogger(cmd *cobra.Command, e *env) *slog.Logger {
	level := slog.LevelWarn
	if v, _ := cmd.Root().PersistentFlags().GetBool("verbose"); v {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(e.stderr, &slog.HandlerOptions{Level: level}))
}

// withDB opens the database for the duration of fn.
func withDB(cmd *cobra.Command, e *env, fn func(cfg *config.Config, db *sql.DB) error) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	db, err := e.openDB(cmd.Context(), cfg)
	if err != nil {
		return err
	}
	defer db.Close() //nolint:errcheck
	return fn(cfg, db)
}
