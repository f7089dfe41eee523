// Package config handles application configuration and environment loading.
package config

import (
	"bufio"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// devJWTSecret is used outside production when neither JWT_SECRET nor an
// OIDC issuer is configured.
const devJWTSecret = "dev-secret-change-in-production"

// AuthConfig holds bearer-token settings.
type AuthConfig struct {
	JWTSecret     string // HS256 shared secret
	UserClaim     string // claim holding the numeric user id (default "sub")
	OIDCIssuerURL string // when set, tokens are verified against this issuer instead
	OIDCAudience  string // expected audience for OIDC tokens
}

// OIDCEnabled reports whether tokens are verified against an OIDC issuer.
func (a *AuthConfig) OIDCEnabled() bool {
	return a.OIDCIssuerURL != ""
}

// Config holds the configuration of the server and the admin CLI.
type Config struct {
	ListenAddr      string
	DatabaseURL     string // PostgreSQL DSN
	PhysicalSchema  string // schema holding the physical tables (default "public")
	DBMaxOpenConns  int
	DBMaxIdleConns  int
	MaxUploadBytes  int64
	ShutdownTimeout time.Duration
	LogLevel        string // debug, info, warn, error (default "info")
	Env             string // "development" (default) or "production"

	// Rate limiting
	RateLimitRPS   float64
	RateLimitBurst int

	CORSAllowedOrigins []string

	Auth AuthConfig

	// Warnings collects non-fatal warnings generated during config loading.
	// These are logged by the caller after the logger is initialised.
	Warnings []string
}

// SlogLevel maps the LogLevel string to an slog.Level.
func (c *Config) SlogLevel() slog.Level {
	switch strings.ToLower(c.LogLevel) {
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

// IsProduction returns true when the server is running in production mode.
func (c *Config) IsProduction() bool {
	return strings.EqualFold(c.Env, "production")
}

// RequireDatabase fails when no DATABASE_URL is configured.
func (c *Config) RequireDatabase() error {
	if c.DatabaseURL == "" {
		return fmt.Errorf("DATABASE_URL must be set")
	}
	return nil
}

// LoadFromEnv loads configuration from environment variables. When
// CONFIG_FILE names a YAML file, its keys fill in variables the
// environment leaves unset.
func LoadFromEnv() (*Config, error) {
	if path := os.Getenv("CONFIG_FILE"); path != "" {
		if err := LoadYAML(path); err != nil {
			return nil, err
		}
	}

	cfg := &Config{
		ListenAddr:     envDefault("LISTEN_ADDR", ":8080"),
		DatabaseURL:    os.Getenv("DATABASE_URL"),
		PhysicalSchema: envDefault("PHYSICAL_SCHEMA", "public"),
		LogLevel:       envDefault("LOG_LEVEL", "info"),
		Env:            envDefault("ENV", "development"),
		Auth: AuthConfig{
			JWTSecret:     os.Getenv("JWT_SECRET"),
			UserClaim:     envDefault("JWT_USER_CLAIM", "sub"),
			OIDCIssuerURL: os.Getenv("OIDC_ISSUER_URL"),
			OIDCAudience:  os.Getenv("OIDC_AUDIENCE"),
		},
	}

	var err error
	if cfg.DBMaxOpenConns, err = envInt("DB_MAX_OPEN_CONNS", 10); err != nil {
		return nil, err
	}
	if cfg.DBMaxIdleConns, err = envInt("DB_MAX_IDLE_CONNS", 5); err != nil {
		return nil, err
	}
	if cfg.RateLimitBurst, err = envInt("RATE_LIMIT_BURST", 40); err != nil {
		return nil, err
	}
	maxUpload, err := envInt("MAX_UPLOAD_BYTES", 50<<20)
	if err != nil {
		return nil, err
	}
	cfg.MaxUploadBytes = int64(maxUpload)

	cfg.RateLimitRPS = 20
	if v := os.Getenv("RATE_LIMIT_RPS"); v != "" {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return nil, fmt.Errorf("RATE_LIMIT_RPS: %w", err)
		}
		cfg.RateLimitRPS = f
	}

	cfg.ShutdownTimeout = 10 * time.Second
	if v := os.Getenv("SHUTDOWN_TIMEOUT"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return nil, fmt.Errorf("SHUTDOWN_TIMEOUT: %w", err)
		}
		cfg.ShutdownTimeout = d
	}

	cfg.CORSAllowedOrigins = []string{"http://localhost:5173"}
	if v := os.Getenv("CORS_ALLOWED_ORIGINS"); v != "" {
		cfg.CORSAllowedOrigins = splitList(v)
	}

	if cfg.PhysicalSchema != strings.TrimSpace(cfg.PhysicalSchema) || strings.ContainsAny(cfg.PhysicalSchema, `"; `) {
		return nil, fmt.Errorf("PHYSICAL_SCHEMA %q is not a valid schema name", cfg.PhysicalSchema)
	}

	if cfg.Auth.JWTSecret == "" && !cfg.Auth.OIDCEnabled() {
		if cfg.IsProduction() {
			return nil, fmt.Errorf("JWT_SECRET or OIDC_ISSUER_URL must be set in production (ENV=production)")
		}
		cfg.Auth.JWTSecret = devJWTSecret
		cfg.Warnings = append(cfg.Warnings, "JWT_SECRET not set, using insecure development secret")
	}
	if cfg.IsProduction() {
		for _, o := range cfg.CORSAllowedOrigins {
			if o == "*" {
				return nil, fmt.Errorf("CORS wildcard (*) is not allowed in production (ENV=production)")
			}
		}
	}
	if cfg.DatabaseURL == "" {
		cfg.Warnings = append(cfg.Warnings, "DATABASE_URL not set")
	}

	return cfg, nil
}

func envDefault(key, def string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return def
}

func envInt(key string, def int) (int, error) {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", key, err)
	}
	if n < 0 {
		return 0, fmt.Errorf("%s must not be negative", key)
	}
	return n, nil
}

func splitList(v string) []string {
	parts := strings.Split(v, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// LoadYAML reads a flat YAML mapping of configuration keys, e.g.
// "database_url: postgres://...", and sets every key not already in the
// environment. Keys are matched case-insensitively against the variable
// names; lists are joined with commas.
func LoadYAML(path string) error {
	data, err := os.ReadFile(path) //nolint:gosec // path is caller-controlled
	if err != nil {
		return fmt.Errorf("read config file %s: %w", path, err)
	}
	var values map[string]any
	if err := yaml.Unmarshal(data, &values); err != nil {
		return fmt.Errorf("parse config file %s: %w", path, err)
	}
	for k, v := range values {
		key := strings.ToUpper(strings.TrimSpace(k))
		if key == "" || os.Getenv(key) != "" || v == nil {
			continue
		}
		if err := os.Setenv(key, yamlScalar(v)); err != nil {
			return fmt.Errorf("setenv %s: %w", key, err)
		}
	}
	return nil
}

func yamlScalar(v any) string {
	switch t := v.(type) {
	case []any:
		parts := make([]string, len(t))
		for i, e := range t {
			parts[i] = fmt.Sprint(e)
		}
		return strings.Join(parts, ",")
	default:
		return fmt.Sprint(t)
	}
}

// LoadDotEnv reads a .env file and sets any variables not already in the environment.
// Lines must be in KEY=VALUE format. Comments (#) and blank lines are skipped.
func LoadDotEnv(path string) error {
	f, err := os.Open(path) //nolint:gosec // path is caller-controlled
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close() //nolint:errcheck

	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		key, value, ok := strings.Cut(strings.TrimPrefix(line, "export "), "=")
		if !ok {
			continue
		}
		key = strings.TrimSpace(key)
		value = stripQuotes(strings.TrimSpace(value))
		if os.Getenv(key) == "" {
			if err := os.Setenv(key, value); err != nil {
				return fmt.Errorf("setenv %s: %w", key, err)
			}
		}
	}
	return scanner.Err()
}

// stripQuotes removes matching surrounding double or single quotes.
func stripQuotes(s string) string {
	if len(s) >= 2 {
		if (s[0] == '"' && s[len(s)-1] == '"') || (s[0] == '\'' && s[len(s)-1] == '\'') {
			return s[1 : len(s)-1]
		}
	}
	return s
}
