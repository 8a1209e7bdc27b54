// Package config handles application configuration and environment loading.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"
)

// DevJWTSecret is the signing secret used when JWT_SECRET is unset outside production.
const DevJWTSecret = "dev-secret-change-in-production"

// Config holds the configuration for the HTTP API.
type Config struct {
	ListenAddr string // HTTP listen address (default ":8080")
	LogLevel   string // log level: debug, info, warn, error (default "info")
	Env        string // environment: "development" (default) or "production"

	// Tokens
	JWTSecret   string        // HS256 shared secret
	TokenTTL    time.Duration // lifetime of issued tokens (default 24h)
	TokenIssuer string        // iss claim (default "bank-demo")

	// Demo principal and account seeded at startup.
	DemoIdentity string
	DemoSecret   string
	DemoBalance  decimal.Decimal

	// CORS
	CORSAllowedOrigins []string // allowed origins for CORS (default: ["*"])

	// HTTP server timeouts
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	ShutdownTimeout time.Duration

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

// LoadFromEnv loads configuration from environment variables.
func LoadFromEnv() (*Config, error) {
	cfg := &Config{
		ListenAddr:   envDefault("LISTEN_ADDR", ":8080"),
		LogLevel:     envDefault("LOG_LEVEL", "info"),
		Env:          envDefault("ENV", "development"),
		JWTSecret:    os.Getenv("JWT_SECRET"),
		TokenIssuer:  envDefault("TOKEN_ISSUER", "bank-demo"),
		DemoIdentity: envDefault("DEMO_IDENTITY", "john_doe"),
		DemoSecret:   envDefault("DEMO_SECRET", "password123"),
	}

	var err error
	if cfg.TokenTTL, err = parseDurationEnv("TOKEN_TTL", 24*time.Hour); err != nil {
		return nil, err
	}
	if cfg.ReadTimeout, err = parseDurationEnv("READ_TIMEOUT", 10*time.Second); err != nil {
		return nil, err
	}
	if cfg.WriteTimeout, err = parseDurationEnv("WRITE_TIMEOUT", 10*time.Second); err != nil {
		return nil, err
	}
	if cfg.ShutdownTimeout, err = parseDurationEnv("SHUTDOWN_TIMEOUT", 15*time.Second); err != nil {
		return nil, err
	}

	balance := envDefault("DEMO_BALANCE", "5000")
	cfg.DemoBalance, err = decimal.NewFromString(balance)
	if err != nil {
		return nil, fmt.Errorf("invalid DEMO_BALANCE %q: %w", balance, err)
	}
	if cfg.DemoBalance.IsNegative() {
		return nil, fmt.Errorf("DEMO_BALANCE must not be negative, got %s", balance)
	}

	// CORS
	if v := os.Getenv("CORS_ALLOWED_ORIGINS"); v != "" {
		origins := strings.Split(v, ",")
		for i := range origins {
			origins[i] = strings.TrimSpace(origins[i])
		}
		cfg.CORSAllowedOrigins = compactNonEmpty(origins)
	}
	if len(cfg.CORSAllowedOrigins) == 0 {
		cfg.CORSAllowedOrigins = []string{"*"}
	}

	if cfg.JWTSecret == "" {
		cfg.JWTSecret = DevJWTSecret
		cfg.Warnings = append(cfg.Warnings, "JWT_SECRET not set, using insecure default. Set JWT_SECRET in production!")
	}
	if cfg.DemoIdentity == "john_doe" && cfg.DemoSecret == "password123" {
		cfg.Warnings = append(cfg.Warnings, "demo principal uses the well-known default secret")
	}

	// Production mode: insecure defaults are fatal errors.
	if cfg.IsProduction() {
		if cfg.JWTSecret == DevJWTSecret {
			return nil, fmt.Errorf("JWT_SECRET must be set in production (ENV=production)")
		}
		for _, origin := range cfg.CORSAllowedOrigins {
			if origin == "*" {
				return nil, fmt.Errorf("CORS wildcard (*) is not allowed in production (ENV=production)")
			}
		}
	}

	return cfg, nil
}

func envDefault(key, defaultVal string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return defaultVal
}

func parseDurationEnv(key string, defaultVal time.Duration) (time.Duration, error) {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return defaultVal, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q: %w", key, v, err)
	}
	if d <= 0 {
		return 0, fmt.Errorf("%s must be positive, got %s", key, v)
	}
	return d, nil
}

func compactNonEmpty(values []string) []string {
	out := make([]string, 0, len(values))
	for _, v := range values {
		if v != "" {
			out = append(out, v)
		}
	}
	return out
}

// LoadDotEnv reads a .env file and sets any variables not already in the
// environment. A missing file is not an error.
func LoadDotEnv(path string) error {
	if err := godotenv.Load(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("load %s: %w", path, err)
	}
	return nil
}
