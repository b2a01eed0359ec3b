// Package config loads server settings from the environment.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/robfig/cron/v3"
)

// Config holds every setting the server reads at startup.
type Config struct {
	Port         string
	DatabasePath string
	JWTSecret    string
	BcryptCost   int
	TokenTTL     time.Duration
	CookieSecure bool
	LogLevel     slog.Level

	AuthRatePerSec float64
	AuthRateBurst  int

	SessionSweepSpec string
	SeedCatalog      bool
}

// Load reads the configuration from environment variables, applying
// defaults for anything unset. All problems are reported together.
func Load() (Config, error) {
	var errs []error
	collect := func(err error) {
		if err != nil {
			errs = append(errs, err)
		}
	}

	cfg := Config{
		Port:             getEnv("PORT", "8080"),
		DatabasePath:     getEnv("DATABASE_PATH", "storefront.db"),
		JWTSecret:        os.Getenv("JWT_SECRET"),
		SessionSweepSpec: getEnv("SESSION_SWEEP_SPEC", "@every 15m"),
	}

	switch {
	case cfg.JWTSecret == "":
		collect(errors.New("JWT_SECRET is required"))
	case len(cfg.JWTSecret) < 32:
		collect(errors.New("JWT_SECRET must be at least 32 characters"))
	}

	var err error
	cfg.BcryptCost, err = getEnvInt("BCRYPT_COST", 12)
	collect(err)
	if err == nil && (cfg.BcryptCost < 4 || cfg.BcryptCost > 14) {
		collect(fmt.Errorf("BCRYPT_COST must be between 4 and 14, got %d", cfg.BcryptCost))
	}

	cfg.TokenTTL, err = getEnvDuration("TOKEN_TTL", 24*time.Hour)
	collect(err)
	if err == nil && cfg.TokenTTL <= 0 {
		collect(fmt.Errorf("TOKEN_TTL must be positive, got %s", cfg.TokenTTL))
	}

	// Secure cookies unless explicitly disabled for local development.
	cfg.CookieSecure = os.Getenv("COOKIE_SECURE") != "false"

	cfg.LogLevel, err = ParseLogLevel(getEnv("LOG_LEVEL", "info"))
	collect(err)

	cfg.AuthRatePerSec, err = getEnvFloat("AUTH_RATE_PER_SEC", 1)
	collect(err)
	if err == nil && cfg.AuthRatePerSec <= 0 {
		collect(fmt.Errorf("AUTH_RATE_PER_SEC must be positive, got %g", cfg.AuthRatePerSec))
	}

	cfg.AuthRateBurst, err = getEnvInt("AUTH_RATE_BURST", 5)
	collect(err)
	if err == nil && cfg.AuthRateBurst <= 0 {
		collect(fmt.Errorf("AUTH_RATE_BURST must be positive, got %d", cfg.AuthRateBurst))
	}

	if _, err := cron.ParseStandard(cfg.SessionSweepSpec); err != nil {
		collect(fmt.Errorf("SESSION_SWEEP_SPEC %q: %w", cfg.SessionSweepSpec, err))
	}

	cfg.SeedCatalog, err = getEnvBool("SEED_CATALOG", true)
	collect(err)

	if len(errs) > 0 {
		return Config{}, errors.Join(errs...)
	}
	return cfg, nil
}

// ParseLogLevel maps debug, info, warn and error (any case) to a slog level.
func ParseLogLevel(s string) (slog.Level, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return slog.LevelDebug, nil
	case "", "info":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	}
	return slog.LevelInfo, fmt.Errorf("LOG_LEVEL %q is not one of debug, info, warn, error", s)
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getEnvInt(key string, def int) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return def, fmt.Errorf("invalid %s: %w", key, err)
	}
	return n, nil
}

func getEnvFloat(key string, def float64) (float64, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return def, fmt.Errorf("invalid %s: %w", key, err)
	}
	return f, nil
}

func getEnvDuration(key string, def time.Duration) (time.Duration, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return def, fmt.Errorf("invalid %s: %w", key, err)
	}
	return d, nil
}

func getEnvBool(key string, def bool) (bool, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return def, fmt.Errorf("invalid %s: %w", key, err)
	}
	return b, nil
}
