package config_test

import (
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/msomdec/storefront/internal/config"
)

const validSecret = "0123456789abcdef0123456789abcdef"

var allKeys = []string{
	"PORT", "DATABASE_PATH", "JWT_SECRET", "BCRYPT_COST", "TOKEN_TTL", "COOKIE_SECURE",
	"LOG_LEVEL", "AUTH_RATE_PER_SEC", "AUTH_RATE_BURST", "SESSION_SWEEP_SPEC", "SEED_CATALOG",
}

// clearEnv blanks every variable Load reads so the host environment cannot leak in.
func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range allKeys {
		t.Setenv(k, "")
	}
}

func TestLoad_Defaults(t *testing.T) {
	clearEnv(t)
	t.Setenv("JWT_SECRET", validSecret)

	cfg, err := config.Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if cfg.Port != "8080" || cfg.DatabasePath != "storefront.db" {
		t.Fatalf("unexpected port/path: %q %q", cfg.Port, cfg.DatabasePath)
	}
	if cfg.BcryptCost != 12 || cfg.TokenTTL != 24*time.Hour {
		t.Fatalf("unexpected cost/ttl: %d %s", cfg.BcryptCost, cfg.TokenTTL)
	}
	if !cfg.CookieSecure || !cfg.SeedCatalog {
		t.Fatal("expected secure cookies and catalog seeding by default")
	}
	if cfg.LogLevel != slog.LevelInfo {
		t.Fatalf("expected info level, got %s", cfg.LogLevel)
	}
	if cfg.AuthRatePerSec != 1 || cfg.AuthRateBurst != 5 {
		t.Fatalf("unexpected rate limit: %g/%d", cfg.AuthRatePerSec, cfg.AuthRateBurst)
	}
	if cfg.SessionSweepSpec != "@every 15m" {
		t.Fatalf("unexpected sweep spec %q", cfg.SessionSweepSpec)
	}
}

func TestLoad_Overrides(t *testing.T) {
	clearEnv(t)
	t.Setenv("JWT_SECRET", validSecret)
	t.Setenv("PORT", "9000")
	t.Setenv("BCRYPT_COST", "4")
	t.Setenv("TOKEN_TTL", "30m")
	t.Setenv("COOKIE_SECURE", "false")
	t.Setenv("LOG_LEVEL", "DEBUG")
	t.Setenv("AUTH_RATE_PER_SEC", "0.5")
	t.Setenv("SESSION_SWEEP_SPEC", "*/5 * * * *")
	t.Setenv("SEED_CATALOG", "false")

	cfg, err := config.Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Port != "9000" || cfg.BcryptCost != 4 || cfg.TokenTTL != 30*time.Minute {
		t.Fatalf("overrides not applied: %+v", cfg)
	}
	if cfg.CookieSecure || cfg.SeedCatalog {
		t.Fatal("expected COOKIE_SECURE and SEED_CATALOG to be disabled")
	}
	if cfg.LogLevel != slog.LevelDebug || cfg.AuthRatePerSec != 0.5 {
		t.Fatalf("unexpected level/rate: %s %g", cfg.LogLevel, cfg.AuthRatePerSec)
	}
}

func TestLoad_Invalid(t *testing.T) {
	tests := []struct {
		name    string
		key     string
		value   string
		wantMsg string
	}{
		{"missing secret", "JWT_SECRET", "", "JWT_SECRET is required"},
		{"short secret", "JWT_SECRET", "short", "at least 32"},
		{"cost too low", "BCRYPT_COST", "3", "BCRYPT_COST"},
		{"cost too high", "BCRYPT_COST", "15", "BCRYPT_COST"},
		{"cost not a number", "BCRYPT_COST", "twelve", "BCRYPT_COST"},
		{"bad ttl", "TOKEN_TTL", "forever", "TOKEN_TTL"},
		{"negative ttl", "TOKEN_TTL", "-1h", "TOKEN_TTL"},
		{"bad level", "LOG_LEVEL", "loud", "LOG_LEVEL"},
		{"zero rate", "AUTH_RATE_PER_SEC", "0", "AUTH_RATE_PER_SEC"},
		{"zero burst", "AUTH_RATE_BURST", "0", "AUTH_RATE_BURST"},
		{"bad cron", "SESSION_SWEEP_SPEC", "sometimes", "SESSION_SWEEP_SPEC"},
		{"bad bool", "SEED_CATALOG", "maybe", "SEED_CATALOG"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clearEnv(t)
			t.Setenv("JWT_SECRET", validSecret)
			t.Setenv(tt.key, tt.value)

			_, err := config.Load()
			if err == nil {
				t.Fatal("expected error")
			}
			if !strings.Contains(err.Error(), tt.wantMsg) {
				t.Fatalf("expected error mentioning %q, got %v", tt.wantMsg, err)
			}
		})
	}
}

func TestLoad_ReportsAllProblems(t *testing.T) {
	clearEnv(t)
	t.Setenv("BCRYPT_COST", "99")

	_, err := config.Load()
	if err == nil {
		t.Fatal("expected error")
	}
	for _, want := range []string{"JWT_SECRET", "BCRYPT_COST"} {
		if !strings.Contains(err.Error(), want) {
			t.Fatalf("expected %q in %v", want, err)
		}
	}
}

func TestParseLogLevel(t *testing.T) {
	tests := map[string]slog.Level{
		"debug":   slog.LevelDebug,
		"info":    slog.LevelInfo,
		"":        slog.LevelInfo,
		"Warn":    slog.LevelWarn,
		"warning": slog.LevelWarn,
		"ERROR":   slog.LevelError,
	}
	for in, want := range tests {
		got, err := config.ParseLogLevel(in)
		if err != nil {
			t.Fatalf("ParseLogLevel(%q): %v", in, err)
		}
		if got != want {
			t.Fatalf("ParseLogLevel(%q) = %s, want %s", in, got, want)
		}
	}
}
