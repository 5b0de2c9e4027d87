package config

import (
	"strings"
	"testing"
	"time"
)

func TestParseDuration(t *testing.T) {
	tests := []struct {
		in   string
		want time.Duration
	}{
		{"1d", 24 * time.Hour},
		{"7d", 7 * 24 * time.Hour},
		{"0.5d", 12 * time.Hour},
		{"15m", 15 * time.Minute},
		{" 2h ", 2 * time.Hour},
	}
	for _, tt := range tests {
		got, err := ParseDuration(tt.in)
		if err != nil {
			t.Fatalf("ParseDuration(%q) error = %v", tt.in, err)
		}
		if got != tt.want {
			t.Errorf("ParseDuration(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}

	for _, bad := range []string{"", "d", "abc", "1x"} {
		if _, err := ParseDuration(bad); err == nil {
			t.Errorf("ParseDuration(%q) error = nil, want error", bad)
		}
	}
}

func TestLoadDefaults(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://localhost/content")
	t.Setenv("JWT_EXPIRES_IN", "")
	t.Setenv("APP_ENV", "")

	cfg := Load()
	if cfg.Auth.TokenTTL != 24*time.Hour {
		t.Errorf("TokenTTL = %v, want 24h", cfg.Auth.TokenTTL)
	}
	if cfg.Auth.CookieMaxAge != 15*time.Minute {
		t.Errorf("CookieMaxAge = %v, want 15m", cfg.Auth.CookieMaxAge)
	}
	if cfg.Auth.CookieName != "token" {
		t.Errorf("CookieName = %q, want token", cfg.Auth.CookieName)
	}
	if cfg.RateLimit.GuestLimit != 5 || cfg.RateLimit.UserLimit != 10 || cfg.RateLimit.AdminLimit != 20 {
		t.Errorf("rate budgets = %d/%d/%d, want 5/10/20",
			cfg.RateLimit.GuestLimit, cfg.RateLimit.UserLimit, cfg.RateLimit.AdminLimit)
	}
	if cfg.RateLimit.Window != 2*time.Minute {
		t.Errorf("Window = %v, want 2m", cfg.RateLimit.Window)
	}
	if cfg.IsProduction() {
		t.Error("IsProduction() = true for default env")
	}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("Validate() error = %v", err)
	}
}

func TestValidateRejectsDefaultSecretInProduction(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://localhost/content")
	t.Setenv("APP_ENV", "production")
	t.Setenv("JWT_SECRET", "")

	cfg := Load()
	if !cfg.IsProduction() {
		t.Fatal("IsProduction() = false, want true")
	}
	if err := cfg.Validate(); err == nil {
		t.Fatal("Validate() error = nil, want error for default secret")
	}

	cfg.Auth.JWTSecret = "a-real-secret"
	if err := cfg.Validate(); err != nil {
		t.Fatalf("Validate() error = %v", err)
	}
}

func TestValidateRequiresDatabaseURL(t *testing.T) {
	t.Setenv("DATABASE_URL", "")
	if err := Load().Validate(); err == nil {
		t.Fatal("Validate() error = nil, want error")
	}
}

func TestValidateReportsUnparseableDurations(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://localhost/content")
	t.Setenv("APP_ENV", "")

	for _, key := range []string{"JWT_EXPIRES_IN", "COOKIE_MAX_AGE"} {
		t.Run(key, func(t *testing.T) {
			t.Setenv(key, "fifteen minutes")
			err := Load().Validate()
			if err == nil || !strings.Contains(err.Error(), key) {
				t.Fatalf("Validate() error = %v, want one naming %s", err, key)
			}
		})
	}
}

func TestLoadTrustedProxies(t *testing.T) {
	t.Setenv("TRUSTED_PROXIES", "")
	if got := Load().Service.TrustedProxies; got != nil {
		t.Errorf("TrustedProxies = %v, want nil by default", got)
	}

	t.Setenv("TRUSTED_PROXIES", "10.0.0.0/8, 192.168.1.1")
	got := Load().Service.TrustedProxies
	if len(got) != 2 || got[0] != "10.0.0.0/8" || got[1] != "192.168.1.1" {
		t.Errorf("TrustedProxies = %v", got)
	}
}
