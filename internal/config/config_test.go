package config

import (
	"testing"
	"time"
)

func TestLoad_RequiresJWTSecret(t *testing.T) {
	t.Setenv("JWT_SECRET", "")
	if _, err := Load(); err == nil {
		t.Fatalf("expected an error without JWT_SECRET")
	}
}

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("JWT_SECRET", "test-secret")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}

	if cfg.Port != "8080" {
		t.Errorf("Port default: got %q", cfg.Port)
	}
	if cfg.APIBasePath != "/api" {
		t.Errorf("APIBasePath default: got %q", cfg.APIBasePath)
	}
	if cfg.DBPath != "intensify.db" {
		t.Errorf("DBPath default: got %q", cfg.DBPath)
	}
	if cfg.Auth.AccessTokenTTL != time.Hour {
		t.Errorf("AccessTokenTTL default: got %v", cfg.Auth.AccessTokenTTL)
	}
	if cfg.AI.RatePoints != 50 || cfg.AI.RateWindow != time.Hour {
		t.Errorf("AI quota defaults: got %d per %v", cfg.AI.RatePoints, cfg.AI.RateWindow)
	}
	if cfg.AI.MinKeyLength != 20 || cfg.Auth.MinTokenLength != 20 {
		t.Errorf("length floors: key=%d token=%d", cfg.AI.MinKeyLength, cfg.Auth.MinTokenLength)
	}
	if cfg.WordPress.AuthUsername != "admin" {
		t.Errorf("WP_AUTH_USERNAME default: got %q", cfg.WordPress.AuthUsername)
	}
	if cfg.GinMode != "release" {
		t.Errorf("GinMode default: got %q", cfg.GinMode)
	}
}

func TestLoad_Normalization(t *testing.T) {
	t.Setenv("JWT_SECRET", "test-secret")
	t.Setenv("LOG_LEVEL", "WARNING")
	t.Setenv("GIN_MODE", "bogus")
	t.Setenv("API_BASE_PATH", "api/v1/")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.LogLevel != "warn" {
		t.Errorf("expected warning->warn, got %q", cfg.LogLevel)
	}
	if cfg.GinMode != "release" {
		t.Errorf("unknown gin mode must fall back to release, got %q", cfg.GinMode)
	}
	if cfg.APIBasePath != "/api/v1" {
		t.Errorf("base path not normalized: %q", cfg.APIBasePath)
	}
}

func TestLoad_Validation(t *testing.T) {
	cases := []struct {
		name string
		key  string
		val  string
	}{
		{"zero quota points", "AI_RATE_POINTS", "0"},
		{"negative quota window", "AI_RATE_WINDOW", "-1h"},
		{"empty db path", "DB_PATH", " "},
		{"zero burst", "RATE_BURST", "0"},
		{"bad log level", "LOG_LEVEL", "verbose"},
		{"bad sample ratio", "OTEL_TRACES_SAMPLER_ARG", "1.5"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			t.Setenv("JWT_SECRET", "test-secret")
			t.Setenv(tc.key, tc.val)
			if _, err := Load(); err == nil {
				t.Fatalf("expected validation error for %s=%q", tc.key, tc.val)
			}
		})
	}
}

func TestLoad_CORSList(t *testing.T) {
	t.Setenv("JWT_SECRET", "test-secret")
	t.Setenv("CORS_ALLOWED_ORIGINS", " https://app.example.com , https://admin.example.com ,")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	want := []string{"https://app.example.com", "https://admin.example.com"}
	if len(cfg.CORS.AllowedOrigins) != len(want) {
		t.Fatalf("unexpected origins: %v", cfg.CORS.AllowedOrigins)
	}
	for i := range want {
		if cfg.CORS.AllowedOrigins[i] != want[i] {
			t.Fatalf("unexpected origins: %v", cfg.CORS.AllowedOrigins)
		}
	}
}
