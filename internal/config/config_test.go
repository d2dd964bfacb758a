package config

import (
	"testing"
	"time"
)

func TestLoad_Defaults(t *testing.T) {
	for _, k := range []string{"SERVER_PORT", "JWT_EXPIRY_HOURS", "PUBLIC_BASE_URL", "SERVER_TIMING_FLOOR", "ALLOWED_ORIGINS", "REQUEST_TIMEOUT_SECONDS", "JWT_SECRET", "RATE_LIMIT_PER_MINUTE", "LOGIN_RATE_LIMIT_PER_MINUTE"} {
		t.Setenv(k, "")
	}

	cfg := Load()
	if cfg.ServerPort != "8080" {
		t.Errorf("ServerPort = %q", cfg.ServerPort)
	}
	if cfg.JWTExpiry != 12*time.Hour {
		t.Errorf("JWTExpiry = %v", cfg.JWTExpiry)
	}
	if cfg.RequestTimeout != 10*time.Second {
		t.Errorf("RequestTimeout = %v", cfg.RequestTimeout)
	}
	if !cfg.ServerTimingFloor {
		t.Error("ServerTimingFloor should default to true")
	}
	if cfg.JWTSecret != "" {
		t.Errorf("JWTSecret = %q, want no built-in default", cfg.JWTSecret)
	}
	if cfg.RateLimitPerMinute != 1200 || cfg.LoginRateLimitPerMinute != 10 {
		t.Errorf("rate limits = %d/%d", cfg.RateLimitPerMinute, cfg.LoginRateLimitPerMinute)
	}
	if len(cfg.AllowedOrigins) != 0 {
		t.Errorf("AllowedOrigins = %v", cfg.AllowedOrigins)
	}
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("PUBLIC_BASE_URL", "https://quiz.example.org/")
	t.Setenv("SERVER_TIMING_FLOOR", "false")
	t.Setenv("QUIZ_CACHE_TTL_MINUTES", "5")
	t.Setenv("DEFAULT_TIME_SECONDS", "not-a-number")
	t.Setenv("ALLOWED_ORIGINS", "https://a.example.org, https://b.example.org")

	cfg := Load()
	if got := cfg.QuizLink("abc"); got != "https://quiz.example.org/quiz/abc" {
		t.Errorf("QuizLink = %q", got)
	}
	if cfg.ServerTimingFloor {
		t.Error("ServerTimingFloor should be false")
	}
	if cfg.QuizCacheTTL != 5*time.Minute {
		t.Errorf("QuizCacheTTL = %v", cfg.QuizCacheTTL)
	}
	if cfg.DefaultTimeSeconds != 30 {
		t.Errorf("DefaultTimeSeconds = %d, want fallback 30", cfg.DefaultTimeSeconds)
	}
	if len(cfg.AllowedOrigins) != 2 || cfg.AllowedOrigins[1] != "https://b.example.org" {
		t.Errorf("AllowedOrigins = %v", cfg.AllowedOrigins)
	}
}

func TestExportLocation_FallsBackToUTC(t *testing.T) {
	cfg := &Config{ExportTimezone: "Nowhere/Special"}
	if cfg.ExportLocation() != time.UTC {
		t.Error("unknown zone should fall back to UTC")
	}
}

func TestCacheKeys(t *testing.T) {
	if got := CacheKey.QuizPayloadKey("q1"); got != "quiz:q1:payload" {
		t.Errorf("payload key = %q", got)
	}
	if got := CacheKey.StudentServedKey("s1"); got != "quiz:student:s1:served" {
		t.Errorf("served key = %q", got)
	}
}
