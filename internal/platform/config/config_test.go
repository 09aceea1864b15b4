package config

import (
	"strings"
	"testing"
	"time"
)

func TestFromEnv_Defaults(t *testing.T) {
	for _, k := range []string{"PORT", "ENV", "LOG_LEVEL", "LOG_FORMAT", "DB_DSN", "RATE_LIMIT_PER_SECOND", "AUTH_VERIFY_URL", "AUTH_API_KEY", "OTLP_ENDPOINT", "TRACE_SAMPLE_RATE", "SEED_DEMO", "SHUTDOWN_TIMEOUT_SECONDS"} {
		t.Setenv(k, "")
	}

	cfg, err := FromEnv()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Port != "8080" || cfg.Env != "dev" || cfg.LogLevel != "info" {
		t.Fatalf("unexpected defaults %+v", cfg)
	}
	if cfg.DBDSN != "" || cfg.SeedDemo {
		t.Fatalf("expected memory storage without seed, got %+v", cfg)
	}
	if cfg.ShutdownTimeout != 10*time.Second {
		t.Fatalf("expected 10s shutdown timeout, got %v", cfg.ShutdownTimeout)
	}
}

func TestFromEnv_Invalid(t *testing.T) {
	cases := []struct {
		key, value, want string
	}{
		{"PORT", "abc", "PORT"},
		{"PORT", "70000", "PORT"},
		{"ENV", "qa", "ENV"},
		{"LOG_LEVEL", "verbose", "LOG_LEVEL"},
		{"LOG_FORMAT", "xml", "LOG_FORMAT"},
		{"RATE_LIMIT_PER_SECOND", "many", "RATE_LIMIT_PER_SECOND"},
		{"TRACE_SAMPLE_RATE", "1.5", "TRACE_SAMPLE_RATE"},
		{"AUTH_VERIFY_URL", "http://auth.local", "AUTH_API_KEY"},
	}

	for _, tc := range cases {
		t.Run(tc.key+"="+tc.value, func(t *testing.T) {
			t.Setenv("AUTH_API_KEY", "")
			t.Setenv(tc.key, tc.value)

			_, err := FromEnv()
			if err == nil || !strings.Contains(err.Error(), tc.want) {
				t.Fatalf("expected error mentioning %s, got %v", tc.want, err)
			}
		})
	}
}

func TestFromEnv_Overrides(t *testing.T) {
	t.Setenv("PORT", "9090")
	t.Setenv("SEED_DEMO", "true")
	t.Setenv("TRACE_SAMPLE_RATE", "0.25")
	t.Setenv("LOG_FORMAT", "TEXT")

	cfg, err := FromEnv()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Port != "9090" || !cfg.SeedDemo || cfg.TraceSampleRate != 0.25 || cfg.LogFormat != "text" {
		t.Fatalf("unexpected config %+v", cfg)
	}
}
