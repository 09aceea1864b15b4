// Package config carga la configuración desde el entorno (y .env si existe).
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Port      string
	Env       string
	AppName   string
	LogLevel  string
	LogFormat string

	// DBDSN vacío = storage en memoria.
	DBDSN string

	RateLimitPerSecond int

	// AuthVerifyURL vacío = modo dev (X-Debug-User-ID).
	AuthVerifyURL string
	AuthAPIKey    string

	// OTLPEndpoint vacío = sin tracing.
	OTLPEndpoint    string
	TraceSampleRate float64

	SeedDemo        bool
	ShutdownTimeout time.Duration
}

// Load lee .env (si existe) y luego el entorno. Las variables del entorno
// tienen prioridad sobre el archivo.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}
	return FromEnv()
}

// FromEnv arma la configuración sólo desde el entorno.
func FromEnv() (*Config, error) {
	cfg := &Config{
		Port:               getEnv("PORT", "8080"),
		Env:                strings.ToLower(getEnv("ENV", "dev")),
		AppName:            getEnv("APP_NAME", "medication-timeline"),
		LogLevel:           strings.ToLower(getEnv("LOG_LEVEL", "info")),
		LogFormat:          strings.ToLower(getEnv("LOG_FORMAT", "json")),
		DBDSN:              strings.TrimSpace(os.Getenv("DB_DSN")),
		RateLimitPerSecond: getInt("RATE_LIMIT_PER_SECOND", 20),
		AuthVerifyURL:      strings.TrimSpace(os.Getenv("AUTH_VERIFY_URL")),
		AuthAPIKey:         strings.TrimSpace(os.Getenv("AUTH_API_KEY")),
		OTLPEndpoint:       strings.TrimSpace(os.Getenv("OTLP_ENDPOINT")),
		TraceSampleRate:    getFloat("TRACE_SAMPLE_RATE", 1.0),
		SeedDemo:           getBool("SEED_DEMO", false),
		ShutdownTimeout:    time.Duration(getInt("SHUTDOWN_TIMEOUT_SECONDS", 10)) * time.Second,
	}

	if err := validate(cfg); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}
	return cfg, nil
}

func validate(cfg *Config) error {
	port, err := strconv.Atoi(cfg.Port)
	if err != nil {
		return fmt.Errorf("invalid PORT: must be a number: %w", err)
	}
	if port < 1 || port > 65535 {
		return fmt.Errorf("invalid PORT: must be between 1 and 65535, got %d", port)
	}

	if !oneOf(cfg.Env, "dev", "staging", "prod", "test") {
		return fmt.Errorf("invalid ENV: %q", cfg.Env)
	}
	if !oneOf(cfg.LogLevel, "debug", "info", "warn", "error") {
		return fmt.Errorf("invalid LOG_LEVEL: %q", cfg.LogLevel)
	}
	if !oneOf(cfg.LogFormat, "json", "text") {
		return fmt.Errorf("invalid LOG_FORMAT: %q", cfg.LogFormat)
	}

	if cfg.RateLimitPerSecond < 0 {
		return fmt.Errorf("invalid RATE_LIMIT_PER_SECOND: must not be negative, got %d", cfg.RateLimitPerSecond)
	}
	if cfg.TraceSampleRate < 0 || cfg.TraceSampleRate > 1 {
		return fmt.Errorf("invalid TRACE_SAMPLE_RATE: must be within [0,1], got %v", cfg.TraceSampleRate)
	}
	if cfg.AuthVerifyURL != "" && cfg.AuthAPIKey == "" {
		return errors.New("invalid AUTH_API_KEY: required when AUTH_VERIFY_URL is set")
	}
	if cfg.ShutdownTimeout <= 0 {
		return errors.New("invalid SHUTDOWN_TIMEOUT_SECONDS: must be positive")
	}
	return nil
}

func oneOf(v string, allowed ...string) bool {
	for _, a := range allowed {
		if v == a {
			return true
		}
	}
	return false
}

func getEnv(key, def string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return def
}

// getInt: un valor no numérico deja -1 para que falle la validación.
func getInt(key string, def int) int {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return -1
	}
	return n
}

func getFloat(key string, def float64) float64 {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return -1
	}
	return f
}

func getBool(key string, def bool) bool {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return def
	}
	return b
}
