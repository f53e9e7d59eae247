// Package config provides environment-driven configuration for the server.
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/go-playground/validator/v10"
)

// Auth modes supported by the server.
const (
	AuthDisabled = "disabled"
	AuthJWT      = "jwt"
	AuthSupabase = "supabase"
)

// Config holds the server configuration. All values come from environment
// variables; missing ones fall back to defaults suitable for local runs.
type Config struct {
	Port              int    `validate:"min=1,max=65535"`
	UploadsDir        string `validate:"required"`
	OutputDir         string `validate:"required"`
	GeminiAPIKey      string
	GeminiModel       string `validate:"required"`
	MaxConcurrentJobs int    `validate:"min=1"`
	JobTTL            time.Duration
	StreamPopTimeout  time.Duration
	AuthMode          string
	JWTSecret         string
	SupabaseURL       string `validate:"omitempty,url"`
	SupabaseAnonKey   string
	DatabaseURL       string
}

// FromEnv builds a Config from environment variables.
// Returns an error if a numeric or duration variable cannot be parsed.
func FromEnv() (Config, error) {
	cfg := Config{
		UploadsDir:      getenv("UPLOADS_DIR", "uploads"),
		OutputDir:       getenv("OUTPUT_DIR", "new_resumes"),
		GeminiAPIKey:    os.Getenv("GEMINI_API_KEY"),
		GeminiModel:     getenv("GEMINI_MODEL", "gemini-2.5-pro"),
		AuthMode:        os.Getenv("AUTH_MODE"),
		JWTSecret:       os.Getenv("JWT_SECRET"),
		SupabaseURL:     os.Getenv("SUPABASE_URL"),
		SupabaseAnonKey: os.Getenv("SUPABASE_ANON_KEY"),
		DatabaseURL:     os.Getenv("DATABASE_URL"),
	}

	var err error
	if cfg.Port, err = getenvInt("PORT", 8080); err != nil {
		return Config{}, err
	}
	if cfg.MaxConcurrentJobs, err = getenvInt("MAX_CONCURRENT_JOBS", 4); err != nil {
		return Config{}, err
	}
	if cfg.JobTTL, err = getenvDuration("JOB_TTL", 30*time.Minute); err != nil {
		return Config{}, err
	}
	if cfg.StreamPopTimeout, err = getenvDuration("STREAM_POP_TIMEOUT", 30*time.Second); err != nil {
		return Config{}, err
	}

	if cfg.AuthMode == "" {
		cfg.AuthMode = defaultAuthMode(cfg)
	}
	return cfg, nil
}

// defaultAuthMode picks the auth variant implied by which credentials are set.
func defaultAuthMode(cfg Config) string {
	switch {
	case cfg.SupabaseURL != "" && cfg.SupabaseAnonKey != "":
		return AuthSupabase
	case cfg.JWTSecret != "":
		return AuthJWT
	default:
		return AuthDisabled
	}
}

// Validate checks that the configuration has valid values.
func (c *Config) Validate() error {
	validate := validator.New()
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("config error: %w", err)
	}

	switch c.AuthMode {
	case AuthDisabled:
	case AuthJWT:
		if c.JWTSecret == "" {
			return fmt.Errorf("config error: AUTH_MODE=jwt requires JWT_SECRET")
		}
	case AuthSupabase:
		if c.SupabaseURL == "" || c.SupabaseAnonKey == "" {
			return fmt.Errorf("config error: AUTH_MODE=supabase requires SUPABASE_URL and SUPABASE_ANON_KEY")
		}
	default:
		return fmt.Errorf("config error: unknown AUTH_MODE: %q", c.AuthMode)
	}

	if c.JobTTL < 0 {
		return fmt.Errorf("config error: JOB_TTL must be non-negative, got: %s", c.JobTTL)
	}
	if c.StreamPopTimeout <= 0 {
		return fmt.Errorf("config error: STREAM_POP_TIMEOUT must be positive, got: %s", c.StreamPopTimeout)
	}
	return nil
}

func getenv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getenvInt(key string, fallback int) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %v", key, err)
	}
	return n, nil
}

func getenvDuration(key string, fallback time.Duration) (time.Duration, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %v", key, err)
	}
	return d, nil
}
