// Package config loads runtime settings from the environment.
// A .env file in the working directory is read first when present.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config carries every setting the server needs.
type Config struct {
	Port        string
	DatabaseURL string
	CORSOrigin  string
	AdminEmail  string

	JWT     JWTConfig
	Log     LogConfig
	Storage StorageConfig
	Limits  RateLimitConfig
}

type JWTConfig struct {
	Secret string
	TTL    time.Duration
}

type LogConfig struct {
	Level string
	File  string
}

// StorageConfig selects where uploaded images end up.
// Driver is "local" or "s3".
type StorageConfig struct {
	Driver        string
	UploadDir     string
	PublicBaseURL string
	AWSRegion     string
	AWSBucket     string
	CDNBaseURL    string
}

// RateLimitConfig applies per client IP on write endpoints.
type RateLimitConfig struct {
	RPS   float64
	Burst int
}

// Load reads the configuration. JWT_SECRET is the only required value.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		// Not fatal: production sets the environment directly.
		fmt.Fprintln(os.Stderr, "No .env file found, reading from environment")
	}

	ttlHours, err := strconv.Atoi(getEnv("JWT_TTL_HOURS", "24"))
	if err != nil || ttlHours <= 0 {
		return nil, fmt.Errorf("invalid JWT_TTL_HOURS: %q", os.Getenv("JWT_TTL_HOURS"))
	}

	rps, err := strconv.ParseFloat(getEnv("RATE_LIMIT_RPS", "1"), 64)
	if err != nil || rps <= 0 {
		return nil, fmt.Errorf("invalid RATE_LIMIT_RPS: %q", os.Getenv("RATE_LIMIT_RPS"))
	}

	burst, err := strconv.Atoi(getEnv("RATE_LIMIT_BURST", "5"))
	if err != nil || burst <= 0 {
		return nil, fmt.Errorf("invalid RATE_LIMIT_BURST: %q", os.Getenv("RATE_LIMIT_BURST"))
	}

	cfg := &Config{
		Port:        getEnv("PORT", "8080"),
		DatabaseURL: getEnv("DATABASE_URL", "sqlite://suara.db"),
		CORSOrigin:  getEnv("CORS_ORIGIN", "*"),
		AdminEmail:  strings.ToLower(strings.TrimSpace(os.Getenv("ADMIN_EMAIL"))),
		JWT: JWTConfig{
			Secret: os.Getenv("JWT_SECRET"),
			TTL:    time.Duration(ttlHours) * time.Hour,
		},
		Log: LogConfig{
			Level: getEnv("LOG_LEVEL", "info"),
			File:  getEnv("LOG_FILE", "server.log"),
		},
		Storage: StorageConfig{
			Driver:        strings.ToLower(getEnv("STORAGE_DRIVER", "local")),
			UploadDir:     getEnv("UPLOAD_DIR", "./uploads"),
			PublicBaseURL: getEnv("PUBLIC_BASE_URL", "http://localhost:8080"),
			AWSRegion:     os.Getenv("AWS_REGION"),
			AWSBucket:     os.Getenv("AWS_BUCKET"),
			CDNBaseURL:    os.Getenv("CDN_BASE_URL"),
		},
		Limits: RateLimitConfig{RPS: rps, Burst: burst},
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	if c.JWT.Secret == "" {
		return fmt.Errorf("JWT_SECRET environment variable is required")
	}
	switch c.Storage.Driver {
	case "local":
	case "s3":
		if c.Storage.AWSRegion == "" || c.Storage.AWSBucket == "" {
			return fmt.Errorf("STORAGE_DRIVER=s3 requires AWS_REGION and AWS_BUCKET")
		}
	default:
		return fmt.Errorf("invalid STORAGE_DRIVER %q: must be local or s3", c.Storage.Driver)
	}
	return nil
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
