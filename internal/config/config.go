package config

import (
	"errors"
	"os"
	"runtime"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	API       APIConfig
	Pipeline  PipelineConfig
	Storage   StorageConfig
	RateLimit RateLimitConfig
	Database  DatabaseConfig
	Telemetry TelemetryConfig
}

type APIConfig struct {
	Addr string
}

type PipelineConfig struct {
	MaxConcurrent int
}

type StorageConfig struct {
	Endpoint     string
	AccessKey    string
	SecretKey    string
	Bucket       string
	UseSSL       bool
	EnsureBucket bool
}

// Validate reports the first missing storage setting. The object store has
// no usable defaults, so a missing value is fatal at startup rather than a
// per-request error.
func (s StorageConfig) Validate() error {
	if strings.TrimSpace(s.Endpoint) == "" {
		return errors.New("MINIO_ENDPOINT is not set")
	}
	if strings.TrimSpace(s.AccessKey) == "" {
		return errors.New("MINIO_ACCESS_KEY is not set")
	}
	if strings.TrimSpace(s.SecretKey) == "" {
		return errors.New("MINIO_SECRET_KEY is not set")
	}
	if strings.TrimSpace(s.Bucket) == "" {
		return errors.New("MINIO_BUCKET is not set")
	}
	return nil
}

type RateLimitConfig struct {
	Enabled       bool
	RedisAddr     string
	RedisPassword string
	RedisDB       int
	Requests      int
	Window        time.Duration
}

type DatabaseConfig struct {
	DSN string
}

type TelemetryConfig struct {
	ServiceName  string
	Exporter     string
	OTLPEndpoint string
	OTLPInsecure bool
}

func Load() Config {
	return Config{
		API: APIConfig{
			Addr: env("IMAGE_RESIZE_ADDR", ":8080"),
		},
		Pipeline: PipelineConfig{
			MaxConcurrent: envInt("TRANSFORM_CONCURRENCY", max(1, runtime.NumCPU())),
		},
		Storage: StorageConfig{
			Endpoint:     env("MINIO_ENDPOINT", ""),
			AccessKey:    env("MINIO_ACCESS_KEY", ""),
			SecretKey:    env("MINIO_SECRET_KEY", ""),
			Bucket:       env("MINIO_BUCKET", ""),
			UseSSL:       envBool("MINIO_USE_SSL", false),
			EnsureBucket: envBool("MINIO_ENSURE_BUCKET", false),
		},
		RateLimit: RateLimitConfig{
			Enabled:       envBool("RATE_LIMIT_ENABLED", false),
			RedisAddr:     env("REDIS_ADDR", "localhost:6379"),
			RedisPassword: env("REDIS_PASSWORD", ""),
			RedisDB:       envInt("REDIS_DB", 0),
			Requests:      envInt("RATE_LIMIT_REQUESTS", 60),
			Window:        envDuration("RATE_LIMIT_WINDOW", time.Minute),
		},
		Database: DatabaseConfig{
			DSN: env("POSTGRES_DSN", ""),
		},
		Telemetry: TelemetryConfig{
			ServiceName:  env("OTEL_SERVICE_NAME", "image-resize"),
			Exporter:     env("TRACE_EXPORTER", "none"),
			OTLPEndpoint: env("OTLP_ENDPOINT", ""),
			OTLPInsecure: envBool("OTLP_INSECURE", false),
		},
	}
}

func env(key, fallback string) string {
	value, ok := os.LookupEnv(key)
	if !ok || value == "" {
		return fallback
	}
	return value
}

func envInt(key string, fallback int) int {
	value := env(key, "")
	if value == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return fallback
	}
	return parsed
}

func envBool(key string, fallback bool) bool {
	value := env(key, "")
	if value == "" {
		return fallback
	}
	parsed, err := strconv.ParseBool(value)
	if err != nil {
		return fallback
	}
	return parsed
}

func envDuration(key string, fallback time.Duration) time.Duration {
	value := env(key, "")
	if value == "" {
		return fallback
	}
	parsed, err := time.ParseDuration(value)
	if err != nil {
		return fallback
	}
	return parsed
}

func max(a, b int) int {
	if a > b {
		return a
	}
	return b
}
