// Package config loads configuration from environment variables.
package config

import (
	"os"
	"strconv"
	"time"
)

// Config holds all server configuration.
type Config struct {
	// Server
	ListenAddr  string
	MetricsAddr string

	// Logging
	LogLevel  string
	LogFormat string

	// MongoDB (metadata)
	MongoURL string
	Database string

	// Redis (session tokens)
	RedisAddr     string
	RedisPassword string
	RedisDB       int

	// Sessions
	TokenTTL time.Duration

	// Storage backend ("local" or "s3", default: "local")
	StorageBackend string
	FolderPath     string

	// S3 storage
	S3Endpoint  string
	S3Bucket    string
	S3AccessKey string
	S3SecretKey string
	S3Region    string

	// Uploads
	MaxUploadSize int64

	// Thumbnail worker pool
	ThumbWorkers int
}

// Load reads configuration from environment variables with defaults.
func Load() (*Config, error) {
	cfg := &Config{
		ListenAddr:     envOr("LISTEN_ADDR", ":5000"),
		MetricsAddr:    envOr("METRICS_ADDR", ":9090"),
		LogLevel:       envOr("LOG_LEVEL", "info"),
		LogFormat:      envOr("LOG_FORMAT", "json"),
		MongoURL:       envOr("MONGO_URL", "mongodb://localhost:27017"),
		Database:       envOr("DB_DATABASE", "files_manager"),
		RedisAddr:      envOr("REDIS_ADDR", "localhost:6379"),
		RedisPassword:  envOr("REDIS_PASSWORD", ""),
		RedisDB:        envInt("REDIS_DB", 0),
		TokenTTL:       envDuration("TOKEN_TTL", 24*time.Hour),
		StorageBackend: envOr("STORAGE_BACKEND", "local"),
		FolderPath:     envOr("FOLDER_PATH", "/tmp/files_manager"),
		S3Endpoint:     envOr("S3_ENDPOINT", "http://localhost:9000"),
		S3Bucket:       envOr("S3_BUCKET", "filedepot"),
		S3AccessKey:    envOr("S3_ACCESS_KEY", "minioadmin"),
		S3SecretKey:    envOr("S3_SECRET_KEY", "minioadmin"),
		S3Region:       envOr("S3_REGION", "us-east-1"),
		MaxUploadSize:  envInt64("MAX_UPLOAD_SIZE", 200*1024*1024), // 200MB default
		ThumbWorkers:   envInt("THUMB_WORKERS", 2),
	}

	return cfg, nil
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	i, err := strconv.Atoi(v)
	if err != nil {
		return fallback
	}
	return i
}

func envInt64(key string, fallback int64) int64 {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	i, err := strconv.ParseInt(v, 10, 64)
	if err != nil {
		return fallback
	}
	return i
}

func envDuration(key string, fallback time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return fallback
	}
	return d
}
