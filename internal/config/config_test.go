package config

import (
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if cfg.ListenAddr != ":5000" {
		t.Errorf("ListenAddr = %q, want :5000", cfg.ListenAddr)
	}
	if cfg.Database != "files_manager" {
		t.Errorf("Database = %q, want files_manager", cfg.Database)
	}
	if cfg.TokenTTL != 24*time.Hour {
		t.Errorf("TokenTTL = %v, want 24h", cfg.TokenTTL)
	}
	if cfg.StorageBackend != "local" {
		t.Errorf("StorageBackend = %q, want local", cfg.StorageBackend)
	}
	if cfg.ThumbWorkers != 2 {
		t.Errorf("ThumbWorkers = %d, want 2", cfg.ThumbWorkers)
	}
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("LISTEN_ADDR", ":8080")
	t.Setenv("TOKEN_TTL", "1h")
	t.Setenv("STORAGE_BACKEND", "s3")
	t.Setenv("MAX_UPLOAD_SIZE", "1024")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if cfg.ListenAddr != ":8080" {
		t.Errorf("ListenAddr = %q, want :8080", cfg.ListenAddr)
	}
	if cfg.TokenTTL != time.Hour {
		t.Errorf("TokenTTL = %v, want 1h", cfg.TokenTTL)
	}
	if cfg.StorageBackend != "s3" {
		t.Errorf("StorageBackend = %q, want s3", cfg.StorageBackend)
	}
	if cfg.MaxUploadSize != 1024 {
		t.Errorf("MaxUploadSize = %d, want 1024", cfg.MaxUploadSize)
	}
}

func TestLoadMalformedValuesFallBack(t *testing.T) {
	t.Setenv("TOKEN_TTL", "not-a-duration")
	t.Setenv("THUMB_WORKERS", "many")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.TokenTTL != 24*time.Hour {
		t.Errorf("TokenTTL = %v, want default 24h", cfg.TokenTTL)
	}
	if cfg.ThumbWorkers != 2 {
		t.Errorf("ThumbWorkers = %d, want default 2", cfg.ThumbWorkers)
	}
}
