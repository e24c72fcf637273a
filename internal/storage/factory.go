package storage

import (
	"context"
	"fmt"

	"github.com/filedepot/filedepot/internal/config"
	"github.com/filedepot/filedepot/internal/storage/local"
	s3backend "github.com/filedepot/filedepot/internal/storage/s3"
)

// NewFromConfig creates the Backend selected by cfg.StorageBackend.
func NewFromConfig(ctx context.Context, cfg *config.Config) (Backend, error) {
	switch cfg.StorageBackend {
	case "s3":
		return s3backend.New(ctx, s3backend.Config{
			Endpoint:  cfg.S3Endpoint,
			Bucket:    cfg.S3Bucket,
			AccessKey: cfg.S3AccessKey,
			SecretKey: cfg.S3SecretKey,
			Region:    cfg.S3Region,
		})
	case "local":
		return local.New(local.Config{RootPath: cfg.FolderPath})
	default:
		return nil, fmt.Errorf("unknown storage backend: %s", cfg.StorageBackend)
	}
}
