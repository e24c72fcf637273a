// Package s3 provides an S3-compatible storage backend.
package s3

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/google/uuid"
)

// Config holds S3 backend settings.
type Config struct {
	Endpoint  string
	Bucket    string
	AccessKey string
	SecretKey string
	Region    string
}

// Backend stores blobs as S3 objects. Locators are object keys.
type Backend struct {
	client *s3.Client
	bucket string
}

// New creates an S3 backend against the configured endpoint.
func New(ctx context.Context, cfg Config) (*Backend, error) {
	if cfg.Bucket == "" {
		return nil, fmt.Errorf("bucket is required")
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx,
		awsconfig.WithRegion(cfg.Region),
		awsconfig.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			cfg.AccessKey, cfg.SecretKey, "")))
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
		}
		o.UsePathStyle = true
	})

	return &Backend{client: client, bucket: cfg.Bucket}, nil
}

// Store uploads data under a fresh uuid key and returns the key.
func (b *Backend) Store(ctx context.Context, data []byte) (string, error) {
	key := uuid.NewString()
	if err := b.StoreAt(ctx, key, data); err != nil {
		return "", err
	}
	return key, nil
}

// StoreAt uploads data at the exact key. S3 object puts are atomic, so a
// partially uploaded object is never visible.
func (b *Backend) StoreAt(ctx context.Context, locator string, data []byte) error {
	_, err := b.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket: aws.String(b.bucket),
		Key:    aws.String(locator),
		Body:   bytes.NewReader(data),
	})
	if err != nil {
		return fmt.Errorf("put object %s: %w", locator, err)
	}
	return nil
}

// Read downloads the object at the key.
func (b *Backend) Read(ctx context.Context, locator string) ([]byte, error) {
	out, err := b.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(b.bucket),
		Key:    aws.String(locator),
	})
	if err != nil {
		return nil, fmt.Errorf("get object %s: %w", locator, err)
	}
	defer out.Body.Close()

	data, err := io.ReadAll(out.Body)
	if err != nil {
		return nil, fmt.Errorf("read object %s: %w", locator, err)
	}
	return data, nil
}

// Exists reports whether an object exists at the key.
func (b *Backend) Exists(ctx context.Context, locator string) (bool, error) {
	_, err := b.client.HeadObject(ctx, &s3.HeadObjectInput{
		Bucket: aws.String(b.bucket),
		Key:    aws.String(locator),
	})
	if err != nil {
		var notFound *types.NotFound
		if errors.As(err, &notFound) {
			return false, nil
		}
		return false, fmt.Errorf("head object %s: %w", locator, err)
	}
	return true, nil
}

// Type returns "s3".
func (b *Backend) Type() string { return "s3" }

// Close is a no-op; the S3 client holds no persistent connections.
func (b *Backend) Close() error { return nil }
