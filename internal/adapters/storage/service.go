// Package storage provides a domain-agnostic interface for S3-compatible object storage.
package storage

import (
	"context"
	"io"
)

// StorageService defines the object storage operations used by the application.
type StorageService interface {
	// UploadFile uploads a file under folder with a collision-free name and
	// returns the full object key. metadata is stored as object user metadata.
	UploadFile(ctx context.Context, bucket, folder, fileName, contentType string, reader io.Reader, size int64, metadata map[string]string) (string, error)

	// DeleteObject removes an object from storage.
	DeleteObject(ctx context.Context, bucket, fileKey string) error

	// EnsureBucketExists creates the bucket if it doesn't exist.
	EnsureBucketExists(ctx context.Context, bucket string) error

	// ObjectURL returns the stable public URL of an object.
	ObjectURL(bucket, fileKey string) string

	// ValidateContentType checks if the content type is allowed.
	ValidateContentType(contentType string) error

	// ValidateFileSize checks if the file size is within limits.
	ValidateFileSize(sizeBytes int64) error

	// GetMaxFileSize returns the configured maximum file size in bytes.
	GetMaxFileSize() int64
}

// Config defines the configuration interface for storage.
type Config interface {
	GetMinIOEndpoint() string
	GetMinIOAccessKey() string
	GetMinIOSecretKey() string
	GetMinIOUseSSL() bool
	GetMinIOPublicURL() string
	GetMinIOMaxFileSize() int64
	IsMinIOEnabled() bool
}
