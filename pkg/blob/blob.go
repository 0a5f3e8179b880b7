// Package blob stores the content of asset versions, on the local
// filesystem or in an S3 compatible bucket.
package blob

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/doodlesbykumbi/seek-in-go/pkg/config"
)

const (
	DriverFile = "file"
	DriverS3   = "s3"

	DefaultPresignExpiry = 15 * time.Minute
)

var (
	// ErrNotFound is returned for keys with no stored content
	ErrNotFound = errors.New("blob not found")
	// ErrExists is returned when putting over an existing key
	ErrExists = errors.New("blob already exists")
	// ErrUnsupported is returned by drivers that cannot sign urls
	ErrUnsupported = errors.New("operation not supported by blob driver")
)

// Info describes stored content
type Info struct {
	Key          string    `json:"key"`
	Size         int64     `json:"size"`
	ContentType  string    `json:"content_type,omitempty"`
	ETag         string    `json:"etag,omitempty"`
	LastModified time.Time `json:"last_modified"`
}

// Store is a content blob backend. Keys are create-only.
type Store interface {
	Put(ctx context.Context, key string, r io.Reader, contentType string) (Info, error)
	Get(ctx context.Context, key string) (Info, io.ReadCloser, error)
	Head(ctx context.Context, key string) (Info, error)
	Delete(ctx context.Context, key string) error
	// PresignURL returns a time limited download url, or ErrUnsupported
	PresignURL(ctx context.Context, key string, expiry time.Duration) (string, error)
}

// NewKey returns a fresh storage key, "<asset_type>/<uuid>"
func NewKey(assetType string) string {
	return Key(assetType, uuid.NewString())
}

// Key is the storage key of a blob uuid under an asset type
func Key(assetType, blobUUID string) string {
	return strings.ToLower(assetType) + "/" + blobUUID
}

// Open creates the store named by the blob_driver setting
func Open(ctx context.Context, cfg *config.SeekConfig) (Store, error) {
	switch cfg.BlobDriver {
	case DriverFile, "":
		return NewFileStore(cfg.BlobPath)
	case DriverS3:
		return NewS3Store(ctx, S3Config{
			Bucket:    cfg.S3Bucket,
			Region:    cfg.S3Region,
			Endpoint:  cfg.S3Endpoint,
			PathStyle: cfg.S3PathStyle,
		})
	default:
		return nil, fmt.Errorf("unknown blob driver %q", cfg.BlobDriver)
	}
}
