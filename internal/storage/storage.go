package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path"
	"strings"
	"time"

	"bora-alugar-backend/internal/config"

	"github.com/google/uuid"
)

var (
	ErrUnsupportedType = errors.New("unsupported content type")
	ErrInvalidKey      = errors.New("invalid storage key")
)

// ObjectStore is where item photos and KYC documents live. Clients upload and
// download directly through presigned URLs; the API only hands out keys.
type ObjectStore interface {
	PresignUpload(ctx context.Context, key, contentType string, expiresIn time.Duration) (string, error)
	PresignDownload(ctx context.Context, key string, expiresIn time.Duration) (string, error)
	// Exists reports whether the object was uploaded and its size
	Exists(ctx context.Context, key string) (bool, int64, error)
	Delete(ctx context.Context, key string) error
}

// FileServer is implemented by stores that receive uploads through this API
// instead of a cloud provider.
type FileServer interface {
	Save(key string, r io.Reader) error
	Open(key string) (io.ReadCloser, error)
}

// New builds the store selected by cfg.Type
func New(cfg config.StorageConfig) (ObjectStore, error) {
	switch cfg.Type {
	case "s3":
		return NewS3Store(cfg)
	case "mock", "":
		return NewLocalStore(cfg.BaseURL, cfg.UploadDir)
	default:
		return nil, fmt.Errorf("unsupported storage type: %s", cfg.Type)
	}
}

var extensions = map[string]string{
	"image/jpeg":      ".jpg",
	"image/png":       ".png",
	"image/webp":      ".webp",
	"image/gif":       ".gif",
	"application/pdf": ".pdf",
}

// NewKey returns a unique object key such as items/42/3f2a....jpg
func NewKey(prefix string, ownerID int32, contentType string) (string, error) {
	ext, ok := extensions[contentType]
	if !ok {
		return "", fmt.Errorf("%w: %s", ErrUnsupportedType, contentType)
	}
	return fmt.Sprintf("%s/%d/%s%s", prefix, ownerID, uuid.NewString(), ext), nil
}

// ContentTypeFor maps a key's extension back to a MIME type
func ContentTypeFor(key string) string {
	ext := strings.ToLower(path.Ext(key))
	if ext == ".jpeg" {
		ext = ".jpg"
	}
	for ct, e := range extensions {
		if e == ext {
			return ct
		}
	}
	return "application/octet-stream"
}

// Allowed reports whether contentType is in the configured allow list
func Allowed(allowed []string, contentType string) bool {
	for _, ct := range allowed {
		if strings.EqualFold(ct, contentType) {
			return true
		}
	}
	return false
}

// cleanKey rejects keys that would escape the storage root
func cleanKey(key string) (string, error) {
	if key == "" || strings.HasPrefix(key, "/") {
		return "", ErrInvalidKey
	}
	cleaned := path.Clean(key)
	if cleaned == "." || cleaned == ".." || strings.HasPrefix(cleaned, "../") {
		return "", ErrInvalidKey
	}
	return cleaned, nil
}
