// Package storage provides object storage for listing photos and builder documents.
package storage

import (
	"context"
	"errors"
	"path"
	"strings"
	"time"

	"github.com/google/uuid"
)

var (
	ErrObjectNotFound = errors.New("object not found")
	ErrObjectTooLarge = errors.New("object exceeds size limit")
)

// PresignedUpload tells a client how to PUT a file directly to storage
type PresignedUpload struct {
	Key       string            `json:"key"`
	URL       string            `json:"url"`
	Method    string            `json:"method"`
	Headers   map[string]string `json:"headers"`
	ExpiresAt time.Time         `json:"expires_at"`
}

// Object is a downloaded object
type Object struct {
	Key         string
	ContentType string
	Data        []byte
}

// ObjectStorage is implemented by S3ObjectStorage and MemoryObjectStorage
type ObjectStorage interface {
	PresignUpload(ctx context.Context, key, contentType string) (*PresignedUpload, error)
	GetObject(ctx context.Context, key string, maxBytes int64) (*Object, error)
	DeleteObject(ctx context.Context, key string) error
	PublicURL(key string) string
}

// BuildKey returns "<prefix>/<uuid><ext>" using the extension of filename, lowercased.
func BuildKey(prefix, filename string) string {
	ext := strings.ToLower(path.Ext(strings.ReplaceAll(filename, "\\", "/")))
	if len(ext) > 10 {
		ext = ""
	}
	return strings.TrimSuffix(prefix, "/") + "/" + uuid.NewString() + ext
}

func joinURL(base, key string) string {
	return strings.TrimSuffix(base, "/") + "/" + strings.TrimPrefix(key, "/")
}
