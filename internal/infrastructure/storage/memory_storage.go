package storage

import (
	"context"
	"net/url"
	"sync"
	"time"
)

// MemoryObjectStorage keeps objects in memory. Used in development without S3 and in tests.
type MemoryObjectStorage struct {
	mu      sync.RWMutex
	objects map[string]Object
	baseURL string
}

// NewMemoryObjectStorage creates an empty store whose URLs live under baseURL
func NewMemoryObjectStorage(baseURL string) *MemoryObjectStorage {
	if baseURL == "" {
		baseURL = "http://localhost:8080/uploads"
	}
	return &MemoryObjectStorage{objects: make(map[string]Object), baseURL: baseURL}
}

// Put stores an object directly
func (m *MemoryObjectStorage) Put(key, contentType string, data []byte) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.objects[key] = Object{Key: key, ContentType: contentType, Data: append([]byte(nil), data...)}
}

func (m *MemoryObjectStorage) PresignUpload(_ context.Context, key, contentType string) (*PresignedUpload, error) {
	return &PresignedUpload{
		Key:       key,
		URL:       joinURL(m.baseURL, url.PathEscape(key)),
		Method:    "PUT",
		Headers:   map[string]string{"Content-Type": contentType},
		ExpiresAt: time.Now().Add(15 * time.Minute),
	}, nil
}

func (m *MemoryObjectStorage) GetObject(_ context.Context, key string, maxBytes int64) (*Object, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	obj, ok := m.objects[key]
	if !ok {
		return nil, ErrObjectNotFound
	}
	if maxBytes > 0 && int64(len(obj.Data)) > maxBytes {
		return nil, ErrObjectTooLarge
	}
	return &obj, nil
}

func (m *MemoryObjectStorage) DeleteObject(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.objects, key)
	return nil
}

func (m *MemoryObjectStorage) PublicURL(key string) string {
	return joinURL(m.baseURL, key)
}

var _ ObjectStorage = (*MemoryObjectStorage)(nil)
