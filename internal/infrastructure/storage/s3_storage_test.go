package storage

import (
	"context"
	"net/url"
	"strings"
	"testing"

	"github.com/bizdir/backend/internal/infrastructure/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTestS3(t *testing.T) *S3ObjectStorage {
	t.Helper()
	s, err := NewS3ObjectStorage(context.Background(), config.StorageConfig{
		Bucket:          "bizdir-test",
		Region:          "us-east-1",
		Endpoint:        "http://localhost:9000",
		AccessKeyID:     "minio",
		SecretAccessKey: "minio-secret",
		UsePathStyle:    true,
	}, zap.NewNop())
	require.NoError(t, err)
	return s
}

func TestNewS3ObjectStorage_RequiresBucket(t *testing.T) {
	_, err := NewS3ObjectStorage(context.Background(), config.StorageConfig{Region: "us-east-1"}, zap.NewNop())
	assert.ErrorContains(t, err, "bucket is required")
}

func TestS3ObjectStorage_PresignUpload(t *testing.T) {
	s := newTestS3(t)

	up, err := s.PresignUpload(context.Background(), "listings/abc/photo.jpg", "image/jpeg")
	require.NoError(t, err)
	assert.Equal(t, "PUT", up.Method)
	assert.Equal(t, "image/jpeg", up.Headers["Content-Type"])

	u, err := url.Parse(up.URL)
	require.NoError(t, err)
	assert.Equal(t, "localhost:9000", u.Host)
	assert.Equal(t, "/bizdir-test/listings/abc/photo.jpg", u.Path)
	assert.NotEmpty(t, u.Query().Get("X-Amz-Signature"))
}

func TestS3ObjectStorage_PublicURL(t *testing.T) {
	s := newTestS3(t)
	assert.Equal(t, "http://localhost:9000/bizdir-test/listings/a.png", s.PublicURL("listings/a.png"))
}

func TestBuildKey(t *testing.T) {
	key := BuildKey("listings/123/", "My Photo.JPG")
	assert.True(t, strings.HasPrefix(key, "listings/123/"))
	assert.True(t, strings.HasSuffix(key, ".jpg"))
	assert.NotContains(t, key, "My Photo")

	assert.False(t, strings.Contains(BuildKey("docs", "noext"), "."))
}

func TestMemoryObjectStorage(t *testing.T) {
	ctx := context.Background()
	m := NewMemoryObjectStorage("https://cdn.test")
	m.Put("docs/a.txt", "text/plain", []byte("hello"))

	obj, err := m.GetObject(ctx, "docs/a.txt", 10)
	require.NoError(t, err)
	assert.Equal(t, "hello", string(obj.Data))

	_, err = m.GetObject(ctx, "docs/a.txt", 2)
	assert.ErrorIs(t, err, ErrObjectTooLarge)

	require.NoError(t, m.DeleteObject(ctx, "docs/a.txt"))
	_, err = m.GetObject(ctx, "docs/a.txt", 0)
	assert.ErrorIs(t, err, ErrObjectNotFound)

	assert.Equal(t, "https://cdn.test/docs/a.txt", m.PublicURL("docs/a.txt"))
}
