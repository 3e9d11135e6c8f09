package cache

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type cachedSummary struct {
	PageViews int      `json:"page_views"`
	Top       []string `json:"top"`
}

func TestMemoryValueCache(t *testing.T) {
	c := NewMemoryValueCache()
	now := time.Now()
	c.now = func() time.Time { return now }
	ctx := context.Background()

	var got cachedSummary
	hit, err := c.Get(ctx, "site:7d", &got)
	require.NoError(t, err)
	assert.False(t, hit)

	require.NoError(t, c.Set(ctx, "site:7d", cachedSummary{PageViews: 42, Top: []string{"/"}}, time.Minute))
	hit, err = c.Get(ctx, "site:7d", &got)
	require.NoError(t, err)
	assert.True(t, hit)
	assert.Equal(t, 42, got.PageViews)

	now = now.Add(2 * time.Minute)
	hit, err = c.Get(ctx, "site:7d", &got)
	require.NoError(t, err)
	assert.False(t, hit)
}

func TestMemoryValueCache_DeletePrefix(t *testing.T) {
	c := NewMemoryValueCache()
	ctx := context.Background()
	require.NoError(t, c.Set(ctx, "owner:1:7d", 1, time.Hour))
	require.NoError(t, c.Set(ctx, "owner:1:30d", 2, time.Hour))
	require.NoError(t, c.Set(ctx, "site:7d", 3, time.Hour))

	require.NoError(t, c.DeletePrefix(ctx, "owner:1:"))

	var v int
	hit, _ := c.Get(ctx, "owner:1:7d", &v)
	assert.False(t, hit)
	hit, _ = c.Get(ctx, "site:7d", &v)
	assert.True(t, hit)
	assert.Equal(t, 3, v)
}
