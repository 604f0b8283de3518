package cache

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryCache_JSONRoundTrip(t *testing.T) {
	ctx := context.Background()
	c := NewMemoryCache(16, time.Minute)

	var got map[string]int
	hit, err := GetJSON(ctx, c, "qc:ws1:summary:30", &got)
	require.NoError(t, err)
	assert.False(t, hit)

	require.NoError(t, SetJSON(ctx, c, "qc:ws1:summary:30", map[string]int{"total": 3}))
	hit, err = GetJSON(ctx, c, "qc:ws1:summary:30", &got)
	require.NoError(t, err)
	assert.True(t, hit)
	assert.Equal(t, 3, got["total"])
}

func TestMemoryCache_DeletePrefix(t *testing.T) {
	ctx := context.Background()
	c := NewMemoryCache(16, time.Minute)
	require.NoError(t, c.Set(ctx, "qc:ws1:a", []byte("1")))
	require.NoError(t, c.Set(ctx, "qc:ws1:b", []byte("2")))
	require.NoError(t, c.Set(ctx, "qc:ws2:a", []byte("3")))

	require.NoError(t, c.DeletePrefix(ctx, "qc:ws1:"))

	_, ok, _ := c.Get(ctx, "qc:ws1:a")
	assert.False(t, ok)
	_, ok, _ = c.Get(ctx, "qc:ws1:b")
	assert.False(t, ok)
	_, ok, _ = c.Get(ctx, "qc:ws2:a")
	assert.True(t, ok)
}

func TestMemoryCache_Expires(t *testing.T) {
	ctx := context.Background()
	c := NewMemoryCache(4, 20*time.Millisecond)
	require.NoError(t, c.Set(ctx, "k", []byte("v")))
	time.Sleep(60 * time.Millisecond)
	_, ok, _ := c.Get(ctx, "k")
	assert.False(t, ok)
}
