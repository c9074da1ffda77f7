package cache

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryCache_ExpiryUsesClock(t *testing.T) {
	c := NewMemoryCache()
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	c.now = func() time.Time { return now }
	ctx := context.Background()

	require.NoError(t, c.Set(ctx, "k", []byte("v"), time.Minute))
	require.NoError(t, c.Set(ctx, "forever", []byte("v"), 0))

	now = now.Add(59 * time.Second)
	_, found, _ := c.Get(ctx, "k")
	assert.True(t, found)

	now = now.Add(time.Second)
	_, found, _ = c.Get(ctx, "k")
	assert.False(t, found)
	assert.NotContains(t, c.entries, "k")

	_, found, _ = c.Get(ctx, "forever")
	assert.True(t, found)
}

func TestMemoryCache_ValuesAreCopied(t *testing.T) {
	c := NewMemoryCache()
	ctx := context.Background()

	in := []byte("abc")
	require.NoError(t, c.Set(ctx, "k", in, 0))
	in[0] = 'x'

	out, _, _ := c.Get(ctx, "k")
	assert.Equal(t, []byte("abc"), out)
	out[0] = 'y'

	again, _, _ := c.Get(ctx, "k")
	assert.Equal(t, []byte("abc"), again)
}

func TestMemoryCache_IncrRejectsNonInteger(t *testing.T) {
	c := NewMemoryCache()
	ctx := context.Background()
	require.NoError(t, c.Set(ctx, "k", []byte("nope"), 0))

	_, err := c.IncrWithExpiry(ctx, "k", time.Minute)
	assert.Error(t, err)
}

func TestMemoryCache_PingHonoursContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.ErrorIs(t, NewMemoryCache().Ping(ctx), context.Canceled)
}
