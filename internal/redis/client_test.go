package redis

import (
	"context"
	"testing"
	"time"

	"farmcloud/internal/models"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-redis/redis/v8"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T) (*Client, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client, err := Initialize("redis://" + mr.Addr())
	require.NoError(t, err)
	t.Cleanup(func() { _ = client.Close() })
	return client, mr
}

func TestSettingsCache(t *testing.T) {
	ctx := context.Background()
	client, mr := newTestClient(t)

	_, err := client.GetSettings(ctx)
	assert.ErrorIs(t, err, ErrCacheMiss)

	settings := models.DefaultSettings()
	settings.BusinessName = "Hatta Farm"
	require.NoError(t, client.SetSettings(ctx, &settings, time.Minute))
	assert.True(t, mr.Exists(SettingsKey()))

	cached, err := client.GetSettings(ctx)
	require.NoError(t, err)
	assert.Equal(t, "Hatta Farm", cached.BusinessName)
	assert.True(t, cached.DeliveryFee.Equal(settings.DeliveryFee))

	require.NoError(t, client.InvalidateSettings(ctx))
	_, err = client.GetSettings(ctx)
	assert.ErrorIs(t, err, ErrCacheMiss)
}

func TestNextOrderSequence(t *testing.T) {
	ctx := context.Background()
	client, mr := newTestClient(t)

	for want := 1; want <= 3; want++ {
		got, err := client.NextOrderSequence(ctx, "20240315", 0)
		require.NoError(t, err)
		assert.Equal(t, want, got)
	}

	// A floor above the counter wins, a lower one is ignored.
	got, err := client.NextOrderSequence(ctx, "20240315", 10)
	require.NoError(t, err)
	assert.Equal(t, 11, got)
	got, err = client.NextOrderSequence(ctx, "20240315", 2)
	require.NoError(t, err)
	assert.Equal(t, 12, got)

	ttl := mr.TTL(OrderSequenceKey("20240315"))
	assert.Equal(t, sequenceTTL, ttl)
}

func TestAllowSlidingWindow(t *testing.T) {
	ctx := context.Background()
	client, _ := newTestClient(t)

	for i := 0; i < 3; i++ {
		ok, err := client.Allow(ctx, "10.0.0.1", 3, time.Minute)
		require.NoError(t, err)
		assert.True(t, ok)
	}
	ok, err := client.Allow(ctx, "10.0.0.1", 3, time.Minute)
	require.NoError(t, err)
	assert.False(t, ok)

	ok, err = client.Allow(ctx, "10.0.0.2", 3, time.Minute)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestNewWrapsExistingClient(t *testing.T) {
	mr := miniredis.RunT(t)
	client := New(redis.NewClient(&redis.Options{Addr: mr.Addr()}))
	assert.NoError(t, client.Ping(context.Background()))
}
