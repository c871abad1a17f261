package cache

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	redisv9 "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type cachedSummary struct {
	Title    string   `json:"title"`
	Sections []string `json:"sections"`
}

func TestSummaryCache_RoundTripAndExpiry(t *testing.T) {
	ctx := context.Background()
	mr := miniredis.RunT(t)
	client := redisv9.NewClient(&redisv9.Options{Addr: mr.Addr()})
	defer client.Close()

	c := NewSummaryCache(client, time.Minute)

	var miss cachedSummary
	found, err := c.Get(ctx, 1, &miss)
	require.NoError(t, err)
	assert.False(t, found)

	require.NoError(t, c.Set(ctx, 1, cachedSummary{Title: "Cells", Sections: []string{"a"}}))

	var hit cachedSummary
	found, err = c.Get(ctx, 1, &hit)
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, "Cells", hit.Title)
	assert.Equal(t, time.Minute, mr.TTL("studymate:summary:1"))

	mr.FastForward(2 * time.Minute)
	found, err = c.Get(ctx, 1, &hit)
	require.NoError(t, err)
	assert.False(t, found)
}

func TestSummaryCache_Delete(t *testing.T) {
	ctx := context.Background()
	mr := miniredis.RunT(t)
	client := redisv9.NewClient(&redisv9.Options{Addr: mr.Addr()})
	defer client.Close()

	c := NewSummaryCache(client, 0)
	require.NoError(t, c.Set(ctx, 7, cachedSummary{Title: "x"}))
	require.NoError(t, c.Delete(ctx, 7))
	require.NoError(t, c.Delete(ctx, 7))

	var out cachedSummary
	found, err := c.Get(ctx, 7, &out)
	require.NoError(t, err)
	assert.False(t, found)
}
