package rates

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRefresher_RefreshesUntilStopped(t *testing.T) {
	fetcher := &fakeFetcher{rates: upstreamRates("117")}
	cache := NewCache(CacheConfig{Fetcher: fetcher, TTL: time.Hour})

	refresher := NewRefresher(cache, 10*time.Millisecond)
	refresher.Start(context.Background())

	require.Eventually(t, func() bool { return fetcher.callCount() >= 2 }, 2*time.Second, 5*time.Millisecond)
	refresher.Stop()

	stoppedAt := fetcher.callCount()
	time.Sleep(30 * time.Millisecond)
	assert.Equal(t, stoppedAt, fetcher.callCount())

	snapshot, ok := cache.Peek()
	require.True(t, ok)
	assert.Equal(t, SourceUpstream, snapshot.Source)
}

func TestRefresher_ExitsOnContextCancel(t *testing.T) {
	fetcher := &fakeFetcher{rates: upstreamRates("117")}
	cache := NewCache(CacheConfig{Fetcher: fetcher})

	ctx, cancel := context.WithCancel(context.Background())
	refresher := NewRefresher(cache, time.Hour)
	refresher.Start(ctx)

	require.Eventually(t, func() bool { return fetcher.callCount() == 1 }, 2*time.Second, 5*time.Millisecond)
	cancel()

	select {
	case <-refresher.doneChan:
	case <-time.After(2 * time.Second):
		t.Fatal("refresher did not exit after cancel")
	}
}
