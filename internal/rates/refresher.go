package rates

import (
	"context"
	"time"

	"go.uber.org/zap"
)

// Refresher keeps the cache warm by refreshing it on a fixed interval so
// request paths rarely wait on upstream.
type Refresher struct {
	cache    *Cache
	interval time.Duration

	// Control channels
	stopChan chan struct{}
	doneChan chan struct{}
}

func NewRefresher(cache *Cache, interval time.Duration) *Refresher {
	return &Refresher{
		cache:    cache,
		interval: interval,
		stopChan: make(chan struct{}),
		doneChan: make(chan struct{}),
	}
}

// Start launches the refresh loop. The first refresh happens immediately.
func (r *Refresher) Start(ctx context.Context) {
	zap.L().Info("Starting exchange rate refresher", zap.Duration("interval", r.interval))
	go r.refreshLoop(ctx)
}

// Stop ends the refresh loop and waits for it to exit. It must be called
// at most once, after Start.
func (r *Refresher) Stop() {
	zap.L().Info("Stopping exchange rate refresher")
	close(r.stopChan)
	<-r.doneChan
	zap.L().Info("Exchange rate refresher stopped")
}

func (r *Refresher) refreshLoop(ctx context.Context) {
	defer close(r.doneChan)

	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	r.refresh(ctx)

	for {
		select {
		case <-ticker.C:
			r.refresh(ctx)
		case <-r.stopChan:
			return
		case <-ctx.Done():
			return
		}
	}
}

func (r *Refresher) refresh(ctx context.Context) {
	snapshot := r.cache.Refresh(ctx)
	zap.L().Debug("Exchange rates refreshed in background",
		zap.String("source", snapshot.Source),
		zap.Time("fetched_at", snapshot.FetchedAt))
}
