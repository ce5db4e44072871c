package rates

import (
	"context"
	"sync"
	"time"

	"finance-tracker-go/internal/currency"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

const (
	SourceUpstream = "upstream"
	SourceFallback = "fallback"

	DefaultTTL     = time.Hour
	DefaultTimeout = 5 * time.Second
)

var (
	cacheLookups = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "finance_rates_cache_lookups_total",
		Help: "Exchange rate lookups, labeled by whether the cached snapshot was fresh",
	}, []string{"result"})

	upstreamFetches = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "finance_rates_upstream_fetches_total",
		Help: "Upstream exchange rate fetches, labeled by outcome",
	}, []string{"outcome"})
)

// Fetcher retrieves the latest rates, expressed as RSD per unit.
type Fetcher interface {
	Fetch(ctx context.Context) (currency.Rates, error)
}

// Snapshot is one consistent set of rates. FetchedAt is zero when the
// rates never came from upstream.
type Snapshot struct {
	Rates     currency.Rates
	FetchedAt time.Time
	Source    string
}

func (s Snapshot) clone() Snapshot {
	s.Rates = s.Rates.Clone()
	return s
}

// CacheConfig contains configuration for Cache
type CacheConfig struct {
	Fetcher       Fetcher
	Fallback      currency.Rates
	TTL           time.Duration
	RetryInterval time.Duration
	Timeout       time.Duration
	Now           func() time.Time
}

// Cache serves exchange rates from memory and refreshes them from upstream
// once they are older than the TTL. It never returns an error: when upstream
// fails it serves the last good snapshot, or the fallback rates if it never
// had one.
type Cache struct {
	fetcher       Fetcher
	fallback      currency.Rates
	ttl           time.Duration
	retryInterval time.Duration
	timeout       time.Duration
	now           func() time.Time

	mutex       sync.RWMutex
	snapshot    *Snapshot
	nextAttempt time.Time

	group singleflight.Group
}

func NewCache(cfg CacheConfig) *Cache {
	c := &Cache{
		fetcher:       cfg.Fetcher,
		fallback:      cfg.Fallback.Clone(),
		ttl:           cfg.TTL,
		retryInterval: cfg.RetryInterval,
		timeout:       cfg.Timeout,
		now:           cfg.Now,
	}
	if c.ttl <= 0 {
		c.ttl = DefaultTTL
	}
	if c.retryInterval <= 0 {
		c.retryInterval = c.ttl
	}
	if c.timeout <= 0 {
		c.timeout = DefaultTimeout
	}
	if c.now == nil {
		c.now = time.Now
	}
	return c
}

// Rates returns the cached snapshot while it is fresh and otherwise
// refreshes it. Concurrent callers share one upstream request.
func (c *Cache) Rates(ctx context.Context) Snapshot {
	if snapshot, ok := c.fresh(); ok {
		cacheLookups.WithLabelValues("hit").Inc()
		return snapshot
	}
	cacheLookups.WithLabelValues("miss").Inc()

	result, _, _ := c.group.Do("rates", func() (any, error) {
		// Another caller may have refreshed while this one waited
		if snapshot, ok := c.fresh(); ok {
			return snapshot, nil
		}
		return c.fetch(ctx), nil
	})
	return result.(Snapshot).clone()
}

// Refresh fetches from upstream regardless of the snapshot age.
func (c *Cache) Refresh(ctx context.Context) Snapshot {
	result, _, _ := c.group.Do("rates", func() (any, error) {
		return c.fetch(ctx), nil
	})
	return result.(Snapshot).clone()
}

// Peek returns the cached snapshot without touching upstream.
func (c *Cache) Peek() (Snapshot, bool) {
	c.mutex.RLock()
	defer c.mutex.RUnlock()

	if c.snapshot == nil {
		return Snapshot{}, false
	}
	return c.snapshot.clone(), true
}

func (c *Cache) fresh() (Snapshot, bool) {
	c.mutex.RLock()
	defer c.mutex.RUnlock()

	if c.snapshot == nil || !c.now().Before(c.nextAttempt) {
		return Snapshot{}, false
	}
	return c.snapshot.clone(), true
}

func (c *Cache) fetch(ctx context.Context) Snapshot {
	// The shared request must outlive the caller that happened to start it
	fetchCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), c.timeout)
	defer cancel()

	rates, err := c.fetcher.Fetch(fetchCtx)
	now := c.now()

	c.mutex.Lock()
	defer c.mutex.Unlock()

	if err == nil {
		upstreamFetches.WithLabelValues("success").Inc()
		c.snapshot = &Snapshot{Rates: rates.Clone(), FetchedAt: now, Source: SourceUpstream}
		c.nextAttempt = now.Add(c.ttl)

		zap.L().Info("Exchange rates refreshed",
			zap.Int("currencies", len(rates)),
			zap.Time("next_refresh", c.nextAttempt))
		return c.snapshot.clone()
	}

	upstreamFetches.WithLabelValues("failure").Inc()
	c.nextAttempt = now.Add(c.retryInterval)

	if c.snapshot == nil {
		c.snapshot = &Snapshot{Rates: c.fallback.Clone(), Source: SourceFallback}
		zap.L().Warn("Exchange rate fetch failed, using fallback rates",
			zap.Error(err),
			zap.Time("next_attempt", c.nextAttempt))
	} else {
		zap.L().Warn("Exchange rate fetch failed, keeping last snapshot",
			zap.Error(err),
			zap.String("source", c.snapshot.Source),
			zap.Time("fetched_at", c.snapshot.FetchedAt),
			zap.Time("next_attempt", c.nextAttempt))
	}
	return c.snapshot.clone()
}
