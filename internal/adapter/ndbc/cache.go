package ndbc

import (
	"container/list"
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/stonezone/surfcastai/internal/domain"
	"github.com/stonezone/surfcastai/internal/observability"
	"github.com/stonezone/surfcastai/internal/validation"
)

// CachedFetcher wraps an ObservationFetcher with a bounded in-memory LRU
// cache. Keys bucket the requested window to the hour, so repeated
// validation runs over the same span hit the cache instead of NDBC.
type CachedFetcher struct {
	inner   validation.ObservationFetcher
	metrics *observability.Metrics

	mu         sync.Mutex
	maxEntries int
	order      *list.List               // front = most recently used
	entries    map[string]*list.Element // value: *cacheEntry
}

type cacheEntry struct {
	key     string
	actuals []domain.Actual
}

// NewCachedFetcher creates a cache decorator around a fetcher.
func NewCachedFetcher(inner validation.ObservationFetcher, maxEntries int, metrics *observability.Metrics) *CachedFetcher {
	return &CachedFetcher{
		inner:      inner,
		metrics:    metrics,
		maxEntries: maxEntries,
		order:      list.New(),
		entries:    make(map[string]*list.Element),
	}
}

func (c *CachedFetcher) FetchObservations(ctx context.Context, shore string, start, end time.Time) ([]domain.Actual, error) {
	key := fmt.Sprintf("%s|%d|%d", shore, start.Truncate(time.Hour).Unix(), end.Truncate(time.Hour).Unix())

	if actuals, ok := c.get(key); ok {
		c.metrics.ObservationCache.WithLabelValues("hit").Inc()
		return actuals, nil
	}
	c.metrics.ObservationCache.WithLabelValues("miss").Inc()

	actuals, err := c.inner.FetchObservations(ctx, shore, start, end)
	if err != nil {
		return nil, err
	}
	// Empty results are not cached so a shore with late-arriving data can
	// be retried on the next run.
	if len(actuals) > 0 {
		c.put(key, actuals)
	}
	return actuals, nil
}

func (c *CachedFetcher) get(key string) ([]domain.Actual, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	elem, ok := c.entries[key]
	if !ok {
		return nil, false
	}
	c.order.MoveToFront(elem)
	return elem.Value.(*cacheEntry).actuals, true
}

func (c *CachedFetcher) put(key string, actuals []domain.Actual) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if elem, ok := c.entries[key]; ok {
		elem.Value.(*cacheEntry).actuals = actuals
		c.order.MoveToFront(elem)
		return
	}

	c.entries[key] = c.order.PushFront(&cacheEntry{key: key, actuals: actuals})

	if c.order.Len() > c.maxEntries {
		tail := c.order.Back()
		c.order.Remove(tail)
		delete(c.entries, tail.Value.(*cacheEntry).key)
	}
}
