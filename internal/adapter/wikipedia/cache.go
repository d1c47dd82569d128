package wikipedia

import (
	"context"
	"sync"

	"github.com/couchcryptid/climate-graph/internal/domain"
	"github.com/couchcryptid/climate-graph/internal/observability"
	"golang.org/x/sync/singleflight"
)

// CachedFetcher wraps a PageFetcher with an in-memory LRU cache. Concurrent
// requests for the same title share one upstream call.
type CachedFetcher struct {
	inner   domain.PageFetcher
	cache   *lruCache
	group   singleflight.Group
	metrics *observability.Metrics
}

// NewCachedFetcher creates a cache decorator around a page fetcher.
func NewCachedFetcher(inner domain.PageFetcher, maxEntries int, metrics *observability.Metrics) *CachedFetcher {
	return &CachedFetcher{
		inner:   inner,
		cache:   newLRUCache(maxEntries),
		metrics: metrics,
	}
}

// FetchPage returns the cached page for title or fetches it. Missing pages are
// cached too; transport errors are not.
func (c *CachedFetcher) FetchPage(ctx context.Context, title string) (domain.Page, error) {
	if p, ok := c.cache.get(title); ok {
		c.metrics.CacheLookups.WithLabelValues("memory", "hit").Inc()
		return p, nil
	}
	c.metrics.CacheLookups.WithLabelValues("memory", "miss").Inc()

	// The fetch is shared, so one caller giving up must not fail the others.
	shared := context.WithoutCancel(ctx)
	ch := c.group.DoChan(title, func() (any, error) {
		p, err := c.inner.FetchPage(shared, title)
		if err != nil {
			return domain.Page{}, err
		}
		c.cache.put(title, p)
		return p, nil
	})
	select {
	case <-ctx.Done():
		return domain.Page{}, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return domain.Page{}, res.Err
		}
		return res.Val.(domain.Page), nil
	}
}

// Forget drops titles from the memory layer.
func (c *CachedFetcher) Forget(titles ...string) {
	for _, t := range titles {
		c.cache.delete(t)
	}
}

// ForgetAll empties the memory layer.
func (c *CachedFetcher) ForgetAll() {
	c.cache.clear()
}

// lruCache is a simple thread-safe LRU cache of pages keyed by title.
type lruCache struct {
	maxEntries int
	mu         sync.Mutex
	entries    map[string]*entry
	head       *entry // most recently used
	tail       *entry // least recently used
}

type entry struct {
	key   string
	value domain.Page
	prev  *entry
	next  *entry
}

func newLRUCache(maxEntries int) *lruCache {
	return &lruCache{
		maxEntries: maxEntries,
		entries:    make(map[string]*entry),
	}
}

func (c *lruCache) get(key string) (domain.Page, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.entries[key]
	if !ok {
		return domain.Page{}, false
	}
	c.moveToFront(e)
	return e.value, true
}

func (c *lruCache) put(key string, value domain.Page) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if e, ok := c.entries[key]; ok {
		e.value = value
		c.moveToFront(e)
		return
	}

	e := &entry{key: key, value: value}
	c.entries[key] = e
	c.addToFront(e)

	if len(c.entries) > c.maxEntries {
		c.evictTail()
	}
}

func (c *lruCache) delete(key string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if e, ok := c.entries[key]; ok {
		delete(c.entries, key)
		c.remove(e)
	}
}

func (c *lruCache) clear() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.entries = make(map[string]*entry)
	c.head, c.tail = nil, nil
}

func (c *lruCache) len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

func (c *lruCache) moveToFront(e *entry) {
	if e == c.head {
		return
	}
	c.remove(e)
	c.addToFront(e)
}

func (c *lruCache) addToFront(e *entry) {
	e.next = c.head
	e.prev = nil
	if c.head != nil {
		c.head.prev = e
	}
	c.head = e
	if c.tail == nil {
		c.tail = e
	}
}

func (c *lruCache) remove(e *entry) {
	if e.prev != nil {
		e.prev.next = e.next
	} else {
		c.head = e.next
	}
	if e.next != nil {
		e.next.prev = e.prev
	} else {
		c.tail = e.prev
	}
}

func (c *lruCache) evictTail() {
	if c.tail == nil {
		return
	}
	delete(c.entries, c.tail.key)
	c.remove(c.tail)
}
