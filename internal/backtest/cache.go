package backtest

import (
	"sync"
	"time"

	"github.com/google/uuid"
)

type cacheEntry struct {
	result    *Result
	expiresAt time.Time
}

// ResultCache keeps recent backtest results in memory so their outcome
// ledgers can be fetched after the run response has been sent.
type ResultCache struct {
	mu    sync.RWMutex
	store map[string]cacheEntry
	ttl   time.Duration
	now   func() time.Time
}

func NewResultCache(ttl time.Duration) *ResultCache {
	if ttl <= 0 {
		ttl = time.Hour
	}
	return &ResultCache{
		store: make(map[string]cacheEntry),
		ttl:   ttl,
		now:   time.Now,
	}
}

// Put stores a result under a fresh id. Expired entries are swept on write.
func (c *ResultCache) Put(r *Result) string {
	id := uuid.NewString()

	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.now()
	for k, e := range c.store {
		if now.After(e.expiresAt) {
			delete(c.store, k)
		}
	}
	c.store[id] = cacheEntry{result: r, expiresAt: now.Add(c.ttl)}
	return id
}

// Get returns a cached result if present and not expired.
func (c *ResultCache) Get(id string) (*Result, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	e, ok := c.store[id]
	if !ok || c.now().After(e.expiresAt) {
		return nil, false
	}
	return e.result, true
}

func (c *ResultCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.store)
}
