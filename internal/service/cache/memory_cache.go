package cache

import (
	"context"
	"sync"
	"time"

	"FinSight/internal/domain/models"
)

type entry struct {
	resp *models.QueryResponse
	exp  time.Time
}

// MemoryAnswerCache keeps answered queries in-process with a TTL.
type MemoryAnswerCache struct {
	mu  sync.RWMutex
	m   map[string]entry
	ttl time.Duration
}

func NewMemoryAnswerCache(ttl time.Duration) *MemoryAnswerCache {
	return &MemoryAnswerCache{m: make(map[string]entry), ttl: ttl}
}

func (c *MemoryAnswerCache) Get(_ context.Context, key string) (*models.QueryResponse, bool) {
	c.mu.RLock()
	e, ok := c.m[key]
	c.mu.RUnlock()
	if !ok {
		return nil, false
	}
	if !e.exp.IsZero() && time.Now().After(e.exp) {
		c.mu.Lock()
		delete(c.m, key)
		c.mu.Unlock()
		return nil, false
	}
	return e.resp, true
}

func (c *MemoryAnswerCache) Set(_ context.Context, key string, resp *models.QueryResponse) {
	var exp time.Time
	if c.ttl > 0 {
		exp = time.Now().Add(c.ttl)
	}
	c.mu.Lock()
	c.m[key] = entry{resp: resp, exp: exp}
	c.mu.Unlock()
}
