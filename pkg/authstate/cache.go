package authstate

import (
	"context"
	"sync"

	"github.com/dentora/dentkit/pkg/profile"
)

// CachedSession is the last fully resolved (identity, profile) pair.
// Only pairs that passed every profile validation are ever cached, so a
// cache hit can be committed without re-validating.
type CachedSession struct {
	Identity Identity        `json:"identity"`
	Profile  profile.Profile `json:"profile"`
}

// CacheStore persists the single cached pair between resolutions.
// Load returns (nil, nil) on a cache miss.
type CacheStore interface {
	Load(ctx context.Context) (*CachedSession, error)
	Save(ctx context.Context, cs CachedSession) error
	Clear(ctx context.Context) error
}

// MemoryCache is the default process-local single-slot cache.
type MemoryCache struct {
	mu   sync.Mutex
	slot *CachedSession
}

// NewMemoryCache creates an empty in-memory session cache.
func NewMemoryCache() *MemoryCache {
	return &MemoryCache{}
}

func (c *MemoryCache) Load(ctx context.Context) (*CachedSession, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.slot == nil {
		return nil, nil
	}
	cs := *c.slot
	return &cs, nil
}

func (c *MemoryCache) Save(ctx context.Context, cs CachedSession) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.slot = &cs
	return nil
}

func (c *MemoryCache) Clear(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.slot = nil
	return nil
}
