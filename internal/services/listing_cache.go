package services

import (
	"context"
	"sync"
	"time"

	"github.com/patrickmn/go-cache"

	"github.com/asgtransit/website-api/internal/database"
	"github.com/asgtransit/website-api/internal/metrics"
	"github.com/asgtransit/website-api/internal/repository"
)

// ListingCache keeps decoded collection listings in memory between writes.
// A ttl of zero or less disables caching. Every invalidation bumps the
// collection's generation; a listing read under an older generation is
// never stored.
type ListingCache struct {
	items *cache.Cache

	mu          sync.Mutex
	generations map[database.Collection]uint64
}

// NewListingCache creates a cache whose entries expire after ttl
func NewListingCache(ttl time.Duration) *ListingCache {
	if ttl <= 0 {
		return &ListingCache{}
	}
	return &ListingCache{
		items:       cache.New(ttl, 2*ttl),
		generations: make(map[database.Collection]uint64),
	}
}

func (c *ListingCache) get(collection database.Collection) (any, bool) {
	if c == nil || c.items == nil {
		return nil, false
	}
	value, found := c.items.Get(string(collection))
	metrics.CacheLookup(string(collection), found)
	return value, found
}

func (c *ListingCache) generation(collection database.Collection) uint64 {
	if c == nil || c.items == nil {
		return 0
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.generations[collection]
}

// setIfCurrent stores value unless the collection was invalidated after gen
// was read
func (c *ListingCache) setIfCurrent(collection database.Collection, gen uint64, value any) {
	if c == nil || c.items == nil {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.generations[collection] != gen {
		return
	}
	c.items.SetDefault(string(collection), value)
}

// Invalidate drops the cached listings of the given collections
func (c *ListingCache) Invalidate(collections ...database.Collection) {
	if c == nil || c.items == nil {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, collection := range collections {
		c.generations[collection]++
		c.items.Delete(string(collection))
	}
}

// cachedList returns the whole collection, from cache when possible.
// Callers must not modify the returned slice.
func cachedList[T any](ctx context.Context, c *ListingCache, repo *repository.Repository[T]) ([]T, error) {
	if value, ok := c.get(repo.Collection()); ok {
		if records, ok := value.([]T); ok {
			return records, nil
		}
	}

	gen := c.generation(repo.Collection())
	records, err := repo.List(ctx)
	if err != nil {
		return nil, err
	}
	c.setIfCurrent(repo.Collection(), gen, records)
	return records, nil
}
