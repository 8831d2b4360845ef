package resolver

import (
	"context"
	"sync"

	"github.com/nao1215/litfeed/internal/model"
)

// Cache stores resolved documents keyed by (language, identifier).
// Archive content is treated as immutable, so entries are never invalidated.
// Implementations must be safe for concurrent use.
type Cache interface {
	Get(ctx context.Context, key model.CacheKey) (*model.Document, bool)
	Put(ctx context.Context, key model.CacheKey, doc *model.Document)
}

// MemoryCache is a session-scoped in-memory Cache.
type MemoryCache struct {
	mu   sync.RWMutex
	docs map[model.CacheKey]*model.Document
}

// NewMemoryCache creates an empty MemoryCache.
func NewMemoryCache() *MemoryCache {
	return &MemoryCache{docs: make(map[model.CacheKey]*model.Document)}
}

// Get implements Cache.
func (c *MemoryCache) Get(_ context.Context, key model.CacheKey) (*model.Document, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	doc, ok := c.docs[key]
	return doc, ok
}

// Put implements Cache.
func (c *MemoryCache) Put(_ context.Context, key model.CacheKey, doc *model.Document) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.docs[key] = doc
}

// Len returns the number of cached documents.
func (c *MemoryCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.docs)
}
