package matclass

import (
	"strings"
	"sync"
)

// AnalysisCache is a caller-owned, concurrency-safe cache of texture analyses
// keyed by texture path, family and slot. The engine never keeps one itself;
// lifetime and invalidation policy belong to the host. A nil cache is valid
// and caches nothing.
type AnalysisCache struct {
	items map[string]TextureAnalysis
	mu    sync.RWMutex
}

// NewAnalysisCache creates an empty cache.
func NewAnalysisCache() *AnalysisCache {
	return &AnalysisCache{items: make(map[string]TextureAnalysis)}
}

// Len returns the number of cached analyses.
func (c *AnalysisCache) Len() int {
	if c == nil {
		return 0
	}
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.items)
}

// Invalidate drops every cached analysis of path.
func (c *AnalysisCache) Invalidate(path string) {
	if c == nil {
		return
	}
	prefix := path + "\x00"
	c.mu.Lock()
	for k := range c.items {
		if strings.HasPrefix(k, prefix) {
			delete(c.items, k)
		}
	}
	c.mu.Unlock()
}

// Reset drops every cached analysis.
func (c *AnalysisCache) Reset() {
	if c == nil {
		return
	}
	c.mu.Lock()
	c.items = make(map[string]TextureAnalysis)
	c.mu.Unlock()
}

func (c *AnalysisCache) get(key string) (TextureAnalysis, bool) {
	if c == nil {
		return TextureAnalysis{}, false
	}
	c.mu.RLock()
	a, ok := c.items[key]
	c.mu.RUnlock()
	if ok {
		a.Recommendations = append([]string(nil), a.Recommendations...)
	}
	return a, ok
}

func (c *AnalysisCache) put(key string, a TextureAnalysis) {
	if c == nil {
		return
	}
	a.Recommendations = append([]string(nil), a.Recommendations...)
	c.mu.Lock()
	if c.items == nil {
		c.items = make(map[string]TextureAnalysis)
	}
	if _, exists := c.items[key]; !exists {
		c.items[key] = a
	}
	c.mu.Unlock()
}

// cacheKey builds a cache key; the path comes first so Invalidate can match by prefix.
func cacheKey(path string, family *ShaderFamily, slot string) string {
	id := ""
	if family != nil {
		id = family.ID
	}
	return path + "\x00" + id + "\x00" + slot
}
