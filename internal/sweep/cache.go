package sweep

import (
	"sync"

	"github.com/idtlab/autoignition/internal/series"
)

// Cache is an explicit, caller-owned condition→series cache. The runner
// consults it (when given one) before invoking the integrator. Never a
// package-level variable; the owner controls its lifetime and invalidation.
type Cache struct {
	mu sync.RWMutex
	m  map[string]*series.Series
}

// NewCache returns an empty cache.
func NewCache() *Cache {
	return &Cache{m: make(map[string]*series.Series)}
}

// Get returns the cached series for the condition, if any.
func (c *Cache) Get(cond ConditionPoint) (*series.Series, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	s, ok := c.m[cond.Key()]
	return s, ok
}

// Put stores the series for the condition, replacing any previous entry.
func (c *Cache) Put(cond ConditionPoint, s *series.Series) {
	c.mu.Lock()
	c.m[cond.Key()] = s
	c.mu.Unlock()
}

// Invalidate removes the entry for the condition.
func (c *Cache) Invalidate(cond ConditionPoint) {
	c.mu.Lock()
	delete(c.m, cond.Key())
	c.mu.Unlock()
}

// Clear removes all entries.
func (c *Cache) Clear() {
	c.mu.Lock()
	c.m = make(map[string]*series.Series)
	c.mu.Unlock()
}

// Len reports the number of cached series.
func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.m)
}
