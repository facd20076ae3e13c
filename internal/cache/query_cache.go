package cache

import (
	"strings"
	"sync"
	"time"

	gocache "github.com/patrickmn/go-cache"
)

// entry keeps the original key path next to the value so invalidation
// predicates can inspect it.
type entry struct {
	path  []string
	value interface{}
}

// QueryCache memoizes externally fetched entities per window, keyed by
// semantic key paths like ["participants", sessionId]. Entries are
// evicted on invalidation, never repopulated in place; the next reader
// refetches.
type QueryCache struct {
	items *gocache.Cache

	mu sync.Mutex
	// onChange fires after a successful Set or Remove, feeding the
	// cross-window broadcast. Never fired for evictions, which would
	// loop invalidations between windows.
	onChange func(path []string)
}

func NewQueryCache() *QueryCache {
	return &QueryCache{
		items: gocache.New(gocache.NoExpiration, 10*time.Minute),
	}
}

// OnChange registers the broadcast hook.
func (c *QueryCache) OnChange(fn func(path []string)) {
	c.mu.Lock()
	c.onChange = fn
	c.mu.Unlock()
}

func joinPath(path []string) string {
	return strings.Join(path, "\x1f")
}

func (c *QueryCache) Get(path []string) (interface{}, bool) {
	if x, found := c.items.Get(joinPath(path)); found {
		return x.(entry).value, true
	}
	return nil, false
}

// Set stores a fetched value and announces the update.
func (c *QueryCache) Set(path []string, value interface{}) {
	c.items.Set(joinPath(path), entry{path: path, value: value}, gocache.NoExpiration)
	c.fire(path)
}

// Remove deletes an entry and announces the removal.
func (c *QueryCache) Remove(path []string) {
	c.items.Delete(joinPath(path))
	c.fire(path)
}

// Evict deletes an entry without announcing it. Used when applying
// foreign invalidation notices.
func (c *QueryCache) Evict(path []string) {
	c.items.Delete(joinPath(path))
}

// EvictMatching evicts every entry whose path satisfies the predicate.
func (c *QueryCache) EvictMatching(pred func(path []string) bool) {
	for key, item := range c.items.Items() {
		e := item.Object.(entry)
		if pred(e.path) {
			c.items.Delete(key)
		}
	}
}

// Len reports the number of live entries.
func (c *QueryCache) Len() int {
	return c.items.ItemCount()
}

func (c *QueryCache) fire(path []string) {
	c.mu.Lock()
	fn := c.onChange
	c.mu.Unlock()
	if fn != nil {
		fn(path)
	}
}
