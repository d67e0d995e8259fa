// Package cache provides a thread-safe generic map and the rendered content cache.
package cache

import "sync"

type Cache[K comparable, V any] struct {
	mu    sync.RWMutex
	items map[K]V
}

func NewCache[K comparable, V any]() *Cache[K, V] {
	return &Cache[K, V]{
		items: make(map[K]V),
	}
}

func (c *Cache[K, V]) Get(key K) (V, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	val, ok := c.items[key]
	return val, ok
}

func (c *Cache[K, V]) Set(key K, value V) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.items[key] = value
}

func (c *Cache[K, V]) Delete(key K) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.items, key)
}

func (c *Cache[K, V]) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.items)
}

func (c *Cache[K, V]) Clear() {
	c.SetTo(nil)
}

// SetTo replaces the whole content in one step. Readers see either the old
// or the new items, never a mix. A nil map empties the cache.
func (c *Cache[K, V]) SetTo(items map[K]V) {
	if items == nil {
		items = make(map[K]V)
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.items = items
}

// Rendered is a Markdown body rendered to HTML, with whatever metadata the
// renderer extracted from it.
type Rendered struct {
	HTML  []byte
	Extra any
}

var renderedCache = NewCache[string, *Rendered]()

func renderedKey(contentHash, renderer, syntaxTheme string) string {
	return renderer + ":" + syntaxTheme + ":" + contentHash
}

func GetRendered(contentHash, renderer, syntaxTheme string) (*Rendered, bool) {
	return renderedCache.Get(renderedKey(contentHash, renderer, syntaxTheme))
}

func SetRendered(contentHash, renderer, syntaxTheme string, html []byte, extra any) {
	renderedCache.Set(renderedKey(contentHash, renderer, syntaxTheme), &Rendered{
		HTML:  html,
		Extra: extra,
	})
}

func ClearRendered() {
	renderedCache.Clear()
}
