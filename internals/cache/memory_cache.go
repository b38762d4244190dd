package cache

import (
	"context"
	"sync"

	jsoniter "github.com/json-iterator/go"
)

// MemoryCache is an in-process Cache used by tests and redis-less local
// runs. It round-trips values through JSON so stored entries are detached
// from the caller's structs, same as the redis implementation.
type MemoryCache struct {
	mu      sync.RWMutex
	entries map[string][]byte
}

func NewMemoryCache() *MemoryCache {
	return &MemoryCache{entries: map[string][]byte{}}
}

func (c *MemoryCache) Get(_ context.Context, kind Kind, id uint, dest any) bool {
	c.mu.RLock()
	payload, ok := c.entries[Key(kind, id)]
	c.mu.RUnlock()
	if !ok {
		return false
	}
	return jsoniter.Unmarshal(payload, dest) == nil
}

func (c *MemoryCache) Set(_ context.Context, kind Kind, id uint, value any) {
	payload, err := jsoniter.Marshal(value)
	if err != nil {
		return
	}
	c.mu.Lock()
	c.entries[Key(kind, id)] = payload
	c.mu.Unlock()
}

func (c *MemoryCache) Invalidate(_ context.Context, kind Kind, id uint) error {
	c.mu.Lock()
	delete(c.entries, Key(kind, id))
	c.mu.Unlock()
	return nil
}

// Len reports the number of live entries.
func (c *MemoryCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

// Has reports whether an entry exists for the key without decoding it.
func (c *MemoryCache) Has(kind Kind, id uint) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	_, ok := c.entries[Key(kind, id)]
	return ok
}
