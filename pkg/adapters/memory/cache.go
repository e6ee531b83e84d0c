package memory

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"sync"

	"github.com/aretw0/hsmgen/pkg/domain"
)

// Cache implements ports.ModelCache in memory.
// Entries are held in their JSON form, so every read hands out a fresh copy.
// Safe for concurrent use.
type Cache struct {
	data map[string][]byte
	mu   sync.RWMutex
}

// NewCache creates a new in-memory cache.
func NewCache() *Cache {
	return &Cache{
		data: make(map[string][]byte),
	}
}

// Get retrieves the diagrams stored under key.
func (c *Cache) Get(ctx context.Context, key string) ([]*domain.Diagram, error) {
	c.mu.RLock()
	raw, ok := c.data[key]
	c.mu.RUnlock()
	if !ok {
		return nil, domain.ErrCacheMiss
	}

	var diagrams []*domain.Diagram
	if err := json.Unmarshal(raw, &diagrams); err != nil {
		return nil, fmt.Errorf("failed to unmarshal cached diagrams: %w", err)
	}
	return diagrams, nil
}

// Put stores a copy of diagrams.
func (c *Cache) Put(ctx context.Context, key string, diagrams []*domain.Diagram) error {
	raw, err := json.Marshal(diagrams)
	if err != nil {
		return fmt.Errorf("failed to marshal diagrams: %w", err)
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.data[key] = raw
	return nil
}

// Delete removes the entry.
func (c *Cache) Delete(ctx context.Context, key string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.data, key)
	return nil
}

// List returns the cached keys in sorted order.
func (c *Cache) List(ctx context.Context) ([]string, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	keys := make([]string, 0, len(c.data))
	for k := range c.data {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys, nil
}
