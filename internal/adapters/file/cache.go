package file

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/aretw0/hsmgen/pkg/domain"
)

const cacheExt = ".json"

// Cache implements ports.ModelCache using the local filesystem.
// Each entry is one JSON file named after its key.
type Cache struct {
	BasePath string
}

// NewCache creates a new Cache rooted at basePath.
// If basePath is empty, it defaults to ".hsmgen/cache".
func NewCache(basePath string) *Cache {
	if basePath == "" {
		basePath = filepath.Join(".hsmgen", "cache")
	}
	return &Cache{BasePath: basePath}
}

func (c *Cache) path(key string) (string, error) {
	if key == "" {
		return "", fmt.Errorf("cache key cannot be empty")
	}
	if strings.ContainsAny(key, `/\`) || key == "." || key == ".." {
		return "", fmt.Errorf("invalid cache key %q", key)
	}
	return filepath.Join(c.BasePath, key+cacheExt), nil
}

// Get reads the entry for key.
func (c *Cache) Get(ctx context.Context, key string) ([]*domain.Diagram, error) {
	p, err := c.path(key)
	if err != nil {
		return nil, err
	}

	data, err := os.ReadFile(p)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, domain.ErrCacheMiss
		}
		return nil, fmt.Errorf("failed to read cache file: %w", err)
	}

	var diagrams []*domain.Diagram
	if err := json.Unmarshal(data, &diagrams); err != nil {
		return nil, fmt.Errorf("failed to unmarshal cache file %s: %w", p, err)
	}
	return diagrams, nil
}

// Put writes the entry atomically.
func (c *Cache) Put(ctx context.Context, key string, diagrams []*domain.Diagram) error {
	p, err := c.path(key)
	if err != nil {
		return err
	}

	data, err := json.MarshalIndent(diagrams, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal diagrams: %w", err)
	}
	return WriteAtomic(p, data, 0644)
}

// Delete removes the entry file.
func (c *Cache) Delete(ctx context.Context, key string) error {
	p, err := c.path(key)
	if err != nil {
		return err
	}

	if err := os.Remove(p); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to delete cache file: %w", err)
	}
	return nil
}

// List returns all keys with an entry file.
func (c *Cache) List(ctx context.Context) ([]string, error) {
	entries, err := os.ReadDir(c.BasePath)
	if err != nil {
		if os.IsNotExist(err) {
			return []string{}, nil
		}
		return nil, fmt.Errorf("failed to list cache: %w", err)
	}

	keys := []string{}
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || filepath.Ext(name) != cacheExt || strings.HasPrefix(name, "tmp-") {
			continue
		}
		keys = append(keys, strings.TrimSuffix(name, cacheExt))
	}
	sort.Strings(keys)
	return keys, nil
}
