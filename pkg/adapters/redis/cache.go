package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/aretw0/hsmgen/pkg/domain"
	backend "github.com/redis/go-redis/v9"
)

// farFuture is the index score of entries without a TTL (2100-01-01).
const farFuture = 4102444800

// Cache implements ports.ModelCache using Redis.
// Values are JSON arrays of diagrams; a sorted set indexes the live keys by expiry.
type Cache struct {
	client *backend.Client
	prefix string
	ttl    time.Duration
}

type Option func(*Cache)

// WithTTL sets the expiration for entries.
func WithTTL(ttl time.Duration) Option {
	return func(c *Cache) {
		c.ttl = ttl
	}
}

// WithPrefix sets the key prefix for entries.
func WithPrefix(prefix string) Option {
	return func(c *Cache) {
		c.prefix = prefix
	}
}

// New creates a new Redis cache with options.
func New(address, password string, db int, opts ...Option) *Cache {
	rdb := backend.NewClient(&backend.Options{
		Addr:     address,
		Password: password,
		DB:       db,
	})
	return NewFromClient(rdb, opts...)
}

// NewFromClient creates a new Redis cache from an existing client.
func NewFromClient(client *backend.Client, opts ...Option) *Cache {
	c := &Cache{
		client: client,
		prefix: "hsmgen:model:",
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

func (c *Cache) key(k string) string {
	return c.prefix + k
}

func (c *Cache) indexKey() string {
	return c.prefix + "index"
}

// Ping checks connectivity.
func (c *Cache) Ping(ctx context.Context) error {
	return c.client.Ping(ctx).Err()
}

// Put stores the diagrams and records the key in the index.
func (c *Cache) Put(ctx context.Context, key string, diagrams []*domain.Diagram) error {
	data, err := json.Marshal(diagrams)
	if err != nil {
		return fmt.Errorf("failed to marshal diagrams: %w", err)
	}

	score := float64(time.Now().Add(c.ttl).Unix())
	if c.ttl == 0 {
		score = farFuture
	}

	pipe := c.client.Pipeline()
	pipe.Set(ctx, c.key(key), data, c.ttl)
	pipe.ZAdd(ctx, c.indexKey(), backend.Z{
		Score:  score,
		Member: key,
	})

	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to save to redis: %w", err)
	}
	return nil
}

// Get retrieves the diagrams stored under key.
func (c *Cache) Get(ctx context.Context, key string) ([]*domain.Diagram, error) {
	val, err := c.client.Get(ctx, c.key(key)).Bytes()
	if err != nil {
		if errors.Is(err, backend.Nil) {
			return nil, domain.ErrCacheMiss
		}
		return nil, fmt.Errorf("failed to get from redis: %w", err)
	}

	var diagrams []*domain.Diagram
	if err := json.Unmarshal(val, &diagrams); err != nil {
		return nil, fmt.Errorf("failed to unmarshal diagrams: %w", err)
	}
	return diagrams, nil
}

// Delete removes the entry and its index member.
func (c *Cache) Delete(ctx context.Context, key string) error {
	pipe := c.client.Pipeline()
	pipe.Del(ctx, c.key(key))
	pipe.ZRem(ctx, c.indexKey(), key)

	_, err := pipe.Exec(ctx)
	return err
}

// List returns live keys, pruning expired ones from the index first.
func (c *Cache) List(ctx context.Context) ([]string, error) {
	now := float64(time.Now().Unix())
	if err := c.client.ZRemRangeByScore(ctx, c.indexKey(), "-inf", fmt.Sprintf("%f", now)).Err(); err != nil {
		return nil, fmt.Errorf("failed to prune expired entries: %w", err)
	}

	keys, err := c.client.ZRange(ctx, c.indexKey(), 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to list entries: %w", err)
	}
	return keys, nil
}

// Close closes the redis client.
func (c *Cache) Close() error {
	return c.client.Close()
}
