package cli

import (
	"context"
	"log/slog"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/aretw0/hsmgen"
	"github.com/aretw0/hsmgen/internal/adapters/file"
	"github.com/aretw0/hsmgen/internal/config"
	"github.com/aretw0/hsmgen/pkg/adapters/memory"
	"github.com/aretw0/hsmgen/pkg/adapters/redis"
	"github.com/aretw0/hsmgen/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewCache(t *testing.T) {
	t.Run("none", func(t *testing.T) {
		c, closer, err := NewCache(config.CacheConfig{Backend: config.CacheNone})
		require.NoError(t, err)
		assert.Nil(t, c)
		assert.NoError(t, closer())
	})

	t.Run("memory", func(t *testing.T) {
		c, _, err := NewCache(config.CacheConfig{Backend: config.CacheMemory})
		require.NoError(t, err)
		assert.IsType(t, &memory.Cache{}, c)
	})

	t.Run("file", func(t *testing.T) {
		c, _, err := NewCache(config.CacheConfig{Backend: config.CacheFile, Dir: t.TempDir()})
		require.NoError(t, err)
		assert.IsType(t, &file.Cache{}, c)
	})

	t.Run("redis", func(t *testing.T) {
		mr := miniredis.RunT(t)
		c, closer, err := NewCache(config.CacheConfig{Backend: config.CacheRedis, Addr: mr.Addr(), Prefix: "test:"})
		require.NoError(t, err)
		defer closer()

		rc, ok := c.(*redis.Cache)
		require.True(t, ok)
		require.NoError(t, rc.Ping(context.Background()))
		require.NoError(t, c.Put(context.Background(), "k", nil))
		assert.True(t, mr.Exists("test:k"))
	})

	t.Run("unknown", func(t *testing.T) {
		_, closer, err := NewCache(config.CacheConfig{Backend: "etcd"})
		assert.Error(t, err)
		assert.NotNil(t, closer)
	})
}

func TestGeneratorOptions(t *testing.T) {
	cfg := config.Default()
	cfg.Parser.Unterminated = string(domain.UnterminatedEmit)
	cfg.Parser.LinePrefixes = []string{"#"}

	opts, err := GeneratorOptions(cfg, slog.Default(), memory.NewCache())
	require.NoError(t, err)

	g := hsmgen.New(opts...)
	assert.Equal(t, domain.UnterminatedEmit, g.ParserOptions().Unterminated)

	res, err := g.ParseString(context.Background(), "# @startuml m\n# [*] --> A\n", "t")
	require.NoError(t, err)
	require.Len(t, res.Diagrams, 1)
	assert.Equal(t, "A", res.Diagrams[0].Inits[domain.RootState])

	cfg.Parser.Hierarchy = "loose"
	_, err = GeneratorOptions(cfg, slog.Default(), nil)
	assert.Error(t, err)
}

func TestNewLogger(t *testing.T) {
	cfg := config.Default()

	logger, err := NewLogger(cfg, false)
	require.NoError(t, err)
	assert.False(t, logger.Enabled(context.Background(), slog.LevelDebug))

	logger, err = NewLogger(cfg, true)
	require.NoError(t, err)
	assert.True(t, logger.Enabled(context.Background(), slog.LevelDebug))

	cfg.Log.Level = "chatty"
	_, err = NewLogger(cfg, false)
	assert.Error(t, err)
}
