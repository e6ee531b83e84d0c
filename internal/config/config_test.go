package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/aretw0/hsmgen/internal/compiler"
	"github.com/aretw0/hsmgen/internal/generator"
	"github.com/aretw0/hsmgen/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefault_IsValid(t *testing.T) {
	assert.NoError(t, Default().Validate())
}

func TestParse_Empty(t *testing.T) {
	cfg, err := Parse(nil)
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestParse_OverridesDefaults(t *testing.T) {
	cfg, err := Parse([]byte(`
extensions: [.hpp]
suffix: _Machine
formats: [json, mermaid]
workers: 4
parser:
  unterminated: emit
  hierarchy: strict
  line_prefixes: ["//", "*"]
cache:
  backend: redis
  ttl: 10m
log:
  level: debug
`))
	require.NoError(t, err)

	assert.Equal(t, []string{".hpp"}, cfg.Extensions)
	assert.Equal(t, "_Machine", cfg.Suffix)
	assert.Equal(t, []string{"json", "mermaid"}, cfg.Formats)
	assert.Equal(t, 4, cfg.Workers)
	assert.Equal(t, "emit", cfg.Parser.Unterminated)
	assert.Equal(t, "last", cfg.Parser.DuplicateInit, "untouched keys keep defaults")
	assert.Equal(t, []string{"//", "*"}, cfg.Parser.LinePrefixes)
	assert.Equal(t, CacheRedis, cfg.Cache.Backend)
	assert.Equal(t, 10*time.Minute, cfg.Cache.TTL)
	assert.Equal(t, "localhost:6379", cfg.Cache.Addr)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, 8080, cfg.Server.Port)
}

func TestParse_CommaSeparatedList(t *testing.T) {
	cfg, err := Parse([]byte("formats: yaml,json\n"))
	require.NoError(t, err)
	assert.Equal(t, []string{"yaml", "json"}, cfg.Formats)
}

func TestParse_Rejects(t *testing.T) {
	tests := map[string]string{
		"unknown key":       "colour: blue\n",
		"unknown policy":    "parser:\n  hierarchy: loose\n",
		"unknown format":    "formats: [xml]\n",
		"unknown backend":   "cache:\n  backend: etcd\n",
		"bad level":         "log:\n  level: chatty\n",
		"negative workers":  "workers: -1\n",
		"port out of range": "server:\n  port: 70000\n",
		"not yaml":          "parser: [unclosed\n",
	}
	for name, text := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := Parse([]byte(text))
			assert.Error(t, err)
		})
	}
}

func TestParserOptions(t *testing.T) {
	cfg := Default()
	cfg.Parser.DuplicateInit = "error"
	cfg.Parser.LinePrefixes = []string{"#"}

	opts, err := cfg.ParserOptions()
	require.NoError(t, err)

	got := compiler.NewParser(opts...).Options()
	assert.Equal(t, domain.UnterminatedDrop, got.Unterminated)
	assert.Equal(t, domain.InitConflictError, got.DuplicateInit)
	assert.Equal(t, domain.HierarchyTolerant, got.Hierarchy)
	assert.Equal(t, []string{"#"}, got.LinePrefixes)
}

func TestGeneratorFormats(t *testing.T) {
	cfg := Default()
	cfg.Formats = []string{"yaml", "mermaid"}
	got, err := cfg.GeneratorFormats()
	require.NoError(t, err)
	assert.Equal(t, []generator.Format{generator.FormatYAML, generator.FormatMermaid}, got)
}

func TestLoad(t *testing.T) {
	dir := t.TempDir()

	t.Run("explicit file", func(t *testing.T) {
		p := filepath.Join(dir, "custom.yaml")
		require.NoError(t, os.WriteFile(p, []byte("suffix: _X\n"), 0644))
		cfg, err := Load(p)
		require.NoError(t, err)
		assert.Equal(t, "_X", cfg.Suffix)
	})

	t.Run("explicit file missing", func(t *testing.T) {
		_, err := Load(filepath.Join(dir, "absent.yaml"))
		assert.Error(t, err)
	})

	t.Run("error names the file", func(t *testing.T) {
		p := filepath.Join(dir, "bad.yaml")
		require.NoError(t, os.WriteFile(p, []byte("workers: -3\n"), 0644))
		_, err := Load(p)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "bad.yaml")
	})
}
