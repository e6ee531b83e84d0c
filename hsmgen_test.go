package hsmgen_test

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/aretw0/hsmgen"
	"github.com/aretw0/hsmgen/pkg/adapters/memory"
	"github.com/aretw0/hsmgen/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const header = `#ifndef __cplusplus
#define __cplusplus

/*
@startuml blinker
[*] -> Off
Off -> On : toggle / led_on
On -> Off : toggle / led_off
@enduml
*/

class Blinker {};
`

type recorder struct {
	diagrams    []string
	diagnostics []domain.Diagnostic
	errs        []error
	hits        []string
	parsed      int
}

func (r *recorder) hooks() domain.ParseHooks {
	return domain.ParseHooks{
		OnDiagram:    func(_ context.Context, e *domain.DiagramEvent) { r.diagrams = append(r.diagrams, e.Diagram.Name) },
		OnDiagnostic: func(_ context.Context, e *domain.DiagnosticEvent) { r.diagnostics = append(r.diagnostics, e.Diagnostic) },
		OnParseError: func(_ context.Context, e *domain.ErrorEvent) { r.errs = append(r.errs, e.Err) },
		OnCacheHit:   func(_ context.Context, e *domain.CacheEvent) { r.hits = append(r.hits, e.Key) },
		OnParsed:     func(context.Context, *domain.ParsedEvent) { r.parsed++ },
	}
}

func TestGenerator_ParseString(t *testing.T) {
	gen := hsmgen.New()
	res, err := gen.ParseString(context.Background(), header, "blinker.hpp")
	require.NoError(t, err)

	require.Len(t, res.Diagrams, 1)
	d := res.Diagrams[0]
	assert.Equal(t, "blinker", d.Name)
	assert.Equal(t, []string{"Off", "On"}, d.States)
	assert.Equal(t, []string{"toggle"}, d.AllEvents)
	assert.Equal(t, []string{"led_off", "led_on"}, d.AllActions)
	assert.Equal(t, "Off", d.Inits[domain.RootState])
	assert.Equal(t, "blinker.hpp", res.Source)
}

func TestGenerator_ParseFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "blinker.hpp")
	require.NoError(t, os.WriteFile(path, []byte(header), 0644))

	res, err := hsmgen.New().ParseFile(context.Background(), path)
	require.NoError(t, err)
	assert.Equal(t, path, res.Source)
	assert.Len(t, res.Diagrams, 1)

	_, err = hsmgen.New().ParseFile(context.Background(), filepath.Join(t.TempDir(), "missing"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestGenerator_Hooks(t *testing.T) {
	rec := &recorder{}
	gen := hsmgen.New(hsmgen.WithHooks(rec.hooks()))

	_, err := gen.ParseString(context.Background(), "@startuml a\nstate A\n%%%\n@enduml\n@startuml b\n@enduml", "x")
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b"}, rec.diagrams)
	require.Len(t, rec.diagnostics, 1)
	assert.Equal(t, 3, rec.diagnostics[0].Line)
	assert.Equal(t, 1, rec.parsed)

	_, err = gen.ParseString(context.Background(), "@startuml a\n}\n@enduml", "x")
	require.Error(t, err)
	require.Len(t, rec.errs, 1)
	assert.ErrorIs(t, rec.errs[0], domain.ErrUnbalancedComposite)
	assert.Equal(t, 1, rec.parsed)
}

func TestGenerator_PolicyOptions(t *testing.T) {
	text := "@startuml m\n[*] -> A\n[*] -> B\n@enduml\n@startuml open\nstate C"

	res, err := hsmgen.New().ParseString(context.Background(), text, "")
	require.NoError(t, err)
	assert.Len(t, res.Diagrams, 1)
	assert.Equal(t, "B", res.Diagrams[0].Inits[domain.RootState])

	res, err = hsmgen.New(
		hsmgen.WithDuplicateInit(domain.InitFirstWins),
		hsmgen.WithUnterminated(domain.UnterminatedEmit),
	).ParseString(context.Background(), text, "")
	require.NoError(t, err)
	require.Len(t, res.Diagrams, 2)
	assert.Equal(t, "A", res.Diagrams[0].Inits[domain.RootState])

	_, err = hsmgen.New(hsmgen.WithUnterminated(domain.UnterminatedFail)).ParseString(context.Background(), text, "")
	assert.ErrorIs(t, err, domain.ErrUnterminatedDiagram)

	res, err = hsmgen.New(hsmgen.WithLinePrefixes("//")).ParseString(context.Background(), "// @startuml c\n// state X\n// @enduml", "")
	require.NoError(t, err)
	assert.Equal(t, []string{"X"}, res.Diagrams[0].States)

	gen := hsmgen.New(hsmgen.WithHierarchy(domain.HierarchyStrict))
	assert.Equal(t, domain.HierarchyStrict, gen.ParserOptions().Hierarchy)
}

func TestGenerator_Cache(t *testing.T) {
	ctx := context.Background()
	cache := memory.NewCache()
	rec := &recorder{}
	gen := hsmgen.New(hsmgen.WithCache(cache), hsmgen.WithHooks(rec.hooks()))

	first, err := gen.ParseString(ctx, header, "a.hpp")
	require.NoError(t, err)
	assert.Empty(t, rec.hits)

	second, err := gen.ParseString(ctx, header, "b.hpp")
	require.NoError(t, err)
	require.Len(t, rec.hits, 1)
	assert.Equal(t, first.Diagrams, second.Diagrams)
	assert.Equal(t, "b.hpp", second.Source)
	assert.Equal(t, []string{"blinker"}, rec.diagrams, "a hit does not re-parse")

	keys, err := cache.List(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{gen.CacheKey([]byte(header))}, keys)

	// Different policies never share entries.
	strict := hsmgen.New(hsmgen.WithCache(cache), hsmgen.WithHierarchy(domain.HierarchyStrict))
	assert.NotEqual(t, gen.CacheKey([]byte(header)), strict.CacheKey([]byte(header)))

	// Failed parses are not cached.
	_, err = gen.ParseString(ctx, "@startuml x\n}\n@enduml", "")
	require.Error(t, err)
	keys, err = cache.List(ctx)
	require.NoError(t, err)
	assert.Len(t, keys, 1)
}

type brokenCache struct{ *memory.Cache }

func (brokenCache) Get(context.Context, string) ([]*domain.Diagram, error) {
	return nil, errors.New("connection refused")
}

func TestGenerator_BrokenCacheFallsBack(t *testing.T) {
	var logs bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&logs, nil))
	gen := hsmgen.New(hsmgen.WithCache(&brokenCache{memory.NewCache()}), hsmgen.WithLogger(logger))

	res, err := gen.ParseString(context.Background(), header, "a.hpp")
	require.NoError(t, err)
	assert.Len(t, res.Diagrams, 1)
	assert.Contains(t, logs.String(), "cache read failed")
}

func TestGenerator_CanceledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := hsmgen.New().ParseString(ctx, header, "")
	assert.ErrorIs(t, err, context.Canceled)
}

func TestVersion(t *testing.T) {
	assert.NotEmpty(t, strings.TrimSpace(hsmgen.Version))
}
