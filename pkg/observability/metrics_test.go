package observability_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/aretw0/hsmgen/pkg/domain"
	"github.com/aretw0/hsmgen/pkg/observability"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMetrics_Hooks(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := observability.NewMetrics(reg)
	h := m.Hooks()
	ctx := context.Background()

	h.OnDiagram(ctx, &domain.DiagramEvent{Diagram: &domain.Diagram{Name: "a"}})
	h.OnDiagram(ctx, &domain.DiagramEvent{Diagram: &domain.Diagram{Name: "b"}})
	h.OnParsed(ctx, &domain.ParsedEvent{Diagrams: 2, Duration: time.Millisecond})
	h.OnDiagnostic(ctx, &domain.DiagnosticEvent{Diagnostic: domain.Diagnostic{Kind: domain.DiagnosticUnparsedLine}})
	h.OnParseError(ctx, &domain.ErrorEvent{Err: errors.New("boom")})
	h.OnCacheHit(ctx, &domain.CacheEvent{Key: "k", Diagrams: 2})

	assert.Equal(t, 2.0, testutil.ToFloat64(m.Diagrams))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Diagnostics.WithLabelValues("UnparsedLine")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.ParseErrors))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.CacheHits))
	assert.Equal(t, 1, testutil.CollectAndCount(m.ParseDuration))

	families, err := reg.Gather()
	require.NoError(t, err)
	names := make([]string, 0, len(families))
	for _, f := range families {
		names = append(names, f.GetName())
	}
	assert.Contains(t, names, "hsmgen_parse_duration_seconds")
	assert.Contains(t, names, "hsmgen_diagrams_total")
}

func TestNewMetrics_Unregistered(t *testing.T) {
	assert.NotPanics(t, func() {
		observability.NewMetrics(nil)
		observability.NewMetrics(nil)
	})
}

func TestCombine(t *testing.T) {
	var calls []string
	a := domain.ParseHooks{OnDiagram: func(context.Context, *domain.DiagramEvent) { calls = append(calls, "a") }}
	b := domain.ParseHooks{
		OnDiagram:  func(context.Context, *domain.DiagramEvent) { calls = append(calls, "b") },
		OnCacheHit: func(context.Context, *domain.CacheEvent) { calls = append(calls, "hit") },
	}

	h := observability.Combine(a, domain.ParseHooks{}, b)
	h.OnDiagram(context.Background(), &domain.DiagramEvent{})
	h.OnCacheHit(context.Background(), &domain.CacheEvent{})

	assert.Equal(t, []string{"a", "b", "hit"}, calls)
	assert.Nil(t, h.OnParseError)
}
