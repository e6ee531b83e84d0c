package observability

import (
	"context"

	"github.com/aretw0/hsmgen/pkg/domain"
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the Prometheus collectors fed by parser hooks.
type Metrics struct {
	Diagrams      prometheus.Counter
	Diagnostics   *prometheus.CounterVec
	ParseErrors   prometheus.Counter
	CacheHits     prometheus.Counter
	ParseDuration prometheus.Histogram
}

// NewMetrics creates the collectors and registers them with reg.
// A nil reg leaves them unregistered.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		Diagrams: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "hsmgen_diagrams_total",
			Help: "Total number of diagrams extracted",
		}),
		Diagnostics: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "hsmgen_diagnostics_total",
			Help: "Non-fatal parser diagnostics by kind",
		}, []string{"kind"}),
		ParseErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "hsmgen_parse_errors_total",
			Help: "Inputs rejected with a fatal structural error",
		}),
		CacheHits: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "hsmgen_cache_hits_total",
			Help: "Inputs served from the model cache",
		}),
		ParseDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "hsmgen_parse_duration_seconds",
			Help:    "Time to parse one input",
			Buckets: prometheus.ExponentialBuckets(0.0001, 4, 8),
		}),
	}

	if reg != nil {
		reg.MustRegister(m.Diagrams, m.Diagnostics, m.ParseErrors, m.CacheHits, m.ParseDuration)
	}
	return m
}

// Hooks returns parse hooks that record into m.
func (m *Metrics) Hooks() domain.ParseHooks {
	return domain.ParseHooks{
		OnDiagram: func(context.Context, *domain.DiagramEvent) {
			m.Diagrams.Inc()
		},
		OnDiagnostic: func(_ context.Context, e *domain.DiagnosticEvent) {
			m.Diagnostics.WithLabelValues(string(e.Diagnostic.Kind)).Inc()
		},
		OnParseError: func(context.Context, *domain.ErrorEvent) {
			m.ParseErrors.Inc()
		},
		OnCacheHit: func(context.Context, *domain.CacheEvent) {
			m.CacheHits.Inc()
		},
		OnParsed: func(_ context.Context, e *domain.ParsedEvent) {
			m.ParseDuration.Observe(e.Duration.Seconds())
		},
	}
}
