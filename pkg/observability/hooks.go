package observability

import (
	"context"

	"github.com/aretw0/hsmgen/pkg/domain"
)

// Combine returns hooks that call each of hs in order. Nil callbacks are skipped.
func Combine(hs ...domain.ParseHooks) domain.ParseHooks {
	var out domain.ParseHooks
	for _, h := range hs {
		out.OnDiagram = chain(out.OnDiagram, h.OnDiagram)
		out.OnDiagnostic = chain(out.OnDiagnostic, h.OnDiagnostic)
		out.OnParseError = chain(out.OnParseError, h.OnParseError)
		out.OnCacheHit = chain(out.OnCacheHit, h.OnCacheHit)
		out.OnParsed = chain(out.OnParsed, h.OnParsed)
	}
	return out
}

func chain[E any](a, b func(context.Context, E)) func(context.Context, E) {
	switch {
	case a == nil:
		return b
	case b == nil:
		return a
	}
	return func(ctx context.Context, e E) {
		a(ctx, e)
		b(ctx, e)
	}
}
