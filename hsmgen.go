package hsmgen

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/aretw0/hsmgen/internal/compiler"
	"github.com/aretw0/hsmgen/pkg/domain"
	"github.com/aretw0/hsmgen/pkg/ports"
)

// Generator is the high-level entry point of the library.
// It wraps the line parser and adds caching, hooks and logging.
// A Generator is safe for concurrent use.
type Generator struct {
	parser     *compiler.Parser
	parserOpts []compiler.Option
	cache      ports.ModelCache
	hooks      domain.ParseHooks
	logger     *slog.Logger
}

// Option defines a functional option for configuring the Generator.
type Option func(*Generator)

// WithLogger sets a custom structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(g *Generator) {
		g.logger = logger
	}
}

// WithHooks registers observability hooks.
func WithHooks(hooks domain.ParseHooks) Option {
	return func(g *Generator) {
		g.hooks = hooks
	}
}

// WithCache stores parsed models in c and serves repeated inputs from it.
func WithCache(c ports.ModelCache) Option {
	return func(g *Generator) {
		g.cache = c
	}
}

// WithParserOptions passes low-level options straight to the parser.
func WithParserOptions(opts ...compiler.Option) Option {
	return func(g *Generator) {
		g.parserOpts = append(g.parserOpts, opts...)
	}
}

// WithUnterminated sets what happens when input ends inside a diagram.
func WithUnterminated(p domain.UnterminatedPolicy) Option {
	return WithParserOptions(compiler.WithUnterminated(p))
}

// WithDuplicateInit sets how repeated initial transitions of one composite resolve.
func WithDuplicateInit(p domain.InitPolicy) Option {
	return WithParserOptions(compiler.WithDuplicateInit(p))
}

// WithHierarchy sets the state ownership policy.
func WithHierarchy(p domain.HierarchyPolicy) Option {
	return WithParserOptions(compiler.WithHierarchy(p))
}

// WithLinePrefixes strips comment leaders such as "//" before each line is classified.
func WithLinePrefixes(prefixes ...string) Option {
	return WithParserOptions(compiler.WithLinePrefixes(prefixes...))
}

// New initializes a Generator.
func New(opts ...Option) *Generator {
	g := &Generator{}
	for _, opt := range opts {
		opt(g)
	}

	if g.logger == nil {
		g.logger = slog.New(slog.NewJSONHandler(io.Discard, nil))
	}
	g.parser = compiler.NewParser(g.parserOpts...)
	return g
}

// Parse extracts every diagram in r. source labels diagnostics and errors.
// Fatal structural errors are returned as *domain.ParseError.
func (g *Generator) Parse(ctx context.Context, r io.Reader, source string) (*domain.ParseResult, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if g.cache == nil {
		return g.parse(ctx, r, source)
	}

	content, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", source, err)
	}
	key := g.CacheKey(content)

	diagrams, err := g.cache.Get(ctx, key)
	switch {
	case err == nil:
		g.logger.Debug("cache hit", "source", source, "key", key)
		if g.hooks.OnCacheHit != nil {
			g.hooks.OnCacheHit(ctx, &domain.CacheEvent{
				EventBase: g.event(domain.EventCacheHit, source),
				Key:       key,
				Diagrams:  len(diagrams),
			})
		}
		return &domain.ParseResult{Source: source, Diagrams: diagrams}, nil
	case !errors.Is(err, domain.ErrCacheMiss):
		// A broken cache degrades to parsing.
		g.logger.Warn("cache read failed", "source", source, "error", err)
	}

	res, err := g.parse(ctx, bytes.NewReader(content), source)
	if err != nil {
		return nil, err
	}
	if err := g.cache.Put(ctx, key, res.Diagrams); err != nil {
		g.logger.Warn("cache write failed", "source", source, "error", err)
	}
	return res, nil
}

// ParseString parses an in-memory document.
func (g *Generator) ParseString(ctx context.Context, text, source string) (*domain.ParseResult, error) {
	return g.Parse(ctx, bytes.NewReader([]byte(text)), source)
}

// ParseFile parses the file at path, using the path as source label.
func (g *Generator) ParseFile(ctx context.Context, path string) (*domain.ParseResult, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open input: %w", err)
	}
	defer f.Close()
	return g.Parse(ctx, f, path)
}

// CacheKey is the digest under which content is cached with the current policies.
func (g *Generator) CacheKey(content []byte) string {
	h := sha256.New()
	h.Write([]byte(g.parser.Options().Fingerprint()))
	h.Write([]byte{0})
	h.Write(content)
	return hex.EncodeToString(h.Sum(nil))
}

// ParserOptions returns the effective parser options.
func (g *Generator) ParserOptions() compiler.Options {
	return g.parser.Options()
}

func (g *Generator) parse(ctx context.Context, r io.Reader, source string) (*domain.ParseResult, error) {
	start := time.Now()
	res, err := g.parser.Parse(r, source)
	if err != nil {
		if g.hooks.OnParseError != nil {
			g.hooks.OnParseError(ctx, &domain.ErrorEvent{
				EventBase: g.event(domain.EventParseError, source),
				Err:       err,
			})
		}
		return nil, err
	}
	elapsed := time.Since(start)

	for _, d := range res.Diagnostics {
		g.logger.Warn("diagnostic", "source", source, "line", d.Line, "kind", d.Kind, "text", d.Text)
		if g.hooks.OnDiagnostic != nil {
			g.hooks.OnDiagnostic(ctx, &domain.DiagnosticEvent{
				EventBase:  g.event(domain.EventDiagnostic, source),
				Diagnostic: d,
			})
		}
	}
	for _, d := range res.Diagrams {
		g.logger.Debug("diagram extracted", "source", source, "diagram", d.Name, "states", len(d.States))
		if g.hooks.OnDiagram != nil {
			g.hooks.OnDiagram(ctx, &domain.DiagramEvent{
				EventBase: g.event(domain.EventDiagram, source),
				Diagram:   d,
			})
		}
	}
	if g.hooks.OnParsed != nil {
		g.hooks.OnParsed(ctx, &domain.ParsedEvent{
			EventBase:   g.event(domain.EventParsed, source),
			Diagrams:    len(res.Diagrams),
			Diagnostics: len(res.Diagnostics),
			Duration:    elapsed,
		})
	}
	return res, nil
}

func (g *Generator) event(t domain.EventType, source string) domain.EventBase {
	return domain.EventBase{Timestamp: time.Now(), Type: t, Source: source}
}
