package cli

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/aretw0/hsmgen"
	"github.com/aretw0/hsmgen/internal/adapters/file"
	"github.com/aretw0/hsmgen/internal/config"
	"github.com/aretw0/hsmgen/internal/logging"
	"github.com/aretw0/hsmgen/pkg/adapters/memory"
	"github.com/aretw0/hsmgen/pkg/adapters/redis"
	"github.com/aretw0/hsmgen/pkg/ports"
)

// SignalContext wraps a context and captures the signal that cancelled it.
type SignalContext struct {
	context.Context
	Cancel func()
	stop   sync.Once
	sigCh  chan os.Signal
	sigVal os.Signal
	mu     sync.Mutex
}

// NewSignalContext creates a context that is cancelled on SIGINT or SIGTERM.
// Unlike signal.NotifyContext it remembers which signal arrived.
func NewSignalContext(parent context.Context) *SignalContext {
	ctx, cancel := context.WithCancel(parent)
	sc := &SignalContext{
		Context: ctx,
		Cancel:  cancel,
		sigCh:   make(chan os.Signal, 1),
	}

	signal.Notify(sc.sigCh, os.Interrupt, syscall.SIGTERM)
	go func() {
		select {
		case sig := <-sc.sigCh:
			sc.mu.Lock()
			sc.sigVal = sig
			sc.mu.Unlock()
			sc.Cancel()
		case <-sc.Context.Done():
		}
		sc.stop.Do(func() {
			signal.Stop(sc.sigCh)
		})
	}()

	return sc
}

// Signal returns the signal that caused the context to be cancelled, or nil.
func (sc *SignalContext) Signal() os.Signal {
	sc.mu.Lock()
	defer sc.mu.Unlock()
	return sc.sigVal
}

// NewLogger configures the application logger from the log section.
// debug forces the debug level. Logs go to stderr so stdout stays clean for output.
func NewLogger(cfg *config.Config, debug bool) (*slog.Logger, error) {
	level, err := logging.ParseLevel(cfg.Log.Level)
	if err != nil {
		return nil, err
	}
	if debug {
		level = slog.LevelDebug
	}
	return logging.NewWithFormat(cfg.Log.Format, level)
}

// printSystemMessage prints a standardized system message to stdout.
func printSystemMessage(format string, args ...any) {
	fmt.Printf(">>> %s\n", fmt.Sprintf(format, args...))
}

// NewCache builds the configured model cache. It returns a nil cache for the
// "none" backend. The closer releases backend connections and is never nil.
func NewCache(cfg config.CacheConfig) (ports.ModelCache, func() error, error) {
	noop := func() error { return nil }

	switch cfg.Backend {
	case "", config.CacheNone:
		return nil, noop, nil
	case config.CacheMemory:
		return memory.NewCache(), noop, nil
	case config.CacheFile:
		return file.NewCache(cfg.Dir), noop, nil
	case config.CacheRedis:
		opts := []redis.Option{redis.WithTTL(cfg.TTL)}
		if cfg.Prefix != "" {
			opts = append(opts, redis.WithPrefix(cfg.Prefix))
		}
		c := redis.New(cfg.Addr, cfg.Password, cfg.DB, opts...)
		return c, c.Close, nil
	}
	return nil, noop, fmt.Errorf("unknown cache backend %q", cfg.Backend)
}

// GeneratorOptions maps the configuration onto facade options.
func GeneratorOptions(cfg *config.Config, logger *slog.Logger, cache ports.ModelCache) ([]hsmgen.Option, error) {
	parserOpts, err := cfg.ParserOptions()
	if err != nil {
		return nil, err
	}

	opts := []hsmgen.Option{
		hsmgen.WithLogger(logger),
		hsmgen.WithParserOptions(parserOpts...),
	}
	if cache != nil {
		opts = append(opts, hsmgen.WithCache(cache))
	}
	return opts, nil
}
