package http

import (
	"context"
	"encoding/json"
	"log/slog"
	"sync"

	"github.com/aretw0/hsmgen/pkg/domain"
)

// allSources is the subscription key of clients that want every event.
const allSources = ""

// StreamManager fans parse events out to SSE clients.
type StreamManager struct {
	mu          sync.RWMutex
	subscribers map[string]map[chan<- string]struct{} // source -> set of channels
}

func NewStreamManager() *StreamManager {
	return &StreamManager{
		subscribers: make(map[string]map[chan<- string]struct{}),
	}
}

// Subscribe registers a client for events of source, or of every input when
// source is empty. The returned func unsubscribes and closes the channel.
func (sm *StreamManager) Subscribe(source string) (chan string, func()) {
	sm.mu.Lock()
	defer sm.mu.Unlock()

	ch := make(chan string, 16)
	if _, ok := sm.subscribers[source]; !ok {
		sm.subscribers[source] = make(map[chan<- string]struct{})
	}
	sm.subscribers[source][ch] = struct{}{}

	return ch, func() {
		sm.mu.Lock()
		defer sm.mu.Unlock()
		if subs, ok := sm.subscribers[source]; ok {
			delete(subs, ch)
			close(ch)
			if len(subs) == 0 {
				delete(sm.subscribers, source)
			}
		}
	}
}

// Subscribers returns the number of connected clients.
func (sm *StreamManager) Subscribers() int {
	sm.mu.RLock()
	defer sm.mu.RUnlock()
	n := 0
	for _, subs := range sm.subscribers {
		n += len(subs)
	}
	return n
}

// Broadcast sends msg to the clients of source and to the unfiltered clients.
func (sm *StreamManager) Broadcast(source string, msg string) {
	sm.mu.RLock()
	defer sm.mu.RUnlock()

	slog.Debug("StreamManager: Broadcasting", "source", source, "payload_size", len(msg))

	keys := []string{allSources}
	if source != allSources {
		keys = append(keys, source)
	}
	for _, key := range keys {
		for ch := range sm.subscribers[key] {
			select {
			case ch <- msg:
			default:
				// Slow client.
				slog.Warn("SSE: Client buffer full, dropping message", "source", source)
			}
		}
	}
}

// Hooks publishes parser events as JSON messages.
func (sm *StreamManager) Hooks() domain.ParseHooks {
	return domain.ParseHooks{
		OnDiagram: func(_ context.Context, e *domain.DiagramEvent) {
			sm.publish(e.Source, e)
		},
		OnDiagnostic: func(_ context.Context, e *domain.DiagnosticEvent) {
			sm.publish(e.Source, e)
		},
		OnParseError: func(_ context.Context, e *domain.ErrorEvent) {
			sm.publish(e.Source, struct {
				domain.EventBase
				Error string `json:"error"`
			}{e.EventBase, e.Err.Error()})
		},
		OnCacheHit: func(_ context.Context, e *domain.CacheEvent) {
			sm.publish(e.Source, e)
		},
		OnParsed: func(_ context.Context, e *domain.ParsedEvent) {
			sm.publish(e.Source, e)
		},
	}
}

func (sm *StreamManager) publish(source string, event any) {
	data, err := json.Marshal(event)
	if err != nil {
		slog.Error("SSE: event encode failed", "error", err)
		return
	}
	sm.Broadcast(source, string(data))
}
