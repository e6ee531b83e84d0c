package domain

import (
	"context"
	"time"
)

// EventType defines the category of the event.
type EventType string

const (
	EventDiagram    EventType = "diagram"
	EventDiagnostic EventType = "diagnostic"
	EventParseError EventType = "parse_error"
	EventCacheHit   EventType = "cache_hit"
	EventParsed     EventType = "parsed"
)

// EventBase contains common fields for all events.
type EventBase struct {
	Timestamp time.Time `json:"timestamp"`
	Type      EventType `json:"type"`
	Source    string    `json:"source"`
}

// DiagramEvent is emitted for every finalized diagram.
type DiagramEvent struct {
	EventBase
	Diagram *Diagram `json:"diagram"`
}

// ParsedEvent is emitted once per successfully parsed input.
type ParsedEvent struct {
	EventBase
	Diagrams    int           `json:"diagrams"`
	Diagnostics int           `json:"diagnostics"`
	Duration    time.Duration `json:"duration"`
}

// DiagnosticEvent is emitted for every non-fatal diagnostic.
type DiagnosticEvent struct {
	EventBase
	Diagnostic Diagnostic `json:"diagnostic"`
}

// ErrorEvent is emitted when a parse fails.
type ErrorEvent struct {
	EventBase
	Err error `json:"-"`
}

// CacheEvent is emitted when a cached model is served instead of parsing.
type CacheEvent struct {
	EventBase
	Key      string `json:"key"`
	Diagrams int    `json:"diagrams"`
}

// ParseHooks defines callbacks for parser observability.
// Any field may be nil.
type ParseHooks struct {
	OnDiagram    func(context.Context, *DiagramEvent)
	OnDiagnostic func(context.Context, *DiagnosticEvent)
	OnParseError func(context.Context, *ErrorEvent)
	OnCacheHit   func(context.Context, *CacheEvent)
	OnParsed     func(context.Context, *ParsedEvent)
}
