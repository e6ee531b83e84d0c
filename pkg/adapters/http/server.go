package http

import (
	"bufio"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/aretw0/hsmgen"
	"github.com/aretw0/hsmgen/internal/generator"
	"github.com/aretw0/hsmgen/pkg/domain"
	"github.com/aretw0/hsmgen/pkg/observability"
	"github.com/aretw0/hsmgen/pkg/ports"
	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// DefaultMaxBodyBytes bounds the size of a posted document.
const DefaultMaxBodyBytes = 8 << 20

// Server implements ServerInterface on top of a hsmgen.Generator per request.
type Server struct {
	Streams *StreamManager

	base         []hsmgen.Option
	hooks        domain.ParseHooks
	logger       *slog.Logger
	registry     *prometheus.Registry
	maxBodyBytes int64
}

// Ensure Server implements ServerInterface
var _ ServerInterface = (*Server)(nil)

// ServerOption configures a Server.
type ServerOption func(*Server)

// WithGeneratorOptions sets the options every request starts from,
// typically the policies of the loaded configuration.
func WithGeneratorOptions(opts ...hsmgen.Option) ServerOption {
	return func(s *Server) {
		s.base = append(s.base, opts...)
	}
}

// WithCache shares c between all requests.
func WithCache(c ports.ModelCache) ServerOption {
	return WithGeneratorOptions(hsmgen.WithCache(c))
}

// WithHooks adds hooks that run next to the metrics and event stream hooks.
func WithHooks(h domain.ParseHooks) ServerOption {
	return func(s *Server) {
		s.hooks = observability.Combine(s.hooks, h)
	}
}

// WithLogger sets the request logger.
func WithLogger(l *slog.Logger) ServerOption {
	return func(s *Server) {
		s.logger = l
	}
}

// WithMetrics registers parser metrics in reg and serves them on /metrics.
func WithMetrics(reg *prometheus.Registry) ServerOption {
	return func(s *Server) {
		s.registry = reg
	}
}

// WithMaxBodyBytes overrides DefaultMaxBodyBytes.
func WithMaxBodyBytes(n int64) ServerOption {
	return func(s *Server) {
		s.maxBodyBytes = n
	}
}

// NewServer builds a Server without routing.
func NewServer(opts ...ServerOption) *Server {
	s := &Server{
		Streams:      NewStreamManager(),
		logger:       slog.Default(),
		maxBodyBytes: DefaultMaxBodyBytes,
	}
	for _, opt := range opts {
		opt(s)
	}

	hooks := []domain.ParseHooks{s.hooks, s.Streams.Hooks()}
	if s.registry != nil {
		hooks = append(hooks, observability.NewMetrics(s.registry).Hooks())
	}
	s.hooks = observability.Combine(hooks...)
	return s
}

// NewHandler creates the HTTP handler of the extraction service.
func NewHandler(opts ...ServerOption) http.Handler {
	return NewServer(opts...).Handler()
}

// Handler routes the operations of s.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()

	r.Get("/openapi.yaml", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/yaml")
		w.Write(rawSpec)
	})
	r.Get("/swagger", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		w.Write([]byte(swaggerHTML))
	})
	if s.registry != nil {
		r.Handle("/metrics", promhttp.HandlerFor(s.registry, promhttp.HandlerOpts{}))
	}

	handler := HandlerFromMux(s, r, func(w http.ResponseWriter, r *http.Request, err error) {
		writeError(w, http.StatusBadRequest, errorResponse{Error: err.Error()})
	})
	return enableCORS(handler)
}

func enableCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}
		next.ServeHTTP(w, r)
	})
}

const swaggerHTML = `
<!DOCTYPE html>
<html lang="en">
<head>
    <meta charset="utf-8" />
    <meta name="viewport" content="width=device-width, initial-scale=1" />
    <title>hsmgen API Documentation</title>
    <link rel="stylesheet" href="https://unpkg.com/swagger-ui-dist@5.11.0/swagger-ui.css" />
</head>
<body>
<div id="swagger-ui"></div>
<script src="https://unpkg.com/swagger-ui-dist@5.11.0/swagger-ui-bundle.js" crossorigin></script>
<script>
    window.onload = () => {
    window.ui = SwaggerUIBundle({
        url: '/openapi.yaml',
        dom_id: '#swagger-ui',
    });
    };
</script>
</body>
</html>
`

type errorResponse struct {
	Error  string `json:"error"`
	Source string `json:"source,omitempty"`
	Line   int    `json:"line,omitempty"`
}

// Parse handles the POST /parse request.
func (s *Server) Parse(w http.ResponseWriter, r *http.Request, params ParseParams) {
	format := generator.FormatJSON
	if params.Format != nil {
		f, err := generator.ParseFormat(*params.Format)
		if err != nil || (f != generator.FormatJSON && f != generator.FormatYAML) {
			writeError(w, http.StatusBadRequest, errorResponse{Error: fmt.Sprintf("unsupported format %q", *params.Format)})
			return
		}
		format = f
	}

	res, ok := s.parse(w, r, params)
	if !ok {
		return
	}

	data, err := generator.EncodeResult(res, format)
	if err != nil {
		s.logger.Error("Parse response encode failed", "error", err)
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	if format == generator.FormatYAML {
		w.Header().Set("Content-Type", "application/yaml")
	} else {
		w.Header().Set("Content-Type", "application/json")
	}
	w.Write(data)
}

// Graph handles the POST /graph request.
func (s *Server) Graph(w http.ResponseWriter, r *http.Request, params ParseParams) {
	res, ok := s.parse(w, r, params)
	if !ok {
		return
	}

	data, err := generator.EncodeResult(res, generator.FormatMermaid)
	if err != nil {
		s.logger.Error("Graph render failed", "error", err)
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.Write(data)
}

// parse runs the request body through a generator configured from params.
// On failure the response has been written and ok is false.
func (s *Server) parse(w http.ResponseWriter, r *http.Request, params ParseParams) (res *domain.ParseResult, ok bool) {
	opts, err := s.generatorOptions(params)
	if err != nil {
		writeError(w, http.StatusBadRequest, errorResponse{Error: err.Error()})
		return nil, false
	}

	source := "request"
	if params.Source != nil && *params.Source != "" {
		source = *params.Source
	}

	body := http.MaxBytesReader(w, r.Body, s.maxBodyBytes)
	res, err = hsmgen.New(opts...).Parse(r.Context(), body, source)
	if err == nil {
		return res, true
	}

	var tooLarge *http.MaxBytesError
	var perr *domain.ParseError
	switch {
	case errors.As(err, &tooLarge), errors.Is(err, bufio.ErrTooLong):
		writeError(w, http.StatusRequestEntityTooLarge, errorResponse{Error: err.Error(), Source: source})
	case errors.As(err, &perr):
		writeError(w, http.StatusUnprocessableEntity, errorResponse{
			Error:  perr.Error(),
			Source: perr.Source,
			Line:   perr.Line,
		})
	default:
		s.logger.Error("Parse failed", "source", source, "error", err)
		writeError(w, http.StatusInternalServerError, errorResponse{Error: err.Error(), Source: source})
	}
	return nil, false
}

func (s *Server) generatorOptions(params ParseParams) ([]hsmgen.Option, error) {
	opts := append([]hsmgen.Option{}, s.base...)
	opts = append(opts, hsmgen.WithLogger(s.logger), hsmgen.WithHooks(s.hooks))

	if params.Unterminated != nil {
		p, err := domain.ParseUnterminatedPolicy(*params.Unterminated)
		if err != nil {
			return nil, err
		}
		opts = append(opts, hsmgen.WithUnterminated(p))
	}
	if params.DuplicateInit != nil {
		p, err := domain.ParseInitPolicy(*params.DuplicateInit)
		if err != nil {
			return nil, err
		}
		opts = append(opts, hsmgen.WithDuplicateInit(p))
	}
	if params.Hierarchy != nil {
		p, err := domain.ParseHierarchyPolicy(*params.Hierarchy)
		if err != nil {
			return nil, err
		}
		opts = append(opts, hsmgen.WithHierarchy(p))
	}
	return opts, nil
}

// SubscribeEvents handles the GET /events request (SSE).
func (s *Server) SubscribeEvents(w http.ResponseWriter, r *http.Request, params EventsParams) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "Streaming not supported", http.StatusInternalServerError)
		s.logger.Error("SubscribeEvents: Streaming not supported")
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	source := allSources
	if params.Source != nil {
		source = *params.Source
	}
	s.logger.Info("SSE: Subscribing to parse events", "source", source)

	ch, cancel := s.Streams.Subscribe(source)
	defer cancel()

	fmt.Fprintf(w, "event: ping\ndata: connected\n\n")
	flusher.Flush()

	for {
		select {
		case <-r.Context().Done():
			s.logger.Info("SSE Client Disconnected")
			return
		case msg, ok := <-ch:
			if !ok {
				return
			}
			fmt.Fprintf(w, "data: %s\n\n", msg)
			flusher.Flush()
		}
	}
}

// GetHealth handles the GET /health request.
func (s *Server) GetHealth(w http.ResponseWriter, r *http.Request) {
	resp := map[string]string{"status": "ok"}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(resp)
}

// GetInfo handles the GET /info request.
func (s *Server) GetInfo(w http.ResponseWriter, r *http.Request) {
	apiVersion := "unknown"
	if swagger, err := GetSwagger(); err == nil && swagger.Info != nil {
		apiVersion = swagger.Info.Version
	}

	resp := map[string]string{
		"app":         "hsmgen-http",
		"version":     strings.TrimSpace(hsmgen.Version),
		"api_version": apiVersion,
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(resp)
}

func writeError(w http.ResponseWriter, status int, resp errorResponse) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(resp); err != nil {
		slog.Error("error response encode failed", "error", err)
	}
}
