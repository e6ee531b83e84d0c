package http

import (
	_ "embed"
	"fmt"
	"net/http"
	"sync"

	"github.com/getkin/kin-openapi/openapi3"
	"github.com/go-chi/chi/v5"
	"github.com/oapi-codegen/runtime"
)

//go:embed openapi.yaml
var rawSpec []byte

var (
	swaggerOnce sync.Once
	swagger     *openapi3.T
	swaggerErr  error
)

// GetSwagger returns the parsed OpenAPI document served at /openapi.yaml.
func GetSwagger() (*openapi3.T, error) {
	swaggerOnce.Do(func() {
		swagger, swaggerErr = openapi3.NewLoader().LoadFromData(rawSpec)
	})
	return swagger, swaggerErr
}

// ParseParams are the query parameters shared by /parse and /graph.
type ParseParams struct {
	Source        *string `form:"source,omitempty" json:"source,omitempty"`
	Unterminated  *string `form:"unterminated,omitempty" json:"unterminated,omitempty"`
	DuplicateInit *string `form:"duplicate_init,omitempty" json:"duplicate_init,omitempty"`
	Hierarchy     *string `form:"hierarchy,omitempty" json:"hierarchy,omitempty"`
	Format        *string `form:"format,omitempty" json:"format,omitempty"`
}

// EventsParams are the query parameters of /events.
type EventsParams struct {
	Source *string `form:"source,omitempty" json:"source,omitempty"`
}

// ServerInterface lists the operations of openapi.yaml.
type ServerInterface interface {
	Parse(w http.ResponseWriter, r *http.Request, params ParseParams)
	Graph(w http.ResponseWriter, r *http.Request, params ParseParams)
	SubscribeEvents(w http.ResponseWriter, r *http.Request, params EventsParams)
	GetHealth(w http.ResponseWriter, r *http.Request)
	GetInfo(w http.ResponseWriter, r *http.Request)
}

// paramErrorFunc reports a query binding failure.
type paramErrorFunc func(w http.ResponseWriter, r *http.Request, err error)

type serverWrapper struct {
	handler ServerInterface
	onError paramErrorFunc
}

func (sw *serverWrapper) bindParseParams(w http.ResponseWriter, r *http.Request) (ParseParams, bool) {
	var params ParseParams
	query := r.URL.Query()

	bind := []struct {
		name string
		dest **string
	}{
		{"source", &params.Source},
		{"unterminated", &params.Unterminated},
		{"duplicate_init", &params.DuplicateInit},
		{"hierarchy", &params.Hierarchy},
		{"format", &params.Format},
	}
	for _, b := range bind {
		if err := runtime.BindQueryParameter("form", true, false, b.name, query, b.dest); err != nil {
			sw.onError(w, r, fmt.Errorf("invalid format for parameter %s: %w", b.name, err))
			return params, false
		}
	}
	return params, true
}

func (sw *serverWrapper) Parse(w http.ResponseWriter, r *http.Request) {
	if params, ok := sw.bindParseParams(w, r); ok {
		sw.handler.Parse(w, r, params)
	}
}

func (sw *serverWrapper) Graph(w http.ResponseWriter, r *http.Request) {
	if params, ok := sw.bindParseParams(w, r); ok {
		sw.handler.Graph(w, r, params)
	}
}

func (sw *serverWrapper) SubscribeEvents(w http.ResponseWriter, r *http.Request) {
	var params EventsParams
	if err := runtime.BindQueryParameter("form", true, false, "source", r.URL.Query(), &params.Source); err != nil {
		sw.onError(w, r, fmt.Errorf("invalid format for parameter source: %w", err))
		return
	}
	sw.handler.SubscribeEvents(w, r, params)
}

// HandlerFromMux registers the operations of si on r.
func HandlerFromMux(si ServerInterface, r chi.Router, onError paramErrorFunc) http.Handler {
	sw := &serverWrapper{handler: si, onError: onError}

	r.Post("/parse", sw.Parse)
	r.Post("/graph", sw.Graph)
	r.Get("/events", sw.SubscribeEvents)
	r.Get("/health", si.GetHealth)
	r.Get("/info", si.GetInfo)
	return r
}
