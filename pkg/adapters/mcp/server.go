package mcp

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/aretw0/hsmgen"
	"github.com/aretw0/hsmgen/internal/generator"
	"github.com/aretw0/hsmgen/pkg/domain"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

// ParseArgs are the arguments of the parse_diagrams and render_mermaid tools.
type ParseArgs struct {
	Text          string `json:"text"`
	Source        string `json:"source,omitempty"`
	Diagram       string `json:"diagram,omitempty"`
	Unterminated  string `json:"unterminated,omitempty"`
	DuplicateInit string `json:"duplicate_init,omitempty"`
	Hierarchy     string `json:"hierarchy,omitempty"`
}

// Server exposes the extractor as an MCP Server.
type Server struct {
	base      []hsmgen.Option
	mcpServer *server.MCPServer
}

// NewServer creates a new MCP Server instance. opts are applied to every
// generator the tools create, before the per-call policies.
func NewServer(opts ...hsmgen.Option) *Server {
	s := &Server{
		base:      opts,
		mcpServer: server.NewMCPServer("hsmgen-mcp", strings.TrimSpace(hsmgen.Version)),
	}
	s.registerTools()
	s.registerResources()
	return s
}

// ServeStdio starts the server on Stdin/Stdout.
func (s *Server) ServeStdio() error {
	return server.ServeStdio(s.mcpServer)
}

// ServeSSE starts the server on the given port using SSE.
func (s *Server) ServeSSE(ctx context.Context, port int) error {
	addr := fmt.Sprintf(":%d", port)
	baseURL := fmt.Sprintf("http://localhost:%d", port)

	sseServer := server.NewSSEServer(s.mcpServer, server.WithBaseURL(baseURL))

	mux := http.NewServeMux()
	mux.Handle("/sse", corsMiddleware(sseServer.SSEHandler()))
	mux.Handle("/message", corsMiddleware(sseServer.MessageHandler()))

	httpServer := &http.Server{
		Addr:    addr,
		Handler: mux,
	}

	serverErrors := make(chan error, 1)
	go func() {
		slog.Info("MCP Server listening (SSE)", "address", addr)
		serverErrors <- httpServer.ListenAndServe()
	}()

	select {
	case err := <-serverErrors:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		slog.Info("Shutdown signal received, shutting down MCP server")
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("could not stop server gracefully: %w", err)
		}
		return nil
	}
}

func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")

		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}

func policyOptions() []mcp.ToolOption {
	return []mcp.ToolOption{
		mcp.WithString("source", mcp.Description("Label used in diagnostics and errors (optional)")),
		mcp.WithString("unterminated", mcp.Description("What to do with a diagram missing @enduml"), mcp.Enum("drop", "emit", "fail")),
		mcp.WithString("duplicate_init", mcp.Description("Which initial transition of a composite wins"), mcp.Enum("last", "first", "error")),
		mcp.WithString("hierarchy", mcp.Description("State ownership policy"), mcp.Enum("tolerant", "strict")),
	}
}

func (s *Server) registerTools() {
	// TOOL: parse_diagrams
	parseOpts := []mcp.ToolOption{
		mcp.WithDescription("Extract hierarchical state machine models from PlantUML state diagram text."),
		mcp.WithString("text", mcp.Required(), mcp.Description("Document containing one or more @startuml ... @enduml blocks")),
		mcp.WithOutputSchema[domain.ParseResult](),
	}
	parseTool := mcp.NewTool("parse_diagrams", append(parseOpts, policyOptions()...)...)
	s.mcpServer.AddTool(parseTool, mcp.NewStructuredToolHandler(s.handleParse))

	// TOOL: render_mermaid
	renderOpts := []mcp.ToolOption{
		mcp.WithDescription("Render the diagrams of a PlantUML document as Mermaid stateDiagram-v2."),
		mcp.WithString("text", mcp.Required(), mcp.Description("Document containing one or more @startuml ... @enduml blocks")),
		mcp.WithString("diagram", mcp.Description("Only render the diagram with this name (optional)")),
	}
	renderTool := mcp.NewTool("render_mermaid", append(renderOpts, policyOptions()...)...)
	s.mcpServer.AddTool(renderTool, s.handleRenderMermaid)
}

func (s *Server) handleParse(ctx context.Context, request mcp.CallToolRequest, args ParseArgs) (domain.ParseResult, error) {
	res, err := s.parse(ctx, args)
	if err != nil {
		return domain.ParseResult{}, err
	}
	return *res, nil
}

func (s *Server) handleRenderMermaid(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var args ParseArgs
	if err := request.BindArguments(&args); err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("invalid arguments: %v", err)), nil
	}

	res, err := s.parse(ctx, args)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	if args.Diagram != "" {
		d, ok := res.Diagram(args.Diagram)
		if !ok {
			return mcp.NewToolResultError(fmt.Sprintf("diagram %q not found", args.Diagram)), nil
		}
		res = &domain.ParseResult{Source: res.Source, Diagrams: []*domain.Diagram{d}}
	}

	data, err := generator.EncodeResult(res, generator.FormatMermaid)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("render failed: %v", err)), nil
	}
	return mcp.NewToolResultText(string(data)), nil
}

func (s *Server) parse(ctx context.Context, args ParseArgs) (*domain.ParseResult, error) {
	if strings.TrimSpace(args.Text) == "" {
		return nil, errors.New("text is required")
	}

	opts := append([]hsmgen.Option{}, s.base...)
	if args.Unterminated != "" {
		p, err := domain.ParseUnterminatedPolicy(args.Unterminated)
		if err != nil {
			return nil, err
		}
		opts = append(opts, hsmgen.WithUnterminated(p))
	}
	if args.DuplicateInit != "" {
		p, err := domain.ParseInitPolicy(args.DuplicateInit)
		if err != nil {
			return nil, err
		}
		opts = append(opts, hsmgen.WithDuplicateInit(p))
	}
	if args.Hierarchy != "" {
		p, err := domain.ParseHierarchyPolicy(args.Hierarchy)
		if err != nil {
			return nil, err
		}
		opts = append(opts, hsmgen.WithHierarchy(p))
	}

	source := args.Source
	if source == "" {
		source = "mcp"
	}
	res, err := hsmgen.New(opts...).ParseString(ctx, args.Text, source)
	if err != nil {
		slog.Warn("MCP parse failed", "source", source, "error", err)
		return nil, fmt.Errorf("parse failed: %w", err)
	}
	return res, nil
}

func (s *Server) registerResources() {
	// EXPOSE: hsmgen://version
	s.mcpServer.AddResource(mcp.NewResource("hsmgen://version", "Extractor Version",
		mcp.WithMIMEType("text/plain"),
	), func(ctx context.Context, request mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
		return []mcp.ResourceContents{
			mcp.TextResourceContents{
				URI:      "hsmgen://version",
				MIMEType: "text/plain",
				Text:     strings.TrimSpace(hsmgen.Version),
			},
		}, nil
	})

	// EXPOSE: hsmgen://formats
	s.mcpServer.AddResource(mcp.NewResource("hsmgen://formats", "Output Formats",
		mcp.WithMIMEType("text/plain"),
	), func(ctx context.Context, request mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
		names := make([]string, len(generator.Formats))
		for i, f := range generator.Formats {
			names[i] = string(f)
		}
		return []mcp.ResourceContents{
			mcp.TextResourceContents{
				URI:      "hsmgen://formats",
				MIMEType: "text/plain",
				Text:     strings.Join(names, "\n"),
			},
		}, nil
	})
}
