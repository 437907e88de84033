package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/aretw0/tradecoin"
	"github.com/aretw0/tradecoin/pkg/domain"
	"github.com/aretw0/tradecoin/pkg/registry"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

// CallerParam is the tool argument naming the address an operation runs for.
const CallerParam = "caller"

// EventsURI is the resource exposing the committed event log.
const EventsURI = "tradecoin://events"

// EventSource returns the committed events after a sequence number.
type EventSource interface {
	Events(since uint64) []domain.Event
}

// Server exposes the ledger operations as MCP tools.
type Server struct {
	ops       *registry.Registry
	events    EventSource
	mcpServer *server.MCPServer
	tools     []string
}

// NewServer creates a new MCP Server instance.
func NewServer(ops *registry.Registry, events EventSource) *Server {
	s := &Server{
		ops:       ops,
		events:    events,
		mcpServer: server.NewMCPServer("tradecoin-mcp", strings.TrimSpace(tradecoin.Version)),
	}
	s.registerTools()
	s.registerResources()
	return s
}

// Tools lists the registered tool names.
func (s *Server) Tools() []string { return s.tools }

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
	mux.Handle("/sse", sseServer.SSEHandler())
	mux.Handle("/message", sseServer.MessageHandler())

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
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("could not stop server gracefully: %w", err)
		}
		return nil
	}
}

func (s *Server) registerTools() {
	for _, op := range s.ops.List() {
		opts := []mcp.ToolOption{mcp.WithDescription(op.Description)}
		if op.Mutating {
			opts = append(opts, mcp.WithString(CallerParam, mcp.Required(),
				mcp.Description("Address the operation is executed for")))
		}
		for _, p := range op.Params {
			opts = append(opts, paramOption(p))
		}
		name := toolName(op.Name)
		s.mcpServer.AddTool(mcp.NewTool(name, opts...), s.handler(op))
		s.tools = append(s.tools, name)
	}
}

func paramOption(p registry.Param) mcp.ToolOption {
	props := []mcp.PropertyOption{mcp.Description(p.Description)}
	if p.Required {
		props = append(props, mcp.Required())
	}
	switch p.Type {
	case "number":
		return mcp.WithNumber(p.Name, props...)
	case "boolean":
		return mcp.WithBoolean(p.Name, props...)
	case "array":
		return mcp.WithArray(p.Name, append(props, mcp.Items(map[string]any{"type": "number"}))...)
	}
	return mcp.WithString(p.Name, props...)
}

// toolName turns "tokenizer.mint" into "tokenizer_mint"; dots are not valid in tool names
// for every client.
func toolName(op string) string {
	return strings.ReplaceAll(op, ".", "_")
}

func (s *Server) handler(op registry.Operation) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		args := map[string]any{}
		for k, v := range request.GetArguments() {
			args[k] = v
		}
		caller, _ := args[CallerParam].(string)
		delete(args, CallerParam)

		if op.Mutating && domain.Address(caller).IsZero() {
			return mcp.NewToolResultError("caller is required"), nil
		}

		result, err := s.ops.Execute(ctx, op.Name, domain.Address(caller), args)
		if err != nil {
			var de *domain.Error
			if errors.As(err, &de) || errors.Is(err, registry.ErrInvalidArguments) {
				return mcp.NewToolResultError(err.Error()), nil
			}
			slog.Error("MCP tool failed", "tool", op.Name, "error", err)
			return mcp.NewToolResultError(fmt.Sprintf("%s failed: %v", op.Name, err)), nil
		}
		if result == nil {
			return mcp.NewToolResultText(`{"ok":true}`), nil
		}
		data, err := json.Marshal(result)
		if err != nil {
			return nil, fmt.Errorf("encode result: %w", err)
		}
		return mcp.NewToolResultText(string(data)), nil
	}
}

func (s *Server) registerResources() {
	s.mcpServer.AddResource(mcp.NewResource(EventsURI, "Committed ledger events",
		mcp.WithMIMEType("application/json"),
	), func(ctx context.Context, request mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
		return s.readEvents()
	})
}

func (s *Server) readEvents() ([]mcp.ResourceContents, error) {
	events := s.events.Events(0)
	if events == nil {
		events = []domain.Event{}
	}
	data, err := json.Marshal(events)
	if err != nil {
		return nil, fmt.Errorf("failed to encode events: %w", err)
	}
	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      EventsURI,
			MIMEType: "application/json",
			Text:     string(data),
		},
	}, nil
}
