package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/louisbranch/roundtable/internal/services/engine/client"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

const (
	// serverName identifies this MCP server to clients.
	serverName = "roundtable"
	// serverVersion identifies the MCP server version.
	serverVersion = "0.1.0"
)

// Config configures the MCP server.
type Config struct {
	// EngineURL is the base URL of the engine HTTP API.
	EngineURL string
	// EngineKey is the pre-shared key sent on every engine request.
	EngineKey string
}

// Server hosts the MCP server.
type Server struct {
	mcpServer *mcp.Server
}

// NewServer binds every engine tool to a fresh MCP server backed by the
// engine HTTP client.
func NewServer(cfg Config) (*Server, error) {
	if strings.TrimSpace(cfg.EngineURL) == "" {
		return nil, fmt.Errorf("engine URL is required")
	}
	if strings.TrimSpace(cfg.EngineKey) == "" {
		return nil, fmt.Errorf("engine key is required")
	}
	return newServer(client.New(cfg.EngineURL, cfg.EngineKey, nil)), nil
}

// newServer creates MCP tool handler bindings once over the given engine.
func newServer(engine EngineClient) *Server {
	mcpServer := mcp.NewServer(&mcp.Implementation{Name: serverName, Version: serverVersion}, nil)
	registerTools(mcpServer, engine)
	return &Server{mcpServer: mcpServer}
}

func registerTools(server *mcp.Server, engine EngineClient) {
	mcp.AddTool(server, CampaignCreateTool(), CampaignCreateHandler(engine))
	mcp.AddTool(server, CampaignStateTool(), CampaignStateHandler(engine))
	mcp.AddTool(server, EventAppendTool(), EventAppendHandler(engine))
	mcp.AddTool(server, EventsListTool(), EventsListHandler(engine))
	mcp.AddTool(server, RollDiceTool(), RollDiceHandler(engine))
	mcp.AddTool(server, MemoryWriteTool(), MemoryWriteHandler(engine))
	mcp.AddTool(server, MemoryReadTool(), MemoryReadHandler(engine))
	mcp.AddTool(server, TurnAdvanceTool(), TurnAdvanceHandler(engine))
	mcp.AddTool(server, DirectorNextTool(), DirectorNextHandler(engine))
	mcp.AddTool(server, StateMutateTool(), StateMutateHandler(engine))
}

// Serve starts the MCP server on stdio and blocks until it stops or the
// context ends.
func (s *Server) Serve(ctx context.Context) error {
	return s.serveWithTransport(ctx, &mcp.StdioTransport{})
}

// serveWithTransport starts the MCP server using the provided transport.
// Context cancellation is the expected shutdown path, not a failure.
func (s *Server) serveWithTransport(ctx context.Context, transport mcp.Transport) error {
	if s == nil || s.mcpServer == nil {
		return fmt.Errorf("MCP server is not configured")
	}
	if ctx == nil {
		ctx = context.Background()
	}
	err := s.mcpServer.Run(ctx, transport)
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		err = nil
	}
	if err != nil {
		return fmt.Errorf("serve MCP: %w", err)
	}
	return nil
}

// Run is the service entrypoint for MCP and blocks until context
// cancellation.
func Run(ctx context.Context, cfg Config) error {
	server, err := NewServer(cfg)
	if err != nil {
		return err
	}
	return server.Serve(ctx)
}
