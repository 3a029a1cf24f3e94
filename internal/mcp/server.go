package mcp

import (
	"context"

	"github.com/mark3labs/mcp-go/server"

	"github.com/kerala-navigator/navigator/internal/catalog"
	"github.com/kerala-navigator/navigator/internal/navigator"
)

// Version is set via ldflags at build time.
var Version = "dev"

// Resolver answers a free-text citizen query.
type Resolver interface {
	Resolve(ctx context.Context, q navigator.Query) (navigator.Result, error)
}

// Server wraps an MCP server that exposes the navigator as tools.
type Server struct {
	resolver   Resolver
	services   catalog.Source
	lifeEvents []catalog.LifeEvent
	mcp        *server.MCPServer
}

// NewServer creates a new MCP server. services may be nil, in which case
// get_service reports the catalog as unavailable.
func NewServer(resolver Resolver, services catalog.Source) *Server {
	s := &Server{
		resolver:   resolver,
		services:   services,
		lifeEvents: catalog.LifeEvents(),
	}

	s.mcp = server.NewMCPServer(
		"kerala-navigator",
		Version,
		server.WithToolCapabilities(false),
	)

	s.registerTools()

	return s
}

func (s *Server) registerTools() {
	s.mcp.AddTool(askNavigatorTool, s.handleAskNavigator)
	s.mcp.AddTool(getServiceTool, s.handleGetService)
	s.mcp.AddTool(listServicesTool, s.handleListServices)
	s.mcp.AddTool(listLifeEventsTool, s.handleListLifeEvents)
}

// Serve starts the MCP server on stdio. Stdout is used for MCP protocol
// messages; all logging must go to stderr.
func (s *Server) Serve() error {
	return server.ServeStdio(s.mcp)
}
