// Package mcpserver exposes the census wizard to agents as MCP tools over
// streamable HTTP.
package mcpserver

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"sync"

	"github.com/mark3labs/mcp-go/server"

	"github.com/mark3labs/census/internal/census"
	"github.com/mark3labs/census/internal/logger"
	"github.com/mark3labs/census/internal/records"
	"github.com/mark3labs/census/internal/wizard"
)

// RecordGetter fetches a single record from the census service.
type RecordGetter interface {
	GetRecord(ctx context.Context, id string) (census.Record, error)
}

// Server manages an embedded MCP HTTP server that exposes record and step
// tools. Submissions go through the same wizard controller the TUI and CLI
// use, so local validation and reconciliation apply.
type Server struct {
	records    *records.Controller
	wizard     *wizard.Controller
	getter     RecordGetter
	addr       string
	mcpServer  *server.MCPServer
	httpServer *server.StreamableHTTPServer
	stdServer  *http.Server // Standard HTTP server that uses the listener
	port       int
	mu         sync.Mutex
}

// Option configures a Server.
type Option func(*Server)

// WithAddr sets the listen address. The default picks a free port on
// localhost.
func WithAddr(addr string) Option {
	return func(s *Server) { s.addr = addr }
}

// New creates a new MCP server instance.
// The server is not started until Start() is called.
func New(recs *records.Controller, wiz *wizard.Controller, getter RecordGetter, opts ...Option) *Server {
	s := &Server{
		records: recs,
		wizard:  wiz,
		getter:  getter,
		addr:    "127.0.0.1:0",
	}
	for _, opt := range opts {
		opt(s)
	}
	s.mcpServer = server.NewMCPServer(
		"census-tools",
		"1.0.0",
		server.WithToolCapabilities(true),
	)
	s.registerTools()
	return s
}

// Start starts the MCP HTTP server.
// Returns the port number or an error if startup fails.
func (s *Server) Start(ctx context.Context) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.stdServer != nil {
		return 0, fmt.Errorf("server already started")
	}

	var lc net.ListenConfig
	listener, err := lc.Listen(ctx, "tcp", s.addr)
	if err != nil {
		return 0, fmt.Errorf("failed to listen on %s: %w", s.addr, err)
	}
	s.port = listener.Addr().(*net.TCPAddr).Port

	// Stateless mode; the listener is passed directly to avoid a TOCTOU race
	mux := http.NewServeMux()
	mcpHandler := server.NewStreamableHTTPServer(
		s.mcpServer,
		server.WithStateLess(true),
	)
	mux.Handle("/mcp", mcpHandler)

	s.stdServer = &http.Server{
		Handler: mux,
	}
	s.httpServer = mcpHandler

	logger.Debug("Starting MCP server on port %d", s.port)

	// Capture stdServer reference for goroutine to avoid race with Stop()
	stdServer := s.stdServer
	go func() {
		if err := stdServer.Serve(listener); err != nil && err != http.ErrServerClosed {
			logger.Error("MCP server error: %v", err)
		}
	}()

	logger.Debug("MCP server ready on port %d", s.port)
	return s.port, nil
}

// Stop stops the MCP HTTP server and cleans up resources.
func (s *Server) Stop() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.stdServer == nil {
		return nil // Already stopped
	}

	logger.Debug("Stopping MCP server")
	if err := s.stdServer.Shutdown(context.Background()); err != nil {
		logger.Warn("Error stopping MCP server: %v", err)
		return fmt.Errorf("failed to stop server: %w", err)
	}

	s.httpServer = nil
	s.stdServer = nil
	logger.Debug("MCP server stopped")
	return nil
}

// URL returns the HTTP URL for the MCP server endpoint.
func (s *Server) URL() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return fmt.Sprintf("http://localhost:%d/mcp", s.port)
}
