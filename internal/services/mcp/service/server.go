package service

import (
	"context"
	"errors"
	"fmt"
	"log"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/veilchain/veil-mcp/internal/chain"
	"github.com/veilchain/veil-mcp/internal/compiler"
	"github.com/veilchain/veil-mcp/internal/network"
	"github.com/veilchain/veil-mcp/internal/platform/metrics"
	"github.com/veilchain/veil-mcp/internal/platform/privacylog"
	"github.com/veilchain/veil-mcp/internal/services/mcp/domain"
	"github.com/veilchain/veil-mcp/internal/session"
)

const (
	serverName = "Veilchain MCP"
	// serverVersion identifies the MCP server version.
	serverVersion = "0.1.0"
)

// TransportKind identifies the MCP transport implementation.
type TransportKind string

const (
	// TransportStdio uses standard input/output for MCP.
	TransportStdio TransportKind = "stdio"
	// TransportHTTP runs MCP over HTTP/SSE for remote clients.
	TransportHTTP TransportKind = "http"
)

// Config configures the MCP server.
type Config struct {
	Transport      TransportKind
	HTTPAddr       string // HTTP server address for the http transport. Defaults to localhost:8081.
	DefaultNetwork string // Network seeded into new sessions. Defaults to testnet.
	CatalogPath    string // Optional YAML network catalog override file.
	CompilerURL    string // Solidity build service endpoint.
	VerifierURL    string // Contract verification service endpoint.
}

// Server hosts the MCP server and owns session lifecycle.
type Server struct {
	mcpServer *mcp.Server
	sessions  *session.Registry
	metrics   *metrics.Set
	chains    *chain.Pool
	deps      domain.Deps
}

// New creates a configured MCP server with its tool and resource modules
// registered.
func New(cfg Config) (*Server, error) {
	defaultNetwork := cfg.DefaultNetwork
	if defaultNetwork == "" {
		defaultNetwork = network.DefaultNetwork
	}
	defaultNetwork, err := network.Normalize(defaultNetwork)
	if err != nil {
		return nil, fmt.Errorf("default network: %w", err)
	}

	catalog, err := network.LoadCatalog(cfg.CatalogPath)
	if err != nil {
		return nil, err
	}

	pool := chain.NewPool()
	server := &Server{
		sessions: session.NewRegistry(defaultNetwork),
		metrics:  metrics.New(),
		chains:   pool,
		deps: domain.Deps{
			Networks: catalog,
			Chains:   pool,
			Compiler: compiler.NewHTTPService(cfg.CompilerURL),
			Verifier: compiler.NewHTTPVerifier(cfg.VerifierURL),
		},
	}
	server.mcpServer = mcp.NewServer(&mcp.Implementation{Name: serverName, Version: serverVersion}, nil)

	for _, module := range newRegistrationModules(server, defaultNetwork) {
		if err := module.register(serverRegistrationAdapter{server: server.mcpServer}); err != nil {
			return nil, fmt.Errorf("register MCP module %q: %w", module.name, err)
		}
	}
	return server, nil
}

// destroySession tears down the registry session for id and keeps the
// active-session gauge honest. Safe to call for absent ids.
func (s *Server) destroySession(id string) bool {
	destroyed := s.sessions.Destroy(id)
	if destroyed {
		s.metrics.ActiveSessions.Dec()
		log.Printf("session %s destroyed", privacylog.Fingerprint(id))
	}
	return destroyed
}

// Close releases chain connections and wipes every live session.
func (s *Server) Close() {
	if s == nil {
		return
	}
	s.sessions.ClearAll()
	s.chains.Close()
}

// Run is the service entrypoint for MCP and blocks until context
// cancellation. Startup chooses stdio for local tools and HTTP for remote
// integrations.
func Run(ctx context.Context, cfg Config) error {
	if cfg.Transport == "" {
		cfg.Transport = TransportStdio
	}

	server, err := New(cfg)
	if err != nil {
		return err
	}
	defer server.Close()

	switch cfg.Transport {
	case TransportStdio:
		return server.serveWithTransport(ctx, newStdioSessionTransport())
	case TransportHTTP:
		return NewHTTPTransport(cfg.HTTPAddr, server).Start(ctx)
	default:
		return fmt.Errorf("transport %q is not supported", cfg.Transport)
	}
}

// serveWithTransport starts the MCP server using the provided transport.
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
