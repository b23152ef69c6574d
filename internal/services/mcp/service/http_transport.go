package service

import (
	"context"
	"fmt"
	"log"
	"net"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/veilchain/veil-mcp/internal/platform/config"
)

// httpEnv holds env-parsed configuration for the MCP HTTP transport.
type httpEnv struct {
	AllowedHosts []string `env:"VEIL_MCP_ALLOWED_HOSTS" envSeparator:","`
}

const (
	// defaultChannelBufferSize is the buffer size for request, response, and
	// notification channels.
	defaultChannelBufferSize = 10

	// defaultRequestTimeout is the maximum time to wait for a JSON-RPC
	// response.
	defaultRequestTimeout = 30 * time.Second

	// defaultShutdownTimeout is the maximum time to wait for graceful HTTP
	// server shutdown. Longer than defaultRequestTimeout so in-flight
	// requests can complete.
	defaultShutdownTimeout = 35 * time.Second

	// sessionCleanupInterval is how often the cleanup goroutine sweeps for
	// expired sessions.
	sessionCleanupInterval = 5 * time.Minute

	// sessionExpirationTime is how long a session can be inactive before it
	// is torn down, key material included.
	sessionExpirationTime = 1 * time.Hour

	// sseHeartbeatInterval is how often lastUsed is refreshed for active SSE
	// connections.
	sseHeartbeatInterval = 30 * time.Second

	// defaultSessionReadyTimeout bounds how long a request waits for a
	// session connection to become ready before handling continues.
	defaultSessionReadyTimeout = 100 * time.Millisecond
)

// HTTPTransport serves MCP over HTTP: JSON-RPC over POST, SSE for
// notifications. It is explicit about session lifecycle so an abandoned
// client session cannot keep key material alive past expiry.
type HTTPTransport struct {
	addr         string
	allowedHosts map[string]struct{}
	srv          *Server
	sessions     map[string]*httpSession
	sessionsMu   sync.RWMutex
	httpServer   *http.Server
	serverCtx    context.Context
	serverCancel context.CancelFunc
	serverOnceMu sync.Mutex
	serverOnce   map[string]*sync.Once

	serverReadyTimeout time.Duration
}

// httpSession tracks one MCP session's liveness and active connection.
type httpSession struct {
	id        string
	conn      *httpConnection
	createdAt time.Time
	lastUsed  time.Time
}

// NewHTTPTransport creates an HTTP transport serving srv. It defaults to
// localhost-only binding; broaden access with VEIL_MCP_ALLOWED_HOSTS.
func NewHTTPTransport(addr string, srv *Server) *HTTPTransport {
	if addr == "" {
		addr = "localhost:8081"
	}
	var raw httpEnv
	_ = config.ParseEnv(&raw)
	ctx, cancel := context.WithCancel(context.Background())
	return &HTTPTransport{
		addr:               addr,
		allowedHosts:       parseAllowedHosts(raw.AllowedHosts),
		srv:                srv,
		sessions:           make(map[string]*httpSession),
		serverCtx:          ctx,
		serverCancel:       cancel,
		serverOnce:         make(map[string]*sync.Once),
		serverReadyTimeout: defaultSessionReadyTimeout,
	}
}

// Start starts the HTTP server and blocks until ctx is cancelled or the
// server fails.
func (t *HTTPTransport) Start(ctx context.Context) error {
	t.serverCtx, t.serverCancel = context.WithCancel(ctx)

	go t.cleanupSessions(ctx)

	mux := http.NewServeMux()
	mux.HandleFunc("/mcp", func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodGet:
			t.handleSSE(w, r)
		case http.MethodPost:
			t.handleMessages(w, r)
		case http.MethodDelete:
			t.handleDelete(w, r)
		default:
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		}
	})
	mux.HandleFunc("/mcp/health", t.handleHealth)
	mux.Handle("/metrics", t.srv.metrics.Handler())

	t.httpServer = &http.Server{
		Addr:    t.addr,
		Handler: mux,
	}

	log.Printf("starting MCP HTTP server on %s", t.addr)

	errChan := make(chan error, 1)
	go func() {
		listener, err := net.Listen("tcp", t.addr)
		if err != nil {
			errChan <- err
			return
		}
		if err := t.httpServer.Serve(listener); err != nil && err != http.ErrServerClosed {
			errChan <- err
		}
	}()

	select {
	case <-ctx.Done():
		log.Printf("shutting down MCP HTTP server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), defaultShutdownTimeout)
		defer cancel()
		if err := t.httpServer.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutdown HTTP server: %w", err)
		}
		if t.serverCancel != nil {
			t.serverCancel()
		}
		return nil
	case err := <-errChan:
		return fmt.Errorf("HTTP server error: %w", err)
	}
}

// handleHealth answers liveness probes.
func (t *HTTPTransport) handleHealth(w http.ResponseWriter, r *http.Request) {
	if err := t.validateLocalRequest(r); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write([]byte("OK")); err != nil {
		log.Printf("failed to write health response: %v", err)
	}
}

// validateLocalRequest enforces Host and Origin checks so the server cannot
// be driven cross-origin from a browser pointed at another site.
func (t *HTTPTransport) validateLocalRequest(r *http.Request) error {
	if r == nil {
		return fmt.Errorf("invalid request")
	}
	if !t.isAllowedHostHeader(r.Host) {
		return fmt.Errorf("invalid host")
	}

	origin := strings.TrimSpace(r.Header.Get("Origin"))
	if origin == "" {
		return nil
	}
	parsed, err := url.Parse(origin)
	if err != nil || parsed.Host == "" {
		return fmt.Errorf("invalid origin")
	}
	if !t.isAllowedHostHeader(parsed.Host) {
		return fmt.Errorf("invalid origin")
	}
	return nil
}

func (t *HTTPTransport) isAllowedHostHeader(host string) bool {
	trimmed := strings.ToLower(strings.TrimSpace(host))
	if trimmed == "" {
		return false
	}
	if h, _, err := net.SplitHostPort(trimmed); err == nil {
		trimmed = h
	}
	trimmed = strings.Trim(trimmed, "[]")
	if len(t.allowedHosts) == 0 {
		return trimmed == "localhost" || trimmed == "127.0.0.1" || trimmed == "::1"
	}
	_, ok := t.allowedHosts[trimmed]
	return ok
}

func parseAllowedHosts(hosts []string) map[string]struct{} {
	result := make(map[string]struct{}, len(hosts))
	for _, entry := range hosts {
		trimmed := strings.ToLower(strings.TrimSpace(entry))
		if trimmed == "" {
			continue
		}
		result[trimmed] = struct{}{}
	}
	return result
}
