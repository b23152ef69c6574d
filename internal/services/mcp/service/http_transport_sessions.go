package service

import (
	"context"
	"log"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/veilchain/veil-mcp/internal/platform/privacylog"
)

// Connect implements mcp.Transport.Connect. Each call mints a fresh transport
// session so one client identity can be tracked across request and
// notification streams without cross-session contamination.
func (t *HTTPTransport) Connect(ctx context.Context) (mcp.Connection, error) {
	sessionID := uuid.NewString()
	conn := newHTTPConnection(sessionID)

	now := time.Now()
	sess := &httpSession{
		id:        sessionID,
		conn:      conn,
		createdAt: now,
		lastUsed:  now,
	}

	t.sessionsMu.Lock()
	t.sessions[sessionID] = sess
	t.sessionsMu.Unlock()

	return conn, nil
}

// cleanupSessions periodically tears down idle sessions. Expiry is the
// backstop that guarantees abandoned key material does not outlive its
// client by more than sessionExpirationTime.
func (t *HTTPTransport) cleanupSessions(ctx context.Context) {
	ticker := time.NewTicker(sessionCleanupInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			t.sweepExpiredSessions(now)
		}
	}
}

// sweepExpiredSessions closes and removes every transport session idle past
// the expiration window, destroying the matching registry session so its
// store is wiped.
func (t *HTTPTransport) sweepExpiredSessions(now time.Time) {
	cutoff := now.Add(-sessionExpirationTime)

	var expired []string
	t.sessionsMu.Lock()
	for id, sess := range t.sessions {
		if sess.lastUsed.Before(cutoff) {
			sess.conn.Close()
			delete(t.sessions, id)
			expired = append(expired, id)
		}
	}
	t.sessionsMu.Unlock()

	for _, id := range expired {
		t.serverOnceMu.Lock()
		delete(t.serverOnce, id)
		t.serverOnceMu.Unlock()
		t.srv.destroySession(id)
		log.Printf("session %s expired", privacylog.Fingerprint(id))
	}
}

// removeSession tears down one transport session and its registry state.
// Used for explicit client-initiated termination.
func (t *HTTPTransport) removeSession(id string) bool {
	t.sessionsMu.Lock()
	sess, ok := t.sessions[id]
	if ok {
		sess.conn.Close()
		delete(t.sessions, id)
	}
	t.sessionsMu.Unlock()

	t.serverOnceMu.Lock()
	delete(t.serverOnce, id)
	t.serverOnceMu.Unlock()

	destroyed := t.srv.destroySession(id)
	return ok || destroyed
}

func (t *HTTPTransport) lookupSession(id string) (*httpSession, bool) {
	t.sessionsMu.RLock()
	defer t.sessionsMu.RUnlock()
	sess, ok := t.sessions[id]
	return sess, ok
}

func (t *HTTPTransport) touchSession(sess *httpSession) {
	t.sessionsMu.Lock()
	sess.lastUsed = time.Now()
	t.sessionsMu.Unlock()
}

// ensureServerRunning starts the MCP server loop for this session exactly
// once, then waits briefly for the loop to begin reading so the first
// message is not raced.
func (t *HTTPTransport) ensureServerRunning(sess *httpSession) {
	if t.srv == nil || t.srv.mcpServer == nil {
		return
	}

	t.serverOnceMu.Lock()
	once, exists := t.serverOnce[sess.id]
	if !exists {
		once = &sync.Once{}
		t.serverOnce[sess.id] = once
	}
	t.serverOnceMu.Unlock()

	transport := &sessionTransport{conn: sess.conn}
	once.Do(func() {
		go func() {
			serverSession, err := t.srv.mcpServer.Connect(t.serverCtx, transport, nil)
			if err != nil {
				log.Printf("failed to connect MCP server session %s: %v", privacylog.Fingerprint(sess.id), err)
				return
			}
			_ = serverSession.Wait()
		}()
	})

	select {
	case <-sess.conn.ready:
	case <-time.After(t.serverReadyTimeout):
		// Readiness will catch up once the first Read happens.
	case <-t.serverCtx.Done():
	}
}

// sessionTransport hands Server.Connect a pre-existing connection.
type sessionTransport struct {
	conn mcp.Connection
}

func (st *sessionTransport) Connect(ctx context.Context) (mcp.Connection, error) {
	return st.conn, nil
}
