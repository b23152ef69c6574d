package service

import (
	"encoding/json"
	"io"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/modelcontextprotocol/go-sdk/jsonrpc"
)

const sessionCookieName = "mcp_session"

// requestSession resolves the transport session named by the Mcp-Session-Id
// header, falling back to the legacy cookie.
func (t *HTTPTransport) requestSession(r *http.Request) (*httpSession, string) {
	sessionID := strings.TrimSpace(r.Header.Get("Mcp-Session-Id"))
	if sessionID == "" {
		if cookie, err := r.Cookie(sessionCookieName); err == nil && cookie != nil {
			sessionID = cookie.Value
		}
	}
	if sessionID == "" {
		return nil, ""
	}
	sess, ok := t.lookupSession(sessionID)
	if !ok {
		return nil, sessionID
	}
	return sess, sessionID
}

// handleMessages is the write path for all JSON-RPC traffic over POST /mcp.
// Session creation happens only on initialize; every other method must carry
// a live session identifier.
func (t *HTTPTransport) handleMessages(w http.ResponseWriter, r *http.Request) {
	if err := t.validateLocalRequest(r); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	body, err := io.ReadAll(r.Body)
	if err != nil {
		http.Error(w, "Failed to read request", http.StatusBadRequest)
		return
	}
	defer r.Body.Close()

	msg, err := jsonrpc.DecodeMessage(body)
	if err != nil {
		http.Error(w, "Invalid JSON-RPC message", http.StatusBadRequest)
		return
	}

	isInitialize := false
	if req, ok := msg.(*jsonrpc.Request); ok {
		isInitialize = req.Method == "initialize"
	}

	sess, sessionID := t.requestSession(r)
	if sess == nil && sessionID != "" && !isInitialize {
		writeSessionError(w, "Invalid session ID")
		return
	}

	if sess == nil {
		if !isInitialize {
			writeSessionError(w, "Invalid or missing session ID")
			return
		}
		conn, err := t.Connect(r.Context())
		if err != nil {
			log.Printf("failed to create session: %v", err)
			http.Error(w, "Failed to create session", http.StatusInternalServerError)
			return
		}
		sessionID = conn.SessionID()
		sess, _ = t.lookupSession(sessionID)
		if sess == nil {
			http.Error(w, "Failed to retrieve session after creation", http.StatusInternalServerError)
			return
		}

		w.Header().Set("Mcp-Session-Id", sessionID)
		http.SetCookie(w, &http.Cookie{
			Name:     sessionCookieName,
			Value:    sessionID,
			Path:     "/",
			HttpOnly: true,
			SameSite: http.SameSiteStrictMode,
		})
	}

	t.touchSession(sess)
	t.ensureServerRunning(sess)

	// Requests carry a non-null ID and expect a routed response;
	// notifications do not.
	var isRequest bool
	switch v := msg.(type) {
	case *jsonrpc.Request:
		isRequest = v.ID != (jsonrpc.ID{})
	case *jsonrpc.Response:
		http.Error(w, "Invalid message type: response", http.StatusBadRequest)
		return
	default:
		isRequest = true
	}

	if !isRequest {
		select {
		case sess.conn.reqChan <- msg:
		case <-r.Context().Done():
			http.Error(w, "Request cancelled", http.StatusRequestTimeout)
			return
		}
		w.WriteHeader(http.StatusNoContent)
		return
	}

	req, ok := msg.(*jsonrpc.Request)
	if !ok {
		http.Error(w, "Invalid request type", http.StatusBadRequest)
		return
	}

	respChan, cleanup := sess.conn.registerPending(req.ID)
	defer cleanup()

	select {
	case sess.conn.reqChan <- msg:
	case <-r.Context().Done():
		http.Error(w, "Request cancelled", http.StatusRequestTimeout)
		return
	}

	select {
	case resp := <-respChan:
		data, err := jsonrpc.EncodeMessage(resp)
		if err != nil {
			log.Printf("failed to encode response: %v", err)
			http.Error(w, "Failed to encode response", http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		if _, err := w.Write(data); err != nil {
			log.Printf("failed to write response: %v", err)
		}
	case <-r.Context().Done():
		http.Error(w, "Request cancelled", http.StatusRequestTimeout)
	case <-time.After(defaultRequestTimeout):
		http.Error(w, "Request timeout", http.StatusRequestTimeout)
	}
}

// handleDelete handles DELETE /mcp: explicit session termination per the MCP
// streamable HTTP transport. Tearing down the transport session also wipes
// the registry session and its key material.
func (t *HTTPTransport) handleDelete(w http.ResponseWriter, r *http.Request) {
	if err := t.validateLocalRequest(r); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	sess, sessionID := t.requestSession(r)
	if sessionID == "" {
		writeSessionError(w, "Invalid or missing session ID")
		return
	}
	if sess == nil {
		// Registry state may outlive the transport session; wipe it anyway.
		t.srv.destroySession(sessionID)
		w.WriteHeader(http.StatusNotFound)
		return
	}

	t.removeSession(sessionID)
	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		SameSite: http.SameSiteStrictMode,
	})
	w.WriteHeader(http.StatusNoContent)
}

func writeSessionError(w http.ResponseWriter, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusBadRequest)
	payload := map[string]interface{}{
		"jsonrpc": "2.0",
		"error": map[string]interface{}{
			"code":    -32000,
			"message": message,
		},
		"id": nil,
	}
	data, err := json.Marshal(payload)
	if err != nil {
		_, _ = w.Write([]byte("{\"jsonrpc\":\"2.0\",\"error\":{\"code\":-32000,\"message\":\"Session error\"},\"id\":null}"))
		return
	}
	_, _ = w.Write(data)
}
