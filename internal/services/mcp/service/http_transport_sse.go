package service

import (
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"time"
)

// handleSSE handles GET /mcp as a notification-only event stream. Request
// and reply traffic stays on the POST path; SSE only carries server-pushed
// notifications.
func (t *HTTPTransport) handleSSE(w http.ResponseWriter, r *http.Request) {
	if err := t.validateLocalRequest(r); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	sess, _ := t.requestSession(r)
	if sess == nil {
		http.Error(w, "Invalid or missing session ID", http.StatusBadRequest)
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	if flusher, ok := w.(http.Flusher); ok {
		flusher.Flush()
	}

	t.touchSession(sess)

	// Refresh activity periodically so an idle but connected SSE stream is
	// not reaped by the cleanup sweep.
	ticker := time.NewTicker(sseHeartbeatInterval)
	defer ticker.Stop()

	ctx := r.Context()
	for {
		select {
		case <-ctx.Done():
			return
		case <-sess.conn.closed:
			return
		case <-ticker.C:
			t.touchSession(sess)
		case msg, ok := <-sess.conn.notifyChan:
			if !ok {
				return
			}
			t.touchSession(sess)
			data, err := json.Marshal(msg)
			if err != nil {
				log.Printf("failed to marshal SSE message: %v", err)
				continue
			}
			fmt.Fprintf(w, "data: %s\n\n", data)
			if flusher, ok := w.(http.Flusher); ok {
				flusher.Flush()
			}
		}
	}
}
