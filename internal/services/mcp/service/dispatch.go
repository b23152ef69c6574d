package service

import (
	"context"
	"errors"
	"log"
	"strings"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/veilchain/veil-mcp/internal/platform/privacylog"
	"github.com/veilchain/veil-mcp/internal/services/mcp/domain"
	"github.com/veilchain/veil-mcp/internal/session"
	"go.opentelemetry.io/otel"
)

const tracerName = "veil-mcp"

// errNoSession is the protocol error for a call carrying no session identity.
// No session is created for such a call.
var errNoSession = errors.New("no session identifier supplied")

// withSession adapts a raw domain handler into an MCP tool handler bound to
// the caller's session. Every tool goes through this wrapper; it is the only
// place session stores are resolved.
func withSession[I, O any](server *Server, toolName string, handler domain.HandlerFor[I, O]) mcp.ToolHandlerFor[I, O] {
	run := dispatch(server, toolName, handler)
	return func(ctx context.Context, req *mcp.CallToolRequest, input I) (*mcp.CallToolResult, O, error) {
		return run(ctx, requestSessionID(req), input)
	}
}

// dispatch is the transport-independent core of withSession: resolve the
// session store atomically, hand the handler a scope, and pass its result
// through. The handler result and error are never rewritten; the wrapper adds
// only breadcrumbs, metrics, and a span.
func dispatch[I, O any](server *Server, toolName string, handler domain.HandlerFor[I, O]) func(context.Context, string, I) (*mcp.CallToolResult, O, error) {
	return func(ctx context.Context, sessionID string, input I) (*mcp.CallToolResult, O, error) {
		var zero O
		if strings.TrimSpace(sessionID) == "" {
			server.metrics.RecordToolCall(toolName, errNoSession)
			return nil, zero, errNoSession
		}

		ctx, span := otel.Tracer(tracerName).Start(ctx, "tool/"+toolName)
		defer span.End()

		store, existed := server.sessions.GetOrCreate(sessionID)
		if !existed {
			server.metrics.SessionsCreated.Inc()
			server.metrics.ActiveSessions.Inc()
			log.Printf("session %s created on %s", privacylog.Fingerprint(sessionID), toolName)
		}

		result, summary, err := handler(ctx, &session.Scope{ID: sessionID, Store: store}, input)
		server.metrics.RecordToolCall(toolName, err)
		if err != nil {
			span.RecordError(err)
			log.Printf("tool %s failed: %s", toolName, privacylog.Redact(err.Error()))
			return nil, zero, err
		}

		var callResult *mcp.CallToolResult
		if summary != "" {
			callResult = &mcp.CallToolResult{
				Content: []mcp.Content{&mcp.TextContent{Text: summary}},
			}
		}
		return callResult, result, nil
	}
}

func requestSessionID(req *mcp.CallToolRequest) string {
	if req == nil || req.Session == nil {
		return ""
	}
	return req.Session.ID()
}
