package service

import (
	"context"

	"github.com/google/uuid"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

// stdioSessionTransport wraps the SDK stdio transport so the connection
// reports a generated session identifier. Stdio serves exactly one client, so
// one identifier for the process lifetime is the right granularity; without
// it the dispatch wrapper would reject every call.
type stdioSessionTransport struct {
	inner     mcp.Transport
	sessionID string
}

func newStdioSessionTransport() *stdioSessionTransport {
	return &stdioSessionTransport{
		inner:     &mcp.StdioTransport{},
		sessionID: uuid.NewString(),
	}
}

// Connect implements mcp.Transport.
func (t *stdioSessionTransport) Connect(ctx context.Context) (mcp.Connection, error) {
	conn, err := t.inner.Connect(ctx)
	if err != nil {
		return nil, err
	}
	return &identifiedConnection{Connection: conn, id: t.sessionID}, nil
}

// identifiedConnection overrides SessionID on a wrapped connection.
type identifiedConnection struct {
	mcp.Connection
	id string
}

func (c *identifiedConnection) SessionID() string {
	return c.id
}
