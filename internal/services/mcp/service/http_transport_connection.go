package service

import (
	"context"
	"fmt"
	"sync"

	"github.com/modelcontextprotocol/go-sdk/jsonrpc"
)

// httpConnection implements mcp.Connection for HTTP-based communication. The
// SDK expects a bidirectional stream, so this adapter maps request/response
// flow and notification delivery onto separate buffered channels.
type httpConnection struct {
	sessionID   string
	reqChan     chan jsonrpc.Message
	notifyChan  chan jsonrpc.Message // notifications routed to the SSE stream
	closed      chan struct{}
	ready       chan struct{} // signals the server loop has started reading
	readyOnce   sync.Once
	mu          sync.Mutex
	closedFlag  bool
	pendingReqs map[jsonrpc.ID]chan jsonrpc.Message
	pendingMu   sync.Mutex
}

func newHTTPConnection(sessionID string) *httpConnection {
	return &httpConnection{
		sessionID:   sessionID,
		reqChan:     make(chan jsonrpc.Message, defaultChannelBufferSize),
		notifyChan:  make(chan jsonrpc.Message, defaultChannelBufferSize),
		closed:      make(chan struct{}),
		ready:       make(chan struct{}, 1),
		pendingReqs: make(map[jsonrpc.ID]chan jsonrpc.Message),
	}
}

func (c *httpConnection) Read(ctx context.Context) (jsonrpc.Message, error) {
	// First read means the server session loop is consuming messages.
	c.readyOnce.Do(func() {
		select {
		case c.ready <- struct{}{}:
		default:
		}
	})

	select {
	case msg, ok := <-c.reqChan:
		if !ok {
			return nil, fmt.Errorf("connection closed")
		}
		return msg, nil
	case <-c.closed:
		return nil, fmt.Errorf("connection closed")
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// Write routes a server message either to the HTTP caller awaiting that
// request ID or, for notifications and unmatched responses, to the SSE
// notification channel. The split keeps unrelated notifications out of a
// caller's request/response exchange.
func (c *httpConnection) Write(ctx context.Context, msg jsonrpc.Message) error {
	if c.isClosed() {
		return fmt.Errorf("connection closed")
	}

	if resp, ok := msg.(*jsonrpc.Response); ok && resp.ID != (jsonrpc.ID{}) {
		c.pendingMu.Lock()
		respChan, exists := c.pendingReqs[resp.ID]
		c.pendingMu.Unlock()

		if exists {
			if c.isClosed() {
				return fmt.Errorf("connection closed")
			}
			select {
			case respChan <- msg:
				return nil
			case <-c.closed:
				return fmt.Errorf("connection closed")
			case <-ctx.Done():
				return ctx.Err()
			}
		}
	}

	if c.isClosed() {
		return fmt.Errorf("connection closed")
	}
	select {
	case c.notifyChan <- msg:
		return nil
	case <-c.closed:
		return fmt.Errorf("connection closed")
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Close drains all waiters and channels so a dropped session cannot leave
// goroutines blocked on per-session reads or writes.
func (c *httpConnection) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closedFlag {
		return nil
	}
	c.closedFlag = true
	close(c.closed)
	close(c.reqChan)
	close(c.notifyChan)

	c.pendingMu.Lock()
	for _, respChan := range c.pendingReqs {
		close(respChan)
	}
	c.pendingReqs = nil
	c.pendingMu.Unlock()

	return nil
}

func (c *httpConnection) isClosed() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.closedFlag
}

// SessionID implements mcp.Connection.SessionID.
func (c *httpConnection) SessionID() string {
	return c.sessionID
}

// registerPending reserves a response channel for a request ID. The returned
// cleanup must run once the caller stops waiting.
func (c *httpConnection) registerPending(id jsonrpc.ID) (chan jsonrpc.Message, func()) {
	respChan := make(chan jsonrpc.Message, 1)
	c.pendingMu.Lock()
	if c.pendingReqs != nil {
		c.pendingReqs[id] = respChan
	}
	c.pendingMu.Unlock()
	return respChan, func() {
		c.pendingMu.Lock()
		if c.pendingReqs != nil {
			delete(c.pendingReqs, id)
		}
		c.pendingMu.Unlock()
	}
}
