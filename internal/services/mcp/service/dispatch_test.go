package service

import (
	"context"
	"errors"
	"testing"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/veilchain/veil-mcp/internal/network"
	"github.com/veilchain/veil-mcp/internal/platform/metrics"
	"github.com/veilchain/veil-mcp/internal/services/mcp/domain"
	"github.com/veilchain/veil-mcp/internal/session"
)

func newTestServer(t *testing.T) *Server {
	t.Helper()
	return &Server{
		sessions: session.NewRegistry(network.DefaultNetwork),
		metrics:  metrics.New(),
		deps:     domain.Deps{Networks: network.BuiltinCatalog()},
	}
}

func TestDispatchRejectsEmptySessionID(t *testing.T) {
	server := newTestServer(t)
	run := dispatch(server, "create_account", domain.CreateAccountHandler(server.deps))

	_, _, err := run(context.Background(), "", domain.CreateAccountInput{})
	if !errors.Is(err, errNoSession) {
		t.Fatalf("expected errNoSession, got %v", err)
	}
	if got := server.sessions.Len(); got != 0 {
		t.Fatalf("expected no session created, registry has %d", got)
	}
}

func TestDispatchCreatesSessionOnce(t *testing.T) {
	server := newTestServer(t)
	run := dispatch(server, "create_account", domain.CreateAccountHandler(server.deps))

	if _, _, err := run(context.Background(), "sess-1", domain.CreateAccountInput{}); err != nil {
		t.Fatalf("first call: %v", err)
	}
	if _, _, err := run(context.Background(), "sess-1", domain.CreateAccountInput{}); err != nil {
		t.Fatalf("second call: %v", err)
	}

	if got := server.sessions.Len(); got != 1 {
		t.Fatalf("expected one session, got %d", got)
	}
	store, ok := server.sessions.Get("sess-1")
	if !ok {
		t.Fatal("session sess-1 missing from registry")
	}
	accounts, err := session.Accounts(store)
	if err != nil {
		t.Fatalf("read accounts: %v", err)
	}
	if len(accounts) != 2 {
		t.Fatalf("expected 2 accounts in one session store, got %d", len(accounts))
	}
}

func TestDispatchIsolatesSessions(t *testing.T) {
	server := newTestServer(t)
	create := dispatch(server, "create_account", domain.CreateAccountHandler(server.deps))
	list := dispatch(server, "list_accounts", domain.ListAccountsHandler(server.deps))

	_, created, err := create(context.Background(), "alpha", domain.CreateAccountInput{})
	if err != nil {
		t.Fatalf("create in alpha: %v", err)
	}
	if _, _, err := create(context.Background(), "beta", domain.CreateAccountInput{}); err != nil {
		t.Fatalf("create in beta: %v", err)
	}

	_, listed, err := list(context.Background(), "alpha", domain.ListAccountsInput{})
	if err != nil {
		t.Fatalf("list in alpha: %v", err)
	}
	if listed.Count != 1 {
		t.Fatalf("expected 1 account visible in alpha, got %d", listed.Count)
	}
	if listed.Accounts[0].Address != created.Address {
		t.Fatalf("alpha sees address %s, created %s", listed.Accounts[0].Address, created.Address)
	}
}

func TestDispatchDoesNotResurrectDestroyedSession(t *testing.T) {
	server := newTestServer(t)
	create := dispatch(server, "create_account", domain.CreateAccountHandler(server.deps))
	list := dispatch(server, "list_accounts", domain.ListAccountsHandler(server.deps))

	if _, _, err := create(context.Background(), "doomed", domain.CreateAccountInput{}); err != nil {
		t.Fatalf("create: %v", err)
	}
	if !server.destroySession("doomed") {
		t.Fatal("expected destroy to report a live session")
	}

	// Reusing the identifier yields a fresh empty store, not the old one.
	_, listed, err := list(context.Background(), "doomed", domain.ListAccountsInput{})
	if err != nil {
		t.Fatalf("list after destroy: %v", err)
	}
	if listed.Count != 0 {
		t.Fatalf("expected empty store after destroy, got %d accounts", listed.Count)
	}
}

func TestDestroySessionIdempotent(t *testing.T) {
	server := newTestServer(t)
	server.sessions.Create("once")

	if !server.destroySession("once") {
		t.Fatal("first destroy should succeed")
	}
	if server.destroySession("once") {
		t.Fatal("second destroy should be a no-op")
	}
	if server.destroySession("never-existed") {
		t.Fatal("destroying an unknown id should be a no-op")
	}
}

func TestDispatchSummaryBecomesTextContent(t *testing.T) {
	server := newTestServer(t)
	run := dispatch(server, "create_account", domain.CreateAccountHandler(server.deps))

	callResult, result, err := run(context.Background(), "sess", domain.CreateAccountInput{})
	if err != nil {
		t.Fatalf("dispatch: %v", err)
	}
	if result.Address == "" {
		t.Fatal("expected structured result with an address")
	}
	if callResult == nil || len(callResult.Content) != 1 {
		t.Fatalf("expected one content item, got %+v", callResult)
	}
	text, ok := callResult.Content[0].(*mcp.TextContent)
	if !ok {
		t.Fatalf("expected text content, got %T", callResult.Content[0])
	}
	if text.Text == "" {
		t.Fatal("expected a non-empty summary")
	}
}

func TestDispatchPassesHandlerErrorThrough(t *testing.T) {
	server := newTestServer(t)
	sentinel := errors.New("handler exploded")
	handler := func(ctx context.Context, scope *session.Scope, _ struct{}) (struct{}, string, error) {
		return struct{}{}, "", sentinel
	}
	run := dispatch(server, "failing_tool", domain.HandlerFor[struct{}, struct{}](handler))

	_, _, err := run(context.Background(), "sess", struct{}{})
	if !errors.Is(err, sentinel) {
		t.Fatalf("expected handler error unchanged, got %v", err)
	}
	// A failing tool call must not tear down the session.
	if _, ok := server.sessions.Get("sess"); !ok {
		t.Fatal("session should survive a handler error")
	}
}

func TestDestroySessionToolUsesInjectedCapability(t *testing.T) {
	server := newTestServer(t)
	run := dispatch(server, "destroy_session", domain.DestroySessionHandler(server.destroySession))

	_, result, err := run(context.Background(), "sess", domain.DestroySessionInput{})
	if err != nil {
		t.Fatalf("dispatch: %v", err)
	}
	if !result.Destroyed {
		t.Fatal("expected the freshly created session to be destroyed")
	}
	if _, ok := server.sessions.Get("sess"); ok {
		t.Fatal("registry still holds the destroyed session")
	}
}
