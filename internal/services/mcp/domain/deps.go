package domain

import (
	"context"
	"encoding/hex"
	"fmt"
	"math/big"
	"strings"
	"time"

	"github.com/veilchain/veil-mcp/internal/chain"
	"github.com/veilchain/veil-mcp/internal/compiler"
	"github.com/veilchain/veil-mcp/internal/network"
	"github.com/veilchain/veil-mcp/internal/session"
)

// chainCallTimeout caps each handler's chain and collaborator round-trips.
const chainCallTimeout = 30 * time.Second

// HandlerFor is the raw shape of a tool handler before session dispatch. The
// returned string is a human-readable summary the dispatch layer attaches to
// the tool result next to the structured payload.
type HandlerFor[I, O any] func(ctx context.Context, scope *session.Scope, input I) (O, string, error)

// ClientPool resolves a chain client for an RPC endpoint.
type ClientPool interface {
	Client(ctx context.Context, rpcURL string) (chain.Client, error)
}

// Deps bundles the external collaborators tool handlers use. The session
// Registry is deliberately absent; handlers receive a resolved Scope.
type Deps struct {
	Networks *network.Catalog
	Chains   ClientPool
	Compiler compiler.Service
	Verifier compiler.Verifier
}

// activeNetwork resolves the session's NETWORK entry against the catalog.
func (d Deps) activeNetwork(scope *session.Scope) (network.Network, error) {
	id, _ := scope.Store.Get(session.KeyNetwork)
	if id == "" {
		id = network.DefaultNetwork
	}
	return d.Networks.Lookup(id)
}

// chainClient returns the client for the session's active network.
func (d Deps) chainClient(ctx context.Context, scope *session.Scope) (chain.Client, network.Network, error) {
	net, err := d.activeNetwork(scope)
	if err != nil {
		return nil, network.Network{}, err
	}
	client, err := d.Chains.Client(ctx, net.RPCURL)
	if err != nil {
		return nil, network.Network{}, err
	}
	return client, net, nil
}

// sessionAccount resolves address to one of the session's account records.
// An empty address resolves the session default.
func sessionAccount(scope *session.Scope, address string) (session.Account, error) {
	if strings.TrimSpace(address) == "" {
		account, err := session.DefaultAccount(scope.Store)
		if err != nil {
			return session.Account{}, err
		}
		return account, nil
	}
	account, ok, err := session.FindAccount(scope.Store, address)
	if err != nil {
		return session.Account{}, err
	}
	if !ok {
		return session.Account{}, fmt.Errorf("no account with address %s in session", address)
	}
	return account, nil
}

// onboardedAccount resolves an account that holds an AES onboarding key.
func onboardedAccount(scope *session.Scope, address string) (session.Account, error) {
	account, err := sessionAccount(scope, address)
	if err != nil {
		return session.Account{}, err
	}
	if account.AESKey == "" {
		return session.Account{}, fmt.Errorf("account %s is not onboarded; run onboard_account first", account.Address)
	}
	return account, nil
}

// parseAmount parses a base-unit decimal amount.
func parseAmount(value string) (*big.Int, error) {
	trimmed := strings.TrimSpace(value)
	amount, ok := new(big.Int).SetString(trimmed, 10)
	if !ok || amount.Sign() < 0 {
		return nil, fmt.Errorf("invalid amount %q: expected a non-negative base-unit integer", value)
	}
	return amount, nil
}

// decodeBytecode decodes hex contract bytecode with or without a 0x prefix.
func decodeBytecode(bytecode string) ([]byte, error) {
	data, err := hex.DecodeString(strings.TrimPrefix(strings.TrimSpace(bytecode), "0x"))
	if err != nil {
		return nil, fmt.Errorf("decode bytecode: %w", err)
	}
	if len(data) == 0 {
		return nil, fmt.Errorf("decode bytecode: empty")
	}
	return data, nil
}
