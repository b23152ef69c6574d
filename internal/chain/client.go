package chain

import (
	"context"
	"errors"
	"fmt"
	"math/big"
	"sync"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/ethclient"
)

// ErrTxNotFound is returned when a transaction hash is unknown to the node.
var ErrTxNotFound = errors.New("transaction not found")

// TxState describes where a transaction sits in its lifecycle.
type TxState string

const (
	TxPending TxState = "pending"
	TxSuccess TxState = "success"
	TxFailed  TxState = "failed"
)

// TxStatus is the introspection result for one transaction hash.
type TxStatus struct {
	Hash        string
	State       TxState
	BlockNumber uint64
	GasUsed     uint64
}

// Client is the chain capability consumed by tool handlers.
type Client interface {
	ChainID(ctx context.Context) (*big.Int, error)
	BalanceAt(ctx context.Context, address string) (*big.Int, error)
	NonceAt(ctx context.Context, address string) (uint64, error)
	SuggestGasPrice(ctx context.Context) (*big.Int, error)
	SendTransaction(ctx context.Context, tx *types.Transaction) error
	CallContract(ctx context.Context, to string, data []byte) ([]byte, error)
	CodeAt(ctx context.Context, address string) ([]byte, error)
	TransactionStatus(ctx context.Context, hash string) (TxStatus, error)
	TransactionLogs(ctx context.Context, hash string) ([]*types.Log, error)
}

// RPCClient implements Client over a JSON-RPC endpoint.
type RPCClient struct {
	eth *ethclient.Client
}

// Dial connects to a JSON-RPC endpoint.
func Dial(ctx context.Context, rpcURL string) (*RPCClient, error) {
	eth, err := ethclient.DialContext(ctx, rpcURL)
	if err != nil {
		return nil, fmt.Errorf("dial chain rpc %s: %w", rpcURL, err)
	}
	return &RPCClient{eth: eth}, nil
}

// Close releases the underlying RPC connection.
func (c *RPCClient) Close() {
	c.eth.Close()
}

func (c *RPCClient) ChainID(ctx context.Context) (*big.Int, error) {
	id, err := c.eth.ChainID(ctx)
	if err != nil {
		return nil, fmt.Errorf("chain id: %w", err)
	}
	return id, nil
}

func (c *RPCClient) BalanceAt(ctx context.Context, address string) (*big.Int, error) {
	balance, err := c.eth.BalanceAt(ctx, common.HexToAddress(address), nil)
	if err != nil {
		return nil, fmt.Errorf("balance of %s: %w", address, err)
	}
	return balance, nil
}

func (c *RPCClient) NonceAt(ctx context.Context, address string) (uint64, error) {
	nonce, err := c.eth.PendingNonceAt(ctx, common.HexToAddress(address))
	if err != nil {
		return 0, fmt.Errorf("nonce of %s: %w", address, err)
	}
	return nonce, nil
}

func (c *RPCClient) SuggestGasPrice(ctx context.Context) (*big.Int, error) {
	price, err := c.eth.SuggestGasPrice(ctx)
	if err != nil {
		return nil, fmt.Errorf("suggest gas price: %w", err)
	}
	return price, nil
}

func (c *RPCClient) SendTransaction(ctx context.Context, tx *types.Transaction) error {
	if err := c.eth.SendTransaction(ctx, tx); err != nil {
		return fmt.Errorf("send transaction: %w", err)
	}
	return nil
}

func (c *RPCClient) CallContract(ctx context.Context, to string, data []byte) ([]byte, error) {
	target := common.HexToAddress(to)
	out, err := c.eth.CallContract(ctx, ethereum.CallMsg{To: &target, Data: data}, nil)
	if err != nil {
		return nil, fmt.Errorf("call contract %s: %w", to, err)
	}
	return out, nil
}

func (c *RPCClient) CodeAt(ctx context.Context, address string) ([]byte, error) {
	code, err := c.eth.CodeAt(ctx, common.HexToAddress(address), nil)
	if err != nil {
		return nil, fmt.Errorf("code at %s: %w", address, err)
	}
	return code, nil
}

// TransactionStatus resolves the lifecycle state for hash. An unknown hash
// maps to ErrTxNotFound; a known hash with no receipt yet is pending.
func (c *RPCClient) TransactionStatus(ctx context.Context, hash string) (TxStatus, error) {
	txHash := common.HexToHash(hash)

	receipt, err := c.eth.TransactionReceipt(ctx, txHash)
	if err == nil {
		state := TxSuccess
		if receipt.Status == types.ReceiptStatusFailed {
			state = TxFailed
		}
		return TxStatus{
			Hash:        txHash.Hex(),
			State:       state,
			BlockNumber: receipt.BlockNumber.Uint64(),
			GasUsed:     receipt.GasUsed,
		}, nil
	}
	if !errors.Is(err, ethereum.NotFound) {
		return TxStatus{}, fmt.Errorf("receipt for %s: %w", hash, err)
	}

	if _, _, err := c.eth.TransactionByHash(ctx, txHash); err != nil {
		if errors.Is(err, ethereum.NotFound) {
			return TxStatus{}, fmt.Errorf("%w: %s", ErrTxNotFound, hash)
		}
		return TxStatus{}, fmt.Errorf("transaction %s: %w", hash, err)
	}
	return TxStatus{Hash: txHash.Hex(), State: TxPending}, nil
}

func (c *RPCClient) TransactionLogs(ctx context.Context, hash string) ([]*types.Log, error) {
	receipt, err := c.eth.TransactionReceipt(ctx, common.HexToHash(hash))
	if errors.Is(err, ethereum.NotFound) {
		return nil, fmt.Errorf("%w: %s", ErrTxNotFound, hash)
	}
	if err != nil {
		return nil, fmt.Errorf("receipt for %s: %w", hash, err)
	}
	return receipt.Logs, nil
}

// Pool caches one RPCClient per endpoint. Sessions pick their network per
// call, so the pool is shared across all sessions and guarded by a mutex.
type Pool struct {
	mu      sync.Mutex
	clients map[string]*RPCClient
}

// NewPool returns an empty client pool.
func NewPool() *Pool {
	return &Pool{clients: make(map[string]*RPCClient)}
}

// Client returns the cached client for rpcURL, dialing on first use.
func (p *Pool) Client(ctx context.Context, rpcURL string) (Client, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if client, ok := p.clients[rpcURL]; ok {
		return client, nil
	}
	client, err := Dial(ctx, rpcURL)
	if err != nil {
		return nil, err
	}
	p.clients[rpcURL] = client
	return client, nil
}

// Close releases every cached connection.
func (p *Pool) Close() {
	p.mu.Lock()
	defer p.mu.Unlock()
	for url, client := range p.clients {
		client.Close()
		delete(p.clients, url)
	}
}
