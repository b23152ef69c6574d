package chain

import (
	"context"
	"errors"
	"math/big"
	"strings"
	"testing"

	"github.com/ethereum/go-ethereum/core/types"
)

func TestGenerateAndImportKeypair(t *testing.T) {
	generated, err := GenerateKeypair()
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if !strings.HasPrefix(generated.Address, "0x") || len(generated.Address) != 42 {
		t.Fatalf("unexpected address %q", generated.Address)
	}
	if !strings.HasPrefix(generated.PrivateKey, "0x") {
		t.Fatalf("expected 0x-prefixed private key, got %q", generated.PrivateKey)
	}

	imported, err := ImportKeypair(generated.PrivateKey)
	if err != nil {
		t.Fatalf("import: %v", err)
	}
	if imported.Address != generated.Address {
		t.Fatalf("import derived %q, want %q", imported.Address, generated.Address)
	}
}

func TestImportKeypairRejectsGarbage(t *testing.T) {
	if _, err := ImportKeypair("0xnothex"); !errors.Is(err, ErrInvalidPrivateKey) {
		t.Fatalf("expected ErrInvalidPrivateKey, got %v", err)
	}
}

func TestSignMessage(t *testing.T) {
	keypair, err := GenerateKeypair()
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	sig, err := SignMessage(keypair.PrivateKey, []byte("hello"))
	if err != nil {
		t.Fatalf("sign: %v", err)
	}
	// 65-byte signature, hex encoded with 0x prefix.
	if len(sig) != 2+65*2 {
		t.Fatalf("unexpected signature length %d", len(sig))
	}
}

// fakeClient satisfies Client for signing tests without a node.
type fakeClient struct {
	nonce    uint64
	gasPrice *big.Int
	chainID  *big.Int
	sent     *types.Transaction
	sendErr  error
}

func (f *fakeClient) ChainID(context.Context) (*big.Int, error)      { return f.chainID, nil }
func (f *fakeClient) BalanceAt(context.Context, string) (*big.Int, error) {
	return new(big.Int), nil
}
func (f *fakeClient) NonceAt(context.Context, string) (uint64, error)      { return f.nonce, nil }
func (f *fakeClient) SuggestGasPrice(context.Context) (*big.Int, error)    { return f.gasPrice, nil }
func (f *fakeClient) CallContract(context.Context, string, []byte) ([]byte, error) {
	return nil, nil
}
func (f *fakeClient) CodeAt(context.Context, string) ([]byte, error) { return nil, nil }
func (f *fakeClient) TransactionStatus(context.Context, string) (TxStatus, error) {
	return TxStatus{}, nil
}
func (f *fakeClient) TransactionLogs(context.Context, string) ([]*types.Log, error) {
	return nil, nil
}
func (f *fakeClient) SendTransaction(_ context.Context, tx *types.Transaction) error {
	if f.sendErr != nil {
		return f.sendErr
	}
	f.sent = tx
	return nil
}

func TestSendSigned(t *testing.T) {
	keypair, err := GenerateKeypair()
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	client := &fakeClient{nonce: 7, gasPrice: big.NewInt(1_000_000_000), chainID: big.NewInt(7772)}

	result, err := SendSigned(context.Background(), client, keypair.PrivateKey, TxRequest{
		To:    "0x1CBd3b2770909D4e10f157cABC84C7264073C9Ec",
		Value: big.NewInt(42),
	})
	if err != nil {
		t.Fatalf("send: %v", err)
	}
	if client.sent == nil {
		t.Fatal("expected transaction to reach the client")
	}
	if result.Nonce != 7 {
		t.Fatalf("expected nonce 7, got %d", result.Nonce)
	}
	if result.From != keypair.Address {
		t.Fatalf("expected sender %q, got %q", keypair.Address, result.From)
	}
	if result.Hash != client.sent.Hash().Hex() {
		t.Fatalf("result hash %q does not match submitted tx %q", result.Hash, client.sent.Hash().Hex())
	}
	if client.sent.Nonce() != 7 {
		t.Fatalf("submitted nonce %d, want 7", client.sent.Nonce())
	}
}

func TestSendSignedDeployment(t *testing.T) {
	keypair, err := GenerateKeypair()
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	client := &fakeClient{nonce: 0, gasPrice: big.NewInt(1), chainID: big.NewInt(7772)}

	result, err := SendSigned(context.Background(), client, keypair.PrivateKey, TxRequest{
		Data: []byte{0x60, 0x80},
	})
	if err != nil {
		t.Fatalf("send: %v", err)
	}
	if client.sent.To() != nil {
		t.Fatal("deployment transaction should have nil recipient")
	}
	addr := ContractAddress(result.From, result.Nonce)
	if !strings.HasPrefix(addr, "0x") || len(addr) != 42 {
		t.Fatalf("unexpected contract address %q", addr)
	}
}

func TestSendSignedPropagatesSendError(t *testing.T) {
	keypair, _ := GenerateKeypair()
	client := &fakeClient{
		gasPrice: big.NewInt(1),
		chainID:  big.NewInt(7772),
		sendErr:  errors.New("node unavailable"),
	}
	if _, err := SendSigned(context.Background(), client, keypair.PrivateKey, TxRequest{To: "0x1CBd3b2770909D4e10f157cABC84C7264073C9Ec"}); err == nil {
		t.Fatal("expected send error")
	}
}
