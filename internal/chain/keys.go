package chain

import (
	"context"
	"errors"
	"fmt"
	"math/big"
	"strings"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/crypto"
)

// ErrInvalidPrivateKey is returned for key material that does not parse as a
// secp256k1 private key.
var ErrInvalidPrivateKey = errors.New("invalid private key")

// Keypair is a freshly generated or imported signing key and its address.
type Keypair struct {
	Address    string
	PrivateKey string
}

// GenerateKeypair creates a new random account key.
func GenerateKeypair() (Keypair, error) {
	key, err := crypto.GenerateKey()
	if err != nil {
		return Keypair{}, fmt.Errorf("generate key: %w", err)
	}
	return Keypair{
		Address:    crypto.PubkeyToAddress(key.PublicKey).Hex(),
		PrivateKey: hexutil.Encode(crypto.FromECDSA(key)),
	}, nil
}

// ImportKeypair derives the address for an existing hex-encoded private key.
func ImportKeypair(privateKeyHex string) (Keypair, error) {
	key, err := crypto.HexToECDSA(strings.TrimPrefix(privateKeyHex, "0x"))
	if err != nil {
		return Keypair{}, fmt.Errorf("%w: %v", ErrInvalidPrivateKey, err)
	}
	return Keypair{
		Address:    crypto.PubkeyToAddress(key.PublicKey).Hex(),
		PrivateKey: hexutil.Encode(crypto.FromECDSA(key)),
	}, nil
}

// SignMessage signs data with the account key using the standard personal
// message prefix and returns the signature hex.
func SignMessage(privateKeyHex string, data []byte) (string, error) {
	key, err := crypto.HexToECDSA(strings.TrimPrefix(privateKeyHex, "0x"))
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrInvalidPrivateKey, err)
	}
	prefixed := fmt.Sprintf("\x19Ethereum Signed Message:\n%d%s", len(data), data)
	sig, err := crypto.Sign(crypto.Keccak256([]byte(prefixed)), key)
	if err != nil {
		return "", fmt.Errorf("sign message: %w", err)
	}
	return hexutil.Encode(sig), nil
}

// TxRequest describes one outbound transaction before signing. A nil To
// deploys Data as contract code.
type TxRequest struct {
	To       string
	Value    *big.Int
	Data     []byte
	GasLimit uint64
}

const defaultGasLimit = 3_000_000

// SendResult identifies a submitted transaction. Nonce and From let callers
// of deployment transactions compute the created contract address.
type SendResult struct {
	Hash  string
	From  string
	Nonce uint64
}

// SendSigned builds, signs, and submits a transaction from the account owning
// privateKeyHex, filling nonce, gas price, and chain id from the node.
func SendSigned(ctx context.Context, client Client, privateKeyHex string, req TxRequest) (SendResult, error) {
	key, err := crypto.HexToECDSA(strings.TrimPrefix(privateKeyHex, "0x"))
	if err != nil {
		return SendResult{}, fmt.Errorf("%w: %v", ErrInvalidPrivateKey, err)
	}
	from := crypto.PubkeyToAddress(key.PublicKey)

	nonce, err := client.NonceAt(ctx, from.Hex())
	if err != nil {
		return SendResult{}, err
	}
	gasPrice, err := client.SuggestGasPrice(ctx)
	if err != nil {
		return SendResult{}, err
	}
	chainID, err := client.ChainID(ctx)
	if err != nil {
		return SendResult{}, err
	}

	value := req.Value
	if value == nil {
		value = new(big.Int)
	}
	gasLimit := req.GasLimit
	if gasLimit == 0 {
		gasLimit = defaultGasLimit
	}

	var tx *types.Transaction
	if req.To == "" {
		tx = types.NewTx(&types.LegacyTx{
			Nonce:    nonce,
			GasPrice: gasPrice,
			Gas:      gasLimit,
			Value:    value,
			Data:     req.Data,
		})
	} else {
		to := common.HexToAddress(req.To)
		tx = types.NewTx(&types.LegacyTx{
			Nonce:    nonce,
			GasPrice: gasPrice,
			Gas:      gasLimit,
			To:       &to,
			Value:    value,
			Data:     req.Data,
		})
	}

	signed, err := types.SignTx(tx, types.LatestSignerForChainID(chainID), key)
	if err != nil {
		return SendResult{}, fmt.Errorf("sign transaction: %w", err)
	}
	if err := client.SendTransaction(ctx, signed); err != nil {
		return SendResult{}, err
	}
	return SendResult{Hash: signed.Hash().Hex(), From: from.Hex(), Nonce: nonce}, nil
}

// ContractAddress computes the address a deployment transaction from sender
// with the given nonce creates.
func ContractAddress(sender string, nonce uint64) string {
	return crypto.CreateAddress(common.HexToAddress(sender), nonce).Hex()
}
