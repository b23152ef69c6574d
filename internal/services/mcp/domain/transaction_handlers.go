package domain

import (
	"context"
	"fmt"
	"strings"

	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/veilchain/veil-mcp/internal/chain/confidential"
	"github.com/veilchain/veil-mcp/internal/session"
)

// GetTransactionStatusInput represents the MCP tool input for a transaction
// status query.
type GetTransactionStatusInput struct {
	TxHash string `json:"tx_hash" jsonschema:"transaction hash"`
}

// GetTransactionStatusResult represents the MCP tool output for a transaction
// status query.
type GetTransactionStatusResult struct {
	TxHash      string `json:"tx_hash" jsonschema:"queried transaction hash"`
	Status      string `json:"status" jsonschema:"pending, success, or failed"`
	BlockNumber uint64 `json:"block_number,omitempty" jsonschema:"block the transaction was mined in"`
	GasUsed     uint64 `json:"gas_used,omitempty" jsonschema:"gas consumed by the transaction"`
}

// GetTransactionStatusTool defines the MCP tool schema for a status query.
func GetTransactionStatusTool() *mcp.Tool {
	return &mcp.Tool{
		Name:        "get_transaction_status",
		Description: "Reads the lifecycle state of a transaction on the session's active network: pending, success, or failed.",
	}
}

// GetTransactionStatusHandler executes a transaction status query.
func GetTransactionStatusHandler(deps Deps) HandlerFor[GetTransactionStatusInput, GetTransactionStatusResult] {
	return func(ctx context.Context, scope *session.Scope, input GetTransactionStatusInput) (GetTransactionStatusResult, string, error) {
		if strings.TrimSpace(input.TxHash) == "" {
			return GetTransactionStatusResult{}, "", fmt.Errorf("tx_hash is required")
		}

		callCtx, cancel := context.WithTimeout(ctx, chainCallTimeout)
		defer cancel()

		client, _, err := deps.chainClient(callCtx, scope)
		if err != nil {
			return GetTransactionStatusResult{}, "", err
		}
		status, err := client.TransactionStatus(callCtx, input.TxHash)
		if err != nil {
			return GetTransactionStatusResult{}, "", err
		}

		result := GetTransactionStatusResult{
			TxHash:      status.Hash,
			Status:      string(status.State),
			BlockNumber: status.BlockNumber,
			GasUsed:     status.GasUsed,
		}
		return result, fmt.Sprintf("Transaction %s is %s", result.TxHash, result.Status), nil
	}
}

// TransactionLog is one emitted log entry.
type TransactionLog struct {
	Address string   `json:"address" jsonschema:"emitting contract address"`
	Topics  []string `json:"topics" jsonschema:"indexed topics, hex"`
	Data    string   `json:"data" jsonschema:"log payload, hex"`
}

// GetTransactionLogsInput represents the MCP tool input for a log query.
type GetTransactionLogsInput struct {
	TxHash string `json:"tx_hash" jsonschema:"transaction hash"`
}

// GetTransactionLogsResult represents the MCP tool output for a log query.
type GetTransactionLogsResult struct {
	TxHash string           `json:"tx_hash" jsonschema:"queried transaction hash"`
	Logs   []TransactionLog `json:"logs" jsonschema:"log entries emitted by the transaction"`
	Count  int              `json:"count" jsonschema:"number of log entries"`
}

// GetTransactionLogsTool defines the MCP tool schema for a log query.
func GetTransactionLogsTool() *mcp.Tool {
	return &mcp.Tool{
		Name:        "get_transaction_logs",
		Description: "Reads the logs emitted by a mined transaction on the session's active network.",
	}
}

// GetTransactionLogsHandler executes a transaction log query.
func GetTransactionLogsHandler(deps Deps) HandlerFor[GetTransactionLogsInput, GetTransactionLogsResult] {
	return func(ctx context.Context, scope *session.Scope, input GetTransactionLogsInput) (GetTransactionLogsResult, string, error) {
		if strings.TrimSpace(input.TxHash) == "" {
			return GetTransactionLogsResult{}, "", fmt.Errorf("tx_hash is required")
		}

		callCtx, cancel := context.WithTimeout(ctx, chainCallTimeout)
		defer cancel()

		client, _, err := deps.chainClient(callCtx, scope)
		if err != nil {
			return GetTransactionLogsResult{}, "", err
		}
		logs, err := client.TransactionLogs(callCtx, input.TxHash)
		if err != nil {
			return GetTransactionLogsResult{}, "", err
		}

		result := GetTransactionLogsResult{TxHash: input.TxHash, Count: len(logs)}
		for _, entry := range logs {
			converted := TransactionLog{
				Address: entry.Address.Hex(),
				Data:    hexutil.Encode(entry.Data),
			}
			for _, topic := range entry.Topics {
				converted.Topics = append(converted.Topics, topic.Hex())
			}
			result.Logs = append(result.Logs, converted)
		}
		return result, fmt.Sprintf("%d log(s) for %s", result.Count, input.TxHash), nil
	}
}

// EncryptValueInput represents the MCP tool input for encrypting an amount.
type EncryptValueInput struct {
	Value   string `json:"value" jsonschema:"amount in base units, decimal"`
	Address string `json:"address,omitempty" jsonschema:"onboarded account whose key encrypts (defaults to the session default)"`
}

// EncryptValueResult represents the MCP tool output for encrypting an amount.
type EncryptValueResult struct {
	Address    string `json:"address" jsonschema:"account whose onboarding key was used"`
	Ciphertext string `json:"ciphertext" jsonschema:"encrypted amount, hex"`
}

// EncryptValueTool defines the MCP tool schema for encrypting an amount.
func EncryptValueTool() *mcp.Tool {
	return &mcp.Tool{
		Name:        "encrypt_value",
		Description: "Encrypts an amount under a session account's AES onboarding key, for use as confidential calldata.",
	}
}

// EncryptValueHandler executes an encryption request.
func EncryptValueHandler(deps Deps) HandlerFor[EncryptValueInput, EncryptValueResult] {
	return func(ctx context.Context, scope *session.Scope, input EncryptValueInput) (EncryptValueResult, string, error) {
		amount, err := parseAmount(input.Value)
		if err != nil {
			return EncryptValueResult{}, "", err
		}
		account, err := onboardedAccount(scope, input.Address)
		if err != nil {
			return EncryptValueResult{}, "", err
		}

		ciphertext, err := confidential.EncryptValue(account.AESKey, amount)
		if err != nil {
			return EncryptValueResult{}, "", fmt.Errorf("encrypt value: %w", err)
		}

		result := EncryptValueResult{Address: account.Address, Ciphertext: ciphertext}
		return result, fmt.Sprintf("Encrypted value under key of %s", account.Address), nil
	}
}

// DecryptValueInput represents the MCP tool input for decrypting an amount.
type DecryptValueInput struct {
	Ciphertext string `json:"ciphertext" jsonschema:"encrypted amount, hex"`
	Address    string `json:"address,omitempty" jsonschema:"onboarded account whose key decrypts (defaults to the session default)"`
}

// DecryptValueResult represents the MCP tool output for decrypting an amount.
type DecryptValueResult struct {
	Address string `json:"address" jsonschema:"account whose onboarding key was used"`
	Value   string `json:"value" jsonschema:"decrypted amount in base units, decimal"`
}

// DecryptValueTool defines the MCP tool schema for decrypting an amount.
func DecryptValueTool() *mcp.Tool {
	return &mcp.Tool{
		Name:        "decrypt_value",
		Description: "Decrypts a confidential amount with a session account's AES onboarding key.",
	}
}

// DecryptValueHandler executes a decryption request.
func DecryptValueHandler(deps Deps) HandlerFor[DecryptValueInput, DecryptValueResult] {
	return func(ctx context.Context, scope *session.Scope, input DecryptValueInput) (DecryptValueResult, string, error) {
		if strings.TrimSpace(input.Ciphertext) == "" {
			return DecryptValueResult{}, "", fmt.Errorf("ciphertext is required")
		}
		account, err := onboardedAccount(scope, input.Address)
		if err != nil {
			return DecryptValueResult{}, "", err
		}

		value, err := confidential.DecryptValue(account.AESKey, input.Ciphertext)
		if err != nil {
			return DecryptValueResult{}, "", fmt.Errorf("decrypt value: %w", err)
		}

		result := DecryptValueResult{Address: account.Address, Value: value.String()}
		return result, fmt.Sprintf("Decrypted value: %s", result.Value), nil
	}
}
