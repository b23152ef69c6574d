package domain

import (
	"context"
	"fmt"
	"strings"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/veilchain/veil-mcp/internal/chain"
	"github.com/veilchain/veil-mcp/internal/chain/confidential"
	"github.com/veilchain/veil-mcp/internal/session"
)

const defaultTokenDecimals = 18

// DeployPrivateERC20Input represents the MCP tool input for deploying a
// private ERC20 token.
type DeployPrivateERC20Input struct {
	Name     string `json:"name" jsonschema:"token name"`
	Symbol   string `json:"symbol" jsonschema:"token symbol"`
	Decimals uint8  `json:"decimals,omitempty" jsonschema:"token decimals (defaults to 18)"`
	From     string `json:"from,omitempty" jsonschema:"deployer address (defaults to the session default account)"`
}

// DeployPrivateERC20Result represents the MCP tool output for deploying a
// private ERC20 token.
type DeployPrivateERC20Result struct {
	ContractAddress string `json:"contract_address" jsonschema:"address the token will live at"`
	TxHash          string `json:"tx_hash" jsonschema:"deployment transaction hash"`
	Name            string `json:"name" jsonschema:"token name"`
	Symbol          string `json:"symbol" jsonschema:"token symbol"`
	Decimals        uint8  `json:"decimals" jsonschema:"token decimals"`
	Network         string `json:"network" jsonschema:"network the token was deployed to"`
}

// DeployPrivateERC20Tool defines the MCP tool schema for deploying a private
// ERC20 token.
func DeployPrivateERC20Tool() *mcp.Tool {
	return &mcp.Tool{
		Name:        "deploy_private_erc20",
		Description: "Compiles and deploys a confidential ERC20 token. Balances and transfer amounts are ciphertext on chain; holders need an onboarding key to read them.",
	}
}

// DeployPrivateERC20Handler executes a private ERC20 deployment.
func DeployPrivateERC20Handler(deps Deps) HandlerFor[DeployPrivateERC20Input, DeployPrivateERC20Result] {
	return func(ctx context.Context, scope *session.Scope, input DeployPrivateERC20Input) (DeployPrivateERC20Result, string, error) {
		if strings.TrimSpace(input.Name) == "" || strings.TrimSpace(input.Symbol) == "" {
			return DeployPrivateERC20Result{}, "", fmt.Errorf("name and symbol are required")
		}
		decimals := input.Decimals
		if decimals == 0 {
			decimals = defaultTokenDecimals
		}
		account, err := sessionAccount(scope, input.From)
		if err != nil {
			return DeployPrivateERC20Result{}, "", err
		}

		callCtx, cancel := context.WithTimeout(ctx, chainCallTimeout)
		defer cancel()

		contractName := contractIdentifier(input.Name, "PrivateToken")
		artifact, err := deps.Compiler.Compile(callCtx,
			privateERC20Source(contractName, input.Name, input.Symbol, decimals), contractName)
		if err != nil {
			return DeployPrivateERC20Result{}, "", err
		}
		bytecode, err := decodeBytecode(artifact.Bytecode)
		if err != nil {
			return DeployPrivateERC20Result{}, "", err
		}

		client, net, err := deps.chainClient(callCtx, scope)
		if err != nil {
			return DeployPrivateERC20Result{}, "", err
		}
		sent, err := chain.SendSigned(callCtx, client, account.PrivateKey, chain.TxRequest{Data: bytecode})
		if err != nil {
			return DeployPrivateERC20Result{}, "", err
		}

		result := DeployPrivateERC20Result{
			ContractAddress: chain.ContractAddress(sent.From, sent.Nonce),
			TxHash:          sent.Hash,
			Name:            input.Name,
			Symbol:          input.Symbol,
			Decimals:        decimals,
			Network:         net.Name,
		}
		return result, fmt.Sprintf("Deploying %s (%s) at %s on %s (tx %s)",
			result.Name, result.Symbol, result.ContractAddress, result.Network, result.TxHash), nil
	}
}

// GetPrivateERC20BalanceInput represents the MCP tool input for a private
// ERC20 balance query.
type GetPrivateERC20BalanceInput struct {
	Contract string `json:"contract" jsonschema:"token contract address"`
	Address  string `json:"address,omitempty" jsonschema:"holder address (defaults to the session default account)"`
}

// GetPrivateERC20BalanceResult represents the MCP tool output for a private
// ERC20 balance query.
type GetPrivateERC20BalanceResult struct {
	Contract string `json:"contract" jsonschema:"token contract address"`
	Address  string `json:"address" jsonschema:"holder address"`
	Balance  string `json:"balance" jsonschema:"decrypted balance in base units, decimal"`
}

// GetPrivateERC20BalanceTool defines the MCP tool schema for a private ERC20
// balance query.
func GetPrivateERC20BalanceTool() *mcp.Tool {
	return &mcp.Tool{
		Name:        "get_private_erc20_balance",
		Description: "Reads and decrypts a confidential ERC20 balance. The holder must be a session account onboarded on the active network.",
	}
}

// GetPrivateERC20BalanceHandler executes a private ERC20 balance query.
func GetPrivateERC20BalanceHandler(deps Deps) HandlerFor[GetPrivateERC20BalanceInput, GetPrivateERC20BalanceResult] {
	return func(ctx context.Context, scope *session.Scope, input GetPrivateERC20BalanceInput) (GetPrivateERC20BalanceResult, string, error) {
		if strings.TrimSpace(input.Contract) == "" {
			return GetPrivateERC20BalanceResult{}, "", fmt.Errorf("contract is required")
		}
		account, err := onboardedAccount(scope, input.Address)
		if err != nil {
			return GetPrivateERC20BalanceResult{}, "", err
		}

		callCtx, cancel := context.WithTimeout(ctx, chainCallTimeout)
		defer cancel()

		client, _, err := deps.chainClient(callCtx, scope)
		if err != nil {
			return GetPrivateERC20BalanceResult{}, "", err
		}
		output, err := client.CallContract(callCtx, input.Contract, chain.ERC20{}.PackBalanceOf(account.Address))
		if err != nil {
			return GetPrivateERC20BalanceResult{}, "", err
		}
		ciphertext, err := chain.ERC20{}.UnpackBalanceOf(output)
		if err != nil {
			return GetPrivateERC20BalanceResult{}, "", err
		}

		result := GetPrivateERC20BalanceResult{Contract: input.Contract, Address: account.Address}
		if len(ciphertext) == 0 {
			// No ciphertext stored yet means the holder never received tokens.
			result.Balance = "0"
		} else {
			balance, err := confidential.DecryptValueBytes(account.AESKey, ciphertext)
			if err != nil {
				return GetPrivateERC20BalanceResult{}, "", fmt.Errorf("decrypt balance: %w", err)
			}
			result.Balance = balance.String()
		}
		return result, fmt.Sprintf("Balance of %s: %s", account.Address, result.Balance), nil
	}
}

// GetPrivateERC20InfoInput represents the MCP tool input for token metadata.
type GetPrivateERC20InfoInput struct {
	Contract string `json:"contract" jsonschema:"token contract address"`
}

// GetPrivateERC20InfoResult represents the MCP tool output for token
// metadata.
type GetPrivateERC20InfoResult struct {
	Contract string `json:"contract" jsonschema:"token contract address"`
	Name     string `json:"name" jsonschema:"token name"`
	Symbol   string `json:"symbol" jsonschema:"token symbol"`
	Decimals uint8  `json:"decimals" jsonschema:"token decimals"`
}

// GetPrivateERC20InfoTool defines the MCP tool schema for token metadata.
func GetPrivateERC20InfoTool() *mcp.Tool {
	return &mcp.Tool{
		Name:        "get_private_erc20_info",
		Description: "Reads a confidential ERC20 token's public metadata: name, symbol, decimals.",
	}
}

// GetPrivateERC20InfoHandler executes a token metadata query.
func GetPrivateERC20InfoHandler(deps Deps) HandlerFor[GetPrivateERC20InfoInput, GetPrivateERC20InfoResult] {
	return func(ctx context.Context, scope *session.Scope, input GetPrivateERC20InfoInput) (GetPrivateERC20InfoResult, string, error) {
		if strings.TrimSpace(input.Contract) == "" {
			return GetPrivateERC20InfoResult{}, "", fmt.Errorf("contract is required")
		}

		callCtx, cancel := context.WithTimeout(ctx, chainCallTimeout)
		defer cancel()

		client, _, err := deps.chainClient(callCtx, scope)
		if err != nil {
			return GetPrivateERC20InfoResult{}, "", err
		}

		code, err := client.CodeAt(callCtx, input.Contract)
		if err != nil {
			return GetPrivateERC20InfoResult{}, "", err
		}
		if len(code) == 0 {
			return GetPrivateERC20InfoResult{}, "", fmt.Errorf("no contract code at %s", input.Contract)
		}

		token := chain.ERC20{}
		nameOut, err := client.CallContract(callCtx, input.Contract, token.PackName())
		if err != nil {
			return GetPrivateERC20InfoResult{}, "", err
		}
		name, err := token.UnpackString("name", nameOut)
		if err != nil {
			return GetPrivateERC20InfoResult{}, "", err
		}
		symbolOut, err := client.CallContract(callCtx, input.Contract, token.PackSymbol())
		if err != nil {
			return GetPrivateERC20InfoResult{}, "", err
		}
		symbol, err := token.UnpackString("symbol", symbolOut)
		if err != nil {
			return GetPrivateERC20InfoResult{}, "", err
		}
		decimalsOut, err := client.CallContract(callCtx, input.Contract, token.PackDecimals())
		if err != nil {
			return GetPrivateERC20InfoResult{}, "", err
		}
		decimals, err := token.UnpackDecimals(decimalsOut)
		if err != nil {
			return GetPrivateERC20InfoResult{}, "", err
		}

		result := GetPrivateERC20InfoResult{
			Contract: input.Contract,
			Name:     name,
			Symbol:   symbol,
			Decimals: decimals,
		}
		return result, fmt.Sprintf("%s (%s), %d decimals", name, symbol, decimals), nil
	}
}

// TransferPrivateERC20Input represents the MCP tool input for a private ERC20
// transfer.
type TransferPrivateERC20Input struct {
	Contract string `json:"contract" jsonschema:"token contract address"`
	To       string `json:"to" jsonschema:"recipient address"`
	Amount   string `json:"amount" jsonschema:"amount in base units, decimal"`
	From     string `json:"from,omitempty" jsonschema:"sender address (defaults to the session default account)"`
}

// TransferPrivateERC20Result represents the MCP tool output for a private
// ERC20 transfer.
type TransferPrivateERC20Result struct {
	TxHash   string `json:"tx_hash" jsonschema:"submitted transaction hash"`
	Contract string `json:"contract" jsonschema:"token contract address"`
	From     string `json:"from" jsonschema:"sender address"`
	To       string `json:"to" jsonschema:"recipient address"`
	Amount   string `json:"amount" jsonschema:"transferred amount in base units"`
}

// TransferPrivateERC20Tool defines the MCP tool schema for a private ERC20
// transfer.
func TransferPrivateERC20Tool() *mcp.Tool {
	return &mcp.Tool{
		Name:        "transfer_private_erc20",
		Description: "Transfers confidential ERC20 tokens. The amount is encrypted under the sender's onboarding key before it goes on chain.",
	}
}

// TransferPrivateERC20Handler executes a private ERC20 transfer.
func TransferPrivateERC20Handler(deps Deps) HandlerFor[TransferPrivateERC20Input, TransferPrivateERC20Result] {
	return func(ctx context.Context, scope *session.Scope, input TransferPrivateERC20Input) (TransferPrivateERC20Result, string, error) {
		if strings.TrimSpace(input.Contract) == "" || strings.TrimSpace(input.To) == "" {
			return TransferPrivateERC20Result{}, "", fmt.Errorf("contract and to are required")
		}
		amount, err := parseAmount(input.Amount)
		if err != nil {
			return TransferPrivateERC20Result{}, "", err
		}
		account, err := onboardedAccount(scope, input.From)
		if err != nil {
			return TransferPrivateERC20Result{}, "", err
		}

		ciphertext, err := confidential.EncryptValueBytes(account.AESKey, amount)
		if err != nil {
			return TransferPrivateERC20Result{}, "", fmt.Errorf("encrypt amount: %w", err)
		}

		callCtx, cancel := context.WithTimeout(ctx, chainCallTimeout)
		defer cancel()

		client, _, err := deps.chainClient(callCtx, scope)
		if err != nil {
			return TransferPrivateERC20Result{}, "", err
		}
		sent, err := chain.SendSigned(callCtx, client, account.PrivateKey, chain.TxRequest{
			To:   input.Contract,
			Data: chain.ERC20{}.PackTransfer(input.To, ciphertext),
		})
		if err != nil {
			return TransferPrivateERC20Result{}, "", err
		}

		result := TransferPrivateERC20Result{
			TxHash:   sent.Hash,
			Contract: input.Contract,
			From:     sent.From,
			To:       input.To,
			Amount:   amount.String(),
		}
		return result, fmt.Sprintf("Transferred %s to %s (tx %s)", result.Amount, result.To, result.TxHash), nil
	}
}

// ApprovePrivateERC20Input represents the MCP tool input for a private ERC20
// approval.
type ApprovePrivateERC20Input struct {
	Contract string `json:"contract" jsonschema:"token contract address"`
	Spender  string `json:"spender" jsonschema:"spender address"`
	Amount   string `json:"amount" jsonschema:"allowance in base units, decimal"`
	From     string `json:"from,omitempty" jsonschema:"owner address (defaults to the session default account)"`
}

// ApprovePrivateERC20Result represents the MCP tool output for a private
// ERC20 approval.
type ApprovePrivateERC20Result struct {
	TxHash   string `json:"tx_hash" jsonschema:"submitted transaction hash"`
	Contract string `json:"contract" jsonschema:"token contract address"`
	Owner    string `json:"owner" jsonschema:"owner address"`
	Spender  string `json:"spender" jsonschema:"spender address"`
	Amount   string `json:"amount" jsonschema:"approved allowance in base units"`
}

// ApprovePrivateERC20Tool defines the MCP tool schema for a private ERC20
// approval.
func ApprovePrivateERC20Tool() *mcp.Tool {
	return &mcp.Tool{
		Name:        "approve_private_erc20",
		Description: "Approves a spender for confidential ERC20 tokens. The allowance is encrypted under the owner's onboarding key.",
	}
}

// ApprovePrivateERC20Handler executes a private ERC20 approval.
func ApprovePrivateERC20Handler(deps Deps) HandlerFor[ApprovePrivateERC20Input, ApprovePrivateERC20Result] {
	return func(ctx context.Context, scope *session.Scope, input ApprovePrivateERC20Input) (ApprovePrivateERC20Result, string, error) {
		if strings.TrimSpace(input.Contract) == "" || strings.TrimSpace(input.Spender) == "" {
			return ApprovePrivateERC20Result{}, "", fmt.Errorf("contract and spender are required")
		}
		amount, err := parseAmount(input.Amount)
		if err != nil {
			return ApprovePrivateERC20Result{}, "", err
		}
		account, err := onboardedAccount(scope, input.From)
		if err != nil {
			return ApprovePrivateERC20Result{}, "", err
		}

		ciphertext, err := confidential.EncryptValueBytes(account.AESKey, amount)
		if err != nil {
			return ApprovePrivateERC20Result{}, "", fmt.Errorf("encrypt allowance: %w", err)
		}

		callCtx, cancel := context.WithTimeout(ctx, chainCallTimeout)
		defer cancel()

		client, _, err := deps.chainClient(callCtx, scope)
		if err != nil {
			return ApprovePrivateERC20Result{}, "", err
		}
		sent, err := chain.SendSigned(callCtx, client, account.PrivateKey, chain.TxRequest{
			To:   input.Contract,
			Data: chain.ERC20{}.PackApprove(input.Spender, ciphertext),
		})
		if err != nil {
			return ApprovePrivateERC20Result{}, "", err
		}

		result := ApprovePrivateERC20Result{
			TxHash:   sent.Hash,
			Contract: input.Contract,
			Owner:    sent.From,
			Spender:  input.Spender,
			Amount:   amount.String(),
		}
		return result, fmt.Sprintf("Approved %s for %s (tx %s)", result.Amount, result.Spender, result.TxHash), nil
	}
}
