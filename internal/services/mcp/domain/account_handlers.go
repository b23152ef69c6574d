package domain

import (
	"context"
	"fmt"
	"strings"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/veilchain/veil-mcp/internal/chain"
	"github.com/veilchain/veil-mcp/internal/chain/confidential"
	"github.com/veilchain/veil-mcp/internal/network"
	"github.com/veilchain/veil-mcp/internal/session"
)

// nativeTransferGasLimit is the fixed gas cost of a plain value transfer.
const nativeTransferGasLimit = 21_000

// CreateAccountInput represents the MCP tool input for creating an account.
type CreateAccountInput struct{}

// CreateAccountResult represents the MCP tool output for creating an account.
type CreateAccountResult struct {
	Address string `json:"address" jsonschema:"address of the new account"`
	Default bool   `json:"default" jsonschema:"whether this account is now the session default"`
	Network string `json:"network" jsonschema:"active network identifier"`
}

// CreateAccountTool defines the MCP tool schema for creating an account.
func CreateAccountTool() *mcp.Tool {
	return &mcp.Tool{
		Name:        "create_account",
		Description: "Generates a new account keypair and stores it in the current session. The first account created becomes the session default.",
	}
}

// CreateAccountHandler executes an account creation request.
func CreateAccountHandler(deps Deps) HandlerFor[CreateAccountInput, CreateAccountResult] {
	return func(ctx context.Context, scope *session.Scope, _ CreateAccountInput) (CreateAccountResult, string, error) {
		keypair, err := chain.GenerateKeypair()
		if err != nil {
			return CreateAccountResult{}, "", fmt.Errorf("create account: %w", err)
		}
		if err := session.AppendAccount(scope.Store, session.Account{
			Address:    keypair.Address,
			PrivateKey: keypair.PrivateKey,
		}); err != nil {
			return CreateAccountResult{}, "", fmt.Errorf("store account: %w", err)
		}

		net, err := deps.activeNetwork(scope)
		if err != nil {
			return CreateAccountResult{}, "", err
		}
		current, _ := scope.Store.Get(session.KeyCurrentAccount)
		result := CreateAccountResult{
			Address: keypair.Address,
			Default: strings.EqualFold(current, keypair.Address),
			Network: net.Name,
		}
		return result, fmt.Sprintf("Created account %s on %s", result.Address, result.Network), nil
	}
}

// ImportAccountInput represents the MCP tool input for importing an account.
type ImportAccountInput struct {
	PrivateKey string `json:"private_key" jsonschema:"hex-encoded secp256k1 private key, with or without 0x prefix"`
}

// ImportAccountResult represents the MCP tool output for importing an account.
type ImportAccountResult struct {
	Address string `json:"address" jsonschema:"address derived from the imported key"`
	Default bool   `json:"default" jsonschema:"whether this account is now the session default"`
	Network string `json:"network" jsonschema:"active network identifier"`
}

// ImportAccountTool defines the MCP tool schema for importing an account.
func ImportAccountTool() *mcp.Tool {
	return &mcp.Tool{
		Name:        "import_account",
		Description: "Imports an existing private key into the current session. Re-importing an address overwrites the stored record.",
	}
}

// ImportAccountHandler executes an account import request.
func ImportAccountHandler(deps Deps) HandlerFor[ImportAccountInput, ImportAccountResult] {
	return func(ctx context.Context, scope *session.Scope, input ImportAccountInput) (ImportAccountResult, string, error) {
		keypair, err := chain.ImportKeypair(input.PrivateKey)
		if err != nil {
			return ImportAccountResult{}, "", fmt.Errorf("import account: %w", err)
		}
		if err := session.AppendAccount(scope.Store, session.Account{
			Address:    keypair.Address,
			PrivateKey: keypair.PrivateKey,
		}); err != nil {
			return ImportAccountResult{}, "", fmt.Errorf("store account: %w", err)
		}

		net, err := deps.activeNetwork(scope)
		if err != nil {
			return ImportAccountResult{}, "", err
		}
		current, _ := scope.Store.Get(session.KeyCurrentAccount)
		result := ImportAccountResult{
			Address: keypair.Address,
			Default: strings.EqualFold(current, keypair.Address),
			Network: net.Name,
		}
		return result, fmt.Sprintf("Imported account %s on %s", result.Address, result.Network), nil
	}
}

// AccountEntry is one account in a session listing. Key material never
// appears here; export_account is the only read path for keys.
type AccountEntry struct {
	Address   string `json:"address" jsonschema:"account address"`
	Default   bool   `json:"default" jsonschema:"whether this is the session default account"`
	Onboarded bool   `json:"onboarded" jsonschema:"whether the account holds an AES onboarding key"`
}

// ListAccountsInput represents the MCP tool input for listing accounts.
type ListAccountsInput struct{}

// ListAccountsResult represents the MCP tool output for listing accounts.
type ListAccountsResult struct {
	Accounts []AccountEntry `json:"accounts" jsonschema:"accounts stored in the current session, in creation order"`
	Network  string         `json:"network" jsonschema:"active network identifier"`
	Count    int            `json:"count" jsonschema:"number of accounts"`
}

// ListAccountsTool defines the MCP tool schema for listing accounts.
func ListAccountsTool() *mcp.Tool {
	return &mcp.Tool{
		Name:        "list_accounts",
		Description: "Lists the accounts stored in the current session. Only this session's accounts are visible.",
	}
}

// ListAccountsHandler executes an account listing request.
func ListAccountsHandler(deps Deps) HandlerFor[ListAccountsInput, ListAccountsResult] {
	return func(ctx context.Context, scope *session.Scope, _ ListAccountsInput) (ListAccountsResult, string, error) {
		accounts, err := session.Accounts(scope.Store)
		if err != nil {
			return ListAccountsResult{}, "", err
		}
		net, err := deps.activeNetwork(scope)
		if err != nil {
			return ListAccountsResult{}, "", err
		}

		current, _ := scope.Store.Get(session.KeyCurrentAccount)
		result := ListAccountsResult{Network: net.Name, Count: len(accounts)}
		for _, account := range accounts {
			result.Accounts = append(result.Accounts, AccountEntry{
				Address:   account.Address,
				Default:   strings.EqualFold(current, account.Address),
				Onboarded: account.AESKey != "",
			})
		}
		return result, fmt.Sprintf("%d account(s) in session", result.Count), nil
	}
}

// SetDefaultAccountInput represents the MCP tool input for changing the
// session default account.
type SetDefaultAccountInput struct {
	Address string `json:"address" jsonschema:"address of a stored session account"`
}

// SetDefaultAccountResult represents the MCP tool output for changing the
// session default account.
type SetDefaultAccountResult struct {
	Address string `json:"address" jsonschema:"the new default account address"`
}

// SetDefaultAccountTool defines the MCP tool schema for changing the default.
func SetDefaultAccountTool() *mcp.Tool {
	return &mcp.Tool{
		Name:        "set_default_account",
		Description: "Points the session default at one of the stored accounts.",
	}
}

// SetDefaultAccountHandler executes a default-account change.
func SetDefaultAccountHandler(deps Deps) HandlerFor[SetDefaultAccountInput, SetDefaultAccountResult] {
	return func(ctx context.Context, scope *session.Scope, input SetDefaultAccountInput) (SetDefaultAccountResult, string, error) {
		if err := session.SetDefaultAccount(scope.Store, input.Address); err != nil {
			return SetDefaultAccountResult{}, "", err
		}
		return SetDefaultAccountResult{Address: input.Address},
			fmt.Sprintf("Default account is now %s", input.Address), nil
	}
}

// ExportAccountInput represents the MCP tool input for exporting key material.
type ExportAccountInput struct {
	Address string `json:"address,omitempty" jsonschema:"account address (defaults to the session default)"`
}

// ExportAccountResult carries raw key material out of the session. This is
// the one tool that returns keys; its output must never be logged.
type ExportAccountResult struct {
	Address    string `json:"address" jsonschema:"account address"`
	PrivateKey string `json:"private_key" jsonschema:"hex-encoded private key"`
	AESKey     string `json:"aes_key,omitempty" jsonschema:"hex-encoded AES onboarding key, when onboarded"`
}

// ExportAccountTool defines the MCP tool schema for exporting an account.
func ExportAccountTool() *mcp.Tool {
	return &mcp.Tool{
		Name:        "export_account",
		Description: "Exports an account's private key and AES onboarding key. Session state is in-memory only; export before the session ends to keep the account.",
	}
}

// ExportAccountHandler executes an account export request.
func ExportAccountHandler(deps Deps) HandlerFor[ExportAccountInput, ExportAccountResult] {
	return func(ctx context.Context, scope *session.Scope, input ExportAccountInput) (ExportAccountResult, string, error) {
		account, err := sessionAccount(scope, input.Address)
		if err != nil {
			return ExportAccountResult{}, "", err
		}
		result := ExportAccountResult{
			Address:    account.Address,
			PrivateKey: account.PrivateKey,
			AESKey:     account.AESKey,
		}
		return result, fmt.Sprintf("Exported account %s", account.Address), nil
	}
}

// GetNativeBalanceInput represents the MCP tool input for a native balance
// query.
type GetNativeBalanceInput struct {
	Address string `json:"address,omitempty" jsonschema:"account address (defaults to the session default)"`
}

// GetNativeBalanceResult represents the MCP tool output for a native balance
// query.
type GetNativeBalanceResult struct {
	Address    string `json:"address" jsonschema:"queried address"`
	Network    string `json:"network" jsonschema:"network the balance was read from"`
	BalanceWei string `json:"balance_wei" jsonschema:"balance in wei, decimal"`
}

// GetNativeBalanceTool defines the MCP tool schema for a native balance query.
func GetNativeBalanceTool() *mcp.Tool {
	return &mcp.Tool{
		Name:        "get_native_balance",
		Description: "Reads the native coin balance of an address on the session's active network.",
	}
}

// GetNativeBalanceHandler executes a native balance query.
func GetNativeBalanceHandler(deps Deps) HandlerFor[GetNativeBalanceInput, GetNativeBalanceResult] {
	return func(ctx context.Context, scope *session.Scope, input GetNativeBalanceInput) (GetNativeBalanceResult, string, error) {
		address := strings.TrimSpace(input.Address)
		if address == "" {
			account, err := session.DefaultAccount(scope.Store)
			if err != nil {
				return GetNativeBalanceResult{}, "", err
			}
			address = account.Address
		}

		callCtx, cancel := context.WithTimeout(ctx, chainCallTimeout)
		defer cancel()

		client, net, err := deps.chainClient(callCtx, scope)
		if err != nil {
			return GetNativeBalanceResult{}, "", err
		}
		balance, err := client.BalanceAt(callCtx, address)
		if err != nil {
			return GetNativeBalanceResult{}, "", err
		}

		result := GetNativeBalanceResult{
			Address:    address,
			Network:    net.Name,
			BalanceWei: balance.String(),
		}
		return result, fmt.Sprintf("Balance of %s on %s: %s wei", address, net.Name, result.BalanceWei), nil
	}
}

// TransferNativeInput represents the MCP tool input for a native transfer.
type TransferNativeInput struct {
	To        string `json:"to" jsonschema:"recipient address"`
	AmountWei string `json:"amount_wei" jsonschema:"amount in wei, decimal"`
	From      string `json:"from,omitempty" jsonschema:"sender address (defaults to the session default account)"`
}

// TransferNativeResult represents the MCP tool output for a native transfer.
type TransferNativeResult struct {
	TxHash    string `json:"tx_hash" jsonschema:"submitted transaction hash"`
	From      string `json:"from" jsonschema:"sender address"`
	To        string `json:"to" jsonschema:"recipient address"`
	AmountWei string `json:"amount_wei" jsonschema:"transferred amount in wei"`
	Network   string `json:"network" jsonschema:"network the transaction was submitted to"`
}

// TransferNativeTool defines the MCP tool schema for a native transfer.
func TransferNativeTool() *mcp.Tool {
	return &mcp.Tool{
		Name:        "transfer_native",
		Description: "Signs and submits a native coin transfer from a session account.",
	}
}

// TransferNativeHandler executes a native transfer.
func TransferNativeHandler(deps Deps) HandlerFor[TransferNativeInput, TransferNativeResult] {
	return func(ctx context.Context, scope *session.Scope, input TransferNativeInput) (TransferNativeResult, string, error) {
		if strings.TrimSpace(input.To) == "" {
			return TransferNativeResult{}, "", fmt.Errorf("to is required")
		}
		amount, err := parseAmount(input.AmountWei)
		if err != nil {
			return TransferNativeResult{}, "", err
		}
		account, err := sessionAccount(scope, input.From)
		if err != nil {
			return TransferNativeResult{}, "", err
		}

		callCtx, cancel := context.WithTimeout(ctx, chainCallTimeout)
		defer cancel()

		client, net, err := deps.chainClient(callCtx, scope)
		if err != nil {
			return TransferNativeResult{}, "", err
		}
		sent, err := chain.SendSigned(callCtx, client, account.PrivateKey, chain.TxRequest{
			To:       input.To,
			Value:    amount,
			GasLimit: nativeTransferGasLimit,
		})
		if err != nil {
			return TransferNativeResult{}, "", err
		}

		result := TransferNativeResult{
			TxHash:    sent.Hash,
			From:      sent.From,
			To:        input.To,
			AmountWei: amount.String(),
			Network:   net.Name,
		}
		return result, fmt.Sprintf("Sent %s wei to %s (tx %s)", result.AmountWei, result.To, result.TxHash), nil
	}
}

// SwitchNetworkInput represents the MCP tool input for switching networks.
type SwitchNetworkInput struct {
	Network string `json:"network" jsonschema:"network identifier: mainnet or testnet"`
}

// SwitchNetworkResult represents the MCP tool output for switching networks.
type SwitchNetworkResult struct {
	Network string `json:"network" jsonschema:"the session's new active network"`
	ChainID int64  `json:"chain_id" jsonschema:"chain id of the active network"`
	RPCURL  string `json:"rpc_url" jsonschema:"RPC endpoint of the active network"`
}

// SwitchNetworkTool defines the MCP tool schema for switching networks.
func SwitchNetworkTool() *mcp.Tool {
	return &mcp.Tool{
		Name:        "switch_network",
		Description: "Switches the session's active network. Accounts stay in the session; onboarding keys are per-network and must be re-derived after switching.",
	}
}

// SwitchNetworkHandler executes a network switch.
func SwitchNetworkHandler(deps Deps) HandlerFor[SwitchNetworkInput, SwitchNetworkResult] {
	return func(ctx context.Context, scope *session.Scope, input SwitchNetworkInput) (SwitchNetworkResult, string, error) {
		name, err := network.Normalize(input.Network)
		if err != nil {
			return SwitchNetworkResult{}, "", err
		}
		net, err := deps.Networks.Lookup(name)
		if err != nil {
			return SwitchNetworkResult{}, "", err
		}
		scope.Store.Set(session.KeyNetwork, name)

		result := SwitchNetworkResult{Network: net.Name, ChainID: net.ChainID, RPCURL: net.RPCURL}
		return result, fmt.Sprintf("Active network is now %s (chain id %d)", net.Name, net.ChainID), nil
	}
}

// OnboardAccountInput represents the MCP tool input for onboarding an account.
type OnboardAccountInput struct {
	Address string `json:"address,omitempty" jsonschema:"account address (defaults to the session default)"`
}

// OnboardAccountResult represents the MCP tool output for onboarding.
type OnboardAccountResult struct {
	Address          string `json:"address" jsonschema:"onboarded account address"`
	Network          string `json:"network" jsonschema:"network the onboarding key is bound to"`
	Onboarded        bool   `json:"onboarded" jsonschema:"whether the account now holds an onboarding key"`
	AlreadyOnboarded bool   `json:"already_onboarded" jsonschema:"whether the account was onboarded before this call"`
}

// OnboardAccountTool defines the MCP tool schema for onboarding an account.
func OnboardAccountTool() *mcp.Tool {
	return &mcp.Tool{
		Name:        "onboard_account",
		Description: "Derives the AES onboarding key a session account needs to hold and read private token balances. The key is bound to the active network.",
	}
}

// OnboardAccountHandler executes an onboarding request.
func OnboardAccountHandler(deps Deps) HandlerFor[OnboardAccountInput, OnboardAccountResult] {
	return func(ctx context.Context, scope *session.Scope, input OnboardAccountInput) (OnboardAccountResult, string, error) {
		account, err := sessionAccount(scope, input.Address)
		if err != nil {
			return OnboardAccountResult{}, "", err
		}
		net, err := deps.activeNetwork(scope)
		if err != nil {
			return OnboardAccountResult{}, "", err
		}

		if account.AESKey != "" {
			result := OnboardAccountResult{
				Address:          account.Address,
				Network:          net.Name,
				Onboarded:        true,
				AlreadyOnboarded: true,
			}
			return result, fmt.Sprintf("Account %s is already onboarded on %s", account.Address, net.Name), nil
		}

		aesKey, err := confidential.DeriveKey(account.PrivateKey, net.Name)
		if err != nil {
			return OnboardAccountResult{}, "", fmt.Errorf("derive onboarding key: %w", err)
		}
		account.AESKey = aesKey
		if err := session.AppendAccount(scope.Store, account); err != nil {
			return OnboardAccountResult{}, "", fmt.Errorf("store onboarding key: %w", err)
		}

		result := OnboardAccountResult{Address: account.Address, Network: net.Name, Onboarded: true}
		return result, fmt.Sprintf("Onboarded account %s on %s", account.Address, net.Name), nil
	}
}

// DestroySessionInput represents the MCP tool input for destroying a session.
type DestroySessionInput struct{}

// DestroySessionResult represents the MCP tool output for destroying a
// session.
type DestroySessionResult struct {
	Destroyed bool `json:"destroyed" jsonschema:"whether a live session was destroyed"`
}

// DestroySessionTool defines the MCP tool schema for destroying a session.
func DestroySessionTool() *mcp.Tool {
	return &mcp.Tool{
		Name:        "destroy_session",
		Description: "Destroys the current session and wipes all of its accounts and key material. Unexported keys are unrecoverable afterwards.",
	}
}

// DestroySessionHandler executes a session destruction request. The destroy
// capability is injected by the service layer; the handler itself never sees
// the session registry.
func DestroySessionHandler(destroy func(id string) bool) HandlerFor[DestroySessionInput, DestroySessionResult] {
	return func(ctx context.Context, scope *session.Scope, _ DestroySessionInput) (DestroySessionResult, string, error) {
		destroyed := destroy(scope.ID)
		summary := "No live session to destroy"
		if destroyed {
			summary = "Session destroyed; all session key material wiped"
		}
		return DestroySessionResult{Destroyed: destroyed}, summary, nil
	}
}
