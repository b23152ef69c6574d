package domain

import (
	"context"
	"fmt"
	"math/big"
	"strings"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/veilchain/veil-mcp/internal/chain"
	"github.com/veilchain/veil-mcp/internal/session"
)

// DeployPrivateERC721Input represents the MCP tool input for deploying a
// private ERC721 collection.
type DeployPrivateERC721Input struct {
	Name   string `json:"name" jsonschema:"collection name"`
	Symbol string `json:"symbol" jsonschema:"collection symbol"`
	From   string `json:"from,omitempty" jsonschema:"deployer address (defaults to the session default account)"`
}

// DeployPrivateERC721Result represents the MCP tool output for deploying a
// private ERC721 collection.
type DeployPrivateERC721Result struct {
	ContractAddress string `json:"contract_address" jsonschema:"address the collection will live at"`
	TxHash          string `json:"tx_hash" jsonschema:"deployment transaction hash"`
	Name            string `json:"name" jsonschema:"collection name"`
	Symbol          string `json:"symbol" jsonschema:"collection symbol"`
	Network         string `json:"network" jsonschema:"network the collection was deployed to"`
}

// DeployPrivateERC721Tool defines the MCP tool schema for deploying a private
// ERC721 collection.
func DeployPrivateERC721Tool() *mcp.Tool {
	return &mcp.Tool{
		Name:        "deploy_private_erc721",
		Description: "Compiles and deploys a confidential ERC721 collection with shielded ownership metadata.",
	}
}

// DeployPrivateERC721Handler executes a private ERC721 deployment.
func DeployPrivateERC721Handler(deps Deps) HandlerFor[DeployPrivateERC721Input, DeployPrivateERC721Result] {
	return func(ctx context.Context, scope *session.Scope, input DeployPrivateERC721Input) (DeployPrivateERC721Result, string, error) {
		if strings.TrimSpace(input.Name) == "" || strings.TrimSpace(input.Symbol) == "" {
			return DeployPrivateERC721Result{}, "", fmt.Errorf("name and symbol are required")
		}
		account, err := sessionAccount(scope, input.From)
		if err != nil {
			return DeployPrivateERC721Result{}, "", err
		}

		callCtx, cancel := context.WithTimeout(ctx, chainCallTimeout)
		defer cancel()

		contractName := contractIdentifier(input.Name, "PrivateCollection")
		artifact, err := deps.Compiler.Compile(callCtx,
			privateERC721Source(contractName, input.Name, input.Symbol), contractName)
		if err != nil {
			return DeployPrivateERC721Result{}, "", err
		}
		bytecode, err := decodeBytecode(artifact.Bytecode)
		if err != nil {
			return DeployPrivateERC721Result{}, "", err
		}

		client, net, err := deps.chainClient(callCtx, scope)
		if err != nil {
			return DeployPrivateERC721Result{}, "", err
		}
		sent, err := chain.SendSigned(callCtx, client, account.PrivateKey, chain.TxRequest{Data: bytecode})
		if err != nil {
			return DeployPrivateERC721Result{}, "", err
		}

		result := DeployPrivateERC721Result{
			ContractAddress: chain.ContractAddress(sent.From, sent.Nonce),
			TxHash:          sent.Hash,
			Name:            input.Name,
			Symbol:          input.Symbol,
			Network:         net.Name,
		}
		return result, fmt.Sprintf("Deploying %s (%s) at %s on %s (tx %s)",
			result.Name, result.Symbol, result.ContractAddress, result.Network, result.TxHash), nil
	}
}

// MintPrivateERC721Input represents the MCP tool input for minting a token.
type MintPrivateERC721Input struct {
	Contract string `json:"contract" jsonschema:"collection contract address"`
	TokenURI string `json:"token_uri" jsonschema:"metadata URI for the minted token"`
	To       string `json:"to,omitempty" jsonschema:"recipient address (defaults to the session default account)"`
}

// MintPrivateERC721Result represents the MCP tool output for minting a token.
type MintPrivateERC721Result struct {
	TxHash   string `json:"tx_hash" jsonschema:"submitted transaction hash"`
	Contract string `json:"contract" jsonschema:"collection contract address"`
	To       string `json:"to" jsonschema:"recipient address"`
	TokenURI string `json:"token_uri" jsonschema:"metadata URI of the minted token"`
}

// MintPrivateERC721Tool defines the MCP tool schema for minting a token.
func MintPrivateERC721Tool() *mcp.Tool {
	return &mcp.Tool{
		Name:        "mint_private_erc721",
		Description: "Mints a token in a confidential ERC721 collection. The minting account signs; the recipient defaults to the session default account.",
	}
}

// MintPrivateERC721Handler executes a mint request.
func MintPrivateERC721Handler(deps Deps) HandlerFor[MintPrivateERC721Input, MintPrivateERC721Result] {
	return func(ctx context.Context, scope *session.Scope, input MintPrivateERC721Input) (MintPrivateERC721Result, string, error) {
		if strings.TrimSpace(input.Contract) == "" {
			return MintPrivateERC721Result{}, "", fmt.Errorf("contract is required")
		}
		account, err := sessionAccount(scope, "")
		if err != nil {
			return MintPrivateERC721Result{}, "", err
		}
		to := strings.TrimSpace(input.To)
		if to == "" {
			to = account.Address
		}

		callCtx, cancel := context.WithTimeout(ctx, chainCallTimeout)
		defer cancel()

		client, _, err := deps.chainClient(callCtx, scope)
		if err != nil {
			return MintPrivateERC721Result{}, "", err
		}
		sent, err := chain.SendSigned(callCtx, client, account.PrivateKey, chain.TxRequest{
			To:   input.Contract,
			Data: chain.ERC721{}.PackMint(to, input.TokenURI),
		})
		if err != nil {
			return MintPrivateERC721Result{}, "", err
		}

		result := MintPrivateERC721Result{
			TxHash:   sent.Hash,
			Contract: input.Contract,
			To:       to,
			TokenURI: input.TokenURI,
		}
		return result, fmt.Sprintf("Minting token to %s (tx %s)", to, result.TxHash), nil
	}
}

// TransferPrivateERC721Input represents the MCP tool input for transferring a
// token.
type TransferPrivateERC721Input struct {
	Contract string `json:"contract" jsonschema:"collection contract address"`
	To       string `json:"to" jsonschema:"recipient address"`
	TokenID  string `json:"token_id" jsonschema:"token id, decimal"`
	From     string `json:"from,omitempty" jsonschema:"current owner address (defaults to the session default account)"`
}

// TransferPrivateERC721Result represents the MCP tool output for transferring
// a token.
type TransferPrivateERC721Result struct {
	TxHash   string `json:"tx_hash" jsonschema:"submitted transaction hash"`
	Contract string `json:"contract" jsonschema:"collection contract address"`
	From     string `json:"from" jsonschema:"previous owner address"`
	To       string `json:"to" jsonschema:"recipient address"`
	TokenID  string `json:"token_id" jsonschema:"transferred token id"`
}

// TransferPrivateERC721Tool defines the MCP tool schema for transferring a
// token.
func TransferPrivateERC721Tool() *mcp.Tool {
	return &mcp.Tool{
		Name:        "transfer_private_erc721",
		Description: "Transfers a token in a confidential ERC721 collection from a session account.",
	}
}

// TransferPrivateERC721Handler executes a token transfer.
func TransferPrivateERC721Handler(deps Deps) HandlerFor[TransferPrivateERC721Input, TransferPrivateERC721Result] {
	return func(ctx context.Context, scope *session.Scope, input TransferPrivateERC721Input) (TransferPrivateERC721Result, string, error) {
		if strings.TrimSpace(input.Contract) == "" || strings.TrimSpace(input.To) == "" {
			return TransferPrivateERC721Result{}, "", fmt.Errorf("contract and to are required")
		}
		tokenID, err := parseAmount(input.TokenID)
		if err != nil {
			return TransferPrivateERC721Result{}, "", fmt.Errorf("invalid token_id: %w", err)
		}
		account, err := sessionAccount(scope, input.From)
		if err != nil {
			return TransferPrivateERC721Result{}, "", err
		}

		callCtx, cancel := context.WithTimeout(ctx, chainCallTimeout)
		defer cancel()

		client, _, err := deps.chainClient(callCtx, scope)
		if err != nil {
			return TransferPrivateERC721Result{}, "", err
		}
		sent, err := chain.SendSigned(callCtx, client, account.PrivateKey, chain.TxRequest{
			To:   input.Contract,
			Data: chain.ERC721{}.PackTransferFrom(account.Address, input.To, tokenID),
		})
		if err != nil {
			return TransferPrivateERC721Result{}, "", err
		}

		result := TransferPrivateERC721Result{
			TxHash:   sent.Hash,
			Contract: input.Contract,
			From:     sent.From,
			To:       input.To,
			TokenID:  tokenID.String(),
		}
		return result, fmt.Sprintf("Transferring token %s to %s (tx %s)", result.TokenID, result.To, result.TxHash), nil
	}
}

// GetPrivateERC721OwnerInput represents the MCP tool input for an ownership
// query.
type GetPrivateERC721OwnerInput struct {
	Contract string `json:"contract" jsonschema:"collection contract address"`
	TokenID  string `json:"token_id" jsonschema:"token id, decimal"`
}

// GetPrivateERC721OwnerResult represents the MCP tool output for an ownership
// query.
type GetPrivateERC721OwnerResult struct {
	Contract string `json:"contract" jsonschema:"collection contract address"`
	TokenID  string `json:"token_id" jsonschema:"queried token id"`
	Owner    string `json:"owner" jsonschema:"current owner address"`
}

// GetPrivateERC721OwnerTool defines the MCP tool schema for an ownership
// query.
func GetPrivateERC721OwnerTool() *mcp.Tool {
	return &mcp.Tool{
		Name:        "get_private_erc721_owner",
		Description: "Reads the owner of a token in a confidential ERC721 collection.",
	}
}

// GetPrivateERC721OwnerHandler executes an ownership query.
func GetPrivateERC721OwnerHandler(deps Deps) HandlerFor[GetPrivateERC721OwnerInput, GetPrivateERC721OwnerResult] {
	return func(ctx context.Context, scope *session.Scope, input GetPrivateERC721OwnerInput) (GetPrivateERC721OwnerResult, string, error) {
		tokenID, err := parseTokenID(input.Contract, input.TokenID)
		if err != nil {
			return GetPrivateERC721OwnerResult{}, "", err
		}

		callCtx, cancel := context.WithTimeout(ctx, chainCallTimeout)
		defer cancel()

		client, _, err := deps.chainClient(callCtx, scope)
		if err != nil {
			return GetPrivateERC721OwnerResult{}, "", err
		}
		output, err := client.CallContract(callCtx, input.Contract, chain.ERC721{}.PackOwnerOf(tokenID))
		if err != nil {
			return GetPrivateERC721OwnerResult{}, "", err
		}
		owner, err := chain.ERC721{}.UnpackOwnerOf(output)
		if err != nil {
			return GetPrivateERC721OwnerResult{}, "", err
		}

		result := GetPrivateERC721OwnerResult{
			Contract: input.Contract,
			TokenID:  tokenID.String(),
			Owner:    owner,
		}
		return result, fmt.Sprintf("Token %s is owned by %s", result.TokenID, owner), nil
	}
}

// GetPrivateERC721URIInput represents the MCP tool input for a token URI
// query.
type GetPrivateERC721URIInput struct {
	Contract string `json:"contract" jsonschema:"collection contract address"`
	TokenID  string `json:"token_id" jsonschema:"token id, decimal"`
}

// GetPrivateERC721URIResult represents the MCP tool output for a token URI
// query.
type GetPrivateERC721URIResult struct {
	Contract string `json:"contract" jsonschema:"collection contract address"`
	TokenID  string `json:"token_id" jsonschema:"queried token id"`
	TokenURI string `json:"token_uri" jsonschema:"metadata URI of the token"`
}

// GetPrivateERC721URITool defines the MCP tool schema for a token URI query.
func GetPrivateERC721URITool() *mcp.Tool {
	return &mcp.Tool{
		Name:        "get_private_erc721_uri",
		Description: "Reads the metadata URI of a token in a confidential ERC721 collection.",
	}
}

// GetPrivateERC721URIHandler executes a token URI query.
func GetPrivateERC721URIHandler(deps Deps) HandlerFor[GetPrivateERC721URIInput, GetPrivateERC721URIResult] {
	return func(ctx context.Context, scope *session.Scope, input GetPrivateERC721URIInput) (GetPrivateERC721URIResult, string, error) {
		tokenID, err := parseTokenID(input.Contract, input.TokenID)
		if err != nil {
			return GetPrivateERC721URIResult{}, "", err
		}

		callCtx, cancel := context.WithTimeout(ctx, chainCallTimeout)
		defer cancel()

		client, _, err := deps.chainClient(callCtx, scope)
		if err != nil {
			return GetPrivateERC721URIResult{}, "", err
		}
		output, err := client.CallContract(callCtx, input.Contract, chain.ERC721{}.PackTokenURI(tokenID))
		if err != nil {
			return GetPrivateERC721URIResult{}, "", err
		}
		uri, err := chain.ERC721{}.UnpackTokenURI(output)
		if err != nil {
			return GetPrivateERC721URIResult{}, "", err
		}

		result := GetPrivateERC721URIResult{
			Contract: input.Contract,
			TokenID:  tokenID.String(),
			TokenURI: uri,
		}
		return result, fmt.Sprintf("Token %s URI: %s", result.TokenID, uri), nil
	}
}

func parseTokenID(contract, tokenID string) (*big.Int, error) {
	if strings.TrimSpace(contract) == "" {
		return nil, fmt.Errorf("contract is required")
	}
	id, err := parseAmount(tokenID)
	if err != nil {
		return nil, fmt.Errorf("invalid token_id: %w", err)
	}
	return id, nil
}
