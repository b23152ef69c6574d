package domain

import (
	"context"
	"fmt"
	"strings"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/veilchain/veil-mcp/internal/chain"
	"github.com/veilchain/veil-mcp/internal/compiler"
	"github.com/veilchain/veil-mcp/internal/session"
)

// CompileContractInput represents the MCP tool input for compiling Solidity
// source.
type CompileContractInput struct {
	Source       string `json:"source" jsonschema:"Solidity source code"`
	ContractName string `json:"contract_name,omitempty" jsonschema:"contract to extract when the source defines several"`
}

// CompileContractResult represents the MCP tool output for compiling Solidity
// source.
type CompileContractResult struct {
	ContractName string `json:"contract_name" jsonschema:"compiled contract name"`
	Bytecode     string `json:"bytecode" jsonschema:"deployable bytecode, hex"`
	ABI          string `json:"abi" jsonschema:"contract ABI, JSON"`
}

// CompileContractTool defines the MCP tool schema for compilation.
func CompileContractTool() *mcp.Tool {
	return &mcp.Tool{
		Name:        "compile_contract",
		Description: "Compiles Solidity source and returns bytecode and ABI, or compiler diagnostics on failure.",
	}
}

// CompileContractHandler executes a compilation request.
func CompileContractHandler(deps Deps) HandlerFor[CompileContractInput, CompileContractResult] {
	return func(ctx context.Context, scope *session.Scope, input CompileContractInput) (CompileContractResult, string, error) {
		if strings.TrimSpace(input.Source) == "" {
			return CompileContractResult{}, "", fmt.Errorf("source is required")
		}

		callCtx, cancel := context.WithTimeout(ctx, chainCallTimeout)
		defer cancel()

		artifact, err := deps.Compiler.Compile(callCtx, input.Source, input.ContractName)
		if err != nil {
			return CompileContractResult{}, "", err
		}

		result := CompileContractResult{
			ContractName: artifact.ContractName,
			Bytecode:     artifact.Bytecode,
			ABI:          artifact.ABI,
		}
		return result, fmt.Sprintf("Compiled %s", artifact.ContractName), nil
	}
}

// DeployContractInput represents the MCP tool input for deploying arbitrary
// contract code. Either precompiled bytecode or source to compile must be
// given.
type DeployContractInput struct {
	Source       string `json:"source,omitempty" jsonschema:"Solidity source to compile and deploy"`
	Bytecode     string `json:"bytecode,omitempty" jsonschema:"precompiled bytecode to deploy, hex"`
	ContractName string `json:"contract_name,omitempty" jsonschema:"contract to deploy when source defines several"`
	From         string `json:"from,omitempty" jsonschema:"deployer address (defaults to the session default account)"`
}

// DeployContractResult represents the MCP tool output for a deployment.
type DeployContractResult struct {
	ContractAddress string `json:"contract_address" jsonschema:"address the contract will live at"`
	TxHash          string `json:"tx_hash" jsonschema:"deployment transaction hash"`
	ContractName    string `json:"contract_name,omitempty" jsonschema:"deployed contract name, when compiled from source"`
	Network         string `json:"network" jsonschema:"network the contract was deployed to"`
}

// DeployContractTool defines the MCP tool schema for a deployment.
func DeployContractTool() *mcp.Tool {
	return &mcp.Tool{
		Name:        "deploy_contract",
		Description: "Deploys a contract from Solidity source or precompiled bytecode, signed by a session account.",
	}
}

// DeployContractHandler executes a deployment request.
func DeployContractHandler(deps Deps) HandlerFor[DeployContractInput, DeployContractResult] {
	return func(ctx context.Context, scope *session.Scope, input DeployContractInput) (DeployContractResult, string, error) {
		if strings.TrimSpace(input.Source) == "" && strings.TrimSpace(input.Bytecode) == "" {
			return DeployContractResult{}, "", fmt.Errorf("either source or bytecode is required")
		}
		account, err := sessionAccount(scope, input.From)
		if err != nil {
			return DeployContractResult{}, "", err
		}

		callCtx, cancel := context.WithTimeout(ctx, chainCallTimeout)
		defer cancel()

		bytecodeHex := input.Bytecode
		contractName := input.ContractName
		if strings.TrimSpace(bytecodeHex) == "" {
			artifact, err := deps.Compiler.Compile(callCtx, input.Source, input.ContractName)
			if err != nil {
				return DeployContractResult{}, "", err
			}
			bytecodeHex = artifact.Bytecode
			contractName = artifact.ContractName
		}
		bytecode, err := decodeBytecode(bytecodeHex)
		if err != nil {
			return DeployContractResult{}, "", err
		}

		client, net, err := deps.chainClient(callCtx, scope)
		if err != nil {
			return DeployContractResult{}, "", err
		}
		sent, err := chain.SendSigned(callCtx, client, account.PrivateKey, chain.TxRequest{Data: bytecode})
		if err != nil {
			return DeployContractResult{}, "", err
		}

		result := DeployContractResult{
			ContractAddress: chain.ContractAddress(sent.From, sent.Nonce),
			TxHash:          sent.Hash,
			ContractName:    contractName,
			Network:         net.Name,
		}
		return result, fmt.Sprintf("Deploying contract at %s on %s (tx %s)",
			result.ContractAddress, result.Network, result.TxHash), nil
	}
}

// VerifyContractInput represents the MCP tool input for source verification.
type VerifyContractInput struct {
	ContractAddress string `json:"contract_address" jsonschema:"deployed contract address"`
	Source          string `json:"source" jsonschema:"Solidity source matching the deployed bytecode"`
	ContractName    string `json:"contract_name" jsonschema:"contract name within the source"`
	CompilerVersion string `json:"compiler_version,omitempty" jsonschema:"solc version used for the build"`
}

// VerifyContractResult represents the MCP tool output for source
// verification.
type VerifyContractResult struct {
	ContractAddress string `json:"contract_address" jsonschema:"verified contract address"`
	Status          string `json:"status" jsonschema:"verification status reported by the backend"`
	URL             string `json:"url,omitempty" jsonschema:"explorer URL of the verified source"`
}

// VerifyContractTool defines the MCP tool schema for source verification.
func VerifyContractTool() *mcp.Tool {
	return &mcp.Tool{
		Name:        "verify_contract",
		Description: "Submits contract source for public verification against the deployed bytecode on the active network.",
	}
}

// VerifyContractHandler executes a verification request.
func VerifyContractHandler(deps Deps) HandlerFor[VerifyContractInput, VerifyContractResult] {
	return func(ctx context.Context, scope *session.Scope, input VerifyContractInput) (VerifyContractResult, string, error) {
		if strings.TrimSpace(input.ContractAddress) == "" || strings.TrimSpace(input.Source) == "" {
			return VerifyContractResult{}, "", fmt.Errorf("contract_address and source are required")
		}

		callCtx, cancel := context.WithTimeout(ctx, chainCallTimeout)
		defer cancel()

		client, net, err := deps.chainClient(callCtx, scope)
		if err != nil {
			return VerifyContractResult{}, "", err
		}
		code, err := client.CodeAt(callCtx, input.ContractAddress)
		if err != nil {
			return VerifyContractResult{}, "", err
		}
		if len(code) == 0 {
			return VerifyContractResult{}, "", fmt.Errorf("no contract code at %s on %s", input.ContractAddress, net.Name)
		}

		verification, err := deps.Verifier.Verify(callCtx, compiler.Submission{
			ContractAddress: input.ContractAddress,
			ContractName:    input.ContractName,
			Source:          input.Source,
			CompilerVersion: input.CompilerVersion,
			Network:         net.Name,
		})
		if err != nil {
			return VerifyContractResult{}, "", err
		}

		result := VerifyContractResult{
			ContractAddress: input.ContractAddress,
			Status:          verification.Status,
			URL:             verification.URL,
		}
		return result, fmt.Sprintf("Verification of %s: %s", input.ContractAddress, verification.Status), nil
	}
}
