package service

import (
	"fmt"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/veilchain/veil-mcp/internal/services/mcp/domain"
)

type registrationKind int

const (
	registrationKindTools registrationKind = iota
	registrationKindResources
)

type registrationModule struct {
	name     string
	kind     registrationKind
	register func(registrationTarget) error
}

const (
	accountToolsModuleName     = "account-tools"
	erc20ToolsModuleName       = "erc20-tools"
	erc721ToolsModuleName      = "erc721-tools"
	contractToolsModuleName    = "contract-tools"
	transactionToolsModuleName = "transaction-tools"
	networkResourcesModuleName = "network-resources"
)

type serverRegistrationAdapter struct {
	server *mcp.Server
}

func (r serverRegistrationAdapter) AddTool(tool *mcp.Tool, handler any) error {
	return addTool(r.server, tool, handler)
}

func (r serverRegistrationAdapter) AddResource(resource *mcp.Resource, handler mcp.ResourceHandler) {
	r.server.AddResource(resource, handler)
}

type toolRegistrar struct {
	matches func(any) bool
	add     func(*mcp.Server, *mcp.Tool, any)
}

func newToolRegistrar[I any, O any]() toolRegistrar {
	return toolRegistrar{
		matches: func(handler any) bool {
			_, ok := handler.(mcp.ToolHandlerFor[I, O])
			return ok
		},
		add: func(server *mcp.Server, tool *mcp.Tool, handler any) {
			mcp.AddTool(server, tool, handler.(mcp.ToolHandlerFor[I, O]))
		},
	}
}

var toolRegistrars = []toolRegistrar{
	newToolRegistrar[domain.CreateAccountInput, domain.CreateAccountResult](),
	newToolRegistrar[domain.ImportAccountInput, domain.ImportAccountResult](),
	newToolRegistrar[domain.ListAccountsInput, domain.ListAccountsResult](),
	newToolRegistrar[domain.SetDefaultAccountInput, domain.SetDefaultAccountResult](),
	newToolRegistrar[domain.ExportAccountInput, domain.ExportAccountResult](),
	newToolRegistrar[domain.GetNativeBalanceInput, domain.GetNativeBalanceResult](),
	newToolRegistrar[domain.TransferNativeInput, domain.TransferNativeResult](),
	newToolRegistrar[domain.SwitchNetworkInput, domain.SwitchNetworkResult](),
	newToolRegistrar[domain.OnboardAccountInput, domain.OnboardAccountResult](),
	newToolRegistrar[domain.DestroySessionInput, domain.DestroySessionResult](),
	newToolRegistrar[domain.DeployPrivateERC20Input, domain.DeployPrivateERC20Result](),
	newToolRegistrar[domain.GetPrivateERC20BalanceInput, domain.GetPrivateERC20BalanceResult](),
	newToolRegistrar[domain.GetPrivateERC20InfoInput, domain.GetPrivateERC20InfoResult](),
	newToolRegistrar[domain.TransferPrivateERC20Input, domain.TransferPrivateERC20Result](),
	newToolRegistrar[domain.ApprovePrivateERC20Input, domain.ApprovePrivateERC20Result](),
	newToolRegistrar[domain.DeployPrivateERC721Input, domain.DeployPrivateERC721Result](),
	newToolRegistrar[domain.MintPrivateERC721Input, domain.MintPrivateERC721Result](),
	newToolRegistrar[domain.TransferPrivateERC721Input, domain.TransferPrivateERC721Result](),
	newToolRegistrar[domain.GetPrivateERC721OwnerInput, domain.GetPrivateERC721OwnerResult](),
	newToolRegistrar[domain.GetPrivateERC721URIInput, domain.GetPrivateERC721URIResult](),
	newToolRegistrar[domain.CompileContractInput, domain.CompileContractResult](),
	newToolRegistrar[domain.DeployContractInput, domain.DeployContractResult](),
	newToolRegistrar[domain.VerifyContractInput, domain.VerifyContractResult](),
	newToolRegistrar[domain.GetTransactionStatusInput, domain.GetTransactionStatusResult](),
	newToolRegistrar[domain.GetTransactionLogsInput, domain.GetTransactionLogsResult](),
	newToolRegistrar[domain.EncryptValueInput, domain.EncryptValueResult](),
	newToolRegistrar[domain.DecryptValueInput, domain.DecryptValueResult](),
}

func addTool(server *mcp.Server, tool *mcp.Tool, handler any) error {
	for _, registrar := range toolRegistrars {
		if registrar.matches(handler) {
			registrar.add(server, tool, handler)
			return nil
		}
	}
	toolName := "<nil>"
	if tool != nil {
		toolName = tool.Name
	}
	return fmt.Errorf("mcp registration adapter does not support handler type %T for tool %q", handler, toolName)
}

func newRegistrationModules(server *Server, defaultNetwork string) []registrationModule {
	deps := server.deps
	return []registrationModule{
		{
			name: accountToolsModuleName,
			kind: registrationKindTools,
			register: func(registrar registrationTarget) error {
				return registerAccountTools(registrar, server, deps)
			},
		},
		{
			name: erc20ToolsModuleName,
			kind: registrationKindTools,
			register: func(registrar registrationTarget) error {
				return registerERC20Tools(registrar, server, deps)
			},
		},
		{
			name: erc721ToolsModuleName,
			kind: registrationKindTools,
			register: func(registrar registrationTarget) error {
				return registerERC721Tools(registrar, server, deps)
			},
		},
		{
			name: contractToolsModuleName,
			kind: registrationKindTools,
			register: func(registrar registrationTarget) error {
				return registerContractTools(registrar, server, deps)
			},
		},
		{
			name: transactionToolsModuleName,
			kind: registrationKindTools,
			register: func(registrar registrationTarget) error {
				return registerTransactionTools(registrar, server, deps)
			},
		},
		{
			name: networkResourcesModuleName,
			kind: registrationKindResources,
			register: func(registrar registrationTarget) error {
				registrar.AddResource(
					domain.NetworksCatalogResource(),
					domain.NetworksCatalogResourceHandler(deps.Networks, defaultNetwork),
				)
				return nil
			},
		},
	}
}
