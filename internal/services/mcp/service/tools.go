package service

import (
	"fmt"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/veilchain/veil-mcp/internal/services/mcp/domain"
)

type registrationTarget interface {
	AddTool(*mcp.Tool, any) error
	AddResource(*mcp.Resource, mcp.ResourceHandler)
}

type toolRegistration struct {
	tool    *mcp.Tool
	handler any
}

// sessionTool wraps a raw domain handler with the session dispatch wrapper
// under the tool's registered name.
func sessionTool[I, O any](server *Server, tool *mcp.Tool, handler domain.HandlerFor[I, O]) toolRegistration {
	return toolRegistration{tool: tool, handler: withSession(server, tool.Name, handler)}
}

func registerAccountTools(registrar registrationTarget, server *Server, deps domain.Deps) error {
	registrations := []toolRegistration{
		sessionTool(server, domain.CreateAccountTool(), domain.CreateAccountHandler(deps)),
		sessionTool(server, domain.ImportAccountTool(), domain.ImportAccountHandler(deps)),
		sessionTool(server, domain.ListAccountsTool(), domain.ListAccountsHandler(deps)),
		sessionTool(server, domain.SetDefaultAccountTool(), domain.SetDefaultAccountHandler(deps)),
		sessionTool(server, domain.ExportAccountTool(), domain.ExportAccountHandler(deps)),
		sessionTool(server, domain.GetNativeBalanceTool(), domain.GetNativeBalanceHandler(deps)),
		sessionTool(server, domain.TransferNativeTool(), domain.TransferNativeHandler(deps)),
		sessionTool(server, domain.SwitchNetworkTool(), domain.SwitchNetworkHandler(deps)),
		sessionTool(server, domain.OnboardAccountTool(), domain.OnboardAccountHandler(deps)),
		sessionTool(server, domain.DestroySessionTool(), domain.DestroySessionHandler(server.destroySession)),
	}
	return registerTools(registrar, registrations)
}

func registerERC20Tools(registrar registrationTarget, server *Server, deps domain.Deps) error {
	registrations := []toolRegistration{
		sessionTool(server, domain.DeployPrivateERC20Tool(), domain.DeployPrivateERC20Handler(deps)),
		sessionTool(server, domain.GetPrivateERC20BalanceTool(), domain.GetPrivateERC20BalanceHandler(deps)),
		sessionTool(server, domain.GetPrivateERC20InfoTool(), domain.GetPrivateERC20InfoHandler(deps)),
		sessionTool(server, domain.TransferPrivateERC20Tool(), domain.TransferPrivateERC20Handler(deps)),
		sessionTool(server, domain.ApprovePrivateERC20Tool(), domain.ApprovePrivateERC20Handler(deps)),
	}
	return registerTools(registrar, registrations)
}

func registerERC721Tools(registrar registrationTarget, server *Server, deps domain.Deps) error {
	registrations := []toolRegistration{
		sessionTool(server, domain.DeployPrivateERC721Tool(), domain.DeployPrivateERC721Handler(deps)),
		sessionTool(server, domain.MintPrivateERC721Tool(), domain.MintPrivateERC721Handler(deps)),
		sessionTool(server, domain.TransferPrivateERC721Tool(), domain.TransferPrivateERC721Handler(deps)),
		sessionTool(server, domain.GetPrivateERC721OwnerTool(), domain.GetPrivateERC721OwnerHandler(deps)),
		sessionTool(server, domain.GetPrivateERC721URITool(), domain.GetPrivateERC721URIHandler(deps)),
	}
	return registerTools(registrar, registrations)
}

func registerContractTools(registrar registrationTarget, server *Server, deps domain.Deps) error {
	registrations := []toolRegistration{
		sessionTool(server, domain.CompileContractTool(), domain.CompileContractHandler(deps)),
		sessionTool(server, domain.DeployContractTool(), domain.DeployContractHandler(deps)),
		sessionTool(server, domain.VerifyContractTool(), domain.VerifyContractHandler(deps)),
	}
	return registerTools(registrar, registrations)
}

func registerTransactionTools(registrar registrationTarget, server *Server, deps domain.Deps) error {
	registrations := []toolRegistration{
		sessionTool(server, domain.GetTransactionStatusTool(), domain.GetTransactionStatusHandler(deps)),
		sessionTool(server, domain.GetTransactionLogsTool(), domain.GetTransactionLogsHandler(deps)),
		sessionTool(server, domain.EncryptValueTool(), domain.EncryptValueHandler(deps)),
		sessionTool(server, domain.DecryptValueTool(), domain.DecryptValueHandler(deps)),
	}
	return registerTools(registrar, registrations)
}

func registerTools(registrar registrationTarget, registrations []toolRegistration) error {
	for _, registration := range registrations {
		if registration.tool == nil {
			return fmt.Errorf("tool is nil")
		}
		if err := registrar.AddTool(registration.tool, registration.handler); err != nil {
			return err
		}
	}
	return nil
}
