package domain

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/veilchain/veil-mcp/internal/network"
)

const networksCatalogURI = "networks://catalog"

// NetworkCatalogEntry is one network in the readable catalog resource.
type NetworkCatalogEntry struct {
	Name        string `json:"name"`
	DisplayName string `json:"display_name"`
	RPCURL      string `json:"rpc_url"`
	ChainID     int64  `json:"chain_id"`
	ExplorerURL string `json:"explorer_url"`
}

// NetworkCatalogPayload is the catalog resource payload.
type NetworkCatalogPayload struct {
	Networks []NetworkCatalogEntry `json:"networks"`
	Default  string                `json:"default"`
}

// NetworksCatalogResource defines the readable network catalog resource.
func NetworksCatalogResource() *mcp.Resource {
	return &mcp.Resource{
		Name:        "network_catalog",
		Title:       "Networks",
		Description: "The chain networks a session can target with switch_network.",
		MIMEType:    "application/json",
		URI:         networksCatalogURI,
	}
}

// NetworksCatalogResourceHandler returns the catalog listing. The catalog is
// process-wide, so the resource is session-independent.
func NetworksCatalogResourceHandler(catalog *network.Catalog, defaultNetwork string) mcp.ResourceHandler {
	return func(ctx context.Context, req *mcp.ReadResourceRequest) (*mcp.ReadResourceResult, error) {
		if catalog == nil {
			return nil, fmt.Errorf("network catalog is not configured")
		}

		payload := NetworkCatalogPayload{Default: defaultNetwork}
		for _, name := range catalog.Names() {
			net, err := catalog.Lookup(name)
			if err != nil {
				return nil, fmt.Errorf("catalog entry %s: %w", name, err)
			}
			payload.Networks = append(payload.Networks, NetworkCatalogEntry{
				Name:        net.Name,
				DisplayName: net.DisplayName,
				RPCURL:      net.RPCURL,
				ChainID:     net.ChainID,
				ExplorerURL: net.ExplorerURL,
			})
		}

		data, err := json.MarshalIndent(payload, "", "  ")
		if err != nil {
			return nil, fmt.Errorf("marshal network catalog: %w", err)
		}
		return &mcp.ReadResourceResult{
			Contents: []*mcp.ResourceContents{
				{
					URI:      networksCatalogURI,
					MIMEType: "application/json",
					Text:     string(data),
				},
			},
		}, nil
	}
}
