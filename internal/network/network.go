// Package network defines the chain networks a session can target.
package network

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// Accepted network identifiers. A session's NETWORK entry always holds one of
// these.
const (
	Mainnet = "mainnet"
	Testnet = "testnet"
)

// DefaultNetwork seeds sessions when process configuration names no default.
const DefaultNetwork = Testnet

// ErrUnknownNetwork is returned for identifiers outside the catalog.
var ErrUnknownNetwork = errors.New("unknown network")

// Network describes one chain endpoint.
type Network struct {
	Name        string `yaml:"name"`
	DisplayName string `yaml:"display_name"`
	RPCURL      string `yaml:"rpc_url"`
	ChainID     int64  `yaml:"chain_id"`
	ExplorerURL string `yaml:"explorer_url"`
}

// Catalog maps network identifiers to endpoints.
type Catalog struct {
	networks map[string]Network
}

// BuiltinCatalog returns the compiled-in mainnet/testnet endpoints.
func BuiltinCatalog() *Catalog {
	return &Catalog{networks: map[string]Network{
		Mainnet: {
			Name:        Mainnet,
			DisplayName: "Veilchain Mainnet",
			RPCURL:      "https://rpc.veilchain.io",
			ChainID:     7771,
			ExplorerURL: "https://scan.veilchain.io",
		},
		Testnet: {
			Name:        Testnet,
			DisplayName: "Veilchain Testnet",
			RPCURL:      "https://rpc.testnet.veilchain.io",
			ChainID:     7772,
			ExplorerURL: "https://scan.testnet.veilchain.io",
		},
	}}
}

// LoadCatalog reads a YAML catalog file and overlays it on the builtin
// catalog, so deployments can repoint RPC endpoints without recompiling. Only
// the two accepted identifiers may appear in the file.
func LoadCatalog(path string) (*Catalog, error) {
	catalog := BuiltinCatalog()
	if path == "" {
		return catalog, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read network catalog: %w", err)
	}
	var file struct {
		Networks []Network `yaml:"networks"`
	}
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("parse network catalog: %w", err)
	}

	for _, override := range file.Networks {
		name, err := Normalize(override.Name)
		if err != nil {
			return nil, fmt.Errorf("network catalog entry %q: %w", override.Name, err)
		}
		base := catalog.networks[name]
		if override.DisplayName != "" {
			base.DisplayName = override.DisplayName
		}
		if override.RPCURL != "" {
			base.RPCURL = override.RPCURL
		}
		if override.ChainID != 0 {
			base.ChainID = override.ChainID
		}
		if override.ExplorerURL != "" {
			base.ExplorerURL = override.ExplorerURL
		}
		catalog.networks[name] = base
	}
	return catalog, nil
}

// Normalize canonicalizes a network identifier, rejecting anything outside
// the accepted set.
func Normalize(id string) (string, error) {
	switch strings.ToLower(strings.TrimSpace(id)) {
	case Mainnet:
		return Mainnet, nil
	case Testnet:
		return Testnet, nil
	default:
		return "", fmt.Errorf("%w: %q (accepted: %s, %s)", ErrUnknownNetwork, id, Mainnet, Testnet)
	}
}

// Lookup returns the endpoint description for id.
func (c *Catalog) Lookup(id string) (Network, error) {
	name, err := Normalize(id)
	if err != nil {
		return Network{}, err
	}
	return c.networks[name], nil
}

// Names returns the catalog's identifiers in a stable order.
func (c *Catalog) Names() []string {
	return []string{Mainnet, Testnet}
}
