// Package mcp parses MCP command flags and selects stdio or HTTP transport.
package mcp

import (
	"context"
	"flag"
	"log"
	"time"

	"github.com/veilchain/veil-mcp/internal/platform/config"
	"github.com/veilchain/veil-mcp/internal/platform/otel"
	"github.com/veilchain/veil-mcp/internal/services/mcp/service"
)

// Config holds MCP command configuration.
type Config struct {
	Transport      string `env:"VEIL_MCP_TRANSPORT"       envDefault:"stdio"`
	HTTPAddr       string `env:"VEIL_MCP_HTTP_ADDR"       envDefault:"localhost:8081"`
	DefaultNetwork string `env:"VEIL_MCP_DEFAULT_NETWORK" envDefault:"testnet"`
	CatalogPath    string `env:"VEIL_MCP_NETWORK_CATALOG"`
	CompilerURL    string `env:"VEIL_MCP_COMPILER_URL"    envDefault:"http://localhost:8547"`
	VerifierURL    string `env:"VEIL_MCP_VERIFIER_URL"    envDefault:"http://localhost:8548"`
}

// ParseConfig parses environment and flags into a Config. Flags override
// environment values.
func ParseConfig(fs *flag.FlagSet, args []string) (Config, error) {
	var cfg Config
	if err := config.ParseEnv(&cfg); err != nil {
		return Config{}, err
	}

	fs.StringVar(&cfg.Transport, "transport", cfg.Transport, "Transport type: stdio or http")
	fs.StringVar(&cfg.HTTPAddr, "http-addr", cfg.HTTPAddr, "HTTP server address (for HTTP transport)")
	fs.StringVar(&cfg.DefaultNetwork, "network", cfg.DefaultNetwork, "Default network for new sessions: mainnet or testnet")
	fs.StringVar(&cfg.CatalogPath, "network-catalog", cfg.CatalogPath, "Optional YAML network catalog override file")
	fs.StringVar(&cfg.CompilerURL, "compiler-url", cfg.CompilerURL, "Solidity build service endpoint")
	fs.StringVar(&cfg.VerifierURL, "verifier-url", cfg.VerifierURL, "Contract verification service endpoint")
	if err := fs.Parse(args); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Run starts the MCP server.
func Run(ctx context.Context, cfg Config) error {
	shutdown, err := otel.Setup(ctx, "mcp")
	if err != nil {
		return err
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := shutdown(shutdownCtx); err != nil {
			log.Printf("otel shutdown: %v", err)
		}
	}()

	return service.Run(ctx, service.Config{
		Transport:      service.TransportKind(cfg.Transport),
		HTTPAddr:       cfg.HTTPAddr,
		DefaultNetwork: cfg.DefaultNetwork,
		CatalogPath:    cfg.CatalogPath,
		CompilerURL:    cfg.CompilerURL,
		VerifierURL:    cfg.VerifierURL,
	})
}
