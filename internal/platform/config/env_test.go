package config

import (
	"strings"
	"testing"
)

type envTestConfig struct {
	Network string `env:"VEIL_MCP_TEST_NETWORK" envDefault:"testnet"`
	Port    int    `env:"VEIL_MCP_TEST_PORT"    envDefault:"8545"`
}

func TestParseEnvDefaults(t *testing.T) {
	var cfg envTestConfig

	if err := ParseEnv(&cfg); err != nil {
		t.Fatalf("parse env: %v", err)
	}
	if cfg.Network != "testnet" {
		t.Fatalf("expected default network testnet, got %q", cfg.Network)
	}
	if cfg.Port != 8545 {
		t.Fatalf("expected default port 8545, got %d", cfg.Port)
	}
}

func TestParseEnvOverride(t *testing.T) {
	var cfg envTestConfig
	t.Setenv("VEIL_MCP_TEST_NETWORK", "mainnet")

	if err := ParseEnv(&cfg); err != nil {
		t.Fatalf("parse env: %v", err)
	}
	if cfg.Network != "mainnet" {
		t.Fatalf("expected mainnet, got %q", cfg.Network)
	}
}

func TestParseEnvError(t *testing.T) {
	var cfg envTestConfig
	t.Setenv("VEIL_MCP_TEST_PORT", "not-an-int")

	err := ParseEnv(&cfg)
	if err == nil {
		t.Fatal("expected error")
	}
	if !strings.Contains(err.Error(), "parse env:") {
		t.Fatalf("expected parse env prefix, got %v", err)
	}
}
