package mcp

import (
	"flag"
	"testing"
)

func TestParseConfigDefaults(t *testing.T) {
	fs := flag.NewFlagSet("mcp", flag.ContinueOnError)
	cfg, err := ParseConfig(fs, nil)
	if err != nil {
		t.Fatalf("parse config: %v", err)
	}
	if cfg.Transport != "stdio" {
		t.Fatalf("expected default transport stdio, got %q", cfg.Transport)
	}
	if cfg.HTTPAddr != "localhost:8081" {
		t.Fatalf("expected default http addr, got %q", cfg.HTTPAddr)
	}
	if cfg.DefaultNetwork != "testnet" {
		t.Fatalf("expected default network testnet, got %q", cfg.DefaultNetwork)
	}
}

func TestParseConfigEnvOverrides(t *testing.T) {
	t.Setenv("VEIL_MCP_TRANSPORT", "http")
	t.Setenv("VEIL_MCP_HTTP_ADDR", "env-http")
	t.Setenv("VEIL_MCP_COMPILER_URL", "http://compiler.internal")

	fs := flag.NewFlagSet("mcp", flag.ContinueOnError)
	cfg, err := ParseConfig(fs, nil)
	if err != nil {
		t.Fatalf("parse config: %v", err)
	}
	if cfg.Transport != "http" {
		t.Fatalf("expected env transport http, got %q", cfg.Transport)
	}
	if cfg.HTTPAddr != "env-http" {
		t.Fatalf("expected env http addr, got %q", cfg.HTTPAddr)
	}
	if cfg.CompilerURL != "http://compiler.internal" {
		t.Fatalf("expected env compiler url, got %q", cfg.CompilerURL)
	}
}

func TestParseConfigFlagsOverrideEnv(t *testing.T) {
	t.Setenv("VEIL_MCP_HTTP_ADDR", "env-http")
	t.Setenv("VEIL_MCP_DEFAULT_NETWORK", "testnet")

	fs := flag.NewFlagSet("mcp", flag.ContinueOnError)
	args := []string{"-http-addr", "flag-http", "-network", "mainnet", "-transport", "http"}
	cfg, err := ParseConfig(fs, args)
	if err != nil {
		t.Fatalf("parse config: %v", err)
	}
	if cfg.HTTPAddr != "flag-http" {
		t.Fatalf("expected flag http addr, got %q", cfg.HTTPAddr)
	}
	if cfg.DefaultNetwork != "mainnet" {
		t.Fatalf("expected flag network mainnet, got %q", cfg.DefaultNetwork)
	}
	if cfg.Transport != "http" {
		t.Fatalf("expected transport http, got %q", cfg.Transport)
	}
}
