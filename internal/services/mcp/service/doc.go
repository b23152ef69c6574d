// Package service hosts the MCP server: tool/resource registration, the
// session dispatch wrapper, and the stdio and HTTP transports. Session
// lifecycle lives here; tool semantics live in the domain package.
package service
