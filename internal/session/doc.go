// Package session isolates per-connection state for the MCP server.
//
// Every logical MCP connection owns exactly one Store: a flat string
// key/value map holding its imported accounts, default-account pointer, and
// active network. The Registry owns all Store lifecycles for the process.
// Nothing in this package survives a restart, and nothing here is shared
// across session identifiers.
package session
