// Package domain implements the MCP tool handlers for confidential-token
// operations. Handlers are thin glue: they read and write session state
// through a session.Scope, delegate chain work to the chain client, and leave
// session lifecycle to the service layer's dispatch wrapper.
package domain
