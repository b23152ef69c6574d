// Package chain is the server's gateway to a Veilchain JSON-RPC node.
//
// The Client interface is the capability tool handlers consume: balances,
// nonces, transaction submission, contract calls, and receipt introspection.
// RPCClient is the production implementation on go-ethereum's ethclient; the
// Pool caches one client per RPC endpoint so sessions switching networks do
// not re-dial on every call.
package chain
