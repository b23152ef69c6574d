package session

// Scope is the resolved per-session view a tool handler operates on. The
// dispatch layer builds one per call after resolving the store; handlers never
// see the Registry itself.
type Scope struct {
	ID    string
	Store *Store
}
