package session

import "sync"

// Well-known Store keys. The Store itself does not interpret them; handlers
// and the account helpers in this package own their encoding.
const (
	// KeyAccounts holds the session's JSON-encoded ordered account records.
	KeyAccounts = "accounts"
	// KeyCurrentAccount holds the default account address for the session.
	// When non-empty it names one of the stored account records.
	KeyCurrentAccount = "CURRENT_PUBLIC_KEY"
	// KeyNetwork holds the session's active network identifier.
	KeyNetwork = "NETWORK"
)

// Store is the isolated key/value state for one session. It is a dumb
// storage primitive: values are opaque strings and no cross-key invariant is
// enforced here. Safe for concurrent use.
type Store struct {
	mu     sync.RWMutex
	values map[string]string
}

// NewStore returns an empty store.
func NewStore() *Store {
	return &Store{values: make(map[string]string)}
}

// Get returns the value under key and whether it was present.
func (s *Store) Get(key string) (string, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	value, ok := s.values[key]
	return value, ok
}

// Set stores value under key, overwriting any existing value.
func (s *Store) Set(key, value string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.values[key] = value
}

// Delete removes key and reports whether it existed.
func (s *Store) Delete(key string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.values[key]
	delete(s.values, key)
	return ok
}

// Has reports whether key is present.
func (s *Store) Has(key string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.values[key]
	return ok
}

// Keys returns a snapshot of the stored keys in no particular order.
func (s *Store) Keys() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	keys := make([]string, 0, len(s.values))
	for key := range s.values {
		keys = append(keys, key)
	}
	return keys
}

// Clear removes every entry. Used at session teardown.
func (s *Store) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.values = make(map[string]string)
}

// Len returns the number of stored entries.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.values)
}
