package session

import (
	"sync"

	"github.com/google/uuid"
)

// Registry owns the lifecycle of every session Store in the process. All
// creation and destruction goes through one mutex, so two concurrent calls
// carrying the same never-seen identifier resolve to a single store.
//
// A session id moves UNINITIALIZED -> ACTIVE on first resolution and ACTIVE
// -> DESTROYED on Destroy. A destroyed id showing up again is a fresh
// UNINITIALIZED -> ACTIVE transition with an empty store; old key material is
// never resurrected for a reused identifier.
type Registry struct {
	mu             sync.RWMutex
	sessions       map[string]*Store
	connections    map[string]string // external connection id -> session id
	defaultNetwork string
}

// NewRegistry returns an empty registry. New stores are seeded with
// defaultNetwork under KeyNetwork.
func NewRegistry(defaultNetwork string) *Registry {
	return &Registry{
		sessions:       make(map[string]*Store),
		connections:    make(map[string]string),
		defaultNetwork: defaultNetwork,
	}
}

// Create inserts a store under id and returns the id. An empty id gets a
// fresh random 128-bit identifier. If id already names a live session the
// existing store is left untouched and the same id is returned; callers that
// need to know whether a store existed use GetOrCreate.
func (r *Registry) Create(id string) string {
	r.mu.Lock()
	defer r.mu.Unlock()
	if id == "" {
		id = uuid.NewString()
	}
	if _, ok := r.sessions[id]; !ok {
		r.sessions[id] = r.newStoreLocked()
	}
	return id
}

// Get returns the store for id without side effects.
func (r *Registry) Get(id string) (*Store, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	store, ok := r.sessions[id]
	return store, ok
}

// GetOrCreate resolves the store for id, creating it when absent. The
// returned bool reports whether the store already existed. Lookup and insert
// happen under one lock acquisition, so no interleaving of two creates for
// the same id is possible.
func (r *Registry) GetOrCreate(id string) (*Store, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if store, ok := r.sessions[id]; ok {
		return store, true
	}
	store := r.newStoreLocked()
	r.sessions[id] = store
	return store, false
}

// Destroy clears the store's contents, removes it from the registry, and
// drops any connection mappings pointing at it. It reports whether a session
// existed; destroying an absent or already-destroyed id is a no-op returning
// false.
func (r *Registry) Destroy(id string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.destroyLocked(id)
}

// Active returns the identifiers of all live sessions.
func (r *Registry) Active() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	ids := make([]string, 0, len(r.sessions))
	for id := range r.sessions {
		ids = append(ids, id)
	}
	return ids
}

// Len returns the number of live sessions.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.sessions)
}

// ClearAll destroys every session. Shutdown path only, never the request
// path.
func (r *Registry) ClearAll() {
	r.mu.Lock()
	defer r.mu.Unlock()
	for id := range r.sessions {
		r.destroyLocked(id)
	}
}

// BindConnection maps an external connection identifier to a session id, for
// transports whose connection identity differs from the session identity they
// want tracked.
func (r *Registry) BindConnection(connID, sessionID string) {
	if connID == "" || sessionID == "" {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.connections[connID] = sessionID
}

// ResolveConnection returns the session id bound to connID.
func (r *Registry) ResolveConnection(connID string) (string, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	id, ok := r.connections[connID]
	return id, ok
}

// DefaultNetwork returns the network identifier seeded into new stores.
func (r *Registry) DefaultNetwork() string {
	return r.defaultNetwork
}

func (r *Registry) newStoreLocked() *Store {
	store := NewStore()
	if r.defaultNetwork != "" {
		store.Set(KeyNetwork, r.defaultNetwork)
	}
	return store
}

func (r *Registry) destroyLocked(id string) bool {
	store, ok := r.sessions[id]
	if !ok {
		return false
	}
	store.Clear()
	delete(r.sessions, id)
	for connID, sessionID := range r.connections {
		if sessionID == id {
			delete(r.connections, connID)
		}
	}
	return true
}
