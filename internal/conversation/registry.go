package conversation

import (
	"sync"

	"github.com/google/uuid"
)

// Registry keeps one Store per chat session. Nothing survives a restart.
type Registry struct {
	mu     sync.Mutex
	stores map[string]*Store
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{stores: make(map[string]*Store)}
}

// GetOrCreate returns the store for id, creating it if needed. An empty id
// creates a store under a fresh session id.
func (r *Registry) GetOrCreate(id string) *Store {
	r.mu.Lock()
	defer r.mu.Unlock()

	if id == "" {
		id = NewSessionID()
	}
	if s, ok := r.stores[id]; ok {
		return s
	}
	s := NewStore(id)
	r.stores[id] = s
	return s
}

// Get returns the store for id.
func (r *Registry) Get(id string) (*Store, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.stores[id]
	return s, ok
}

// Len returns the number of sessions.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.stores)
}

// NewSessionID generates a session id.
func NewSessionID() string {
	return "sess_" + uuid.New().String()[:8]
}
