package session

import (
	"sync"
	"time"

	"notesync-core/internal/entity"
	"notesync-core/internal/pkg/logger"
	"notesync-core/internal/store"
)

// Registry maps session id to its single live Store within one window.
type Registry struct {
	db       store.Database
	log      logger.ILogger
	debounce time.Duration

	mu       sync.Mutex
	sessions map[string]*Store
}

func NewRegistry(db store.Database, log logger.ILogger, debounce time.Duration) *Registry {
	return &Registry{
		db:       db,
		log:      log,
		debounce: debounce,
		sessions: make(map[string]*Store),
	}
}

// Insert returns the existing store for session.Id unchanged if one is
// live; the incoming payload is discarded rather than overwriting
// in-memory state that may have advanced past it. Otherwise a new store
// is seeded from the payload and recorded.
func (r *Registry) Insert(session entity.Session) *Store {
	r.mu.Lock()
	defer r.mu.Unlock()

	if existing, ok := r.sessions[session.Id]; ok {
		return existing
	}

	s := NewStore(session, r.db, r.log, r.debounce)
	r.sessions[session.Id] = s
	return s
}

// Get returns the store for id, or nil.
func (r *Registry) Get(id string) *Store {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.sessions[id]
}

// Remove deletes the mapping. It does not cancel an in-flight
// enhancement job for the id; callers that remove a session must cancel
// its job first if one may be active.
func (r *Registry) Remove(id string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.sessions, id)
}
