package hub

import (
	"sync"

	"github.com/google/uuid"
)

// sessionRegistry owns userID → set of live connections. The 0↔1 size
// transitions of a user's set are the only presence-relevant edges; callers
// get them back synchronously from register/deregister.
type sessionRegistry struct {
	mu       sync.RWMutex
	sessions map[uuid.UUID]map[*Conn]struct{}
}

func newSessionRegistry() *sessionRegistry {
	return &sessionRegistry{sessions: make(map[uuid.UUID]map[*Conn]struct{})}
}

// register adds the connection to its user's session. Returns true when this
// is the user's first live connection (the online edge).
func (r *sessionRegistry) register(c *Conn) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	set := r.sessions[c.user]
	if set == nil {
		set = make(map[*Conn]struct{})
		r.sessions[c.user] = set
	}
	set[c] = struct{}{}
	return len(set) == 1
}

// deregister removes the connection. Returns true when the user's session
// became empty (the offline edge). Removing a connection that was never
// registered is a no-op: disconnect handlers may fire more than once.
func (r *sessionRegistry) deregister(c *Conn) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	set, ok := r.sessions[c.user]
	if !ok {
		return false
	}
	if _, ok := set[c]; !ok {
		return false
	}
	delete(set, c)
	if len(set) == 0 {
		delete(r.sessions, c.user)
		return true
	}
	return false
}

// connectionsOf snapshots the user's live connections.
func (r *sessionRegistry) connectionsOf(userID uuid.UUID) []*Conn {
	r.mu.RLock()
	defer r.mu.RUnlock()
	set := r.sessions[userID]
	conns := make([]*Conn, 0, len(set))
	for c := range set {
		conns = append(conns, c)
	}
	return conns
}

// all snapshots every live connection system-wide.
func (r *sessionRegistry) all() []*Conn {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var conns []*Conn
	for _, set := range r.sessions {
		for c := range set {
			conns = append(conns, c)
		}
	}
	return conns
}
