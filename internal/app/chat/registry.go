package chat

import "github.com/samber/lo"

// Registry is the set of live connections. It is not safe for concurrent use:
// only the coordinator's event loop touches it.
type Registry struct {
	sessions map[string]*Session
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{sessions: make(map[string]*Session)}
}

// Add inserts s, keyed by its session id.
func (r *Registry) Add(s *Session) {
	r.sessions[s.ID] = s
}

// Remove deletes and returns the session with the given id. Removing an absent
// id is a no-op.
func (r *Registry) Remove(id string) (*Session, bool) {
	s, ok := r.sessions[id]
	if ok {
		delete(r.sessions, id)
	}
	return s, ok
}

// Get returns the session with the given id.
func (r *Registry) Get(id string) (*Session, bool) {
	s, ok := r.sessions[id]
	return s, ok
}

// Readers returns the sessions that receive broadcast traffic.
func (r *Registry) Readers() []*Session {
	return lo.Filter(lo.Values(r.sessions), func(s *Session, _ int) bool {
		return s.ReceivesBroadcast()
	})
}

// Writers returns the writer-role chat sessions. There is at most one.
func (r *Registry) Writers() []*Session {
	return lo.Filter(lo.Values(r.sessions), func(s *Session, _ int) bool {
		return s.IsWriter()
	})
}

// CountPurpose returns how many sessions were registered with purpose p.
func (r *Registry) CountPurpose(p Purpose) int {
	return lo.CountBy(lo.Values(r.sessions), func(s *Session) bool {
		return s.Purpose == p
	})
}

// All returns every registered session.
func (r *Registry) All() []*Session {
	return lo.Values(r.sessions)
}

// Len returns the number of registered sessions.
func (r *Registry) Len() int {
	return len(r.sessions)
}
