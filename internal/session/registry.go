package session

import (
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

// Registry maps browser session ids to their Session. Sessions idle for
// longer than the TTL are dropped lazily, together with their ledger.
type Registry struct {
	mu       sync.Mutex
	sessions map[string]*Session
	ttl      time.Duration
	now      func() time.Time
}

func NewRegistry(ttl time.Duration) *Registry {
	return &Registry{
		sessions: make(map[string]*Session),
		ttl:      ttl,
		now:      time.Now,
	}
}

// Get returns the session for id, creating a fresh one with a new id when id
// is unknown or expired. The boolean reports whether a session was created.
func (r *Registry) Get(id string) (*Session, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := r.now()
	r.evictLocked(now)

	if s, ok := r.sessions[id]; ok {
		s.lastSeen = now
		return s, false
	}

	s := newSession(uuid.NewString(), now)
	r.sessions[s.ID] = s
	log.Info().Str("sessionId", s.ID).Int("sessions", len(r.sessions)).Msg("new session created")
	return s, true
}

func (r *Registry) evictLocked(now time.Time) {
	if r.ttl <= 0 {
		return
	}
	for id, s := range r.sessions {
		if idle := now.Sub(s.lastSeen); idle > r.ttl {
			delete(r.sessions, id)
			log.Info().Str("sessionId", id).Dur("idle", idle).Msg("session expired")
		}
	}
}

func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.sessions)
}
