package calc

import (
	"sort"
	"sync"
	"time"
)

// SessionStats is one session's admin-surface snapshot.
type SessionStats struct {
	ID           string    `json:"id"`
	Transport    string    `json:"transport"`
	Remote       string    `json:"remote"`
	StartedAt    time.Time `json:"started_at"`
	Lines        uint64    `json:"lines"`
	Invalid      uint64    `json:"invalid"`
	DivZero      uint64    `json:"div_zero"`
	DroppedBytes uint64    `json:"dropped_bytes"`
	DroppedLines uint64    `json:"dropped_lines"`
}

// SessionRegistry tracks live sessions by ID for the admin surface.
type SessionRegistry struct {
	mu       sync.RWMutex
	sessions map[string]*Session
}

func NewSessionRegistry() *SessionRegistry {
	return &SessionRegistry{
		sessions: make(map[string]*Session),
	}
}

func (r *SessionRegistry) Add(s *Session) {
	if s == nil {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sessions[s.ID()] = s
}

func (r *SessionRegistry) Remove(id string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.sessions, id)
}

func (r *SessionRegistry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.sessions)
}

// List snapshots every live session, ordered by session ID.
func (r *SessionRegistry) List() []SessionStats {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]SessionStats, 0, len(r.sessions))
	for _, s := range r.sessions {
		out = append(out, s.Stats())
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].ID < out[j].ID
	})
	return out
}
