package conversation

import (
	"sync"

	"github.com/mzhao/synogpt/internal/provider"
)

// Store holds per-user sessions. Implementations must be safe for
// concurrent use. State lives for process uptime only; losing it on
// restart is a contract, not a defect.
type Store interface {
	Get(userID string) (Session, bool)
	Put(userID string, s Session)
	Delete(userID string)
	Len() int
}

// MemoryStore is the in-process Store used in production.
type MemoryStore struct {
	mu       sync.RWMutex
	sessions map[string]Session
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{sessions: make(map[string]Session)}
}

// Get returns a copy of the stored session; the Messages slice is cloned
// so callers can append without aliasing the stored state.
func (s *MemoryStore) Get(userID string) (Session, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	sess, ok := s.sessions[userID]
	if !ok {
		return Session{}, false
	}
	sess.Messages = append([]provider.Message(nil), sess.Messages...)
	return sess, true
}

func (s *MemoryStore) Put(userID string, sess Session) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions[userID] = sess
}

func (s *MemoryStore) Delete(userID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, userID)
}

func (s *MemoryStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.sessions)
}
