package dialogue

import "sync"

// SessionStore is keyed storage for dialogue sessions, one per user. The
// engine's caller constructs it once at process start and injects it, so tests
// can substitute their own and production can swap in a durable store.
type SessionStore interface {
	Get(userID string) (*Session, bool)
	Set(userID string, session *Session)
	Delete(userID string)
}

// MemoryStore is the in-process SessionStore. Concurrent-safe.
type MemoryStore struct {
	mu       sync.RWMutex
	sessions map[string]*Session
}

// NewMemoryStore creates an empty in-memory session store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{sessions: make(map[string]*Session)}
}

func (s *MemoryStore) Get(userID string) (*Session, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	session, ok := s.sessions[userID]
	return session, ok
}

func (s *MemoryStore) Set(userID string, session *Session) {
	s.mu.Lock()
	s.sessions[userID] = session
	s.mu.Unlock()
}

func (s *MemoryStore) Delete(userID string) {
	s.mu.Lock()
	delete(s.sessions, userID)
	s.mu.Unlock()
}

// Len reports the number of active sessions, for metrics.
func (s *MemoryStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.sessions)
}

// keyedMutex hands out one mutex per key so the engine can serialize turns
// per user without a global lock.
type keyedMutex struct {
	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

func newKeyedMutex() *keyedMutex {
	return &keyedMutex{locks: make(map[string]*sync.Mutex)}
}

func (k *keyedMutex) lock(key string) *sync.Mutex {
	k.mu.Lock()
	m, ok := k.locks[key]
	if !ok {
		m = &sync.Mutex{}
		k.locks[key] = m
	}
	k.mu.Unlock()
	m.Lock()
	return m
}
