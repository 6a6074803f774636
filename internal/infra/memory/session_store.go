package memory

import (
	"sync"

	"flashdeck-service/internal/app"
)

// SessionStore is the in-memory implementation of app.SessionRepository.
// One session per username.
type SessionStore struct {
	mu       sync.RWMutex
	sessions map[string]*app.Session
}

func NewSessionStore() *SessionStore {
	return &SessionStore{
		sessions: make(map[string]*app.Session),
	}
}

func (s *SessionStore) Get(username string) (*app.Session, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	session, ok := s.sessions[username]
	return session, ok
}

func (s *SessionStore) Put(username string, session *app.Session) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions[username] = session
}

func (s *SessionStore) Delete(username string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, username)
}
