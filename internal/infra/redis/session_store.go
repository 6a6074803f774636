package redis

import (
	"context"
	"sync"
	"time"

	"flashdeck-service/internal/app"
	"github.com/redis/go-redis/v9"
)

// SessionStore is a Redis-aware implementation of app.SessionRepository.
// Notes:
//   - Sessions themselves stay in-process; the state machine is driven by a
//     single connection and never shared across instances.
//   - Redis marks session liveness per user, which lets operators see who is
//     mid-study and lets a future projector route cross-instance handoff.
type SessionStore struct {
	client   *redis.Client
	ttl      time.Duration
	mu       sync.RWMutex
	sessions map[string]*app.Session
}

func NewSessionStore(client *redis.Client, ttl time.Duration) *SessionStore {
	return &SessionStore{
		client:   client,
		ttl:      ttl,
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
	// best-effort liveness marker
	_ = s.client.Set(context.Background(), s.key(username), session.DeckName(), s.ttl).Err()
}

func (s *SessionStore) Delete(username string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.sessions[username]; !ok {
		return
	}
	delete(s.sessions, username)
	_ = s.client.Del(context.Background(), s.key(username)).Err()
}

func (s *SessionStore) key(username string) string {
	return "study:session:" + username
}
