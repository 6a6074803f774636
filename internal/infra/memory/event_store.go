package memory

import (
	"context"
	"sync"
	"time"

	"flashdeck-service/internal/domain"
	"github.com/google/uuid"
)

// EventStore is the in-memory append-only study log.
type EventStore struct {
	mu     sync.RWMutex
	events []domain.StudyEvent
}

func NewEventStore() *EventStore {
	return &EventStore{}
}

func (s *EventStore) Append(_ context.Context, event domain.StudyEvent) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if event.ID == "" {
		event.ID = uuid.NewString()
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now()
	}
	s.events = append(s.events, event)
	return nil
}

// RecentByUser returns the user's most recent events, newest first.
func (s *EventStore) RecentByUser(_ context.Context, username string, limit int) ([]domain.StudyEvent, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var recent []domain.StudyEvent
	for i := len(s.events) - 1; i >= 0 && (limit <= 0 || len(recent) < limit); i-- {
		if s.events[i].Username == username {
			recent = append(recent, s.events[i])
		}
	}
	return recent, nil
}
