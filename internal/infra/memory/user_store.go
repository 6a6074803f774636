package memory

import (
	"context"
	"sort"
	"sync"

	"flashdeck-service/internal/domain"
)

// UserStore is the in-memory implementation of app.UserStore. Mutations mirror
// the field-level increment semantics of the postgres store.
type UserStore struct {
	mu    sync.RWMutex
	users map[string]*domain.UserRecord
}

func NewUserStore() *UserStore {
	return &UserStore{users: make(map[string]*domain.UserRecord)}
}

func (s *UserStore) Get(_ context.Context, username string) (domain.UserRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	user, ok := s.users[username]
	if !ok {
		return domain.UserRecord{}, domain.ErrUserNotFound
	}
	return *user, nil
}

func (s *UserStore) Create(_ context.Context, user domain.UserRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.users[user.Username]; ok {
		return domain.ErrUserExists
	}
	record := user
	s.users[user.Username] = &record
	return nil
}

func (s *UserStore) ApplyAnswer(_ context.Context, username string, points int, correct, verified bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	user, ok := s.users[username]
	if !ok {
		return domain.ErrUserNotFound
	}

	user.TotalScore += points
	user.CardsStudied++
	if correct {
		user.CorrectAnswers++
		user.CurrentStreak++
		if user.CurrentStreak > user.BestStreak {
			user.BestStreak = user.CurrentStreak
		}
	} else {
		user.IncorrectAnswers++
		user.CurrentStreak = 0
	}
	if verified {
		if correct {
			user.VerificationPassed++
		} else {
			user.VerificationFailed++
		}
	}
	return nil
}

func (s *UserStore) Flag(_ context.Context, username string) error {
	return s.setFlag(username, true)
}

func (s *UserStore) Unflag(_ context.Context, username string) error {
	return s.setFlag(username, false)
}

func (s *UserStore) setFlag(username string, flagged bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	user, ok := s.users[username]
	if !ok {
		return domain.ErrUserNotFound
	}
	user.Flagged = flagged
	return nil
}

// ResetScore zeroes all scoring counters. Resetting an already-zero score
// is a successful no-op. Best streak is preserved.
func (s *UserStore) ResetScore(_ context.Context, username string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	user, ok := s.users[username]
	if !ok {
		return domain.ErrUserNotFound
	}
	user.TotalScore = 0
	user.CardsStudied = 0
	user.CorrectAnswers = 0
	user.IncorrectAnswers = 0
	user.CurrentStreak = 0
	user.VerificationPassed = 0
	user.VerificationFailed = 0
	return nil
}

func (s *UserStore) Leaderboard(_ context.Context, limit int) ([]domain.LeaderboardEntry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	entries := make([]domain.LeaderboardEntry, 0, len(s.users))
	for _, user := range s.users {
		if user.Flagged {
			continue
		}
		entries = append(entries, domain.LeaderboardEntry{
			Username:   user.Username,
			TotalScore: user.TotalScore,
			BestStreak: user.BestStreak,
		})
	}
	sort.Slice(entries, func(i, j int) bool {
		if entries[i].TotalScore != entries[j].TotalScore {
			return entries[i].TotalScore > entries[j].TotalScore
		}
		return entries[i].Username < entries[j].Username
	})
	if limit > 0 && len(entries) > limit {
		entries = entries[:limit]
	}
	return entries, nil
}

func (s *UserStore) All(_ context.Context) ([]domain.UserRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	users := make([]domain.UserRecord, 0, len(s.users))
	for _, user := range s.users {
		users = append(users, *user)
	}
	sort.Slice(users, func(i, j int) bool { return users[i].Username < users[j].Username })
	return users, nil
}
