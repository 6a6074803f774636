package app

import (
	"context"
	"math/rand"
	"time"

	"flashdeck-service/internal/core/modes"
	"flashdeck-service/internal/domain"
)

// UserStore persists per-account records. ApplyAnswer must issue field-level
// increments, not whole-record writes, so concurrent sessions for the same
// account cannot lose updates.
type UserStore interface {
	Get(ctx context.Context, username string) (domain.UserRecord, error)
	Create(ctx context.Context, user domain.UserRecord) error
	ApplyAnswer(ctx context.Context, username string, points int, correct, verified bool) error
	Flag(ctx context.Context, username string) error
	Unflag(ctx context.Context, username string) error
	ResetScore(ctx context.Context, username string) error
	Leaderboard(ctx context.Context, limit int) ([]domain.LeaderboardEntry, error)
	All(ctx context.Context) ([]domain.UserRecord, error)
}

// EventStore is the append-only study log.
type EventStore interface {
	Append(ctx context.Context, event domain.StudyEvent) error
	RecentByUser(ctx context.Context, username string, limit int) ([]domain.StudyEvent, error)
}

// DeckRepository reads deck content (possibly through a cache).
type DeckRepository interface {
	Cards(ctx context.Context, deckName string) ([]domain.Card, error)
	Names(ctx context.Context) ([]string, error)
}

// SessionRepository tracks the single active session per user.
type SessionRepository interface {
	Get(username string) (*Session, bool)
	Put(username string, session *Session)
	Delete(username string)
}

// StudyService drives study sessions and persists their outcomes.
type StudyService struct {
	sessions SessionRepository
	decks    DeckRepository
	users    UserStore
	events   EventStore
	rnd      *rand.Rand
	now      func() time.Time
}

// StudyOption customizes the service; used by tests for determinism.
type StudyOption func(*StudyService)

// WithServiceRand injects the random source handed to new sessions.
func WithServiceRand(rnd *rand.Rand) StudyOption {
	return func(s *StudyService) { s.rnd = rnd }
}

// WithServiceClock injects the clock handed to new sessions.
func WithServiceClock(now func() time.Time) StudyOption {
	return func(s *StudyService) { s.now = now }
}

func NewStudyService(sessions SessionRepository, decks DeckRepository, users UserStore, events EventStore, opts ...StudyOption) *StudyService {
	s := &StudyService{
		sessions: sessions,
		decks:    decks,
		users:    users,
		events:   events,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Start begins (or resumes) a study session. A session survives re-entry with
// the same deck and mode; switching either discards it and reshuffles fresh.
// Persisted user stats are untouched by a switch. An empty deck short-circuits
// before any session state exists.
func (s *StudyService) Start(ctx context.Context, username, deckName, modeKey string) (SessionView, error) {
	mode := modes.Get(modeKey)

	if existing, ok := s.sessions.Get(username); ok {
		if existing.DeckName() == deckName && existing.ModeKey() == mode.Key {
			return existing.View(), nil
		}
		s.sessions.Delete(username)
	}

	cards, err := s.decks.Cards(ctx, deckName)
	if err != nil {
		return SessionView{}, err
	}
	if len(cards) == 0 {
		return SessionView{}, domain.ErrEmptyDeck
	}

	opts := []SessionOption{WithClock(s.now)}
	if s.rnd != nil {
		opts = append(opts, WithRand(s.rnd))
	}
	session := NewSession(username, deckName, cards, mode, opts...)
	s.sessions.Put(username, session)
	return session.View(), nil
}

// End discards the user's active session, if any.
func (s *StudyService) End(username string) {
	s.sessions.Delete(username)
}

// Flip toggles question/answer in plain flashcard flow.
func (s *StudyService) Flip(username string) (SessionView, error) {
	session, ok := s.sessions.Get(username)
	if !ok {
		return SessionView{}, domain.ErrSessionNotFound
	}
	if err := session.Flip(); err != nil {
		return SessionView{}, err
	}
	return session.View(), nil
}

// Commit records the pre-reveal knowledge declaration in commit modes.
func (s *StudyService) Commit(username string, knows bool) (SessionView, error) {
	session, ok := s.sessions.Get(username)
	if !ok {
		return SessionView{}, domain.ErrSessionNotFound
	}
	if err := session.Commit(knows); err != nil {
		return SessionView{}, err
	}
	return session.View(), nil
}

// Reveal shows the answer after the commit delay has elapsed.
func (s *StudyService) Reveal(username string) (SessionView, error) {
	session, ok := s.sessions.Get(username)
	if !ok {
		return SessionView{}, domain.ErrSessionNotFound
	}
	if err := session.Reveal(); err != nil {
		return SessionView{}, err
	}
	return session.View(), nil
}

// ResolveCommit applies the commit self-report and persists the outcome.
func (s *StudyService) ResolveCommit(ctx context.Context, username string, wasRight bool) (SessionView, *domain.AnswerOutcome, error) {
	return s.resolveWith(ctx, username, func(session *Session) (*Resolution, error) {
		return session.ResolveCommit(wasRight)
	})
}

// SubmitTyped checks free text against the card and persists the outcome.
func (s *StudyService) SubmitTyped(ctx context.Context, username, text string) (SessionView, *domain.AnswerOutcome, error) {
	return s.resolveWith(ctx, username, func(session *Session) (*Resolution, error) {
		return session.SubmitTyped(text)
	})
}

// SubmitChoice answers the generated multiple-choice question.
func (s *StudyService) SubmitChoice(ctx context.Context, username string, optionIndex int) (SessionView, *domain.AnswerOutcome, error) {
	return s.resolveWith(ctx, username, func(session *Session) (*Resolution, error) {
		return session.SubmitChoice(optionIndex)
	})
}

// SubmitTrueFalse answers the generated statement.
func (s *StudyService) SubmitTrueFalse(ctx context.Context, username string, value bool) (SessionView, *domain.AnswerOutcome, error) {
	return s.resolveWith(ctx, username, func(session *Session) (*Resolution, error) {
		return session.SubmitTrueFalse(value)
	})
}

// Report applies the honor-system self-report in flashcard flow.
func (s *StudyService) Report(ctx context.Context, username string, gotIt bool) (SessionView, *domain.AnswerOutcome, error) {
	return s.resolveWith(ctx, username, func(session *Session) (*Resolution, error) {
		return session.Report(gotIt)
	})
}

// Next moves past a revealed, resolved card.
func (s *StudyService) Next(username string) (SessionView, error) {
	session, ok := s.sessions.Get(username)
	if !ok {
		return SessionView{}, domain.ErrSessionNotFound
	}
	if err := session.Next(); err != nil {
		return SessionView{}, err
	}
	return session.View(), nil
}

// Leaderboard returns the top unflagged users by total score.
func (s *StudyService) Leaderboard(ctx context.Context, limit int) ([]domain.LeaderboardEntry, error) {
	return s.users.Leaderboard(ctx, limit)
}

// Decks lists the available deck names.
func (s *StudyService) Decks(ctx context.Context) ([]string, error) {
	return s.decks.Names(ctx)
}

func (s *StudyService) resolveWith(ctx context.Context, username string, fn func(*Session) (*Resolution, error)) (SessionView, *domain.AnswerOutcome, error) {
	session, ok := s.sessions.Get(username)
	if !ok {
		return SessionView{}, nil, domain.ErrSessionNotFound
	}
	res, err := fn(session)
	if err != nil {
		return SessionView{}, nil, err
	}
	if err := s.persist(ctx, username, session, res); err != nil {
		return SessionView{}, nil, err
	}
	return session.View(), &res.Outcome, nil
}

// persist writes the study event and applies the score delta. Effects are
// at-most-once: a storage failure aborts the request without retry, and the
// session never re-resolves the same card.
func (s *StudyService) persist(ctx context.Context, username string, session *Session, res *Resolution) error {
	event := domain.StudyEvent{
		Username:     username,
		DeckName:     session.DeckName(),
		CardQuestion: res.Card.Question,
		ResponseTime: res.ResponseTime,
		Correct:      res.Outcome.Correct,
		Mode:         session.ModeKey(),
		Timestamp:    s.now(),
	}
	if err := s.events.Append(ctx, event); err != nil {
		return err
	}
	return s.users.ApplyAnswer(ctx, username, res.Outcome.Points, res.Outcome.Correct, res.Verification)
}
