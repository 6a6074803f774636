package app

import (
	"math/rand"
	"sync"
	"time"

	"flashdeck-service/internal/core/answer"
	"flashdeck-service/internal/core/quizgen"
	"flashdeck-service/internal/core/scoring"
	"flashdeck-service/internal/domain"
)

// Phase is the explicit per-card state of a study session. Transitions are
// driven solely by named session methods; invalid combinations of the old
// boolean flags cannot be expressed.
type Phase int

const (
	// PhaseQuestion shows the question only (or a generated game question).
	PhaseQuestion Phase = iota
	// PhaseCommitted holds after an "I know this" commitment, gated by the mode delay.
	PhaseCommitted
	// PhaseVerifyingCommit shows the answer and awaits the commit self-report.
	PhaseVerifyingCommit
	// PhaseAwaitingAnswer awaits free text for typed or verification-sampled cards.
	PhaseAwaitingAnswer
	// PhaseRevealed shows the answer; the card may or may not be resolved yet.
	PhaseRevealed
)

func (p Phase) String() string {
	switch p {
	case PhaseQuestion:
		return "question"
	case PhaseCommitted:
		return "committed"
	case PhaseVerifyingCommit:
		return "verifying_commit"
	case PhaseAwaitingAnswer:
		return "awaiting_answer"
	case PhaseRevealed:
		return "revealed"
	}
	return "unknown"
}

// Resolution is the record of a single resolved card, handed to the service
// for persistence. Each card produces at most one resolution.
type Resolution struct {
	Card         domain.Card
	Outcome      domain.AnswerOutcome
	ResponseTime float64 // seconds
	Verification bool
}

// Session is the per-user study state machine over one shuffled deck.
// Exactly one session exists per user at a time.
type Session struct {
	mu       sync.Mutex
	username string
	deckName string
	mode     domain.StudyMode
	cards    []domain.Card
	gen      *quizgen.Generator
	rnd      *rand.Rand
	now      func() time.Time

	index        int
	phase        Phase
	showAnswer   bool
	committed    *bool
	verification bool
	cardStart    time.Time
	commitAt     time.Time
	streak       int
	resolved     bool
	lastResult   *domain.AnswerOutcome
	mcq          *domain.MultipleChoiceQuestion
	tfq          *domain.TrueFalseQuestion
}

// SessionOption customizes a session; used by tests to pin randomness and time.
type SessionOption func(*Session)

// WithRand injects the random source used for shuffling, verification draws
// and question generation.
func WithRand(rnd *rand.Rand) SessionOption {
	return func(s *Session) {
		s.rnd = rnd
		s.gen = quizgen.New(rnd)
	}
}

// WithClock injects the session clock for deterministic timestamps.
func WithClock(now func() time.Time) SessionOption {
	return func(s *Session) { s.now = now }
}

// NewSession shuffles a copy of cards and enters the first card. Callers must
// reject empty decks before constructing a session.
func NewSession(username, deckName string, cards []domain.Card, mode domain.StudyMode, opts ...SessionOption) *Session {
	s := &Session{
		username: username,
		deckName: deckName,
		mode:     mode,
		cards:    append([]domain.Card{}, cards...),
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.rnd == nil {
		s.rnd = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	if s.gen == nil {
		s.gen = quizgen.New(s.rnd)
	}

	s.rnd.Shuffle(len(s.cards), func(i, j int) {
		s.cards[i], s.cards[j] = s.cards[j], s.cards[i]
	})
	s.enterCard()
	return s
}

// DeckName returns the deck this session was shuffled from.
func (s *Session) DeckName() string {
	return s.deckName
}

// ModeKey returns the study mode key the session runs under.
func (s *Session) ModeKey() string {
	return s.mode.Key
}

// enterCard resets per-card transients and routes to the starting phase.
// Precedence: commit flow, then typed (required or verification-sampled),
// then game question, then plain flashcard.
func (s *Session) enterCard() {
	s.cardStart = s.now()
	s.showAnswer = false
	s.committed = nil
	s.resolved = false
	s.lastResult = nil
	s.mcq = nil
	s.tfq = nil
	s.verification = s.rnd.Float64() < s.mode.VerificationRate

	switch {
	case s.mode.RequiresCommit:
		s.phase = PhaseQuestion
	case s.mode.RequiresTyping || s.verification:
		s.phase = PhaseAwaitingAnswer
	case s.mode.GameMode:
		s.phase = PhaseQuestion
		card := s.cards[s.index]
		if s.mode.Key == "true_false" {
			q := s.gen.TrueFalse(card)
			s.tfq = &q
		} else {
			q := s.gen.MultipleChoice(card, s.cards)
			s.mcq = &q
		}
	default:
		s.phase = PhaseQuestion
	}
}

// Flip toggles between question and answer in plain flashcard flow.
func (s *Session) Flip() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.mode.RequiresCommit || s.mode.GameMode || s.phase == PhaseAwaitingAnswer {
		return domain.ErrInvalidTransition
	}
	if s.phase != PhaseQuestion && s.phase != PhaseRevealed {
		return domain.ErrInvalidTransition
	}
	s.showAnswer = !s.showAnswer
	if s.showAnswer {
		s.phase = PhaseRevealed
	} else {
		s.phase = PhaseQuestion
	}
	return nil
}

// Commit records the user's "I know this" / "I don't know" declaration.
// Knowing resets the response timer and arms the reveal delay; not knowing
// reveals immediately with no score opportunity beyond recording incorrect.
func (s *Session) Commit(knows bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.mode.RequiresCommit || s.phase != PhaseQuestion || s.committed != nil {
		return domain.ErrInvalidTransition
	}
	s.committed = &knows
	if knows {
		now := s.now()
		s.commitAt = now
		s.cardStart = now
		s.phase = PhaseCommitted
	} else {
		s.showAnswer = true
		s.phase = PhaseVerifyingCommit
	}
	return nil
}

// Reveal shows the answer after a commitment, once the mode's minimum delay
// has elapsed.
func (s *Session) Reveal() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.phase != PhaseCommitted {
		return domain.ErrInvalidTransition
	}
	if s.now().Sub(s.commitAt) < s.mode.MinDelay {
		return domain.ErrRevealTooSoon
	}
	s.showAnswer = true
	s.phase = PhaseVerifyingCommit
	return nil
}

// ResolveCommit applies the user's self-report after a commit reveal. The
// self-report, not the matcher, is ground truth here; a "don't know"
// commitment always records incorrect. Advances to the next card.
func (s *Session) ResolveCommit(wasRight bool) (*Resolution, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.phase != PhaseVerifyingCommit || s.committed == nil {
		return nil, domain.ErrInvalidTransition
	}
	correct := *s.committed && wasRight
	res, err := s.resolve(correct, 0, "")
	if err != nil {
		return nil, err
	}
	s.advance()
	return res, nil
}

// SubmitTyped routes free text through the answer matcher and reveals the
// result. The card stays on screen until Next.
func (s *Session) SubmitTyped(userAnswer string) (*Resolution, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.phase != PhaseAwaitingAnswer {
		return nil, domain.ErrInvalidTransition
	}
	correct, similarity := answer.Check(userAnswer, s.cards[s.index].Answer)
	res, err := s.resolve(correct, similarity, userAnswer)
	if err != nil {
		return nil, err
	}
	s.showAnswer = true
	s.phase = PhaseRevealed
	return res, nil
}

// SubmitChoice answers the generated multiple-choice question.
func (s *Session) SubmitChoice(optionIndex int) (*Resolution, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.phase != PhaseQuestion || s.mcq == nil {
		return nil, domain.ErrInvalidTransition
	}
	if optionIndex < 0 || optionIndex >= len(s.mcq.Options) {
		return nil, domain.ErrValidation
	}
	correct := optionIndex == s.mcq.CorrectIndex
	res, err := s.resolve(correct, 0, s.mcq.Options[optionIndex])
	if err != nil {
		return nil, err
	}
	s.showAnswer = true
	s.phase = PhaseRevealed
	return res, nil
}

// SubmitTrueFalse answers the generated true/false statement.
func (s *Session) SubmitTrueFalse(value bool) (*Resolution, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.phase != PhaseQuestion || s.tfq == nil {
		return nil, domain.ErrInvalidTransition
	}
	correct := value == s.tfq.IsTrue
	res, err := s.resolve(correct, 0, "")
	if err != nil {
		return nil, err
	}
	s.showAnswer = true
	s.phase = PhaseRevealed
	return res, nil
}

// Report applies the honor-system self-report in plain flashcard flow and
// advances to the next card.
func (s *Session) Report(gotIt bool) (*Resolution, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.mode.RequiresCommit || s.mode.GameMode {
		return nil, domain.ErrInvalidTransition
	}
	if s.phase != PhaseRevealed || s.resolved {
		return nil, domain.ErrInvalidTransition
	}
	res, err := s.resolve(gotIt, 0, "")
	if err != nil {
		return nil, err
	}
	s.advance()
	return res, nil
}

// Next moves past a revealed, already-resolved card (typed and game flows).
func (s *Session) Next() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.phase != PhaseRevealed || !s.resolved {
		return domain.ErrInvalidTransition
	}
	s.advance()
	return nil
}

// resolve computes the outcome exactly once per card and updates the session
// streak. The caller persists the returned resolution.
func (s *Session) resolve(correct bool, similarity float64, userAnswer string) (*Resolution, error) {
	if s.resolved {
		return nil, domain.ErrInvalidTransition
	}
	responseTime := s.now().Sub(s.cardStart).Seconds()
	points := scoring.CalculatePoints(correct, s.streak)

	outcome := domain.AnswerOutcome{
		Correct:      correct,
		Similarity:   similarity,
		UserAnswer:   userAnswer,
		Points:       points,
		Verification: s.verification,
	}
	if correct {
		s.streak++
	} else {
		s.streak = 0
	}
	s.resolved = true
	s.lastResult = &outcome

	return &Resolution{
		Card:         s.cards[s.index],
		Outcome:      outcome,
		ResponseTime: responseTime,
		Verification: s.verification,
	}, nil
}

// advance wraps the index (the session is circular) and re-enters PhaseQuestion
// for the next card with fresh transients and a fresh verification draw.
func (s *Session) advance() {
	s.index = (s.index + 1) % len(s.cards)
	s.enterCard()
}

// SessionView is a read-only snapshot safe to serialize to clients. Answers
// to generated questions are never included before resolution.
type SessionView struct {
	Deck         string                `json:"deck"`
	Mode         string                `json:"mode"`
	Index        int                   `json:"index"`
	Total        int                   `json:"total"`
	Phase        string                `json:"phase"`
	Question     string                `json:"question"`
	Answer       string                `json:"answer,omitempty"`
	Streak       int                   `json:"streak"`
	Verification bool                  `json:"verification"`
	Options      []string              `json:"options,omitempty"`
	Statement    string                `json:"statement,omitempty"`
	Committed    *bool                 `json:"committed,omitempty"`
	RevealWait   float64               `json:"revealWait,omitempty"`
	LastResult   *domain.AnswerOutcome `json:"lastResult,omitempty"`
}

// View snapshots the session for transport.
func (s *Session) View() SessionView {
	s.mu.Lock()
	defer s.mu.Unlock()

	card := s.cards[s.index]
	view := SessionView{
		Deck:         s.deckName,
		Mode:         s.mode.Key,
		Index:        s.index,
		Total:        len(s.cards),
		Phase:        s.phase.String(),
		Question:     card.Question,
		Streak:       s.streak,
		Verification: s.verification,
		Committed:    s.committed,
		LastResult:   s.lastResult,
	}
	if s.showAnswer {
		view.Answer = card.Answer
	}
	if s.mcq != nil {
		view.Options = s.mcq.Options
	}
	if s.tfq != nil {
		view.Statement = s.tfq.Statement
	}
	if s.phase == PhaseCommitted {
		remaining := s.mode.MinDelay - s.now().Sub(s.commitAt)
		if remaining > 0 {
			view.RevealWait = remaining.Seconds()
		}
	}
	return view
}

// Streak returns the session-scoped streak counter.
func (s *Session) Streak() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.streak
}

// Index returns the current card position.
func (s *Session) Index() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.index
}
