package domain

import "time"

// Card is a single question/answer pair. Cards carry no stable identifier;
// they are addressed by position within their deck.
type Card struct {
	Question string `json:"question"`
	Answer   string `json:"answer"`
}

// Deck is a named ordered collection of cards.
type Deck struct {
	Name  string `json:"name"`
	Cards []Card `json:"cards"`
}

// StudyMode configures which interaction flow governs a session.
type StudyMode struct {
	Key              string
	Name             string
	Description      string
	RequiresTyping   bool
	RequiresCommit   bool
	MinDelay         time.Duration
	VerificationRate float64
	GameMode         bool
}

// UserRecord is the persisted per-account state.
type UserRecord struct {
	Username           string
	Password           string // scrypt hash, never plaintext
	Admin              bool
	TotalScore         int
	CardsStudied       int
	CorrectAnswers     int
	IncorrectAnswers   int
	CurrentStreak      int
	BestStreak         int
	VerificationPassed int
	VerificationFailed int
	Flagged            bool
	CreatedAt          time.Time
}

// StudyEvent is one append-only log entry per answered card.
type StudyEvent struct {
	ID           string
	Username     string
	DeckName     string
	CardQuestion string
	ResponseTime float64 // seconds
	Correct      bool
	Mode         string
	Timestamp    time.Time
}

// AnswerOutcome reports how a single card was resolved.
type AnswerOutcome struct {
	Correct      bool    `json:"correct"`
	Similarity   float64 `json:"similarity"`
	UserAnswer   string  `json:"userAnswer"`
	Points       int     `json:"points"`
	Verification bool    `json:"verification"`
}

// MultipleChoiceQuestion is a generated four-option question.
type MultipleChoiceQuestion struct {
	Question      string   `json:"question"`
	Options       []string `json:"options"`
	CorrectIndex  int      `json:"-"`
	CorrectAnswer string   `json:"-"`
}

// TrueFalseQuestion is a generated statement the user judges true or false.
type TrueFalseQuestion struct {
	Statement     string `json:"statement"`
	IsTrue        bool   `json:"-"`
	CorrectAnswer string `json:"-"`
}

// LeaderboardEntry is a ranked view of an unflagged user.
type LeaderboardEntry struct {
	Username   string `json:"username"`
	TotalScore int    `json:"totalScore"`
	BestStreak int    `json:"bestStreak"`
}

// Severity grades a suspicion report.
type Severity string

const (
	SeverityMedium Severity = "medium"
	SeverityHigh   Severity = "high"
)

// SuspicionReport is one advisory anti-cheat finding. It never carries
// any enforcement semantics.
type SuspicionReport struct {
	Username string   `json:"username"`
	Reason   string   `json:"reason"`
	Severity Severity `json:"severity"`
}

// DuplicateCard points at a card whose normalized question already
// appears earlier in the same deck.
type DuplicateCard struct {
	Index         int    `json:"index"`
	Question      string `json:"question"`
	Answer        string `json:"answer"`
	OriginalIndex int    `json:"originalIndex"`
}
