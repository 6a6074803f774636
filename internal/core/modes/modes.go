// Package modes holds the static study-mode registry.
package modes

import (
	"time"

	"flashdeck-service/internal/domain"
)

// Mode keys accepted by Get.
const (
	Flashcard      = "flashcard"
	MultipleChoice = "multiple_choice"
	TrueFalse      = "true_false"
	Quiz           = "quiz"
	Commit         = "commit"
	Hardcore       = "hardcore"
)

var registry = map[string]domain.StudyMode{
	Flashcard: {
		Key:              Flashcard,
		Name:             "Flashcard Mode",
		Description:      "Traditional flip cards (honor system)",
		VerificationRate: 0.1,
	},
	MultipleChoice: {
		Key:         MultipleChoice,
		Name:        "Multiple Choice",
		Description: "Choose the correct answer from 4 options",
		GameMode:    true,
	},
	TrueFalse: {
		Key:         TrueFalse,
		Name:        "True/False",
		Description: "Determine if the statement is true or false",
		GameMode:    true,
	},
	Quiz: {
		Key:            Quiz,
		Name:           "Quiz Mode",
		Description:    "Type your answer for verification",
		RequiresTyping: true,
	},
	Commit: {
		Key:              Commit,
		Name:             "Commit Mode",
		Description:      "Commit before revealing answer",
		RequiresCommit:   true,
		MinDelay:         3 * time.Second,
		VerificationRate: 0.2,
	},
	Hardcore: {
		Key:              Hardcore,
		Name:             "Hardcore Mode",
		Description:      "All anti-cheat features enabled",
		RequiresTyping:   true,
		RequiresCommit:   true,
		MinDelay:         5 * time.Second,
		VerificationRate: 0.3,
	},
}

// Get returns the configuration for a mode key. Unknown keys fall back to
// the flashcard mode rather than erroring.
func Get(key string) domain.StudyMode {
	if mode, ok := registry[key]; ok {
		return mode
	}
	return registry[Flashcard]
}

// Keys lists the registered mode keys in a stable order.
func Keys() []string {
	return []string{Flashcard, MultipleChoice, TrueFalse, Quiz, Commit, Hardcore}
}
