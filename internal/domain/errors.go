package domain

import "errors"

var (
	// ErrDeckNotFound indicates the named deck does not exist.
	ErrDeckNotFound = errors.New("deck not found")
	// ErrDeckExists is returned when creating a deck whose name is taken.
	ErrDeckExists = errors.New("deck already exists")
	// ErrEmptyDeck is returned when a study session is requested for a deck with no cards.
	ErrEmptyDeck = errors.New("deck has no cards")
	// ErrCardIndexOutOfRange indicates a card index outside the deck's bounds.
	ErrCardIndexOutOfRange = errors.New("card index out of range")
	// ErrUserNotFound indicates the username is not registered.
	ErrUserNotFound = errors.New("user not found")
	// ErrUserExists is returned when registering a taken username.
	ErrUserExists = errors.New("user already exists")
	// ErrInvalidCredentials is returned when authentication fails.
	ErrInvalidCredentials = errors.New("invalid username or password")
	// ErrSessionNotFound is returned when a user acts without an active study session.
	ErrSessionNotFound = errors.New("study session not found")
	// ErrInvalidTransition is returned when an action does not apply to the current phase.
	ErrInvalidTransition = errors.New("action not valid in current phase")
	// ErrRevealTooSoon is returned when reveal is requested before the commit delay elapsed.
	ErrRevealTooSoon = errors.New("minimum delay has not elapsed")
	// ErrValidation covers rejected inputs (empty deck names, questions, answers).
	ErrValidation = errors.New("invalid input")
)
