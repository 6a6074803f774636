package app

import (
	"context"
	"fmt"
	"strings"

	"flashdeck-service/internal/domain"
)

// DeckAdminStore is the mutable side of deck storage, exposed to admins only.
type DeckAdminStore interface {
	DeckRepository
	CreateDeck(ctx context.Context, name string) error
	RenameDeck(ctx context.Context, oldName, newName string) error
	DeleteDeck(ctx context.Context, name string) error
	AddCard(ctx context.Context, deckName string, card domain.Card) error
	EditCard(ctx context.Context, deckName string, index int, card domain.Card) error
	DeleteCard(ctx context.Context, deckName string, index int) error
}

// DeckCache is the read-path cache in front of deck storage. Admin writes go
// to the backing store, so the affected entry must be dropped or study
// sessions keep the stale deck for the rest of the TTL.
type DeckCache interface {
	Invalidate(ctx context.Context, deckName string)
}

// AdminService covers deck authoring and account remediation. Input
// validation failures never reach the stores.
type AdminService struct {
	decks DeckAdminStore
	users UserStore
	cache DeckCache
}

// AdminOption customizes the service.
type AdminOption func(*AdminService)

// WithDeckCache registers the cache to invalidate after deck mutations.
func WithDeckCache(cache DeckCache) AdminOption {
	return func(s *AdminService) { s.cache = cache }
}

func NewAdminService(decks DeckAdminStore, users UserStore, opts ...AdminOption) *AdminService {
	s := &AdminService{decks: decks, users: users}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *AdminService) CreateDeck(ctx context.Context, name string) error {
	if strings.TrimSpace(name) == "" {
		return fmt.Errorf("%w: deck name must not be empty", domain.ErrValidation)
	}
	if err := s.decks.CreateDeck(ctx, name); err != nil {
		return err
	}
	s.invalidate(ctx, name)
	return nil
}

func (s *AdminService) RenameDeck(ctx context.Context, oldName, newName string) error {
	if strings.TrimSpace(newName) == "" {
		return fmt.Errorf("%w: deck name must not be empty", domain.ErrValidation)
	}
	if err := s.decks.RenameDeck(ctx, oldName, newName); err != nil {
		return err
	}
	s.invalidate(ctx, oldName, newName)
	return nil
}

func (s *AdminService) DeleteDeck(ctx context.Context, name string) error {
	if err := s.decks.DeleteDeck(ctx, name); err != nil {
		return err
	}
	s.invalidate(ctx, name)
	return nil
}

func (s *AdminService) AddCard(ctx context.Context, deckName string, card domain.Card) error {
	if err := validateCard(card); err != nil {
		return err
	}
	if err := s.decks.AddCard(ctx, deckName, card); err != nil {
		return err
	}
	s.invalidate(ctx, deckName)
	return nil
}

func (s *AdminService) EditCard(ctx context.Context, deckName string, index int, card domain.Card) error {
	if err := validateCard(card); err != nil {
		return err
	}
	if err := s.decks.EditCard(ctx, deckName, index, card); err != nil {
		return err
	}
	s.invalidate(ctx, deckName)
	return nil
}

func (s *AdminService) DeleteCard(ctx context.Context, deckName string, index int) error {
	if err := s.decks.DeleteCard(ctx, deckName, index); err != nil {
		return err
	}
	s.invalidate(ctx, deckName)
	return nil
}

// invalidate drops cache entries for decks a mutation touched.
func (s *AdminService) invalidate(ctx context.Context, deckNames ...string) {
	if s.cache == nil {
		return
	}
	for _, name := range deckNames {
		s.cache.Invalidate(ctx, name)
	}
}

// ListDecks returns every deck with its cards, for the authoring overview.
func (s *AdminService) ListDecks(ctx context.Context) ([]domain.Deck, error) {
	names, err := s.decks.Names(ctx)
	if err != nil {
		return nil, err
	}
	decks := make([]domain.Deck, 0, len(names))
	for _, name := range names {
		cards, err := s.decks.Cards(ctx, name)
		if err != nil {
			return nil, err
		}
		decks = append(decks, domain.Deck{Name: name, Cards: cards})
	}
	return decks, nil
}

// FindDuplicates lists cards whose normalized question already appears
// earlier in the deck. Cards are addressed by index, so callers should
// delete duplicates back to front.
func (s *AdminService) FindDuplicates(ctx context.Context, deckName string) ([]domain.DuplicateCard, error) {
	cards, err := s.decks.Cards(ctx, deckName)
	if err != nil {
		return nil, err
	}

	seen := map[string]int{}
	var duplicates []domain.DuplicateCard
	for i, card := range cards {
		key := strings.ToLower(strings.TrimSpace(card.Question))
		if first, ok := seen[key]; ok {
			duplicates = append(duplicates, domain.DuplicateCard{
				Index:         i,
				Question:      card.Question,
				Answer:        card.Answer,
				OriginalIndex: first,
			})
			continue
		}
		seen[key] = i
	}
	return duplicates, nil
}

// FlagUser marks an account suspicious. Flagging an already-flagged user is
// a successful no-op.
func (s *AdminService) FlagUser(ctx context.Context, username string) error {
	return s.users.Flag(ctx, username)
}

func (s *AdminService) UnflagUser(ctx context.Context, username string) error {
	return s.users.Unflag(ctx, username)
}

// ResetUserScore zeroes all scoring counters; best streak survives a reset.
func (s *AdminService) ResetUserScore(ctx context.Context, username string) error {
	return s.users.ResetScore(ctx, username)
}

func validateCard(card domain.Card) error {
	if strings.TrimSpace(card.Question) == "" {
		return fmt.Errorf("%w: question must not be empty", domain.ErrValidation)
	}
	if strings.TrimSpace(card.Answer) == "" {
		return fmt.Errorf("%w: answer must not be empty", domain.ErrValidation)
	}
	return nil
}
