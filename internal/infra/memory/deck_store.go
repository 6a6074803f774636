package memory

import (
	"context"
	"sort"
	"sync"

	"flashdeck-service/internal/domain"
)

// DeckStore is a mutable in-memory deck store. It backs the server when no
// postgres is configured and doubles as a DeckLoader for the cache layers.
type DeckStore struct {
	mu    sync.RWMutex
	decks map[string][]domain.Card
}

func NewDeckStore(seed map[string][]domain.Card) *DeckStore {
	decks := make(map[string][]domain.Card, len(seed))
	for name, cards := range seed {
		decks[name] = append([]domain.Card{}, cards...)
	}
	return &DeckStore{decks: decks}
}

func (s *DeckStore) Cards(_ context.Context, deckName string) ([]domain.Card, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	cards, ok := s.decks[deckName]
	if !ok {
		return nil, domain.ErrDeckNotFound
	}
	return append([]domain.Card{}, cards...), nil
}

func (s *DeckStore) Names(_ context.Context) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	names := make([]string, 0, len(s.decks))
	for name := range s.decks {
		names = append(names, name)
	}
	sort.Strings(names)
	return names, nil
}

// LoadDeck and DeckNames satisfy DeckLoader for the caching repositories.
func (s *DeckStore) LoadDeck(ctx context.Context, deckName string) ([]domain.Card, error) {
	return s.Cards(ctx, deckName)
}

func (s *DeckStore) DeckNames(ctx context.Context) ([]string, error) {
	return s.Names(ctx)
}

func (s *DeckStore) CreateDeck(_ context.Context, name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.decks[name]; ok {
		return domain.ErrDeckExists
	}
	s.decks[name] = []domain.Card{}
	return nil
}

func (s *DeckStore) RenameDeck(_ context.Context, oldName, newName string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cards, ok := s.decks[oldName]
	if !ok {
		return domain.ErrDeckNotFound
	}
	if _, taken := s.decks[newName]; taken {
		return domain.ErrDeckExists
	}
	delete(s.decks, oldName)
	s.decks[newName] = cards
	return nil
}

func (s *DeckStore) DeleteDeck(_ context.Context, name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.decks[name]; !ok {
		return domain.ErrDeckNotFound
	}
	delete(s.decks, name)
	return nil
}

func (s *DeckStore) AddCard(_ context.Context, deckName string, card domain.Card) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cards, ok := s.decks[deckName]
	if !ok {
		return domain.ErrDeckNotFound
	}
	s.decks[deckName] = append(cards, card)
	return nil
}

func (s *DeckStore) EditCard(_ context.Context, deckName string, index int, card domain.Card) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cards, ok := s.decks[deckName]
	if !ok {
		return domain.ErrDeckNotFound
	}
	if index < 0 || index >= len(cards) {
		return domain.ErrCardIndexOutOfRange
	}
	cards[index] = card
	return nil
}

func (s *DeckStore) DeleteCard(_ context.Context, deckName string, index int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cards, ok := s.decks[deckName]
	if !ok {
		return domain.ErrDeckNotFound
	}
	if index < 0 || index >= len(cards) {
		return domain.ErrCardIndexOutOfRange
	}
	s.decks[deckName] = append(cards[:index], cards[index+1:]...)
	return nil
}
