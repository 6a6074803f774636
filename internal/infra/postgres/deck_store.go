package postgres

import (
	"context"
	"encoding/json"
	"fmt"

	"flashdeck-service/internal/domain"
	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"
)

// DeckStore persists decks as JSONB card arrays keyed by deck name.
type DeckStore struct {
	pool *pgxpool.Pool
}

func NewDeckStore(pool *pgxpool.Pool) *DeckStore {
	return &DeckStore{pool: pool}
}

func (s *DeckStore) Cards(ctx context.Context, deckName string) ([]domain.Card, error) {
	var raw []byte
	err := s.pool.QueryRow(ctx, `SELECT cards FROM decks WHERE name=$1`, deckName).Scan(&raw)
	if err == pgx.ErrNoRows {
		return nil, domain.ErrDeckNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("load deck: %w", err)
	}
	var cards []domain.Card
	if err := json.Unmarshal(raw, &cards); err != nil {
		return nil, fmt.Errorf("unmarshal deck: %w", err)
	}
	return cards, nil
}

func (s *DeckStore) Names(ctx context.Context) ([]string, error) {
	rows, err := s.pool.Query(ctx, `SELECT name FROM decks ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("list decks: %w", err)
	}
	defer rows.Close()

	var names []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("scan deck name: %w", err)
		}
		names = append(names, name)
	}
	return names, rows.Err()
}

// LoadDeck and DeckNames satisfy the cache layers' DeckLoader.
func (s *DeckStore) LoadDeck(ctx context.Context, deckName string) ([]domain.Card, error) {
	return s.Cards(ctx, deckName)
}

func (s *DeckStore) DeckNames(ctx context.Context) ([]string, error) {
	return s.Names(ctx)
}

func (s *DeckStore) CreateDeck(ctx context.Context, name string) error {
	tag, err := s.pool.Exec(ctx,
		`INSERT INTO decks (name, cards) VALUES ($1, '[]'::jsonb) ON CONFLICT (name) DO NOTHING`, name)
	if err != nil {
		return fmt.Errorf("create deck: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrDeckExists
	}
	return nil
}

func (s *DeckStore) RenameDeck(ctx context.Context, oldName, newName string) error {
	tag, err := s.pool.Exec(ctx, `UPDATE decks SET name=$2 WHERE name=$1`, oldName, newName)
	if err != nil {
		return fmt.Errorf("rename deck: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrDeckNotFound
	}
	return nil
}

func (s *DeckStore) DeleteDeck(ctx context.Context, name string) error {
	tag, err := s.pool.Exec(ctx, `DELETE FROM decks WHERE name=$1`, name)
	if err != nil {
		return fmt.Errorf("delete deck: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrDeckNotFound
	}
	return nil
}

func (s *DeckStore) AddCard(ctx context.Context, deckName string, card domain.Card) error {
	encoded, err := json.Marshal([]domain.Card{card})
	if err != nil {
		return fmt.Errorf("marshal card: %w", err)
	}
	tag, err := s.pool.Exec(ctx,
		`UPDATE decks SET cards = cards || $2::jsonb WHERE name=$1`, deckName, encoded)
	if err != nil {
		return fmt.Errorf("add card: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrDeckNotFound
	}
	return nil
}

// EditCard and DeleteCard address cards by position, so they rewrite the
// whole array. Concurrent edits to the same deck can race; deck authoring
// is a low-volume admin path.
func (s *DeckStore) EditCard(ctx context.Context, deckName string, index int, card domain.Card) error {
	return s.rewrite(ctx, deckName, func(cards []domain.Card) ([]domain.Card, error) {
		if index < 0 || index >= len(cards) {
			return nil, domain.ErrCardIndexOutOfRange
		}
		cards[index] = card
		return cards, nil
	})
}

func (s *DeckStore) DeleteCard(ctx context.Context, deckName string, index int) error {
	return s.rewrite(ctx, deckName, func(cards []domain.Card) ([]domain.Card, error) {
		if index < 0 || index >= len(cards) {
			return nil, domain.ErrCardIndexOutOfRange
		}
		return append(cards[:index], cards[index+1:]...), nil
	})
}

func (s *DeckStore) rewrite(ctx context.Context, deckName string, mutate func([]domain.Card) ([]domain.Card, error)) error {
	cards, err := s.Cards(ctx, deckName)
	if err != nil {
		return err
	}
	cards, err = mutate(cards)
	if err != nil {
		return err
	}
	encoded, err := json.Marshal(cards)
	if err != nil {
		return fmt.Errorf("marshal deck: %w", err)
	}
	if _, err := s.pool.Exec(ctx, `UPDATE decks SET cards=$2::jsonb WHERE name=$1`, deckName, encoded); err != nil {
		return fmt.Errorf("update deck: %w", err)
	}
	return nil
}
