package redis

import (
	"context"
	"testing"
	"time"

	"flashdeck-service/internal/domain"
	"flashdeck-service/internal/infra/memory"
	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

func TestDeckRepositoryCachesInRedis(t *testing.T) {
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("run miniredis: %v", err)
	}
	defer mr.Close()

	client := newClient(mr)

	loader := &countingLoader{
		DeckLoader: memory.NewDeckStore(map[string][]domain.Card{
			"capitals": sampleCards(),
		}),
	}
	repo := NewDeckRepository(client, loader, time.Minute)

	cards, err := repo.Cards(context.Background(), "capitals")
	if err != nil {
		t.Fatalf("cards: %v", err)
	}
	if len(cards) != 2 {
		t.Fatalf("expected 2 cards, got %d", len(cards))
	}
	if loader.calls != 1 {
		t.Fatalf("expected loader called once, got %d", loader.calls)
	}
	if !mr.Exists("deck:capitals:cards") {
		t.Fatalf("expected cached redis key")
	}

	// Second call should hit cache, loader not incremented.
	_, _ = repo.Cards(context.Background(), "capitals")
	if loader.calls != 1 {
		t.Fatalf("expected cache hit, loader calls=%d", loader.calls)
	}
}

func TestDeckRepositoryInvalidate(t *testing.T) {
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("run miniredis: %v", err)
	}
	defer mr.Close()

	client := newClient(mr)
	loader := &countingLoader{
		DeckLoader: memory.NewDeckStore(map[string][]domain.Card{
			"capitals": sampleCards(),
		}),
	}
	repo := NewDeckRepository(client, loader, time.Minute)

	_, _ = repo.Cards(context.Background(), "capitals")
	repo.Invalidate(context.Background(), "capitals")
	if mr.Exists("deck:capitals:cards") {
		t.Fatalf("expected cache key removed")
	}

	_, _ = repo.Cards(context.Background(), "capitals")
	if loader.calls != 2 {
		t.Fatalf("expected reload after invalidate, loader calls=%d", loader.calls)
	}
}

type countingLoader struct {
	memory.DeckLoader
	calls int
}

func (l *countingLoader) LoadDeck(ctx context.Context, deckName string) ([]domain.Card, error) {
	l.calls++
	return l.DeckLoader.LoadDeck(ctx, deckName)
}

func sampleCards() []domain.Card {
	return []domain.Card{
		{Question: "Capital of France?", Answer: "Paris"},
		{Question: "Capital of Spain?", Answer: "Madrid"},
	}
}

func newClient(mr *miniredis.Miniredis) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr: mr.Addr(),
	})
}
