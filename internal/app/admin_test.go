package app_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"flashdeck-service/internal/app"
	"flashdeck-service/internal/domain"
	"flashdeck-service/internal/infra/memory"
)

func newAdmin(t *testing.T) (*app.AdminService, *memory.DeckStore, *memory.UserStore) {
	t.Helper()
	decks := memory.NewDeckStore(nil)
	users := memory.NewUserStore()
	return app.NewAdminService(decks, users), decks, users
}

func TestAddCardValidation(t *testing.T) {
	admin, decks, _ := newAdmin(t)
	ctx := context.Background()
	_ = decks.CreateDeck(ctx, "biology")

	err := admin.AddCard(ctx, "biology", domain.Card{Question: "  ", Answer: "x"})
	if !errors.Is(err, domain.ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
	err = admin.AddCard(ctx, "biology", domain.Card{Question: "q", Answer: ""})
	if !errors.Is(err, domain.ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}

	// Rejected input must not reach the store.
	cards, _ := decks.Cards(ctx, "biology")
	if len(cards) != 0 {
		t.Fatalf("invalid card persisted: %+v", cards)
	}

	if err := admin.AddCard(ctx, "biology", domain.Card{Question: "q", Answer: "a"}); err != nil {
		t.Fatalf("valid card rejected: %v", err)
	}
}

func TestCreateDeckValidation(t *testing.T) {
	admin, _, _ := newAdmin(t)
	if err := admin.CreateDeck(context.Background(), "   "); !errors.Is(err, domain.ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestFindDuplicates(t *testing.T) {
	admin, decks, _ := newAdmin(t)
	ctx := context.Background()
	_ = decks.CreateDeck(ctx, "capitals")
	_ = decks.AddCard(ctx, "capitals", domain.Card{Question: "Capital of France?", Answer: "Paris"})
	_ = decks.AddCard(ctx, "capitals", domain.Card{Question: "Capital of Spain?", Answer: "Madrid"})
	_ = decks.AddCard(ctx, "capitals", domain.Card{Question: "  capital of france?  ", Answer: "Paris!"})

	dups, err := admin.FindDuplicates(ctx, "capitals")
	if err != nil {
		t.Fatalf("find duplicates: %v", err)
	}
	if len(dups) != 1 {
		t.Fatalf("expected 1 duplicate, got %+v", dups)
	}
	if dups[0].Index != 2 || dups[0].OriginalIndex != 0 {
		t.Fatalf("duplicate positions: %+v", dups[0])
	}
}

func TestDeckMutationsInvalidateCache(t *testing.T) {
	ctx := context.Background()
	store := memory.NewDeckStore(map[string][]domain.Card{
		"capitals": {{Question: "Capital of France?", Answer: "Paris"}},
	})
	cache := memory.NewDeckRepository(store, time.Hour)
	admin := app.NewAdminService(store, memory.NewUserStore(), app.WithDeckCache(cache))

	// Warm the cache, then write through the admin service.
	if cards, err := cache.Cards(ctx, "capitals"); err != nil || len(cards) != 1 {
		t.Fatalf("warm cache: cards=%v err=%v", cards, err)
	}
	if err := admin.AddCard(ctx, "capitals", domain.Card{Question: "Capital of Japan?", Answer: "Tokyo"}); err != nil {
		t.Fatalf("add card: %v", err)
	}

	cards, err := cache.Cards(ctx, "capitals")
	if err != nil {
		t.Fatalf("reload: %v", err)
	}
	if len(cards) != 2 {
		t.Fatalf("cache served stale deck after admin write: got %d cards, want 2", len(cards))
	}

	// Rename drops both the old and new entries.
	if err := admin.RenameDeck(ctx, "capitals", "world-capitals"); err != nil {
		t.Fatalf("rename: %v", err)
	}
	if _, err := cache.Cards(ctx, "capitals"); !errors.Is(err, domain.ErrDeckNotFound) {
		t.Fatalf("old name still cached after rename: %v", err)
	}
	if cards, err := cache.Cards(ctx, "world-capitals"); err != nil || len(cards) != 2 {
		t.Fatalf("renamed deck: cards=%v err=%v", cards, err)
	}
}

func TestListDecks(t *testing.T) {
	admin, decks, _ := newAdmin(t)
	ctx := context.Background()
	_ = decks.CreateDeck(ctx, "biology")
	_ = decks.CreateDeck(ctx, "capitals")
	_ = decks.AddCard(ctx, "capitals", domain.Card{Question: "Capital of France?", Answer: "Paris"})

	listed, err := admin.ListDecks(ctx)
	if err != nil {
		t.Fatalf("list decks: %v", err)
	}
	if len(listed) != 2 {
		t.Fatalf("expected 2 decks, got %+v", listed)
	}
	if listed[0].Name != "biology" || len(listed[0].Cards) != 0 {
		t.Fatalf("unexpected first deck: %+v", listed[0])
	}
	if listed[1].Name != "capitals" || len(listed[1].Cards) != 1 {
		t.Fatalf("unexpected second deck: %+v", listed[1])
	}
}

func TestFlagUnflagIdempotent(t *testing.T) {
	admin, _, users := newAdmin(t)
	ctx := context.Background()
	_ = users.Create(ctx, domain.UserRecord{Username: "alice"})

	for i := 0; i < 2; i++ {
		if err := admin.FlagUser(ctx, "alice"); err != nil {
			t.Fatalf("flag %d: %v", i, err)
		}
	}
	user, _ := users.Get(ctx, "alice")
	if !user.Flagged {
		t.Fatalf("expected flagged")
	}

	for i := 0; i < 2; i++ {
		if err := admin.UnflagUser(ctx, "alice"); err != nil {
			t.Fatalf("unflag %d: %v", i, err)
		}
	}
	user, _ = users.Get(ctx, "alice")
	if user.Flagged {
		t.Fatalf("expected unflagged")
	}
}
