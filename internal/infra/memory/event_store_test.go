package memory

import (
	"context"
	"fmt"
	"testing"

	"flashdeck-service/internal/domain"
)

func TestEventStoreRecentByUser(t *testing.T) {
	ctx := context.Background()
	store := NewEventStore()

	for i := 0; i < 5; i++ {
		_ = store.Append(ctx, domain.StudyEvent{
			Username:     "alice",
			CardQuestion: fmt.Sprintf("q%d", i),
			ResponseTime: float64(i),
		})
	}
	_ = store.Append(ctx, domain.StudyEvent{Username: "bob", CardQuestion: "other"})

	recent, err := store.RecentByUser(ctx, "alice", 3)
	if err != nil {
		t.Fatalf("recent: %v", err)
	}
	if len(recent) != 3 {
		t.Fatalf("expected 3 events, got %d", len(recent))
	}
	if recent[0].CardQuestion != "q4" {
		t.Fatalf("expected newest first, got %q", recent[0].CardQuestion)
	}
	for _, e := range recent {
		if e.Username != "alice" {
			t.Fatalf("wrong user in result: %+v", e)
		}
		if e.ID == "" {
			t.Fatalf("expected generated event ID")
		}
	}
}
