package memory

import (
	"context"
	"testing"

	"flashdeck-service/internal/domain"
)

func TestApplyAnswerStreaks(t *testing.T) {
	ctx := context.Background()
	store := NewUserStore()
	if err := store.Create(ctx, domain.UserRecord{Username: "alice"}); err != nil {
		t.Fatalf("create: %v", err)
	}

	for i := 0; i < 3; i++ {
		if err := store.ApplyAnswer(ctx, "alice", 10, true, false); err != nil {
			t.Fatalf("apply: %v", err)
		}
	}
	user, _ := store.Get(ctx, "alice")
	if user.CurrentStreak != 3 || user.BestStreak != 3 {
		t.Fatalf("streaks = %d/%d, want 3/3", user.CurrentStreak, user.BestStreak)
	}

	if err := store.ApplyAnswer(ctx, "alice", -3, false, false); err != nil {
		t.Fatalf("apply wrong: %v", err)
	}
	user, _ = store.Get(ctx, "alice")
	if user.CurrentStreak != 0 {
		t.Fatalf("streak after wrong answer = %d, want 0", user.CurrentStreak)
	}
	if user.BestStreak != 3 {
		t.Fatalf("best streak must survive resets, got %d", user.BestStreak)
	}
	if user.TotalScore != 27 {
		t.Fatalf("total score = %d, want 27", user.TotalScore)
	}
	if user.CardsStudied != 4 || user.CorrectAnswers != 3 || user.IncorrectAnswers != 1 {
		t.Fatalf("counters = %d/%d/%d", user.CardsStudied, user.CorrectAnswers, user.IncorrectAnswers)
	}
}

func TestApplyAnswerVerifiedCounters(t *testing.T) {
	ctx := context.Background()
	store := NewUserStore()
	_ = store.Create(ctx, domain.UserRecord{Username: "alice"})

	_ = store.ApplyAnswer(ctx, "alice", 10, true, true)
	_ = store.ApplyAnswer(ctx, "alice", -3, false, true)
	_ = store.ApplyAnswer(ctx, "alice", 10, true, false)

	user, _ := store.Get(ctx, "alice")
	if user.VerificationPassed != 1 || user.VerificationFailed != 1 {
		t.Fatalf("verification counters = %d/%d, want 1/1", user.VerificationPassed, user.VerificationFailed)
	}
}

func TestLeaderboardExcludesFlagged(t *testing.T) {
	ctx := context.Background()
	store := NewUserStore()
	_ = store.Create(ctx, domain.UserRecord{Username: "alice", TotalScore: 50})
	_ = store.Create(ctx, domain.UserRecord{Username: "bob", TotalScore: 10})
	_ = store.Create(ctx, domain.UserRecord{Username: "carol", TotalScore: 90, Flagged: true})

	entries, err := store.Leaderboard(ctx, 10)
	if err != nil {
		t.Fatalf("leaderboard: %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("expected flagged user excluded, got %d entries", len(entries))
	}
	if entries[0].Username != "alice" || entries[1].Username != "bob" {
		t.Fatalf("wrong order: %+v", entries)
	}
}

func TestAdminOpsIdempotent(t *testing.T) {
	ctx := context.Background()
	store := NewUserStore()
	_ = store.Create(ctx, domain.UserRecord{Username: "alice", TotalScore: 40, BestStreak: 5})

	if err := store.Flag(ctx, "alice"); err != nil {
		t.Fatalf("flag: %v", err)
	}
	if err := store.Flag(ctx, "alice"); err != nil {
		t.Fatalf("flag twice: %v", err)
	}
	user, _ := store.Get(ctx, "alice")
	if !user.Flagged {
		t.Fatalf("expected flagged")
	}

	if err := store.ResetScore(ctx, "alice"); err != nil {
		t.Fatalf("reset: %v", err)
	}
	if err := store.ResetScore(ctx, "alice"); err != nil {
		t.Fatalf("reset twice: %v", err)
	}
	user, _ = store.Get(ctx, "alice")
	if user.TotalScore != 0 || user.CurrentStreak != 0 {
		t.Fatalf("expected zeroed score, got %+v", user)
	}
	if user.BestStreak != 5 {
		t.Fatalf("best streak should survive reset, got %d", user.BestStreak)
	}
}

func TestCreateDuplicateUser(t *testing.T) {
	ctx := context.Background()
	store := NewUserStore()
	_ = store.Create(ctx, domain.UserRecord{Username: "alice"})
	if err := store.Create(ctx, domain.UserRecord{Username: "alice"}); err != domain.ErrUserExists {
		t.Fatalf("expected ErrUserExists, got %v", err)
	}
}
