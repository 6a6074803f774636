package redis

import (
	"testing"
	"time"

	"flashdeck-service/internal/app"
	"flashdeck-service/internal/domain"
	miniredis "github.com/alicebob/miniredis/v2"
)

func TestSessionStoreSetsAndClearsKeys(t *testing.T) {
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("run miniredis: %v", err)
	}
	defer mr.Close()

	client := newClient(mr)
	store := NewSessionStore(client, time.Minute)

	session := app.NewSession("alice", "capitals", sampleCards(), domain.StudyMode{Key: "flashcard"})
	store.Put("alice", session)
	if !mr.Exists("study:session:alice") {
		t.Fatalf("expected redis liveness key to be set")
	}
	if got, ok := store.Get("alice"); !ok || got != session {
		t.Fatalf("expected stored session back")
	}

	store.Delete("alice")
	if mr.Exists("study:session:alice") {
		t.Fatalf("expected redis key to be removed")
	}
	if _, ok := store.Get("alice"); ok {
		t.Fatalf("expected session removed")
	}
}
