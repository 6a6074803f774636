package http

import (
	"context"
	"math/rand"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"flashdeck-service/internal/app"
	"flashdeck-service/internal/auth"
	"flashdeck-service/internal/domain"
	"flashdeck-service/internal/infra/memory"
	"github.com/gorilla/websocket"
)

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()

	users := memory.NewUserStore()
	authService := auth.NewService(users)
	if err := authService.CreateUser(context.Background(), "alice", "secret", false); err != nil {
		t.Fatalf("create user: %v", err)
	}

	decks := memory.NewDeckRepository(memory.NewDeckStore(sampleDecks()), time.Minute)
	// Seed 1 keeps the flashcard verification draw out of the sampled branch.
	service := app.NewStudyService(memory.NewSessionStore(), decks, users, memory.NewEventStore(),
		app.WithServiceRand(rand.New(rand.NewSource(1))))

	wsHandler := NewWSHandler(service, authService)
	mux := http.NewServeMux()
	mux.HandleFunc("/study", wsHandler.ServeStudy)
	return httptest.NewServer(mux)
}

func TestWebSocketFlashcardFlow(t *testing.T) {
	server := newTestServer(t)
	defer server.Close()

	u := "ws" + server.URL[len("http"):] + "/study?username=alice&password=secret&deck=capitals&mode=flashcard"
	conn, _, err := websocket.DefaultDialer.Dial(u, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer conn.Close()

	// First frame presents the current card.
	_, payload := readNext(conn, t, "card")
	if payload["phase"] != "question" {
		t.Fatalf("expected question phase, got %v", payload["phase"])
	}
	if payload["answer"] != nil {
		t.Fatalf("answer leaked before flip: %v", payload["answer"])
	}

	if err := conn.WriteJSON(map[string]any{"type": "flip"}); err != nil {
		t.Fatalf("write flip: %v", err)
	}
	_, payload = readNext(conn, t, "card")
	if payload["answer"] == nil {
		t.Fatalf("expected answer after flip")
	}

	if err := conn.WriteJSON(map[string]any{
		"type":    "report",
		"payload": map[string]any{"gotIt": true},
	}); err != nil {
		t.Fatalf("write report: %v", err)
	}
	_, payload = readNext(conn, t, "result")
	outcome, ok := payload["outcome"].(map[string]any)
	if !ok {
		t.Fatalf("expected outcome in result payload, got %v", payload)
	}
	if outcome["correct"] != true {
		t.Fatalf("expected correct outcome, got %v", outcome)
	}
	if outcome["points"].(float64) != 10 {
		t.Fatalf("expected 10 points, got %v", outcome["points"])
	}
}

func TestWebSocketLeaderboardRequest(t *testing.T) {
	server := newTestServer(t)
	defer server.Close()

	u := "ws" + server.URL[len("http"):] + "/study?username=alice&password=secret&deck=capitals&mode=flashcard"
	conn, _, err := websocket.DefaultDialer.Dial(u, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer conn.Close()
	readNext(conn, t, "card")

	if err := conn.WriteJSON(map[string]any{"type": "leaderboard"}); err != nil {
		t.Fatalf("write leaderboard: %v", err)
	}

	var msg struct {
		Type    string                    `json:"type"`
		Payload []domain.LeaderboardEntry `json:"payload"`
	}
	_ = conn.SetReadDeadline(time.Now().Add(5 * time.Second))
	if err := conn.ReadJSON(&msg); err != nil {
		t.Fatalf("read json: %v", err)
	}
	if msg.Type != "leaderboard" {
		t.Fatalf("expected leaderboard frame, got %s", msg.Type)
	}
	if len(msg.Payload) != 1 || msg.Payload[0].Username != "alice" {
		t.Fatalf("expected alice on leaderboard, got %+v", msg.Payload)
	}
}

func TestWebSocketRejectsBadCredentials(t *testing.T) {
	server := newTestServer(t)
	defer server.Close()

	u := "ws" + server.URL[len("http"):] + "/study?username=alice&password=wrong&deck=capitals&mode=flashcard"
	_, resp, err := websocket.DefaultDialer.Dial(u, nil)
	if err == nil {
		t.Fatalf("expected dial to fail with bad credentials")
	}
	if resp == nil || resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("expected 401 response, got %+v", resp)
	}
}

func TestWebSocketBadChoiceIndexSurfacesValidationError(t *testing.T) {
	server := newTestServer(t)
	defer server.Close()

	u := "ws" + server.URL[len("http"):] + "/study?username=alice&password=secret&deck=capitals&mode=multiple_choice"
	conn, _, err := websocket.DefaultDialer.Dial(u, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer conn.Close()
	readNext(conn, t, "card")

	if err := conn.WriteJSON(map[string]any{
		"type":    "choice",
		"payload": map[string]any{"index": 99},
	}); err != nil {
		t.Fatalf("write choice: %v", err)
	}
	_, payload := readNext(conn, t, "error")
	if payload["message"] != domain.ErrValidation.Error() {
		t.Fatalf("out-of-range choice should surface as a client error, got %v", payload["message"])
	}
}

func TestWebSocketUnknownDeckReportsError(t *testing.T) {
	server := newTestServer(t)
	defer server.Close()

	u := "ws" + server.URL[len("http"):] + "/study?username=alice&password=secret&deck=nope&mode=flashcard"
	conn, _, err := websocket.DefaultDialer.Dial(u, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer conn.Close()

	_, payload := readNext(conn, t, "error")
	if payload["message"] == "" {
		t.Fatalf("expected error message")
	}
}

func readNext(conn *websocket.Conn, t *testing.T, expect string) (string, map[string]any) {
	t.Helper()
	var msg struct {
		Type    string         `json:"type"`
		Payload map[string]any `json:"payload"`
	}
	_ = conn.SetReadDeadline(time.Now().Add(5 * time.Second))
	if err := conn.ReadJSON(&msg); err != nil {
		t.Fatalf("read json: %v", err)
	}
	if expect != "" && msg.Type != expect {
		t.Fatalf("expected type %s, got %s", expect, msg.Type)
	}
	return msg.Type, msg.Payload
}

func sampleDecks() map[string][]domain.Card {
	return map[string][]domain.Card{
		"capitals": {
			{Question: "Capital of France?", Answer: "Paris"},
		},
	}
}
