package http

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"flashdeck-service/internal/app"
	"flashdeck-service/internal/auth"
	"flashdeck-service/internal/domain"
	"github.com/gorilla/websocket"
)

type WSHandler struct {
	service  *app.StudyService
	auth     *auth.Service
	upgrader websocket.Upgrader
}

func NewWSHandler(service *app.StudyService, authService *auth.Service) *WSHandler {
	return &WSHandler{
		service: service,
		auth:    authService,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
	}
}

type inboundMessage struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

type commitPayload struct {
	Knows bool `json:"knows"`
}

type resolvePayload struct {
	WasRight bool `json:"wasRight"`
}

type answerPayload struct {
	Text string `json:"text"`
}

type choicePayload struct {
	Index int `json:"index"`
}

type trueFalsePayload struct {
	Value bool `json:"value"`
}

type reportPayload struct {
	GotIt bool `json:"gotIt"`
}

type deckPayload struct {
	Deck string `json:"deck"`
	Mode string `json:"mode"`
}

type resultPayload struct {
	Outcome domain.AnswerOutcome `json:"outcome"`
	View    app.SessionView      `json:"view"`
}

type outboundMessage[T any] struct {
	Type    string `json:"type"`
	Payload T      `json:"payload"`
}

type errorPayload struct {
	Message string `json:"message"`
}

// ServeStudy upgrades the connection and drives one study session over it.
// The session itself outlives the socket: reconnecting with the same deck and
// mode resumes where the user left off.
func (h *WSHandler) ServeStudy(w http.ResponseWriter, r *http.Request) {
	username := r.URL.Query().Get("username")
	password := r.URL.Query().Get("password")
	deck := r.URL.Query().Get("deck")
	mode := r.URL.Query().Get("mode")
	if username == "" || password == "" || deck == "" {
		http.Error(w, "missing username, password, or deck", http.StatusBadRequest)
		return
	}

	if _, err := h.auth.Authenticate(r.Context(), username, password); err != nil {
		http.Error(w, "invalid credentials", http.StatusUnauthorized)
		return
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("ws upgrade failed: %v", err)
		return
	}
	defer conn.Close()

	view, err := h.service.Start(r.Context(), username, deck, mode)
	if err != nil {
		h.sendError(conn, err)
		return
	}
	h.send(conn, "card", view)

	for {
		var inbound inboundMessage
		if err := conn.ReadJSON(&inbound); err != nil {
			return
		}
		h.dispatch(conn, r, username, inbound)
	}
}

func (h *WSHandler) dispatch(conn *websocket.Conn, r *http.Request, username string, inbound inboundMessage) {
	ctx := r.Context()
	switch inbound.Type {
	case "flip":
		view, err := h.service.Flip(username)
		h.sendView(conn, view, err)
	case "commit":
		var p commitPayload
		if !h.decode(conn, inbound.Payload, &p) {
			return
		}
		view, err := h.service.Commit(username, p.Knows)
		h.sendView(conn, view, err)
	case "reveal":
		view, err := h.service.Reveal(username)
		h.sendView(conn, view, err)
	case "resolveCommit":
		var p resolvePayload
		if !h.decode(conn, inbound.Payload, &p) {
			return
		}
		view, outcome, err := h.service.ResolveCommit(ctx, username, p.WasRight)
		h.sendResult(conn, view, outcome, err)
	case "answer":
		var p answerPayload
		if !h.decode(conn, inbound.Payload, &p) {
			return
		}
		view, outcome, err := h.service.SubmitTyped(ctx, username, p.Text)
		h.sendResult(conn, view, outcome, err)
	case "choice":
		var p choicePayload
		if !h.decode(conn, inbound.Payload, &p) {
			return
		}
		view, outcome, err := h.service.SubmitChoice(ctx, username, p.Index)
		h.sendResult(conn, view, outcome, err)
	case "truefalse":
		var p trueFalsePayload
		if !h.decode(conn, inbound.Payload, &p) {
			return
		}
		view, outcome, err := h.service.SubmitTrueFalse(ctx, username, p.Value)
		h.sendResult(conn, view, outcome, err)
	case "report":
		var p reportPayload
		if !h.decode(conn, inbound.Payload, &p) {
			return
		}
		view, outcome, err := h.service.Report(ctx, username, p.GotIt)
		h.sendResult(conn, view, outcome, err)
	case "next":
		view, err := h.service.Next(username)
		h.sendView(conn, view, err)
	case "deck":
		var p deckPayload
		if !h.decode(conn, inbound.Payload, &p) {
			return
		}
		view, err := h.service.Start(ctx, username, p.Deck, p.Mode)
		h.sendView(conn, view, err)
	case "decks":
		names, err := h.service.Decks(ctx)
		if err != nil {
			h.sendError(conn, err)
			return
		}
		h.send(conn, "decks", names)
	case "leaderboard":
		entries, err := h.service.Leaderboard(ctx, 10)
		if err != nil {
			h.sendError(conn, err)
			return
		}
		h.send(conn, "leaderboard", entries)
	default:
		h.send(conn, "error", errorPayload{Message: "unsupported message type"})
	}
}

func (h *WSHandler) decode(conn *websocket.Conn, raw json.RawMessage, dst any) bool {
	if len(raw) == 0 {
		return true
	}
	if err := json.Unmarshal(raw, dst); err != nil {
		h.send(conn, "error", errorPayload{Message: "invalid payload"})
		return false
	}
	return true
}

func (h *WSHandler) sendView(conn *websocket.Conn, view app.SessionView, err error) {
	if err != nil {
		h.sendError(conn, err)
		return
	}
	h.send(conn, "card", view)
}

func (h *WSHandler) sendResult(conn *websocket.Conn, view app.SessionView, outcome *domain.AnswerOutcome, err error) {
	if err != nil {
		h.sendError(conn, err)
		return
	}
	h.send(conn, "result", resultPayload{Outcome: *outcome, View: view})
}

func (h *WSHandler) sendError(conn *websocket.Conn, err error) {
	// Client errors are part of the protocol; anything else stays opaque.
	msg := "internal error"
	switch {
	case errors.Is(err, domain.ErrDeckNotFound),
		errors.Is(err, domain.ErrEmptyDeck),
		errors.Is(err, domain.ErrSessionNotFound),
		errors.Is(err, domain.ErrInvalidTransition),
		errors.Is(err, domain.ErrRevealTooSoon),
		errors.Is(err, domain.ErrValidation):
		msg = err.Error()
	default:
		log.Printf("ws request failed: %v", err)
	}
	h.send(conn, "error", errorPayload{Message: msg})
}

func (h *WSHandler) send(conn *websocket.Conn, msgType string, payload any) {
	if err := conn.WriteJSON(outboundMessage[any]{Type: msgType, Payload: payload}); err != nil {
		log.Printf("ws write error: %v", err)
	}
}
