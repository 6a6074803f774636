package postgres

import (
	"context"
	"fmt"
	"time"

	"flashdeck-service/internal/domain"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v4/pgxpool"
)

// EventStore is the append-only study log. Rows are never updated.
type EventStore struct {
	pool *pgxpool.Pool
}

func NewEventStore(pool *pgxpool.Pool) *EventStore {
	return &EventStore{pool: pool}
}

func (s *EventStore) Append(ctx context.Context, event domain.StudyEvent) error {
	if event.ID == "" {
		event.ID = uuid.NewString()
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now()
	}
	_, err := s.pool.Exec(ctx, `
		INSERT INTO study_events (id, username, deck_name, card_question, response_time, correct, mode, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		event.ID, event.Username, event.DeckName, event.CardQuestion,
		event.ResponseTime, event.Correct, event.Mode, event.Timestamp)
	if err != nil {
		return fmt.Errorf("append event: %w", err)
	}
	return nil
}

func (s *EventStore) RecentByUser(ctx context.Context, username string, limit int) ([]domain.StudyEvent, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT id, username, deck_name, card_question, response_time, correct, mode, created_at
		FROM study_events
		WHERE username = $1
		ORDER BY created_at DESC
		LIMIT $2`, username, limit)
	if err != nil {
		return nil, fmt.Errorf("recent events: %w", err)
	}
	defer rows.Close()

	var events []domain.StudyEvent
	for rows.Next() {
		var e domain.StudyEvent
		if err := rows.Scan(&e.ID, &e.Username, &e.DeckName, &e.CardQuestion,
			&e.ResponseTime, &e.Correct, &e.Mode, &e.Timestamp); err != nil {
			return nil, fmt.Errorf("scan event: %w", err)
		}
		events = append(events, e)
	}
	return events, rows.Err()
}
