package postgres

import (
	"context"
	"fmt"

	"flashdeck-service/internal/domain"
	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"
)

// UserStore persists user records. Scoring updates are single-statement
// field-level increments so concurrent sessions for the same account never
// lose updates.
type UserStore struct {
	pool *pgxpool.Pool
}

func NewUserStore(pool *pgxpool.Pool) *UserStore {
	return &UserStore{pool: pool}
}

const userColumns = `username, password, is_admin, total_score, cards_studied,
	correct_answers, incorrect_answers, current_streak, best_streak,
	verification_passed, verification_failed, flagged, created_at`

func (s *UserStore) Get(ctx context.Context, username string) (domain.UserRecord, error) {
	row := s.pool.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE username=$1`, username)
	user, err := scanUser(row)
	if err == pgx.ErrNoRows {
		return domain.UserRecord{}, domain.ErrUserNotFound
	}
	if err != nil {
		return domain.UserRecord{}, fmt.Errorf("get user: %w", err)
	}
	return user, nil
}

func (s *UserStore) Create(ctx context.Context, user domain.UserRecord) error {
	tag, err := s.pool.Exec(ctx, `
		INSERT INTO users (username, password, is_admin, created_at)
		VALUES ($1, $2, $3, COALESCE(NULLIF($4::timestamptz, '0001-01-01'::timestamptz), now()))
		ON CONFLICT (username) DO NOTHING`,
		user.Username, user.Password, user.Admin, user.CreatedAt)
	if err != nil {
		return fmt.Errorf("create user: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrUserExists
	}
	return nil
}

// ApplyAnswer applies one resolved card atomically: score delta, counters,
// streak increment-or-reset, best-streak high-water mark and the verified
// counters when the card was verification-sampled.
func (s *UserStore) ApplyAnswer(ctx context.Context, username string, points int, correct, verified bool) error {
	tag, err := s.pool.Exec(ctx, `
		UPDATE users SET
			total_score = total_score + $2,
			cards_studied = cards_studied + 1,
			correct_answers = correct_answers + CASE WHEN $3 THEN 1 ELSE 0 END,
			incorrect_answers = incorrect_answers + CASE WHEN $3 THEN 0 ELSE 1 END,
			best_streak = CASE WHEN $3 THEN GREATEST(best_streak, current_streak + 1) ELSE best_streak END,
			current_streak = CASE WHEN $3 THEN current_streak + 1 ELSE 0 END,
			verification_passed = verification_passed + CASE WHEN $4 AND $3 THEN 1 ELSE 0 END,
			verification_failed = verification_failed + CASE WHEN $4 AND NOT $3 THEN 1 ELSE 0 END
		WHERE username = $1`,
		username, points, correct, verified)
	if err != nil {
		return fmt.Errorf("apply answer: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrUserNotFound
	}
	return nil
}

func (s *UserStore) Flag(ctx context.Context, username string) error {
	return s.setFlag(ctx, username, true)
}

func (s *UserStore) Unflag(ctx context.Context, username string) error {
	return s.setFlag(ctx, username, false)
}

func (s *UserStore) setFlag(ctx context.Context, username string, flagged bool) error {
	tag, err := s.pool.Exec(ctx, `UPDATE users SET flagged=$2 WHERE username=$1`, username, flagged)
	if err != nil {
		return fmt.Errorf("set flag: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrUserNotFound
	}
	return nil
}

func (s *UserStore) ResetScore(ctx context.Context, username string) error {
	tag, err := s.pool.Exec(ctx, `
		UPDATE users SET
			total_score = 0, cards_studied = 0, correct_answers = 0,
			incorrect_answers = 0, current_streak = 0,
			verification_passed = 0, verification_failed = 0
		WHERE username = $1`, username)
	if err != nil {
		return fmt.Errorf("reset score: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrUserNotFound
	}
	return nil
}

func (s *UserStore) Leaderboard(ctx context.Context, limit int) ([]domain.LeaderboardEntry, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT username, total_score, best_streak FROM users
		WHERE NOT flagged
		ORDER BY total_score DESC, username ASC
		LIMIT $1`, limit)
	if err != nil {
		return nil, fmt.Errorf("leaderboard: %w", err)
	}
	defer rows.Close()

	var entries []domain.LeaderboardEntry
	for rows.Next() {
		var e domain.LeaderboardEntry
		if err := rows.Scan(&e.Username, &e.TotalScore, &e.BestStreak); err != nil {
			return nil, fmt.Errorf("scan leaderboard: %w", err)
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

func (s *UserStore) All(ctx context.Context) ([]domain.UserRecord, error) {
	rows, err := s.pool.Query(ctx, `SELECT `+userColumns+` FROM users ORDER BY username`)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	defer rows.Close()

	var users []domain.UserRecord
	for rows.Next() {
		user, err := scanUser(rows)
		if err != nil {
			return nil, fmt.Errorf("scan user: %w", err)
		}
		users = append(users, user)
	}
	return users, rows.Err()
}

func scanUser(row pgx.Row) (domain.UserRecord, error) {
	var u domain.UserRecord
	err := row.Scan(
		&u.Username, &u.Password, &u.Admin, &u.TotalScore, &u.CardsStudied,
		&u.CorrectAnswers, &u.IncorrectAnswers, &u.CurrentStreak, &u.BestStreak,
		&u.VerificationPassed, &u.VerificationFailed, &u.Flagged, &u.CreatedAt,
	)
	return u, err
}
