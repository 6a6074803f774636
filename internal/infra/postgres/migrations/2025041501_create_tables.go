package migrations

import (
	"context"
	_ "embed"

	"github.com/uptrace/bun"
	"github.com/uptrace/bun/migrate"
)

//go:embed 0001_create_decks.sql
var createDecksSQL string

//go:embed 0002_create_users.sql
var createUsersSQL string

//go:embed 0003_create_study_events.sql
var createStudyEventsSQL string

var Migrations = migrate.NewMigrations()

func init() {
	Migrations.MustRegister(
		func(ctx context.Context, db *bun.DB) error {
			for _, stmt := range []string{createDecksSQL, createUsersSQL, createStudyEventsSQL} {
				if _, err := db.Exec(stmt); err != nil {
					return err
				}
			}
			return nil
		},
		func(ctx context.Context, db *bun.DB) error {
			_, err := db.Exec(`
				DROP TABLE IF EXISTS study_events;
				DROP TABLE IF EXISTS users;
				DROP TABLE IF EXISTS decks`)
			return err
		},
	)
}
