package cli

import (
	"context"
	"fmt"
	"log"

	"flashdeck-service/internal/auth"
	"flashdeck-service/internal/config"
	pgstore "flashdeck-service/internal/infra/postgres"
	"github.com/jackc/pgx/v4/pgxpool"
	"github.com/spf13/cobra"
)

// NewUserAddCmd creates a user account against the configured postgres store.
func NewUserAddCmd(configPath *string) *cobra.Command {
	var password string
	var admin bool

	cmd := &cobra.Command{
		Use:   "useradd <username>",
		Short: "Create a user account",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runUserAdd(cmd.Context(), *configPath, args[0], password, admin)
		},
	}
	cmd.Flags().StringVar(&password, "password", "", "password for the new account")
	cmd.Flags().BoolVar(&admin, "admin", false, "grant admin rights")
	_ = cmd.MarkFlagRequired("password")
	return cmd
}

func runUserAdd(ctx context.Context, configPath, username, password string, admin bool) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	if cfg.Postgres.URL == "" {
		return fmt.Errorf("postgres url not configured")
	}

	pool, err := pgxpool.Connect(ctx, cfg.Postgres.URL)
	if err != nil {
		return err
	}
	defer pool.Close()

	authService := auth.NewService(pgstore.NewUserStore(pool))
	if err := authService.CreateUser(ctx, username, password, admin); err != nil {
		return err
	}
	log.Printf("user %s created (admin=%v)", username, admin)
	return nil
}
