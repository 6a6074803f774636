package cli

import (
	"context"
	"fmt"
	"log"

	"flashdeck-service/internal/app"
	"flashdeck-service/internal/config"
	pgstore "flashdeck-service/internal/infra/postgres"
	"github.com/jackc/pgx/v4/pgxpool"
	"github.com/spf13/cobra"
)

// NewAnalyzeCmd runs the anti-cheat scan and prints the advisory report.
// It never flags anyone on its own; flagging stays a human decision.
func NewAnalyzeCmd(configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "analyze",
		Short: "Scan user records for suspicious study patterns",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runAnalyze(cmd.Context(), *configPath)
		},
	}
}

func runAnalyze(ctx context.Context, configPath string) error {
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

	analyzer := app.NewAnalyzer(pgstore.NewUserStore(pool), pgstore.NewEventStore(pool))
	reports, err := analyzer.Scan(ctx)
	if err != nil {
		return err
	}
	if len(reports) == 0 {
		log.Printf("no suspicious activity found")
		return nil
	}
	for _, report := range reports {
		fmt.Printf("%s\t%s\t%s\n", report.Username, report.Severity, report.Reason)
	}
	return nil
}
