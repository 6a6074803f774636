package cli

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"flashdeck-service/internal/app"
	"flashdeck-service/internal/auth"
	"flashdeck-service/internal/config"
	"flashdeck-service/internal/domain"
	"flashdeck-service/internal/infra/memory"
	pgstore "flashdeck-service/internal/infra/postgres"
	redisstore "flashdeck-service/internal/infra/redis"
	transport "flashdeck-service/internal/transport/http"
	"github.com/jackc/pgx/v4/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"
)

// NewStartCmd builds the CLI subcommand to start the server.
func NewStartCmd(configPath, port *string) *cobra.Command {
	return &cobra.Command{
		Use:   "start",
		Short: "Start the study server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServer(cmd.Context(), *configPath, *port)
		},
	}
}

func runServer(ctx context.Context, configPath, portFlag string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}

	if cfg.Postgres.URL != "" {
		if err := runMigrationsWithConfig(ctx, cfg); err != nil {
			return err
		}
	}

	finalPort := portFlag
	if finalPort == "" {
		finalPort = cfg.Server.Port
	}
	if finalPort == "" {
		finalPort = "8080"
	}

	var redisClient *redis.Client
	if cfg.Redis.Addr != "" {
		redisClient = redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
	}
	redisTTL := config.TTLDuration(cfg.Redis.TTL, 10*time.Minute)

	var pool *pgxpool.Pool
	if cfg.Postgres.URL != "" {
		pool, err = pgxpool.Connect(ctx, cfg.Postgres.URL)
		if err != nil {
			return err
		}
		defer pool.Close()
	}

	var loader memory.DeckLoader = memory.NewDeckStore(sampleDecks())
	var users app.UserStore = memory.NewUserStore()
	var events app.EventStore = memory.NewEventStore()
	if pool != nil {
		loader = pgstore.NewDeckStore(pool)
		users = pgstore.NewUserStore(pool)
		events = pgstore.NewEventStore(pool)
	}

	deckTTL := config.TTLDuration(cfg.Deck.TTL, 10*time.Minute)
	var decks app.DeckRepository
	if redisClient != nil {
		decks = redisstore.NewDeckRepository(redisClient, loader, deckTTL)
	} else {
		decks = memory.NewDeckRepository(loader, deckTTL)
	}

	var sessions app.SessionRepository
	if redisClient != nil {
		sessions = redisstore.NewSessionStore(redisClient, redisTTL)
	} else {
		sessions = memory.NewSessionStore()
	}

	service := app.NewStudyService(sessions, decks, users, events)
	authService := auth.NewService(users)
	wsHandler := transport.NewWSHandler(service, authService)

	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("ok"))
	})
	mux.HandleFunc("/study", wsHandler.ServeStudy)

	server := &http.Server{
		Addr:         ":" + finalPort,
		Handler:      mux,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
	}

	go func() {
		log.Printf("starting flashdeck service on :%s", finalPort)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Printf("failed to start server: %v", err)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	select {
	case <-stop:
		log.Println("shutting down server...")
	case <-ctx.Done():
		log.Println("context canceled, shutting down server...")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return server.Shutdown(shutdownCtx)
}

// sampleDecks seeds the in-memory deck store when no postgres is configured.
func sampleDecks() map[string][]domain.Card {
	return map[string][]domain.Card{
		"world-capitals": {
			{Question: "What is the capital of France?", Answer: "Paris"},
			{Question: "What is the capital of Japan?", Answer: "Tokyo"},
			{Question: "What is the capital of Australia?", Answer: "Canberra"},
			{Question: "What is the capital of Canada?", Answer: "Ottawa"},
			{Question: "What is the capital of Brazil?", Answer: "Brasilia"},
		},
		"spanish-basics": {
			{Question: "How do you say 'hello' in Spanish?", Answer: "Hola"},
			{Question: "How do you say 'thank you' in Spanish?", Answer: "Gracias"},
			{Question: "How do you say 'goodbye' in Spanish?", Answer: "Adios"},
			{Question: "How do you say 'please' in Spanish?", Answer: "Por favor"},
		},
	}
}
