package cmd

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/PlaguesW/Couple-bot-backend/internal/config"
	"github.com/PlaguesW/Couple-bot-backend/internal/handlers"
	"github.com/PlaguesW/Couple-bot-backend/internal/metrics"
	"github.com/PlaguesW/Couple-bot-backend/internal/middleware"
	"github.com/PlaguesW/Couple-bot-backend/internal/repository"
	"github.com/PlaguesW/Couple-bot-backend/internal/services"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/jackc/pgx/v5/pgxpool"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

func Run() {
	// Load configuration
	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		configPath = "config.yaml"
	}
	cfg, err := config.Load(configPath)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load configuration")
	}

	// Setup logger
	setupLogger(cfg.Log.Level)

	// Connect to database
	db, err := pgxpool.New(context.Background(), cfg.Database.DSN())
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to database")
	}
	defer db.Close()

	// Test database connection
	if err := db.Ping(context.Background()); err != nil {
		log.Fatal().Err(err).Msg("Failed to ping database")
	}
	log.Info().Msg("Database connection established")

	// Apply migrations
	if err := runMigrations(cfg.Database.DSN(), "migrations"); err != nil {
		log.Fatal().Err(err).Msg("Failed to run migrations")
	}
	log.Info().Msg("Migrations applied")

	// Initialize repositories
	userRepo := repository.NewUserRepository(db)
	pairRepo := repository.NewPairRepository(db)
	ideaRepo := repository.NewIdeaRepository(db)
	proposalRepo := repository.NewProposalRepository(db)

	// Initialize services
	userService := services.NewUserService(userRepo, pairRepo)
	pairService := services.NewPairService(pairRepo, userRepo)
	ideaService := services.NewIdeaService(ideaRepo)
	proposalService := services.NewProposalService(proposalRepo, pairRepo, ideaRepo)
	statsService := services.NewStatsService(proposalRepo, pairRepo)

	// Initialize handlers
	userHandler := handlers.NewUserHandler(userService, pairService)
	pairHandler := handlers.NewPairHandler(pairService, statsService)
	ideaHandler := handlers.NewIdeaHandler(ideaService)
	proposalHandler := handlers.NewProposalHandler(proposalService, userService)
	healthHandler := handlers.NewHealthHandler(db)

	// Setup router
	r := chi.NewRouter()

	// Middleware
	r.Use(chiMiddleware.RequestID)
	r.Use(chiMiddleware.RealIP)
	r.Use(chiMiddleware.Logger)
	r.Use(chiMiddleware.Recoverer)
	r.Use(corsMiddleware)
	r.Use(metrics.Middleware)

	// Routes
	r.Route("/api", func(r chi.Router) {
		// Public routes
		r.Get("/health", healthHandler.Check)

		// Protected routes
		r.Group(func(r chi.Router) {
			r.Use(middleware.Auth(cfg.Auth.Token))

			r.Route("/users", func(r chi.Router) {
				r.Post("/", userHandler.Create)
				r.Get("/", userHandler.List)
				r.Get("/{telegram_id}", userHandler.Get)
				r.Put("/{telegram_id}", userHandler.Update)
				r.Delete("/{telegram_id}", userHandler.Delete)
				r.Get("/{telegram_id}/pair", userHandler.GetPair)
			})

			r.Route("/pairs", func(r chi.Router) {
				r.Post("/", pairHandler.Create)
				r.Post("/join", pairHandler.Join)
				r.Get("/{pair_id}", pairHandler.Get)
				r.Get("/{pair_id}/stats", pairHandler.Stats)
			})

			r.Route("/ideas", func(r chi.Router) {
				r.Post("/", ideaHandler.Create)
				r.Get("/", ideaHandler.List)
				r.Get("/random", ideaHandler.Random)
				r.Get("/{idea_id}", ideaHandler.Get)
				r.Put("/{idea_id}", ideaHandler.Update)
				r.Delete("/{idea_id}", ideaHandler.Delete)
			})

			r.Route("/proposals", func(r chi.Router) {
				r.Post("/", proposalHandler.Create)
				r.Get("/{proposal_id}", proposalHandler.Get)
				r.Put("/{proposal_id}", proposalHandler.Respond)
				r.Get("/pair/{pair_id}", proposalHandler.History)
				r.Get("/user/{telegram_id}", proposalHandler.ListForUser)
			})
		})
	})

	// Metrics route
	r.Method(http.MethodGet, "/metrics", metrics.Handler())

	// Create HTTP server
	srv := &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in goroutine
	go func() {
		log.Info().
			Str("host", cfg.Server.Host).
			Int("port", cfg.Server.Port).
			Msg("Starting server")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("Server failed to start")
		}
	}()

	// Wait for interrupt signal for graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("Shutting down server...")

	// Graceful shutdown with timeout
	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Error().Err(err).Msg("Server forced to shutdown")
	}

	log.Info().Msg("Server exited")
}

// runMigrations applies pending goose migrations
func runMigrations(dsn, dir string) error {
	db, err := goose.OpenDBWithDriver("pgx", dsn)
	if err != nil {
		return fmt.Errorf("goose open db: %w", err)
	}
	defer db.Close()

	if err := goose.Up(db, dir); err != nil {
		return fmt.Errorf("goose up: %w", err)
	}
	return nil
}

// setupLogger configures zerolog logger
func setupLogger(level string) {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})

	switch level {
	case "debug":
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	case "info":
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
	case "warn":
		zerolog.SetGlobalLevel(zerolog.WarnLevel)
	case "error":
		zerolog.SetGlobalLevel(zerolog.ErrorLevel)
	default:
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
	}
}

// corsMiddleware handles CORS
func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Authorization, Content-Type")

		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}
