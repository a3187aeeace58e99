package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"vocabduet/internal/config"
	"vocabduet/internal/database"
	"vocabduet/internal/engine"
	"vocabduet/internal/handlers"
	"vocabduet/internal/repository"
	"vocabduet/internal/security"
	"vocabduet/internal/service"
	"vocabduet/internal/validation"
)

func main() {
	// Load configuration
	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}

	// Initialize database with config (supports sqlite, postgres, mysql)
	db, err := database.InitializeWithConfig(cfg)
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}
	defer db.Close()

	log.Printf("Database connection established (type: %s)", cfg.DatabaseType)

	// Run migrations
	if err := db.RunMigrations(cfg.MigrationsPath); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}

	log.Println("Migrations completed successfully")

	// Initialize repositories
	vocabRepo := repository.NewVocabRepository(db)
	perfRepo := repository.NewPerformanceRepository(db)
	prefRepo := repository.NewPreferenceRepository(db)
	submissionRepo := repository.NewSubmissionRepository(db)
	challengeRepo := repository.NewChallengeRepository(db)

	// Engine
	prioritizer := engine.NewPrioritizer(engine.DefaultPriorityConfig())
	selector := engine.NewSelector(prioritizer)

	// Semantic validation client; nil endpoint means exact-match only
	var semantic validation.SemanticClient
	if cfg.ValidatorEndpoint != "" {
		semantic = validation.NewHTTPSemanticClient(validation.SemanticConfig{
			Endpoint:     cfg.ValidatorEndpoint,
			TokenURL:     cfg.ValidatorTokenURL,
			ClientID:     cfg.ValidatorClientID,
			ClientSecret: cfg.ValidatorClientSecret,
			Timeout:      cfg.ValidatorTimeout,
		})
		log.Printf("Semantic validation enabled: %s", cfg.ValidatorEndpoint)
	} else {
		log.Println("Semantic validation disabled: answers graded by exact match")
	}

	// Email notifications
	var emailSender service.EmailSender
	if cfg.EmailEnabled {
		emailService, err := service.NewEmailService(cfg.AWSRegion, cfg.EmailSender, "VocabDuet", cfg.AppBaseURL)
		if err != nil {
			log.Fatalf("Failed to initialize email service: %v", err)
		}
		emailSender = emailService
	}

	// Initialize services
	policy := service.NewPersistencePolicy(prefRepo)
	sessionService := service.NewSessionService(
		vocabRepo,
		perfRepo,
		submissionRepo,
		policy,
		selector,
		semantic,
		validation.DefaultNormalizeOptions(),
		cfg.ValidatorTimeout,
		service.SessionConfig{
			WordCount:          cfg.SessionWordCount,
			MinimumWords:       cfg.SessionMinimumWords,
			QuickFireWordCount: cfg.QuickFireWordCount,
			QuickFireTime:      time.Duration(cfg.QuickFireTimeSeconds) * time.Second,
		},
	)
	challengeService := service.NewChallengeService(challengeRepo, vocabRepo, perfRepo, selector, prioritizer, emailSender)

	// Initialize handlers
	limiter := security.NewRateLimiter(cfg.ValidationRateLimit, cfg.ValidationRateWindow)
	middleware := handlers.NewMiddleware(cfg.JWTSecret, limiter)
	sessionHandler := handlers.NewSessionHandler(sessionService)
	challengeHandler := handlers.NewChallengeHandler(challengeService)
	vocabHandler := handlers.NewVocabularyHandler(vocabRepo, prefRepo)

	// Setup routes
	mux := http.NewServeMux()

	// Session routes
	mux.HandleFunc("POST /api/sessions", middleware.RequireAuth(sessionHandler.StartSession))
	mux.HandleFunc("GET /api/sessions/{id}", middleware.RequireAuth(sessionHandler.GetSession))
	mux.HandleFunc("POST /api/sessions/{id}/answers", middleware.RequireAuth(middleware.RateLimit(sessionHandler.GradeAnswer)))
	mux.HandleFunc("POST /api/sessions/{id}/basic-only", middleware.RequireAuth(sessionHandler.ContinueBasic))
	mux.HandleFunc("POST /api/sessions/{id}/complete", middleware.RequireAuth(sessionHandler.CompleteSession))
	mux.HandleFunc("POST /api/sessions/{id}/save", middleware.RequireAuth(sessionHandler.SaveSession))
	mux.HandleFunc("POST /api/sessions/{id}/abort", middleware.RequireAuth(sessionHandler.AbortSession))
	mux.HandleFunc("GET /api/history", middleware.RequireAuth(sessionHandler.History))
	mux.HandleFunc("GET /api/history/{id}", middleware.RequireAuth(sessionHandler.HistoryDetail))

	// Challenge routes
	mux.HandleFunc("POST /api/challenges", middleware.RequireAuth(challengeHandler.CreateChallenge))
	mux.HandleFunc("GET /api/challenges", middleware.RequireAuth(challengeHandler.ListChallenges))
	mux.HandleFunc("GET /api/challenges/{id}", middleware.RequireAuth(challengeHandler.GetChallenge))
	mux.HandleFunc("GET /api/challenges/{id}/words", middleware.RequireAuth(challengeHandler.ChallengeWords))
	mux.HandleFunc("POST /api/challenges/{id}/complete", middleware.RequireAuth(challengeHandler.CompleteChallenge))

	// Vocabulary and preference routes
	mux.HandleFunc("GET /api/vocabulary", middleware.RequireAuth(vocabHandler.ListVocabulary))
	mux.HandleFunc("GET /api/preferences", middleware.RequireAuth(vocabHandler.GetPreference))
	mux.HandleFunc("PUT /api/preferences", middleware.RequireAuth(vocabHandler.SetPreference))

	// Wrap with logging middleware
	handler := handlers.Logging(mux)

	// Start server
	addr := ":" + cfg.ServerPort
	server := &http.Server{
		Addr:         addr,
		Handler:      handler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Graceful shutdown
	go func() {
		log.Printf("Server starting on http://localhost%s", addr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server failed: %v", err)
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Server shutting down...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		log.Printf("Shutdown error: %v", err)
	}
}
