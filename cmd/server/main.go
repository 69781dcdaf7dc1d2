package main

import (
	"context"
	"database/sql"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"agency-portfolio-backend/internal/assistant"
	"agency-portfolio-backend/internal/auth"
	"agency-portfolio-backend/internal/cache"
	"agency-portfolio-backend/internal/catalog"
	"agency-portfolio-backend/internal/chat"
	"agency-portfolio-backend/internal/config"
	"agency-portfolio-backend/internal/database"
	"agency-portfolio-backend/internal/handlers"
	"agency-portfolio-backend/internal/logger"
	"agency-portfolio-backend/internal/memstore"
	"agency-portfolio-backend/internal/realtime"
	"agency-portfolio-backend/internal/supabase"
)

type providers struct {
	catalog  catalog.Repository
	chat     chat.Repository
	auth     auth.Provider
	uploader catalog.ImageUploader
}

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load configuration")
	}

	l := logger.Setup(cfg.LogLevel, cfg.Environment)

	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Direct database connection, for migrations and the health check
	var db *sql.DB
	if cfg.DatabaseURL == "" {
		l.Warn().Msg("DATABASE_URL not set, migrations will be skipped")
	} else {
		db, err = database.Open(ctx, cfg.DatabaseURL)
		if err != nil {
			l.Warn().Err(err).Msg("failed to connect to database, migrations will be skipped")
		} else {
			defer db.Close()
			if err := database.NewMigrator(db, l).Run(ctx); err != nil {
				l.Warn().Err(err).Msg("migration failed")
			} else {
				l.Info().Msg("migrations completed successfully")
			}
		}
	}

	p, err := newProviders(ctx, cfg, l)
	if err != nil {
		l.Fatal().Err(err).Msg("failed to initialize data provider")
	}

	// Catalogue summary cache
	catalogOpts := []catalog.Option{catalog.WithLogger(l)}
	if p.uploader != nil {
		catalogOpts = append(catalogOpts, catalog.WithUploader(p.uploader))
	}
	if cfg.RedisURL != "" {
		redisClient, err := cache.Connect(ctx, cfg.RedisURL)
		if err != nil {
			l.Warn().Err(err).Msg("redis unavailable, summary cache disabled")
		} else {
			defer redisClient.Close()
			catalogOpts = append(catalogOpts, catalog.WithSummaryCache(cache.NewSummaryCache(redisClient, cfg.SummaryCacheTTL, l)))
		}
	}

	// Assistant
	var gen assistant.Generator
	if cfg.GeminiAPIKey == "" {
		l.Warn().Msg("GEMINI_API_KEY not set, assistant will answer with a configuration notice")
	} else {
		gemini, err := assistant.NewGemini(ctx, cfg.GeminiAPIKey, cfg.GeminiModel)
		if err != nil {
			l.Error().Err(err).Msg("failed to initialize gemini client")
		} else {
			defer gemini.Close()
			gen = gemini
		}
	}

	hub := realtime.NewHub(l)

	router := handlers.NewRouter(handlers.Deps{
		Config:    cfg,
		Catalog:   catalog.NewService(p.catalog, cfg.PlaceholderImageURL, catalogOpts...),
		Auth:      auth.NewService(p.auth, l),
		Chat:      chat.NewService(p.chat, chat.WithNotifier(hub), chat.WithLogger(l)),
		Assistant: assistant.New(gen, l),
		Hub:       hub,
		DB:        pingerOrNil(db),
		Log:       l,
	})

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		l.Info().Str("port", cfg.Port).Str("provider", cfg.Provider).Msg("server starting")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			l.Fatal().Err(err).Msg("failed to start server")
		}
	}()

	<-ctx.Done()
	l.Info().Msg("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		l.Error().Err(err).Msg("graceful shutdown failed")
	}
}

func newProviders(ctx context.Context, cfg *config.Config, l zerolog.Logger) (*providers, error) {
	switch cfg.Provider {
	case config.ProviderMemory:
		store := memstore.New()
		authProvider := memstore.NewAuth(cfg.SupabaseJWTSecret)
		if cfg.AdminEmail != "" && cfg.AdminPassword != "" {
			if _, err := authProvider.SeedAdmin(ctx, cfg.AdminName, cfg.AdminEmail, cfg.AdminPassword); err != nil {
				return nil, err
			}
			l.Info().Str("email", cfg.AdminEmail).Msg("seeded admin account")
		}
		return &providers{catalog: store, chat: store, auth: authProvider}, nil

	default:
		client, err := supabase.NewClient(cfg)
		if err != nil {
			return nil, err
		}
		return &providers{
			catalog:  supabase.NewCatalogRepository(client),
			chat:     supabase.NewChatRepository(client),
			auth:     supabase.NewAuthProvider(client),
			uploader: supabase.NewStorageClient(cfg.SupabaseURL, cfg.SupabaseServiceRoleKey, cfg.SupabaseStorageBucket),
		}, nil
	}
}

// pingerOrNil keeps a nil *sql.DB from becoming a non-nil interface.
func pingerOrNil(db *sql.DB) handlers.Pinger {
	if db == nil {
		return nil
	}
	return db
}
