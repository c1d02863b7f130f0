package main

import (
	"context"
	"database/sql"
	"log"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/KPEKEP/universal-llm-chatbot/internal/archive"
	"github.com/KPEKEP/universal-llm-chatbot/internal/config"
	"github.com/KPEKEP/universal-llm-chatbot/internal/delivery"
	"github.com/KPEKEP/universal-llm-chatbot/internal/error_notificator"
	"github.com/KPEKEP/universal-llm-chatbot/internal/localization"
	"github.com/KPEKEP/universal-llm-chatbot/internal/provider"
	"github.com/KPEKEP/universal-llm-chatbot/internal/ratelimit"
	"github.com/KPEKEP/universal-llm-chatbot/internal/telegram"
	"github.com/KPEKEP/universal-llm-chatbot/internal/user"

	"github.com/joho/godotenv"
	_ "github.com/lib/pq"
	_ "github.com/mattn/go-sqlite3"
	"go.uber.org/zap"
)

func main() {

	// =========================================================================
	// ENV / CONFIG
	// =========================================================================

	_ = godotenv.Load()

	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		configPath = "config.yml"
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	locPath := os.Getenv("LOCALIZATION_PATH")
	if locPath == "" {
		locPath = "localization.yml"
	}

	loc, err := localization.Load(locPath, cfg.Language)
	if err != nil {
		log.Fatalf("failed to load localization: %v", err)
	}

	baseLogger, _ := zap.NewProduction()
	defer baseLogger.Sync()
	zl := baseLogger.Sugar()

	// =========================================================================
	// DB INIT
	// =========================================================================

	var db *sql.DB
	switch cfg.UserDB.Driver {
	case "postgres":
		db, err = sql.Open("postgres", os.Getenv("DATABASE_URL"))
	default:
		if err := os.MkdirAll(filepath.Dir(cfg.UserDB.Name), 0755); err != nil {
			log.Fatalf("failed to create db dir: %v", err)
		}
		db, err = sql.Open("sqlite3", cfg.UserDB.Name)
	}
	if err != nil {
		log.Fatalf("failed to open db: %v", err)
	}
	defer db.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := db.PingContext(ctx); err != nil {
		log.Fatalf("db ping failed: %v", err)
	}
	if err := user.SetupSchema(ctx, db, cfg.UserDB.Driver); err != nil {
		log.Fatalf("db schema failed: %v", err)
	}

	// =========================================================================
	// REPOSITORIES / SERVICES
	// =========================================================================

	providerCfg := cfg.Active()
	defaults := user.Defaults{
		Model:        providerCfg.Models.Default,
		SystemPrompt: providerCfg.Models.SystemPrompt,
		Temperature:  providerCfg.Models.Temperature,
		TopP:         providerCfg.Models.TopP,
		MaxTokens:    providerCfg.Models.MaxTokens,
		Language:     cfg.Language,
		Speaker:      providerCfg.TTS.Speaker,
	}

	userRepo := user.NewInfra(db, cfg.UserDB.Driver, defaults)
	cachedRepo := user.NewCachedRepo(userRepo, cfg.UserDB.MaxCacheSize, cfg.UserDB.CacheTTL())
	userService := user.NewService(cachedRepo, user.ServiceOptions{
		Defaults:   defaults,
		MaxHistory: cfg.MaxMessageHistory,
		AccessMode: cfg.Telegram.AccessMode,
		AdminIDs:   cfg.Telegram.AdminUsers,
	})

	limiter := ratelimit.New(ratelimit.Options{
		UserMaxRequests:   cfg.RateLimit.UserMaxRequests,
		UserWindow:        cfg.RateLimit.UserWindow(),
		GlobalMaxRequests: cfg.RateLimit.GlobalMaxRequests,
		GlobalWindow:      cfg.RateLimit.GlobalWindow(),
	})

	// =========================================================================
	// ERROR NOTIFICATION
	// =========================================================================

	errInfra := error_notificator.NewInfra(userService)
	errService := error_notificator.NewService(errInfra)

	// =========================================================================
	// PROVIDER / ARCHIVE
	// =========================================================================

	// model pulls can take a while, no deadline here
	prov, err := provider.New(context.Background(), cfg)
	if err != nil {
		log.Fatalf("failed to init provider: %v", err)
	}

	archiveStore, err := archive.NewS3Store(context.Background(), cfg.Archive)
	if err != nil {
		log.Fatalf("failed to init archive: %v", err)
	}
	archiveService := archive.NewService(archiveStore)

	// =========================================================================
	// TELEGRAM BOT
	// =========================================================================

	botApp := telegram.NewBotApp(cfg, loc, userService, prov, limiter, errService, archiveService)
	if err := botApp.InitBot(); err != nil {
		log.Fatalf("failed to init telegram bot: %v", err)
	}
	errInfra.SetBot(botApp.Bot())

	go botApp.Run()

	// =========================================================================
	// BACKGROUND JOBS
	// =========================================================================

	go func() {
		ticker := time.NewTicker(10 * time.Minute)
		defer ticker.Stop()

		for range ticker.C {
			if n := limiter.Prune(30 * time.Minute); n > 0 {
				log.Printf("[limiter-prune] removed %d idle buckets", n)
			}
		}
	}()

	// =========================================================================
	// HTTP ROUTER
	// =========================================================================

	handler := delivery.NewHandler(db, userService, limiter, prov.Name(), zl)
	r := delivery.NewRouter(handler, cfg.HTTP.RequestsPerMinute)

	addr := ":" + cfg.HTTP.Port
	zl.Infow("listening", "addr", addr, "provider", prov.Name())

	if err := http.ListenAndServe(addr, r); err != nil {
		log.Fatalf("server error: %v", err)
	}
}
