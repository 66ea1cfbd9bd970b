package bootstrap

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"resume-insights/internal/admission"
	"resume-insights/internal/analyses"
	"resume-insights/internal/extract"
	"resume-insights/internal/guests"
	"resume-insights/internal/health"
	"resume-insights/internal/history"
	"resume-insights/internal/llm"
	"resume-insights/internal/llm/gemini"
	"resume-insights/internal/shared/auth"
	"resume-insights/internal/shared/config"
	"resume-insights/internal/shared/server"
	"resume-insights/internal/shared/server/middleware"
	"resume-insights/internal/shared/storage/db"
	"resume-insights/internal/shared/telemetry"
)

// App holds the wired service.
type App struct {
	Config  config.Config
	DB      *sql.DB
	Router  *gin.Engine
	Ledger  *guests.Ledger
	Sweeper *guests.Sweeper
}

// Build connects storage, picks the provider client and wires every route.
func Build(ctx context.Context, cfg config.Config) (*App, error) {
	if strings.TrimSpace(cfg.Env) == "" {
		cfg.Env = "dev"
	}

	sqlDB, err := buildDB(ctx, cfg)
	if err != nil {
		return nil, err
	}

	verifier, err := auth.NewHMACVerifier(cfg.JWTSecret, cfg.IsDevLike())
	if err != nil {
		closeDB(sqlDB)
		return nil, err
	}

	var (
		guestStore  guests.Store
		historyRepo history.Repo
	)
	if sqlDB != nil {
		guestStore = guests.NewPGStore(sqlDB)
		historyRepo = history.NewPGRepo(sqlDB)
	} else {
		guestStore = guests.NewMemoryStore()
		historyRepo = history.NewMemoryRepo()
	}

	client, configured := buildLLM(ctx, cfg)
	ledger := guests.NewLedger(guestStore)
	gate := admission.NewGate(verifier, ledger)

	router := server.NewRouter(cfg, server.Deps{
		Gate:     gate,
		Limiter:  middleware.NewRateLimiter(cfg.RateLimitRPS, cfg.RateLimitBurst, time.Now),
		Health:   health.NewService(sqlDB, configured),
		Guests:   guests.NewHandler(ledger),
		Analyses: analyses.NewHandler(analyses.NewService(llm.WithRetry(client)), gate),
		History:  history.NewHandler(history.NewService(historyRepo)),
		Extract:  extract.NewHandler(cfg.MaxUploadBytes),
	})

	return &App{
		Config: cfg,
		DB:     sqlDB,
		Router: router,
		Ledger: ledger,
		Sweeper: &guests.Sweeper{
			Ledger:    ledger,
			Interval:  cfg.GuestSweepInterval,
			Retention: cfg.GuestRetention,
		},
	}, nil
}

// Close releases the database pool.
func (a *App) Close() {
	closeDB(a.DB)
}

func buildDB(ctx context.Context, cfg config.Config) (*sql.DB, error) {
	if strings.TrimSpace(cfg.DatabaseURL) == "" {
		if cfg.IsDevLike() {
			telemetry.Warn("bootstrap.memory_storage", map[string]any{"reason": "DATABASE_URL empty"})
			return nil, nil
		}
		return nil, errors.New("DATABASE_URL is required")
	}

	sqlDB, err := db.Connect(ctx, cfg.DatabaseURL, db.OptionsFromEnv(db.DefaultServerOptions()))
	if err != nil {
		if cfg.IsDevLike() {
			telemetry.Warn("bootstrap.memory_storage", map[string]any{"reason": "connect failed", "error": err})
			return nil, nil
		}
		return nil, err
	}
	if err := db.RunMigrations(ctx, sqlDB); err != nil {
		sqlDB.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}
	return sqlDB, nil
}

func buildLLM(ctx context.Context, cfg config.Config) (llm.Client, bool) {
	client, err := gemini.New(ctx, gemini.Config{
		APIKey:  cfg.GeminiAPIKey,
		Model:   cfg.LLMModel,
		Timeout: cfg.LLMTimeout,
	})
	if err != nil {
		telemetry.Warn("bootstrap.llm_placeholder", map[string]any{"error": err})
		return llm.PlaceholderClient{}, false
	}
	return client, true
}

func closeDB(sqlDB *sql.DB) {
	if sqlDB == nil {
		return
	}
	if err := sqlDB.Close(); err != nil {
		telemetry.Warn("bootstrap.db_close_failed", map[string]any{"error": err})
	}
}
