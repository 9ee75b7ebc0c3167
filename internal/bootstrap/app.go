package bootstrap

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"

	"resume-ats/internal/ats"
	"resume-ats/internal/scores"
	"resume-ats/internal/scores/cache"
	"resume-ats/internal/services/health"
	"resume-ats/internal/shared/config"
	"resume-ats/internal/shared/server"
	"resume-ats/internal/shared/server/middleware"
	"resume-ats/internal/shared/storage/db"
	"resume-ats/internal/shared/telemetry"
)

// App holds shared dependencies and the router built from them.
type App struct {
	Config        config.Config
	Router        *gin.Engine
	DB            *sql.DB
	Redis         *redis.Client
	Engine        *ats.Engine
	ScoresRepo    scores.Repo
	ScoresCache   cache.Cache
	ScoresService *scores.Service
	ScoresHandler *scores.Handler
	Health        *health.Service
}

// Build prepares dependencies and wires routes. In dev-like environments a
// missing or unreachable database or Redis falls back to in-memory storage and
// no cache.
func Build(cfg config.Config) (*App, error) {
	if strings.TrimSpace(cfg.Env) == "" {
		cfg.Env = "dev"
	}
	if err := telemetry.Init(cfg.LogLevel); err != nil {
		return nil, err
	}
	ctx := context.Background()

	sqlDB, err := buildDB(ctx, cfg)
	if err != nil {
		return nil, err
	}
	redisClient, err := buildRedis(ctx, cfg)
	if err != nil {
		if sqlDB != nil {
			_ = sqlDB.Close()
		}
		return nil, err
	}

	app := &App{
		Config: cfg,
		DB:     sqlDB,
		Redis:  redisClient,
		Engine: ats.New(ats.WithMaxInputBytes(cfg.MaxInputBytes)),
		Health: health.NewService(),
	}
	buildServices(app)

	app.Router = server.NewRouter(server.RouterDeps{
		Config:       app.Config,
		ScoreHandler: app.ScoresHandler,
		Health:       app.Health,
		Limiter:      middleware.NewRateLimiter(nil),
	})

	telemetry.Info("bootstrap.ready", map[string]any{
		"env":      cfg.Env,
		"database": sqlDB != nil,
		"cache":    redisClient != nil,
	})
	return app, nil
}

// Close releases the database and Redis connections.
func (a *App) Close() error {
	var errs []error
	if a.DB != nil {
		errs = append(errs, a.DB.Close())
	}
	if a.Redis != nil {
		errs = append(errs, a.Redis.Close())
	}
	telemetry.Sync()
	return errors.Join(errs...)
}

func buildDB(ctx context.Context, cfg config.Config) (*sql.DB, error) {
	if strings.TrimSpace(cfg.DatabaseURL) == "" {
		if isDevLike(cfg.Env) {
			telemetry.Warn("bootstrap.database.memory", map[string]any{"reason": "DATABASE_URL empty"})
			return nil, nil
		}
		return nil, fmt.Errorf("DATABASE_URL is required")
	}

	opts := db.OptionsFromEnv(db.DefaultServerOptions())
	sqlDB, err := db.Connect(ctx, cfg.DatabaseURL, opts)
	if err == nil {
		if err = db.RunMigrations(ctx, sqlDB); err != nil {
			_ = sqlDB.Close()
			sqlDB = nil
		}
	}
	if err != nil {
		if isDevLike(cfg.Env) {
			telemetry.Warn("bootstrap.database.memory", map[string]any{"reason": "connect failed", "error": err})
			return nil, nil
		}
		return nil, err
	}
	return sqlDB, nil
}

func buildRedis(ctx context.Context, cfg config.Config) (*redis.Client, error) {
	if strings.TrimSpace(cfg.RedisURL) == "" {
		return nil, nil
	}
	client, err := cache.Connect(ctx, cfg.RedisURL)
	if err != nil {
		if isDevLike(cfg.Env) {
			telemetry.Warn("bootstrap.cache.disabled", map[string]any{"error": err})
			return nil, nil
		}
		return nil, err
	}
	return client, nil
}

func buildServices(app *App) {
	if app.DB != nil {
		app.ScoresRepo = &scores.PGRepo{DB: app.DB}
		app.Health.Register("database", app.DB.PingContext)
	} else {
		app.ScoresRepo = scores.NewMemoryRepo()
	}
	if app.Redis != nil {
		app.ScoresCache = cache.NewRedisCache(app.Redis, app.Config.CacheTTL)
		app.Health.Register("redis", func(ctx context.Context) error {
			return app.Redis.Ping(ctx).Err()
		})
	}

	app.ScoresService = scores.NewService(app.Engine, app.ScoresRepo, app.ScoresCache, app.Config.BatchConcurrency)
	app.ScoresHandler = scores.NewHandler(app.ScoresService, app.Config.MaxUploadBytes)
}

func isDevLike(env string) bool {
	switch strings.ToLower(strings.TrimSpace(env)) {
	case "dev", "local", "test":
		return true
	default:
		return false
	}
}
