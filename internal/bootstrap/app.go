package bootstrap

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"

	"github.com/GoSim-25-26J-441/docforge-backend/config"
	"github.com/GoSim-25-26J-441/docforge-backend/internal/auth"
	"github.com/GoSim-25-26J-441/docforge-backend/internal/exporter"
	"github.com/GoSim-25-26J-441/docforge-backend/internal/generation"
	"github.com/GoSim-25-26J-441/docforge-backend/internal/logging"
	"github.com/GoSim-25-26J-441/docforge-backend/internal/projects/domain"
	"github.com/GoSim-25-26J-441/docforge-backend/internal/projects/repository"
	"github.com/GoSim-25-26J-441/docforge-backend/internal/storage/postgres"
)

const ServiceName = "docforge-backend"

// App owns the router and every connection opened for it.
type App struct {
	Router *gin.Engine

	pool  *pgxpool.Pool
	sqlDB *sql.DB
	redis *redis.Client
}

// Build opens the configured backends and wires the HTTP router.
func Build(ctx context.Context, cfg *config.Config) (*App, error) {
	log := logging.NewLogger(ctx)
	app := &App{}

	deps := RouterDeps{
		ServiceName: ServiceName,
		Version:     cfg.App.Version,
		StorageMode: cfg.App.Storage,
		CORSOrigins: cfg.Server.CORSOrigins,

		AllowDemoUser: cfg.Firebase.AllowDemoUser,
	}

	switch cfg.App.Storage {
	case config.StoragePostgres:
		db, err := postgres.NewConnection(ctx, &cfg.Database)
		if err != nil {
			return nil, err
		}
		app.sqlDB = db
		if cfg.Database.AutoMigrate {
			if err := postgres.Migrate(ctx, db); err != nil {
				app.Close()
				return nil, fmt.Errorf("migrate: %w", err)
			}
		}

		pool, err := OpenDB(ctx, DBOptions{DSN: postgres.DSN(&cfg.Database)})
		if err != nil {
			app.Close()
			return nil, err
		}
		app.pool = pool

		deps.Store = repository.NewPostgresStore(db)
		deps.DB = pool
	default:
		log.LogWarn("bootstrap", "STORAGE=memory: projects are lost on restart")
		deps.Store = repository.NewMemoryStore()
	}

	rdb, err := OpenRedis(ctx, cfg.Redis)
	if err != nil {
		app.Close()
		return nil, err
	}
	if rdb != nil {
		app.redis = rdb
		deps.Drafts = repository.NewRedisDraftStore(rdb, cfg.Redis.DraftTTL)
		deps.Events = repository.NewRedisBroker(rdb)
	} else {
		deps.Drafts = repository.NewMemoryDraftStore(cfg.Redis.DraftTTL)
		deps.Events = repository.NewMemoryBroker()
	}

	if cfg.Firebase.AuthMode == config.AuthModeFirebase {
		client, err := auth.InitializeFirebase(ctx, &cfg.Firebase)
		if err != nil {
			app.Close()
			return nil, err
		}
		deps.Verifier = auth.NewFirebaseVerifier(client)
	} else {
		log.LogWarn("bootstrap", "AUTH_MODE=header: X-User-Id is trusted, do not expose publicly")
	}

	prompts, err := generation.LoadPrompts(cfg.Generation.PromptsPath)
	if err != nil {
		app.Close()
		return nil, err
	}
	gen, err := generation.New(ctx, cfg.Generation, prompts)
	if err != nil {
		app.Close()
		return nil, err
	}
	deps.Generator = gen

	deps.Exporter = exporter.NewRegistry(
		exporter.NewRemoteRenderer(string(domain.DocumentTypeDOCX), cfg.Export.RendererURL, cfg.Export.Timeout),
		exporter.NewRemoteRenderer(string(domain.DocumentTypePPTX), cfg.Export.RendererURL, cfg.Export.Timeout),
	)

	SetGinMode(cfg.App.Environment)
	app.Router = BuildRouter(deps)
	return app, nil
}

func (a *App) Close() {
	if a.redis != nil {
		_ = a.redis.Close()
	}
	if a.pool != nil {
		a.pool.Close()
	}
	if a.sqlDB != nil {
		_ = a.sqlDB.Close()
	}
}
