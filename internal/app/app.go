package app

import (
	"context"
	"fmt"
	"time"

	"github.com/gin-gonic/gin"

	redisclient "github.com/yungbote/praxis-backend/internal/clients/redis"
	"github.com/yungbote/praxis-backend/internal/curriculum"
	"github.com/yungbote/praxis-backend/internal/data/graph"
	"github.com/yungbote/praxis-backend/internal/observability"
	"github.com/yungbote/praxis-backend/internal/platform/envutil"
	"github.com/yungbote/praxis-backend/internal/platform/groq"
	"github.com/yungbote/praxis-backend/internal/platform/logger"
	"github.com/yungbote/praxis-backend/internal/platform/neo4jdb"
	"github.com/yungbote/praxis-backend/internal/services"
)

type App struct {
	Log      *logger.Logger
	Cfg      Config
	Neo4j    *neo4jdb.Client
	Cache    *redisclient.ConceptCache
	Graph    *graph.Store
	Services Services
	Router   *gin.Engine

	shutdownOTel func(context.Context) error
}

func New(ctx context.Context) (*App, error) {
	logMode := envutil.Str("LOG_MODE", "development")
	log, err := logger.New(logMode)
	if err != nil {
		return nil, fmt.Errorf("init logger: %w", err)
	}

	log.Info("Loading environment variables...")
	cfg := LoadConfig(log)

	if cfg.Mode == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	shutdownOTel := observability.InitOTel(ctx, log, observability.OtelConfig{
		ServiceName: "praxis-backend",
		Environment: cfg.Environment,
		Version:     cfg.Version,
	})

	neo4jClient, err := neo4jdb.WaitFromEnv(ctx, log,
		envutil.Int("NEO4J_CONNECT_ATTEMPTS", 10),
		time.Duration(envutil.Int("NEO4J_CONNECT_DELAY_SECONDS", 3))*time.Second)
	if err != nil {
		log.Sync()
		return nil, fmt.Errorf("init neo4j: %w", err)
	}

	store := graph.NewStore(neo4jClient, log)
	if err := store.EnsureSchema(ctx); err != nil {
		log.Sync()
		return nil, fmt.Errorf("ensure graph schema: %w", err)
	}

	if cfg.SeedOnStart {
		if err := seedCurriculum(ctx, log, store); err != nil {
			log.Sync()
			return nil, fmt.Errorf("seed curriculum: %w", err)
		}
	}

	groqClient, err := groq.NewFromEnv(log)
	if err != nil {
		log.Sync()
		return nil, fmt.Errorf("init groq: %w", err)
	}

	cache, err := redisclient.NewConceptCacheFromEnv(log)
	if err != nil {
		// The resolver works without the name cache, just slower.
		log.Warn("redis concept cache unavailable (continuing without it)", "error", err)
		cache = nil
	}

	serviceset := wireServices(log, cfg, store, services.NewGroqGenerator(groqClient), cache)
	handlerset := wireHandlers(log, store, serviceset)
	router := wireRouter(log, handlerset)

	return &App{
		Log:          log,
		Cfg:          cfg,
		Neo4j:        neo4jClient,
		Cache:        cache,
		Graph:        store,
		Services:     serviceset,
		Router:       router,
		shutdownOTel: shutdownOTel,
	}, nil
}

func seedCurriculum(ctx context.Context, log *logger.Logger, store *graph.Store) error {
	ds, err := curriculum.Load()
	if err != nil {
		return err
	}
	return curriculum.NewSeeder(store, log).Seed(ctx, ds)
}

func (a *App) Run(addr string) error {
	if a == nil || a.Router == nil {
		return fmt.Errorf("app not initialized")
	}
	return a.Router.Run(addr)
}

func (a *App) Close(ctx context.Context) {
	if a == nil {
		return
	}
	if a.shutdownOTel != nil {
		if err := a.shutdownOTel(ctx); err != nil {
			a.Log.Warn("otel shutdown failed", "error", err)
		}
	}
	if a.Cache != nil {
		if err := a.Cache.Close(); err != nil {
			a.Log.Warn("redis close failed", "error", err)
		}
	}
	if a.Neo4j != nil {
		if err := a.Neo4j.Close(ctx); err != nil {
			a.Log.Warn("neo4j close failed", "error", err)
		}
	}
	if a.Log != nil {
		a.Log.Sync()
	}
}
