package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/mx-space/summarizer/internal/config"
	"github.com/mx-space/summarizer/internal/database"
	"github.com/mx-space/summarizer/internal/middleware"
	"github.com/mx-space/summarizer/internal/modules/processing/ai"
	"github.com/mx-space/summarizer/internal/modules/processing/summarycache"
	"github.com/mx-space/summarizer/internal/modules/system/health"
	"github.com/mx-space/summarizer/internal/pkg/jwt"
	pkgredis "github.com/mx-space/summarizer/internal/pkg/redis"
	"go.opentelemetry.io/otel"
	"go.uber.org/zap"
)

const tracerName = "github.com/mx-space/summarizer"

// App holds all application dependencies.
type App struct {
	cfg    *config.AppConfig
	router *gin.Engine
	logger *zap.Logger
	redis  *pkgredis.Client
	db     *database.DB
	engine *summarycache.Engine
	signer *jwt.Signer
}

// deps are the collaborators the router is assembled from.
type deps struct {
	redis     *pkgredis.Client
	records   summarycache.DurableTier
	mongo     health.Pinger
	generator summarycache.Generator
	state     health.StateReporter
}

// New initializes the application: config → Redis → MongoDB → engine → routes.
func New(ctx context.Context, logger *zap.Logger, cfg *config.AppConfig) (*App, error) {
	if cfg == nil {
		return nil, errors.New("config is nil")
	}
	applyRuntimeSettings(cfg, logger)

	summarizer, err := ai.NewSummarizer(cfg.AI, logger.Named("ai"))
	if err != nil {
		return nil, fmt.Errorf("ai: %w", err)
	}

	rc, err := pkgredis.Connect(cfg.RedisURL)
	if err != nil {
		return nil, fmt.Errorf("redis: %w", err)
	}

	db, err := database.Connect(ctx, cfg, true)
	if err != nil {
		_ = rc.Close()
		return nil, fmt.Errorf("database: %w", err)
	}

	app, err := assemble(cfg, logger, deps{
		redis:     rc,
		records:   db.Records(),
		mongo:     db,
		generator: summarizer,
		state:     summarizer,
	})
	if err != nil {
		_ = rc.Close()
		_ = db.Close(context.Background())
		return nil, err
	}
	app.db = db
	return app, nil
}

func assemble(cfg *config.AppConfig, logger *zap.Logger, d deps) (*App, error) {
	engine, err := summarycache.New(d.redis, d.records, d.generator,
		summarycache.WithTTL(cfg.CacheTTL()),
		summarycache.WithKeyPrefix(cfg.Cache.KeyPrefix),
		summarycache.WithCoalescing(cfg.Cache.Coalesce),
		summarycache.WithLogger(logger.Named("summarycache")),
		summarycache.WithTracer(otel.Tracer(tracerName)),
	)
	if err != nil {
		return nil, fmt.Errorf("summary engine: %w", err)
	}

	configureGin(cfg)
	router := gin.New()
	router.HandleMethodNotAllowed = true
	router.Use(gin.Recovery())
	router.Use(middleware.RequestID())
	router.Use(middleware.Tracing(otel.Tracer(tracerName), otel.GetTextMapPropagator()))
	router.Use(middleware.Logger(logger))
	router.Use(cors.New(corsConfig(cfg)))

	app := &App{
		cfg:    cfg,
		router: router,
		logger: logger,
		redis:  d.redis,
		engine: engine,
		signer: jwt.New(cfg.JWTSecret),
	}
	app.registerRoutes(d)
	return app, nil
}

// Addr returns the listen address.
func (a *App) Addr() string { return fmt.Sprintf(":%d", a.cfg.Port) }

// Router returns the HTTP handler.
func (a *App) Router() http.Handler { return a.router }

// Shutdown closes the backing store connections.
func (a *App) Shutdown(ctx context.Context) error {
	var errs []error
	if a.db != nil {
		if err := a.db.Close(ctx); err != nil {
			errs = append(errs, fmt.Errorf("database: %w", err))
		}
	}
	if a.redis != nil {
		if err := a.redis.Close(); err != nil {
			errs = append(errs, fmt.Errorf("redis: %w", err))
		}
	}
	return errors.Join(errs...)
}
