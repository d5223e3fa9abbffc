package container

import (
	"context"
	"errors"
	"fmt"
	"time"

	"bookshelf-api/internal/config"
	"bookshelf-api/internal/domains/book/handler"
	"bookshelf-api/internal/domains/book/repository"
	"bookshelf-api/internal/domains/book/service"
	infraCache "bookshelf-api/internal/infrastructure/cache"
	"bookshelf-api/internal/infrastructure/database"
	"bookshelf-api/internal/infrastructure/mongodb"
	"bookshelf-api/internal/shared/middleware"
	"bookshelf-api/pkg/cache"
	"bookshelf-api/pkg/logger"

	"github.com/rs/zerolog/log"
)

// Container wires config -> infrastructure -> repositories -> services -> handlers.
type Container struct {
	Config *config.Config

	// Exactly one of Mongo / DB is set, depending on STORE_DRIVER.
	Mongo *mongodb.Client
	DB    *database.PostgresDB

	Redis *infraCache.RedisClient
	Cache cache.Cache

	RateLimiter *middleware.RateLimiter

	BookRepo    repository.RepositoryInterface
	BookService service.ServiceInterface
	BookHandler *handler.Handler
}

func NewContainer(ctx context.Context) (*Container, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	logger.Init(cfg.App.Environment, cfg.App.LogLevel)
	log.Info().
		Str("env", cfg.App.Environment).
		Str("store", cfg.Store.Driver).
		Msg("Initializing DI container")

	c := &Container{Config: cfg}

	if err := c.initStore(ctx); err != nil {
		c.Cleanup()
		return nil, err
	}
	c.initCache(ctx)

	c.initRepositories()
	c.initServices()
	c.initHandlers()

	c.RateLimiter = middleware.NewRateLimiter(cfg.HTTP.RateLimitRPS, cfg.HTTP.RateLimitBurst)

	log.Info().Msg("DI container initialized")
	return c, nil
}

func (c *Container) initStore(ctx context.Context) error {
	connectCtx, cancel := context.WithTimeout(ctx, 60*time.Second)
	defer cancel()

	switch c.Config.Store.Driver {
	case config.StoreDriverPostgres:
		pg := c.Config.Postgres
		db := database.NewPostgresDB(&database.DBConfig{
			Host:              pg.Host,
			Port:              pg.Port,
			Username:          pg.User,
			Password:          pg.Password,
			DBName:            pg.Database,
			SSLMode:           pg.SSLMode,
			MaxConns:          pg.MaxConns,
			MinConns:          pg.MinConns,
			MaxConnLifetime:   pg.MaxConnLifetime,
			MaxConnIdleTime:   pg.MaxConnIdleTime,
			HealthCheckPeriod: pg.HealthCheckPeriod,
			MaxRetries:        pg.MaxRetries,
			RetryDelay:        pg.RetryDelay,
			ConnectTimeout:    pg.ConnectTimeout,
		})
		if err := db.Connect(connectCtx); err != nil {
			return fmt.Errorf("failed to connect to database: %w", err)
		}
		c.DB = db

		if err := db.EnsureSchema(connectCtx); err != nil {
			return err
		}

	default:
		m := c.Config.Mongo
		client := mongodb.NewClient(mongodb.Config{
			URI:            m.URI,
			Database:       m.Database,
			MaxPoolSize:    m.MaxPoolSize,
			ConnectTimeout: m.ConnectTimeout,
			MaxRetries:     m.MaxRetries,
			RetryDelay:     m.RetryDelay,
		})
		if err := client.Connect(connectCtx); err != nil {
			return fmt.Errorf("failed to connect to mongodb: %w", err)
		}
		c.Mongo = client

		if err := client.EnsureIndexes(connectCtx, m.Collection); err != nil {
			return err
		}
	}
	return nil
}

// initCache falls back to a no-op cache when Redis is disabled or unreachable.
func (c *Container) initCache(ctx context.Context) {
	c.Cache = infraCache.NoopCache{}

	if !c.Config.Redis.Enabled {
		log.Info().Msg("[REDIS] Disabled, using no-op cache")
		return
	}

	rc := infraCache.NewRedisClient(c.Config.Redis.Host, c.Config.Redis.Password, c.Config.Redis.DB)
	if err := rc.Connect(ctx); err != nil {
		log.Warn().Err(err).Msg("[REDIS] Connection failed (non-critical), using no-op cache")
		_ = rc.Close()
		return
	}

	c.Redis = rc
	c.Cache = infraCache.NewRedisCache(rc.Client)
}

func (c *Container) initRepositories() {
	timeout := c.Config.Store.QueryTimeout

	if c.DB != nil {
		c.BookRepo = repository.NewPostgresRepository(c.DB.Pool, timeout)
		return
	}
	c.BookRepo = repository.NewMongoRepository(c.Mongo.Collection(c.Config.Mongo.Collection), timeout)
}

func (c *Container) initServices() {
	c.BookService = service.NewService(c.BookRepo, c.Cache, c.Config.Redis.CacheTTL)
}

func (c *Container) initHandlers() {
	c.BookHandler = handler.NewHandler(c.BookService)
}

// CheckStore pings whichever document store is configured.
func (c *Container) CheckStore(ctx context.Context) error {
	switch {
	case c.Mongo != nil:
		return c.Mongo.HealthCheck(ctx)
	case c.DB != nil:
		return c.DB.HealthCheck(ctx)
	default:
		return errors.New("no document store connected")
	}
}

func (c *Container) Cleanup() {
	log.Info().Msg("Cleaning up container resources")

	if c.DB != nil {
		if err := c.DB.Close(); err != nil {
			log.Warn().Err(err).Msg("Failed to close database")
		}
	}

	if c.Mongo != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := c.Mongo.Close(ctx); err != nil {
			log.Warn().Err(err).Msg("Failed to disconnect mongodb")
		}
	}

	if c.Redis != nil {
		if err := c.Redis.Close(); err != nil {
			log.Warn().Err(err).Msg("Failed to close Redis")
		}
	}
}
