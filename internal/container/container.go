package container

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/jackc/pgx/v5/pgxpool"
	"golang.org/x/crypto/bcrypt"

	database "github.com/FACorreiaa/go-city-forecast/app/db"
	appMiddleware "github.com/FACorreiaa/go-city-forecast/app/middleware"
	"github.com/FACorreiaa/go-city-forecast/config"
	"github.com/FACorreiaa/go-city-forecast/internal/api/forecast"
	"github.com/FACorreiaa/go-city-forecast/internal/api/geocode"
	"github.com/FACorreiaa/go-city-forecast/internal/api/health"
	"github.com/FACorreiaa/go-city-forecast/internal/api/stats"
	"github.com/FACorreiaa/go-city-forecast/internal/scheduler"
	"github.com/FACorreiaa/go-city-forecast/internal/views"
)

// Container holds all application dependencies
type Container struct {
	Config          *config.Config
	Logger          *slog.Logger
	Pool            *pgxpool.Pool
	Store           geocode.Store
	Resolver        *geocode.ResolverImpl
	Credentials     *appMiddleware.CredentialStore
	ForecastHandler *forecast.HandlerImpl
	StatsHandler    *stats.HandlerImpl
	HealthHandler   *health.HandlerImpl
	Warmup          *scheduler.Warmup
}

// NewContainer initializes and returns a new dependency container
func NewContainer(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*Container, error) {
	c := &Container{Config: cfg, Logger: logger}

	store, err := c.newStore(ctx)
	if err != nil {
		c.Close()
		return nil, err
	}
	c.Store = store

	httpClient := &http.Client{}
	provider := geocode.NewOpenMeteoProvider(cfg, httpClient, logger)
	fetcher := forecast.NewOpenMeteoFetcher(cfg, httpClient, logger)

	c.Resolver = geocode.NewResolver(store, provider, logger,
		geocode.WithCollapsedMisses(cfg.Geocode.CollapseMisses))

	renderer, err := views.NewRenderer()
	if err != nil {
		c.Close()
		return nil, fmt.Errorf("failed to parse templates: %w", err)
	}

	c.Credentials, err = appMiddleware.NewCredentialStore(cfg.Stats.Users, bcrypt.DefaultCost)
	if err != nil {
		c.Close()
		return nil, fmt.Errorf("failed to load stats credentials: %w", err)
	}

	c.ForecastHandler = forecast.NewHandlerImpl(c.Resolver, fetcher, renderer, logger)
	c.StatsHandler = stats.NewHandlerImpl(c.Resolver, renderer, cfg.Stats.RecentLimit, logger)
	c.HealthHandler = health.NewHandlerImpl(c.Resolver, logger)
	c.Warmup = scheduler.New(cfg.Warmup.Cities, cfg.Warmup.Interval, c.Resolver, logger)

	return c, nil
}

// newStore builds the configured coordinate store. The postgres store is migrated and
// pinged before it is handed out.
func (c *Container) newStore(ctx context.Context) (geocode.Store, error) {
	switch c.Config.Geocode.Store {
	case config.StoreDriverMemory:
		c.Logger.Warn("Using in-memory coordinate store; cached cities are lost on restart")
		return geocode.NewMemoryCoordinateStore(c.Logger), nil
	case config.StoreDriverPostgres, "":
	default:
		return nil, fmt.Errorf("unknown geocode store %q", c.Config.Geocode.Store)
	}

	dbConfig, err := database.NewDatabaseConfig(c.Config, c.Logger)
	if err != nil {
		c.Logger.Error("Failed to generate database config", slog.Any("error", err))
		return nil, err
	}

	if err = database.RunMigrations(dbConfig.ConnectionURL, c.Logger); err != nil {
		c.Logger.Error("Failed to run database migrations", slog.Any("error", err))
		return nil, err
	}

	pool, err := database.Init(dbConfig.ConnectionURL, c.Logger)
	if err != nil {
		c.Logger.Error("Failed to initialize database pool", slog.Any("error", err))
		return nil, err
	}
	c.Pool = pool

	if !database.WaitForDB(ctx, pool, c.Logger) {
		return nil, fmt.Errorf("%w: database not ready", geocode.ErrStoreUnavailable)
	}

	return geocode.NewPostgresCoordinateStore(pool, c.Logger), nil
}

// Close releases all resources held by the container
func (c *Container) Close() {
	if c.Warmup != nil {
		c.Warmup.Stop()
	}
	if c.Pool != nil {
		c.Pool.Close()
	}
}
