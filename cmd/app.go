/*
Package cmd wires the application together: configuration, logging, database,
cache, event bus, unit of work, repositories and the application services.
*/
package cmd

import (
	"context"
	"fmt"
	"time"

	exchangeapp "finmarket/application/exchange"
	orderapp "finmarket/application/order"
	portfolioapp "finmarket/application/portfolio"
	"finmarket/config"
	exchangedomain "finmarket/domain/exchange"
	orderdomain "finmarket/domain/order"
	portfoliodomain "finmarket/domain/portfolio"
	"finmarket/domain/shared"
	"finmarket/infrastructure/audit"
	"finmarket/infrastructure/caching"
	"finmarket/infrastructure/eventstore"
	"finmarket/infrastructure/identity"
	"finmarket/infrastructure/persistence"
	"finmarket/pkg/logger"

	goredis "github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// App is the composed application.
type App struct {
	cfg      *config.Config
	db       *gorm.DB
	redis    *goredis.Client
	Bus      *shared.EventBus
	Cache    caching.Cache
	Policies *shared.CachePolicies
	Tracker  *persistence.ChangeTracker
	UoW      *persistence.UnitOfWork

	Orders     *orderapp.Service
	Portfolios *portfolioapp.Service
	Exchanges  *exchangeapp.Service

	// SourcedOrders is the event-sourced persistence path for orders, backed
	// by the relational event store.
	SourcedOrders *eventstore.SourcedOrders
}

// NewApp builds the application from config. Reads of the types registered in
// the policy registry go through the caching decorator; Order stays uncached.
func NewApp(ctx context.Context, cfg *config.Config) (*App, error) {
	if err := logger.Init(&cfg.Log, cfg.App.Env); err != nil {
		return nil, fmt.Errorf("init logger: %w", err)
	}
	logger.Info("Starting application",
		zap.String("app", cfg.App.Name),
		zap.String("version", cfg.App.Version),
		zap.String("env", cfg.App.Env))

	db, err := persistence.Connect(&cfg.Database, cfg.Log.Level)
	if err != nil {
		return nil, err
	}
	models := []any{
		&orderdomain.Order{},
		&portfoliodomain.Stock{},
		&portfoliodomain.Bond{},
		&portfoliodomain.Portfolio{},
		&exchangedomain.Exchange{},
		&shared.AuditLog{},
	}
	models = append(models, eventstore.Migrations()...)
	if err := db.AutoMigrate(models...); err != nil {
		return nil, fmt.Errorf("migrate schema: %w", err)
	}

	app := &App{cfg: cfg, db: db}

	if err := app.initCache(ctx); err != nil {
		return nil, err
	}

	app.Policies = shared.NewCachePolicies()
	if err := app.Policies.Register(portfoliodomain.StockEntityName, 10*time.Minute); err != nil {
		return nil, err
	}
	if err := app.Policies.Register(portfoliodomain.BondEntityName, 10*time.Minute); err != nil {
		return nil, err
	}
	if err := app.Policies.Register(portfoliodomain.PortfolioEntityName, 15*time.Minute); err != nil {
		return nil, err
	}
	if err := app.Policies.Register(exchangedomain.EntityName, 30*time.Minute); err != nil {
		return nil, err
	}

	app.Bus = shared.NewEventBus()
	if err := caching.RegisterInvalidation(app.Bus, app.Cache); err != nil {
		return nil, err
	}

	auditStore, err := app.buildAuditStore(ctx)
	if err != nil {
		return nil, err
	}

	app.Tracker = persistence.NewChangeTracker()
	app.UoW = persistence.NewUnitOfWork(db, app.Tracker, app.Bus, auditStore,
		identity.NewContextActorProvider(), app.Policies)
	app.UoW.AuditFailClosed = cfg.Audit.FailClosed

	orders := persistence.NewGormRepository[*orderdomain.Order](db, orderdomain.EntityName, app.Tracker)
	app.Orders = orderapp.NewService(orders, app.UoW)

	stocks := decorateRepo[*portfoliodomain.Stock](app,
		persistence.NewGormRepository[*portfoliodomain.Stock](db, portfoliodomain.StockEntityName, app.Tracker),
		portfoliodomain.StockEntityName)
	bonds := decorateRepo[*portfoliodomain.Bond](app,
		persistence.NewGormRepository[*portfoliodomain.Bond](db, portfoliodomain.BondEntityName, app.Tracker),
		portfoliodomain.BondEntityName)
	portfolios := decorateRepo[*portfoliodomain.Portfolio](app,
		persistence.NewGormRepository[*portfoliodomain.Portfolio](db, portfoliodomain.PortfolioEntityName, app.Tracker),
		portfoliodomain.PortfolioEntityName)
	app.Portfolios = portfolioapp.NewService(stocks, bonds, portfolios, app.UoW)

	exchanges := decorateRepo[*exchangedomain.Exchange](app,
		persistence.NewGormRepository[*exchangedomain.Exchange](db, exchangedomain.EntityName, app.Tracker),
		exchangedomain.EntityName)
	app.Exchanges = exchangeapp.NewService(exchanges, app.UoW)

	codec := eventstore.NewCodec(orderdomain.EventDecoders())
	app.SourcedOrders = eventstore.NewSourcedOrders(eventstore.NewGormEventStore(db, codec))

	return app, nil
}

// decorate wraps a repository with the caching decorator when its type
// carries a policy and caching is enabled.
func decorateRepo[T shared.Entity](app *App, inner shared.Repository[T], entityName string) shared.Repository[T] {
	if !app.cfg.Cache.Enabled {
		return inner
	}
	policy, ok := app.Policies.Lookup(entityName)
	if !ok {
		return inner
	}
	cached := caching.NewCachedRepository[T](inner, app.Cache, policy)
	if app.cfg.Cache.FallbackOnError {
		cached.WithFallbackOnError()
	}
	return cached
}

func (a *App) initCache(ctx context.Context) error {
	if a.cfg.Cache.Type == "redis" {
		client, err := caching.NewRedisClient(ctx, &a.cfg.Cache)
		if err != nil {
			return err
		}
		a.redis = client
		a.Cache = caching.NewRedisCache(client, a.cfg.Cache.KeyPrefix)
		return nil
	}
	a.Cache = caching.NewMemoryCache()
	return nil
}

func (a *App) buildAuditStore(ctx context.Context) (shared.AuditLogStore, error) {
	switch a.cfg.Audit.Store {
	case "database":
		return audit.NewGormStore(a.db), nil
	case "file":
		return audit.NewFileStore(a.cfg.Audit.FilePath), nil
	case "stream":
		if a.redis == nil {
			client, err := caching.NewRedisClient(ctx, &a.cfg.Cache)
			if err != nil {
				return nil, fmt.Errorf("audit stream needs redis: %w", err)
			}
			a.redis = client
		}
		return audit.NewStreamStore(a.redis, a.cfg.Audit.Stream), nil
	default:
		return audit.NewNoopStore(), nil
	}
}

// Close releases the unit of work, the redis client and the database pool.
func (a *App) Close() error {
	if a.UoW != nil {
		a.UoW.Close()
	}
	if a.redis != nil {
		a.redis.Close()
	}
	if a.db != nil {
		if sqlDB, err := a.db.DB(); err == nil {
			sqlDB.Close()
		}
	}
	return logger.Sync()
}
