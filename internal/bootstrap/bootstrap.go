package bootstrap

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"shopbot/internal/catalog"
	"shopbot/internal/config"
	"shopbot/internal/database"
	"shopbot/internal/events"
	"shopbot/internal/logger"
	"shopbot/internal/shop"
	tg "shopbot/internal/telegram"
	tghelpers "shopbot/internal/telegram/helpers"
	"shopbot/internal/telegram/router"

	tele "gopkg.in/telebot.v4"
)

// App holds the wired application: storage, event publisher, and the
// conversation handlers.
type App struct {
	Config   *config.Config
	DB       *sqlx.DB
	Store    catalog.Store
	Events   events.Publisher
	Handlers *shop.Handlers
}

// Run initializes the logger, connects to Postgres, applies migrations, and
// wires the catalog store (optionally cached), the event publisher, and the
// handlers. Fails fast: any missing piece aborts startup.
func Run(cfg *config.Config) (*App, error) {
	if cfg == nil {
		return nil, fmt.Errorf("bootstrap: nil config provided")
	}

	if err := logger.InitLogger(cfg); err != nil {
		return nil, fmt.Errorf("bootstrap: logger init failed: %w", err)
	}

	db, err := database.Connect(cfg.Database)
	if err != nil {
		return nil, fmt.Errorf("bootstrap: database initialization failed: %w", err)
	}

	if err := database.RunMigrations(cfg.Database); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("bootstrap: migrations failed: %w", err)
	}

	if cfg.Database.SeedDemo {
		if err := database.SeedDemoItems(context.Background(), db); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("bootstrap: demo seed failed: %w", err)
		}
	}

	var store catalog.Store = catalog.NewPostgresStore(db)
	if cfg.Redis.Addr != "" {
		store = catalog.NewCachedStore(store, cfg.Redis)
	}

	pub := events.New(cfg.Kafka)

	return &App{
		Config:   cfg,
		DB:       db,
		Store:    store,
		Events:   pub,
		Handlers: shop.New(store, pub, cfg.Payments),
	}, nil
}

// TelegramRunOptions assembles the registry, routes, and middleware chain
// for the bot runtime.
func (a *App) TelegramRunOptions() (tg.RunOptions, error) {
	reg := tg.NewRegistry()
	if err := shop.Register(reg, a.Handlers); err != nil {
		return tg.RunOptions{}, fmt.Errorf("bootstrap: register handlers: %w", err)
	}

	onLimited := func(c tele.Context) error {
		return tghelpers.SendText(c, "Слишком много запросов, подождите немного.")
	}

	routes := router.CommandRoutes(reg)
	routes = append(routes, router.CallbackRoute(reg, router.CallbackOptions{}))
	routes = append(routes, router.TextRoutes(reg, router.TextOptions{})...)
	routes = append(routes, shop.PaymentRoutes(a.Handlers)...)

	return tg.RunOptions{
		Config:      a.Config,
		Registry:    reg,
		Middlewares: tg.DefaultMiddlewares(a.Config, onLimited),
		Routes:      routes,
	}, nil
}

// Close releases infrastructure owned by the app.
func (a *App) Close() error {
	var firstErr error
	if a.Events != nil {
		if err := a.Events.Close(); err != nil {
			firstErr = fmt.Errorf("close events publisher: %w", err)
		}
	}
	if c, ok := a.Store.(interface{ Close() error }); ok {
		if err := c.Close(); err != nil && firstErr == nil {
			firstErr = fmt.Errorf("close store: %w", err)
		}
	}
	if a.DB != nil {
		if err := a.DB.Close(); err != nil && firstErr == nil {
			firstErr = fmt.Errorf("close database: %w", err)
		}
	}
	return firstErr
}
