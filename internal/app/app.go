// Package app wires configuration, storage backends, stores and the HTTP
// server together.
package app

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"github.com/artpar/starplate/internal/config"
	"github.com/artpar/starplate/internal/idgen"
	"github.com/artpar/starplate/internal/logging"
	"github.com/artpar/starplate/internal/restaurant"
	"github.com/artpar/starplate/internal/server"
	"github.com/artpar/starplate/internal/starred"
	"github.com/artpar/starplate/internal/storage"
	"github.com/artpar/starplate/internal/storage/filesystem"
	"github.com/artpar/starplate/internal/storage/memory"
	"github.com/artpar/starplate/internal/storage/postgres"
	"github.com/artpar/starplate/internal/storage/sqlite"
)

// Collection names used by the database backends.
const (
	restaurantsCollection = "restaurants"
	starredCollection     = "starredRestaurants"
)

// App is the main application container.
type App struct {
	config      *config.Config
	logger      *slog.Logger
	ids         idgen.Generator
	db          *sql.DB
	restaurants *restaurant.Store
	starred     *starred.Store
	server      *server.Server
}

// Option is a function that configures the App.
type Option func(*App)

// WithLogger sets the logger handed to every component.
func WithLogger(logger *slog.Logger) Option {
	return func(a *App) {
		a.logger = logger
	}
}

// WithIDGenerator replaces the UUID generator for both stores.
func WithIDGenerator(gen idgen.Generator) Option {
	return func(a *App) {
		a.ids = gen
	}
}

// New opens the configured backends, loads both stores and builds the
// server. The server is not started.
func New(ctx context.Context, cfg *config.Config, opts ...Option) (*App, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	a := &App{config: cfg, ids: idgen.UUID()}
	for _, opt := range opts {
		opt(a)
	}
	a.logger = logging.Default(a.logger)

	rBackend, sBackend, err := a.openBackends(ctx)
	if err != nil {
		return nil, err
	}

	a.restaurants, err = restaurant.Open(ctx, rBackend,
		restaurant.WithIDGenerator(a.ids),
		restaurant.WithLogger(a.logger),
	)
	if err != nil {
		rBackend.Close()
		sBackend.Close()
		a.closeDB()
		return nil, err
	}

	a.starred, err = starred.Open(ctx, sBackend, a.restaurants,
		starred.WithIDGenerator(a.ids),
		starred.WithLogger(a.logger),
	)
	if err != nil {
		a.restaurants.Close()
		sBackend.Close()
		a.closeDB()
		return nil, err
	}

	a.server = server.New(a.restaurants, a.starred, a.logger,
		server.WithListenAddr(cfg.ListenAddr),
		server.WithMetrics(cfg.MetricsEnabled()),
		server.WithRateLimit(cfg.RateLimit, cfg.Burst()),
	)

	a.logger.Info("app ready", "backend", cfg.Backend)
	return a, nil
}

func (a *App) openBackends(ctx context.Context) (storage.Backend[restaurant.Restaurant], storage.Backend[starred.Record], error) {
	cfg := a.config

	switch cfg.Backend {
	case config.BackendMemory:
		return memory.New[restaurant.Restaurant](), memory.New[starred.Record](), nil

	case config.BackendSQLite:
		db, err := sqlite.Open(cfg.SQLiteFile())
		if err != nil {
			return nil, nil, err
		}
		a.db = db
		r, err := sqlite.NewWithDB[restaurant.Restaurant](db, restaurantsCollection, a.logger)
		if err != nil {
			a.closeDB()
			return nil, nil, err
		}
		s, err := sqlite.NewWithDB[starred.Record](db, starredCollection, a.logger)
		if err != nil {
			a.closeDB()
			return nil, nil, err
		}
		return r, s, nil

	case config.BackendPostgres:
		db, err := postgres.Open(ctx, cfg.PostgresDSN)
		if err != nil {
			return nil, nil, err
		}
		a.db = db
		r, err := postgres.NewWithDB[restaurant.Restaurant](ctx, db, restaurantsCollection)
		if err != nil {
			a.closeDB()
			return nil, nil, err
		}
		s, err := postgres.NewWithDB[starred.Record](ctx, db, starredCollection)
		if err != nil {
			a.closeDB()
			return nil, nil, err
		}
		return r, s, nil

	default:
		opts := []filesystem.Option{
			filesystem.WithAtomicWrites(cfg.AtomicWrites),
			filesystem.WithLogger(a.logger),
		}
		r, err := filesystem.NewJSONStore[restaurant.Restaurant](cfg.RestaurantsPath(), opts...)
		if err != nil {
			return nil, nil, err
		}
		s, err := filesystem.NewJSONStore[starred.Record](cfg.StarredPath(), opts...)
		if err != nil {
			r.Close()
			return nil, nil, err
		}
		return r, s, nil
	}
}

// Config returns the application configuration.
func (a *App) Config() *config.Config {
	return a.config
}

// Restaurants returns the restaurant store.
func (a *App) Restaurants() *restaurant.Store {
	return a.restaurants
}

// Starred returns the starred store.
func (a *App) Starred() *starred.Store {
	return a.starred
}

// Server returns the HTTP server.
func (a *App) Server() *server.Server {
	return a.server
}

// Close stops the server and closes the stores and any shared database.
func (a *App) Close() error {
	var errs []error
	if err := a.server.Stop(); err != nil {
		errs = append(errs, err)
	}
	if err := a.starred.Close(); err != nil {
		errs = append(errs, err)
	}
	if err := a.restaurants.Close(); err != nil {
		errs = append(errs, err)
	}
	if err := a.closeDB(); err != nil {
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}

func (a *App) closeDB() error {
	if a.db == nil {
		return nil
	}
	err := a.db.Close()
	a.db = nil
	return err
}
