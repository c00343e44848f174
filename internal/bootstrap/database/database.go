package database

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	gormsqlite "github.com/glebarez/sqlite"
	gormpostgres "gorm.io/driver/postgres"
	"gorm.io/gorm"

	"triviahub/internal/bootstrap/config"
	"triviahub/internal/bootstrap/logging"
	"triviahub/internal/errs"
)

// ErrDatabaseNameRequired means DB_NAME was absent when a pool was requested.
var ErrDatabaseNameRequired = errors.New("DB_NAME is not set in environment/.env")

// Registry hands out one lazily-opened connection pool per logical database
// name. It replaces a package-global singleton so tests can build their own
// registry against alternate targets.
type Registry struct {
	mu    sync.Mutex
	pools map[string]*gorm.DB
}

func NewRegistry() *Registry {
	return &Registry{pools: make(map[string]*gorm.DB)}
}

func (r *Registry) Get(ctx context.Context, cfg config.DatabaseConfig) (*gorm.DB, error) {
	if ctx == nil {
		return nil, errors.New("context is required")
	}

	name := strings.TrimSpace(cfg.Name)
	if name == "" {
		return nil, ErrDatabaseNameRequired
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if db, ok := r.pools[name]; ok {
		return db, nil
	}

	db, err := open(ctx, cfg, name)
	if err != nil {
		return nil, errs.Wrapf(err, "open database %q", name)
	}

	r.pools[name] = db
	return db, nil
}

// Close closes every pool the registry has opened.
func (r *Registry) Close(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	var firstErr error
	for name, db := range r.pools {
		sqlDB, err := db.DB()
		if err == nil {
			err = sqlDB.Close()
		}
		if err != nil && firstErr == nil {
			firstErr = errs.Wrapf(err, "close database %q", name)
		}
		delete(r.pools, name)
	}

	if firstErr == nil {
		logging.Info(logging.WithAttrs(ctx, slog.String("component", "bootstrap.database")), "database pools closed")
	}
	return firstErr
}

func open(ctx context.Context, cfg config.DatabaseConfig, name string) (*gorm.DB, error) {
	if err := ctx.Err(); err != nil {
		return nil, errs.Wrap(err, "check context")
	}

	logCtx := logging.WithAttrs(ctx, slog.String("component", "bootstrap.database"))

	switch strings.ToLower(strings.TrimSpace(cfg.Driver)) {
	case "", "postgres", "postgresql":
		db, err := gorm.Open(gormpostgres.Open(postgresDSN(cfg, name)), &gorm.Config{})
		if err != nil {
			return nil, errs.Wrap(err, "open postgres db")
		}
		logging.Info(logCtx, "database opened",
			slog.String("driver", "postgres"),
			slog.String("host", cfg.Host),
			slog.String("name", name),
		)
		return db, nil
	case "sqlite", "sqlite3":
		db, err := gorm.Open(gormsqlite.Open(name), &gorm.Config{})
		if err != nil {
			return nil, errs.Wrap(err, "open sqlite db")
		}
		logging.Info(logCtx, "database opened", slog.String("driver", "sqlite"), slog.String("dsn", name))
		return db, nil
	default:
		return nil, fmt.Errorf("unsupported database driver %q", cfg.Driver)
	}
}

func postgresDSN(cfg config.DatabaseConfig, name string) string {
	return fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=disable",
		cfg.Host, cfg.Port, cfg.User, cfg.Password, name,
	)
}
