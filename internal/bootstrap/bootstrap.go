// Package bootstrap opens the pieces every dashboard binary shares: the
// database, the change feed and the document store on top of them.
package bootstrap

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	_ "github.com/lib/pq"
	"go.uber.org/zap"

	activityapp "github.com/sparkcode/dashboard/internal/application/activity"
	"github.com/sparkcode/dashboard/internal/domain/document"
	"github.com/sparkcode/dashboard/internal/infrastructure/cache"
	"github.com/sparkcode/dashboard/internal/infrastructure/config"
	"github.com/sparkcode/dashboard/internal/infrastructure/event"
	"github.com/sparkcode/dashboard/internal/infrastructure/logger"
	"github.com/sparkcode/dashboard/internal/infrastructure/migration"
	"github.com/sparkcode/dashboard/internal/infrastructure/persistence"
	"github.com/sparkcode/dashboard/migrations"
)

// Core is the storage side of a running dashboard.
type Core struct {
	Config      *config.Config
	Logger      *zap.Logger
	Database    *persistence.Database
	Feed        document.ChangeFeed
	Relay       *cache.RedisChangeRelay // nil unless redis.enabled
	Store       *persistence.GormDocumentStore
	Recorder    *activityapp.Recorder
	Credentials *persistence.GormCredentialRepository

	closers []func() error
}

// Open connects to the database, brings the schema up to date and builds
// the document store. With Redis enabled, change notices are relayed to
// other instances until ctx is done or Close is called.
func Open(ctx context.Context, cfg *config.Config, log *zap.Logger) (*Core, error) {
	gormLog := logger.NewGormLogger(log, logger.MapGormLogLevel(cfg.Log.Level),
		logger.WithSlowThreshold(cfg.Telemetry.DBSlowQueryThresh),
		logger.WithFullSQL(cfg.Telemetry.DBLogFullSQL),
	)
	db, err := persistence.NewDatabaseWithLogger(&cfg.Database, gormLog)
	if err != nil {
		return nil, err
	}
	c := &Core{Config: cfg, Logger: log, Database: db}
	c.closers = append(c.closers, db.Close)
	log.Info("Database connected", zap.String("driver", cfg.Database.Driver))

	if err := Migrate(cfg, db, log); err != nil {
		_ = c.Close()
		return nil, err
	}

	local := event.NewInMemoryChangeFeed(log)
	c.Feed = local
	var storeOpts []persistence.StoreOption
	if cfg.Redis.Enabled {
		relay, err := cache.NewRedisChangeRelay(cfg.Redis, local, cache.WithRelayLogger(log))
		if err != nil {
			_ = c.Close()
			return nil, err
		}
		c.Relay = relay
		c.Feed = relay
		storeOpts = append(storeOpts, persistence.WithOrigin(relay.Origin()))
		// Closed first so the relay stops before the database goes away.
		c.closers = append([]func() error{relay.Close}, c.closers...)
		go func() {
			if err := relay.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
				log.Error("Change relay stopped", zap.Error(err))
			}
		}()
		log.Info("Relaying change notices over Redis",
			zap.String("addr", cfg.Redis.Addr()),
			zap.String("channel", cfg.Redis.ChangeChannel),
			zap.String("origin", relay.Origin()))
	}

	c.Store = persistence.NewGormDocumentStore(db.DB, c.Feed, storeOpts...)
	c.Recorder = activityapp.NewRecorder(c.Store, log)
	c.Credentials = persistence.NewGormCredentialRepository(db.DB)
	return c, nil
}

// Migrate creates the tables. sqlite databases are auto-migrated; postgres
// runs the embedded SQL migrations over a connection of its own, since the
// migrator closes the connection it was given.
func Migrate(cfg *config.Config, db *persistence.Database, log *zap.Logger) error {
	if cfg.Database.Driver == "sqlite" {
		if err := db.AutoMigrate(); err != nil {
			return fmt.Errorf("failed to migrate sqlite database: %w", err)
		}
		return nil
	}

	sqlDB, err := sql.Open("postgres", cfg.Database.DSN())
	if err != nil {
		return fmt.Errorf("failed to open migration connection: %w", err)
	}
	m, err := migration.NewEmbedded(sqlDB, migrations.FS, log)
	if err != nil {
		_ = sqlDB.Close()
		return err
	}
	defer func() {
		if err := m.Close(); err != nil {
			log.Warn("Failed to close migrator", zap.Error(err))
		}
	}()
	return m.Up()
}

// Close releases everything Open acquired, newest first.
func (c *Core) Close() error {
	var errs []error
	for _, closeFn := range c.closers {
		if err := closeFn(); err != nil {
			errs = append(errs, err)
		}
	}
	c.closers = nil
	return errors.Join(errs...)
}
