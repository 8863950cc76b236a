// Package postgres implements the journal.Backend interface on a PostgreSQL server.
package postgres

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/LVPlayground/gamemode/internal/config"
	"github.com/LVPlayground/gamemode/internal/database"
	gormjournal "github.com/LVPlayground/gamemode/internal/journal/gorm"

	"gorm.io/gorm"
)

// Dependencies holds all dependencies for the Postgres journal backend.
// If DB is nil, Init connects using Config.
type Dependencies struct {
	Config config.DBConfig
	DB     *gorm.DB
	Logger *slog.Logger
}

// Backend wraps the GORM backend and owns the server connection.
type Backend struct {
	*gormjournal.Backend
	deps   Dependencies
	ownsDB bool
}

// New creates a new Postgres journal backend.
func New(deps Dependencies) *Backend {
	if deps.Logger == nil {
		deps.Logger = slog.Default()
	}
	return &Backend{deps: deps}
}

// Init connects if needed and migrates the schema.
func (b *Backend) Init() error {
	if b.deps.DB == nil {
		db, err := database.OpenPostgres(b.deps.Config.DSN())
		if err != nil {
			return fmt.Errorf("failed to connect to postgres: %w", err)
		}
		sqlDB, err := db.DB()
		if err != nil {
			return fmt.Errorf("failed to access sql interface: %w", err)
		}
		if err = sqlDB.Ping(); err != nil {
			sqlDB.Close()
			return fmt.Errorf("failed to validate connection: %w", err)
		}
		sqlDB.SetMaxOpenConns(10)
		b.deps.DB = db
		b.ownsDB = true
		b.deps.Logger.Info("Connected to journal database",
			"host", b.deps.Config.Host, "database", b.deps.Config.Database)
	}

	b.Backend = gormjournal.New(gormjournal.Dependencies{DB: b.deps.DB, Logger: b.deps.Logger})
	return b.Backend.Init()
}

// Close releases the connection if Init opened it.
func (b *Backend) Close() error {
	if !b.ownsDB {
		return nil
	}
	sqlDB, err := b.deps.DB.DB()
	if err != nil {
		return err
	}
	b.ownsDB = false
	return errors.Join(b.Backend.Close(), sqlDB.Close())
}
