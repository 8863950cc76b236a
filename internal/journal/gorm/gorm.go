// Package gormjournal implements the journal.Backend interface on top of any GORM database.
// The SQLite and Postgres backends wrap it and only add connection handling.
package gormjournal

import (
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/LVPlayground/gamemode/internal/database"
	"github.com/LVPlayground/gamemode/internal/model"
	"github.com/LVPlayground/gamemode/internal/model/convert"
	"github.com/LVPlayground/gamemode/pkg/core"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ErrNoSession is returned when records arrive before StartSession.
var ErrNoSession = errors.New("no journal session started")

// Dependencies holds all dependencies for the GORM journal backend.
type Dependencies struct {
	DB     *gorm.DB
	Logger *slog.Logger
}

// Backend writes journal records as rows.
type Backend struct {
	deps      Dependencies
	mu        sync.Mutex
	sessionID string
}

// New creates a new GORM journal backend.
func New(deps Dependencies) *Backend {
	if deps.Logger == nil {
		deps.Logger = slog.Default()
	}
	return &Backend{deps: deps}
}

// DB returns the underlying connection.
func (b *Backend) DB() *gorm.DB {
	return b.deps.DB
}

// Init migrates the schema.
func (b *Backend) Init() error {
	if b.deps.DB == nil {
		return errors.New("no database connection")
	}
	if err := database.Migrate(b.deps.DB); err != nil {
		return err
	}
	b.deps.Logger.Debug("Journal schema migrated", "dialect", b.deps.DB.Dialector.Name())
	return nil
}

// Close is a no-op; the connection belongs to the caller.
func (b *Backend) Close() error {
	return nil
}

// StartSession inserts the session row.
func (b *Backend) StartSession(session *core.Session) error {
	row := convert.CoreToSession(*session)
	if err := b.deps.DB.Create(&row).Error; err != nil {
		return fmt.Errorf("failed to insert session: %w", err)
	}

	b.mu.Lock()
	b.sessionID = session.ID
	b.mu.Unlock()
	return nil
}

// EndSession stamps the end time on the session row.
func (b *Backend) EndSession(end time.Time) error {
	id, err := b.currentSession()
	if err != nil {
		return err
	}
	err = b.deps.DB.Model(&model.Session{}).Where("id = ?", id).Update("end_time", end).Error
	if err != nil {
		return fmt.Errorf("failed to end session: %w", err)
	}
	return nil
}

// RecordVehicle inserts a vehicle snapshot row.
func (b *Backend) RecordVehicle(v *core.Vehicle) error {
	if _, err := b.currentSession(); err != nil {
		return err
	}
	row := convert.CoreToVehicle(*v)
	if err := b.deps.DB.Omit(clause.Associations).Create(&row).Error; err != nil {
		return fmt.Errorf("failed to insert vehicle %d: %w", v.ID, err)
	}
	return nil
}

// RecordEvent inserts an event row.
func (b *Backend) RecordEvent(e *core.VehicleEvent) error {
	if _, err := b.currentSession(); err != nil {
		return err
	}
	row := convert.CoreToVehicleEvent(*e)
	if err := b.deps.DB.Omit(clause.Associations).Create(&row).Error; err != nil {
		return fmt.Errorf("failed to insert %s event for vehicle %d: %w", e.Type, e.VehicleID, err)
	}
	return nil
}

func (b *Backend) currentSession() (string, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.sessionID == "" {
		return "", ErrNoSession
	}
	return b.sessionID, nil
}
