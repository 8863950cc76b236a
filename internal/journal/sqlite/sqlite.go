// Package sqlitejournal implements the journal.Backend interface using an in-memory
// SQLite database with periodic disk dumps via VACUUM INTO.
// It wraps the GORM backend; the only SQLite-specific concerns are creating the
// in-memory DB and dumping it to disk.
package sqlitejournal

import (
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/LVPlayground/gamemode/internal/config"
	"github.com/LVPlayground/gamemode/internal/database"
	gormjournal "github.com/LVPlayground/gamemode/internal/journal/gorm"

	"gorm.io/gorm"
)

// Backend wraps the GORM backend for SQLite-specific behavior.
type Backend struct {
	*gormjournal.Backend
	db     *gorm.DB
	cfg    config.SQLiteConfig
	logger *slog.Logger

	stopChan  chan struct{}
	done      chan struct{}
	closeOnce sync.Once

	mu       sync.Mutex
	lastDump string
}

// New creates a new SQLite journal backend.
func New(cfg config.SQLiteConfig, logger *slog.Logger) (*Backend, error) {
	if logger == nil {
		logger = slog.Default()
	}
	db, err := database.OpenSQLite("")
	if err != nil {
		return nil, fmt.Errorf("failed to create in-memory SQLite DB: %w", err)
	}

	return &Backend{
		Backend:  gormjournal.New(gormjournal.Dependencies{DB: db, Logger: logger}),
		db:       db,
		cfg:      cfg,
		logger:   logger,
		stopChan: make(chan struct{}),
	}, nil
}

// Init migrates the schema and starts the dump goroutine.
func (b *Backend) Init() error {
	if err := b.Backend.Init(); err != nil {
		return err
	}

	if b.cfg.DumpPath != "" && b.cfg.DumpInterval > 0 {
		b.done = make(chan struct{})
		go b.dumpLoop()
	}
	return nil
}

// Close stops the dump goroutine, writes a final dump and releases the database.
func (b *Backend) Close() error {
	var err error
	b.closeOnce.Do(func() {
		close(b.stopChan)
		if b.done != nil {
			<-b.done
		}

		var errs []error
		if b.cfg.DumpPath != "" {
			errs = append(errs, b.dump())
		}
		sqlDB, dbErr := b.db.DB()
		if dbErr == nil {
			dbErr = sqlDB.Close()
		}
		errs = append(errs, dbErr)
		err = errors.Join(errs...)
	})
	return err
}

// ExportedFilePath returns the path of the last successful dump.
func (b *Backend) ExportedFilePath() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.lastDump
}

func (b *Backend) dump() error {
	start := time.Now()
	if err := database.DumpMemoryDBToDisk(b.db, b.cfg.DumpPath); err != nil {
		b.logger.Error("Error dumping journal to disk", "error", err)
		return err
	}
	b.mu.Lock()
	b.lastDump = b.cfg.DumpPath
	b.mu.Unlock()
	b.logger.Debug("Dumped journal to disk", "path", b.cfg.DumpPath, "duration", time.Since(start))
	return nil
}

// dumpLoop periodically dumps the in-memory database. VACUUM INTO is a point-in-time
// snapshot, so writers keep going while it runs.
func (b *Backend) dumpLoop() {
	defer close(b.done)

	ticker := time.NewTicker(b.cfg.DumpInterval)
	defer ticker.Stop()

	for {
		select {
		case <-b.stopChan:
			return
		case <-ticker.C:
			_ = b.dump()
		}
	}
}
