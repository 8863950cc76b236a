// Package backend builds the configured journal backend.
package backend

import (
	"fmt"
	"log/slog"

	"github.com/LVPlayground/gamemode/internal/config"
	"github.com/LVPlayground/gamemode/internal/journal"
	gormjournal "github.com/LVPlayground/gamemode/internal/journal/gorm"
	"github.com/LVPlayground/gamemode/internal/journal/influx"
	"github.com/LVPlayground/gamemode/internal/journal/memory"
	"github.com/LVPlayground/gamemode/internal/journal/postgres"
	sqlitejournal "github.com/LVPlayground/gamemode/internal/journal/sqlite"
	"github.com/LVPlayground/gamemode/internal/journal/websocket"
)

// Journal backend types accepted in journal.type.
const (
	TypeMemory    = "memory"
	TypeSQLite    = "sqlite"
	TypePostgres  = "postgres"
	TypeInflux    = "influx"
	TypeWebSocket = "websocket"
)

// New creates a journal backend based on configuration. The backend is not initialized.
func New(cfg config.JournalConfig, logger *slog.Logger) (journal.Backend, error) {
	switch cfg.Type {
	case TypeMemory, "":
		return memory.New(cfg.Memory), nil
	case TypeSQLite:
		return sqlitejournal.New(cfg.SQLite, logger)
	case TypePostgres:
		return postgres.New(postgres.Dependencies{Config: cfg.Postgres, Logger: logger}), nil
	case TypeInflux:
		return influx.New(cfg.Influx, logger), nil
	case TypeWebSocket:
		return websocket.New(cfg.WebSocket, logger), nil
	default:
		return nil, fmt.Errorf("unknown journal type: %s", cfg.Type)
	}
}

var (
	_ journal.Backend  = (*memory.Backend)(nil)
	_ journal.Exporter = (*memory.Backend)(nil)
	_ journal.Backend  = (*gormjournal.Backend)(nil)
	_ journal.Backend  = (*sqlitejournal.Backend)(nil)
	_ journal.Exporter = (*sqlitejournal.Backend)(nil)
	_ journal.Backend  = (*postgres.Backend)(nil)
	_ journal.Backend  = (*influx.Backend)(nil)
	_ journal.Backend  = (*websocket.Backend)(nil)
)
