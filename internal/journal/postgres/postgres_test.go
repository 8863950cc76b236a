package postgres

import (
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/LVPlayground/gamemode/internal/config"
	"github.com/LVPlayground/gamemode/internal/database"
	"github.com/LVPlayground/gamemode/internal/journal"
	"github.com/LVPlayground/gamemode/internal/model"
	"github.com/LVPlayground/gamemode/pkg/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Compile-time interface check
var _ journal.Backend = (*Backend)(nil)

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestInit_Unreachable(t *testing.T) {
	b := New(Dependencies{
		Config: config.DBConfig{Host: "127.0.0.1", Port: "1", Username: "postgres", Password: "postgres", Database: "lvp"},
		Logger: quietLogger(),
	})

	err := b.Init()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "postgres")
}

func TestInit_InjectedDB(t *testing.T) {
	db, err := database.OpenSQLite("")
	require.NoError(t, err)
	t.Cleanup(func() {
		sqlDB, _ := db.DB()
		sqlDB.Close()
	})

	b := New(Dependencies{DB: db, Logger: quietLogger()})
	require.NoError(t, b.Init())

	start := time.Date(2026, 3, 1, 20, 0, 0, 0, time.UTC)
	require.NoError(t, b.StartSession(&core.Session{ID: "s1", StartTime: start}))
	require.NoError(t, b.RecordVehicle(&core.Vehicle{ID: 3, SessionID: "s1", ModelID: 560, Time: start}))

	var n int64
	require.NoError(t, db.Model(&model.Vehicle{}).Count(&n).Error)
	assert.Equal(t, int64(1), n)

	// injected connections stay open
	require.NoError(t, b.Close())
	sqlDB, err := db.DB()
	require.NoError(t, err)
	assert.NoError(t, sqlDB.Ping())
}
