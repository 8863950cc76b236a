package memory

import (
	"compress/gzip"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/LVPlayground/gamemode/internal/config"
	"github.com/LVPlayground/gamemode/pkg/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var start = time.Date(2026, 3, 1, 20, 15, 0, 0, time.UTC)

func ptr[T any](v T) *T { return &v }

func newSession() *core.Session {
	return &core.Session{ID: "s1", ServerName: "LVP Test: Main", StartTime: start, Version: "dev"}
}

func populate(t *testing.T, b *Backend) {
	t.Helper()
	require.NoError(t, b.StartSession(newSession()))
	require.NoError(t, b.RecordVehicle(&core.Vehicle{ID: 1, SessionID: "s1", ModelID: 403}))
	require.NoError(t, b.RecordVehicle(&core.Vehicle{ID: 2, SessionID: "s1", ModelID: 435}))
	require.NoError(t, b.RecordEvent(&core.VehicleEvent{SessionID: "s1", Type: core.EventCreated, VehicleID: 1}))
	require.NoError(t, b.RecordEvent(&core.VehicleEvent{SessionID: "s1", Type: core.EventAttached, VehicleID: 1, TrailerID: ptr(uint16(2))}))
	require.NoError(t, b.RecordEvent(&core.VehicleEvent{SessionID: "s1", Type: core.EventSpawn, VehicleID: 9}))
}

func TestRecordBeforeSession(t *testing.T) {
	b := New(config.MemoryConfig{})
	require.NoError(t, b.Init())

	assert.ErrorIs(t, b.RecordVehicle(&core.Vehicle{ID: 1}), ErrNoSession)
	assert.ErrorIs(t, b.RecordEvent(&core.VehicleEvent{VehicleID: 1}), ErrNoSession)
	assert.ErrorIs(t, b.EndSession(start), ErrNoSession)
}

func TestRecordEvent_IndexesBothVehicles(t *testing.T) {
	b := New(config.MemoryConfig{})
	populate(t, b)

	tower, ok := b.GetVehicle(1)
	require.True(t, ok)
	assert.Equal(t, 403, tower.Vehicle.ModelID)
	require.Len(t, tower.Events, 2)
	assert.Equal(t, core.EventCreated, tower.Events[0].Type)
	assert.Equal(t, core.EventAttached, tower.Events[1].Type)

	trailer, ok := b.GetVehicle(2)
	require.True(t, ok)
	require.Len(t, trailer.Events, 1)
	assert.Equal(t, core.EventAttached, trailer.Events[0].Type)

	_, ok = b.GetVehicle(9)
	assert.False(t, ok, "events for unknown vehicles are kept only in the session log")
	assert.Len(t, b.Events(), 3)
}

func TestRecordVehicle_ReusedID(t *testing.T) {
	b := New(config.MemoryConfig{})
	require.NoError(t, b.StartSession(newSession()))

	require.NoError(t, b.RecordVehicle(&core.Vehicle{ID: 1, ModelID: 411}))
	require.NoError(t, b.RecordEvent(&core.VehicleEvent{Type: core.EventDisposed, VehicleID: 1}))
	require.NoError(t, b.RecordVehicle(&core.Vehicle{ID: 1, ModelID: 520}))

	current, ok := b.GetVehicle(1)
	require.True(t, ok)
	assert.Equal(t, 520, current.Vehicle.ModelID)
	assert.Empty(t, current.Events)

	export := b.buildExport()
	require.Len(t, export.Vehicles, 2)
	assert.Equal(t, 411, export.Vehicles[0].ModelID)
	assert.Len(t, export.Vehicles[0].Events, 1)
}

func TestStartSession_Resets(t *testing.T) {
	b := New(config.MemoryConfig{})
	populate(t, b)

	require.NoError(t, b.StartSession(&core.Session{ID: "s2"}))
	assert.Empty(t, b.Events())
	_, ok := b.GetVehicle(1)
	assert.False(t, ok)
}

func TestEndSession_NoOutputDir(t *testing.T) {
	b := New(config.MemoryConfig{})
	populate(t, b)

	require.NoError(t, b.EndSession(start.Add(time.Hour)))
	assert.Empty(t, b.ExportedFilePath())
}

func TestEndSession_ExportJSON(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "journal")
	b := New(config.MemoryConfig{OutputDir: dir})
	populate(t, b)

	require.NoError(t, b.EndSession(start.Add(time.Hour)))

	path := b.ExportedFilePath()
	assert.Equal(t, filepath.Join(dir, "LVP_Test__Main_20260301_201500.json"), path)

	data, err := os.ReadFile(path)
	require.NoError(t, err)

	var export SessionExport
	require.NoError(t, json.Unmarshal(data, &export))
	assert.Equal(t, "s1", export.Session.ID)
	assert.Equal(t, start.Add(time.Hour), export.EndTime)
	require.Len(t, export.Vehicles, 2)
	assert.Equal(t, uint16(1), export.Vehicles[0].ID)
	assert.Len(t, export.Vehicles[0].Events, 2)
	assert.Len(t, export.Events, 3)
}

func TestEndSession_ExportGzip(t *testing.T) {
	dir := t.TempDir()
	b := New(config.MemoryConfig{OutputDir: dir, CompressOutput: true})
	populate(t, b)

	require.NoError(t, b.EndSession(start.Add(time.Minute)))

	path := b.ExportedFilePath()
	assert.Equal(t, ".gz", filepath.Ext(path))

	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()

	gr, err := gzip.NewReader(f)
	require.NoError(t, err)
	defer gr.Close()

	var raw map[string]any
	require.NoError(t, json.NewDecoder(gr).Decode(&raw))
	vehicles := raw["vehicles"].([]any)
	require.Len(t, vehicles, 2)

	first := vehicles[0].(map[string]any)
	assert.Equal(t, float64(403), first["modelId"], "vehicle fields are flattened next to events")
	assert.Len(t, first["events"], 2)
}

func TestEndSession_EmptySession(t *testing.T) {
	dir := t.TempDir()
	b := New(config.MemoryConfig{OutputDir: dir})
	require.NoError(t, b.StartSession(&core.Session{ID: "empty", StartTime: start}))
	require.NoError(t, b.EndSession(start))

	data, err := os.ReadFile(filepath.Join(dir, "session_20260301_201500.json"))
	require.NoError(t, err)
	assert.Contains(t, string(data), `"vehicles":[]`)
	assert.Contains(t, string(data), `"events":[]`)
}
