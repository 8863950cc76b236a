package gamemode

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/LVPlayground/gamemode/internal/config"
	"github.com/LVPlayground/gamemode/internal/host"
	"github.com/LVPlayground/gamemode/internal/worker"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var start = time.Date(2026, 3, 1, 20, 0, 0, 0, time.UTC)

func clock() time.Time { return start }

// syncBuffer is written by the dispatcher goroutine and read by the test.
type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

func writeConfig(t *testing.T, journalType, hostType string) (configDir, journalDir string) {
	t.Helper()
	t.Cleanup(viper.Reset)

	dir := t.TempDir()
	journalDir = filepath.Join(dir, "journal")
	content := `{
		"logLevel": "debug",
		"logsDir": "` + filepath.ToSlash(filepath.Join(dir, "logs")) + `",
		"serverName": "LVP Test",
		"host": {"type": "` + hostType + `", "maxVehicles": 5},
		"journal": {
			"type": "` + journalType + `",
			"flushInterval": "0s",
			"memory": {"outputDir": "` + filepath.ToSlash(journalDir) + `", "compressOutput": false}
		},
		"monitor": {"interval": "1h"}
	}`
	require.NoError(t, os.WriteFile(filepath.Join(dir, config.FileName), []byte(content), 0644))
	return dir, journalDir
}

func TestRuntime_Session(t *testing.T) {
	configDir, journalDir := writeConfig(t, "memory", HostMemory)
	logs := &syncBuffer{}

	r, err := New(Options{ConfigDir: configDir, Version: "1.2.3", LogWriter: logs, Clock: clock})
	require.NoError(t, err)

	assert.Equal(t, "LVP Test", r.Session().ServerName)
	assert.Equal(t, "1.2.3", r.Session().Version)
	require.NotNil(t, r.Recorder)

	tower, err := r.Dispatch(worker.CommandCreate, `{"modelId":403,"position":{"x":1,"y":2,"z":3}}`)
	require.NoError(t, err)
	trailer, err := r.Dispatch(worker.CommandCreate, `{"modelId":435,"position":{"x":1,"y":8,"z":3}}`)
	require.NoError(t, err)
	assert.Equal(t, 1, tower)
	assert.Equal(t, 2, trailer)

	_, err = r.Dispatch(worker.CommandTrailer, "1", "2")
	require.NoError(t, err)

	count, err := r.Dispatch(worker.CommandCount)
	require.NoError(t, err)
	assert.Equal(t, 2, count)

	status, err := r.Monitor.GetStatus()
	require.NoError(t, err)
	assert.Equal(t, 2, status.Vehicles)

	require.NoError(t, r.Close())
	require.NoError(t, r.Close(), "second close is a no-op")

	assert.Zero(t, r.Host.(*host.Memory).Count(), "every vehicle is destroyed on close")

	export := filepath.Join(journalDir, "LVP_Test_20260301_200000.json")
	data, err := os.ReadFile(export)
	require.NoError(t, err)
	for _, typ := range []string{"created", "trailer_attached", "trailer_detached", "disposed"} {
		assert.Contains(t, string(data), `"type":"`+typ+`"`)
	}

	out := logs.String()
	assert.Contains(t, out, "Gamemode started")
	assert.Contains(t, out, "sessionId="+r.Session().ID)
	assert.Contains(t, out, `"component":"dispatcher"`)
}

func TestRuntime_JournalDisabled(t *testing.T) {
	configDir, journalDir := writeConfig(t, JournalDisabled, HostMemory)

	r, err := New(Options{ConfigDir: configDir, LogWriter: &syncBuffer{}, Clock: clock})
	require.NoError(t, err)
	assert.Nil(t, r.Recorder)

	_, err = r.Dispatch(worker.CommandCreate, `{"modelId":411,"position":{"x":0,"y":0,"z":0}}`)
	require.NoError(t, err)
	require.NoError(t, r.Close())

	_, err = os.Stat(journalDir)
	assert.True(t, os.IsNotExist(err))
}

func TestRuntime_CallbackHost(t *testing.T) {
	configDir, _ := writeConfig(t, JournalDisabled, HostCallback)

	var calls []string
	call := func(function, data string) (string, error) {
		calls = append(calls, function)
		if function == host.FunctionCreate {
			return `["ok", 42]`, nil
		}
		return "", nil
	}

	r, err := New(Options{ConfigDir: configDir, HostCall: call, LogWriter: &syncBuffer{}, Clock: clock})
	require.NoError(t, err)

	id, err := r.Dispatch(worker.CommandCreate, `{"modelId":411,"position":{"x":0,"y":0,"z":0}}`)
	require.NoError(t, err)
	assert.Equal(t, 42, id)

	require.NoError(t, r.Close())
	assert.Equal(t, []string{host.FunctionCreate, host.FunctionDestroy}, calls)
}

func TestRuntime_CallbackHostNotRegistered(t *testing.T) {
	configDir, _ := writeConfig(t, JournalDisabled, HostCallback)

	r, err := New(Options{ConfigDir: configDir, LogWriter: &syncBuffer{}, Clock: clock})
	require.NoError(t, err)
	defer r.Close()

	_, err = r.Dispatch(worker.CommandCreate, `{"modelId":411,"position":{"x":0,"y":0,"z":0}}`)
	assert.True(t, errors.Is(err, host.ErrNoCallback))
}

func TestNew_UnknownHost(t *testing.T) {
	configDir, _ := writeConfig(t, JournalDisabled, "cloud")

	_, err := New(Options{ConfigDir: configDir, LogWriter: &syncBuffer{}, Clock: clock})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown host type: cloud")
}

func TestNew_MissingConfigUsesDefaults(t *testing.T) {
	t.Cleanup(viper.Reset)
	dir := t.TempDir()
	t.Chdir(dir)

	logs := &syncBuffer{}
	r, err := New(Options{ConfigDir: dir, LogWriter: logs, Clock: clock})
	require.NoError(t, err)
	require.NoError(t, r.Close())

	assert.True(t, strings.Contains(logs.String(), "Failed to load config, using defaults!"))
	assert.Equal(t, "LVP", r.Session().ServerName)
}
