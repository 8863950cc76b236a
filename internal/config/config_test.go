package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, FileName), []byte(content), 0644))
	return dir
}

func TestLoad_WithValidConfigFile(t *testing.T) {
	t.Cleanup(viper.Reset)

	dir := writeConfig(t, `{
		"logLevel": "debug",
		"serverName": "LVP Test",
		"db": { "host": "10.0.0.1", "port": "5433" }
	}`)

	err := Load(dir)
	require.NoError(t, err)

	assert.Equal(t, "debug", viper.GetString("logLevel"))
	assert.Equal(t, "LVP Test", viper.GetString("serverName"))
	assert.Equal(t, "10.0.0.1", viper.GetString("db.host"))
	assert.Equal(t, "5433", viper.GetString("db.port"))
}

func TestLoad_DefaultValues(t *testing.T) {
	t.Cleanup(viper.Reset)

	require.NoError(t, Load(writeConfig(t, `{}`)))

	assert.Equal(t, "info", viper.GetString("logLevel"))
	assert.Equal(t, "./logs", viper.GetString("logsDir"))
	assert.Equal(t, "memory", viper.GetString("host.type"))
	assert.Equal(t, 2000, viper.GetInt("host.maxVehicles"))
	assert.Equal(t, "memory", viper.GetString("journal.type"))
	assert.Equal(t, "1s", viper.GetString("journal.flushInterval"))
	assert.Equal(t, "3m", viper.GetString("journal.sqlite.dumpInterval"))
	assert.Equal(t, "", viper.GetString("journal.sqlite.dumpPath"))
	assert.Equal(t, "localhost", viper.GetString("db.host"))
	assert.Equal(t, "5432", viper.GetString("db.port"))
	assert.Equal(t, "postgres", viper.GetString("db.username"))
	assert.Equal(t, "postgres", viper.GetString("db.password"))
	assert.Equal(t, "lvp", viper.GetString("db.database"))
	assert.Equal(t, false, viper.GetBool("graylog.enabled"))
	assert.Equal(t, "localhost:12201", viper.GetString("graylog.address"))
	assert.Equal(t, false, viper.GetBool("otel.enabled"))
	assert.Equal(t, "lvp-gamemode", viper.GetString("otel.serviceName"))
	assert.Equal(t, "5s", viper.GetString("otel.batchTimeout"))
	assert.Equal(t, "", viper.GetString("otel.endpoint"))
	assert.Equal(t, true, viper.GetBool("otel.insecure"))
	assert.Equal(t, "1m", viper.GetString("monitor.interval"))
}

func TestLoad_MissingFile(t *testing.T) {
	t.Cleanup(viper.Reset)

	err := Load("/nonexistent/path")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "error reading config file")

	// defaults are still in place
	assert.Equal(t, "memory", GetHostConfig().Type)
}

func TestGetString(t *testing.T) {
	t.Cleanup(viper.Reset)
	viper.Set("testKey", "testValue")
	assert.Equal(t, "testValue", GetString("testKey"))
}

func TestGetInt(t *testing.T) {
	t.Cleanup(viper.Reset)
	viper.Set("testInt", 42)
	assert.Equal(t, 42, GetInt("testInt"))
}

func TestGetBool(t *testing.T) {
	t.Cleanup(viper.Reset)
	viper.Set("testBool", true)
	assert.Equal(t, true, GetBool("testBool"))
}

func TestGetHostConfig_Override(t *testing.T) {
	t.Cleanup(viper.Reset)

	require.NoError(t, Load(writeConfig(t, `{"host": {"type": "callback", "maxVehicles": 500}}`)))

	hc := GetHostConfig()
	assert.Equal(t, "callback", hc.Type)
	assert.Equal(t, 500, hc.MaxVehicles)
}

func TestGetJournalConfig_Defaults(t *testing.T) {
	t.Cleanup(viper.Reset)

	require.NoError(t, Load(writeConfig(t, `{}`)))

	cfg := GetJournalConfig()
	assert.Equal(t, "memory", cfg.Type)
	assert.Equal(t, time.Second, cfg.FlushInterval)
	assert.Equal(t, "./journal", cfg.Memory.OutputDir)
	assert.Equal(t, true, cfg.Memory.CompressOutput)
	assert.Equal(t, 3*time.Minute, cfg.SQLite.DumpInterval)
	assert.Equal(t, "host=localhost port=5432 user=postgres password=postgres dbname=lvp sslmode=disable", cfg.Postgres.DSN())
	assert.Equal(t, "http://localhost:8086", cfg.Influx.URL())
	assert.Equal(t, "vehicles", cfg.Influx.Bucket)
}

func TestGetJournalConfig_Override(t *testing.T) {
	t.Cleanup(viper.Reset)

	require.NoError(t, Load(writeConfig(t, `{
		"journal": {
			"type": "sqlite",
			"flushInterval": "250ms",
			"memory": { "outputDir": "/tmp/out", "compressOutput": false },
			"sqlite": { "dumpInterval": "10m", "dumpPath": "/tmp/journal.db" }
		},
		"websocket": { "url": "ws://example:1/journal", "secret": "s3cret" }
	}`)))

	jc := GetJournalConfig()
	assert.Equal(t, "sqlite", jc.Type)
	assert.Equal(t, 250*time.Millisecond, jc.FlushInterval)
	assert.Equal(t, "/tmp/out", jc.Memory.OutputDir)
	assert.Equal(t, false, jc.Memory.CompressOutput)
	assert.Equal(t, 10*time.Minute, jc.SQLite.DumpInterval)
	assert.Equal(t, "/tmp/journal.db", jc.SQLite.DumpPath)
	assert.Equal(t, "ws://example:1/journal", jc.WebSocket.URL)
	assert.Equal(t, "s3cret", jc.WebSocket.Secret)
}

func TestGetOTelConfig_Defaults(t *testing.T) {
	t.Cleanup(viper.Reset)

	require.NoError(t, Load(writeConfig(t, `{}`)))

	cfg := GetOTelConfig()
	assert.Equal(t, false, cfg.Enabled)
	assert.Equal(t, "lvp-gamemode", cfg.ServiceName)
	assert.Equal(t, 5*time.Second, cfg.BatchTimeout)
	assert.Equal(t, "", cfg.Endpoint)
	assert.Equal(t, true, cfg.Insecure)
}

func TestGetOTelConfig_Override(t *testing.T) {
	t.Cleanup(viper.Reset)

	require.NoError(t, Load(writeConfig(t, `{
		"otel": {
			"enabled": true,
			"serviceName": "my-service",
			"batchTimeout": "30s",
			"endpoint": "localhost:4318",
			"insecure": false
		}
	}`)))

	oc := GetOTelConfig()
	assert.Equal(t, true, oc.Enabled)
	assert.Equal(t, "my-service", oc.ServiceName)
	assert.Equal(t, 30*time.Second, oc.BatchTimeout)
	assert.Equal(t, "localhost:4318", oc.Endpoint)
	assert.Equal(t, false, oc.Insecure)
}

func TestGetGraylogAndMonitorConfig(t *testing.T) {
	t.Cleanup(viper.Reset)

	require.NoError(t, Load(writeConfig(t, `{
		"graylog": { "enabled": true, "address": "graylog:12201" },
		"monitor": { "interval": "30s" }
	}`)))

	assert.Equal(t, GraylogConfig{Enabled: true, Address: "graylog:12201"}, GetGraylogConfig())
	assert.Equal(t, 30*time.Second, GetMonitorConfig().Interval)
}
