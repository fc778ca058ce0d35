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
		"defaultSpeedUnits": "kn",
		"db": { "host": "10.0.0.1", "port": "5433" }
	}`)
	require.NoError(t, Load(dir))

	assert.Equal(t, "debug", viper.GetString("logLevel"))
	assert.Equal(t, "kn", viper.GetString("defaultSpeedUnits"))
	assert.Equal(t, "10.0.0.1", viper.GetString("db.host"))
	assert.Equal(t, "5433", viper.GetString("db.port"))
}

func TestLoad_DefaultValues(t *testing.T) {
	t.Cleanup(viper.Reset)

	require.NoError(t, Load(writeConfig(t, `{}`)))

	assert.Equal(t, "info", viper.GetString("logLevel"))
	assert.Equal(t, "./mplanlogs", viper.GetString("logsDir"))
	assert.Equal(t, "m/s", viper.GetString("defaultSpeedUnits"))
	assert.Equal(t, 4, viper.GetInt("workers"))
	assert.Equal(t, "memory", viper.GetString("storage.type"))
	assert.Equal(t, "mplan", viper.GetString("db.database"))
	assert.Equal(t, ":8080", viper.GetString("api.listen"))
	assert.Equal(t, false, viper.GetBool("influx.enabled"))
	assert.Equal(t, "", viper.GetString("vehicles.profiles"))
}

func TestLoad_MissingFile(t *testing.T) {
	t.Cleanup(viper.Reset)

	err := Load("/nonexistent/path")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "error reading config file")
}

func TestGetters(t *testing.T) {
	t.Cleanup(viper.Reset)
	viper.Set("testKey", "testValue")
	viper.Set("testInt", 42)
	viper.Set("testBool", true)

	assert.Equal(t, "testValue", GetString("testKey"))
	assert.Equal(t, 42, GetInt("testInt"))
	assert.Equal(t, true, GetBool("testBool"))
}

func TestGetStorageConfig(t *testing.T) {
	tests := []struct {
		name  string
		input string
		check func(t *testing.T, c StorageConfig)
	}{
		{
			name:  "defaults",
			input: `{}`,
			check: func(t *testing.T, c StorageConfig) {
				assert.Equal(t, "memory", c.Type)
				assert.Equal(t, "", c.Memory.SnapshotPath)
				assert.Equal(t, "./mplan.db", c.SQLite.Path)
				assert.Equal(t, "localhost", c.DB.Host)
				assert.Equal(t, 128, c.CacheSize)
			},
		},
		{
			name: "override",
			input: `{
				"storage": {
					"type": "sqlite",
					"memory": { "snapshotPath": "/tmp/templates.snap" },
					"sqlite": { "path": "/tmp/t.db" },
					"cacheSize": 16
				},
				"db": { "database": "plans" }
			}`,
			check: func(t *testing.T, c StorageConfig) {
				assert.Equal(t, "sqlite", c.Type)
				assert.Equal(t, "/tmp/templates.snap", c.Memory.SnapshotPath)
				assert.Equal(t, "/tmp/t.db", c.SQLite.Path)
				assert.Equal(t, "plans", c.DB.Database)
				assert.Equal(t, 16, c.CacheSize)
			},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Cleanup(viper.Reset)
			require.NoError(t, Load(writeConfig(t, tt.input)))
			tt.check(t, GetStorageConfig())
		})
	}
}

func TestGetLinkConfig(t *testing.T) {
	t.Cleanup(viper.Reset)

	require.NoError(t, Load(writeConfig(t, `{
		"link": { "url": "ws://vehicle:9000/link", "reconnectDelay": "500ms" }
	}`)))

	lc := GetLinkConfig()
	assert.Equal(t, "ws://vehicle:9000/link", lc.URL)
	assert.Equal(t, 500*time.Millisecond, lc.ReconnectDelay)
	assert.Equal(t, 115200, lc.BaudRate)
	assert.Equal(t, 64, lc.BufferSize)
	assert.Equal(t, "", lc.SerialPort)
}

func TestGetOTelConfig(t *testing.T) {
	t.Cleanup(viper.Reset)

	require.NoError(t, Load(writeConfig(t, `{}`)))
	oc := GetOTelConfig()
	assert.Equal(t, false, oc.Enabled)
	assert.Equal(t, "mplan", oc.ServiceName)
	assert.Equal(t, 5*time.Second, oc.BatchTimeout)
	assert.Equal(t, true, oc.Insecure)
}

func TestGetInfluxConfig(t *testing.T) {
	t.Cleanup(viper.Reset)

	require.NoError(t, Load(writeConfig(t, `{"influx": {"enabled": true, "bucket": "trials"}}`)))
	ic := GetInfluxConfig()
	assert.True(t, ic.Enabled)
	assert.Equal(t, "trials", ic.Bucket)
	assert.Equal(t, "8086", ic.Port)
	assert.Equal(t, ":8080", GetAPIConfig().Listen)
}
