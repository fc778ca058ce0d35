package config

import (
	"fmt"
	"time"

	"github.com/spf13/viper"
)

// FileName is the configuration file looked up in the config directory.
const FileName = "mplan.cfg.json"

// MemoryConfig holds settings for the in-memory template library.
type MemoryConfig struct {
	SnapshotPath string `json:"snapshotPath" mapstructure:"snapshotPath"`
}

// SQLiteConfig holds settings for the SQLite template library.
type SQLiteConfig struct {
	Path string `json:"path" mapstructure:"path"`
}

// DBConfig holds PostgreSQL connection settings.
type DBConfig struct {
	Host     string `json:"host" mapstructure:"host"`
	Port     string `json:"port" mapstructure:"port"`
	Username string `json:"username" mapstructure:"username"`
	Password string `json:"password" mapstructure:"password"`
	Database string `json:"database" mapstructure:"database"`
}

// StorageConfig selects and configures the template library backend.
type StorageConfig struct {
	Type      string       `json:"type" mapstructure:"type"`
	Memory    MemoryConfig `json:"memory" mapstructure:"memory"`
	SQLite    SQLiteConfig `json:"sqlite" mapstructure:"sqlite"`
	DB        DBConfig     `json:"db" mapstructure:"db"`
	CacheSize int          `json:"cacheSize" mapstructure:"cacheSize"`
}

// LinkConfig configures the vehicle link. A serial port takes precedence over the URL.
// Vehicle names the vehicle at the other end.
type LinkConfig struct {
	Vehicle        string        `json:"vehicle" mapstructure:"vehicle"`
	URL            string        `json:"url" mapstructure:"url"`
	Secret         string        `json:"secret" mapstructure:"secret"`
	SerialPort     string        `json:"serialPort" mapstructure:"serialPort"`
	BaudRate       int           `json:"baudRate" mapstructure:"baudRate"`
	ReconnectDelay time.Duration `json:"reconnectDelay" mapstructure:"reconnectDelay"`
	BufferSize     int           `json:"bufferSize" mapstructure:"bufferSize"`
}

// APIConfig configures the HTTP translation API.
type APIConfig struct {
	Listen string `json:"listen" mapstructure:"listen"`
}

// InfluxConfig configures the plan statistics sink.
type InfluxConfig struct {
	Enabled  bool   `json:"enabled" mapstructure:"enabled"`
	Host     string `json:"host" mapstructure:"host"`
	Port     string `json:"port" mapstructure:"port"`
	Protocol string `json:"protocol" mapstructure:"protocol"`
	Token    string `json:"token" mapstructure:"token"`
	Org      string `json:"org" mapstructure:"org"`
	Bucket   string `json:"bucket" mapstructure:"bucket"`
}

// OTelConfig configures OpenTelemetry export.
type OTelConfig struct {
	Enabled      bool          `json:"enabled" mapstructure:"enabled"`
	ServiceName  string        `json:"serviceName" mapstructure:"serviceName"`
	BatchTimeout time.Duration `json:"batchTimeout" mapstructure:"batchTimeout"`
	Endpoint     string        `json:"endpoint" mapstructure:"endpoint"`
	Insecure     bool          `json:"insecure" mapstructure:"insecure"`
}

// SetDefaults registers the default value of every key.
func SetDefaults() {
	viper.SetDefault("logLevel", "info")
	viper.SetDefault("logsDir", "./mplanlogs")
	viper.SetDefault("defaultSpeedUnits", "m/s")
	viper.SetDefault("workers", 4)

	viper.SetDefault("storage.type", "memory")
	viper.SetDefault("storage.memory.snapshotPath", "")
	viper.SetDefault("storage.sqlite.path", "./mplan.db")
	viper.SetDefault("storage.cacheSize", 128)

	viper.SetDefault("db.host", "localhost")
	viper.SetDefault("db.port", "5432")
	viper.SetDefault("db.username", "postgres")
	viper.SetDefault("db.password", "postgres")
	viper.SetDefault("db.database", "mplan")

	viper.SetDefault("link.vehicle", "")
	viper.SetDefault("link.url", "")
	viper.SetDefault("link.secret", "")
	viper.SetDefault("link.serialPort", "")
	viper.SetDefault("link.baudRate", 115200)
	viper.SetDefault("link.reconnectDelay", "2s")
	viper.SetDefault("link.bufferSize", 64)

	viper.SetDefault("api.listen", ":8080")

	viper.SetDefault("influx.enabled", false)
	viper.SetDefault("influx.host", "localhost")
	viper.SetDefault("influx.port", "8086")
	viper.SetDefault("influx.protocol", "http")
	viper.SetDefault("influx.token", "")
	viper.SetDefault("influx.org", "mplan")
	viper.SetDefault("influx.bucket", "plans")

	viper.SetDefault("otel.enabled", false)
	viper.SetDefault("otel.serviceName", "mplan")
	viper.SetDefault("otel.batchTimeout", "5s")
	viper.SetDefault("otel.endpoint", "")
	viper.SetDefault("otel.insecure", true)

	viper.SetDefault("vehicles.profiles", "")
}

// Load reads configuration from the JSON file in configDir and sets default values.
func Load(configDir string) error {
	SetDefaults()

	viper.SetConfigName(FileName)
	viper.AddConfigPath(configDir)
	viper.SetConfigType("json")

	if err := viper.ReadInConfig(); err != nil {
		return fmt.Errorf("error reading config file: %w", err)
	}
	return nil
}

// GetString returns a string config value.
func GetString(key string) string {
	return viper.GetString(key)
}

// GetInt returns an int config value.
func GetInt(key string) int {
	return viper.GetInt(key)
}

// GetBool returns a bool config value.
func GetBool(key string) bool {
	return viper.GetBool(key)
}

// GetStorageConfig returns the template library settings.
func GetStorageConfig() StorageConfig {
	return StorageConfig{
		Type: viper.GetString("storage.type"),
		Memory: MemoryConfig{
			SnapshotPath: viper.GetString("storage.memory.snapshotPath"),
		},
		SQLite: SQLiteConfig{
			Path: viper.GetString("storage.sqlite.path"),
		},
		DB: DBConfig{
			Host:     viper.GetString("db.host"),
			Port:     viper.GetString("db.port"),
			Username: viper.GetString("db.username"),
			Password: viper.GetString("db.password"),
			Database: viper.GetString("db.database"),
		},
		CacheSize: viper.GetInt("storage.cacheSize"),
	}
}

// GetLinkConfig returns the vehicle link settings.
func GetLinkConfig() LinkConfig {
	return LinkConfig{
		Vehicle:        viper.GetString("link.vehicle"),
		URL:            viper.GetString("link.url"),
		Secret:         viper.GetString("link.secret"),
		SerialPort:     viper.GetString("link.serialPort"),
		BaudRate:       viper.GetInt("link.baudRate"),
		ReconnectDelay: viper.GetDuration("link.reconnectDelay"),
		BufferSize:     viper.GetInt("link.bufferSize"),
	}
}

// GetAPIConfig returns the HTTP API settings.
func GetAPIConfig() APIConfig {
	return APIConfig{Listen: viper.GetString("api.listen")}
}

// GetInfluxConfig returns the statistics sink settings.
func GetInfluxConfig() InfluxConfig {
	return InfluxConfig{
		Enabled:  viper.GetBool("influx.enabled"),
		Host:     viper.GetString("influx.host"),
		Port:     viper.GetString("influx.port"),
		Protocol: viper.GetString("influx.protocol"),
		Token:    viper.GetString("influx.token"),
		Org:      viper.GetString("influx.org"),
		Bucket:   viper.GetString("influx.bucket"),
	}
}

// GetOTelConfig returns the OpenTelemetry settings.
func GetOTelConfig() OTelConfig {
	return OTelConfig{
		Enabled:      viper.GetBool("otel.enabled"),
		ServiceName:  viper.GetString("otel.serviceName"),
		BatchTimeout: viper.GetDuration("otel.batchTimeout"),
		Endpoint:     viper.GetString("otel.endpoint"),
		Insecure:     viper.GetBool("otel.insecure"),
	}
}
