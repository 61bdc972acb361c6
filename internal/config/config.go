// Package config loads and validates harvester configuration via Viper.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/JakeFAU/listing-harvester/internal/store"
	"github.com/JakeFAU/listing-harvester/internal/transport"
)

// Config captures all service configuration knobs loaded via Viper.
type Config struct {
	Server    ServerConfig    `mapstructure:"server"`
	Auth      AuthConfig      `mapstructure:"auth"`
	Transport TransportConfig `mapstructure:"transport"`
	DB        DBConfig        `mapstructure:"db"`
	Snapshot  SnapshotConfig  `mapstructure:"snapshot"`
	PubSub    PubSubConfig    `mapstructure:"pubsub"`
	Logging   LoggingConfig   `mapstructure:"logging"`
}

// ServerConfig controls HTTP server behavior.
type ServerConfig struct {
	Port int `mapstructure:"port"`
}

// AuthConfig defines API authentication toggles.
type AuthConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	APIKey  string `mapstructure:"api_key"`
}

// TransportConfig governs fetch politeness and browser timeouts.
type TransportConfig struct {
	UserAgent       string `mapstructure:"user_agent"`
	DelaySeconds    int    `mapstructure:"delay_seconds"`
	TimeoutSeconds  int    `mapstructure:"timeout_seconds"`
	NavTimeoutSec   int    `mapstructure:"nav_timeout_seconds"`
	SelectorWaitSec int    `mapstructure:"selector_wait_seconds"`
}

// DBConfig controls access to the relational database. An empty DSN selects
// the in-memory store.
type DBConfig struct {
	DSN                string `mapstructure:"dsn"`
	MaxConns           int32  `mapstructure:"max_conns"`
	MinConns           int32  `mapstructure:"min_conns"`
	MaxConnLifetimeMin int    `mapstructure:"max_conn_lifetime_minutes"`
}

// SnapshotConfig sets where raw fetched pages are archived. Both sinks are
// optional; an empty value disables that sink.
type SnapshotConfig struct {
	Dir       string `mapstructure:"dir"`
	GCSBucket string `mapstructure:"gcs_bucket"`
	Prefix    string `mapstructure:"prefix"`
}

// PubSubConfig holds metadata for search-completion notifications. Empty
// values disable publishing.
type PubSubConfig struct {
	ProjectID string `mapstructure:"project_id"`
	TopicName string `mapstructure:"topic_name"`
}

// LoggingConfig toggles zap development features.
type LoggingConfig struct {
	Development bool `mapstructure:"development"`
}

// Load builds a Config from disk/environment.
func Load(path string) (Config, error) {
	v := viper.New()
	v.SetEnvPrefix("HARVESTER")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", 8080)
	v.SetDefault("transport.user_agent", "")
	v.SetDefault("transport.delay_seconds", 2)
	v.SetDefault("transport.timeout_seconds", 30)
	v.SetDefault("transport.nav_timeout_seconds", 45)
	v.SetDefault("transport.selector_wait_seconds", 20)
	v.SetDefault("db.max_conns", 8)
	v.SetDefault("db.min_conns", 0)
	v.SetDefault("db.max_conn_lifetime_minutes", 30)
	v.SetDefault("snapshot.prefix", "pages")
	v.SetDefault("logging.development", true)
}

// Validate enforces required values and reasonable limits.
func (c Config) Validate() error {
	if c.Server.Port <= 0 {
		return fmt.Errorf("server.port must be > 0")
	}
	if c.Transport.DelaySeconds < 0 {
		return fmt.Errorf("transport.delay_seconds must be >= 0")
	}
	if c.Transport.TimeoutSeconds <= 0 {
		return fmt.Errorf("transport.timeout_seconds must be > 0")
	}
	if c.Auth.Enabled && c.Auth.APIKey == "" {
		return fmt.Errorf("auth.api_key must be set when auth is enabled")
	}
	if c.PubSub.TopicName != "" && c.PubSub.ProjectID == "" {
		return fmt.Errorf("pubsub.project_id must be set when pubsub.topic_name is set")
	}
	return nil
}

// TransportSettings converts the transport section into a transport.Config.
func (c Config) TransportSettings() transport.Config {
	return transport.Config{
		UserAgent:      c.Transport.UserAgent,
		Delay:          time.Duration(c.Transport.DelaySeconds) * time.Second,
		RequestTimeout: time.Duration(c.Transport.TimeoutSeconds) * time.Second,
		NavTimeout:     time.Duration(c.Transport.NavTimeoutSec) * time.Second,
		SelectorWait:   time.Duration(c.Transport.SelectorWaitSec) * time.Second,
	}
}

// StoreSettings converts the db section into a store.PostgresConfig.
func (c Config) StoreSettings() store.PostgresConfig {
	return store.PostgresConfig{
		DSN:             c.DB.DSN,
		MaxConns:        c.DB.MaxConns,
		MinConns:        c.DB.MinConns,
		MaxConnLifetime: time.Duration(c.DB.MaxConnLifetimeMin) * time.Minute,
	}
}
