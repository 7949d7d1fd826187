package config

import "time"

// NotifierConfig is the root configuration for a notifier instance.
type NotifierConfig struct {
	Instance    InstanceConfig    `yaml:"instance"`
	Server      ServerConfig      `yaml:"server"`
	Heartbeat   HeartbeatConfig   `yaml:"heartbeat"`
	Connections ConnectionsConfig `yaml:"connections"`
	Auth        AuthConfig        `yaml:"auth"`
	Events      EventsConfig      `yaml:"events"`
	Database    DBConfig          `yaml:"database"`
	Metrics     MetricsConfig     `yaml:"metrics"`
	Logging     LoggingConfig     `yaml:"logging"`
}

// InstanceConfig identifies this notifier.
type InstanceConfig struct {
	ID string `yaml:"id"`
}

// ServerConfig holds the HTTP/WebSocket listener settings.
type ServerConfig struct {
	Addr            string        `yaml:"addr"`
	WSPath          string        `yaml:"ws_path" envconfig:"ws_path"`
	AllowedOrigins  []string      `yaml:"allowed_origins" envconfig:"allowed_origins"` // Empty allows any origin
	ReadLimit       int64         `yaml:"read_limit" envconfig:"read_limit"`           // Max inbound frame size in bytes
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout" envconfig:"shutdown_timeout"`
}

// HeartbeatConfig holds liveness monitor settings.
type HeartbeatConfig struct {
	Interval time.Duration `yaml:"interval"`
}

// ConnectionsConfig holds per-connection and registry limits.
type ConnectionsConfig struct {
	SendBuffer     int           `yaml:"send_buffer" envconfig:"send_buffer"`
	WriteTimeout   time.Duration `yaml:"write_timeout" envconfig:"write_timeout"`
	MaxConnections int           `yaml:"max_connections" envconfig:"max_connections"` // 0 = unlimited
}

// AuthConfig controls the authenticate handshake.
type AuthConfig struct {
	AllowRebind *bool `yaml:"allow_rebind" envconfig:"allow_rebind"`
}

// RebindAllowed reports whether a second authenticate may replace the first.
func (a AuthConfig) RebindAllowed() bool {
	return a.AllowRebind == nil || *a.AllowRebind
}

// EventsConfig holds the HTTP event ingestion settings.
type EventsConfig struct {
	APIEnabled *bool  `yaml:"api_enabled" envconfig:"api_enabled"`
	APIPath    string `yaml:"api_path" envconfig:"api_path"`
	APIToken   string `yaml:"api_token" envconfig:"api_token"` // Optional bearer token
}

// Enabled reports whether the ingestion endpoint is mounted.
func (e EventsConfig) Enabled() bool {
	return e.APIEnabled == nil || *e.APIEnabled
}

// DBConfig holds the optional Postgres connection used as an event source.
type DBConfig struct {
	Enabled       bool   `yaml:"enabled"`
	Host          string `yaml:"host"`
	Port          int    `yaml:"port"`
	Name          string `yaml:"name"`
	User          string `yaml:"user"`
	Password      string `yaml:"password"`
	SSLMode       string `yaml:"ssl_mode" envconfig:"ssl_mode"`
	MaxConns      int    `yaml:"max_conns" envconfig:"max_conns"`
	MinConns      int    `yaml:"min_conns" envconfig:"min_conns"`
	ListenChannel string `yaml:"listen_channel" envconfig:"listen_channel"`
}

// MetricsConfig holds Prometheus endpoint settings.
type MetricsConfig struct {
	Path string `yaml:"path"`
}

// LoggingConfig holds slog handler settings.
type LoggingConfig struct {
	Level  string `yaml:"level"`  // debug, info, warn, error
	Format string `yaml:"format"` // text, json
}
