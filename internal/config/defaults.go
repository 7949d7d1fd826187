package config

import "time"

// Default values for optional configuration fields.
const (
	DefaultInstanceID      = "notifier"
	DefaultAddr            = ":5000"
	DefaultWSPath          = "/ws"
	DefaultReadLimit       = 64 * 1024
	DefaultShutdownTimeout = 10 * time.Second
	DefaultHeartbeat       = 30 * time.Second
	DefaultSendBuffer      = 256
	DefaultWriteTimeout    = 5 * time.Second
	DefaultEventsAPIPath   = "/v1/events"
	DefaultDBPort          = 5432
	DefaultDBSSLMode       = "prefer"
	DefaultMaxConns        = 4
	DefaultMinConns        = 1
	DefaultListenChannel   = "bell24h_events"
	DefaultMetricsPath     = "/metrics"
	DefaultLogLevel        = "info"
	DefaultLogFormat       = "text"

	// HealthPath is always mounted and cannot be reconfigured.
	HealthPath = "/health"
)

func (c *NotifierConfig) applyDefaults() {
	if c.Instance.ID == "" {
		c.Instance.ID = DefaultInstanceID
	}

	// Server defaults
	if c.Server.Addr == "" {
		c.Server.Addr = DefaultAddr
	}
	if c.Server.WSPath == "" {
		c.Server.WSPath = DefaultWSPath
	}
	if c.Server.ReadLimit == 0 {
		c.Server.ReadLimit = DefaultReadLimit
	}
	if c.Server.ShutdownTimeout == 0 {
		c.Server.ShutdownTimeout = DefaultShutdownTimeout
	}

	if c.Heartbeat.Interval == 0 {
		c.Heartbeat.Interval = DefaultHeartbeat
	}

	// Connections defaults
	if c.Connections.SendBuffer == 0 {
		c.Connections.SendBuffer = DefaultSendBuffer
	}
	if c.Connections.WriteTimeout == 0 {
		c.Connections.WriteTimeout = DefaultWriteTimeout
	}

	// Events defaults
	if c.Events.APIPath == "" {
		c.Events.APIPath = DefaultEventsAPIPath
	}

	// Database defaults
	if c.Database.Port == 0 {
		c.Database.Port = DefaultDBPort
	}
	if c.Database.SSLMode == "" {
		c.Database.SSLMode = DefaultDBSSLMode
	}
	if c.Database.MaxConns == 0 {
		c.Database.MaxConns = DefaultMaxConns
	}
	if c.Database.MinConns == 0 {
		c.Database.MinConns = DefaultMinConns
	}
	if c.Database.ListenChannel == "" {
		c.Database.ListenChannel = DefaultListenChannel
	}

	if c.Metrics.Path == "" {
		c.Metrics.Path = DefaultMetricsPath
	}

	// Logging defaults
	if c.Logging.Level == "" {
		c.Logging.Level = DefaultLogLevel
	}
	if c.Logging.Format == "" {
		c.Logging.Format = DefaultLogFormat
	}
}
