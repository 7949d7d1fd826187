package server

import (
	"context"
	"time"

	"github.com/bell24h/realtime/internal/connection"
)

// HealthPath is where the health handler is mounted.
const HealthPath = "/health"

// Config configures a Server.
type Config struct {
	Addr            string
	WSPath          string
	AllowedOrigins  []string // Empty allows any origin
	ReadLimit       int64    // Max inbound frame size in bytes
	ShutdownTimeout time.Duration

	MetricsPath string // Empty disables the metrics endpoint
	EventsPath  string // Empty disables event ingestion
	EventsToken string // Optional bearer token for event ingestion

	Conn connection.ConnConfig
}

// DefaultConfig returns sensible defaults.
func DefaultConfig() Config {
	return Config{
		Addr:            ":5000",
		WSPath:          "/ws",
		ReadLimit:       64 * 1024,
		ShutdownTimeout: 10 * time.Second,
		MetricsPath:     "/metrics",
		EventsPath:      "/v1/events",
		Conn:            connection.DefaultConnConfig(),
	}
}

// Pinger reports whether a dependency is reachable. *pgxpool.Pool satisfies it.
type Pinger interface {
	Ping(ctx context.Context) error
}
