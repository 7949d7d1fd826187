package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestLoad(t *testing.T) {
	yaml := `
instance:
  id: notifier-1
server:
  addr: ":8080"
  ws_path: /socket
  allowed_origins:
    - https://bell24h.com
    - https://www.bell24h.com
heartbeat:
  interval: 15s
auth:
  allow_rebind: false
database:
  enabled: true
  host: localhost
  name: bell24h
  user: notifier
  password: testpass
`
	path := writeTempFile(t, yaml)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.Instance.ID != "notifier-1" {
		t.Errorf("Instance.ID = %q, want %q", cfg.Instance.ID, "notifier-1")
	}
	if cfg.Server.Addr != ":8080" {
		t.Errorf("Server.Addr = %q, want %q", cfg.Server.Addr, ":8080")
	}
	if len(cfg.Server.AllowedOrigins) != 2 || cfg.Server.AllowedOrigins[1] != "https://www.bell24h.com" {
		t.Errorf("Server.AllowedOrigins = %v", cfg.Server.AllowedOrigins)
	}
	if cfg.Heartbeat.Interval != 15*time.Second {
		t.Errorf("Heartbeat.Interval = %v, want 15s", cfg.Heartbeat.Interval)
	}
	if cfg.Auth.RebindAllowed() {
		t.Error("Auth.RebindAllowed() = true, want false")
	}
	if !cfg.Database.Enabled || cfg.Database.Host != "localhost" {
		t.Errorf("Database = %+v", cfg.Database)
	}
}

func TestLoadWithEnvSubstitution(t *testing.T) {
	t.Setenv("TEST_DB_PASSWORD", "secret123")
	t.Setenv("TEST_EVENTS_TOKEN", "tok")

	yaml := `
database:
  password: ${TEST_DB_PASSWORD}
events:
  api_token: ${TEST_EVENTS_TOKEN}
`
	path := writeTempFile(t, yaml)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.Database.Password != "secret123" {
		t.Errorf("Database.Password = %q, want %q", cfg.Database.Password, "secret123")
	}
	if cfg.Events.APIToken != "tok" {
		t.Errorf("Events.APIToken = %q, want %q", cfg.Events.APIToken, "tok")
	}
}

func TestLoadErrors(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Error("Load of missing file should fail")
	}

	path := writeTempFile(t, "server: [not, a, map]")
	if _, err := Load(path); err == nil || !strings.Contains(err.Error(), "parse config yaml") {
		t.Errorf("Load of bad yaml error = %v", err)
	}
}

func TestLoadWithDefaults(t *testing.T) {
	path := writeTempFile(t, "instance:\n  id: notifier-1\n")

	cfg, err := LoadWithDefaults(path)
	if err != nil {
		t.Fatalf("LoadWithDefaults failed: %v", err)
	}

	// Check defaults were applied
	if cfg.Server.Addr != DefaultAddr {
		t.Errorf("Server.Addr = %q, want default %q", cfg.Server.Addr, DefaultAddr)
	}
	if cfg.Server.WSPath != DefaultWSPath {
		t.Errorf("Server.WSPath = %q, want default %q", cfg.Server.WSPath, DefaultWSPath)
	}
	if cfg.Server.ReadLimit != DefaultReadLimit {
		t.Errorf("Server.ReadLimit = %d, want default %d", cfg.Server.ReadLimit, DefaultReadLimit)
	}
	if cfg.Heartbeat.Interval != DefaultHeartbeat {
		t.Errorf("Heartbeat.Interval = %v, want default %v", cfg.Heartbeat.Interval, DefaultHeartbeat)
	}
	if cfg.Connections.SendBuffer != DefaultSendBuffer {
		t.Errorf("Connections.SendBuffer = %d, want default %d", cfg.Connections.SendBuffer, DefaultSendBuffer)
	}
	if cfg.Connections.MaxConnections != 0 {
		t.Errorf("Connections.MaxConnections = %d, want 0", cfg.Connections.MaxConnections)
	}
	if !cfg.Auth.RebindAllowed() {
		t.Error("Auth.RebindAllowed() = false, want default true")
	}
	if !cfg.Events.Enabled() || cfg.Events.APIPath != DefaultEventsAPIPath {
		t.Errorf("Events = %+v, want enabled at %q", cfg.Events, DefaultEventsAPIPath)
	}
	if cfg.Database.Enabled {
		t.Error("Database.Enabled = true, want default false")
	}
	if cfg.Database.ListenChannel != DefaultListenChannel {
		t.Errorf("Database.ListenChannel = %q, want default %q", cfg.Database.ListenChannel, DefaultListenChannel)
	}
	if cfg.Metrics.Path != DefaultMetricsPath {
		t.Errorf("Metrics.Path = %q, want default %q", cfg.Metrics.Path, DefaultMetricsPath)
	}
	if cfg.Logging.Level != DefaultLogLevel || cfg.Logging.Format != DefaultLogFormat {
		t.Errorf("Logging = %+v", cfg.Logging)
	}

	if err := cfg.Validate(); err != nil {
		t.Errorf("defaulted config should validate: %v", err)
	}
}

func TestDefault(t *testing.T) {
	cfg := Default()
	if cfg.Instance.ID != DefaultInstanceID {
		t.Errorf("Instance.ID = %q, want %q", cfg.Instance.ID, DefaultInstanceID)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("Default() should validate: %v", err)
	}
}

func TestLoadAndValidate(t *testing.T) {
	path := writeTempFile(t, "server:\n  ws_path: /metrics\n")

	_, err := LoadAndValidate(path)
	if err == nil {
		t.Fatal("expected validation error")
	}
	if !strings.HasPrefix(err.Error(), "validate config: ") {
		t.Errorf("error = %q, want validate config prefix", err)
	}
}

func TestValidate(t *testing.T) {
	disabled := false

	tests := []struct {
		name    string
		mutate  func(*NotifierConfig)
		wantErr string
	}{
		{
			name:    "valid defaults",
			mutate:  func(c *NotifierConfig) {},
			wantErr: "",
		},
		{
			name:    "missing instance id",
			mutate:  func(c *NotifierConfig) { c.Instance.ID = "" },
			wantErr: "instance.id is required",
		},
		{
			name:    "relative ws path",
			mutate:  func(c *NotifierConfig) { c.Server.WSPath = "ws" },
			wantErr: `server.ws_path must start with /, got "ws"`,
		},
		{
			name:    "ws path on health",
			mutate:  func(c *NotifierConfig) { c.Server.WSPath = "/health" },
			wantErr: `server.ws_path "/health" collides with the health endpoint`,
		},
		{
			name:    "ws path on metrics",
			mutate:  func(c *NotifierConfig) { c.Server.WSPath = "/metrics" },
			wantErr: `server.ws_path "/metrics" collides with metrics.path`,
		},
		{
			name:    "ws path on events api",
			mutate:  func(c *NotifierConfig) { c.Server.WSPath = "/v1/events" },
			wantErr: `server.ws_path "/v1/events" collides with events.api_path`,
		},
		{
			name: "ws path on disabled events api",
			mutate: func(c *NotifierConfig) {
				c.Server.WSPath = "/v1/events"
				c.Events.APIEnabled = &disabled
			},
			wantErr: "",
		},
		{
			name:    "zero heartbeat",
			mutate:  func(c *NotifierConfig) { c.Heartbeat.Interval = -time.Second },
			wantErr: "heartbeat.interval must be > 0",
		},
		{
			name:    "negative max connections",
			mutate:  func(c *NotifierConfig) { c.Connections.MaxConnections = -1 },
			wantErr: "connections.max_connections must be >= 0",
		},
		{
			name:    "database enabled without host",
			mutate:  func(c *NotifierConfig) { c.Database.Enabled = true },
			wantErr: "database.host is required",
		},
		{
			name: "database min_conns exceeds max_conns",
			mutate: func(c *NotifierConfig) {
				c.Database = DBConfig{
					Enabled: true, Host: "localhost", Name: "db", User: "user", Password: "pass",
					MaxConns: 2, MinConns: 5, ListenChannel: DefaultListenChannel,
				}
			},
			wantErr: "database.min_conns (5) cannot exceed max_conns (2)",
		},
		{
			name: "database bad channel",
			mutate: func(c *NotifierConfig) {
				c.Database = DBConfig{
					Enabled: true, Host: "localhost", Name: "db", User: "user", Password: "pass",
					MaxConns: 2, MinConns: 1, ListenChannel: "events; DROP TABLE rfqs",
				}
			},
			wantErr: `database.listen_channel "events; DROP TABLE rfqs" must be a lowercase identifier`,
		},
		{
			name:    "bad log level",
			mutate:  func(c *NotifierConfig) { c.Logging.Level = "verbose" },
			wantErr: `logging.level must be one of debug, info, warn, error, got "verbose"`,
		},
		{
			name:    "bad log format",
			mutate:  func(c *NotifierConfig) { c.Logging.Format = "xml" },
			wantErr: `logging.format must be text or json, got "xml"`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)

			err := cfg.Validate()
			if tt.wantErr == "" {
				if err != nil {
					t.Errorf("Validate() unexpected error: %v", err)
				}
			} else {
				if err == nil {
					t.Errorf("Validate() expected error containing %q, got nil", tt.wantErr)
				} else if err.Error() != tt.wantErr {
					t.Errorf("Validate() error = %q, want %q", err.Error(), tt.wantErr)
				}
			}
		})
	}
}

func writeTempFile(t *testing.T, content string) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("write temp file: %v", err)
	}
	return path
}

func TestWatch(t *testing.T) {
	path := writeTempFile(t, "logging:\n  level: info\n")

	changes := make(chan *NotifierConfig, 10)
	stop, err := Watch(path, func(cfg *NotifierConfig) { changes <- cfg }, nil)
	if err != nil {
		t.Fatalf("Watch failed: %v", err)
	}
	defer stop()

	// Invalid edit is skipped
	if err := os.WriteFile(path, []byte("logging:\n  level: loud\n"), 0644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte("logging:\n  level: debug\n"), 0644); err != nil {
		t.Fatal(err)
	}

	timeout := time.After(5 * time.Second)
	for {
		select {
		case cfg := <-changes:
			if cfg.Logging.Level == "loud" {
				t.Fatal("invalid config was delivered")
			}
			if cfg.Logging.Level == "debug" {
				return
			}
		case <-timeout:
			t.Fatal("timeout waiting for reload")
		}
	}
}

func TestWatchMissingDir(t *testing.T) {
	_, err := Watch(filepath.Join(t.TempDir(), "missing", "config.yaml"), func(*NotifierConfig) {}, nil)
	if err == nil {
		t.Error("Watch on a missing directory should fail")
	}
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv("NOTIFIER_SERVER_ADDR", ":7000")
	t.Setenv("NOTIFIER_SERVER_ALLOWED_ORIGINS", "https://bell24h.com,https://admin.bell24h.com")
	t.Setenv("NOTIFIER_HEARTBEAT_INTERVAL", "10s")
	t.Setenv("NOTIFIER_AUTH_ALLOW_REBIND", "false")
	t.Setenv("NOTIFIER_DATABASE_PASSWORD", "from-env")

	path := writeTempFile(t, `
server:
  addr: ":8080"
  ws_path: /socket
database:
  password: from-file
`)

	cfg, err := LoadWithDefaults(path)
	if err != nil {
		t.Fatalf("LoadWithDefaults failed: %v", err)
	}

	if cfg.Server.Addr != ":7000" {
		t.Errorf("Server.Addr = %q, want env value", cfg.Server.Addr)
	}
	if cfg.Server.WSPath != "/socket" {
		t.Errorf("Server.WSPath = %q, want file value", cfg.Server.WSPath)
	}
	if len(cfg.Server.AllowedOrigins) != 2 || cfg.Server.AllowedOrigins[1] != "https://admin.bell24h.com" {
		t.Errorf("Server.AllowedOrigins = %v", cfg.Server.AllowedOrigins)
	}
	if cfg.Heartbeat.Interval != 10*time.Second {
		t.Errorf("Heartbeat.Interval = %v, want 10s", cfg.Heartbeat.Interval)
	}
	if cfg.Auth.RebindAllowed() {
		t.Error("Auth.RebindAllowed() = true, want env false")
	}
	if cfg.Database.Password != "from-env" {
		t.Errorf("Database.Password = %q, want env value", cfg.Database.Password)
	}
}

func TestLoadFromEnv(t *testing.T) {
	t.Setenv("NOTIFIER_INSTANCE_ID", "notifier-env")
	t.Setenv("NOTIFIER_CONNECTIONS_MAX_CONNECTIONS", "500")

	cfg, err := LoadFromEnv()
	if err != nil {
		t.Fatalf("LoadFromEnv failed: %v", err)
	}
	if cfg.Instance.ID != "notifier-env" {
		t.Errorf("Instance.ID = %q", cfg.Instance.ID)
	}
	if cfg.Connections.MaxConnections != 500 {
		t.Errorf("Connections.MaxConnections = %d, want 500", cfg.Connections.MaxConnections)
	}
	if cfg.Server.Addr != DefaultAddr {
		t.Errorf("Server.Addr = %q, want default", cfg.Server.Addr)
	}

	t.Setenv("NOTIFIER_SERVER_WS_PATH", "/metrics")
	if _, err := LoadFromEnv(); err == nil {
		t.Error("LoadFromEnv should validate")
	}

	t.Setenv("NOTIFIER_SERVER_WS_PATH", "/ws")
	t.Setenv("NOTIFIER_HEARTBEAT_INTERVAL", "soon")
	if _, err := LoadFromEnv(); err == nil {
		t.Error("LoadFromEnv should reject a bad duration")
	}
}
