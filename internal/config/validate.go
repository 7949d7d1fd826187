package config

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
)

// channelPattern matches an unquoted Postgres identifier usable in LISTEN.
var channelPattern = regexp.MustCompile(`^[a-z_][a-z0-9_]*$`)

// Validate checks that all required fields are set and values are valid.
func (c *NotifierConfig) Validate() error {
	if c.Instance.ID == "" {
		return errors.New("instance.id is required")
	}

	if c.Server.Addr == "" {
		return errors.New("server.addr is required")
	}
	if err := validatePath("server.ws_path", c.Server.WSPath); err != nil {
		return err
	}
	if c.Server.ReadLimit < 1 {
		return errors.New("server.read_limit must be >= 1")
	}
	if c.Server.ShutdownTimeout < 0 {
		return errors.New("server.shutdown_timeout must be >= 0")
	}

	if c.Heartbeat.Interval <= 0 {
		return errors.New("heartbeat.interval must be > 0")
	}

	if c.Connections.SendBuffer < 1 {
		return errors.New("connections.send_buffer must be >= 1")
	}
	if c.Connections.WriteTimeout <= 0 {
		return errors.New("connections.write_timeout must be > 0")
	}
	if c.Connections.MaxConnections < 0 {
		return errors.New("connections.max_connections must be >= 0")
	}

	if err := validatePath("metrics.path", c.Metrics.Path); err != nil {
		return err
	}
	if c.Server.WSPath == HealthPath {
		return fmt.Errorf("server.ws_path %q collides with the health endpoint", c.Server.WSPath)
	}
	if c.Server.WSPath == c.Metrics.Path {
		return fmt.Errorf("server.ws_path %q collides with metrics.path", c.Server.WSPath)
	}
	if c.Events.Enabled() {
		if err := validatePath("events.api_path", c.Events.APIPath); err != nil {
			return err
		}
		if c.Server.WSPath == c.Events.APIPath {
			return fmt.Errorf("server.ws_path %q collides with events.api_path", c.Server.WSPath)
		}
	}

	if c.Database.Enabled {
		if err := c.Database.validate("database"); err != nil {
			return err
		}
	}

	switch strings.ToLower(c.Logging.Level) {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("logging.level must be one of debug, info, warn, error, got %q", c.Logging.Level)
	}
	switch c.Logging.Format {
	case "text", "json":
	default:
		return fmt.Errorf("logging.format must be text or json, got %q", c.Logging.Format)
	}

	return nil
}

func (db *DBConfig) validate(prefix string) error {
	if db.Host == "" {
		return fmt.Errorf("%s.host is required", prefix)
	}
	if db.Name == "" {
		return fmt.Errorf("%s.name is required", prefix)
	}
	if db.User == "" {
		return fmt.Errorf("%s.user is required", prefix)
	}
	if db.Password == "" {
		return fmt.Errorf("%s.password is required", prefix)
	}
	if db.MaxConns < 1 {
		return fmt.Errorf("%s.max_conns must be >= 1", prefix)
	}
	if db.MinConns < 0 {
		return fmt.Errorf("%s.min_conns must be >= 0", prefix)
	}
	if db.MinConns > db.MaxConns {
		return fmt.Errorf("%s.min_conns (%d) cannot exceed max_conns (%d)", prefix, db.MinConns, db.MaxConns)
	}
	if !channelPattern.MatchString(db.ListenChannel) {
		return fmt.Errorf("%s.listen_channel %q must be a lowercase identifier", prefix, db.ListenChannel)
	}
	return nil
}

func validatePath(field, path string) error {
	if !strings.HasPrefix(path, "/") {
		return fmt.Errorf("%s must start with /, got %q", field, path)
	}
	return nil
}
