package database

import (
	"net"
	"net/url"
	"strconv"

	"github.com/bell24h/realtime/internal/config"
)

// BuildConnString builds a PostgreSQL URL from config. appName, when set, is
// reported to the server as application_name so the LISTEN session can be
// told apart in pg_stat_activity.
func BuildConnString(cfg config.DBConfig, appName string) string {
	sslMode := cfg.SSLMode
	if sslMode == "" {
		sslMode = config.DefaultDBSSLMode
	}

	query := url.Values{"sslmode": {sslMode}}
	if appName != "" {
		query.Set("application_name", appName)
	}

	u := url.URL{
		Scheme:   "postgres",
		User:     url.UserPassword(cfg.User, cfg.Password),
		Host:     net.JoinHostPort(cfg.Host, strconv.Itoa(cfg.Port)),
		Path:     "/" + cfg.Name,
		RawQuery: query.Encode(),
	}
	return u.String()
}
