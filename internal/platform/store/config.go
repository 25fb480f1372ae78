package store

import (
	"time"

	"predictkit/internal/platform/config"
)

type Config struct {
	AppName string
	PG      PGConfig
}

type PGConfig struct {
	Enabled     bool
	URL         string
	MaxConns    int32
	LogSQL      bool
	SlowQueryMs int

	// boot ping: zero means 20 attempts, 3s each
	ConnectRetries int
	PingTimeout    time.Duration
}

// ConfigFrom reads SERVICE_PGSQL_* under c. Postgres is enabled when DBURL is set
func ConfigFrom(c config.Conf, app string) Config {
	pg := c.Prefix("SERVICE_PGSQL_")
	url := pg.MayString("DBURL", "")
	return Config{
		AppName: app,
		PG: PGConfig{
			Enabled:        url != "",
			URL:            url,
			MaxConns:       int32(pg.MayInt("MAX_CONNS", 4)),
			LogSQL:         pg.MayBool("LOG_SQL", false),
			SlowQueryMs:    pg.MayInt("SLOW_MS", 500),
			ConnectRetries: pg.MayInt("CONNECT_RETRIES", 0),
			PingTimeout:    pg.MayDuration("PING_TIMEOUT", 0),
		},
	}
}

func (c PGConfig) retries() int {
	if c.ConnectRetries > 0 {
		return c.ConnectRetries
	}
	return 20
}

func (c PGConfig) pingTimeout() time.Duration {
	if c.PingTimeout > 0 {
		return c.PingTimeout
	}
	return 3 * time.Second
}
