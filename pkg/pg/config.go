package pg

import "time"

// Config describes the master database connection. The master database holds
// the tenant directory (org and connection mappings) plus shared account data;
// per-tenant databases are reached through pkg/tenantdb instead.
type Config struct {
	ConnectionString  string        `env:"MASTER_DB_URL,required"`                     // postgres:// URL of the master database
	MaxOpenConns      int32         `env:"MASTER_DB_MAX_OPEN_CONNS" envDefault:"10"`   // maximum open connections in the pool
	MinIdleConns      int32         `env:"MASTER_DB_MIN_IDLE_CONNS" envDefault:"2"`    // minimum idle connections kept warm
	HealthCheckPeriod time.Duration `env:"MASTER_DB_HEALTHCHECK_PERIOD" envDefault:"1m"`
	MaxConnIdleTime   time.Duration `env:"MASTER_DB_MAX_CONN_IDLE_TIME" envDefault:"10m"`
	MaxConnLifetime   time.Duration `env:"MASTER_DB_MAX_CONN_LIFETIME" envDefault:"30m"`

	RetryAttempts int           `env:"MASTER_DB_RETRY_ATTEMPTS" envDefault:"3"` // connection attempts before giving up
	RetryInterval time.Duration `env:"MASTER_DB_RETRY_INTERVAL" envDefault:"5s"`
}
