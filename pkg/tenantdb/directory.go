package tenantdb

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// DirectoryConfig carries the fixed pooling parameters embedded into every
// tenant connection string. These are deployment configuration, not computed
// per tenant.
type DirectoryConfig struct {
	SSLMode         string        `env:"TENANT_DB_SSLMODE" envDefault:"require"`
	MinPoolConns    int32         `env:"TENANT_DB_MIN_POOL_CONNS" envDefault:"2"`
	MaxPoolConns    int32         `env:"TENANT_DB_MAX_POOL_CONNS" envDefault:"20"`
	MaxConnIdleTime time.Duration `env:"TENANT_DB_MAX_CONN_IDLE_TIME" envDefault:"5m"`
}

// Directory resolves a tenant's physical connection parameters from the
// master database. It is the expensive lookup the Registry exists to cache.
type Directory struct {
	master *pgxpool.Pool
	cfg    DirectoryConfig
	log    *slog.Logger
}

// NewDirectory creates a Directory over the master database pool.
func NewDirectory(master *pgxpool.Pool, cfg DirectoryConfig, log *slog.Logger) *Directory {
	return &Directory{master: master, cfg: cfg, log: log}
}

const lookupQuery = `
	SELECT c.host, c.port, c.db_name, c.username, c.password
	FROM org_master o
	INNER JOIN con_master c ON o.con_id = c.con_id
	WHERE o.org_id = $1
	  AND o.is_active = true
	  AND c.is_active = true`

// Lookup queries the master directory for the organization's database
// parameters and assembles a pgx connection string. Unknown or inactive
// organizations yield ErrTenantNotFound.
func (d *Directory) Lookup(ctx context.Context, orgID string) (string, error) {
	orgUUID, err := uuid.Parse(orgID)
	if err != nil {
		return "", fmt.Errorf("%w: %q", ErrInvalidOrgID, orgID)
	}

	var (
		host     string
		port     int
		dbName   string
		username string
		password string
	)
	err = d.master.QueryRow(ctx, lookupQuery, orgUUID).Scan(&host, &port, &dbName, &username, &password)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return "", fmt.Errorf("%w: %s", ErrTenantNotFound, orgID)
		}
		return "", fmt.Errorf("tenantdb: directory lookup failed: %w", err)
	}

	u := url.URL{
		Scheme: "postgres",
		User:   url.UserPassword(username, password),
		Host:   fmt.Sprintf("%s:%d", host, port),
		Path:   "/" + dbName,
	}
	q := url.Values{}
	q.Set("sslmode", d.cfg.SSLMode)
	q.Set("pool_min_conns", strconv.Itoa(int(d.cfg.MinPoolConns)))
	q.Set("pool_max_conns", strconv.Itoa(int(d.cfg.MaxPoolConns)))
	q.Set("pool_max_conn_idle_time", d.cfg.MaxConnIdleTime.String())
	u.RawQuery = q.Encode()

	d.log.DebugContext(ctx, "tenant connection string assembled",
		slog.String("org_id", orgID),
		slog.String("db_host", host),
		slog.String("db_name", dbName))

	return u.String(), nil
}
