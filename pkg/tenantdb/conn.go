package tenantdb

import (
	"context"
	"sync"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Querier is the subset of database operations available to tenant units of
// work. *pgx.Conn, pgx.Tx and pgxpool connections all satisfy it.
type Querier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// Conn is a scoped tenant database connection. The Executor guarantees Close
// is called exactly once on every exit path.
type Conn interface {
	Querier
	Begin(ctx context.Context) (Tx, error)
	Close(ctx context.Context) error
}

// Tx is a transaction on a tenant database connection.
type Tx interface {
	Querier
	Commit(ctx context.Context) error
	Rollback(ctx context.Context) error
}

// Connector acquires connections for tenant connection strings. The interface
// exists so the Executor can be exercised in tests without a database.
type Connector interface {
	// Acquire returns a ready-to-use connection for the connection string.
	Acquire(ctx context.Context, connString string) (Conn, error)
	// Evict releases pooled resources for a connection string, used when a
	// tenant is invalidated or its credentials rotate.
	Evict(connString string)
	// Close releases all pooled resources. Called at shutdown.
	Close()
}

// PoolConnector is the production Connector: one lazily created pgx pool per
// connection string, sized by the pool_* parameters the Directory embeds in
// the string. Acquire hands out individual pooled connections.
type PoolConnector struct {
	mu    sync.Mutex
	pools map[string]*pgxpool.Pool
}

// NewPoolConnector creates an empty PoolConnector.
func NewPoolConnector() *PoolConnector {
	return &PoolConnector{pools: make(map[string]*pgxpool.Pool)}
}

// Acquire returns a pooled connection for the connection string, creating the
// pool on first use.
func (c *PoolConnector) Acquire(ctx context.Context, connString string) (Conn, error) {
	pool, err := c.pool(ctx, connString)
	if err != nil {
		return nil, err
	}
	pc, err := pool.Acquire(ctx)
	if err != nil {
		return nil, err
	}
	return &poolConn{conn: pc}, nil
}

func (c *PoolConnector) pool(ctx context.Context, connString string) (*pgxpool.Pool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if pool, ok := c.pools[connString]; ok {
		return pool, nil
	}
	// pgxpool establishes connections lazily, so construction is cheap and
	// holding the mutex across it is fine.
	pool, err := pgxpool.New(ctx, connString)
	if err != nil {
		return nil, err
	}
	c.pools[connString] = pool
	return pool, nil
}

// Evict closes the pool for a connection string, if any. The close runs in
// the background because pgxpool.Close waits for checked-out connections.
func (c *PoolConnector) Evict(connString string) {
	c.mu.Lock()
	pool, ok := c.pools[connString]
	if ok {
		delete(c.pools, connString)
	}
	c.mu.Unlock()

	if ok {
		go pool.Close()
	}
}

// Close closes all pools.
func (c *PoolConnector) Close() {
	c.mu.Lock()
	pools := c.pools
	c.pools = make(map[string]*pgxpool.Pool)
	c.mu.Unlock()

	for _, pool := range pools {
		pool.Close()
	}
}

// poolConn adapts *pgxpool.Conn to the Conn interface.
type poolConn struct {
	conn *pgxpool.Conn
}

func (p *poolConn) Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error) {
	return p.conn.Exec(ctx, sql, args...)
}

func (p *poolConn) Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error) {
	return p.conn.Query(ctx, sql, args...)
}

func (p *poolConn) QueryRow(ctx context.Context, sql string, args ...any) pgx.Row {
	return p.conn.QueryRow(ctx, sql, args...)
}

func (p *poolConn) Begin(ctx context.Context) (Tx, error) {
	tx, err := p.conn.Begin(ctx)
	if err != nil {
		return nil, err
	}
	return pgxTx{tx: tx}, nil
}

func (p *poolConn) Close(ctx context.Context) error {
	p.conn.Release()
	return nil
}

// pgxTx adapts pgx.Tx to the Tx interface.
type pgxTx struct {
	tx pgx.Tx
}

func (t pgxTx) Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error) {
	return t.tx.Exec(ctx, sql, args...)
}

func (t pgxTx) Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error) {
	return t.tx.Query(ctx, sql, args...)
}

func (t pgxTx) QueryRow(ctx context.Context, sql string, args ...any) pgx.Row {
	return t.tx.QueryRow(ctx, sql, args...)
}

func (t pgxTx) Commit(ctx context.Context) error {
	return t.tx.Commit(ctx)
}

func (t pgxTx) Rollback(ctx context.Context) error {
	return t.tx.Rollback(ctx)
}
