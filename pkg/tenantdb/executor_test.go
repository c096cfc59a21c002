package tenantdb

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeDirectory struct {
	connString string
	err        error
	lookups    int
}

func (d *fakeDirectory) Lookup(ctx context.Context, orgID string) (string, error) {
	d.lookups++
	return d.connString, d.err
}

type fakeConnector struct {
	conn       *fakeConn
	acquireErr error
	acquired   []string
	evicted    []string
}

func (c *fakeConnector) Acquire(ctx context.Context, connString string) (Conn, error) {
	c.acquired = append(c.acquired, connString)
	if c.acquireErr != nil {
		return nil, c.acquireErr
	}
	return c.conn, nil
}

func (c *fakeConnector) Evict(connString string) {
	c.evicted = append(c.evicted, connString)
}

func (c *fakeConnector) Close() {}

type fakeConn struct {
	tx       *fakeTx
	beginErr error
	closes   int
}

func (c *fakeConn) Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error) {
	return pgconn.CommandTag{}, nil
}

func (c *fakeConn) Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error) {
	return nil, nil
}

func (c *fakeConn) QueryRow(ctx context.Context, sql string, args ...any) pgx.Row {
	return nil
}

func (c *fakeConn) Begin(ctx context.Context) (Tx, error) {
	if c.beginErr != nil {
		return nil, c.beginErr
	}
	return c.tx, nil
}

func (c *fakeConn) Close(ctx context.Context) error {
	c.closes++
	return nil
}

type fakeTx struct {
	commitErr   error
	rollbackErr error
	commits     int
	rollbacks   int
}

func (t *fakeTx) Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error) {
	return pgconn.CommandTag{}, nil
}

func (t *fakeTx) Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error) {
	return nil, nil
}

func (t *fakeTx) QueryRow(ctx context.Context, sql string, args ...any) pgx.Row {
	return nil
}

func (t *fakeTx) Commit(ctx context.Context) error {
	t.commits++
	return t.commitErr
}

func (t *fakeTx) Rollback(ctx context.Context) error {
	t.rollbacks++
	return t.rollbackErr
}

func newTestExecutor(t *testing.T, directory *fakeDirectory, connector *fakeConnector) *Executor {
	t.Helper()
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	registry := NewRegistry(RegistryConfig{TTL: time.Minute, MaxEntries: 100}, log)
	t.Cleanup(registry.Close)
	return NewExecutor(registry, directory, connector, log)
}

func TestExecute(t *testing.T) {
	t.Parallel()

	t.Run("returns payload and releases connection", func(t *testing.T) {
		t.Parallel()

		conn := &fakeConn{}
		connector := &fakeConnector{conn: conn}
		directory := &fakeDirectory{connString: "postgres://tenant"}
		e := newTestExecutor(t, directory, connector)

		outcome := Execute(context.Background(), e, "org-1", "list_products", func(ctx context.Context, c Conn) ([]string, error) {
			return []string{"sku-1", "sku-2"}, nil
		})

		require.True(t, outcome.OK)
		assert.Equal(t, []string{"sku-1", "sku-2"}, outcome.Data)
		assert.Empty(t, outcome.Kind)
		assert.Equal(t, 1, conn.closes)
		assert.Equal(t, []string{"postgres://tenant"}, connector.acquired)
	})

	t.Run("resolves through the cache on repeated calls", func(t *testing.T) {
		t.Parallel()

		connector := &fakeConnector{conn: &fakeConn{}}
		directory := &fakeDirectory{connString: "postgres://tenant"}
		e := newTestExecutor(t, directory, connector)

		for i := 0; i < 3; i++ {
			outcome := Execute(context.Background(), e, "org-1", "noop", func(ctx context.Context, c Conn) (int, error) {
				return 0, nil
			})
			require.True(t, outcome.OK)
		}
		assert.Equal(t, 1, directory.lookups)
	})

	t.Run("classifies operation errors and still releases the connection", func(t *testing.T) {
		t.Parallel()

		conn := &fakeConn{}
		connector := &fakeConnector{conn: conn}
		directory := &fakeDirectory{connString: "postgres://tenant"}
		e := newTestExecutor(t, directory, connector)

		outcome := Execute(context.Background(), e, "org-1", "insert_product", func(ctx context.Context, c Conn) (int64, error) {
			return 0, &pgconn.PgError{Code: "23505"}
		})

		require.False(t, outcome.OK)
		assert.Equal(t, KindConflict, outcome.Kind)
		assert.Equal(t, msgConflict, outcome.Message)
		assert.Equal(t, 1, conn.closes)
	})

	t.Run("unknown tenant fails without acquiring a connection", func(t *testing.T) {
		t.Parallel()

		connector := &fakeConnector{conn: &fakeConn{}}
		directory := &fakeDirectory{err: ErrTenantNotFound}
		e := newTestExecutor(t, directory, connector)

		outcome := Execute(context.Background(), e, "org-unknown", "list_products", func(ctx context.Context, c Conn) (int, error) {
			t.Fatal("operation must not run for an unknown tenant")
			return 0, nil
		})

		require.False(t, outcome.OK)
		assert.Equal(t, KindNotFound, outcome.Kind)
		assert.Empty(t, connector.acquired)
	})

	t.Run("acquire failure is classified", func(t *testing.T) {
		t.Parallel()

		connector := &fakeConnector{acquireErr: errors.New("pool exhausted")}
		directory := &fakeDirectory{connString: "postgres://tenant"}
		e := newTestExecutor(t, directory, connector)

		outcome := Execute(context.Background(), e, "org-1", "list_products", func(ctx context.Context, c Conn) (int, error) {
			t.Fatal("operation must not run without a connection")
			return 0, nil
		})

		require.False(t, outcome.OK)
		assert.Equal(t, KindUnknown, outcome.Kind)
	})
}

func TestExecuteRowsAffected(t *testing.T) {
	t.Parallel()

	connector := &fakeConnector{conn: &fakeConn{}}
	directory := &fakeDirectory{connString: "postgres://tenant"}
	e := newTestExecutor(t, directory, connector)

	t.Run("true when rows were affected", func(t *testing.T) {
		outcome := e.ExecuteRowsAffected(context.Background(), "org-1", "update_product", func(ctx context.Context, c Conn) (int64, error) {
			return 3, nil
		})
		require.True(t, outcome.OK)
		assert.True(t, outcome.Data)
	})

	t.Run("false when nothing matched", func(t *testing.T) {
		outcome := e.ExecuteRowsAffected(context.Background(), "org-1", "update_product", func(ctx context.Context, c Conn) (int64, error) {
			return 0, nil
		})
		require.True(t, outcome.OK)
		assert.False(t, outcome.Data)
	})
}

func TestExecuteTx(t *testing.T) {
	t.Parallel()

	t.Run("commits on success", func(t *testing.T) {
		t.Parallel()

		tx := &fakeTx{}
		conn := &fakeConn{tx: tx}
		connector := &fakeConnector{conn: conn}
		directory := &fakeDirectory{connString: "postgres://tenant"}
		e := newTestExecutor(t, directory, connector)

		outcome := ExecuteTx(context.Background(), e, "org-1", "reorder_columns", func(ctx context.Context, tx Tx) (string, error) {
			return "done", nil
		})

		require.True(t, outcome.OK)
		assert.Equal(t, "done", outcome.Data)
		assert.Equal(t, 1, tx.commits)
		assert.Zero(t, tx.rollbacks)
		assert.Equal(t, 1, conn.closes)
	})

	t.Run("rolls back on operation error", func(t *testing.T) {
		t.Parallel()

		tx := &fakeTx{}
		conn := &fakeConn{tx: tx}
		connector := &fakeConnector{conn: conn}
		directory := &fakeDirectory{connString: "postgres://tenant"}
		e := newTestExecutor(t, directory, connector)

		outcome := ExecuteTx(context.Background(), e, "org-1", "reorder_columns", func(ctx context.Context, tx Tx) (string, error) {
			return "", &pgconn.PgError{Code: "23503"}
		})

		require.False(t, outcome.OK)
		assert.Equal(t, KindInvalidReference, outcome.Kind)
		assert.Zero(t, tx.commits)
		assert.Equal(t, 1, tx.rollbacks)
		assert.Equal(t, 1, conn.closes)
	})

	t.Run("rollback failure does not mask the operation error", func(t *testing.T) {
		t.Parallel()

		tx := &fakeTx{rollbackErr: errors.New("connection gone")}
		conn := &fakeConn{tx: tx}
		connector := &fakeConnector{conn: conn}
		directory := &fakeDirectory{connString: "postgres://tenant"}
		e := newTestExecutor(t, directory, connector)

		outcome := ExecuteTx(context.Background(), e, "org-1", "reorder_columns", func(ctx context.Context, tx Tx) (string, error) {
			return "", &pgconn.PgError{Code: "23505"}
		})

		require.False(t, outcome.OK)
		assert.Equal(t, KindConflict, outcome.Kind)
		assert.Equal(t, msgConflict, outcome.Message)
	})

	t.Run("commit failure is classified", func(t *testing.T) {
		t.Parallel()

		tx := &fakeTx{commitErr: &pgconn.PgError{Code: "08006"}}
		conn := &fakeConn{tx: tx}
		connector := &fakeConnector{conn: conn}
		directory := &fakeDirectory{connString: "postgres://tenant"}
		e := newTestExecutor(t, directory, connector)

		outcome := ExecuteTx(context.Background(), e, "org-1", "reorder_columns", func(ctx context.Context, tx Tx) (string, error) {
			return "done", nil
		})

		require.False(t, outcome.OK)
		assert.Equal(t, KindUnavailable, outcome.Kind)
		assert.Equal(t, 1, conn.closes)
	})

	t.Run("begin failure releases the connection", func(t *testing.T) {
		t.Parallel()

		conn := &fakeConn{beginErr: errors.New("broken")}
		connector := &fakeConnector{conn: conn}
		directory := &fakeDirectory{connString: "postgres://tenant"}
		e := newTestExecutor(t, directory, connector)

		outcome := ExecuteTx(context.Background(), e, "org-1", "reorder_columns", func(ctx context.Context, tx Tx) (string, error) {
			t.Fatal("operation must not run without a transaction")
			return "", nil
		})

		require.False(t, outcome.OK)
		assert.Equal(t, 1, conn.closes)
	})
}

func TestExecutorInvalidate(t *testing.T) {
	t.Parallel()

	t.Run("evicts pooled connections and forces a fresh lookup", func(t *testing.T) {
		t.Parallel()

		connector := &fakeConnector{conn: &fakeConn{}}
		directory := &fakeDirectory{connString: "postgres://tenant"}
		e := newTestExecutor(t, directory, connector)

		outcome := Execute(context.Background(), e, "org-1", "noop", func(ctx context.Context, c Conn) (int, error) {
			return 0, nil
		})
		require.True(t, outcome.OK)

		e.Invalidate("org-1")
		assert.Equal(t, []string{"postgres://tenant"}, connector.evicted)

		outcome = Execute(context.Background(), e, "org-1", "noop", func(ctx context.Context, c Conn) (int, error) {
			return 0, nil
		})
		require.True(t, outcome.OK)
		assert.Equal(t, 2, directory.lookups)
	})

	t.Run("no-op for an unknown tenant", func(t *testing.T) {
		t.Parallel()

		connector := &fakeConnector{conn: &fakeConn{}}
		e := newTestExecutor(t, &fakeDirectory{}, connector)

		e.Invalidate("never-resolved")
		assert.Empty(t, connector.evicted)
	})
}
