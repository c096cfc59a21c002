package tenantdb

import (
	"context"
	"log/slog"
)

// DirectoryLookup is the master-directory dependency of the Executor,
// satisfied by *Directory in production.
type DirectoryLookup interface {
	Lookup(ctx context.Context, orgID string) (string, error)
}

// Executor is the single place where "run this unit of work against tenant
// X's database" is implemented, so connection lifecycle, error taxonomy and
// logging stay consistent across every tenant-scoped operation.
type Executor struct {
	registry  *Registry
	directory DirectoryLookup
	connector Connector
	log       *slog.Logger
}

// NewExecutor wires the Executor's collaborators.
func NewExecutor(registry *Registry, directory DirectoryLookup, connector Connector, log *slog.Logger) *Executor {
	return &Executor{
		registry:  registry,
		directory: directory,
		connector: connector,
		log:       log,
	}
}

// Execute resolves the tenant's connection, runs op against it, and converts
// the result into an Outcome. The connection is released on every exit path,
// including a panic inside op. Failed operations are never retried here.
func Execute[T any](ctx context.Context, e *Executor, orgID, operationName string, op func(ctx context.Context, conn Conn) (T, error)) Outcome[T] {
	conn, outcome := acquire[T](ctx, e, orgID, operationName)
	if conn == nil {
		return outcome
	}
	defer conn.Close(ctx)

	result, err := op(ctx, conn)
	if err != nil {
		return classified[T](ctx, e, orgID, operationName, err)
	}

	e.log.DebugContext(ctx, "tenant operation completed",
		slog.String("operation", operationName),
		slog.String("org_id", orgID))
	return Success(result)
}

// ExecuteRowsAffected runs an update/delete style operation and maps
// "rows affected > 0" to a boolean payload.
func (e *Executor) ExecuteRowsAffected(ctx context.Context, orgID, operationName string, op func(ctx context.Context, conn Conn) (int64, error)) Outcome[bool] {
	return Execute(ctx, e, orgID, operationName, func(ctx context.Context, conn Conn) (bool, error) {
		rows, err := op(ctx, conn)
		if err != nil {
			return false, err
		}
		return rows > 0, nil
	})
}

// ExecuteTx runs op inside a transaction: commit on success, rollback on any
// error. A rollback failure is logged but never masks the original error.
func ExecuteTx[T any](ctx context.Context, e *Executor, orgID, operationName string, op func(ctx context.Context, tx Tx) (T, error)) Outcome[T] {
	conn, outcome := acquire[T](ctx, e, orgID, operationName)
	if conn == nil {
		return outcome
	}
	defer conn.Close(ctx)

	tx, err := conn.Begin(ctx)
	if err != nil {
		return classified[T](ctx, e, orgID, operationName, err)
	}

	result, err := op(ctx, tx)
	if err != nil {
		if rbErr := tx.Rollback(ctx); rbErr != nil {
			e.log.ErrorContext(ctx, "transaction rollback failed",
				slog.String("operation", operationName),
				slog.String("org_id", orgID),
				slog.Any("error", rbErr))
		} else {
			e.log.WarnContext(ctx, "transaction rolled back",
				slog.String("operation", operationName),
				slog.String("org_id", orgID))
		}
		return classified[T](ctx, e, orgID, operationName, err)
	}

	if err := tx.Commit(ctx); err != nil {
		return classified[T](ctx, e, orgID, operationName, err)
	}

	e.log.DebugContext(ctx, "tenant transaction completed",
		slog.String("operation", operationName),
		slog.String("org_id", orgID))
	return Success(result)
}

// Warm resolves and caches the tenant's connection string without acquiring a
// connection. Called after login so the first data request skips the
// directory lookup.
func (e *Executor) Warm(ctx context.Context, orgID string) error {
	_, err := e.registry.Resolve(ctx, orgID, func(ctx context.Context) (string, error) {
		return e.directory.Lookup(ctx, orgID)
	})
	return err
}

// Invalidate drops the tenant's cached connection string and any pooled
// connections built from it. Used on logout and deprovisioning.
func (e *Executor) Invalidate(orgID string) {
	connString, removed := e.registry.invalidate(orgID)
	if !removed {
		return
	}
	e.connector.Evict(connString)
	e.log.Info("tenant connections invalidated", slog.String("org_id", orgID))
}

// acquire resolves the connection string through the registry (with the
// directory lookup as the fetch) and opens a scoped connection. On failure it
// returns a nil Conn and the classified outcome.
func acquire[T any](ctx context.Context, e *Executor, orgID, operationName string) (Conn, Outcome[T]) {
	connString, err := e.registry.Resolve(ctx, orgID, func(ctx context.Context) (string, error) {
		return e.directory.Lookup(ctx, orgID)
	})
	if err != nil {
		return nil, classified[T](ctx, e, orgID, operationName, err)
	}

	conn, err := e.connector.Acquire(ctx, connString)
	if err != nil {
		return nil, classified[T](ctx, e, orgID, operationName, err)
	}
	return conn, Outcome[T]{}
}

// classified logs full diagnostic detail and returns the sanitized Outcome.
// Constraint-style failures are expected business noise and log at warning;
// everything else is an operational error.
func classified[T any](ctx context.Context, e *Executor, orgID, operationName string, err error) Outcome[T] {
	kind, message := Classify(err)

	level := slog.LevelError
	switch kind {
	case KindConflict, KindInvalidReference, KindMissingField, KindNotFound:
		level = slog.LevelWarn
	}

	e.log.Log(ctx, level, "tenant operation failed",
		slog.String("operation", operationName),
		slog.String("org_id", orgID),
		slog.String("kind", string(kind)),
		slog.Any("error", err))

	return Failure[T](kind, message)
}
