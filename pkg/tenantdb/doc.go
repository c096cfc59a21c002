// Package tenantdb routes database operations to the correct tenant database
// and wraps them in a uniform safety envelope.
//
// Each organization owns a physically separate database; the master database
// maps org ids to connection parameters. The package has three layers:
//
//   - Registry caches the org id to connection string mapping with a sliding
//     TTL and collapses concurrent cold lookups for the same org into a single
//     directory fetch (single-flight), so a burst of first requests for a
//     tenant produces exactly one master database round trip.
//
//   - Directory performs that master database lookup and assembles a pgx
//     connection string with fixed pooling parameters.
//
//   - Executor runs a caller-supplied unit of work against the tenant's
//     database: it resolves the connection through the Registry, acquires a
//     scoped connection, classifies any failure into a stable ErrorKind with a
//     caller-safe message, and releases the connection on every exit path.
//     Raw driver errors never cross the executor boundary; full diagnostic
//     detail is logged at the point of classification.
//
// The Executor never retries failed operations — most tenant operations are
// not safely idempotent, so retry policy belongs to the caller.
package tenantdb
