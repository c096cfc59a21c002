package tenantdb

// ErrorKind is the stable failure taxonomy surfaced by the Executor,
// independent of the underlying driver's error types. Handlers translate
// kinds into their own response shapes; this layer does not dictate HTTP
// status codes.
type ErrorKind string

const (
	KindUnauthorized     ErrorKind = "unauthorized"      // missing/invalid tenant or user context
	KindForbidden        ErrorKind = "forbidden"         // cross-tenant access attempt
	KindConflict         ErrorKind = "conflict"          // unique constraint violation
	KindInvalidReference ErrorKind = "invalid_reference" // foreign key violation
	KindMissingField     ErrorKind = "missing_field"     // not-null violation
	KindUnavailable      ErrorKind = "unavailable"       // transient / resource exhaustion
	KindTimeout          ErrorKind = "timeout"           // operation exceeded its allotted time
	KindNotFound         ErrorKind = "not_found"         // tenant/org not found or inactive
	KindUnknown          ErrorKind = "unknown"           // anything uncategorized
)

// Outcome is the uniform result of a tenant-scoped operation: either a
// success payload or a classified failure with a caller-safe message.
type Outcome[T any] struct {
	OK      bool
	Data    T
	Kind    ErrorKind
	Message string
}

// Success wraps a payload in a successful Outcome.
func Success[T any](data T) Outcome[T] {
	return Outcome[T]{OK: true, Data: data}
}

// Failure builds a failed Outcome with a classified kind and safe message.
func Failure[T any](kind ErrorKind, message string) Outcome[T] {
	return Outcome[T]{OK: false, Kind: kind, Message: message}
}
