package tenantdb

import (
	"context"
	"errors"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"
)

// Caller-safe messages per kind. Raw driver detail (SQL text, constraint
// names, host names) never appears here; it goes to the logs instead.
const (
	msgConflict         = "A record with this information already exists."
	msgInvalidReference = "Invalid reference data provided. Please check your input."
	msgMissingField     = "Required field is missing."
	msgUnavailable      = "Database temporarily unavailable. Please try again in a moment."
	msgTimeout          = "Operation timed out. Please try again or contact support if the issue persists."
	msgNotFound         = "Invalid tenant. Please contact support."
	msgUnknown          = "An unexpected error occurred. Please try again or contact support."
)

// Classify maps an error from connection resolution or operation execution
// to the stable taxonomy and its caller-safe message.
func Classify(err error) (ErrorKind, string) {
	switch {
	case err == nil:
		return "", ""

	case errors.Is(err, ErrTenantNotFound), errors.Is(err, ErrInvalidOrgID):
		return KindNotFound, msgNotFound

	case errors.Is(err, context.DeadlineExceeded), errors.Is(err, context.Canceled):
		return KindTimeout, msgTimeout
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch {
		case pgErr.Code == "23505": // unique_violation
			return KindConflict, msgConflict
		case pgErr.Code == "23503": // foreign_key_violation
			return KindInvalidReference, msgInvalidReference
		case pgErr.Code == "23502": // not_null_violation
			return KindMissingField, msgMissingField
		case pgErr.Code == "57014": // query_canceled (statement_timeout)
			return KindTimeout, msgTimeout
		case strings.HasPrefix(pgErr.Code, "53"): // insufficient_resources
			return KindUnavailable, msgUnavailable
		case strings.HasPrefix(pgErr.Code, "08"): // connection_exception
			return KindUnavailable, msgUnavailable
		}
		return KindUnknown, msgUnknown
	}

	if pgconn.Timeout(err) {
		return KindTimeout, msgTimeout
	}
	// Errors pgx marks safe to retry never reached the server; the operation
	// can be reissued once the database is reachable again.
	if pgconn.SafeToRetry(err) {
		return KindUnavailable, msgUnavailable
	}

	return KindUnknown, msgUnknown
}
