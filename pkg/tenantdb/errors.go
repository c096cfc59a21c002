package tenantdb

import "errors"

var (
	// ErrEmptyTenantID is returned when Resolve is called with a blank tenant id.
	ErrEmptyTenantID = errors.New("tenantdb: tenant id is empty")

	// ErrEmptyConnString is returned when a connection string fetch succeeds
	// but produces a blank result; the value is never cached.
	ErrEmptyConnString = errors.New("tenantdb: connection string fetch returned empty result")

	// ErrTenantNotFound is returned when the directory has no active
	// organization for the given id.
	ErrTenantNotFound = errors.New("tenantdb: organization not found or inactive")

	// ErrInvalidOrgID is returned when an org id is not a valid UUID.
	ErrInvalidOrgID = errors.New("tenantdb: invalid org id format")
)
