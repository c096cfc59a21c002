package pg

import "errors"

var (
	ErrEmptyConnectionString  = errors.New("empty master database connection string, set MASTER_DB_URL")
	ErrFailedToParseConfig    = errors.New("failed to parse master database config")
	ErrFailedToOpenConnection = errors.New("failed to open master database connection")
)
