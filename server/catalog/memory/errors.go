package memory

import "github.com/gear6io/glacier/pkg/errors"

// Package-specific error codes for the in-memory catalog
var (
	ErrDatabaseExists      = errors.MustNewCode("memory.database_exists")
	ErrTableExists         = errors.MustNewCode("memory.table_exists")
	ErrManifestReadFailed  = errors.MustNewCode("memory.manifest_read_failed")
	ErrManifestParseFailed = errors.MustNewCode("memory.manifest_parse_failed")
)
