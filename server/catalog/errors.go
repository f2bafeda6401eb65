package catalog

import "github.com/gear6io/glacier/pkg/errors"

// Catalog-specific error codes
var (
	ErrDatabaseNotFound    = errors.MustNewCode("catalog.database_not_found")
	ErrTableNotFound       = errors.MustNewCode("catalog.table_not_found")
	ErrDroppedConcurrently = errors.MustNewCode("catalog.dropped_concurrently")
	ErrLockAcquireTimeout  = errors.MustNewCode("catalog.lock_acquire_timeout")
	ErrPartitionNotFound   = errors.MustNewCode("catalog.partition_not_found")
)
