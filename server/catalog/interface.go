package catalog

import (
	"context"
	"time"

	"github.com/gear6io/glacier/server/types"
)

// Catalog is the name-resolution surface the backup collector consumes.
//
// Handles returned for the same live object must compare equal with ==, and
// must stay comparable after the object is dropped or renamed; the collector
// relies on handle identity to detect drop-and-recreate races. Handles are
// shared references owned by the catalog, never by the caller.
type Catalog interface {
	// ResolveDatabase resolves a database that must exist.
	ResolveDatabase(ctx context.Context, name string) (Database, error)

	// GetDatabase is the best-effort variant of ResolveDatabase.
	GetDatabase(ctx context.Context, name string) (Database, bool)

	// ResolveTable resolves an ordinary table that must exist.
	ResolveTable(ctx context.Context, name types.QualifiedName) (Database, Table, error)

	// TryResolveTable is the best-effort variant of ResolveTable.
	TryResolveTable(ctx context.Context, name types.QualifiedName) (Database, Table, bool)

	// ResolveTemporaryTable resolves a temporary table that must exist.
	ResolveTemporaryTable(ctx context.Context, table string) (Database, Table, error)

	// TryResolveTemporaryTable is the best-effort variant of ResolveTemporaryTable.
	TryResolveTemporaryTable(ctx context.Context, table string) (Database, Table, bool)

	// ListDatabases enumerates all database names as of this instant.
	ListDatabases(ctx context.Context) ([]string, error)
}

// Database is a shared handle to a live database.
type Database interface {
	// Name returns the database name the handle was resolved under.
	Name() string

	// Definition returns the structural definition. Fails with
	// ErrDroppedConcurrently if the database was dropped after resolution.
	Definition(ctx context.Context) (*types.DatabaseDefinition, error)

	// ListTables enumerates the database's table names as of this instant.
	ListTables(ctx context.Context) ([]string, error)
}

// TableLock is a held shared read lock. Release is idempotent.
type TableLock interface {
	Release()
}

// Table is a shared handle to a live table's storage object.
type Table interface {
	// Name returns the qualified name the handle was resolved under.
	Name() types.QualifiedName

	// LockShared acquires a shared read lock, waiting at most timeout.
	// While held, the table cannot be structurally altered at the storage
	// level. Fails with ErrDroppedConcurrently if the table was dropped,
	// or ErrLockAcquireTimeout if the wait expires.
	LockShared(ctx context.Context, owner string, timeout time.Duration) (TableLock, error)

	// Definition returns the structural definition. Fails with
	// ErrDroppedConcurrently if the table was dropped after resolution.
	Definition(ctx context.Context) (*types.TableDefinition, error)

	// BackupData produces zero or more data entries for this table under
	// dataPath, restricted to the given partitions when non-nil. The sink
	// also accepts deferred tasks.
	BackupData(ctx context.Context, sink types.DataSink, dataPath string, partitions []string) error
}
