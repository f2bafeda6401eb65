package memory

import (
	"context"
	"path"
	"sort"
	"sync"
	"time"

	"github.com/gear6io/glacier/pkg/errors"
	"github.com/gear6io/glacier/server/catalog"
	"github.com/gear6io/glacier/server/paths"
	"github.com/gear6io/glacier/server/types"
)

// lockPollInterval is how often a blocked shared-lock acquisition re-probes
// the storage lock.
const lockPollInterval = 2 * time.Millisecond

// Database is a shared handle to an in-memory database.
type Database struct {
	cat     *Catalog
	def     types.DatabaseDefinition
	tables  map[string]*Table
	dropped bool
}

// Name returns the database name the handle was resolved under.
func (d *Database) Name() string {
	d.cat.mu.Lock()
	defer d.cat.mu.Unlock()
	return d.def.Name
}

// Definition returns a snapshot of the database's structural definition.
func (d *Database) Definition(ctx context.Context) (*types.DatabaseDefinition, error) {
	d.cat.mu.Lock()
	defer d.cat.mu.Unlock()
	if d.dropped {
		return nil, errors.New(catalog.ErrDroppedConcurrently, "database was dropped", nil).AddContext("database", d.def.Name)
	}
	return d.def.Clone(), nil
}

// ListTables enumerates the database's table names in sorted order.
func (d *Database) ListTables(ctx context.Context) ([]string, error) {
	d.cat.mu.Lock()
	defer d.cat.mu.Unlock()
	if d.dropped {
		return nil, errors.New(catalog.ErrDroppedConcurrently, "database was dropped", nil).AddContext("database", d.def.Name)
	}
	names := make([]string, 0, len(d.tables))
	for name := range d.tables {
		names = append(names, name)
	}
	sort.Strings(names)
	return names, nil
}

// Table is a shared handle to an in-memory table's storage object. The
// catalog stays the owner; holders of a dropped handle can still read the
// data they locked, they just cannot re-resolve it by name.
type Table struct {
	cat     *Catalog
	ddl     sync.RWMutex
	def     types.TableDefinition
	parts   map[string][]byte
	dropped bool
}

// Name returns the qualified name the handle currently carries.
func (t *Table) Name() types.QualifiedName {
	t.cat.mu.Lock()
	defer t.cat.mu.Unlock()
	return types.QualifiedName{Database: t.def.Database, Table: t.def.Name}
}

// LockShared acquires the storage-level shared read lock, waiting at most
// timeout. Writers (InsertPartition) are blocked out while it is held.
func (t *Table) LockShared(ctx context.Context, owner string, timeout time.Duration) (catalog.TableLock, error) {
	deadline := t.cat.clk.Now().Add(timeout)
	for {
		if t.isDropped() {
			return nil, errors.New(catalog.ErrDroppedConcurrently, "table was dropped", nil).AddContext("owner", owner)
		}
		if t.ddl.TryRLock() {
			if t.isDropped() {
				t.ddl.RUnlock()
				return nil, errors.New(catalog.ErrDroppedConcurrently, "table was dropped", nil).AddContext("owner", owner)
			}
			return &tableLock{mu: &t.ddl}, nil
		}
		if !t.cat.clk.Now().Before(deadline) {
			return nil, errors.New(catalog.ErrLockAcquireTimeout, "timed out acquiring shared table lock", nil).AddContext("owner", owner)
		}
		select {
		case <-ctx.Done():
			return nil, errors.New(catalog.ErrLockAcquireTimeout, "lock wait cancelled", ctx.Err()).AddContext("owner", owner)
		case <-t.cat.clk.After(lockPollInterval):
		}
	}
}

// Definition returns a snapshot of the table's structural definition.
func (t *Table) Definition(ctx context.Context) (*types.TableDefinition, error) {
	t.cat.mu.Lock()
	defer t.cat.mu.Unlock()
	if t.dropped {
		return nil, errors.New(catalog.ErrDroppedConcurrently, "table was dropped", nil).AddContext("table", t.def.Name)
	}
	return t.def.Clone(), nil
}

// BackupData registers one data entry per partition under dataPath. A nil
// partition restriction selects all partitions.
func (t *Table) BackupData(ctx context.Context, sink types.DataSink, dataPath string, partitions []string) error {
	t.cat.mu.Lock()
	selected := make([]string, 0, len(t.parts))
	if partitions == nil {
		for part := range t.parts {
			selected = append(selected, part)
		}
		sort.Strings(selected)
	} else {
		for _, part := range partitions {
			if _, ok := t.parts[part]; !ok {
				name := t.def.Name
				t.cat.mu.Unlock()
				return errors.New(catalog.ErrPartitionNotFound, "partition does not exist", nil).
					AddContext("table", name).
					AddContext("partition", part)
			}
			selected = append(selected, part)
		}
	}
	payloads := make(map[string][]byte, len(selected))
	for _, part := range selected {
		payloads[part] = t.parts[part]
	}
	t.cat.mu.Unlock()

	for _, part := range selected {
		entryPath := path.Join(dataPath, paths.EscapeForFileName(part)+".bin")
		if err := sink.AddEntry(entryPath, types.NewMemoryProducer(payloads[part])); err != nil {
			return err
		}
	}
	return nil
}

// InsertPartition adds or replaces a partition payload. It takes the
// storage-level write lock, so it blocks while any backup read lock is held.
func (t *Table) InsertPartition(part string, payload []byte) {
	t.ddl.Lock()
	defer t.ddl.Unlock()
	t.cat.mu.Lock()
	t.parts[part] = append([]byte(nil), payload...)
	t.cat.mu.Unlock()
}

func (t *Table) isDropped() bool {
	t.cat.mu.Lock()
	defer t.cat.mu.Unlock()
	return t.dropped
}

type tableLock struct {
	mu   *sync.RWMutex
	once sync.Once
}

// Release drops the shared lock. Safe to call more than once.
func (l *tableLock) Release() {
	l.once.Do(l.mu.RUnlock)
}
