// Package memory provides an in-memory catalog with shared read locks and
// DDL mutation operations. It backs the CLI demo and the collector tests:
// schema can be mutated between collection passes exactly the way a live
// catalog would mutate under concurrent DDL.
package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/gear6io/glacier/pkg/errors"
	"github.com/gear6io/glacier/server/catalog"
	"github.com/gear6io/glacier/server/types"
	"github.com/juju/clock"
)

// Catalog is an in-memory catalog.Catalog implementation. All catalog-level
// state is guarded by one mutex; handle identity is pointer identity, so a
// drop-and-recreate under the same name yields a distinct handle.
type Catalog struct {
	mu         sync.Mutex
	clk        clock.Clock
	databases  map[string]*Database
	tempTables map[string]*Table
	tempDB     *Database
}

// NewCatalog creates an empty catalog using the wall clock.
func NewCatalog() *Catalog {
	return NewCatalogWithClock(clock.WallClock)
}

// NewCatalogWithClock creates an empty catalog with an injected clock, for
// tests that control lock-wait timing.
func NewCatalogWithClock(clk clock.Clock) *Catalog {
	c := &Catalog{
		clk:        clk,
		databases:  make(map[string]*Database),
		tempTables: make(map[string]*Table),
	}
	// Temporary tables hang off a hidden database with an empty name.
	c.tempDB = &Database{
		cat: c,
		def: types.DatabaseDefinition{Name: "", Engine: "Memory"},
	}
	return c
}

// ResolveDatabase resolves a database that must exist.
func (c *Catalog) ResolveDatabase(ctx context.Context, name string) (catalog.Database, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	db, ok := c.databases[name]
	if !ok {
		return nil, errors.New(catalog.ErrDatabaseNotFound, "database does not exist", nil).AddContext("database", name)
	}
	return db, nil
}

// GetDatabase is the best-effort variant of ResolveDatabase.
func (c *Catalog) GetDatabase(ctx context.Context, name string) (catalog.Database, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	db, ok := c.databases[name]
	if !ok {
		return nil, false
	}
	return db, true
}

// ResolveTable resolves an ordinary table that must exist.
func (c *Catalog) ResolveTable(ctx context.Context, name types.QualifiedName) (catalog.Database, catalog.Table, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	db, ok := c.databases[name.Database]
	if !ok {
		return nil, nil, errors.New(catalog.ErrDatabaseNotFound, "database does not exist", nil).AddContext("database", name.Database)
	}
	tbl, ok := db.tables[name.Table]
	if !ok {
		return nil, nil, errors.New(catalog.ErrTableNotFound, "table does not exist", nil).AddContext("table", name.FullName())
	}
	return db, tbl, nil
}

// TryResolveTable is the best-effort variant of ResolveTable.
func (c *Catalog) TryResolveTable(ctx context.Context, name types.QualifiedName) (catalog.Database, catalog.Table, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	db, ok := c.databases[name.Database]
	if !ok {
		return nil, nil, false
	}
	tbl, ok := db.tables[name.Table]
	if !ok {
		return nil, nil, false
	}
	return db, tbl, true
}

// ResolveTemporaryTable resolves a temporary table that must exist.
func (c *Catalog) ResolveTemporaryTable(ctx context.Context, table string) (catalog.Database, catalog.Table, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	tbl, ok := c.tempTables[table]
	if !ok {
		return nil, nil, errors.New(catalog.ErrTableNotFound, "temporary table does not exist", nil).AddContext("table", table)
	}
	return c.tempDB, tbl, nil
}

// TryResolveTemporaryTable is the best-effort variant of ResolveTemporaryTable.
func (c *Catalog) TryResolveTemporaryTable(ctx context.Context, table string) (catalog.Database, catalog.Table, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	tbl, ok := c.tempTables[table]
	if !ok {
		return nil, nil, false
	}
	return c.tempDB, tbl, true
}

// ListDatabases enumerates database names in sorted order.
func (c *Catalog) ListDatabases(ctx context.Context) ([]string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	names := make([]string, 0, len(c.databases))
	for name := range c.databases {
		names = append(names, name)
	}
	sort.Strings(names)
	return names, nil
}

// CreateDatabase adds a database.
func (c *Catalog) CreateDatabase(def types.DatabaseDefinition) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, exists := c.databases[def.Name]; exists {
		return errors.New(ErrDatabaseExists, "database already exists", nil).AddContext("database", def.Name)
	}
	c.databases[def.Name] = &Database{
		cat:    c,
		def:    def,
		tables: make(map[string]*Table),
	}
	return nil
}

// DropDatabase removes a database and marks its handle and all its table
// handles dropped. Existing holders keep their references.
func (c *Catalog) DropDatabase(name string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	db, ok := c.databases[name]
	if !ok {
		return errors.New(catalog.ErrDatabaseNotFound, "database does not exist", nil).AddContext("database", name)
	}
	delete(c.databases, name)
	db.dropped = true
	for _, tbl := range db.tables {
		tbl.dropped = true
	}
	return nil
}

// CreateTable adds a table (or temporary table when def.Temporary is set)
// with the given partition payloads. parts may be nil for an empty table.
func (c *Catalog) CreateTable(def types.TableDefinition, parts map[string][]byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	tbl := &Table{
		cat:   c,
		def:   def,
		parts: make(map[string][]byte, len(parts)),
	}
	for part, payload := range parts {
		tbl.parts[part] = append([]byte(nil), payload...)
	}

	if def.Temporary {
		if _, exists := c.tempTables[def.Name]; exists {
			return errors.New(ErrTableExists, "temporary table already exists", nil).AddContext("table", def.Name)
		}
		c.tempTables[def.Name] = tbl
		return nil
	}

	db, ok := c.databases[def.Database]
	if !ok {
		return errors.New(catalog.ErrDatabaseNotFound, "database does not exist", nil).AddContext("database", def.Database)
	}
	if _, exists := db.tables[def.Name]; exists {
		return errors.New(ErrTableExists, "table already exists", nil).AddContext("table", def.Database+"."+def.Name)
	}
	db.tables[def.Name] = tbl
	return nil
}

// DropTable removes an ordinary table. Holders of the handle keep their
// reference; the handle reports dropped-concurrently from then on.
func (c *Catalog) DropTable(database, table string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	db, ok := c.databases[database]
	if !ok {
		return errors.New(catalog.ErrDatabaseNotFound, "database does not exist", nil).AddContext("database", database)
	}
	tbl, ok := db.tables[table]
	if !ok {
		return errors.New(catalog.ErrTableNotFound, "table does not exist", nil).AddContext("table", database+"."+table)
	}
	delete(db.tables, table)
	tbl.dropped = true
	return nil
}

// DropTemporaryTable removes a temporary table.
func (c *Catalog) DropTemporaryTable(table string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	tbl, ok := c.tempTables[table]
	if !ok {
		return errors.New(catalog.ErrTableNotFound, "temporary table does not exist", nil).AddContext("table", table)
	}
	delete(c.tempTables, table)
	tbl.dropped = true
	return nil
}

// RenameTable moves a table to a new name, possibly across databases. The
// handle stays the same object; its definition's embedded name changes,
// which is exactly what the collector's consistency check looks for.
func (c *Catalog) RenameTable(from, to types.QualifiedName) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	srcDB, ok := c.databases[from.Database]
	if !ok {
		return errors.New(catalog.ErrDatabaseNotFound, "database does not exist", nil).AddContext("database", from.Database)
	}
	tbl, ok := srcDB.tables[from.Table]
	if !ok {
		return errors.New(catalog.ErrTableNotFound, "table does not exist", nil).AddContext("table", from.FullName())
	}
	dstDB, ok := c.databases[to.Database]
	if !ok {
		return errors.New(catalog.ErrDatabaseNotFound, "database does not exist", nil).AddContext("database", to.Database)
	}
	if _, exists := dstDB.tables[to.Table]; exists {
		return errors.New(ErrTableExists, "table already exists", nil).AddContext("table", to.FullName())
	}
	delete(srcDB.tables, from.Table)
	dstDB.tables[to.Table] = tbl
	tbl.def.Database = to.Database
	tbl.def.Name = to.Table
	return nil
}
