package backup

import "github.com/gear6io/glacier/server/types"

// ElementType discriminates the forms a backup request element can take.
type ElementType int

const (
	// ElementTable targets one ordinary table, which must exist.
	ElementTable ElementType = iota

	// ElementTemporaryTable targets one temporary table, which must exist.
	ElementTemporaryTable

	// ElementDatabase targets a whole database, minus excluded tables.
	// The database must exist; its table list is re-enumerated each pass.
	ElementDatabase

	// ElementAll targets every database, minus excluded databases and
	// tables. Enumeration is best-effort and re-run each pass.
	ElementAll
)

// Element is one parsed backup request element.
type Element struct {
	Type ElementType

	// Database/Table name the element targets. Table forms use both;
	// the database form uses Database only; temporary tables use Table
	// only.
	Database string
	Table    string

	// NewDatabase/NewTable are the rename directives for this element.
	// Empty means keep the original name.
	NewDatabase string
	NewTable    string

	// Partitions restricts table data to a subset of partitions.
	Partitions []string

	// ExceptDatabases excludes databases by name (ElementAll only).
	ExceptDatabases []string

	// ExceptTables excludes tables by qualified name (database forms).
	ExceptTables []types.QualifiedName
}

// NewTableElement targets one ordinary table.
func NewTableElement(database, table string) Element {
	return Element{Type: ElementTable, Database: database, Table: table}
}

// NewTemporaryTableElement targets one temporary table.
func NewTemporaryTableElement(table string) Element {
	return Element{Type: ElementTemporaryTable, Table: table}
}

// NewDatabaseElement targets a whole database minus exceptions.
func NewDatabaseElement(database string, exceptTables ...types.QualifiedName) Element {
	return Element{Type: ElementDatabase, Database: database, ExceptTables: exceptTables}
}

// NewAllElement targets all databases minus exceptions.
func NewAllElement(exceptDatabases []string, exceptTables []types.QualifiedName) Element {
	return Element{Type: ElementAll, ExceptDatabases: exceptDatabases, ExceptTables: exceptTables}
}

func exceptTableSet(names []types.QualifiedName) map[types.QualifiedName]struct{} {
	if len(names) == 0 {
		return nil
	}
	set := make(map[types.QualifiedName]struct{}, len(names))
	for _, name := range names {
		set[name] = struct{}{}
	}
	return set
}

func exceptDatabaseSet(names []string) map[string]struct{} {
	if len(names) == 0 {
		return nil
	}
	set := make(map[string]struct{}, len(names))
	for _, name := range names {
		set[name] = struct{}{}
	}
	return set
}
