package backup

import "github.com/gear6io/glacier/server/types"

// RenamingMap is the request-supplied substitution from original to
// destination names. It is immutable once built and total over all names:
// unmapped names map to themselves.
type RenamingMap struct {
	databases       map[string]string
	tables          map[types.QualifiedName]types.QualifiedName
	temporaryTables map[string]string
}

// NewRenamingMap builds the renaming map from the request elements.
func NewRenamingMap(elements []Element) *RenamingMap {
	m := &RenamingMap{
		databases:       make(map[string]string),
		tables:          make(map[types.QualifiedName]types.QualifiedName),
		temporaryTables: make(map[string]string),
	}
	for _, el := range elements {
		switch el.Type {
		case ElementTable:
			newDatabase := el.NewDatabase
			if newDatabase == "" {
				newDatabase = el.Database
			}
			newTable := el.NewTable
			if newTable == "" {
				newTable = el.Table
			}
			if newDatabase != el.Database || newTable != el.Table {
				from := types.QualifiedName{Database: el.Database, Table: el.Table}
				m.tables[from] = types.QualifiedName{Database: newDatabase, Table: newTable}
			}
		case ElementTemporaryTable:
			if el.NewTable != "" && el.NewTable != el.Table {
				m.temporaryTables[el.Table] = el.NewTable
			}
		case ElementDatabase:
			if el.NewDatabase != "" && el.NewDatabase != el.Database {
				m.databases[el.Database] = el.NewDatabase
			}
		}
	}
	return m
}

// NewDatabaseName returns the destination name of a database.
func (m *RenamingMap) NewDatabaseName(database string) string {
	if renamed, ok := m.databases[database]; ok {
		return renamed
	}
	return database
}

// NewTableName returns the destination name of an ordinary table. An exact
// table mapping wins over a database-level mapping.
func (m *RenamingMap) NewTableName(name types.QualifiedName) types.QualifiedName {
	if renamed, ok := m.tables[name]; ok {
		return renamed
	}
	return types.QualifiedName{Database: m.NewDatabaseName(name.Database), Table: name.Table}
}

// NewTemporaryTableName returns the destination name of a temporary table.
func (m *RenamingMap) NewTemporaryTableName(table string) string {
	if renamed, ok := m.temporaryTables[table]; ok {
		return renamed
	}
	return table
}

// RewriteDatabaseDefinition returns a copy of def with its embedded name
// renamed.
func (m *RenamingMap) RewriteDatabaseDefinition(def *types.DatabaseDefinition) *types.DatabaseDefinition {
	out := def.Clone()
	out.Name = m.NewDatabaseName(def.Name)
	return out
}

// RewriteTableDefinition returns a copy of def with its embedded names
// renamed, for both ordinary and temporary tables.
func (m *RenamingMap) RewriteTableDefinition(def *types.TableDefinition) *types.TableDefinition {
	out := def.Clone()
	if def.Temporary {
		out.Name = m.NewTemporaryTableName(def.Name)
		return out
	}
	renamed := m.NewTableName(types.QualifiedName{Database: def.Database, Table: def.Name})
	out.Database = renamed.Database
	out.Name = renamed.Table
	return out
}
