package backup

import (
	"testing"

	"github.com/gear6io/glacier/server/types"
	"github.com/stretchr/testify/assert"
)

func TestRenamingMapDefaultsToIdentity(t *testing.T) {
	m := NewRenamingMap(nil)
	assert.Equal(t, "db", m.NewDatabaseName("db"))
	assert.Equal(t, types.QualifiedName{Database: "db", Table: "t"}, m.NewTableName(types.QualifiedName{Database: "db", Table: "t"}))
	assert.Equal(t, "tmp", m.NewTemporaryTableName("tmp"))
}

func TestRenamingMapExactTableMappingWins(t *testing.T) {
	el1 := NewTableElement("db", "t")
	el1.NewDatabase = "other"
	el1.NewTable = "renamed"
	el2 := NewDatabaseElement("db")
	el2.NewDatabase = "moved"
	m := NewRenamingMap([]Element{el1, el2})

	// The exact pair mapping beats the database-level one.
	assert.Equal(t, types.QualifiedName{Database: "other", Table: "renamed"},
		m.NewTableName(types.QualifiedName{Database: "db", Table: "t"}))

	// Unmapped tables in the same database follow the database mapping.
	assert.Equal(t, types.QualifiedName{Database: "moved", Table: "u"},
		m.NewTableName(types.QualifiedName{Database: "db", Table: "u"}))
	assert.Equal(t, "moved", m.NewDatabaseName("db"))
}

func TestRenamingMapPartialTableRename(t *testing.T) {
	el := NewTableElement("db", "t")
	el.NewTable = "t2"
	m := NewRenamingMap([]Element{el})
	assert.Equal(t, types.QualifiedName{Database: "db", Table: "t2"},
		m.NewTableName(types.QualifiedName{Database: "db", Table: "t"}))
}

func TestRenamingMapTemporaryTables(t *testing.T) {
	el := NewTemporaryTableElement("tmp")
	el.NewTable = "tmp2"
	m := NewRenamingMap([]Element{el})
	assert.Equal(t, "tmp2", m.NewTemporaryTableName("tmp"))
	assert.Equal(t, "untouched", m.NewTemporaryTableName("untouched"))
}

func TestRewriteTableDefinition(t *testing.T) {
	el := NewDatabaseElement("db")
	el.NewDatabase = "moved"
	m := NewRenamingMap([]Element{el})

	def := &types.TableDefinition{Database: "db", Name: "t", Engine: "Memory"}
	out := m.RewriteTableDefinition(def)
	assert.Equal(t, "moved", out.Database)
	assert.Equal(t, "t", out.Name)
	// The input is never mutated.
	assert.Equal(t, "db", def.Database)
}

func TestRewriteTemporaryTableDefinition(t *testing.T) {
	el := NewTemporaryTableElement("tmp")
	el.NewTable = "tmp2"
	m := NewRenamingMap([]Element{el})

	def := &types.TableDefinition{Name: "tmp", Temporary: true, Engine: "Memory"}
	out := m.RewriteTableDefinition(def)
	assert.Equal(t, "tmp2", out.Name)
	assert.True(t, out.Temporary)
	assert.Equal(t, "tmp", def.Name)
}

func TestRewriteDatabaseDefinition(t *testing.T) {
	el := NewDatabaseElement("db")
	el.NewDatabase = "moved"
	m := NewRenamingMap([]Element{el})

	def := &types.DatabaseDefinition{Name: "db", Engine: "Memory"}
	out := m.RewriteDatabaseDefinition(def)
	assert.Equal(t, "moved", out.Name)
	assert.Equal(t, "db", def.Name)
}
