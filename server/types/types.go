package types

import (
	"encoding/json"

	"github.com/gear6io/glacier/pkg/errors"
)

// Package-specific error codes for shared types
var (
	ErrDefinitionSerializationFailed = errors.MustNewCode("types.definition_serialization_failed")
)

// QualifiedName identifies a table by database and table name.
// Temporary tables use an empty database.
type QualifiedName struct {
	Database string `json:"database,omitempty" yaml:"database,omitempty"`
	Table    string `json:"table" yaml:"table"`
}

// FullName returns "database.table", or just the table name for temporary
// tables.
func (n QualifiedName) FullName() string {
	if n.Database == "" {
		return n.Table
	}
	return n.Database + "." + n.Table
}

// Less orders qualified names lexicographically, database first.
func (n QualifiedName) Less(other QualifiedName) bool {
	if n.Database != other.Database {
		return n.Database < other.Database
	}
	return n.Table < other.Table
}

// ColumnDefinition is one column of a table's structural definition.
type ColumnDefinition struct {
	Name     string `json:"name" yaml:"name"`
	Type     string `json:"type" yaml:"type"`
	Nullable bool   `json:"nullable,omitempty" yaml:"nullable,omitempty"`
	Default  string `json:"default,omitempty" yaml:"default,omitempty"`
}

// TableDefinition is the structural definition of a table: the typed
// equivalent of its create statement. The embedded Database/Name identify
// the object as of the moment the definition was read, which is what the
// collector's cross-pass identity checks compare against.
type TableDefinition struct {
	Database  string             `json:"database,omitempty" yaml:"database,omitempty"`
	Name      string             `json:"name" yaml:"name"`
	Temporary bool               `json:"temporary,omitempty" yaml:"temporary,omitempty"`
	Engine    string             `json:"engine" yaml:"engine"`
	Columns   []ColumnDefinition `json:"columns" yaml:"columns"`
	OrderBy   []string           `json:"order_by,omitempty" yaml:"order_by,omitempty"`
	Comment   string             `json:"comment,omitempty" yaml:"comment,omitempty"`
}

// Clone returns a deep copy. Definitions handed out by a catalog are shared;
// rewriting names for a backup must never mutate the catalog's copy.
func (d *TableDefinition) Clone() *TableDefinition {
	out := *d
	out.Columns = append([]ColumnDefinition(nil), d.Columns...)
	out.OrderBy = append([]string(nil), d.OrderBy...)
	return &out
}

// Serialize renders the definition as canonical indented JSON.
func (d *TableDefinition) Serialize() ([]byte, error) {
	data, err := json.MarshalIndent(d, "", "  ")
	if err != nil {
		return nil, errors.New(ErrDefinitionSerializationFailed, "failed to serialize table definition", err).AddContext("table", d.Name)
	}
	return append(data, '\n'), nil
}

// DatabaseDefinition is the structural definition of a database.
type DatabaseDefinition struct {
	Name    string `json:"name" yaml:"name"`
	Engine  string `json:"engine" yaml:"engine"`
	Comment string `json:"comment,omitempty" yaml:"comment,omitempty"`
}

// Clone returns a copy safe to rewrite.
func (d *DatabaseDefinition) Clone() *DatabaseDefinition {
	out := *d
	return &out
}

// Serialize renders the definition as canonical indented JSON.
func (d *DatabaseDefinition) Serialize() ([]byte, error) {
	data, err := json.MarshalIndent(d, "", "  ")
	if err != nil {
		return nil, errors.New(ErrDefinitionSerializationFailed, "failed to serialize database definition", err).AddContext("database", d.Name)
	}
	return append(data, '\n'), nil
}
