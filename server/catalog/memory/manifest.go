package memory

import (
	"os"

	"github.com/gear6io/glacier/pkg/errors"
	"github.com/gear6io/glacier/server/types"
	"gopkg.in/yaml.v3"
)

// Manifest describes the content of a memory catalog in YAML, used by the
// CLI to seed a catalog before running a backup against it.
type Manifest struct {
	Databases       []ManifestDatabase `yaml:"databases"`
	TemporaryTables []ManifestTable    `yaml:"temporary_tables"`
}

// ManifestDatabase is one database with its tables.
type ManifestDatabase struct {
	Name    string          `yaml:"name"`
	Engine  string          `yaml:"engine"`
	Comment string          `yaml:"comment"`
	Tables  []ManifestTable `yaml:"tables"`
}

// ManifestTable is one table definition plus inline partition payloads.
type ManifestTable struct {
	Name       string                   `yaml:"name"`
	Engine     string                   `yaml:"engine"`
	Columns    []types.ColumnDefinition `yaml:"columns"`
	OrderBy    []string                 `yaml:"order_by"`
	Comment    string                   `yaml:"comment"`
	Partitions map[string]string        `yaml:"partitions"`
}

// LoadManifest reads and parses a manifest file.
func LoadManifest(filename string) (*Manifest, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, errors.New(ErrManifestReadFailed, "failed to read catalog manifest", err).AddContext("path", filename)
	}
	var m Manifest
	if err := yaml.Unmarshal(data, &m); err != nil {
		return nil, errors.New(ErrManifestParseFailed, "failed to parse catalog manifest", err).AddContext("path", filename)
	}
	return &m, nil
}

// CatalogFromManifest builds a seeded catalog from a manifest.
func CatalogFromManifest(m *Manifest) (*Catalog, error) {
	cat := NewCatalog()
	for _, db := range m.Databases {
		engine := db.Engine
		if engine == "" {
			engine = "Memory"
		}
		if err := cat.CreateDatabase(types.DatabaseDefinition{Name: db.Name, Engine: engine, Comment: db.Comment}); err != nil {
			return nil, err
		}
		for _, tbl := range db.Tables {
			if err := cat.CreateTable(manifestTableDefinition(db.Name, tbl, false), partPayloads(tbl.Partitions)); err != nil {
				return nil, err
			}
		}
	}
	for _, tbl := range m.TemporaryTables {
		if err := cat.CreateTable(manifestTableDefinition("", tbl, true), partPayloads(tbl.Partitions)); err != nil {
			return nil, err
		}
	}
	return cat, nil
}

func manifestTableDefinition(database string, tbl ManifestTable, temporary bool) types.TableDefinition {
	engine := tbl.Engine
	if engine == "" {
		engine = "Memory"
	}
	return types.TableDefinition{
		Database:  database,
		Name:      tbl.Name,
		Temporary: temporary,
		Engine:    engine,
		Columns:   tbl.Columns,
		OrderBy:   tbl.OrderBy,
		Comment:   tbl.Comment,
	}
}

func partPayloads(parts map[string]string) map[string][]byte {
	if len(parts) == 0 {
		return nil
	}
	out := make(map[string][]byte, len(parts))
	for part, payload := range parts {
		out[part] = []byte(payload)
	}
	return out
}
