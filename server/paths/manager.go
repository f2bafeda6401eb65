package paths

import (
	"context"
	"path"
	"strconv"

	"github.com/gear6io/glacier/server/types"
)

// ComponentType defines the path manager component type identifier
const ComponentType = "paths"

// Manager implements the PathManager interface. It is stateless; all layout
// decisions are pure functions of the inputs.
type Manager struct{}

// NewManager creates a new backup path manager
func NewManager() *Manager {
	return &Manager{}
}

// RootPath returns the destination prefix of one host inside the backup:
// "/" for a single-host backup, "/shards/<s>/replicas/<r>" when the host
// participates in a sharded, replicated backup. Shard and replica numbers
// are 1-based; zero for both selects the single-host layout.
func (pm *Manager) RootPath(shardNum, replicaNum int) string {
	if shardNum == 0 && replicaNum == 0 {
		return "/"
	}
	return path.Join("/", "shards", strconv.Itoa(shardNum), "replicas", strconv.Itoa(replicaNum))
}

// DatabaseMetadataPath returns the definition path of a database.
func (pm *Manager) DatabaseMetadataPath(root, database string) string {
	return path.Join(root, "metadata", EscapeForFileName(database)+".def")
}

// TableMetadataPath returns the definition path of an ordinary table.
func (pm *Manager) TableMetadataPath(root string, name types.QualifiedName) string {
	return path.Join(root, "metadata", EscapeForFileName(name.Database), EscapeForFileName(name.Table)+".def")
}

// TemporaryTableMetadataPath returns the definition path of a temporary table.
func (pm *Manager) TemporaryTableMetadataPath(root, table string) string {
	return path.Join(root, "temporary_tables", "metadata", EscapeForFileName(table)+".def")
}

// TableDataPath returns the data path prefix of an ordinary table.
func (pm *Manager) TableDataPath(root string, name types.QualifiedName) string {
	return path.Join(root, "data", EscapeForFileName(name.Database), EscapeForFileName(name.Table))
}

// TemporaryTableDataPath returns the data path prefix of a temporary table.
func (pm *Manager) TemporaryTableDataPath(root, table string) string {
	return path.Join(root, "temporary_tables", "data", EscapeForFileName(table))
}

// GetType returns the component type identifier
func (pm *Manager) GetType() string {
	return ComponentType
}

// Shutdown gracefully shuts down the path manager
func (pm *Manager) Shutdown(ctx context.Context) error {
	return nil
}
