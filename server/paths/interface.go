package paths

import (
	"github.com/gear6io/glacier/server/shared"
	"github.com/gear6io/glacier/server/types"
)

// PathManager computes the destination layout of a backup. All paths are
// forward-slash archive paths relative to the backup archive root, already
// renamed and escaped by the caller's renaming map and EscapeForFileName.
type PathManager interface {
	shared.Component

	// Root paths
	RootPath(shardNum, replicaNum int) string

	// Definition paths
	DatabaseMetadataPath(root, database string) string
	TableMetadataPath(root string, name types.QualifiedName) string
	TemporaryTableMetadataPath(root, table string) string

	// Data path prefixes
	TableDataPath(root string, name types.QualifiedName) string
	TemporaryTableDataPath(root, table string) string
}
