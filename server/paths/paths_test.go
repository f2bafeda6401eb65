package paths

import (
	"testing"

	"github.com/gear6io/glacier/server/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPathManager(t *testing.T) {
	pm := NewManager()
	require.NotNil(t, pm)

	t.Run("RootPath", func(t *testing.T) {
		assert.Equal(t, "/", pm.RootPath(0, 0))
		assert.Equal(t, "/shards/1/replicas/2", pm.RootPath(1, 2))
		assert.Equal(t, "/shards/3/replicas/1", pm.RootPath(3, 1))
	})

	t.Run("MetadataPaths", func(t *testing.T) {
		assert.Equal(t, "/metadata/d.def", pm.DatabaseMetadataPath("/", "d"))
		assert.Equal(t, "/metadata/d/t.def", pm.TableMetadataPath("/", types.QualifiedName{Database: "d", Table: "t"}))
		assert.Equal(t, "/temporary_tables/metadata/tmp.def", pm.TemporaryTableMetadataPath("/", "tmp"))
	})

	t.Run("DataPaths", func(t *testing.T) {
		assert.Equal(t, "/data/d/t", pm.TableDataPath("/", types.QualifiedName{Database: "d", Table: "t"}))
		assert.Equal(t, "/temporary_tables/data/tmp", pm.TemporaryTableDataPath("/", "tmp"))
	})

	t.Run("ShardedLayout", func(t *testing.T) {
		root := pm.RootPath(2, 1)
		assert.Equal(t, "/shards/2/replicas/1/metadata/d.def", pm.DatabaseMetadataPath(root, "d"))
		assert.Equal(t, "/shards/2/replicas/1/data/d/t", pm.TableDataPath(root, types.QualifiedName{Database: "d", Table: "t"}))
	})

	t.Run("EscapedSegments", func(t *testing.T) {
		assert.Equal(t, "/metadata/my%2Ddb.def", pm.DatabaseMetadataPath("/", "my-db"))
		assert.Equal(t, "/data/db/weird%20table", pm.TableDataPath("/", types.QualifiedName{Database: "db", Table: "weird table"}))
	})
}

func TestEscapeForFileName(t *testing.T) {
	cases := map[string]string{
		"plain_name1": "plain_name1",
		"my-db":       "my%2Ddb",
		"a b":         "a%20b",
		"d.t":         "d%2Et",
		"":            "",
		"%":           "%25",
	}
	for in, want := range cases {
		assert.Equal(t, want, EscapeForFileName(in), "input %q", in)
	}
}

func TestEscapeRoundTrip(t *testing.T) {
	names := []string{"plain", "with space", "dash-dot.slash/", "percent%sign", "юникод", "a%2Fb"}
	for _, name := range names {
		escaped := EscapeForFileName(name)
		back, err := UnescapeForFileName(escaped)
		require.NoError(t, err, "name %q", name)
		assert.Equal(t, name, back)
	}
}

func TestEscapeCollisionFree(t *testing.T) {
	// A literal percent in a name must not collide with an escaped byte.
	assert.NotEqual(t, EscapeForFileName("a%20b"), EscapeForFileName("a b"))
}

func TestUnescapeMalformed(t *testing.T) {
	for _, in := range []string{"%", "%2", "%zz", "abc%G1"} {
		_, err := UnescapeForFileName(in)
		assert.Error(t, err, "input %q", in)
	}
}
