package types

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestQualifiedNameFullName(t *testing.T) {
	assert.Equal(t, "db.t", QualifiedName{Database: "db", Table: "t"}.FullName())
	assert.Equal(t, "tmp", QualifiedName{Table: "tmp"}.FullName())
}

func TestQualifiedNameLess(t *testing.T) {
	a := QualifiedName{Database: "a", Table: "z"}
	b := QualifiedName{Database: "b", Table: "a"}
	assert.True(t, a.Less(b))
	assert.False(t, b.Less(a))

	c := QualifiedName{Database: "a", Table: "a"}
	assert.True(t, c.Less(a))
}

func TestTableDefinitionCloneIsDeep(t *testing.T) {
	def := &TableDefinition{
		Database: "db",
		Name:     "t",
		Engine:   "Memory",
		Columns:  []ColumnDefinition{{Name: "id", Type: "int64"}},
		OrderBy:  []string{"id"},
	}
	clone := def.Clone()
	clone.Name = "renamed"
	clone.Columns[0].Name = "uid"
	clone.OrderBy[0] = "uid"

	assert.Equal(t, "t", def.Name)
	assert.Equal(t, "id", def.Columns[0].Name)
	assert.Equal(t, "id", def.OrderBy[0])
}

func TestTableDefinitionSerializeRoundTrip(t *testing.T) {
	def := &TableDefinition{
		Database: "db",
		Name:     "t",
		Engine:   "Memory",
		Columns:  []ColumnDefinition{{Name: "id", Type: "int64"}},
	}
	data, err := def.Serialize()
	require.NoError(t, err)
	assert.Equal(t, byte('\n'), data[len(data)-1])

	var back TableDefinition
	require.NoError(t, json.Unmarshal(data, &back))
	assert.Equal(t, *def, back)
}

func TestMemoryProducer(t *testing.T) {
	p := NewMemoryProducer([]byte("abc"))
	assert.Equal(t, int64(3), p.Size())

	r, err := p.Open()
	require.NoError(t, err)
	defer r.Close()
	buf := make([]byte, 3)
	n, _ := r.Read(buf)
	assert.Equal(t, 3, n)
	assert.Equal(t, []byte("abc"), buf)
}
