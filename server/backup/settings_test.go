package backup

import (
	"testing"

	"github.com/gear6io/glacier/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testTopology = [][]string{
	{"s1r1", "s1r2"},
	{"s2r1"},
}

func TestFindShardAndReplica(t *testing.T) {
	shard, replica, err := FindShardAndReplica(testTopology, "s1r2")
	require.NoError(t, err)
	assert.Equal(t, 1, shard)
	assert.Equal(t, 2, replica)

	shard, replica, err = FindShardAndReplica(testTopology, "s2r1")
	require.NoError(t, err)
	assert.Equal(t, 2, shard)
	assert.Equal(t, 1, replica)
}

func TestFindShardAndReplicaUnknownHost(t *testing.T) {
	_, _, err := FindShardAndReplica(testTopology, "nope")
	require.Error(t, err)
	assert.True(t, errors.HasCode(err, ErrHostNotInCluster))
}

func TestFilterHostIDs(t *testing.T) {
	assert.Equal(t, []string{"s1r1", "s1r2", "s2r1"}, FilterHostIDs(testTopology, 0, 0))
	assert.Equal(t, []string{"s1r1", "s1r2"}, FilterHostIDs(testTopology, 1, 0))
	assert.Equal(t, []string{"s1r1", "s2r1"}, FilterHostIDs(testTopology, 0, 1))
	assert.Equal(t, []string{"s1r2"}, FilterHostIDs(testTopology, 1, 2))
	assert.Empty(t, FilterHostIDs(testTopology, 2, 2))
}
