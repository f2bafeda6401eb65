package backup

import (
	"time"

	"github.com/gear6io/glacier/pkg/errors"
)

// Settings controls one backup collection operation.
type Settings struct {
	// HostID identifies this host inside ClusterHostIDs. Empty for a
	// single-host backup.
	HostID string

	// ClusterHostIDs lists the cluster topology, shard-major: one inner
	// slice of replica host ids per shard.
	ClusterHostIDs [][]string

	// ShardNum/ReplicaNum restrict the peer set for stage barriers to one
	// shard and/or replica; zero means all.
	ShardNum   int
	ReplicaNum int

	// StructureOnly skips table data entries; definitions are still
	// collected.
	StructureOnly bool

	// Timeout bounds the whole collection. Negative means no deadline:
	// the finding-tables loop retries until consistent.
	Timeout time.Duration

	// LockAcquireTimeout bounds each per-table shared lock acquisition.
	LockAcquireTimeout time.Duration
}

// FindShardAndReplica locates hostID inside the topology and returns its
// 1-based shard and replica numbers.
func FindShardAndReplica(clusterHostIDs [][]string, hostID string) (shardNum, replicaNum int, err error) {
	for shard, replicas := range clusterHostIDs {
		for replica, host := range replicas {
			if host == hostID {
				return shard + 1, replica + 1, nil
			}
		}
	}
	return 0, 0, errors.New(ErrHostNotInCluster, "host is not in the cluster topology", nil).AddContext("host", hostID)
}

// FilterHostIDs returns the hosts of the given shard and replica, flattened
// in topology order. Zero selects all shards or all replicas respectively.
func FilterHostIDs(clusterHostIDs [][]string, shardNum, replicaNum int) []string {
	var hosts []string
	for shard, replicas := range clusterHostIDs {
		if shardNum != 0 && shardNum != shard+1 {
			continue
		}
		for replica, host := range replicas {
			if replicaNum != 0 && replicaNum != replica+1 {
				continue
			}
			hosts = append(hosts, host)
		}
	}
	return hosts
}
