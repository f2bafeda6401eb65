package coordination

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/gear6io/glacier/pkg/errors"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T, dbPath, backupID string) *Store {
	t.Helper()
	store, err := NewStore(dbPath, backupID, zerolog.Nop())
	require.NoError(t, err)
	store.pollInterval = 5 * time.Millisecond
	t.Cleanup(func() { _ = store.Shutdown(context.Background()) })
	return store
}

func TestStoreSingleHost(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "coordination.db")
	store := newTestStore(t, dbPath, "backup-1")

	require.NoError(t, store.SyncStage(context.Background(), "host1", 1, []string{"host1"}, time.Second))
	assert.Equal(t, ComponentType, store.GetType())
}

func TestStoreBarrierAcrossStores(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "coordination.db")
	a := newTestStore(t, dbPath, "backup-1")
	b := newTestStore(t, dbPath, "backup-1")
	peers := []string{"host1", "host2"}

	done := make(chan error, 1)
	go func() {
		done <- a.SyncStage(context.Background(), "host1", 1, peers, 5*time.Second)
	}()

	select {
	case err := <-done:
		t.Fatalf("barrier released before all peers arrived: %v", err)
	case <-time.After(30 * time.Millisecond):
	}

	require.NoError(t, b.SyncStage(context.Background(), "host2", 1, peers, 5*time.Second))

	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("barrier did not release after all peers arrived")
	}
}

func TestStoreTimeout(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "coordination.db")
	store := newTestStore(t, dbPath, "backup-1")

	err := store.SyncStage(context.Background(), "host1", 1, []string{"host1", "absent"}, 50*time.Millisecond)
	require.Error(t, err)
	assert.True(t, errors.HasCode(err, ErrStageTimeout))
}

func TestStorePeerFailure(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "coordination.db")
	a := newTestStore(t, dbPath, "backup-1")
	b := newTestStore(t, dbPath, "backup-1")

	b.SyncStageError("host2", "disk on fire")

	err := a.SyncStage(context.Background(), "host1", 1, []string{"host1", "host2"}, time.Second)
	require.Error(t, err)
	assert.True(t, errors.HasCode(err, ErrPeerFailed))
	assert.Equal(t, "disk on fire", errors.GetContext(err)["peer_message"])
}

func TestStoreBackupScoping(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "coordination.db")
	a := newTestStore(t, dbPath, "backup-1")
	other := newTestStore(t, dbPath, "backup-2")

	// A failure in another backup operation must not fail this one.
	other.SyncStageError("host1", "unrelated")

	require.NoError(t, a.SyncStage(context.Background(), "host1", 1, []string{"host1"}, time.Second))
}
