package coordination

import (
	"context"
	"testing"
	"time"

	"github.com/gear6io/glacier/pkg/errors"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryCoordinatorSingleHost(t *testing.T) {
	c := NewMemoryCoordinator(zerolog.Nop())

	// A single-host barrier confirms immediately.
	err := c.SyncStage(context.Background(), "host1", 1, []string{"host1"}, time.Second)
	require.NoError(t, err)
}

func TestMemoryCoordinatorBarrier(t *testing.T) {
	c := NewMemoryCoordinator(zerolog.Nop())
	peers := []string{"host1", "host2"}

	done := make(chan error, 1)
	go func() {
		done <- c.SyncStage(context.Background(), "host1", 1, peers, 5*time.Second)
	}()

	select {
	case err := <-done:
		t.Fatalf("barrier released before all peers arrived: %v", err)
	case <-time.After(30 * time.Millisecond):
	}

	require.NoError(t, c.SyncStage(context.Background(), "host2", 1, peers, 5*time.Second))

	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(time.Second):
		t.Fatal("barrier did not release after all peers arrived")
	}
}

func TestMemoryCoordinatorLaterStageCounts(t *testing.T) {
	c := NewMemoryCoordinator(zerolog.Nop())
	peers := []string{"host1", "host2"}

	// host2 is already past stage 1; host1's stage-1 barrier must not wait.
	require.NoError(t, c.SyncStage(context.Background(), "host2", 2, []string{"host2"}, time.Second))
	require.NoError(t, c.SyncStage(context.Background(), "host1", 1, peers, time.Second))
}

func TestMemoryCoordinatorTimeout(t *testing.T) {
	c := NewMemoryCoordinator(zerolog.Nop())

	err := c.SyncStage(context.Background(), "host1", 1, []string{"host1", "absent"}, 50*time.Millisecond)
	require.Error(t, err)
	assert.True(t, errors.HasCode(err, ErrStageTimeout))
}

func TestMemoryCoordinatorPeerFailure(t *testing.T) {
	c := NewMemoryCoordinator(zerolog.Nop())
	peers := []string{"host1", "host2"}

	c.SyncStageError("host2", "disk on fire")

	err := c.SyncStage(context.Background(), "host1", 1, peers, time.Second)
	require.Error(t, err)
	assert.True(t, errors.HasCode(err, ErrPeerFailed))
	assert.Equal(t, "host2", errors.GetContext(err)["peer"])
}

func TestMemoryCoordinatorContextCancel(t *testing.T) {
	c := NewMemoryCoordinator(zerolog.Nop())
	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan error, 1)
	go func() {
		done <- c.SyncStage(ctx, "host1", 1, []string{"host1", "absent"}, time.Minute)
	}()
	cancel()

	select {
	case err := <-done:
		require.Error(t, err)
		assert.True(t, errors.HasCode(err, ErrStageTimeout))
	case <-time.After(time.Second):
		t.Fatal("cancelled barrier did not return")
	}
}
