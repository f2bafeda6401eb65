package coordination

import (
	"context"
	"sync"
	"time"

	"github.com/gear6io/glacier/pkg/errors"
	"github.com/juju/clock"
	"github.com/rs/zerolog"
)

// MemoryCoordinator is an in-process StageCoordinator. It serves the
// single-host case (where the barrier degenerates to a self-confirmation)
// and multi-host tests where all logical hosts share one process.
type MemoryCoordinator struct {
	mu       sync.Mutex
	clk      clock.Clock
	logger   zerolog.Logger
	stages   map[string]int
	failures map[string]string
	changed  chan struct{}
}

// NewMemoryCoordinator creates an in-process coordinator.
func NewMemoryCoordinator(logger zerolog.Logger) *MemoryCoordinator {
	return NewMemoryCoordinatorWithClock(logger, clock.WallClock)
}

// NewMemoryCoordinatorWithClock creates a coordinator with an injected clock.
func NewMemoryCoordinatorWithClock(logger zerolog.Logger, clk clock.Clock) *MemoryCoordinator {
	return &MemoryCoordinator{
		clk:      clk,
		logger:   logger.With().Str("component", "coordination").Logger(),
		stages:   make(map[string]int),
		failures: make(map[string]string),
		changed:  make(chan struct{}),
	}
}

// SyncStage announces hostID's stage and waits for all peers.
func (c *MemoryCoordinator) SyncStage(ctx context.Context, hostID string, stage int, peers []string, timeout time.Duration) error {
	c.mu.Lock()
	if stage > c.stages[hostID] {
		c.stages[hostID] = stage
	}
	c.broadcastLocked()
	c.mu.Unlock()

	deadline := c.clk.Now().Add(timeout)
	for {
		c.mu.Lock()
		failedHost, failedMsg, failed := c.peerFailureLocked(peers)
		reached := c.allReachedLocked(peers, stage)
		wait := c.changed
		c.mu.Unlock()

		if failed {
			return errors.New(ErrPeerFailed, "peer reported failure", nil).
				AddContext("peer", failedHost).
				AddContext("peer_message", failedMsg)
		}
		if reached {
			return nil
		}

		remaining := deadline.Sub(c.clk.Now())
		if remaining <= 0 {
			return errors.Newf(ErrStageTimeout, "timed out waiting for peers to reach stage %d", stage).
				AddContext("host", hostID)
		}
		select {
		case <-ctx.Done():
			return errors.New(ErrStageTimeout, "stage wait cancelled", ctx.Err()).AddContext("host", hostID)
		case <-wait:
		case <-c.clk.After(remaining):
		}
	}
}

// SyncStageError records a host failure. Best effort, never fails.
func (c *MemoryCoordinator) SyncStageError(hostID string, message string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, exists := c.failures[hostID]; !exists {
		c.failures[hostID] = message
	}
	c.broadcastLocked()
	c.logger.Error().Str("host", hostID).Str("message", message).Msg("Host reported backup failure")
}

func (c *MemoryCoordinator) peerFailureLocked(peers []string) (string, string, bool) {
	for _, peer := range peers {
		if msg, ok := c.failures[peer]; ok {
			return peer, msg, true
		}
	}
	return "", "", false
}

func (c *MemoryCoordinator) allReachedLocked(peers []string, stage int) bool {
	for _, peer := range peers {
		if c.stages[peer] < stage {
			return false
		}
	}
	return true
}

func (c *MemoryCoordinator) broadcastLocked() {
	close(c.changed)
	c.changed = make(chan struct{})
}

// GetType returns the component type identifier
func (c *MemoryCoordinator) GetType() string {
	return ComponentType
}

// Shutdown gracefully shuts down the coordinator
func (c *MemoryCoordinator) Shutdown(ctx context.Context) error {
	return nil
}
