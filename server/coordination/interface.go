package coordination

import (
	"context"
	"time"

	"github.com/gear6io/glacier/server/shared"
)

// StageCoordinator is the barrier client the collector uses to keep
// cooperating hosts in lockstep. Stages are ordered integers; a host that
// has reached stage N counts as having reached every stage below N.
type StageCoordinator interface {
	shared.Component

	// SyncStage announces that hostID reached stage and blocks until every
	// peer confirms the same stage (or a later one), or timeout elapses.
	// A peer-reported failure fails the barrier immediately.
	SyncStage(ctx context.Context, hostID string, stage int, peers []string, timeout time.Duration) error

	// SyncStageError announces that hostID failed. Best effort: it must
	// never panic and never block its caller on transport trouble, because
	// it runs on paths that are already failing.
	SyncStageError(hostID string, message string)
}
