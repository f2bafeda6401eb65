package coordination

import "github.com/gear6io/glacier/pkg/errors"

// Coordination-specific error codes
var (
	ErrStageTimeout    = errors.MustNewCode("coordination.stage_timeout")
	ErrPeerFailed      = errors.MustNewCode("coordination.peer_failed")
	ErrStoreOpenFailed = errors.MustNewCode("coordination.store_open_failed")
	ErrStoreQueryFailed = errors.MustNewCode("coordination.store_query_failed")
)
