package backup

import "github.com/gear6io/glacier/pkg/errors"

// Backup-specific error codes
var (
	ErrAlreadyCollecting  = errors.MustNewCode("backup.already_collecting")
	ErrCollectFailed      = errors.MustNewCode("backup.cannot_collect_objects")
	ErrRegistrationClosed = errors.MustNewCode("backup.registration_closed")
	ErrPostTaskFailed     = errors.MustNewCode("backup.post_task_failed")
	ErrHostNotInCluster   = errors.MustNewCode("backup.host_not_in_cluster")
	ErrInvalidConfig      = errors.MustNewCode("backup.invalid_config")
)
