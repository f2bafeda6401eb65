package cli

import "github.com/gear6io/glacier/pkg/errors"

// CLI-specific error codes
var (
	ErrInvalidArguments = errors.MustNewCode("cli.invalid_arguments")
	ErrBackupFailed     = errors.MustNewCode("cli.backup_failed")
)
