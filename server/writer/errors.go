package writer

import "github.com/gear6io/glacier/pkg/errors"

// Writer-specific error codes
var (
	ErrEntryOpenFailed = errors.MustNewCode("writer.entry_open_failed")
	ErrCreateFailed    = errors.MustNewCode("writer.create_failed")
	ErrWriteFailed     = errors.MustNewCode("writer.write_failed")
	ErrUploadFailed    = errors.MustNewCode("writer.upload_failed")
	ErrInvalidConfig   = errors.MustNewCode("writer.invalid_config")
)
