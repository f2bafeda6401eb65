package config

import "github.com/gear6io/glacier/pkg/errors"

// Config-specific error codes
var (
	ErrConfigFileReadFailed    = errors.MustNewCode("config.file_read_failed")
	ErrConfigFileParseFailed   = errors.MustNewCode("config.file_parse_failed")
	ErrConfigValidationFailed  = errors.MustNewCode("config.validation_failed")
	ErrConfigFileMarshalFailed = errors.MustNewCode("config.file_marshal_failed")
	ErrConfigFileWriteFailed   = errors.MustNewCode("config.file_write_failed")
	ErrTimeoutRequired         = errors.MustNewCode("config.timeout_required")
	ErrTimeoutInvalid          = errors.MustNewCode("config.timeout_invalid")
	ErrDestinationPathRequired = errors.MustNewCode("config.destination_path_required")
	ErrDestinationS3Incomplete = errors.MustNewCode("config.destination_s3_incomplete")
	ErrDestinationTypeUnknown  = errors.MustNewCode("config.destination_type_unknown")

	// Logging-specific error codes
	ErrLogDirectoryCreationFailed = errors.MustNewCode("config.log_directory_creation_failed")
	ErrLogFileOpenFailed          = errors.MustNewCode("config.log_file_open_failed")
	ErrLogFilePathRequired        = errors.MustNewCode("config.log_file_path_required")
	ErrLogRotationFailed          = errors.MustNewCode("config.log_rotation_failed")
	ErrLogCleanupFailed           = errors.MustNewCode("config.log_cleanup_failed")
	ErrLogFileWriterSetupFailed   = errors.MustNewCode("config.log_file_writer_setup_failed")
)
