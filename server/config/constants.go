package config

// Destination type constants
const (
	DestinationFilesystem = "filesystem"
	DestinationS3         = "s3"
)

// Default timeout constants
const (
	// DefaultBackupTimeout bounds the whole collection by default.
	DefaultBackupTimeout = "5m"

	// DefaultLockTimeout bounds each per-table lock acquisition.
	DefaultLockTimeout = "10s"
)
