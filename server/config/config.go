package config

import (
	"os"
	"time"

	"github.com/gear6io/glacier/pkg/errors"
	"gopkg.in/yaml.v3"
)

// Config represents the server configuration
type Config struct {
	Log          LogConfig          `yaml:"log"`
	Backup       BackupConfig       `yaml:"backup"`
	Coordination CoordinationConfig `yaml:"coordination"`
	Destination  DestinationConfig  `yaml:"destination"`
}

// LogConfig represents logging configuration
type LogConfig struct {
	Level      string `yaml:"level"`
	Format     string `yaml:"format"`      // "json" or "console"
	FilePath   string `yaml:"file_path"`   // Path to log file
	Console    bool   `yaml:"console"`     // Whether to log to console
	MaxSize    int    `yaml:"max_size"`    // Max file size in MB
	MaxBackups int    `yaml:"max_backups"` // Max number of backup files
	MaxAge     int    `yaml:"max_age"`     // Max age in days
	Cleanup    bool   `yaml:"cleanup"`     // Whether to cleanup log file on startup
}

// BackupConfig represents backup collection configuration
type BackupConfig struct {
	// HostID identifies this host inside Cluster. Empty for single-host
	// backups.
	HostID string `yaml:"host_id"`

	// Cluster is the topology, one list of replica host ids per shard.
	Cluster [][]string `yaml:"cluster"`

	// Timeout bounds the whole collection, e.g. "5m". "-1s" disables the
	// deadline and retries until a consistent snapshot is found.
	Timeout string `yaml:"timeout"`

	// LockTimeout bounds each per-table lock acquisition, e.g. "10s".
	LockTimeout string `yaml:"lock_timeout"`
}

// CoordinationConfig represents stage coordination configuration
type CoordinationConfig struct {
	// StorePath is the shared sqlite file hosts coordinate through. Empty
	// selects the in-process coordinator.
	StorePath string `yaml:"store_path"`
}

// DestinationConfig represents the backup destination
type DestinationConfig struct {
	// Type is "filesystem" or "s3".
	Type string `yaml:"type"`

	// Path is the destination directory for the filesystem type.
	Path string `yaml:"path"`

	S3 S3Config `yaml:"s3"`
}

// S3Config represents the object-store destination settings
type S3Config struct {
	Endpoint  string `yaml:"endpoint"`
	Bucket    string `yaml:"bucket"`
	Prefix    string `yaml:"prefix"`
	AccessKey string `yaml:"access_key"`
	SecretKey string `yaml:"secret_key"`
	UseSSL    bool   `yaml:"use_ssl"`
}

// LoadDefaultConfig returns a default configuration
func LoadDefaultConfig() *Config {
	return &Config{
		Log: LogConfig{
			Level:      "info",
			Format:     "console",
			FilePath:   "logs/glacier.log",
			Console:    true,
			MaxSize:    100, // 100MB
			MaxBackups: 3,
			MaxAge:     7, // 7 days
			Cleanup:    true,
		},
		Backup: BackupConfig{
			Timeout:     DefaultBackupTimeout,
			LockTimeout: DefaultLockTimeout,
		},
		Destination: DestinationConfig{
			Type: DestinationFilesystem,
			Path: "./backups",
		},
	}
}

// LoadConfig loads configuration from a file
func LoadConfig(filename string) (*Config, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, errors.New(ErrConfigFileReadFailed, "failed to read config file", err)
	}

	config := LoadDefaultConfig()
	if err := yaml.Unmarshal(data, config); err != nil {
		return nil, errors.New(ErrConfigFileParseFailed, "failed to parse config file", err)
	}

	if err := config.Validate(); err != nil {
		return nil, errors.New(ErrConfigValidationFailed, "configuration validation failed", err)
	}
	return config, nil
}

// SaveConfig saves configuration to a file
func SaveConfig(config *Config, filename string) error {
	data, err := yaml.Marshal(config)
	if err != nil {
		return errors.New(ErrConfigFileMarshalFailed, "failed to marshal config", err)
	}
	if err := os.WriteFile(filename, data, 0644); err != nil {
		return errors.New(ErrConfigFileWriteFailed, "failed to write config file", err)
	}
	return nil
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if _, err := c.Backup.GetTimeout(); err != nil {
		return err
	}
	if _, err := c.Backup.GetLockTimeout(); err != nil {
		return err
	}
	if err := c.Destination.Validate(); err != nil {
		return err
	}
	return nil
}

// GetTimeout returns the parsed collection timeout
func (b *BackupConfig) GetTimeout() (time.Duration, error) {
	if b.Timeout == "" {
		return 0, errors.New(ErrTimeoutRequired, "backup timeout is required", nil)
	}
	d, err := time.ParseDuration(b.Timeout)
	if err != nil {
		return 0, errors.New(ErrTimeoutInvalid, "backup timeout is not a valid duration", err).AddContext("timeout", b.Timeout)
	}
	return d, nil
}

// GetLockTimeout returns the parsed per-table lock timeout
func (b *BackupConfig) GetLockTimeout() (time.Duration, error) {
	if b.LockTimeout == "" {
		return 0, errors.New(ErrTimeoutRequired, "lock timeout is required", nil)
	}
	d, err := time.ParseDuration(b.LockTimeout)
	if err != nil {
		return 0, errors.New(ErrTimeoutInvalid, "lock timeout is not a valid duration", err).AddContext("lock_timeout", b.LockTimeout)
	}
	return d, nil
}

// Validate validates the destination configuration
func (d *DestinationConfig) Validate() error {
	switch d.Type {
	case DestinationFilesystem:
		if d.Path == "" {
			return errors.New(ErrDestinationPathRequired, "destination path is required for the filesystem type", nil)
		}
	case DestinationS3:
		if d.S3.Endpoint == "" || d.S3.Bucket == "" {
			return errors.New(ErrDestinationS3Incomplete, "endpoint and bucket are required for the s3 type", nil)
		}
	default:
		return errors.New(ErrDestinationTypeUnknown, "unknown destination type", nil).AddContext("type", d.Type)
	}
	return nil
}
