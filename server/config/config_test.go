package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestDefaultConfig(t *testing.T) {
	cfg := LoadDefaultConfig()

	if err := cfg.Validate(); err != nil {
		t.Errorf("Default config should validate, got error: %v", err)
	}
	if cfg.Destination.Type != DestinationFilesystem {
		t.Errorf("Expected default destination type to be 'filesystem', got '%s'", cfg.Destination.Type)
	}

	d, err := cfg.Backup.GetTimeout()
	if err != nil {
		t.Fatalf("Default timeout should parse, got error: %v", err)
	}
	if d != 5*time.Minute {
		t.Errorf("Expected default timeout 5m, got %s", d)
	}
}

func TestConfigValidation(t *testing.T) {
	cfg := LoadDefaultConfig()

	cfg.Destination.Path = ""
	if err := cfg.Validate(); err == nil {
		t.Error("Config with empty destination path should fail validation")
	}

	cfg = LoadDefaultConfig()
	cfg.Destination.Type = "carrier-pigeon"
	if err := cfg.Validate(); err == nil {
		t.Error("Config with unknown destination type should fail validation")
	}

	cfg = LoadDefaultConfig()
	cfg.Backup.Timeout = "not-a-duration"
	if err := cfg.Validate(); err == nil {
		t.Error("Config with invalid timeout should fail validation")
	}
}

func TestNegativeTimeoutIsAllowed(t *testing.T) {
	cfg := LoadDefaultConfig()
	cfg.Backup.Timeout = "-1s"
	d, err := cfg.Backup.GetTimeout()
	if err != nil {
		t.Fatalf("Negative timeout should parse, got error: %v", err)
	}
	if d >= 0 {
		t.Errorf("Expected negative duration, got %s", d)
	}
}

func TestLoadConfigFromFile(t *testing.T) {
	content := `
log:
  level: debug
  console: false
  file_path: ""
backup:
  host_id: s1r1
  cluster:
    - [s1r1, s1r2]
    - [s2r1]
  timeout: 30s
destination:
  type: s3
  s3:
    endpoint: localhost:9000
    bucket: backups
`
	path := filepath.Join(t.TempDir(), "glacier.yml")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}
	if cfg.Backup.HostID != "s1r1" {
		t.Errorf("Expected host_id 's1r1', got '%s'", cfg.Backup.HostID)
	}
	if len(cfg.Backup.Cluster) != 2 || len(cfg.Backup.Cluster[0]) != 2 {
		t.Errorf("Unexpected cluster topology: %v", cfg.Backup.Cluster)
	}
	d, err := cfg.Backup.GetTimeout()
	if err != nil || d != 30*time.Second {
		t.Errorf("Expected timeout 30s, got %s (err %v)", d, err)
	}
	// Defaults survive for keys the file does not set.
	lt, err := cfg.Backup.GetLockTimeout()
	if err != nil || lt != 10*time.Second {
		t.Errorf("Expected default lock timeout 10s, got %s (err %v)", lt, err)
	}
	if cfg.Destination.S3.Bucket != "backups" {
		t.Errorf("Expected bucket 'backups', got '%s'", cfg.Destination.S3.Bucket)
	}
}

func TestLoadConfigMissingFile(t *testing.T) {
	if _, err := LoadConfig(filepath.Join(t.TempDir(), "missing.yml")); err == nil {
		t.Error("Expected error for missing config file")
	}
}
