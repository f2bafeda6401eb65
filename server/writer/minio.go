package writer

import (
	"context"
	"path"
	"strings"

	"github.com/gear6io/glacier/pkg/errors"
	"github.com/gear6io/glacier/server/types"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"github.com/rs/zerolog"
)

// MinioConfig holds the object-store destination settings.
type MinioConfig struct {
	Endpoint  string `yaml:"endpoint"`
	Bucket    string `yaml:"bucket"`
	Prefix    string `yaml:"prefix"`
	AccessKey string `yaml:"access_key"`
	SecretKey string `yaml:"secret_key"`
	UseSSL    bool   `yaml:"use_ssl"`
}

// MinioWriter persists entries as objects in an S3-compatible bucket.
type MinioWriter struct {
	client *minio.Client
	bucket string
	prefix string
	logger zerolog.Logger
}

// NewMinioWriter creates a writer that uploads into cfg.Bucket under
// cfg.Prefix.
func NewMinioWriter(cfg MinioConfig, logger zerolog.Logger) (*MinioWriter, error) {
	if cfg.Endpoint == "" || cfg.Bucket == "" {
		return nil, errors.New(ErrInvalidConfig, "endpoint and bucket are required", nil)
	}
	client, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.UseSSL,
	})
	if err != nil {
		return nil, errors.New(ErrInvalidConfig, "could not create object store client", err)
	}
	return &MinioWriter{
		client: client,
		bucket: cfg.Bucket,
		prefix: strings.Trim(cfg.Prefix, "/"),
		logger: logger.With().Str("component", "backup-writer").Str("bucket", cfg.Bucket).Logger(),
	}, nil
}

// Write uploads all entries. Object keys mirror the archive paths, prefixed
// with the configured key prefix.
func (w *MinioWriter) Write(ctx context.Context, entries []types.Entry) error {
	var totalBytes int64
	for _, entry := range entries {
		key := strings.TrimPrefix(entry.Path, "/")
		if w.prefix != "" {
			key = path.Join(w.prefix, key)
		}

		content, err := entry.Producer.Open()
		if err != nil {
			return errors.New(ErrEntryOpenFailed, "could not open entry content", err).AddContext("path", entry.Path)
		}
		size := entry.Producer.Size()
		_, err = w.client.PutObject(ctx, w.bucket, key, content, size, minio.PutObjectOptions{
			ContentType: "application/octet-stream",
		})
		content.Close()
		if err != nil {
			return errors.New(ErrUploadFailed, "could not upload entry", err).
				AddContext("path", entry.Path).
				AddContext("key", key)
		}
		totalBytes += size
	}
	w.logger.Info().Int("entries", len(entries)).Int64("bytes", totalBytes).Msg("Backup uploaded")
	return nil
}

// GetType returns the component type identifier
func (w *MinioWriter) GetType() string {
	return ComponentType
}

// Shutdown gracefully shuts down the writer
func (w *MinioWriter) Shutdown(ctx context.Context) error {
	return nil
}
