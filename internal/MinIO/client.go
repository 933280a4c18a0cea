package MinIO

import (
	"context"
	"fmt"
	"io"
	"net/url"
	"time"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

type Config struct {
	MinioEndpoint string `env:"MINIO_ENDPOINT" env-default:"minio:9000"`
	BucketName    string `env:"MINIO_BUCKET_NAME" env-default:"storage"`
	MinioUseSSL   bool   `env:"MINIO_USE_SSL" env-default:"false"`

	MinioAccessKey string `env:"MINIO_ACCESS_KEY" env-default:"admin"`
	MinioSecretKey string `env:"MINIO_SECRET_KEY"`
}

// MinIOClient is the object store adapter: durable blobs addressed by opaque
// key, plus time-limited presigned read URLs. Put is an idempotent overwrite,
// so a retried commit under the same derived key is safe.
type MinIOClient struct {
	Client *minio.Client
	Bucket string
}

func New(cfg Config) (*MinIOClient, error) {
	client, err := minio.New(cfg.MinioEndpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.MinioAccessKey, cfg.MinioSecretKey, ""),
		Secure: cfg.MinioUseSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to initialize minio client: %w", err)
	}

	ctx := context.Background()
	if err := client.MakeBucket(ctx, cfg.BucketName, minio.MakeBucketOptions{}); err != nil {
		exists, errBucketExists := client.BucketExists(ctx, cfg.BucketName)
		if !(errBucketExists == nil && exists) {
			return nil, fmt.Errorf("failed to create bucket %q: %w", cfg.BucketName, err)
		}
	}

	return &MinIOClient{
		Client: client,
		Bucket: cfg.BucketName,
	}, nil
}

func (m *MinIOClient) Put(ctx context.Context, key string, reader io.Reader, size int64, contentType string) error {
	_, err := m.Client.PutObject(ctx, m.Bucket, key, reader, size, minio.PutObjectOptions{
		ContentType: contentType,
	})
	return err
}

// SignedURL issues a presigned GET for the object. Expiry is enforced by the
// backing store; after the TTL the URL no longer resolves.
func (m *MinIOClient) SignedURL(ctx context.Context, key string, ttl time.Duration) (string, error) {
	u, err := m.Client.PresignedGetObject(ctx, m.Bucket, key, ttl, url.Values{})
	if err != nil {
		return "", err
	}
	return u.String(), nil
}

func (m *MinIOClient) Remove(ctx context.Context, key string) error {
	return m.Client.RemoveObject(ctx, m.Bucket, key, minio.RemoveObjectOptions{})
}
