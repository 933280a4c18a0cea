package config_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"storage-service/internal/config"

	"github.com/stretchr/testify/assert"
)

func TestLoad_FromEnvFile(t *testing.T) {
	td := t.TempDir()

	envContent := `HTTP_PORT=9090
JWT_TOKEN=very_very_secret_key

UPLOAD_STAGING_DIR=/tmp/staging
UPLOAD_IO_TIMEOUT=10s
QUOTA_LIMIT_BYTES=1073741824
PREVIEW_URL_TTL=5m

POSTGRES_HOST=localhost
POSTGRES_PORT=5433
POSTGRES_USER=storage
POSTGRES_PASSWORD=storage
POSTGRES_DB=storage

REDIS_HOST=localhost
REDIS_PORT=6380
REDIS_PASSWORD=
REDIS_DB=0
`
	if err := os.WriteFile(filepath.Join(td, ".env"), []byte(envContent), 0o644); err != nil {
		t.Fatal(err)
	}

	origWd, _ := os.Getwd()
	defer os.Chdir(origWd)
	if err := os.Chdir(td); err != nil {
		t.Fatal(err)
	}

	cfg, err := config.Load()
	assert.NoError(t, err)

	assert.Equal(t, "9090", cfg.HTTPPort)
	assert.Equal(t, "very_very_secret_key", cfg.JWTSecret)
	assert.Equal(t, "/tmp/staging", cfg.StagingDir)
	assert.Equal(t, 10*time.Second, cfg.IOTimeout)
	assert.Equal(t, int64(1<<30), cfg.QuotaLimitBytes)
	assert.Equal(t, 5*time.Minute, cfg.PreviewURLTTL)

	assert.Equal(t, "localhost", cfg.Postgres.Host)
	assert.Equal(t, uint16(5433), cfg.Postgres.Port)
	assert.Equal(t, "storage", cfg.Postgres.Username)
	assert.Equal(t, "storage", cfg.Postgres.Database)

	assert.Equal(t, "localhost", cfg.Redis.Host)
	assert.Equal(t, "6380", cfg.Redis.Port)
	assert.Equal(t, 0, cfg.Redis.Db)
}

func TestLoad_Defaults(t *testing.T) {
	td := t.TempDir()
	origWd, _ := os.Getwd()
	defer os.Chdir(origWd)
	if err := os.Chdir(td); err != nil {
		t.Fatal(err)
	}
	for _, k := range []string{"HTTP_PORT", "UPLOAD_STAGING_DIR", "UPLOAD_IO_TIMEOUT", "QUOTA_LIMIT_BYTES", "PREVIEW_URL_TTL"} {
		os.Unsetenv(k)
	}

	cfg, err := config.Load()
	assert.NoError(t, err)
	assert.Equal(t, "8080", cfg.HTTPPort)
	assert.Equal(t, "./staging", cfg.StagingDir)
	assert.Equal(t, 30*time.Second, cfg.IOTimeout)
	assert.Equal(t, int64(15)<<30, cfg.QuotaLimitBytes)
	assert.Equal(t, 15*time.Minute, cfg.PreviewURLTTL)
}
