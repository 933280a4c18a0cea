package config

import (
	"fmt"
	"os"
	"time"

	"storage-service/internal/MinIO"
	"storage-service/pkg/database/postgres"
	"storage-service/pkg/database/redis"

	"github.com/ilyakaznacheev/cleanenv"
)

type Config struct {
	HTTPPort  string `env:"HTTP_PORT" env-default:"8080"`
	JWTSecret string `env:"JWT_TOKEN"`

	StagingDir string        `env:"UPLOAD_STAGING_DIR" env-default:"./staging"`
	IOTimeout  time.Duration `env:"UPLOAD_IO_TIMEOUT" env-default:"30s"`

	QuotaLimitBytes int64         `env:"QUOTA_LIMIT_BYTES" env-default:"16106127360"`
	PreviewURLTTL   time.Duration `env:"PREVIEW_URL_TTL" env-default:"15m"`

	Postgres postgres.Config
	Redis    redis.RedisConfig
	MinIO    MinIO.Config
}

// Load reads ./.env when present and falls back to the process environment.
func Load() (*Config, error) {
	var cfg Config
	if _, err := os.Stat(".env"); err == nil {
		if err := cleanenv.ReadConfig(".env", &cfg); err != nil {
			return nil, fmt.Errorf("cannot read config: %w", err)
		}
		return &cfg, nil
	}
	if err := cleanenv.ReadEnv(&cfg); err != nil {
		return nil, fmt.Errorf("cannot read config from environment: %w", err)
	}
	return &cfg, nil
}
