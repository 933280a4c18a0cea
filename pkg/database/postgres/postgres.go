package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

type Config struct {
	Host     string `env:"POSTGRES_HOST" env-default:"localhost"`
	Port     uint16 `env:"POSTGRES_PORT" env-default:"5433"`
	Username string `env:"POSTGRES_USER" env-default:"storage"`
	Password string `env:"POSTGRES_PASSWORD" env-default:"storage"`
	Database string `env:"POSTGRES_DB"   env-default:"storage"`
}

// New opens a connection pool; requests are handled in parallel so a single
// pgx.Conn would not do.
func New(ctx context.Context, config Config) (*pgxpool.Pool, error) {
	connStr := fmt.Sprintf("postgres://%s:%s@%s:%d/%s",
		config.Username,
		config.Password,
		config.Host,
		config.Port,
		config.Database,
	)
	pool, err := pgxpool.New(ctx, connStr)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	return pool, nil
}
