package vaultRepo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// VaultRepo stores the optional per-account PIN hash. An account with no row
// has never set up its vault.
type VaultRepo struct {
	pool *pgxpool.Pool
}

func New(pool *pgxpool.Pool) *VaultRepo {
	return &VaultRepo{pool: pool}
}

func (r *VaultRepo) EnsureSchema(ctx context.Context) error {
	_, err := r.pool.Exec(ctx, `
		CREATE TABLE IF NOT EXISTS vault_pins (
			owner_id   BIGINT PRIMARY KEY,
			pin_hash   TEXT NOT NULL,
			created_at TIMESTAMPTZ NOT NULL
		)`)
	if err != nil {
		return fmt.Errorf("ensure vault schema: %w", err)
	}
	return nil
}

// GetPINHash returns the stored hash, or "" when the vault is unset.
func (r *VaultRepo) GetPINHash(ctx context.Context, accountID uint32) (string, error) {
	var hash string
	err := r.pool.QueryRow(ctx,
		`SELECT pin_hash FROM vault_pins WHERE owner_id = $1`, accountID).Scan(&hash)
	if errors.Is(err, pgx.ErrNoRows) {
		return "", nil
	}
	if err != nil {
		return "", err
	}
	return hash, nil
}

// SetPINHash stores the hash for first-use bootstrap. ON CONFLICT DO NOTHING
// keeps a concurrent bootstrap from overwriting an already-established PIN.
func (r *VaultRepo) SetPINHash(ctx context.Context, accountID uint32, hash string) error {
	_, err := r.pool.Exec(ctx,
		`INSERT INTO vault_pins (owner_id, pin_hash, created_at) VALUES ($1, $2, $3)
		 ON CONFLICT (owner_id) DO NOTHING`,
		accountID, hash, time.Now())
	return err
}
