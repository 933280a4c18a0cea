package entryRepo

import (
	"context"
	"errors"
	"fmt"

	"storage-service/internal/model/entry"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// EntryRepo persists the folder/file catalog. Flag and share-list updates
// are single-row atomic; nothing here coordinates across sibling entries.
type EntryRepo struct {
	pool *pgxpool.Pool
}

func New(pool *pgxpool.Pool) *EntryRepo {
	return &EntryRepo{pool: pool}
}

// EnsureSchema creates the catalog tables when absent. Statements run one at
// a time: pgx's extended protocol does not take multi-statement strings.
func (r *EntryRepo) EnsureSchema(ctx context.Context) error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS entries (
			id           UUID PRIMARY KEY,
			kind         TEXT NOT NULL,
			name         TEXT NOT NULL,
			owner_id     BIGINT NOT NULL,
			parent_id    UUID,
			starred      BOOLEAN NOT NULL DEFAULT FALSE,
			vault        BOOLEAN NOT NULL DEFAULT FALSE,
			trashed      BOOLEAN NOT NULL DEFAULT FALSE,
			size         BIGINT NOT NULL DEFAULT 0,
			content_type TEXT NOT NULL DEFAULT '',
			storage_key  TEXT NOT NULL DEFAULT '',
			created_at   TIMESTAMPTZ NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_entries_owner_parent ON entries (owner_id, parent_id)`,
		`CREATE TABLE IF NOT EXISTS share_grants (
			id         BIGSERIAL PRIMARY KEY,
			file_id    UUID NOT NULL REFERENCES entries (id) ON DELETE CASCADE,
			email      TEXT NOT NULL,
			role       TEXT NOT NULL,
			expires_at TIMESTAMPTZ,
			created_at TIMESTAMPTZ NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_share_grants_file ON share_grants (file_id)`,
	}
	for _, stmt := range statements {
		if _, err := r.pool.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("ensure catalog schema: %w", err)
		}
	}
	return nil
}

func (r *EntryRepo) Create(ctx context.Context, e *entry.Entry) error {
	_, err := r.pool.Exec(ctx,
		`INSERT INTO entries (id, kind, name, owner_id, parent_id, starred, vault, trashed, size, content_type, storage_key, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`,
		e.ID, e.Kind, e.Name, e.OwnerID, e.ParentID, e.Starred, e.Vault, e.Trashed,
		e.Size, e.ContentType, e.StorageKey, e.CreatedAt)
	return err
}

func (r *EntryRepo) GetByID(ctx context.Context, id uuid.UUID) (*entry.Entry, error) {
	var e entry.Entry
	err := r.pool.QueryRow(ctx,
		`SELECT id, kind, name, owner_id, parent_id, starred, vault, trashed, size, content_type, storage_key, created_at
		 FROM entries WHERE id = $1`, id).
		Scan(&e.ID, &e.Kind, &e.Name, &e.OwnerID, &e.ParentID, &e.Starred, &e.Vault, &e.Trashed,
			&e.Size, &e.ContentType, &e.StorageKey, &e.CreatedAt)

	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &e, nil
}

// ListChildren returns an owner's entries under a parent, filtered by the
// resolved visibility. The default view hides vault and trashed entries.
func (r *EntryRepo) ListChildren(ctx context.Context, ownerID uint32, parentID *uuid.UUID, vis entry.Visibility) ([]*entry.Entry, error) {
	query := `SELECT id, kind, name, owner_id, parent_id, starred, vault, trashed, size, content_type, storage_key, created_at
		 FROM entries WHERE owner_id = $1 AND parent_id IS NOT DISTINCT FROM $2`
	switch vis {
	case entry.VisibilityStarred:
		query += ` AND starred AND NOT trashed`
	case entry.VisibilityVault:
		query += ` AND vault AND NOT trashed`
	case entry.VisibilityDefault:
		query += ` AND NOT vault AND NOT trashed`
	default:
		return nil, fmt.Errorf("unknown visibility %d", vis)
	}
	query += ` ORDER BY kind, name`

	rows, err := r.pool.Query(ctx, query, ownerID, parentID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []*entry.Entry
	for rows.Next() {
		var e entry.Entry
		if err := rows.Scan(&e.ID, &e.Kind, &e.Name, &e.OwnerID, &e.ParentID, &e.Starred, &e.Vault,
			&e.Trashed, &e.Size, &e.ContentType, &e.StorageKey, &e.CreatedAt); err != nil {
			return nil, err
		}
		entries = append(entries, &e)
	}
	return entries, rows.Err()
}

func (r *EntryRepo) MoveFile(ctx context.Context, fileID uuid.UUID, targetID *uuid.UUID) error {
	_, err := r.pool.Exec(ctx,
		`UPDATE entries SET parent_id = $2 WHERE id = $1 AND kind = 'file'`, fileID, targetID)
	return err
}

func (r *EntryRepo) Rename(ctx context.Context, id uuid.UUID, newName string) error {
	_, err := r.pool.Exec(ctx, `UPDATE entries SET name = $2 WHERE id = $1`, id, newName)
	return err
}

func (r *EntryRepo) Delete(ctx context.Context, id uuid.UUID) error {
	_, err := r.pool.Exec(ctx, `DELETE FROM entries WHERE id = $1`, id)
	return err
}

func (r *EntryRepo) SetStarred(ctx context.Context, id uuid.UUID, starred bool) error {
	return r.setFlag(ctx, id, "starred", starred)
}

func (r *EntryRepo) SetVault(ctx context.Context, id uuid.UUID, vault bool) error {
	return r.setFlag(ctx, id, "vault", vault)
}

func (r *EntryRepo) SetTrashed(ctx context.Context, id uuid.UUID, trashed bool) error {
	return r.setFlag(ctx, id, "trashed", trashed)
}

func (r *EntryRepo) setFlag(ctx context.Context, id uuid.UUID, column string, value bool) error {
	_, err := r.pool.Exec(ctx,
		fmt.Sprintf(`UPDATE entries SET %s = $2 WHERE id = $1`, column), id, value)
	return err
}

func (r *EntryRepo) AddShareGrant(ctx context.Context, g *entry.ShareGrant) error {
	_, err := r.pool.Exec(ctx,
		`INSERT INTO share_grants (file_id, email, role, expires_at, created_at)
		 VALUES ($1, $2, $3, $4, $5)`,
		g.FileID, g.Email, g.Role, g.ExpiresAt, g.CreatedAt)
	return err
}

// ListShareGrants returns every grant on a file, expired ones included.
// Grants are never pruned; the access evaluator decides which are active.
func (r *EntryRepo) ListShareGrants(ctx context.Context, fileID uuid.UUID) ([]entry.ShareGrant, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT file_id, email, role, expires_at, created_at
		 FROM share_grants WHERE file_id = $1`, fileID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var grants []entry.ShareGrant
	for rows.Next() {
		var g entry.ShareGrant
		if err := rows.Scan(&g.FileID, &g.Email, &g.Role, &g.ExpiresAt, &g.CreatedAt); err != nil {
			return nil, err
		}
		grants = append(grants, g)
	}
	return grants, rows.Err()
}
