package catalogService

import (
	"context"
	"fmt"
	"time"

	"storage-service/internal/apperrors"
	"storage-service/internal/model/entry"
	"storage-service/internal/model/identity"
	"storage-service/internal/service/accessService"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

type EntryRepository interface {
	Create(ctx context.Context, e *entry.Entry) error
	GetByID(ctx context.Context, id uuid.UUID) (*entry.Entry, error)
	ListChildren(ctx context.Context, ownerID uint32, parentID *uuid.UUID, vis entry.Visibility) ([]*entry.Entry, error)
	MoveFile(ctx context.Context, fileID uuid.UUID, targetID *uuid.UUID) error
	Rename(ctx context.Context, id uuid.UUID, newName string) error
	Delete(ctx context.Context, id uuid.UUID) error
	SetStarred(ctx context.Context, id uuid.UUID, starred bool) error
	SetVault(ctx context.Context, id uuid.UUID, vault bool) error
	SetTrashed(ctx context.Context, id uuid.UUID, trashed bool) error
	AddShareGrant(ctx context.Context, g *entry.ShareGrant) error
	ListShareGrants(ctx context.Context, fileID uuid.UUID) ([]entry.ShareGrant, error)
}

type ObjectStore interface {
	SignedURL(ctx context.Context, key string, ttl time.Duration) (string, error)
	Remove(ctx context.Context, key string) error
}

type QuotaLedger interface {
	Read(ctx context.Context, accountID uint32) (used int64, limit int64, err error)
}

// CatalogService exposes the catalog operations behind the access evaluator.
// Every call takes the actor explicitly; there is no ambient session state.
type CatalogService struct {
	entries    EntryRepository
	store      ObjectStore
	quota      QuotaLedger
	access     *accessService.Evaluator
	previewTTL time.Duration
	now        func() time.Time
	log        *zap.Logger
}

func New(entries EntryRepository, store ObjectStore, quota QuotaLedger,
	access *accessService.Evaluator, previewTTL time.Duration, now func() time.Time, log *zap.Logger) *CatalogService {
	if now == nil {
		now = time.Now
	}
	return &CatalogService{
		entries:    entries,
		store:      store,
		quota:      quota,
		access:     access,
		previewTTL: previewTTL,
		now:        now,
		log:        log,
	}
}

func (s *CatalogService) CreateFolder(ctx context.Context, who identity.Identity, name string, parentID *uuid.UUID) (*entry.Entry, error) {
	if name == "" {
		return nil, apperrors.New(apperrors.KindValidation, "folder name is required")
	}
	if parentID != nil {
		if _, err := s.ownedFolder(ctx, who, *parentID); err != nil {
			return nil, err
		}
	}
	e := &entry.Entry{
		ID:        uuid.New(),
		Kind:      entry.KindFolder,
		Name:      name,
		OwnerID:   who.ID,
		ParentID:  parentID,
		CreatedAt: s.now(),
	}
	if err := s.entries.Create(ctx, e); err != nil {
		return nil, fmt.Errorf("create folder: %w", err)
	}
	return e, nil
}

// Contents lists an owner's folders and files under a parent for the given
// tab. The vault tab without the unlocked signal fails Forbidden before any
// catalog read happens.
func (s *CatalogService) Contents(ctx context.Context, who identity.Identity, parentID *uuid.UUID,
	tab entry.Tab, vaultUnlocked bool) (folders, files []*entry.Entry, err error) {

	vis, err := s.access.VisibilityForTab(tab, vaultUnlocked)
	if err != nil {
		return nil, nil, err
	}

	children, err := s.entries.ListChildren(ctx, who.ID, parentID, vis)
	if err != nil {
		return nil, nil, fmt.Errorf("list children: %w", err)
	}

	for _, c := range children {
		switch c.Kind {
		case entry.KindFolder:
			folders = append(folders, c)
		case entry.KindFile:
			files = append(files, c)
		default:
			return nil, nil, apperrors.New(apperrors.KindValidation, "unknown entry kind in catalog")
		}
	}
	return folders, files, nil
}

// Move reparents a file. Only files move; folder moves would need an
// ancestor-cycle check and are not supported.
func (s *CatalogService) Move(ctx context.Context, who identity.Identity, fileID uuid.UUID, targetID *uuid.UUID) error {
	e, err := s.ownedEntry(ctx, who, fileID)
	if err != nil {
		return err
	}
	if !e.IsFile() {
		return apperrors.New(apperrors.KindValidation, "only files can be moved")
	}
	if targetID != nil {
		if _, err := s.ownedFolder(ctx, who, *targetID); err != nil {
			return err
		}
	}
	if err := s.entries.MoveFile(ctx, fileID, targetID); err != nil {
		return fmt.Errorf("move file: %w", err)
	}
	return nil
}

func (s *CatalogService) Rename(ctx context.Context, who identity.Identity, id uuid.UUID, newName string) error {
	if newName == "" {
		return apperrors.New(apperrors.KindValidation, "name is required")
	}
	if _, err := s.ownedEntry(ctx, who, id); err != nil {
		return err
	}
	if err := s.entries.Rename(ctx, id, newName); err != nil {
		return fmt.Errorf("rename entry: %w", err)
	}
	return nil
}

// Delete removes the entry from the catalog and queues the stored object for
// removal. The quota ledger is deliberately untouched: used bytes are never
// freed on delete.
func (s *CatalogService) Delete(ctx context.Context, who identity.Identity, id uuid.UUID) error {
	e, err := s.ownedEntry(ctx, who, id)
	if err != nil {
		return err
	}
	if err := s.entries.Delete(ctx, id); err != nil {
		return fmt.Errorf("delete entry: %w", err)
	}
	if e.IsFile() && e.StorageKey != "" {
		if err := s.store.Remove(ctx, e.StorageKey); err != nil {
			// The catalog row is already gone; an unreferenced object is an
			// acceptable leak, the reverse would not be.
			s.log.Warn("remove stored object",
				zap.String("storage_key", e.StorageKey), zap.Error(err))
		}
	}
	return nil
}

func (s *CatalogService) ToggleStar(ctx context.Context, who identity.Identity, id uuid.UUID) (bool, error) {
	e, err := s.ownedEntry(ctx, who, id)
	if err != nil {
		return false, err
	}
	next := !e.Starred
	if err := s.entries.SetStarred(ctx, id, next); err != nil {
		return false, fmt.Errorf("set starred: %w", err)
	}
	return next, nil
}

func (s *CatalogService) SetVaultFlag(ctx context.Context, who identity.Identity, id uuid.UUID, vault bool) error {
	if _, err := s.ownedEntry(ctx, who, id); err != nil {
		return err
	}
	if err := s.entries.SetVault(ctx, id, vault); err != nil {
		return fmt.Errorf("set vault: %w", err)
	}
	return nil
}

func (s *CatalogService) SetTrash(ctx context.Context, who identity.Identity, id uuid.UUID, trashed bool) error {
	if _, err := s.ownedEntry(ctx, who, id); err != nil {
		return err
	}
	if err := s.entries.SetTrashed(ctx, id, trashed); err != nil {
		return fmt.Errorf("set trashed: %w", err)
	}
	return nil
}

// Share grants a read permission on a file to an email. hours <= 0 makes the
// grant permanent. Expired grants are never pruned from storage.
func (s *CatalogService) Share(ctx context.Context, who identity.Identity, fileID uuid.UUID, email string, role entry.Role, hours int) (*entry.ShareGrant, error) {
	if email == "" {
		return nil, apperrors.New(apperrors.KindValidation, "email is required")
	}
	if role == "" {
		role = entry.RoleViewer
	}
	e, err := s.ownedEntry(ctx, who, fileID)
	if err != nil {
		return nil, err
	}
	if !e.IsFile() {
		return nil, apperrors.New(apperrors.KindValidation, "only files can be shared")
	}

	g := &entry.ShareGrant{
		FileID:    fileID,
		Email:     email,
		Role:      role,
		CreatedAt: s.now(),
	}
	if hours > 0 {
		exp := s.now().Add(time.Duration(hours) * time.Hour)
		g.ExpiresAt = &exp
	}
	if err := s.entries.AddShareGrant(ctx, g); err != nil {
		return nil, fmt.Errorf("add share grant: %w", err)
	}
	return g, nil
}

// Preview gates the read path through the evaluator and issues a
// time-limited signed URL for the stored object.
func (s *CatalogService) Preview(ctx context.Context, who identity.Identity, fileID uuid.UUID, vaultUnlocked bool) (string, error) {
	e, err := s.entries.GetByID(ctx, fileID)
	if err != nil {
		return "", fmt.Errorf("load entry: %w", err)
	}
	if e == nil {
		return "", apperrors.New(apperrors.KindNotFound, "file not found")
	}
	if !e.IsFile() {
		return "", apperrors.New(apperrors.KindValidation, "folders have no preview")
	}

	grants, err := s.entries.ListShareGrants(ctx, fileID)
	if err != nil {
		return "", fmt.Errorf("load share grants: %w", err)
	}
	if err := s.access.CanOpen(who, e, grants, vaultUnlocked); err != nil {
		return "", err
	}

	url, err := s.store.SignedURL(ctx, e.StorageKey, s.previewTTL)
	if err != nil {
		return "", apperrors.Wrap(apperrors.KindIOFailure, "sign preview url", err)
	}
	return url, nil
}

func (s *CatalogService) StorageUsage(ctx context.Context, who identity.Identity) (used, limit int64, err error) {
	used, limit, err = s.quota.Read(ctx, who.ID)
	if err != nil {
		return 0, 0, fmt.Errorf("read quota: %w", err)
	}
	return used, limit, nil
}

func (s *CatalogService) ownedEntry(ctx context.Context, who identity.Identity, id uuid.UUID) (*entry.Entry, error) {
	e, err := s.entries.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("load entry: %w", err)
	}
	if e == nil {
		return nil, apperrors.New(apperrors.KindNotFound, "entry not found")
	}
	if err := s.access.RequireOwner(who, e); err != nil {
		return nil, err
	}
	return e, nil
}

func (s *CatalogService) ownedFolder(ctx context.Context, who identity.Identity, id uuid.UUID) (*entry.Entry, error) {
	e, err := s.ownedEntry(ctx, who, id)
	if err != nil {
		return nil, err
	}
	if !e.IsFolder() {
		return nil, apperrors.New(apperrors.KindValidation, "entry is not a folder")
	}
	return e, nil
}
