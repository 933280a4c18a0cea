package uploadService

import (
	"context"
	"fmt"
	"io"
	"time"

	"storage-service/internal/apperrors"
	"storage-service/internal/model/entry"
	"storage-service/internal/model/identity"
	"storage-service/internal/upload"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

type ObjectStore interface {
	Put(ctx context.Context, key string, reader io.Reader, size int64, contentType string) error
}

type QuotaLedger interface {
	Increment(ctx context.Context, accountID uint32, bytes int64) error
}

type EntryRepository interface {
	Create(ctx context.Context, e *entry.Entry) error
	GetByID(ctx context.Context, id uuid.UUID) (*entry.Entry, error)
}

// UploadService drives the commit pipeline: staged stream → object store →
// quota ledger → catalog insert. The store write always comes first so a
// crash mid-pipeline leaves at worst an orphaned stored object, never a
// catalog entry pointing at nothing. The pipeline is not transactional
// across steps; each write is atomic on its own.
type UploadService struct {
	assembler *upload.Assembler
	store     ObjectStore
	quota     QuotaLedger
	entries   EntryRepository
	ioTimeout time.Duration
	now       func() time.Time
	log       *zap.Logger
}

func New(assembler *upload.Assembler, store ObjectStore, quota QuotaLedger, entries EntryRepository,
	ioTimeout time.Duration, now func() time.Time, log *zap.Logger) *UploadService {
	if now == nil {
		now = time.Now
	}
	return &UploadService{
		assembler: assembler,
		store:     store,
		quota:     quota,
		entries:   entries,
		ioTimeout: ioTimeout,
		now:       now,
		log:       log,
	}
}

func (s *UploadService) Initialize(ctx context.Context, fileName string) (string, error) {
	return s.assembler.Initialize(ctx, fileName)
}

func (s *UploadService) AppendChunk(ctx context.Context, sessionID, fileName string, data []byte) error {
	ctx, cancel := s.withIOTimeout(ctx)
	defer cancel()
	return s.assembler.AppendChunk(ctx, sessionID, fileName, data)
}

// CompleteParams carries the metadata sent with the completion signal.
type CompleteParams struct {
	SessionID   string
	FileName    string
	FolderID    *uuid.UUID
	IsVault     bool
	ContentType string
	// DeclaredSize, when positive, must equal the staged byte count; a gap or
	// duplicate in the chunk sequence is rejected before anything is stored.
	DeclaredSize int64
}

// Complete assembles the staged stream into a durable object and records the
// new file. A store failure is surfaced as retryable and keeps the staging
// stream, so Complete may be called again without re-sending chunks.
func (s *UploadService) Complete(ctx context.Context, who identity.Identity, p CompleteParams) (*entry.Entry, error) {
	if p.ContentType == "" {
		p.ContentType = "application/octet-stream"
	}

	if p.FolderID != nil {
		parent, err := s.entries.GetByID(ctx, *p.FolderID)
		if err != nil {
			return nil, fmt.Errorf("load target folder: %w", err)
		}
		if parent == nil || parent.OwnerID != who.ID {
			return nil, apperrors.New(apperrors.KindNotFound, "target folder not found")
		}
		if !parent.IsFolder() {
			return nil, apperrors.New(apperrors.KindValidation, "target entry is not a folder")
		}
	}

	staged, size, err := s.assembler.Staged(p.SessionID, p.FileName)
	if err != nil {
		return nil, err
	}
	defer staged.Close()

	if p.DeclaredSize > 0 && p.DeclaredSize != size {
		return nil, apperrors.New(apperrors.KindValidation,
			fmt.Sprintf("staged %d bytes but %d declared", size, p.DeclaredSize))
	}

	// Key is derived from account + timestamp + name; overwriting the same
	// key on a retried commit is safe because Put is idempotent.
	key := fmt.Sprintf("%d/%d/%s", who.ID, s.now().UnixNano(), p.FileName)

	putCtx, cancel := s.withIOTimeout(ctx)
	err = s.store.Put(putCtx, key, staged, size, p.ContentType)
	cancel()
	if err != nil {
		// Staging stays in place; the caller may retry Complete.
		return nil, apperrors.Wrap(apperrors.KindIOFailure, "store object", err)
	}

	if err := s.assembler.Discard(p.SessionID); err != nil {
		s.log.Warn("discard staging after commit",
			zap.String("session_id", p.SessionID), zap.Error(err))
	}

	if err := s.quota.Increment(ctx, who.ID, size); err != nil {
		return nil, fmt.Errorf("increment quota: %w", err)
	}

	e := &entry.Entry{
		ID:          uuid.New(),
		Kind:        entry.KindFile,
		Name:        p.FileName,
		OwnerID:     who.ID,
		ParentID:    p.FolderID,
		Vault:       p.IsVault,
		Size:        size,
		ContentType: p.ContentType,
		StorageKey:  key,
		CreatedAt:   s.now(),
	}
	if err := s.entries.Create(ctx, e); err != nil {
		return nil, fmt.Errorf("create catalog entry: %w", err)
	}

	s.log.Info("upload committed",
		zap.String("session_id", p.SessionID),
		zap.String("entry_id", e.ID.String()),
		zap.Int64("size", size))
	return e, nil
}

// Abandon drops an in-flight session and its staged bytes.
func (s *UploadService) Abandon(ctx context.Context, sessionID string) error {
	return s.assembler.Discard(sessionID)
}

func (s *UploadService) withIOTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if s.ioTimeout <= 0 {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, s.ioTimeout)
}
