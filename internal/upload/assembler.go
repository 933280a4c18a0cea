package upload

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"storage-service/internal/apperrors"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Assembler accumulates chunks for in-flight upload sessions into one
// contiguous staging file per session. Sessions live in memory only: a
// process restart loses them and the client must start over.
type Assembler struct {
	dir string
	log *zap.Logger

	mu       sync.RWMutex
	sessions map[string]*session
}

type session struct {
	mu       sync.Mutex
	fileName string
	path     string
	written  int64
}

func NewAssembler(dir string, log *zap.Logger) (*Assembler, error) {
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return nil, fmt.Errorf("create staging dir %s: %w", dir, err)
	}
	return &Assembler{
		dir:      dir,
		log:      log,
		sessions: make(map[string]*session),
	}, nil
}

// Initialize allocates a fresh session and its empty staging file.
func (a *Assembler) Initialize(ctx context.Context, fileName string) (string, error) {
	if fileName == "" {
		return "", apperrors.New(apperrors.KindValidation, "file name is required")
	}

	id := uuid.NewString()
	path := filepath.Join(a.dir, id)

	f, err := os.OpenFile(path, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0o640)
	if err != nil {
		return "", apperrors.Wrap(apperrors.KindIOFailure, "create staging file", err)
	}
	if err := f.Close(); err != nil {
		return "", apperrors.Wrap(apperrors.KindIOFailure, "close staging file", err)
	}

	a.mu.Lock()
	a.sessions[id] = &session{fileName: fileName, path: path}
	a.mu.Unlock()

	a.log.Info("upload session initialized",
		zap.String("session_id", id),
		zap.String("file_name", fileName))
	return id, nil
}

// AppendChunk writes data to the end of the session's staging file. Chunks
// for one session are expected in send order; the assembler does not reorder
// or deduplicate. A failed write keeps the bytes already staged.
func (a *Assembler) AppendChunk(ctx context.Context, sessionID, fileName string, data []byte) error {
	s, err := a.lookup(sessionID, fileName)
	if err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	f, err := os.OpenFile(s.path, os.O_APPEND|os.O_WRONLY, 0o640)
	if err != nil {
		return apperrors.Wrap(apperrors.KindIOFailure, "open staging file", err)
	}
	n, werr := f.Write(data)
	cerr := f.Close()
	s.written += int64(n)
	if werr != nil {
		return apperrors.Wrap(apperrors.KindIOFailure, "write chunk", werr)
	}
	if cerr != nil {
		return apperrors.Wrap(apperrors.KindIOFailure, "close staging file", cerr)
	}
	return nil
}

// Written returns the byte count staged so far.
func (a *Assembler) Written(sessionID, fileName string) (int64, error) {
	s, err := a.lookup(sessionID, fileName)
	if err != nil {
		return 0, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.written, nil
}

// Staged opens the accumulated stream for commit. The caller owns closing
// the returned file. The session stays alive until Discard, so a failed
// store transfer can be retried without re-sending chunks.
func (a *Assembler) Staged(sessionID, fileName string) (*os.File, int64, error) {
	s, err := a.lookup(sessionID, fileName)
	if err != nil {
		return nil, 0, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	f, err := os.Open(s.path)
	if err != nil {
		return nil, 0, apperrors.Wrap(apperrors.KindIOFailure, "open staged stream", err)
	}
	info, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, 0, apperrors.Wrap(apperrors.KindIOFailure, "stat staged stream", err)
	}
	return f, info.Size(), nil
}

// Discard removes the staging file and forgets the session. Called after a
// successful store transfer, or on abandonment.
func (a *Assembler) Discard(sessionID string) error {
	a.mu.Lock()
	s, ok := a.sessions[sessionID]
	if ok {
		delete(a.sessions, sessionID)
	}
	a.mu.Unlock()
	if !ok {
		return apperrors.New(apperrors.KindNotFound, "upload session not found")
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if err := os.Remove(s.path); err != nil && !os.IsNotExist(err) {
		return apperrors.Wrap(apperrors.KindIOFailure, "remove staging file", err)
	}
	return nil
}

func (a *Assembler) lookup(sessionID, fileName string) (*session, error) {
	a.mu.RLock()
	s, ok := a.sessions[sessionID]
	a.mu.RUnlock()
	if !ok {
		return nil, apperrors.New(apperrors.KindNotFound, "upload session not found")
	}
	if s.fileName != fileName {
		return nil, apperrors.New(apperrors.KindValidation, "file name does not match session")
	}
	return s, nil
}
