package vaultService

import (
	"context"
	"errors"
	"fmt"

	"storage-service/internal/apperrors"
	"storage-service/internal/model/identity"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

// PINRepository persists the optional per-account PIN hash.
type PINRepository interface {
	GetPINHash(ctx context.Context, accountID uint32) (string, error)
	SetPINHash(ctx context.Context, accountID uint32, hash string) error
}

type UnlockResult struct {
	// Setup is true when this call established the PIN instead of checking it.
	Setup bool
}

type VaultService struct {
	repo PINRepository
	log  *zap.Logger
}

func New(repo PINRepository, log *zap.Logger) *VaultService {
	return &VaultService{repo: repo, log: log}
}

// Unlock runs the two-branch PIN protocol: with no stored hash the submitted
// PIN becomes the account's PIN (first-use bootstrap) and the call reports
// setup; with a stored hash the candidate must match, else Forbidden. The
// bcrypt comparison is constant-time.
func (s *VaultService) Unlock(ctx context.Context, who identity.Identity, pin string) (UnlockResult, error) {
	if pin == "" {
		return UnlockResult{}, apperrors.New(apperrors.KindValidation, "pin is required")
	}

	hash, err := s.repo.GetPINHash(ctx, who.ID)
	if err != nil {
		return UnlockResult{}, fmt.Errorf("load pin hash: %w", err)
	}

	if hash == "" {
		hashed, err := bcrypt.GenerateFromPassword([]byte(pin), bcrypt.DefaultCost)
		if err != nil {
			return UnlockResult{}, fmt.Errorf("hash pin: %w", err)
		}
		if err := s.repo.SetPINHash(ctx, who.ID, string(hashed)); err != nil {
			return UnlockResult{}, fmt.Errorf("store pin hash: %w", err)
		}
		s.log.Info("vault pin established", zap.Uint32("account_id", who.ID))
		return UnlockResult{Setup: true}, nil
	}

	if err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(pin)); err != nil {
		if errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
			return UnlockResult{}, apperrors.New(apperrors.KindForbidden, "incorrect pin")
		}
		return UnlockResult{}, fmt.Errorf("compare pin hash: %w", err)
	}
	return UnlockResult{}, nil
}
