package accessService

import (
	"time"

	"storage-service/internal/apperrors"
	"storage-service/internal/model/entry"
	"storage-service/internal/model/identity"
)

// Evaluator decides, per request, whether an actor may see an entry or a
// listing. Nothing is cached between calls; vault-unlock state is a
// request-scoped signal supplied by the caller, never server-held session
// state. The clock is injected so expiry boundaries are deterministic under
// test.
type Evaluator struct {
	now func() time.Time
}

func NewEvaluator(now func() time.Time) *Evaluator {
	if now == nil {
		now = time.Now
	}
	return &Evaluator{now: now}
}

// VisibilityForTab resolves a listing tab into a catalog visibility filter.
// The vault tab demands the unlocked signal be explicitly true; without it
// the whole listing is Forbidden, never a filtered empty list.
func (e *Evaluator) VisibilityForTab(tab entry.Tab, vaultUnlocked bool) (entry.Visibility, error) {
	switch tab {
	case entry.TabStarred:
		return entry.VisibilityStarred, nil
	case entry.TabVault:
		if !vaultUnlocked {
			return 0, apperrors.New(apperrors.KindForbidden, "vault is locked")
		}
		return entry.VisibilityVault, nil
	case entry.TabDefault:
		return entry.VisibilityDefault, nil
	default:
		return 0, apperrors.New(apperrors.KindValidation, "unknown tab")
	}
}

// CanOpen gates the read path for a single entry. Ownership grants full
// access except for vault entries, which additionally require the unlocked
// signal. A non-owner may open a file through an active share grant; folder
// sharing does not exist.
func (e *Evaluator) CanOpen(actor identity.Identity, ent *entry.Entry, grants []entry.ShareGrant, vaultUnlocked bool) error {
	if ent.OwnerID == actor.ID {
		if ent.Vault && !vaultUnlocked {
			return apperrors.New(apperrors.KindForbidden, "vault is locked")
		}
		return nil
	}

	switch ent.Kind {
	case entry.KindFile:
		now := e.now()
		for _, g := range grants {
			// Editor is stored but grants the same read access as Viewer.
			if g.Email == actor.Email && g.ActiveAt(now) {
				return nil
			}
		}
		return apperrors.New(apperrors.KindForbidden, "no active share grant")
	case entry.KindFolder:
		return apperrors.New(apperrors.KindForbidden, "folders are not shareable")
	default:
		return apperrors.New(apperrors.KindValidation, "unknown entry kind")
	}
}

// RequireOwner gates mutations: only the owning account may modify an entry.
func (e *Evaluator) RequireOwner(actor identity.Identity, ent *entry.Entry) error {
	if ent.OwnerID != actor.ID {
		return apperrors.New(apperrors.KindForbidden, "not the owner")
	}
	return nil
}
