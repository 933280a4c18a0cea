package accessService_test

import (
	"testing"
	"time"

	"storage-service/internal/apperrors"
	"storage-service/internal/model/entry"
	"storage-service/internal/model/identity"
	"storage-service/internal/service/accessService"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

var (
	owner    = identity.Identity{ID: 1, Email: "owner@example.com"}
	stranger = identity.Identity{ID: 2, Email: "guest@example.com"}
)

func fixedClock(at time.Time) func() time.Time {
	return func() time.Time { return at }
}

func TestVisibilityForTab(t *testing.T) {
	e := accessService.NewEvaluator(nil)

	t.Run("default", func(t *testing.T) {
		vis, err := e.VisibilityForTab(entry.TabDefault, false)
		assert.NoError(t, err)
		assert.Equal(t, entry.VisibilityDefault, vis)
	})

	t.Run("starred", func(t *testing.T) {
		vis, err := e.VisibilityForTab(entry.TabStarred, false)
		assert.NoError(t, err)
		assert.Equal(t, entry.VisibilityStarred, vis)
	})

	t.Run("vault locked is forbidden, not empty", func(t *testing.T) {
		_, err := e.VisibilityForTab(entry.TabVault, false)
		assert.Equal(t, apperrors.KindForbidden, apperrors.KindOf(err))
	})

	t.Run("vault unlocked", func(t *testing.T) {
		vis, err := e.VisibilityForTab(entry.TabVault, true)
		assert.NoError(t, err)
		assert.Equal(t, entry.VisibilityVault, vis)
	})

	t.Run("unknown tab", func(t *testing.T) {
		_, err := e.VisibilityForTab(entry.Tab("recent"), true)
		assert.Equal(t, apperrors.KindValidation, apperrors.KindOf(err))
	})
}

func TestCanOpen_Owner(t *testing.T) {
	e := accessService.NewEvaluator(nil)

	plain := &entry.Entry{ID: uuid.New(), Kind: entry.KindFile, OwnerID: owner.ID}
	vaulted := &entry.Entry{ID: uuid.New(), Kind: entry.KindFile, OwnerID: owner.ID, Vault: true}

	assert.NoError(t, e.CanOpen(owner, plain, nil, false))

	err := e.CanOpen(owner, vaulted, nil, false)
	assert.Equal(t, apperrors.KindForbidden, apperrors.KindOf(err))

	assert.NoError(t, e.CanOpen(owner, vaulted, nil, true))
}

func TestCanOpen_ShareGrantExpiry(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	e := accessService.NewEvaluator(fixedClock(now))

	file := &entry.Entry{ID: uuid.New(), Kind: entry.KindFile, OwnerID: owner.ID}

	grant := func(exp *time.Time) []entry.ShareGrant {
		return []entry.ShareGrant{{FileID: file.ID, Email: stranger.Email, Role: entry.RoleViewer, ExpiresAt: exp}}
	}

	t.Run("future expiry permits", func(t *testing.T) {
		exp := now.Add(time.Hour)
		assert.NoError(t, e.CanOpen(stranger, file, grant(&exp), false))
	})

	t.Run("past expiry denies", func(t *testing.T) {
		exp := now.Add(-time.Second)
		err := e.CanOpen(stranger, file, grant(&exp), false)
		assert.Equal(t, apperrors.KindForbidden, apperrors.KindOf(err))
	})

	t.Run("nil expiry is permanent", func(t *testing.T) {
		assert.NoError(t, e.CanOpen(stranger, file, grant(nil), false))
	})

	t.Run("only the clock crosses the boundary", func(t *testing.T) {
		exp := now.Add(time.Minute)
		assert.NoError(t, e.CanOpen(stranger, file, grant(&exp), false))

		later := accessService.NewEvaluator(fixedClock(now.Add(2 * time.Minute)))
		err := later.CanOpen(stranger, file, grant(&exp), false)
		assert.Equal(t, apperrors.KindForbidden, apperrors.KindOf(err))
	})

	t.Run("grant for a different email denies", func(t *testing.T) {
		g := []entry.ShareGrant{{FileID: file.ID, Email: "other@example.com"}}
		err := e.CanOpen(stranger, file, g, false)
		assert.Equal(t, apperrors.KindForbidden, apperrors.KindOf(err))
	})
}

func TestCanOpen_FoldersNotShareable(t *testing.T) {
	e := accessService.NewEvaluator(nil)
	folder := &entry.Entry{ID: uuid.New(), Kind: entry.KindFolder, OwnerID: owner.ID}

	err := e.CanOpen(stranger, folder, nil, false)
	assert.Equal(t, apperrors.KindForbidden, apperrors.KindOf(err))
}

func TestRequireOwner(t *testing.T) {
	e := accessService.NewEvaluator(nil)
	ent := &entry.Entry{ID: uuid.New(), Kind: entry.KindFile, OwnerID: owner.ID}

	assert.NoError(t, e.RequireOwner(owner, ent))
	err := e.RequireOwner(stranger, ent)
	assert.Equal(t, apperrors.KindForbidden, apperrors.KindOf(err))
}
