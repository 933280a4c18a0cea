package entry

import (
	"time"

	"github.com/google/uuid"
)

// Kind tags the two catalog variants. Every operation over entries switches
// exhaustively on it.
type Kind string

const (
	KindFolder Kind = "folder"
	KindFile   Kind = "file"
)

type Role string

const (
	RoleViewer Role = "viewer"
	RoleEditor Role = "editor"
)

// Tab selects which partition of an owner's tree a listing shows.
type Tab string

const (
	TabDefault Tab = ""
	TabStarred Tab = "starred"
	TabVault   Tab = "vault"
)

// Visibility is the catalog-level filter the access evaluator resolves a Tab
// into once the request is allowed to see it.
type Visibility int

const (
	VisibilityDefault Visibility = iota
	VisibilityStarred
	VisibilityVault
)

// Entry is a File or Folder record. Folders never carry a storage binding;
// files never have children.
type Entry struct {
	ID       uuid.UUID  `json:"id"`
	Kind     Kind       `json:"kind"`
	Name     string     `json:"name"`
	OwnerID  uint32     `json:"owner_id"`
	ParentID *uuid.UUID `json:"parent_id,omitempty"`
	Starred  bool       `json:"starred"`
	Vault    bool       `json:"vault"`
	Trashed  bool       `json:"trashed"`

	// file-only fields, zero for folders
	Size        int64  `json:"size,omitempty"`
	ContentType string `json:"content_type,omitempty"`
	StorageKey  string `json:"-"`

	CreatedAt time.Time `json:"created_at"`
}

func (e *Entry) IsFolder() bool { return e.Kind == KindFolder }
func (e *Entry) IsFile() bool   { return e.Kind == KindFile }

// ShareGrant is a read permission on a single file for a non-owner email.
// A nil ExpiresAt means the grant is permanent. Expired grants are kept in
// storage and treated as inactive by the access evaluator.
type ShareGrant struct {
	FileID    uuid.UUID  `json:"file_id"`
	Email     string     `json:"email"`
	Role      Role       `json:"role"`
	ExpiresAt *time.Time `json:"expires_at,omitempty"`
	CreatedAt time.Time  `json:"created_at"`
}

// ActiveAt reports whether the grant permits access at the given instant.
func (g ShareGrant) ActiveAt(now time.Time) bool {
	return g.ExpiresAt == nil || g.ExpiresAt.After(now)
}
