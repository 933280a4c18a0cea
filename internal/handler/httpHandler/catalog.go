package httpHandler

import (
	"net/http"

	"storage-service/internal/apperrors"
	"storage-service/internal/model/entry"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

func (h *Handler) contents(c *gin.Context) {
	who, ok := h.actor(c)
	if !ok {
		return
	}

	var parentID *uuid.UUID
	if raw := c.Query("folderId"); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			h.writeError(c, apperrors.New(apperrors.KindValidation, "invalid folderId"))
			return
		}
		parentID = &id
	}

	tab := entry.Tab(c.Query("tab"))
	vaultUnlocked := c.Query("vaultUnlocked") == "true"

	folders, files, err := h.catalog.Contents(c.Request.Context(), who, parentID, tab, vaultUnlocked)
	if err != nil {
		h.writeError(c, err)
		return
	}
	if folders == nil {
		folders = []*entry.Entry{}
	}
	if files == nil {
		files = []*entry.Entry{}
	}
	c.JSON(http.StatusOK, gin.H{"folders": folders, "files": files})
}

type createFolderRequest struct {
	Name     string  `json:"name"`
	ParentID *string `json:"parentId"`
}

func (h *Handler) createFolder(c *gin.Context) {
	who, ok := h.actor(c)
	if !ok {
		return
	}
	var req createFolderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.writeError(c, apperrors.New(apperrors.KindValidation, "invalid request body"))
		return
	}

	var parentID *uuid.UUID
	if req.ParentID != nil && *req.ParentID != "" {
		id, err := uuid.Parse(*req.ParentID)
		if err != nil {
			h.writeError(c, apperrors.New(apperrors.KindValidation, "invalid parentId"))
			return
		}
		parentID = &id
	}

	folder, err := h.catalog.CreateFolder(c.Request.Context(), who, req.Name, parentID)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, folder)
}

// entryID parses the :id param and validates the :kind param when present.
func (h *Handler) entryID(c *gin.Context) (uuid.UUID, bool) {
	if kind := c.Param("kind"); kind != "" && kind != "file" && kind != "folder" {
		h.writeError(c, apperrors.New(apperrors.KindValidation, "kind must be file or folder"))
		return uuid.Nil, false
	}
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.writeError(c, apperrors.New(apperrors.KindValidation, "invalid entry id"))
		return uuid.Nil, false
	}
	return id, true
}

func (h *Handler) toggleStar(c *gin.Context) {
	who, ok := h.actor(c)
	if !ok {
		return
	}
	id, ok := h.entryID(c)
	if !ok {
		return
	}
	starred, err := h.catalog.ToggleStar(c.Request.Context(), who, id)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"starred": starred})
}

type flagRequest struct {
	Value bool `json:"value"`
}

func (h *Handler) setVaultFlag(c *gin.Context) {
	who, ok := h.actor(c)
	if !ok {
		return
	}
	id, ok := h.entryID(c)
	if !ok {
		return
	}
	var req flagRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.writeError(c, apperrors.New(apperrors.KindValidation, "invalid request body"))
		return
	}
	if err := h.catalog.SetVaultFlag(c.Request.Context(), who, id, req.Value); err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"vault": req.Value})
}

func (h *Handler) setTrash(c *gin.Context) {
	who, ok := h.actor(c)
	if !ok {
		return
	}
	id, ok := h.entryID(c)
	if !ok {
		return
	}
	var req flagRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.writeError(c, apperrors.New(apperrors.KindValidation, "invalid request body"))
		return
	}
	if err := h.catalog.SetTrash(c.Request.Context(), who, id, req.Value); err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"trashed": req.Value})
}

type moveRequest struct {
	FileID   string  `json:"fileId"`
	TargetID *string `json:"targetId"`
}

func (h *Handler) move(c *gin.Context) {
	who, ok := h.actor(c)
	if !ok {
		return
	}
	var req moveRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.writeError(c, apperrors.New(apperrors.KindValidation, "invalid request body"))
		return
	}
	fileID, err := uuid.Parse(req.FileID)
	if err != nil {
		h.writeError(c, apperrors.New(apperrors.KindValidation, "invalid fileId"))
		return
	}

	var targetID *uuid.UUID
	if req.TargetID != nil && *req.TargetID != "" {
		id, err := uuid.Parse(*req.TargetID)
		if err != nil {
			h.writeError(c, apperrors.New(apperrors.KindValidation, "invalid targetId"))
			return
		}
		targetID = &id
	}

	if err := h.catalog.Move(c.Request.Context(), who, fileID, targetID); err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"moved": true})
}

type renameRequest struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

func (h *Handler) rename(c *gin.Context) {
	who, ok := h.actor(c)
	if !ok {
		return
	}
	var req renameRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.writeError(c, apperrors.New(apperrors.KindValidation, "invalid request body"))
		return
	}
	id, err := uuid.Parse(req.ID)
	if err != nil {
		h.writeError(c, apperrors.New(apperrors.KindValidation, "invalid entry id"))
		return
	}
	if err := h.catalog.Rename(c.Request.Context(), who, id, req.Name); err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"renamed": true})
}

func (h *Handler) deleteEntry(c *gin.Context) {
	who, ok := h.actor(c)
	if !ok {
		return
	}
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.writeError(c, apperrors.New(apperrors.KindValidation, "invalid entry id"))
		return
	}
	if err := h.catalog.Delete(c.Request.Context(), who, id); err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"deleted": true})
}

type shareRequest struct {
	FileID string `json:"fileId"`
	Email  string `json:"email"`
	Role   string `json:"role"`
	Hours  int    `json:"hours"`
}

func (h *Handler) share(c *gin.Context) {
	who, ok := h.actor(c)
	if !ok {
		return
	}
	var req shareRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.writeError(c, apperrors.New(apperrors.KindValidation, "invalid request body"))
		return
	}
	fileID, err := uuid.Parse(req.FileID)
	if err != nil {
		h.writeError(c, apperrors.New(apperrors.KindValidation, "invalid fileId"))
		return
	}

	grant, err := h.catalog.Share(c.Request.Context(), who, fileID, req.Email, entry.Role(req.Role), req.Hours)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, grant)
}

func (h *Handler) preview(c *gin.Context) {
	who, ok := h.actor(c)
	if !ok {
		return
	}
	fileID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.writeError(c, apperrors.New(apperrors.KindValidation, "invalid file id"))
		return
	}
	vaultUnlocked := c.Query("vaultUnlocked") == "true"

	url, err := h.catalog.Preview(c.Request.Context(), who, fileID, vaultUnlocked)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"url": url})
}

func (h *Handler) storage(c *gin.Context) {
	who, ok := h.actor(c)
	if !ok {
		return
	}
	used, limit, err := h.catalog.StorageUsage(c.Request.Context(), who)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"used": used, "limit": limit})
}
