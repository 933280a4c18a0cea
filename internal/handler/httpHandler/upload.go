package httpHandler

import (
	"io"
	"net/http"

	"storage-service/internal/apperrors"
	"storage-service/internal/service/uploadService"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type initializeRequest struct {
	FileName string `json:"fileName"`
}

func (h *Handler) initializeUpload(c *gin.Context) {
	if _, ok := h.actor(c); !ok {
		return
	}
	var req initializeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.writeError(c, apperrors.New(apperrors.KindValidation, "invalid request body"))
		return
	}

	sessionID, err := h.uploads.Initialize(c.Request.Context(), req.FileName)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"sessionId": sessionID})
}

// appendChunk accepts one multipart chunk: form fields sessionId and
// fileName, plus the bytes in the "chunk" file part. Chunks for a session
// must be sent in order, each acknowledged before the next.
func (h *Handler) appendChunk(c *gin.Context) {
	if _, ok := h.actor(c); !ok {
		return
	}

	sessionID := c.PostForm("sessionId")
	fileName := c.PostForm("fileName")
	if sessionID == "" || fileName == "" {
		h.writeError(c, apperrors.New(apperrors.KindValidation, "sessionId and fileName are required"))
		return
	}

	fileHeader, err := c.FormFile("chunk")
	if err != nil {
		h.writeError(c, apperrors.New(apperrors.KindValidation, "chunk part is required"))
		return
	}
	part, err := fileHeader.Open()
	if err != nil {
		h.writeError(c, apperrors.Wrap(apperrors.KindIOFailure, "open chunk part", err))
		return
	}
	defer part.Close()
	data, err := io.ReadAll(part)
	if err != nil {
		h.writeError(c, apperrors.Wrap(apperrors.KindIOFailure, "read chunk part", err))
		return
	}

	if err := h.uploads.AppendChunk(c.Request.Context(), sessionID, fileName, data); err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"received": len(data)})
}

type completeRequest struct {
	SessionID    string  `json:"sessionId"`
	FileName     string  `json:"fileName"`
	FolderID     *string `json:"folderId"`
	IsVault      bool    `json:"isVault"`
	ContentType  string  `json:"contentType"`
	DeclaredSize int64   `json:"declaredSize"`
}

func (h *Handler) completeUpload(c *gin.Context) {
	who, ok := h.actor(c)
	if !ok {
		return
	}
	var req completeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.writeError(c, apperrors.New(apperrors.KindValidation, "invalid request body"))
		return
	}
	if req.SessionID == "" || req.FileName == "" {
		h.writeError(c, apperrors.New(apperrors.KindValidation, "sessionId and fileName are required"))
		return
	}

	params := uploadService.CompleteParams{
		SessionID:    req.SessionID,
		FileName:     req.FileName,
		IsVault:      req.IsVault,
		ContentType:  req.ContentType,
		DeclaredSize: req.DeclaredSize,
	}
	if req.FolderID != nil && *req.FolderID != "" {
		folderID, err := uuid.Parse(*req.FolderID)
		if err != nil {
			h.writeError(c, apperrors.New(apperrors.KindValidation, "invalid folderId"))
			return
		}
		params.FolderID = &folderID
	}

	e, err := h.uploads.Complete(c.Request.Context(), who, params)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, e)
}

func (h *Handler) abandonUpload(c *gin.Context) {
	if _, ok := h.actor(c); !ok {
		return
	}
	if err := h.uploads.Abandon(c.Request.Context(), c.Param("sessionId")); err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"abandoned": true})
}
