package httpHandler

import (
	"net/http"

	"storage-service/internal/apperrors"
	"storage-service/internal/model/identity"
	"storage-service/internal/service/catalogService"
	"storage-service/internal/service/uploadService"
	"storage-service/internal/service/vaultService"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Handler exposes the core over HTTP. Every route runs behind the auth
// middleware, so a verified identity is always present in the request
// context; handlers pass it into services explicitly.
type Handler struct {
	uploads *uploadService.UploadService
	catalog *catalogService.CatalogService
	vault   *vaultService.VaultService
	log     *zap.Logger
}

func New(uploads *uploadService.UploadService, catalog *catalogService.CatalogService,
	vault *vaultService.VaultService, log *zap.Logger) *Handler {
	return &Handler{uploads: uploads, catalog: catalog, vault: vault, log: log}
}

func (h *Handler) Register(api *gin.RouterGroup) {
	api.POST("/upload/initialize", h.initializeUpload)
	api.POST("/upload/chunk", h.appendChunk)
	api.POST("/upload/complete", h.completeUpload)
	api.DELETE("/upload/:sessionId", h.abandonUpload)

	api.GET("/contents", h.contents)
	api.POST("/folder", h.createFolder)
	api.PATCH("/star/:kind/:id", h.toggleStar)
	api.PATCH("/vault-flag/:kind/:id", h.setVaultFlag)
	api.PATCH("/trash/:kind/:id", h.setTrash)
	api.PATCH("/move", h.move)
	api.PATCH("/rename", h.rename)
	api.DELETE("/delete/:id", h.deleteEntry)

	api.POST("/share", h.share)
	api.GET("/preview/:id", h.preview)
	api.GET("/storage", h.storage)

	api.POST("/vault/unlock", h.unlockVault)
}

func (h *Handler) actor(c *gin.Context) (identity.Identity, bool) {
	who, ok := identity.FromContext(c.Request.Context())
	if !ok {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
			"error": gin.H{"kind": apperrors.KindUnauthorized, "message": "identity missing"},
		})
	}
	return who, ok
}

// writeError maps the error taxonomy onto HTTP statuses. Unclassified errors
// become an opaque 500: no stack traces or internals cross the boundary.
func (h *Handler) writeError(c *gin.Context, err error) {
	kind := apperrors.KindOf(err)
	status, message := http.StatusInternalServerError, "internal error"

	switch kind {
	case apperrors.KindUnauthorized:
		status, message = http.StatusUnauthorized, err.Error()
	case apperrors.KindForbidden:
		status, message = http.StatusForbidden, err.Error()
	case apperrors.KindNotFound:
		status, message = http.StatusNotFound, err.Error()
	case apperrors.KindConflict:
		status, message = http.StatusConflict, err.Error()
	case apperrors.KindValidation:
		status, message = http.StatusBadRequest, err.Error()
	case apperrors.KindIOFailure:
		// retryable: staged bytes are intact, the client may re-attempt
		status, message = http.StatusServiceUnavailable, "storage i/o failure, retry"
	default:
		h.log.Error("unhandled error", zap.String("path", c.FullPath()), zap.Error(err))
	}

	c.JSON(status, gin.H{"error": gin.H{"kind": kind, "message": message}})
}
