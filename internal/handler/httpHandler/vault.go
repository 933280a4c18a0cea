package httpHandler

import (
	"net/http"

	"storage-service/internal/apperrors"

	"github.com/gin-gonic/gin"
)

type unlockRequest struct {
	PIN string `json:"pin"`
}

func (h *Handler) unlockVault(c *gin.Context) {
	who, ok := h.actor(c)
	if !ok {
		return
	}
	var req unlockRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.writeError(c, apperrors.New(apperrors.KindValidation, "invalid request body"))
		return
	}

	res, err := h.vault.Unlock(c.Request.Context(), who, req.PIN)
	if err != nil {
		h.writeError(c, err)
		return
	}
	if res.Setup {
		c.JSON(http.StatusOK, gin.H{"setup": true})
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}
