package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"studyhub/client/internal/models"
)

func (h HandlerSet) AdminDashboard(c *gin.Context) {
	ctx := c.Request.Context()

	docs, err := h.api.Documents(ctx)
	if err != nil {
		if h.sessionExpired(c, err) {
			return
		}
		h.log.Error().Err(err).Msg("admin document list failed")
		docs = []models.Document{}
	}

	pending := make([]models.Document, 0, len(docs))
	for _, doc := range docs {
		if !doc.IsApproved {
			pending = append(pending, doc)
		}
	}

	c.JSON(http.StatusOK, gin.H{
		"documents":       docs,
		"pendingApproval": pending,
	})
}

type lockRequest struct {
	IsLocked bool `json:"isLocked"`
}

func (h HandlerSet) AdminLockUser(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid user id"})
		return
	}

	var req lockRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := h.api.SetUserLock(c.Request.Context(), id, req.IsLocked); err != nil {
		if h.sessionExpired(c, err) {
			return
		}
		h.log.Error().Err(err).Int64("user_id", id).Bool("locked", req.IsLocked).
			Msg("set user lock failed")
		c.JSON(http.StatusBadGateway, gin.H{"error": msgFetchFailed})
		return
	}

	h.log.Info().Int64("user_id", id).Bool("locked", req.IsLocked).Msg("user lock updated")
	c.Status(http.StatusNoContent)
}
