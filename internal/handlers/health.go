package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

func (h HandlerSet) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok", "environment": h.cfg.Environment})
}
