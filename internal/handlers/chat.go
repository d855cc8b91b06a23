package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"studyhub/client/internal/chat"
)

func (h HandlerSet) ChatState(c *gin.Context) {
	h.renderChat(c, h.widget.State())
}

func (h HandlerSet) ChatOpen(c *gin.Context) {
	h.renderChat(c, h.widget.Open())
}

func (h HandlerSet) ChatClose(c *gin.Context) {
	h.widget.Close()
	h.renderChat(c, chat.StateClosed)
}

type chatSendRequest struct {
	Message string `json:"message" binding:"required"`
}

func (h HandlerSet) ChatSend(c *gin.Context) {
	var req chatSendRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	state := h.widget.Send(c.Request.Context(), req.Message)
	if state == chat.StateClosed {
		c.JSON(http.StatusConflict, gin.H{"error": "chat is closed"})
		return
	}
	h.renderChat(c, state)
}

func (h HandlerSet) renderChat(c *gin.Context, state chat.State) {
	resp := gin.H{
		"state":      state,
		"transcript": h.widget.Transcript(),
	}
	if h.widget.QuickRepliesVisible() {
		resp["quickReplies"] = chat.QuickReplies
	}
	c.JSON(http.StatusOK, resp)
}
