package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"studyhub/client/internal/apiclient"
	"studyhub/client/internal/guard"
	"studyhub/client/internal/models"
)

const msgFetchFailed = "Không thể tải dữ liệu. Vui lòng thử lại sau."
const msgLoginNeeded = "Vui lòng đăng nhập để xem nội dung này."

// sessionExpired implements the per-call-site 401 contract: tear the
// session down and send the caller to the sign-in view. Returns true when
// the response has been written.
func (h HandlerSet) sessionExpired(c *gin.Context, err error) bool {
	if !errors.Is(err, apiclient.ErrSessionExpired) {
		return false
	}

	h.log.Warn().Str("route", c.FullPath()).Msg("session expired mid-request")
	h.sessions.Logout(c.Request.Context())
	c.JSON(http.StatusUnauthorized, gin.H{
		"error":    "Phiên đăng nhập đã hết hạn. Vui lòng đăng nhập lại.",
		"redirect": guard.SignInPath,
	})
	return true
}

func (h HandlerSet) Home(c *gin.Context) {
	docs, err := h.api.Documents(c.Request.Context())
	if err != nil {
		if h.sessionExpired(c, err) {
			return
		}
		h.log.Error().Err(err).Msg("load documents failed")
		c.JSON(http.StatusOK, gin.H{"documents": []models.Document{}, "flash": msgFetchFailed})
		return
	}
	c.JSON(http.StatusOK, gin.H{"documents": docs})
}

func (h HandlerSet) DocumentView(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid document id"})
		return
	}

	ctx := c.Request.Context()
	doc, err := h.api.Document(ctx, id)
	if err != nil {
		if h.sessionExpired(c, err) {
			return
		}
		if errors.Is(err, apiclient.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Tài liệu không tồn tại."})
			return
		}
		h.log.Error().Err(err).Int64("document_id", id).Msg("load document failed")
		c.JSON(http.StatusOK, gin.H{"document": nil, "flash": msgFetchFailed})
		return
	}

	// Comment failures degrade to an empty thread, never a broken page.
	comments, err := h.api.DocumentComments(ctx, id)
	if err != nil {
		if h.sessionExpired(c, err) {
			return
		}
		h.log.Warn().Err(err).Int64("document_id", id).Msg("load comments failed")
		comments = []models.Comment{}
	}

	c.JSON(http.StatusOK, gin.H{"document": doc, "comments": comments})
}

func (h HandlerSet) ProfileView(c *gin.Context) {
	snap := h.sessions.Snapshot()
	user, err := h.api.Profile(c.Request.Context(), snap.User.ID)
	if err != nil {
		if h.sessionExpired(c, err) {
			return
		}
		h.log.Error().Err(err).Msg("load profile failed")
		// The cached session user still renders the screen.
		c.JSON(http.StatusOK, gin.H{"user": snap.User, "flash": msgFetchFailed})
		return
	}
	c.JSON(http.StatusOK, gin.H{"user": user})
}

func (h HandlerSet) NotificationsView(c *gin.Context) {
	snap := h.sessions.Snapshot()
	if !snap.Authenticated() {
		c.JSON(http.StatusOK, gin.H{"notifications": []models.Notification{}, "flash": msgLoginNeeded})
		return
	}

	items, err := h.api.Notifications(c.Request.Context(), snap.User.ID)
	if err != nil {
		if h.sessionExpired(c, err) {
			return
		}
		h.log.Error().Err(err).Msg("load notifications failed")
		c.JSON(http.StatusOK, gin.H{"notifications": []models.Notification{}, "flash": msgFetchFailed})
		return
	}
	c.JSON(http.StatusOK, gin.H{"notifications": items})
}

func (h HandlerSet) NotificationView(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid notification id"})
		return
	}

	item, err := h.api.Notification(c.Request.Context(), id)
	if err != nil {
		if h.sessionExpired(c, err) {
			return
		}
		if errors.Is(err, apiclient.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Thông báo không tồn tại."})
			return
		}
		h.log.Error().Err(err).Int64("notification_id", id).Msg("load notification failed")
		c.JSON(http.StatusOK, gin.H{"notification": nil, "flash": msgFetchFailed})
		return
	}
	c.JSON(http.StatusOK, gin.H{"notification": item})
}

func (h HandlerSet) FollowView(c *gin.Context) {
	snap := h.sessions.Snapshot()
	if !snap.Authenticated() {
		c.JSON(http.StatusOK, gin.H{"following": []models.FollowEntry{}, "flash": msgLoginNeeded})
		return
	}

	items, err := h.api.Following(c.Request.Context(), snap.User.ID)
	if err != nil {
		if h.sessionExpired(c, err) {
			return
		}
		h.log.Error().Err(err).Msg("load following failed")
		c.JSON(http.StatusOK, gin.H{"following": []models.FollowEntry{}, "flash": msgFetchFailed})
		return
	}
	c.JSON(http.StatusOK, gin.H{"following": items})
}

func (h HandlerSet) PostsView(c *gin.Context) {
	posts, err := h.api.Posts(c.Request.Context())
	if err != nil {
		if h.sessionExpired(c, err) {
			return
		}
		h.log.Error().Err(err).Msg("load posts failed")
		c.JSON(http.StatusOK, gin.H{"posts": []models.Post{}, "flash": msgFetchFailed})
		return
	}
	c.JSON(http.StatusOK, gin.H{"posts": posts})
}
