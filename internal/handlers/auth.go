package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"studyhub/client/internal/bridge"
	"studyhub/client/internal/guard"
	"studyhub/client/internal/models"
	"studyhub/client/internal/provider"
)

type loginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

func (h HandlerSet) LoginView(c *gin.Context) {
	snap := h.sessions.Snapshot()
	if snap.Authenticated() {
		c.Redirect(http.StatusFound, guard.DefaultPath)
		return
	}
	c.JSON(http.StatusOK, gin.H{"view": "login"})
}

// Login drives the password pipeline: provider sign-in fires the
// session-change event, the session manager resolves it to completion, and
// by the time the provider call returns the session has settled one way or
// the other.
func (h HandlerSet) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if _, err := h.provider.SignInWithPassword(c.Request.Context(), req.Email, req.Password); err != nil {
		h.renderAuthError(c, err)
		return
	}

	h.renderSettledSession(c)
}

type federatedLoginRequest struct {
	Provider    string `json:"provider" binding:"required"`
	AccessToken string `json:"accessToken" binding:"required"`
}

func (h HandlerSet) LoginFederated(c *gin.Context) {
	var req federatedLoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	kind := models.ProviderKind(req.Provider)
	if !kind.Federated() {
		c.JSON(http.StatusBadRequest, gin.H{"error": "unsupported provider"})
		return
	}

	if _, err := h.provider.SignInWithFederated(c.Request.Context(), kind, req.AccessToken); err != nil {
		h.renderAuthError(c, err)
		return
	}

	h.renderSettledSession(c)
}

type registerRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=6"`
	FullName string `json:"fullName" binding:"required"`
}

// RegisterAccount creates the provider account, provisions the matching
// application account, then commits the session explicitly. Any failure
// after the provider sign-up tears everything down so no zombie session
// survives.
func (h HandlerSet) RegisterAccount(c *gin.Context) {
	var req registerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	ctx := c.Request.Context()
	identity, err := h.provider.SignUpWithPassword(ctx, req.Email, req.Password)
	if err != nil {
		h.renderAuthError(c, err)
		return
	}

	if _, err := h.api.CreateUser(ctx, req.Email, req.FullName, identity.UID); err != nil {
		h.log.Error().Err(err).Msg("account creation failed after provider sign-up")
		h.sessions.Logout(ctx)
		c.JSON(http.StatusBadGateway, gin.H{"error": bridge.UserMessage(bridge.ErrProvisioningFailed)})
		return
	}

	user, token, err := h.resolver.Resolve(ctx, identity)
	if err != nil {
		h.sessions.Logout(ctx)
		c.JSON(http.StatusUnauthorized, gin.H{"error": bridge.UserMessage(err)})
		return
	}

	h.sessions.Login(&user, token)
	c.JSON(http.StatusCreated, gin.H{"user": user})
}

func (h HandlerSet) Logout(c *gin.Context) {
	h.sessions.Logout(c.Request.Context())
	c.JSON(http.StatusOK, gin.H{"message": "Bạn đã đăng xuất."})
}

func (h HandlerSet) SessionView(c *gin.Context) {
	snap := h.sessions.Snapshot()
	c.JSON(http.StatusOK, gin.H{
		"authenticated": snap.Authenticated(),
		"loading":       snap.Loading,
		"user":          snap.User,
	})
}

func (h HandlerSet) renderSettledSession(c *gin.Context) {
	snap := h.sessions.Snapshot()
	if snap.Authenticated() {
		c.JSON(http.StatusOK, gin.H{"user": snap.User})
		return
	}

	err := h.sessions.LastError()
	status := http.StatusUnauthorized
	if errors.Is(err, bridge.ErrAccountLocked) {
		status = http.StatusForbidden
	}
	c.JSON(status, gin.H{"error": bridge.UserMessage(err)})
}

func (h HandlerSet) renderAuthError(c *gin.Context, err error) {
	var authErr *provider.AuthError
	if errors.As(err, &authErr) {
		status := http.StatusUnauthorized
		if authErr.Kind == provider.ErrKindRateLimited {
			status = http.StatusTooManyRequests
		}
		c.JSON(status, gin.H{"error": authErr.Message()})
		return
	}

	h.log.Error().Err(err).Msg("provider sign-in failed")
	c.JSON(http.StatusBadGateway, gin.H{"error": "Đăng nhập thất bại. Vui lòng thử lại."})
}
