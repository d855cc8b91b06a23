package handlers

import (
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"studyhub/client/internal/apiclient"
	"studyhub/client/internal/bridge"
	"studyhub/client/internal/chat"
	"studyhub/client/internal/config"
	"studyhub/client/internal/guard"
	"studyhub/client/internal/provider"
	"studyhub/client/internal/session"
)

type HandlerSet struct {
	log      zerolog.Logger
	cfg      *config.AppConfig
	sessions *session.Manager
	provider provider.Provider
	resolver *bridge.Resolver
	api      *apiclient.Client
	widget   *chat.Widget
}

func NewHandlerSet(
	log zerolog.Logger,
	cfg *config.AppConfig,
	sessions *session.Manager,
	p provider.Provider,
	resolver *bridge.Resolver,
	api *apiclient.Client,
	widget *chat.Widget,
) HandlerSet {
	return HandlerSet{
		log:      log,
		cfg:      cfg,
		sessions: sessions,
		provider: p,
		resolver: resolver,
		api:      api,
		widget:   widget,
	}
}

func (h HandlerSet) Register(router *gin.RouterGroup) {
	router.GET("/healthz", h.Health)

	router.GET("/", h.Home)
	router.GET("/document/:id", h.DocumentView)
	router.GET("/posts", h.PostsView)
	router.GET("/notifications", h.NotificationsView)
	router.GET("/notifications/:id", h.NotificationView)
	router.GET("/follow", h.FollowView)

	router.GET("/login", h.LoginView)
	router.POST("/login", h.Login)
	router.POST("/login/federated", h.LoginFederated)
	router.POST("/register", h.RegisterAccount)
	router.POST("/logout", h.Logout)
	router.GET("/session", h.SessionView)

	authed := router.Group("/", guard.Middleware(h.sessions, guard.RequireAuth))
	authed.GET("/profile", h.ProfileView)

	admin := router.Group("/admin", guard.Middleware(h.sessions, guard.RequireAdmin))
	admin.GET("", h.AdminDashboard)
	admin.PUT("/users/:id/lock", h.AdminLockUser)

	upload := router.Group("/upload", guard.Middleware(h.sessions, guard.RequireNonAdmin))
	upload.GET("", h.UploadView)
	upload.POST("", h.UploadDocument)

	chatGroup := router.Group("/chat")
	chatGroup.GET("", h.ChatState)
	chatGroup.POST("/open", h.ChatOpen)
	chatGroup.POST("/close", h.ChatClose)
	chatGroup.POST("/send", h.ChatSend)
}
