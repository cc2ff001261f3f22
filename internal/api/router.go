package api

import (
	"time"

	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	echoswagger "github.com/swaggo/echo-swagger"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/pingloop/messenger/internal/api/handler"
	"github.com/pingloop/messenger/internal/api/middleware"
	"github.com/pingloop/messenger/internal/core/service"
	mongodb "github.com/pingloop/messenger/internal/infrastructure/db/mongo"
	"github.com/pingloop/messenger/internal/infrastructure/realtime"
	"github.com/pingloop/messenger/internal/infrastructure/storage"
)

// Deps carries the infrastructure the router wires handlers to.
type Deps struct {
	Mongo     *mongo.Database
	Redis     *redis.Client
	Hub       *realtime.Hub
	Pusher    service.Pusher
	JWTSecret string
	Logger    zerolog.Logger
}

// NewRouter builds and returns the Echo instance with all routes registered.
func NewRouter(deps Deps) (*echo.Echo, error) {
	e := echo.New()
	e.HideBanner = true
	e.Validator = handler.NewValidator()
	e.HTTPErrorHandler = NewHTTPErrorHandler(deps.Logger)

	// --- Global middleware ---
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.RequestID())
	e.Use(echomiddleware.Logger())
	e.Use(echoprometheus.NewMiddleware("messenger"))

	// --- Dependencies ---
	userRepo := mongodb.NewUserRepository(deps.Mongo)
	messageRepo := mongodb.NewMessageRepository(deps.Mongo)
	attachmentStore, err := storage.NewAttachmentStore(deps.Mongo)
	if err != nil {
		return nil, err
	}

	notificationService := service.NewNotificationService(userRepo, deps.Pusher, deps.Logger)
	socialService := service.NewSocialService(userRepo, notificationService, deps.Logger)
	sidebarService := service.NewSidebarService(userRepo, deps.Logger)
	messageService := service.NewMessageService(messageRepo, userRepo, attachmentStore, deps.Pusher, deps.Logger)
	authService := service.NewAuthService(userRepo, deps.JWTSecret, 24*time.Hour)

	authHandler := handler.NewAuthHandler(authService)
	socialHandler := handler.NewSocialHandler(socialService)
	chatHandler := handler.NewChatHandler(socialService, sidebarService)
	messageHandler := handler.NewMessageHandler(messageService, attachmentStore)
	notificationHandler := handler.NewNotificationHandler(notificationService)
	wsHandler := handler.NewWebsocketHandler(deps.Hub, deps.Logger)
	healthHandler := handler.NewHealthHandler(deps.Mongo, deps.Redis)

	authMiddleware := middleware.Auth(deps.JWTSecret)

	// --- Auth routes ---
	v1 := e.Group("/v1")
	v1.POST("/auth/register", authHandler.Register)
	v1.POST("/auth/login", authHandler.Login)

	// --- Authenticated routes ---
	secured := v1.Group("", authMiddleware)
	secured.GET("/users/search", socialHandler.SearchUsers)

	secured.POST("/friends/requests", socialHandler.SendFriendRequest)
	secured.POST("/friends/requests/:id/accept", socialHandler.AcceptFriendRequest)
	secured.POST("/friends/requests/:id/decline", socialHandler.DeclineFriendRequest)
	secured.DELETE("/friends/:id", socialHandler.RemoveFriend)

	secured.POST("/chats/:id/pin", chatHandler.PinChat)
	secured.POST("/chats/:id/unpin", chatHandler.UnpinChat)
	secured.GET("/chats/sidebar", chatHandler.Sidebar)

	secured.GET("/notifications", notificationHandler.ListNotifications)
	secured.POST("/notifications/read", notificationHandler.MarkAllRead)

	secured.POST("/messages", messageHandler.SendMessage)
	secured.GET("/messages/:peerID", messageHandler.GetConversation)
	secured.GET("/attachments/:id", messageHandler.DownloadAttachment)

	secured.GET("/ws", wsHandler.Connect)

	// --- Health probes (no auth required) ---
	e.GET("/health", healthHandler.Liveness)        // liveness  – is the process alive?
	e.GET("/health/ready", healthHandler.Readiness) // readiness – are dependencies up?

	// --- Operational endpoints ---
	e.GET("/metrics", echoprometheus.NewHandler())
	e.GET("/swagger/*", echoswagger.WrapHandler)

	return e, nil
}
