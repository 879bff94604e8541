package dependency

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"go.uber.org/zap"

	"github.com/banterhq/banter/infrastructure/cache"
	"github.com/banterhq/banter/infrastructure/persistence/database"
	authCtrl "github.com/banterhq/banter/presentation/controllers/auth"
	chatCtrl "github.com/banterhq/banter/presentation/controllers/chat"
	messageCtrl "github.com/banterhq/banter/presentation/controllers/message"
	wsCtrl "github.com/banterhq/banter/presentation/controllers/websocket"
	"github.com/banterhq/banter/presentation/middlewares"
	"github.com/banterhq/banter/presentation/routes"
)

func (c *Container) initControllers() {
	c.AuthController = authCtrl.NewAuthController(c.AuthUC, c.Tokens, c.Config)
	c.ChatController = chatCtrl.NewChatController(c.ChatUC)
	c.MessageController = messageCtrl.NewMessageController(c.MessageUC)
	c.WebsocketController = wsCtrl.NewWebSocketController(c.WSRouter, c.Tokens, c.Config, c.Logger)

	c.Logger.Info("Controllers initialized successfully")
}

func (c *Container) SetupRouter() *gin.Engine {
	switch c.Config.Server.RunMode {
	case "release", "production":
		gin.SetMode(gin.ReleaseMode)
	case "test":
		gin.SetMode(gin.TestMode)
	default:
		gin.SetMode(gin.DebugMode)
	}

	binding.Validator = new(middlewares.DefaultValidator)

	router := gin.New()
	router.Use(gin.Recovery())

	router.Use(middlewares.GinLogger(c.Logger, c.Metrics))
	router.Use(middlewares.CorsMiddleware(c.Config))

	router.GET("/health", c.healthCheckHandler)
	router.GET("/metrics", c.Metrics.Handler())

	c.registerAPIRoutes(router)

	c.Logger.Info("Router configured successfully")

	return router
}

func (c *Container) registerAPIRoutes(router *gin.Engine) {
	requireAuth := middlewares.AuthMiddleware(c.AuthUC, c.Tokens, c.Logger)

	v1 := router.Group("/api/v1")
	{
		// Resolved identity lets the rate limiter key on the user instead
		// of the client address.
		v1.Use(middlewares.OptionalAuth(c.AuthUC, c.Tokens))
		v1.Use(middlewares.RateLimiterMiddleware(cache.GetRedis(), c.Logger, middlewares.ModerateRateLimiterConfig()))

		routes.AuthRoutes(v1, c.AuthController, requireAuth)

		protected := v1.Group("")
		protected.Use(requireAuth)
		{
			routes.ChatRoutes(protected, c.ChatController)
			routes.MessageRoutes(protected, c.MessageController,
				middlewares.RateLimiterMiddleware(cache.GetRedis(), c.Logger, middlewares.MessageSendingRateLimiterConfig()))
		}

		// The socket authenticates after the upgrade, not through the
		// middleware chain.
		routes.WebsocketRoutes(v1, c.WebsocketController)
	}
}

func (c *Container) healthCheckHandler(ctx *gin.Context) {
	ctx.JSON(200, gin.H{
		"status": "healthy",
		"time":   time.Now().Format(time.RFC3339),
	})
}

func (c *Container) Shutdown() error {
	c.Logger.Info("Shutting down dependencies...")

	c.WSRegistry.DisconnectAll()

	cache.CloseRedis()

	if err := c.Logger.Log.Sync(); err != nil {
		c.Logger.Error("failed to sync logger", zap.Error(err))
	}

	c.Logger.Info("Dependencies shut down successfully")

	database.CloseDb()

	return nil
}
