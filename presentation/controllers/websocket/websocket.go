package websocket

import (
	"net/http"

	"github.com/gin-gonic/gin"
	gorilla "github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/banterhq/banter/infrastructure/config"
	"github.com/banterhq/banter/infrastructure/logger"
	"github.com/banterhq/banter/infrastructure/token"
	"github.com/banterhq/banter/infrastructure/ws"
)

type WebSocketController interface {
	HandleConnection(ctx *gin.Context)
}

type webSocketController struct {
	router   *ws.Router
	tokens   *token.Manager
	upgrader gorilla.Upgrader
	logger   *logger.Logger
}

func NewWebSocketController(router *ws.Router, tokens *token.Manager, cfg *config.Config, logger *logger.Logger) WebSocketController {
	allowOrigins := cfg.Cors.AllowOrigins
	return &webSocketController{
		router: router,
		tokens: tokens,
		upgrader: gorilla.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				if allowOrigins == "*" {
					return true
				}
				origin := r.Header.Get("Origin")
				return origin == "" || origin == allowOrigins
			},
		},
		logger: logger,
	}
}

// HandleConnection upgrades the transport first and authenticates after, so
// credential failures can be reported over the socket itself. A failed
// handshake never touches the connection registry.
func (c *webSocketController) HandleConnection(ctx *gin.Context) {
	conn, err := c.upgrader.Upgrade(ctx.Writer, ctx.Request, nil)
	if err != nil {
		c.logger.Warn("websocket upgrade failed", zap.Error(err), zap.String("ip", ctx.ClientIP()))
		return
	}

	credential := token.FromRequest(ctx.Request)
	userID, err := c.tokens.VerifyAccessToken(credential)
	if err != nil {
		c.logger.Debug("websocket handshake rejected", zap.String("ip", ctx.ClientIP()))
		_ = conn.WriteJSON(ws.NewSocketError("Authentication failed"))
		_ = conn.Close()
		return
	}

	client := ws.NewClient(conn, userID)
	c.router.Attach(client)

	go client.WriteLoop()
	go client.ReadLoop(c.router)
}
