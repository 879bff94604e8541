package routes

import (
	"github.com/gin-gonic/gin"

	"github.com/banterhq/banter/presentation/controllers/websocket"
)

func WebsocketRoutes(router *gin.RouterGroup, controller websocket.WebSocketController) {
	router.GET("/ws", controller.HandleConnection)
}
