package routes

import (
	"github.com/gin-gonic/gin"

	"github.com/banterhq/banter/presentation/controllers/message"
)

func MessageRoutes(router *gin.RouterGroup, controller message.MessageController, sendLimiter gin.HandlerFunc) {
	messages := router.Group("/messages")
	{
		messages.GET("/:chatId", controller.GetMessages)
		messages.POST("/:chatId", sendLimiter, controller.SendMessage)
		messages.DELETE("/:chatId/:messageId", controller.DeleteMessage)
	}
}
