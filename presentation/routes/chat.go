package routes

import (
	"github.com/gin-gonic/gin"

	"github.com/banterhq/banter/presentation/controllers/chat"
)

func ChatRoutes(router *gin.RouterGroup, controller chat.ChatController) {
	chats := router.Group("/chats")
	{
		chats.GET("", controller.GetAllChats)
		chats.GET("/users", controller.SearchAvailableUsers)
		chats.POST("/c/:receiverId", controller.CreateOrGetOneOnOneChat)
		chats.POST("/group", controller.CreateGroupChat)
		chats.GET("/group/:chatId", controller.GetGroupChatDetails)
		chats.PATCH("/group/:chatId", controller.RenameGroupChat)
		chats.DELETE("/group/:chatId", controller.DeleteGroupChat)
		chats.POST("/group/:chatId/:participantId", controller.AddParticipant)
		chats.DELETE("/group/:chatId/:participantId", controller.RemoveParticipant)
		chats.DELETE("/leave/:chatId", controller.LeaveGroupChat)
		chats.DELETE("/remove/:chatId", controller.DeleteOneOnOneChat)
	}
}
