package routes

import (
	"github.com/gin-gonic/gin"

	"github.com/banterhq/banter/presentation/controllers/auth"
)

func AuthRoutes(router *gin.RouterGroup, controller auth.AuthController, requireAuth gin.HandlerFunc) {
	users := router.Group("/auth")
	{
		users.POST("/register", controller.Register)
		users.POST("/login", controller.Login)
		users.POST("/refresh-token", controller.Refresh)
		users.POST("/logout", controller.Logout)
		users.GET("/me", requireAuth, controller.Me)
	}
}
