package routes

import (
	"github.com/gin-gonic/gin"

	"github.com/Xaeon-Innovation/Medflow-sub000/controllers"
)

func AuthRoutes(rg *gin.RouterGroup) {
	// Health check endpoint (no auth required)
	rg.GET("/health", controllers.HealthCheck)

	auth := rg.Group("/auth")
	{
		auth.POST("/login", controllers.Login)
		auth.POST("/refresh", controllers.Refresh)
	}
}
