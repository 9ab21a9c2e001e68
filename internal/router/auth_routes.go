package router

import (
	"github.com/gin-gonic/gin"
)

func (rt *Router) registerAuthRoutes(r *gin.Engine) {
	auth := r.Group("/api/auth")
	{
		auth.POST("/register", rt.handlers.Auth.Register)
		auth.POST("/login", rt.handlers.Auth.Login)
		auth.POST("/refresh", rt.handlers.Auth.Refresh)
	}
}
