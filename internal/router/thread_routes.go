package router

import (
	"auditlink_chat/internal/infrastructure/middleware"

	"github.com/gin-gonic/gin"
)

func (rt *Router) registerThreadRoutes(r *gin.Engine) {
	threads := r.Group("/api/threads", middleware.JWTAuth())
	{
		threads.POST("", rt.handlers.Thread.Create)
		threads.GET("", rt.handlers.Thread.List)
		threads.GET("/:thread_id", rt.handlers.Thread.Get)
		threads.GET("/:thread_id/messages", rt.handlers.Message.HistoryPage)
	}
}
