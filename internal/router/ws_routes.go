package router

import (
	"github.com/gin-gonic/gin"
)

func (rt *Router) registerWebSocketRoutes(r *gin.Engine) {
	// Token auth happens inside the handler, before the upgrade.
	r.GET("/ws/chat", rt.handlers.Ws.Connect)
}
