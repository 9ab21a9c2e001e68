// Package router registers the HTTP route groups.
package router

import (
	"auditlink_chat/internal/handler"

	"github.com/gin-gonic/gin"
)

// Router binds the handler aggregate to the gin engine.
type Router struct {
	handlers *handler.Handlers
}

func NewRouter(handlers *handler.Handlers) *Router {
	return &Router{handlers: handlers}
}

// RegisterRoutes wires every route group.
func (rt *Router) RegisterRoutes(r *gin.Engine) {
	rt.registerAuthRoutes(r)
	rt.registerThreadRoutes(r)
	rt.registerWebSocketRoutes(r)
}
