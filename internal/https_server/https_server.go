// Package https_server builds the gin engine: middleware stack, CORS
// and route registration.
package https_server

import (
	"auditlink_chat/internal/config"
	"auditlink_chat/internal/handler"
	"auditlink_chat/internal/infrastructure/logger"
	"auditlink_chat/internal/infrastructure/middleware"
	"auditlink_chat/internal/router"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

// Init returns a configured engine. A blank engine is used instead of
// gin.Default so request logging and recovery go through zap.
func Init(handlers *handler.Handlers) *gin.Engine {
	conf := config.GetConfig()
	if conf.MainConfig.Mode == "release" {
		gin.SetMode(gin.ReleaseMode)
	}

	engine := gin.New()
	engine.Use(logger.GinLogger())
	engine.Use(logger.GinRecovery(true))
	engine.Use(middleware.Secure(&conf.SecureConfig))

	corsConfig := cors.DefaultConfig()
	corsConfig.AllowOrigins = []string{"*"}
	corsConfig.AllowMethods = []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"}
	corsConfig.AllowHeaders = []string{"Origin", "Content-Length", "Content-Type", "Authorization"}
	engine.Use(cors.New(corsConfig))

	rt := router.NewRouter(handlers)
	rt.RegisterRoutes(engine)

	return engine
}
