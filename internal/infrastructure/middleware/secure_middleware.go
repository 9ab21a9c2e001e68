package middleware

import (
	"auditlink_chat/internal/config"

	"github.com/gin-gonic/gin"
	"github.com/unrolled/secure"
	"go.uber.org/zap"
)

// Secure applies security headers and optional HTTPS redirection.
// Enable sslRedirect only when TLS terminates at this process rather
// than at a fronting proxy.
func Secure(cfg *config.SecureConfig) gin.HandlerFunc {
	middleware := secure.New(secure.Options{
		SSLRedirect:        cfg.SSLRedirect,
		SSLHost:            cfg.SSLHost,
		FrameDeny:          true,
		ContentTypeNosniff: true,
		BrowserXssFilter:   true,
	})

	return func(c *gin.Context) {
		if err := middleware.Process(c.Writer, c.Request); err != nil {
			zap.L().Warn("secure middleware rejected request", zap.Error(err))
			c.Abort()
			return
		}
		// Process may have answered with a redirect already.
		if status := c.Writer.Status(); status > 300 && status < 400 {
			c.Abort()
			return
		}
		c.Next()
	}
}
