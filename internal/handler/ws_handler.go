package handler

import (
	"net/http"

	"auditlink_chat/internal/dao/mysql"
	"auditlink_chat/internal/service/chat"
	"auditlink_chat/pkg/util/jwt"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  2048,
	WriteBufferSize: 2048,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

type WsHandler struct {
	hub      *chat.Hub
	userRepo mysql.UserRepository
}

func NewWsHandler(hub *chat.Hub, userRepo mysql.UserRepository) *WsHandler {
	return &WsHandler{hub: hub, userRepo: userRepo}
}

// Connect handles GET /ws/chat?token=...
//
// Browsers cannot set headers on a websocket handshake, so the bearer
// token arrives as a query parameter. Authentication failures are
// answered before the upgrade, so a bad token never yields a
// half-open socket: the client sees the dial itself fail.
func (h *WsHandler) Connect(c *gin.Context) {
	token := c.Query("token")
	if token == "" {
		c.AbortWithStatus(http.StatusUnauthorized)
		return
	}
	claims, err := jwt.ParseToken(token)
	if err != nil || claims.Subject != "access_token" {
		c.AbortWithStatus(http.StatusUnauthorized)
		return
	}

	user, err := h.userRepo.FindByUuid(claims.UserID)
	if err != nil || user.Status != 0 {
		c.AbortWithStatus(http.StatusUnauthorized)
		return
	}

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		zap.L().Error("websocket upgrade failed", zap.Error(err))
		return
	}

	chat.NewUserConn(conn, user.Uuid, user.DisplayName, claims.Role, h.hub)
	zap.L().Info("websocket connected", zap.String("userId", user.Uuid))
}
