// Package handler contains the gin HTTP handlers and the websocket
// upgrade endpoint.
package handler

import (
	"auditlink_chat/internal/dao/mysql"
	"auditlink_chat/internal/service"
	"auditlink_chat/internal/service/chat"
)

// Handlers aggregates every handler for injection into the router.
type Handlers struct {
	Auth    *AuthHandler
	Thread  *ThreadHandler
	Message *MessageHandler
	Ws      *WsHandler
}

func NewHandlers(svcs *service.Services, hub *chat.Hub, userRepo mysql.UserRepository) *Handlers {
	return &Handlers{
		Auth:    NewAuthHandler(svcs.Auth),
		Thread:  NewThreadHandler(svcs.Thread),
		Message: NewMessageHandler(svcs.Message),
		Ws:      NewWsHandler(hub, userRepo),
	}
}
