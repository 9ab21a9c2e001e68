package service

import (
	"auditlink_chat/internal/dao/mysql"
	myredis "auditlink_chat/internal/dao/redis"
	"auditlink_chat/internal/service/auth"
	"auditlink_chat/internal/service/message"
	"auditlink_chat/internal/service/thread"
)

// Services aggregates the business layer for injection into handlers.
type Services struct {
	Auth    AuthService
	Thread  ThreadService
	Message MessageService
}

func NewServices(repos *mysql.Repositories, cache myredis.AsyncCacheService) *Services {
	return &Services{
		Auth:    auth.NewAuthService(repos.User, cache),
		Thread:  thread.NewThreadService(repos.Thread, repos.User, cache),
		Message: message.NewMessageService(repos.Thread, repos.Message),
	}
}
