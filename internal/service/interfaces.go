// Package service defines the business layer interfaces consumed by
// the handler layer, and the aggregate that wires them up.
package service

import (
	"auditlink_chat/internal/dto/request"
	"auditlink_chat/internal/dto/respond"
)

// AuthService handles accounts and token lifecycle.
type AuthService interface {
	Register(req request.RegisterRequest) (*respond.LoginRespond, error)
	Login(req request.LoginRequest) (*respond.LoginRespond, error)
	Refresh(req request.RefreshTokenRequest) (*respond.LoginRespond, error)
}

// ThreadService manages conversation scopes.
type ThreadService interface {
	Create(clientId string, req request.CreateThreadRequest) (*respond.ThreadRespond, error)
	List(userId string) ([]respond.ThreadRespond, error)
	Get(userId, threadId string) (*respond.ThreadRespond, error)
}

// MessageService serves persisted history over REST.
type MessageService interface {
	HistoryPage(userId, threadId string, req request.HistoryPageRequest) (*respond.HistoryPageRespond, error)
}
