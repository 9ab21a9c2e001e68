package repository

import (
	"auditlink_chat/internal/model"
)

// UserRepository is the user table access surface.
type UserRepository interface {
	FindByUuid(uuid string) (*model.UserInfo, error)
	FindByEmail(email string) (*model.UserInfo, error)
	CreateUser(user *model.UserInfo) error
	UpdateUserInfo(user *model.UserInfo) error
	TouchOnline(uuid string) error
	TouchOffline(uuid string) error
}

// ThreadRepository is the thread table access surface.
type ThreadRepository interface {
	FindByUuid(uuid string) (*model.Thread, error)
	FindByParticipant(userId string) ([]model.Thread, error)
	FindByParticipants(clientId, auditorId string) (*model.Thread, error)
	CreateThread(thread *model.Thread) error
	UpdateStatus(uuid string, status int8) error
}

// MessageRepository is the message table access surface.
type MessageRepository interface {
	// FindByThreadId returns the full ordered history of a thread.
	FindByThreadId(threadId string) ([]model.Message, error)
	// FindPageByThreadId returns one history page, cursor on the
	// snowflake id, results in ascending send order.
	FindPageByThreadId(threadId string, beforeUuid int64, limit int) ([]model.Message, error)
	Create(message *model.Message) error
}
