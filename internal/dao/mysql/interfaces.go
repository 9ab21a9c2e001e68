// Package mysql provides the data access layer. Services depend on the
// repository interfaces, never on GORM directly; the implementations
// live under repository/.
package mysql

import (
	"auditlink_chat/internal/dao/mysql/repository"
)

// Aliases re-export the repository interfaces at the dao entry point so
// service-layer code imports one package for all data access types.
type (
	UserRepository    = repository.UserRepository
	ThreadRepository  = repository.ThreadRepository
	MessageRepository = repository.MessageRepository
)
