package mysql

import (
	"auditlink_chat/internal/dao/mysql/repository"

	"gorm.io/gorm"
)

// Repositories aggregates all repository instances and is the data
// layer's dependency injection entry point.
type Repositories struct {
	db      *gorm.DB
	User    UserRepository
	Thread  ThreadRepository
	Message MessageRepository
}

func NewRepositories(db *gorm.DB) *Repositories {
	return &Repositories{
		db:      db,
		User:    repository.NewUserRepository(db),
		Thread:  repository.NewThreadRepository(db),
		Message: repository.NewMessageRepository(db),
	}
}

// Transaction runs fn inside a database transaction; any error rolls
// everything back.
func (r *Repositories) Transaction(fn func(txRepos *Repositories) error) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		return fn(NewRepositories(tx))
	})
}
