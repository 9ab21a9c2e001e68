package model

import (
	"database/sql"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// User roles on the marketplace. A thread always pairs one client with
// one auditor.
const (
	RoleClient  = "client"
	RoleAuditor = "auditor"
)

// UserInfo is a marketplace participant.
type UserInfo struct {
	gorm.Model

	// Uuid is the public identifier, "U" + snowflake string.
	Uuid string `gorm:"column:uuid;uniqueIndex;type:char(24);not null"`

	DisplayName string `gorm:"column:display_name;type:varchar(60);not null"`

	Email string `gorm:"column:email;uniqueIndex;type:varchar(120);not null"`

	// Role is "client" or "auditor"; carried into JWT claims.
	Role string `gorm:"column:role;type:varchar(16);not null"`

	// Password stores the bcrypt hash, never plaintext.
	Password string `gorm:"column:password;type:varchar(100);not null"`

	LastOnlineAt  sql.NullTime `gorm:"column:last_online_at;type:datetime"`
	LastOfflineAt sql.NullTime `gorm:"column:last_offline_at;type:datetime"`

	// Status: 0 active, 1 disabled.
	Status int8 `gorm:"column:status;index;not null"`

	// RawPassword receives the plaintext from the API layer and is
	// hashed in BeforeSave. Never persisted or serialised.
	RawPassword string `gorm:"-" json:"-"`
}

func (UserInfo) TableName() string {
	return "user_info"
}

// BeforeSave hashes RawPassword into Password when one was provided.
func (u *UserInfo) BeforeSave(tx *gorm.DB) (err error) {
	if u.RawPassword != "" {
		hash, err := bcrypt.GenerateFromPassword([]byte(u.RawPassword), bcrypt.DefaultCost)
		if err != nil {
			return err
		}
		u.Password = string(hash)
		u.RawPassword = ""
	}
	return nil
}

// CheckPassword verifies a login attempt against the stored hash.
func (u *UserInfo) CheckPassword(plaintext string) bool {
	err := bcrypt.CompareHashAndPassword([]byte(u.Password), []byte(plaintext))
	return err == nil
}
