package repository

import (
	"time"

	"auditlink_chat/internal/model"

	"gorm.io/gorm"
)

type userRepository struct {
	db *gorm.DB
}

func NewUserRepository(db *gorm.DB) UserRepository {
	return &userRepository{db: db}
}

func (r *userRepository) FindByUuid(uuid string) (*model.UserInfo, error) {
	var user model.UserInfo
	if err := r.db.Where("uuid = ?", uuid).First(&user).Error; err != nil {
		return nil, wrapDBErrorf(err, "find user uuid=%s", uuid)
	}
	return &user, nil
}

func (r *userRepository) FindByEmail(email string) (*model.UserInfo, error) {
	var user model.UserInfo
	if err := r.db.Where("email = ?", email).First(&user).Error; err != nil {
		return nil, wrapDBErrorf(err, "find user email=%s", email)
	}
	return &user, nil
}

func (r *userRepository) CreateUser(user *model.UserInfo) error {
	if err := r.db.Create(user).Error; err != nil {
		return wrapDBError(err, "create user")
	}
	return nil
}

func (r *userRepository) UpdateUserInfo(user *model.UserInfo) error {
	if err := r.db.Save(user).Error; err != nil {
		return wrapDBErrorf(err, "update user uuid=%s", user.Uuid)
	}
	return nil
}

func (r *userRepository) TouchOnline(uuid string) error {
	err := r.db.Model(&model.UserInfo{}).Where("uuid = ?", uuid).
		Update("last_online_at", time.Now()).Error
	return wrapDBErrorf(err, "touch online uuid=%s", uuid)
}

func (r *userRepository) TouchOffline(uuid string) error {
	err := r.db.Model(&model.UserInfo{}).Where("uuid = ?", uuid).
		Update("last_offline_at", time.Now()).Error
	return wrapDBErrorf(err, "touch offline uuid=%s", uuid)
}
