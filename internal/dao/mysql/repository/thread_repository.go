package repository

import (
	"auditlink_chat/internal/model"

	"gorm.io/gorm"
)

type threadRepository struct {
	db *gorm.DB
}

func NewThreadRepository(db *gorm.DB) ThreadRepository {
	return &threadRepository{db: db}
}

func (r *threadRepository) FindByUuid(uuid string) (*model.Thread, error) {
	var thread model.Thread
	if err := r.db.Where("uuid = ?", uuid).First(&thread).Error; err != nil {
		return nil, wrapDBErrorf(err, "find thread uuid=%s", uuid)
	}
	return &thread, nil
}

func (r *threadRepository) FindByParticipant(userId string) ([]model.Thread, error) {
	var threads []model.Thread
	err := r.db.Where("client_id = ? OR auditor_id = ?", userId, userId).
		Order("updated_at DESC").Find(&threads).Error
	if err != nil {
		return nil, wrapDBErrorf(err, "find threads participant=%s", userId)
	}
	return threads, nil
}

func (r *threadRepository) FindByParticipants(clientId, auditorId string) (*model.Thread, error) {
	var thread model.Thread
	err := r.db.Where("client_id = ? AND auditor_id = ?", clientId, auditorId).
		First(&thread).Error
	if err != nil {
		return nil, wrapDBErrorf(err, "find thread client=%s auditor=%s", clientId, auditorId)
	}
	return &thread, nil
}

func (r *threadRepository) CreateThread(thread *model.Thread) error {
	if err := r.db.Create(thread).Error; err != nil {
		return wrapDBError(err, "create thread")
	}
	return nil
}

func (r *threadRepository) UpdateStatus(uuid string, status int8) error {
	err := r.db.Model(&model.Thread{}).Where("uuid = ?", uuid).
		Update("status", status).Error
	return wrapDBErrorf(err, "update thread status uuid=%s", uuid)
}
