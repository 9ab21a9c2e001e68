package repository

import (
	"auditlink_chat/internal/model"

	"gorm.io/gorm"
)

type messageRepository struct {
	db *gorm.DB
}

func NewMessageRepository(db *gorm.DB) MessageRepository {
	return &messageRepository{db: db}
}

func (r *messageRepository) FindByThreadId(threadId string) ([]model.Message, error) {
	var messages []model.Message
	err := r.db.Where("thread_id = ?", threadId).
		Order("sent_at ASC, uuid ASC").Find(&messages).Error
	if err != nil {
		return nil, wrapDBErrorf(err, "find messages thread_id=%s", threadId)
	}
	return messages, nil
}

func (r *messageRepository) FindPageByThreadId(threadId string, beforeUuid int64, limit int) ([]model.Message, error) {
	q := r.db.Where("thread_id = ?", threadId)
	if beforeUuid > 0 {
		q = q.Where("uuid < ?", beforeUuid)
	}
	var messages []model.Message
	// Newest page first, then flipped so callers always see ascending order.
	err := q.Order("uuid DESC").Limit(limit).Find(&messages).Error
	if err != nil {
		return nil, wrapDBErrorf(err, "find message page thread_id=%s", threadId)
	}
	for i, j := 0, len(messages)-1; i < j; i, j = i+1, j-1 {
		messages[i], messages[j] = messages[j], messages[i]
	}
	return messages, nil
}

func (r *messageRepository) Create(message *model.Message) error {
	if err := r.db.Create(message).Error; err != nil {
		return wrapDBError(err, "create message")
	}
	return nil
}
