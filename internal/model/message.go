package model

import (
	"time"

	"gorm.io/gorm"
)

// Message content types.
const (
	MessageTypeText  int8 = 0
	MessageTypeImage int8 = 1
	MessageTypeFile  int8 = 2
)

// Message is a persisted chat message. The id handed to clients is the
// snowflake Uuid; the provisional client-side id never reaches storage.
type Message struct {
	gorm.Model

	// Uuid is the server-assigned permanent identifier.
	Uuid int64 `gorm:"column:uuid;uniqueIndex;type:bigint;not null"`

	ThreadId string `gorm:"column:thread_id;index;type:char(24);not null"`

	// Type: 0 text, 1 image, 2 file.
	Type int8 `gorm:"column:type;not null"`

	Content string `gorm:"column:content;type:TEXT"`

	// Url points at the uploaded asset for image/file messages.
	Url string `gorm:"column:url;type:varchar(255)"`

	SenderId string `gorm:"column:sender_id;index;type:char(24);not null"`

	// SenderName is denormalised so history reads skip the user table.
	SenderName string `gorm:"column:sender_name;type:varchar(60);not null"`

	// SentAt is the authoritative server-assigned timestamp.
	SentAt time.Time `gorm:"column:sent_at;not null"`
}

func (Message) TableName() string {
	return "message"
}
