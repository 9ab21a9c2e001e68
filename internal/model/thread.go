package model

import "gorm.io/gorm"

// Thread is a two-party conversation scope between the client who owns
// an audit request and the auditor engaged on it. All chat messages
// belong to exactly one thread.
type Thread struct {
	gorm.Model

	// Uuid is the public identifier, "T" + snowflake string.
	Uuid string `gorm:"column:uuid;uniqueIndex;type:char(24);not null"`

	// EngagementId links the thread to the marketplace engagement it
	// was opened for. Informational here; engagements live in the REST
	// product, not in this service.
	EngagementId string `gorm:"column:engagement_id;index;type:char(24)"`

	ClientId  string `gorm:"column:client_id;index;type:char(24);not null"`
	AuditorId string `gorm:"column:auditor_id;index;type:char(24);not null"`

	Subject string `gorm:"column:subject;type:varchar(120)"`

	// Status: 0 open, 1 archived.
	Status int8 `gorm:"column:status;not null"`
}

func (Thread) TableName() string {
	return "thread"
}

// HasParticipant reports whether userId is one of the two parties.
func (t *Thread) HasParticipant(userId string) bool {
	return t.ClientId == userId || t.AuditorId == userId
}

// Counterpart returns the other party's id, or "" if userId is not a
// participant.
func (t *Thread) Counterpart(userId string) string {
	switch userId {
	case t.ClientId:
		return t.AuditorId
	case t.AuditorId:
		return t.ClientId
	}
	return ""
}
