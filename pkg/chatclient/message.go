package chatclient

import (
	"time"

	"auditlink_chat/pkg/chatwire"
)

// Status is the delivery state of a locally-originated message.
type Status string

const (
	// StatusSending marks a provisional entry awaiting its ack.
	StatusSending Status = "sending"
	// StatusSent marks a server-confirmed entry.
	StatusSent Status = "sent"
	// StatusFailed marks a rejected or timed-out entry, kept visible
	// until the user retries.
	StatusFailed Status = "failed"
)

// Message is one entry of the visible timeline. For entries authored by
// the counterpart Status is empty: they arrive confirmed and carry no
// delivery state of our own.
type Message struct {
	// ID is the provisional identifier ("temp_...") until the server
	// confirms the message, then the permanent server id.
	ID         string
	ThreadID   string
	SenderID   string
	SenderName string
	Type       int8
	Content    string
	Url        string
	// SentAt is client-assigned while provisional and replaced by the
	// server's authoritative timestamp on confirmation.
	SentAt time.Time
	Status Status
	// Error is set only when Status is StatusFailed.
	Error string
}

// User identifies the local participant.
type User struct {
	ID   string
	Name string
}

// ConnState is the session's connection lifecycle state.
type ConnState string

const (
	StateDisconnected ConnState = "disconnected"
	StateConnecting   ConnState = "connecting"
	StateConnected    ConnState = "connected"
)

func fromWire(m chatwire.Message) Message {
	return Message{
		ID:         m.Id,
		ThreadID:   m.ThreadId,
		SenderID:   m.SenderId,
		SenderName: m.SenderName,
		Type:       m.Type,
		Content:    m.Content,
		Url:        m.Url,
		SentAt:     m.SentAt,
	}
}
