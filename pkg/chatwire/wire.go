// Package chatwire defines the JSON frame contract spoken over the
// websocket between the messaging service and its clients. Both sides
// import this package so the contract cannot drift.
package chatwire

import (
	"encoding/json"
	"time"
)

// Event names. Frames are {"event": ..., "data": ...}.
const (
	EventJoin     = "join"
	EventHistory  = "history"
	EventSend     = "send"
	EventAck      = "ack"
	EventMessage  = "message_received"
	EventPresence = "presence_changed"
)

// Message types.
const (
	MessageTypeText int8 = iota
	MessageTypeImage
	MessageTypeFile
)

// Frame is the envelope for every websocket message in both directions.
type Frame struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data,omitempty"`
}

// NewFrame marshals data into a Frame. Marshal errors can only come
// from programmer mistakes (channels, funcs), so they are returned for
// the caller to log.
func NewFrame(event string, data any) (*Frame, error) {
	raw, err := json.Marshal(data)
	if err != nil {
		return nil, err
	}
	return &Frame{Event: event, Data: raw}, nil
}

// Message is a server-confirmed chat message on the wire. Id is the
// server-assigned permanent identifier (snowflake, string form to stay
// safe in JavaScript clients).
type Message struct {
	Id         string    `json:"id"`
	ThreadId   string    `json:"threadId"`
	SenderId   string    `json:"senderId"`
	SenderName string    `json:"senderName"`
	Type       int8      `json:"type"`
	Content    string    `json:"content"`
	Url        string    `json:"url,omitempty"`
	SentAt     time.Time `json:"sentAt"`
}

// JoinPayload asks the server to bind this connection to a thread and
// reply with the thread's full history.
type JoinPayload struct {
	ThreadId string `json:"threadId"`
}

// HistoryPayload is the ordered message list of a thread at join time.
type HistoryPayload struct {
	ThreadId string    `json:"threadId"`
	Messages []Message `json:"messages"`
}

// SendPayload is an outbound message. CorrelationId is the caller's
// provisional identifier; the server echoes it back verbatim in the
// AckPayload so acknowledgements match requests regardless of arrival
// order.
type SendPayload struct {
	CorrelationId string `json:"correlationId"`
	ThreadId      string `json:"threadId"`
	Type          int8   `json:"type"`
	Content       string `json:"content"`
	Url           string `json:"url,omitempty"`
}

// AckPayload reports the outcome of one send. Message is set on
// success; Error on failure.
type AckPayload struct {
	CorrelationId string   `json:"correlationId"`
	Success       bool     `json:"success"`
	Message       *Message `json:"message,omitempty"`
	Error         string   `json:"error,omitempty"`
}

// PresencePayload reports that a thread participant went on/offline.
type PresencePayload struct {
	ThreadId string `json:"threadId"`
	UserId   string `json:"userId"`
	Online   bool   `json:"online"`
}
