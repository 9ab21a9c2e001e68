package respond

import "auditlink_chat/pkg/chatwire"

// ThreadRespond is one conversation in a user's thread list.
type ThreadRespond struct {
	Uuid         string            `json:"uuid"`
	EngagementId string            `json:"engagement_id,omitempty"`
	ClientId     string            `json:"client_id"`
	AuditorId    string            `json:"auditor_id"`
	Subject      string            `json:"subject"`
	Status       int8              `json:"status"`
	LastMessage  *chatwire.Message `json:"last_message,omitempty"`
}

// HistoryPageRespond is one REST page of a thread's messages, ascending
// send order.
type HistoryPageRespond struct {
	ThreadId string             `json:"thread_id"`
	Messages []chatwire.Message `json:"messages"`
	// HasMore reports whether older messages exist before this page.
	HasMore bool `json:"has_more"`
}
