package chatclient

import (
	"time"

	"auditlink_chat/pkg/chatwire"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

const provisionalPrefix = "temp_"

// MessageStore holds the ordered timeline of one thread, including
// provisional entries the server has not confirmed yet.
//
// The store is not safe for concurrent use; the owning Session
// serialises every mutation, which also guarantees no two
// reconciliations interleave mid-mutation.
type MessageStore struct {
	logger *zap.Logger

	messages []Message
	// byID indexes each entry by its current identifier, provisional or
	// permanent. The timeline invariant is one entry per identifier.
	byID map[string]int
}

func NewMessageStore(logger *zap.Logger) *MessageStore {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &MessageStore{
		logger: logger,
		byID:   make(map[string]int),
	}
}

// AppendOutgoing inserts a provisional entry at the end of the timeline
// and returns it. The entry is visible immediately, before any network
// round trip. Identical content sent twice produces two entries: a chat
// is not a deduplicated log.
func (s *MessageStore) AppendOutgoing(threadID string, sender User, msgType int8, content, url string) Message {
	msg := Message{
		ID:         provisionalPrefix + uuid.NewString(),
		ThreadID:   threadID,
		SenderID:   sender.ID,
		SenderName: sender.Name,
		Type:       msgType,
		Content:    content,
		Url:        url,
		SentAt:     time.Now(),
		Status:     StatusSending,
	}
	s.byID[msg.ID] = len(s.messages)
	s.messages = append(s.messages, msg)
	return msg
}

// Reconcile applies a server acknowledgement to the provisional entry
// whose identifier equals the echoed correlation id. The entry is
// mutated in place, never reordered. Unknown correlation ids and
// duplicated acks are safe no-ops, logged for diagnostics only.
func (s *MessageStore) Reconcile(correlationID string, ack chatwire.AckPayload) bool {
	idx, ok := s.byID[correlationID]
	if !ok {
		s.logger.Debug("ack for unknown correlation id, ignoring",
			zap.String("correlationId", correlationID))
		return false
	}
	entry := &s.messages[idx]
	if entry.Status != StatusSending {
		s.logger.Debug("duplicate ack, ignoring",
			zap.String("correlationId", correlationID), zap.String("status", string(entry.Status)))
		return false
	}

	if ack.Success && ack.Message != nil {
		confirmed := fromWire(*ack.Message)
		confirmed.Status = StatusSent
		delete(s.byID, correlationID)
		s.byID[confirmed.ID] = idx
		s.messages[idx] = confirmed
		return true
	}

	entry.Status = StatusFailed
	entry.Error = ack.Error
	if entry.Error == "" {
		entry.Error = "message was not delivered"
	}
	return true
}

// Fail force-fails one provisional entry, used when the transport write
// itself errors before the server could ack.
func (s *MessageStore) Fail(provisionalID, reason string) bool {
	idx, ok := s.byID[provisionalID]
	if !ok || s.messages[idx].Status != StatusSending {
		return false
	}
	s.messages[idx].Status = StatusFailed
	s.messages[idx].Error = reason
	return true
}

// FailPending fails every in-flight entry. Called when the connection
// drops: no ack can arrive for them on this session anymore.
func (s *MessageStore) FailPending(reason string) int {
	n := 0
	for i := range s.messages {
		if s.messages[i].Status == StatusSending {
			s.messages[i].Status = StatusFailed
			s.messages[i].Error = reason
			n++
		}
	}
	return n
}

// MergeInbound appends a counterpart message. Messages already present
// (transport retry) and the server's echo of our own sends are
// suppressed: the latter are already represented by the optimistic
// entry and must not be double-counted.
func (s *MessageStore) MergeInbound(m chatwire.Message, currentUserID string) bool {
	if m.SenderId == currentUserID {
		return false
	}
	if _, dup := s.byID[m.Id]; dup {
		s.logger.Debug("duplicate inbound message, ignoring", zap.String("id", m.Id))
		return false
	}
	msg := fromWire(m)
	s.byID[msg.ID] = len(s.messages)
	s.messages = append(s.messages, msg)
	return true
}

// Retry removes a failed entry and appends a brand-new provisional one
// carrying the same content. A retry is semantically a new send: new
// identifier, fresh timestamp, queued at the end of the timeline rather
// than resurrected in place.
func (s *MessageStore) Retry(failedID string) (Message, bool) {
	idx, ok := s.byID[failedID]
	if !ok || s.messages[idx].Status != StatusFailed {
		return Message{}, false
	}
	old := s.messages[idx]

	delete(s.byID, failedID)
	s.messages = append(s.messages[:idx], s.messages[idx+1:]...)
	for i := idx; i < len(s.messages); i++ {
		s.byID[s.messages[i].ID] = i
	}

	return s.AppendOutgoing(old.ThreadID, User{ID: old.SenderID, Name: old.SenderName}, old.Type, old.Content, old.Url), true
}

// Hydrate replaces the timeline with the server's history at join time.
func (s *MessageStore) Hydrate(history []chatwire.Message) {
	s.messages = s.messages[:0]
	s.byID = make(map[string]int, len(history))
	for _, m := range history {
		if _, dup := s.byID[m.Id]; dup {
			continue
		}
		msg := fromWire(m)
		s.byID[msg.ID] = len(s.messages)
		s.messages = append(s.messages, msg)
	}
}

// Snapshot returns a copy of the timeline in insertion order.
func (s *MessageStore) Snapshot() []Message {
	out := make([]Message, len(s.messages))
	copy(out, s.messages)
	return out
}

// Len returns the number of visible entries.
func (s *MessageStore) Len() int {
	return len(s.messages)
}
