// Package message serves REST history reads. Live delivery is the chat
// hub's job; this service only pages the persisted timeline.
package message

import (
	"strconv"
	"strings"

	"auditlink_chat/internal/dao/mysql"
	"auditlink_chat/internal/dto/request"
	"auditlink_chat/internal/dto/respond"
	"auditlink_chat/internal/model"
	"auditlink_chat/pkg/chatwire"
	"auditlink_chat/pkg/constants"
	"auditlink_chat/pkg/errorx"
)

type Service struct {
	threadRepo  mysql.ThreadRepository
	messageRepo mysql.MessageRepository
}

func NewMessageService(threadRepo mysql.ThreadRepository, messageRepo mysql.MessageRepository) *Service {
	return &Service{threadRepo: threadRepo, messageRepo: messageRepo}
}

// HistoryPage returns one page of a thread's messages for userId,
// ascending send order. The cursor is the oldest message id of the
// previous page.
func (s *Service) HistoryPage(userId, threadId string, req request.HistoryPageRequest) (*respond.HistoryPageRespond, error) {
	t, err := s.threadRepo.FindByUuid(threadId)
	if err != nil {
		return nil, err
	}
	if !t.HasParticipant(userId) {
		return nil, errorx.ErrForbidden
	}

	limit := req.Limit
	if limit <= 0 || limit > constants.HISTORY_PAGE_SIZE {
		limit = constants.HISTORY_PAGE_SIZE
	}

	var before int64
	if req.Before != "" {
		before, err = parseMessageId(req.Before)
		if err != nil {
			return nil, errorx.Wrap(err, errorx.CodeInvalidParam, "bad cursor")
		}
	}

	// Fetch one extra row to learn whether an older page exists.
	messages, err := s.messageRepo.FindPageByThreadId(threadId, before, limit+1)
	if err != nil {
		return nil, err
	}
	hasMore := len(messages) > limit
	if hasMore {
		messages = messages[1:]
	}

	out := make([]chatwire.Message, 0, len(messages))
	for i := range messages {
		out = append(out, toWireMessage(&messages[i]))
	}
	return &respond.HistoryPageRespond{
		ThreadId: threadId,
		Messages: out,
		HasMore:  hasMore,
	}, nil
}

func parseMessageId(id string) (int64, error) {
	return strconv.ParseInt(strings.TrimPrefix(id, "M"), 10, 64)
}

func toWireMessage(m *model.Message) chatwire.Message {
	return chatwire.Message{
		Id:         "M" + strconv.FormatInt(m.Uuid, 10),
		ThreadId:   m.ThreadId,
		SenderId:   m.SenderId,
		SenderName: m.SenderName,
		Type:       m.Type,
		Content:    m.Content,
		Url:        m.Url,
		SentAt:     m.SentAt,
	}
}
