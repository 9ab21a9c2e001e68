// Package thread manages the two-party conversation scopes that chat
// messages belong to.
package thread

import (
	"context"
	"encoding/json"

	"auditlink_chat/internal/dao/mysql"
	myredis "auditlink_chat/internal/dao/redis"
	"auditlink_chat/internal/dto/request"
	"auditlink_chat/internal/dto/respond"
	"auditlink_chat/internal/model"
	"auditlink_chat/pkg/chatwire"
	"auditlink_chat/pkg/errorx"
	"auditlink_chat/pkg/util/snowflake"

	"go.uber.org/zap"
)

type Service struct {
	threadRepo mysql.ThreadRepository
	userRepo   mysql.UserRepository
	cache      myredis.CacheService
}

func NewThreadService(threadRepo mysql.ThreadRepository, userRepo mysql.UserRepository,
	cache myredis.CacheService) *Service {
	return &Service{threadRepo: threadRepo, userRepo: userRepo, cache: cache}
}

// Create opens a thread between the calling client and an auditor.
// Creating a thread that already exists for the pair returns the
// existing one instead of a duplicate.
func (s *Service) Create(clientId string, req request.CreateThreadRequest) (*respond.ThreadRespond, error) {
	auditor, err := s.userRepo.FindByUuid(req.AuditorId)
	if err != nil {
		if errorx.IsNotFound(err) {
			return nil, errorx.New(errorx.CodeUserNotExist, "auditor does not exist")
		}
		return nil, err
	}
	if auditor.Role != model.RoleAuditor {
		return nil, errorx.New(errorx.CodeInvalidParam, "counterpart is not an auditor")
	}

	if existing, err := s.threadRepo.FindByParticipants(clientId, req.AuditorId); err == nil {
		return s.toRespond(existing), nil
	} else if !errorx.IsNotFound(err) {
		return nil, err
	}

	t := &model.Thread{
		Uuid:         "T" + snowflake.GenerateIDString(),
		EngagementId: req.EngagementId,
		ClientId:     clientId,
		AuditorId:    req.AuditorId,
		Subject:      req.Subject,
	}
	if err := s.threadRepo.CreateThread(t); err != nil {
		return nil, err
	}
	zap.L().Info("thread created", zap.String("uuid", t.Uuid), zap.String("clientId", clientId))
	return s.toRespond(t), nil
}

// List returns the calling user's threads, newest activity first, with
// the cached last message attached when available.
func (s *Service) List(userId string) ([]respond.ThreadRespond, error) {
	threads, err := s.threadRepo.FindByParticipant(userId)
	if err != nil {
		return nil, err
	}
	out := make([]respond.ThreadRespond, 0, len(threads))
	for i := range threads {
		out = append(out, *s.toRespond(&threads[i]))
	}
	return out, nil
}

// Get returns one thread, enforcing that userId participates in it.
func (s *Service) Get(userId, threadId string) (*respond.ThreadRespond, error) {
	t, err := s.threadRepo.FindByUuid(threadId)
	if err != nil {
		return nil, err
	}
	if !t.HasParticipant(userId) {
		return nil, errorx.ErrForbidden
	}
	return s.toRespond(t), nil
}

func (s *Service) toRespond(t *model.Thread) *respond.ThreadRespond {
	resp := &respond.ThreadRespond{
		Uuid:         t.Uuid,
		EngagementId: t.EngagementId,
		ClientId:     t.ClientId,
		AuditorId:    t.AuditorId,
		Subject:      t.Subject,
		Status:       t.Status,
	}
	if cached, err := s.cache.Get(context.Background(), myredis.ThreadLastMessageKey(t.Uuid)); err == nil && cached != "" {
		var msg chatwire.Message
		if json.Unmarshal([]byte(cached), &msg) == nil {
			resp.LastMessage = &msg
		}
	}
	return resp
}
