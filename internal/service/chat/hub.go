package chat

import (
	"context"
	"encoding/json"
	"strconv"
	"time"

	"auditlink_chat/internal/dao/mysql"
	myredis "auditlink_chat/internal/dao/redis"
	"auditlink_chat/internal/model"
	"auditlink_chat/pkg/chatwire"
	"auditlink_chat/pkg/constants"
	"auditlink_chat/pkg/errorx"
	"auditlink_chat/pkg/util/snowflake"

	"go.uber.org/zap"
)

// sendEnvelope is a send payload stamped with the authenticated sender.
// It is what travels through the broker (in-process channel or Kafka),
// so consumers never trust sender fields from the raw client payload.
type sendEnvelope struct {
	SenderId   string               `json:"senderId"`
	SenderName string               `json:"senderName"`
	Payload    chatwire.SendPayload `json:"payload"`
}

type joinRequest struct {
	conn     *UserConn
	threadId string
}

// Hub owns all thread rooms. Every mutation of room state happens on
// the single Run goroutine, so no map needs a lock; connections talk to
// the hub through channels only.
type Hub struct {
	// rooms maps threadId -> userId -> connection.
	rooms map[string]map[string]*UserConn

	registerCh   chan joinRequest
	unregisterCh chan *UserConn
	dispatchCh   chan []byte
	quit         chan struct{}

	broker MessageBroker

	threadRepo  mysql.ThreadRepository
	messageRepo mysql.MessageRepository
	userRepo    mysql.UserRepository
	cache       myredis.AsyncCacheService

	ctx context.Context
}

func NewHub(threadRepo mysql.ThreadRepository, messageRepo mysql.MessageRepository,
	userRepo mysql.UserRepository, cache myredis.AsyncCacheService) *Hub {
	return &Hub{
		rooms:        make(map[string]map[string]*UserConn),
		registerCh:   make(chan joinRequest, constants.CHANNEL_SIZE),
		unregisterCh: make(chan *UserConn, constants.CHANNEL_SIZE),
		dispatchCh:   make(chan []byte, constants.CHANNEL_SIZE),
		quit:         make(chan struct{}),
		threadRepo:   threadRepo,
		messageRepo:  messageRepo,
		userRepo:     userRepo,
		cache:        cache,
		ctx:          context.Background(),
	}
}

// Register asks the hub to bind conn to a thread room.
func (h *Hub) Register(conn *UserConn, threadId string) {
	select {
	case h.registerCh <- joinRequest{conn: conn, threadId: threadId}:
	case <-h.quit:
	}
}

// Unregister removes conn from its room; safe to call for connections
// that never completed a join.
func (h *Hub) Unregister(conn *UserConn) {
	select {
	case h.unregisterCh <- conn:
	case <-h.quit:
	}
}

// Dispatch feeds one broker-delivered send envelope into the room loop.
func (h *Hub) Dispatch(raw []byte) {
	select {
	case h.dispatchCh <- raw:
	case <-h.quit:
	}
}

// Run is the room loop. It exits when Close is called.
func (h *Hub) Run() {
	for {
		select {
		case req := <-h.registerCh:
			h.handleJoin(req)
		case conn := <-h.unregisterCh:
			h.handleLeave(conn)
		case raw := <-h.dispatchCh:
			h.handleSend(raw)
		case <-h.quit:
			return
		}
	}
}

// Close stops the room loop.
func (h *Hub) Close() {
	close(h.quit)
}

func (h *Hub) handleJoin(req joinRequest) {
	conn, threadId := req.conn, req.threadId

	thread, err := h.threadRepo.FindByUuid(threadId)
	if err != nil {
		zap.L().Warn("join rejected: thread lookup failed",
			zap.String("threadId", threadId), zap.String("userId", conn.UserId), zap.Error(err))
		conn.conn.Close()
		return
	}
	if !thread.HasParticipant(conn.UserId) {
		zap.L().Warn("join rejected: not a participant",
			zap.String("threadId", threadId), zap.String("userId", conn.UserId))
		conn.conn.Close()
		return
	}

	// A reconnect replaces any previous connection of the same user.
	room := h.rooms[threadId]
	if room == nil {
		room = make(map[string]*UserConn)
		h.rooms[threadId] = room
	}
	if old, ok := room[conn.UserId]; ok && old != conn {
		old.conn.Close()
	}
	room[conn.UserId] = conn
	conn.ThreadId = threadId

	h.sendHistory(conn, threadId)

	// Tell the joiner who is already here, then announce the joiner.
	for userId := range room {
		if userId == conn.UserId {
			continue
		}
		conn.Enqueue(h.presenceFrame(threadId, userId, true))
	}
	h.broadcastPresence(threadId, conn.UserId, true)

	h.cache.SubmitTask(func() {
		if err := h.cache.AddToSet(h.ctx, myredis.PresenceKey(threadId), conn.UserId); err != nil {
			zap.L().Error("presence cache add", zap.Error(err))
		}
	})
	go func() {
		if err := h.userRepo.TouchOnline(conn.UserId); err != nil {
			zap.L().Error("touch online", zap.Error(err))
		}
	}()

	zap.L().Info("user joined thread",
		zap.String("threadId", threadId), zap.String("userId", conn.UserId))
}

func (h *Hub) handleLeave(conn *UserConn) {
	threadId := conn.ThreadId
	if threadId == "" {
		return
	}
	room := h.rooms[threadId]
	if room == nil || room[conn.UserId] != conn {
		// Already replaced by a reconnect.
		return
	}
	delete(room, conn.UserId)
	if len(room) == 0 {
		delete(h.rooms, threadId)
	}
	close(conn.sendBack)

	h.broadcastPresence(threadId, conn.UserId, false)

	userId := conn.UserId
	h.cache.SubmitTask(func() {
		if err := h.cache.RemoveFromSet(h.ctx, myredis.PresenceKey(threadId), userId); err != nil {
			zap.L().Error("presence cache remove", zap.Error(err))
		}
	})
	go func() {
		if err := h.userRepo.TouchOffline(userId); err != nil {
			zap.L().Error("touch offline", zap.Error(err))
		}
	}()

	zap.L().Info("user left thread",
		zap.String("threadId", threadId), zap.String("userId", userId))
}

// handleSend persists one message and fans it out. The ack always
// echoes the sender's correlation id so the client can reconcile its
// provisional entry no matter in which order acks arrive.
func (h *Hub) handleSend(raw []byte) {
	var env sendEnvelope
	if err := json.Unmarshal(raw, &env); err != nil {
		zap.L().Error("malformed send envelope", zap.Error(err))
		return
	}
	payload := env.Payload

	room := h.rooms[payload.ThreadId]
	senderConn := room[env.SenderId]

	fail := func(reason string) {
		zap.L().Warn("send rejected",
			zap.String("threadId", payload.ThreadId),
			zap.String("senderId", env.SenderId),
			zap.String("reason", reason))
		if senderConn != nil {
			senderConn.ackError(payload.CorrelationId, reason)
		}
	}

	if senderConn == nil {
		// The sender is no longer in the room (Kafka mode lag or a
		// raced disconnect). Nobody is waiting for this ack locally.
		zap.L().Debug("send from absent sender dropped",
			zap.String("threadId", payload.ThreadId), zap.String("senderId", env.SenderId))
		return
	}
	if payload.Type == model.MessageTypeText && payload.Content == "" {
		fail("empty message")
		return
	}

	msg := model.Message{
		Uuid:       snowflake.GenerateID(),
		ThreadId:   payload.ThreadId,
		Type:       payload.Type,
		Content:    payload.Content,
		Url:        payload.Url,
		SenderId:   env.SenderId,
		SenderName: env.SenderName,
		SentAt:     time.Now(),
	}
	if err := h.messageRepo.Create(&msg); err != nil {
		zap.L().Error("persist message", zap.Error(err))
		fail(errorx.ErrServerBusy.Msg)
		return
	}

	wireMsg := toWireMessage(&msg)

	ackFrame, err := chatwire.NewFrame(chatwire.EventAck, chatwire.AckPayload{
		CorrelationId: payload.CorrelationId,
		Success:       true,
		Message:       &wireMsg,
	})
	if err != nil {
		zap.L().Error("marshal ack", zap.Error(err))
		return
	}
	senderConn.Enqueue(ackFrame)

	// Broadcast to the whole room, sender included; the client SDK
	// suppresses its own echo.
	msgFrame, err := chatwire.NewFrame(chatwire.EventMessage, wireMsg)
	if err != nil {
		zap.L().Error("marshal message frame", zap.Error(err))
		return
	}
	for _, member := range room {
		member.Enqueue(msgFrame)
	}

	h.cache.SubmitTask(func() {
		data, err := json.Marshal(wireMsg)
		if err != nil {
			return
		}
		if err := h.cache.Set(h.ctx, myredis.ThreadLastMessageKey(msg.ThreadId), string(data), 0); err != nil {
			zap.L().Error("cache last message", zap.Error(err))
		}
	})
}

func (h *Hub) sendHistory(conn *UserConn, threadId string) {
	messages, err := h.messageRepo.FindByThreadId(threadId)
	if err != nil {
		zap.L().Error("history fetch", zap.String("threadId", threadId), zap.Error(err))
		messages = nil
	}
	wireMessages := make([]chatwire.Message, 0, len(messages))
	for i := range messages {
		wireMessages = append(wireMessages, toWireMessage(&messages[i]))
	}
	frame, err := chatwire.NewFrame(chatwire.EventHistory, chatwire.HistoryPayload{
		ThreadId: threadId,
		Messages: wireMessages,
	})
	if err != nil {
		zap.L().Error("marshal history", zap.Error(err))
		return
	}
	conn.Enqueue(frame)
}

func (h *Hub) broadcastPresence(threadId, aboutUserId string, online bool) {
	room := h.rooms[threadId]
	frame := h.presenceFrame(threadId, aboutUserId, online)
	for userId, member := range room {
		if userId == aboutUserId {
			continue
		}
		member.Enqueue(frame)
	}
}

func (h *Hub) presenceFrame(threadId, userId string, online bool) *chatwire.Frame {
	frame, err := chatwire.NewFrame(chatwire.EventPresence, chatwire.PresencePayload{
		ThreadId: threadId,
		UserId:   userId,
		Online:   online,
	})
	if err != nil {
		zap.L().Error("marshal presence", zap.Error(err))
		return &chatwire.Frame{Event: chatwire.EventPresence}
	}
	return frame
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
