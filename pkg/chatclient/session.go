package chatclient

import (
	"context"
	"strings"
	"sync"

	"auditlink_chat/pkg/chatwire"
	"auditlink_chat/pkg/errorx"

	"go.uber.org/zap"
)

// TokenSource supplies the access token used to authenticate the
// websocket. Implementations may refresh lazily; Token is called once
// per Connect.
type TokenSource interface {
	Token(ctx context.Context) (string, error)
}

// StaticToken is a TokenSource wrapping a fixed token string.
type StaticToken string

func (t StaticToken) Token(context.Context) (string, error) {
	return string(t), nil
}

// Config configures a Session.
type Config struct {
	// ServerURL is the chat server base URL, e.g. "https://chat.example.com".
	ServerURL string
	// ThreadID is the single thread this session is bound to.
	ThreadID string
	// User is the local participant; their id is used to suppress the
	// server's echo of their own messages.
	User User
	// TokenSource authenticates the connection.
	TokenSource TokenSource
	// Logger defaults to a no-op logger.
	Logger *zap.Logger
	// OnUpdate, when set, is invoked after every state change: new
	// timeline snapshot, connection state transition, presence change.
	// It is called without internal locks held and may call back into
	// the session.
	OnUpdate func()
}

// Session glues the connection, the optimistic message store and the
// presence tracker into one thread-scoped chat client. All methods are
// safe for concurrent use; internally a single mutex serialises every
// state mutation, so acks, inbound messages and local sends never
// interleave mid-update.
type Session struct {
	cfg    Config
	logger *zap.Logger

	mu       sync.Mutex
	conn     *ConnManager
	store    *MessageStore
	presence *PresenceTracker
	state    ConnState
	closed   bool
}

func NewSession(cfg Config) (*Session, error) {
	if cfg.ServerURL == "" || cfg.ThreadID == "" || cfg.User.ID == "" {
		return nil, errorx.New(errorx.CodeInvalidParam, "server url, thread id and user are required")
	}
	if cfg.TokenSource == nil {
		return nil, errorx.New(errorx.CodeInvalidParam, "token source is required")
	}
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop()
	}
	s := &Session{
		cfg:      cfg,
		logger:   cfg.Logger,
		store:    NewMessageStore(cfg.Logger),
		presence: &PresenceTracker{},
		state:    StateDisconnected,
	}
	s.conn = newConnManager(cfg.Logger, s)
	return s, nil
}

// Connect authenticates and joins the thread. On success the server's
// history replaces the timeline via OnHistory. Pending entries from a
// previous connection have already been failed at disconnect time and
// stay failed; retrying them is the user's call.
func (s *Session) Connect(ctx context.Context) error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return errorx.New(errorx.CodeServerBusy, "session is closed")
	}
	if s.state != StateDisconnected {
		s.mu.Unlock()
		return errorx.New(errorx.CodeInvalidParam, "session already connected")
	}
	s.state = StateConnecting
	s.mu.Unlock()
	s.notify()

	token, err := s.cfg.TokenSource.Token(ctx)
	if err != nil {
		s.setState(StateDisconnected)
		return errorx.Wrap(err, errorx.CodeUnauthorized, "token source failed")
	}

	if err := s.conn.Connect(ctx, s.cfg.ServerURL, s.cfg.ThreadID, token); err != nil {
		s.setState(StateDisconnected)
		return err
	}

	s.setState(StateConnected)
	return nil
}

// Disconnect tears the session down. When it returns no callbacks will
// fire anymore and every in-flight send has been marked failed.
func (s *Session) Disconnect() {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.closed = true
	s.state = StateDisconnected
	s.presence.Reset()
	failed := s.store.FailPending("connection closed")
	s.mu.Unlock()

	// Closing the transport outside the lock: the read pump may be
	// delivering a callback that needs the mutex, and Disconnect waits
	// for the pump to exit.
	s.conn.Disconnect()

	if failed > 0 {
		s.logger.Info("failed in-flight messages on disconnect", zap.Int("count", failed))
	}
	s.notify()
}

// SendText appends an optimistic text entry and transmits it. The
// returned message is provisional; its id changes when the ack lands.
// A transport-level write failure marks the entry failed immediately.
func (s *Session) SendText(content string) (Message, error) {
	return s.send(chatwire.MessageTypeText, content, "")
}

// SendAttachment appends an optimistic image or file entry referencing
// an already-uploaded URL.
func (s *Session) SendAttachment(msgType int8, name, url string) (Message, error) {
	return s.send(msgType, name, url)
}

func (s *Session) send(msgType int8, content, url string) (Message, error) {
	if msgType == chatwire.MessageTypeText && strings.TrimSpace(content) == "" {
		return Message{}, errorx.New(errorx.CodeInvalidParam, "message content is empty")
	}

	s.mu.Lock()
	if s.closed || s.state != StateConnected {
		s.mu.Unlock()
		return Message{}, ErrNotConnected
	}
	msg := s.store.AppendOutgoing(s.cfg.ThreadID, s.cfg.User, msgType, content, url)
	s.mu.Unlock()
	s.notify()

	err := s.conn.Send(chatwire.SendPayload{
		CorrelationId: msg.ID,
		ThreadId:      s.cfg.ThreadID,
		Type:          msgType,
		Content:       content,
		Url:           url,
	})
	if err != nil {
		s.mu.Lock()
		s.store.Fail(msg.ID, "send failed: "+err.Error())
		s.mu.Unlock()
		s.notify()
		return msg, err
	}
	return msg, nil
}

// Retry re-sends a failed entry as a brand-new message: the failed
// entry disappears and a fresh provisional one is appended at the end
// of the timeline with a new identifier.
func (s *Session) Retry(failedID string) (Message, error) {
	s.mu.Lock()
	if s.closed || s.state != StateConnected {
		s.mu.Unlock()
		return Message{}, ErrNotConnected
	}
	msg, ok := s.store.Retry(failedID)
	if !ok {
		s.mu.Unlock()
		return Message{}, errorx.New(errorx.CodeNotFound, "no failed message with that id")
	}
	s.mu.Unlock()
	s.notify()

	err := s.conn.Send(chatwire.SendPayload{
		CorrelationId: msg.ID,
		ThreadId:      s.cfg.ThreadID,
		Type:          msg.Type,
		Content:       msg.Content,
		Url:           msg.Url,
	})
	if err != nil {
		s.mu.Lock()
		s.store.Fail(msg.ID, "send failed: "+err.Error())
		s.mu.Unlock()
		s.notify()
		return msg, err
	}
	return msg, nil
}

// Messages returns a snapshot of the timeline in display order.
func (s *Session) Messages() []Message {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.store.Snapshot()
}

// State returns the current connection state.
func (s *Session) State() ConnState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// CounterpartOnline reports the last known presence of the other
// participant. Unknown is offline.
func (s *Session) CounterpartOnline() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.presence.Online()
}

// EventHandler implementation. The read pump delivers these from a
// single goroutine; each takes the session mutex so user calls and
// event delivery never interleave.

func (s *Session) OnHistory(h chatwire.HistoryPayload) {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.store.Hydrate(h.Messages)
	s.mu.Unlock()
	s.notify()
}

func (s *Session) OnAck(a chatwire.AckPayload) {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	changed := s.store.Reconcile(a.CorrelationId, a)
	s.mu.Unlock()
	if changed {
		s.notify()
	}
}

func (s *Session) OnMessage(m chatwire.Message) {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	merged := s.store.MergeInbound(m, s.cfg.User.ID)
	s.mu.Unlock()
	if merged {
		s.notify()
	}
}

func (s *Session) OnPresence(p chatwire.PresencePayload) {
	s.mu.Lock()
	if s.closed || p.UserId == s.cfg.User.ID {
		s.mu.Unlock()
		return
	}
	s.presence.Apply(p.Online)
	s.mu.Unlock()
	s.notify()
}

func (s *Session) OnDisconnect(err error) {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.state = StateDisconnected
	s.presence.Reset()
	failed := s.store.FailPending("connection lost")
	s.mu.Unlock()

	s.logger.Warn("chat connection lost",
		zap.Error(err), zap.Int("failedPending", failed))
	s.notify()
}

func (s *Session) setState(st ConnState) {
	s.mu.Lock()
	s.state = st
	s.mu.Unlock()
	s.notify()
}

func (s *Session) notify() {
	if s.cfg.OnUpdate != nil {
		s.cfg.OnUpdate()
	}
}
