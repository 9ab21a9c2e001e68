package chatclient

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"
	"sync"
	"sync/atomic"
	"time"

	"auditlink_chat/pkg/chatwire"
	"auditlink_chat/pkg/errorx"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

// Connection-level errors.
var (
	// ErrUnauthorized is returned when the server refuses the token at
	// connect time. This is a session-level failure, never per-message.
	ErrUnauthorized = errorx.New(errorx.CodeUnauthorized, "chat connection rejected: invalid or expired token")
	// ErrNotConnected is returned by Send before a successful Connect
	// or after the connection dropped.
	ErrNotConnected = errorx.New(errorx.CodeServerBusy, "chat connection is not established")
)

// EventHandler receives the inbound event stream. Events are delivered
// in arrival order from a single goroutine; no ordering is guaranteed
// between an outbound send's ack and unrelated inbound messages.
type EventHandler interface {
	OnHistory(h chatwire.HistoryPayload)
	OnAck(a chatwire.AckPayload)
	OnMessage(m chatwire.Message)
	OnPresence(p chatwire.PresencePayload)
	// OnDisconnect fires once when the transport drops unexpectedly.
	// It does not fire for a deliberate Disconnect.
	OnDisconnect(err error)
}

// ConnManager owns the lifecycle of one authenticated websocket bound
// to one thread. It does not reconnect; retry policy belongs to the
// caller.
type ConnManager struct {
	logger  *zap.Logger
	handler EventHandler

	writeMu sync.Mutex
	conn    *websocket.Conn

	closing  atomic.Bool
	pumpDone chan struct{}
}

func newConnManager(logger *zap.Logger, handler EventHandler) *ConnManager {
	return &ConnManager{logger: logger, handler: handler}
}

// Connect dials serverURL, authenticates with token, joins threadID's
// channel (which makes the server reply with the full history) and
// starts the read pump.
func (c *ConnManager) Connect(ctx context.Context, serverURL, threadID, token string) error {
	wsURL, err := buildWsURL(serverURL, token)
	if err != nil {
		return errorx.Wrap(err, errorx.CodeInvalidParam, "bad server url")
	}

	conn, resp, err := websocket.DefaultDialer.DialContext(ctx, wsURL, nil)
	if err != nil {
		if resp != nil && (resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden) {
			return ErrUnauthorized
		}
		return errorx.Wrap(err, errorx.CodeServerBusy, "chat transport dial failed")
	}

	c.conn = conn
	c.closing.Store(false)
	c.pumpDone = make(chan struct{})

	if err := c.writeFrame(chatwire.EventJoin, chatwire.JoinPayload{ThreadId: threadID}); err != nil {
		conn.Close()
		return errorx.Wrap(err, errorx.CodeServerBusy, "join failed")
	}

	go c.readPump()
	return nil
}

// Send transmits one outbound payload, fire-and-forget. The ack arrives
// later through the event stream, matched by the echoed correlation id.
func (c *ConnManager) Send(payload chatwire.SendPayload) error {
	if c.conn == nil || c.closing.Load() {
		return ErrNotConnected
	}
	return c.writeFrame(chatwire.EventSend, payload)
}

// Disconnect tears the transport down deterministically. When it
// returns, no further events will be delivered to the handler.
func (c *ConnManager) Disconnect() {
	if !c.closing.CompareAndSwap(false, true) {
		return
	}
	if c.conn == nil {
		return
	}
	c.writeMu.Lock()
	c.conn.WriteControl(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
		time.Now().Add(time.Second))
	c.writeMu.Unlock()
	c.conn.Close()
	<-c.pumpDone
}

func (c *ConnManager) writeFrame(event string, data any) error {
	frame, err := chatwire.NewFrame(event, data)
	if err != nil {
		return err
	}
	c.writeMu.Lock()
	defer c.writeMu.Unlock()
	return c.conn.WriteJSON(frame)
}

func (c *ConnManager) readPump() {
	defer close(c.pumpDone)

	for {
		_, raw, err := c.conn.ReadMessage()
		if err != nil {
			if !c.closing.Load() {
				c.handler.OnDisconnect(err)
			}
			return
		}

		var frame chatwire.Frame
		if err := json.Unmarshal(raw, &frame); err != nil {
			c.logger.Warn("malformed frame from server", zap.Error(err))
			continue
		}

		switch frame.Event {
		case chatwire.EventHistory:
			var h chatwire.HistoryPayload
			if err := json.Unmarshal(frame.Data, &h); err != nil {
				c.logger.Warn("malformed history payload", zap.Error(err))
				continue
			}
			c.handler.OnHistory(h)

		case chatwire.EventAck:
			var a chatwire.AckPayload
			if err := json.Unmarshal(frame.Data, &a); err != nil {
				c.logger.Warn("malformed ack payload", zap.Error(err))
				continue
			}
			c.handler.OnAck(a)

		case chatwire.EventMessage:
			var m chatwire.Message
			if err := json.Unmarshal(frame.Data, &m); err != nil {
				c.logger.Warn("malformed message payload", zap.Error(err))
				continue
			}
			c.handler.OnMessage(m)

		case chatwire.EventPresence:
			var p chatwire.PresencePayload
			if err := json.Unmarshal(frame.Data, &p); err != nil {
				c.logger.Warn("malformed presence payload", zap.Error(err))
				continue
			}
			c.handler.OnPresence(p)

		default:
			c.logger.Debug("unknown event from server", zap.String("event", frame.Event))
		}
	}
}

func buildWsURL(serverURL, token string) (string, error) {
	u, err := url.Parse(serverURL)
	if err != nil {
		return "", err
	}
	switch u.Scheme {
	case "http", "ws":
		u.Scheme = "ws"
	case "https", "wss":
		u.Scheme = "wss"
	}
	u.Path = "/ws/chat"
	q := u.Query()
	q.Set("token", token)
	u.RawQuery = q.Encode()
	return u.String(), nil
}
