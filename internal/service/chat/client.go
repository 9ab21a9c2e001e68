package chat

import (
	"encoding/json"
	"time"

	"auditlink_chat/pkg/chatwire"
	"auditlink_chat/pkg/constants"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

// UserConn is one authenticated websocket connection. A connection
// serves exactly one user and, once the join frame arrives, exactly one
// thread.
type UserConn struct {
	conn *websocket.Conn

	UserId   string
	UserName string
	Role     string

	// ThreadId is set by the hub when the join is accepted. Only the
	// hub goroutine reads or writes it.
	ThreadId string

	// sendBack carries frames destined for this client; drained by the
	// write pump.
	sendBack chan *chatwire.Frame

	hub *Hub
}

// NewUserConn wraps an upgraded websocket connection and starts its
// read and write pumps.
func NewUserConn(conn *websocket.Conn, userId, userName, role string, hub *Hub) *UserConn {
	c := &UserConn{
		conn:     conn,
		UserId:   userId,
		UserName: userName,
		Role:     role,
		sendBack: make(chan *chatwire.Frame, constants.CHANNEL_SIZE),
		hub:      hub,
	}
	go c.readPump()
	go c.writePump()
	return c
}

// Enqueue queues a frame for delivery. A slow consumer that has filled
// its buffer loses the frame; the connection-level ping/pong cycle will
// reap it soon after.
func (c *UserConn) Enqueue(frame *chatwire.Frame) {
	select {
	case c.sendBack <- frame:
	default:
		zap.L().Warn("client send buffer full, dropping frame",
			zap.String("userId", c.UserId), zap.String("event", frame.Event))
	}
}

func (c *UserConn) readPump() {
	defer func() {
		c.hub.Unregister(c)
		c.conn.Close()
	}()

	c.conn.SetReadDeadline(time.Now().Add(constants.PONG_WAIT))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(constants.PONG_WAIT))
		return nil
	})

	for {
		_, raw, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				zap.L().Warn("websocket read error", zap.String("userId", c.UserId), zap.Error(err))
			}
			return
		}

		var frame chatwire.Frame
		if err := json.Unmarshal(raw, &frame); err != nil {
			zap.L().Warn("malformed frame", zap.String("userId", c.UserId), zap.Error(err))
			continue
		}

		switch frame.Event {
		case chatwire.EventJoin:
			var join chatwire.JoinPayload
			if err := json.Unmarshal(frame.Data, &join); err != nil {
				zap.L().Warn("malformed join payload", zap.String("userId", c.UserId), zap.Error(err))
				continue
			}
			c.hub.Register(c, join.ThreadId)

		case chatwire.EventSend:
			var send chatwire.SendPayload
			if err := json.Unmarshal(frame.Data, &send); err != nil {
				zap.L().Warn("malformed send payload", zap.String("userId", c.UserId), zap.Error(err))
				continue
			}
			env := sendEnvelope{
				SenderId:   c.UserId,
				SenderName: c.UserName,
				Payload:    send,
			}
			data, err := json.Marshal(env)
			if err != nil {
				zap.L().Error("marshal send envelope", zap.Error(err))
				continue
			}
			if err := c.hub.broker.Publish(c.hub.ctx, data); err != nil {
				zap.L().Error("publish send", zap.String("userId", c.UserId), zap.Error(err))
				c.ackError(send.CorrelationId, "message could not be accepted, try again")
			}

		default:
			zap.L().Debug("unknown inbound event",
				zap.String("userId", c.UserId), zap.String("event", frame.Event))
		}
	}
}

func (c *UserConn) writePump() {
	ticker := time.NewTicker(constants.PING_PERIOD)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case frame, ok := <-c.sendBack:
			c.conn.SetWriteDeadline(time.Now().Add(constants.WRITE_WAIT))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteJSON(frame); err != nil {
				zap.L().Warn("websocket write error", zap.String("userId", c.UserId), zap.Error(err))
				return
			}
		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(constants.WRITE_WAIT))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// ackError short-circuits a failure ack straight to this client without
// a broker round trip.
func (c *UserConn) ackError(correlationId, msg string) {
	frame, err := chatwire.NewFrame(chatwire.EventAck, chatwire.AckPayload{
		CorrelationId: correlationId,
		Success:       false,
		Error:         msg,
	})
	if err != nil {
		zap.L().Error("marshal ack", zap.Error(err))
		return
	}
	c.Enqueue(frame)
}
