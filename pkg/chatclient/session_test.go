package chatclient

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"auditlink_chat/pkg/chatwire"

	"github.com/gorilla/websocket"
)

const testToken = "test-token"

// fakeChatServer speaks just enough of the wire protocol to drive a
// Session: it authenticates the token query param, answers the join
// with a scripted history and hands every later frame to the test.
type fakeChatServer struct {
	t        *testing.T
	server   *httptest.Server
	upgrader websocket.Upgrader

	history []chatwire.Message

	mu   sync.Mutex
	conn *websocket.Conn

	sends chan chatwire.SendPayload
}

func newFakeChatServer(t *testing.T, history []chatwire.Message) *fakeChatServer {
	f := &fakeChatServer{
		t:       t,
		history: history,
		sends:   make(chan chatwire.SendPayload, 16),
	}
	f.server = httptest.NewServer(http.HandlerFunc(f.handle))
	t.Cleanup(f.server.Close)
	return f
}

func (f *fakeChatServer) handle(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/ws/chat" {
		http.NotFound(w, r)
		return
	}
	if r.URL.Query().Get("token") != testToken {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}
	conn, err := f.upgrader.Upgrade(w, r, nil)
	if err != nil {
		f.t.Errorf("upgrade: %v", err)
		return
	}
	f.mu.Lock()
	f.conn = conn
	f.mu.Unlock()

	for {
		var frame chatwire.Frame
		if err := conn.ReadJSON(&frame); err != nil {
			return
		}
		switch frame.Event {
		case chatwire.EventJoin:
			var join chatwire.JoinPayload
			if err := json.Unmarshal(frame.Data, &join); err != nil {
				f.t.Errorf("bad join payload: %v", err)
				return
			}
			f.push(chatwire.EventHistory, chatwire.HistoryPayload{
				ThreadId: join.ThreadId,
				Messages: f.history,
			})
		case chatwire.EventSend:
			var send chatwire.SendPayload
			if err := json.Unmarshal(frame.Data, &send); err != nil {
				f.t.Errorf("bad send payload: %v", err)
				return
			}
			f.sends <- send
		}
	}
}

// push writes one frame to the connected client.
func (f *fakeChatServer) push(event string, data any) {
	frame, err := chatwire.NewFrame(event, data)
	if err != nil {
		f.t.Errorf("marshal %s frame: %v", event, err)
		return
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.conn == nil {
		f.t.Error("push before client connected")
		return
	}
	if err := f.conn.WriteJSON(frame); err != nil {
		f.t.Errorf("write %s frame: %v", event, err)
	}
}

func (f *fakeChatServer) dropConnection() {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.conn != nil {
		f.conn.Close()
	}
}

func (f *fakeChatServer) awaitSend(t *testing.T) chatwire.SendPayload {
	t.Helper()
	select {
	case send := <-f.sends:
		return send
	case <-time.After(2 * time.Second):
		t.Fatal("no send frame arrived")
		return chatwire.SendPayload{}
	}
}

func connectedSession(t *testing.T, f *fakeChatServer, user User) *Session {
	t.Helper()
	sess, err := NewSession(Config{
		ServerURL:   f.server.URL,
		ThreadID:    testThread,
		User:        user,
		TokenSource: StaticToken(testToken),
	})
	if err != nil {
		t.Fatalf("new session: %v", err)
	}
	if err := sess.Connect(context.Background()); err != nil {
		t.Fatalf("connect: %v", err)
	}
	t.Cleanup(sess.Disconnect)
	return sess
}

// waitFor polls cond until it holds or the deadline passes. The event
// pump is asynchronous, so assertions about delivered state need it.
func waitFor(t *testing.T, cond func() bool, desc string) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("timed out waiting for %s", desc)
}

func TestConnectRejectsBadToken(t *testing.T) {
	f := newFakeChatServer(t, nil)

	sess, err := NewSession(Config{
		ServerURL:   f.server.URL,
		ThreadID:    testThread,
		User:        alice,
		TokenSource: StaticToken("wrong"),
	})
	if err != nil {
		t.Fatalf("new session: %v", err)
	}
	if err := sess.Connect(context.Background()); err != ErrUnauthorized {
		t.Fatalf("connect err = %v, want ErrUnauthorized", err)
	}
	if sess.State() != StateDisconnected {
		t.Fatalf("state = %q after rejected connect", sess.State())
	}
}

func TestConnectHydratesHistory(t *testing.T) {
	f := newFakeChatServer(t, []chatwire.Message{
		{Id: "M1", ThreadId: testThread, SenderId: bob.ID, Content: "earlier"},
		{Id: "M2", ThreadId: testThread, SenderId: alice.ID, Content: "mine earlier"},
	})
	sess := connectedSession(t, f, alice)

	if sess.State() != StateConnected {
		t.Fatalf("state = %q, want connected", sess.State())
	}
	waitFor(t, func() bool { return len(sess.Messages()) == 2 }, "history hydration")

	msgs := sess.Messages()
	if msgs[0].ID != "M1" || msgs[1].ID != "M2" {
		t.Fatalf("history order = [%s %s]", msgs[0].ID, msgs[1].ID)
	}
}

func TestSendReconcilesOnAck(t *testing.T) {
	f := newFakeChatServer(t, nil)
	sess := connectedSession(t, f, alice)

	provisional, err := sess.SendText("hello")
	if err != nil {
		t.Fatalf("send: %v", err)
	}

	send := f.awaitSend(t)
	if send.CorrelationId != provisional.ID {
		t.Fatalf("correlation id = %q, want %q", send.CorrelationId, provisional.ID)
	}
	if send.Content != "hello" || send.ThreadId != testThread {
		t.Fatalf("send payload = %+v", send)
	}

	confirmed := chatwire.Message{
		Id: "M10", ThreadId: testThread, SenderId: alice.ID,
		SenderName: alice.Name, Content: "hello", SentAt: time.Now(),
	}
	f.push(chatwire.EventAck, chatwire.AckPayload{
		CorrelationId: send.CorrelationId,
		Success:       true,
		Message:       &confirmed,
	})
	// The echo the server broadcasts to the room must not duplicate.
	f.push(chatwire.EventMessage, confirmed)

	waitFor(t, func() bool {
		msgs := sess.Messages()
		return len(msgs) == 1 && msgs[0].ID == "M10" && msgs[0].Status == StatusSent
	}, "ack reconciliation")
}

func TestSendRejectsEmptyText(t *testing.T) {
	f := newFakeChatServer(t, nil)
	sess := connectedSession(t, f, alice)

	if _, err := sess.SendText("   "); err == nil {
		t.Fatal("blank send accepted")
	}
	if len(sess.Messages()) != 0 {
		t.Fatal("blank send left a timeline entry")
	}
}

func TestFailedAckThenRetry(t *testing.T) {
	f := newFakeChatServer(t, nil)
	sess := connectedSession(t, f, alice)

	provisional, err := sess.SendText("flaky")
	if err != nil {
		t.Fatalf("send: %v", err)
	}
	first := f.awaitSend(t)
	f.push(chatwire.EventAck, chatwire.AckPayload{
		CorrelationId: first.CorrelationId,
		Success:       false,
		Error:         "thread is closed",
	})
	waitFor(t, func() bool {
		msgs := sess.Messages()
		return len(msgs) == 1 && msgs[0].Status == StatusFailed
	}, "failed ack")

	retried, err := sess.Retry(provisional.ID)
	if err != nil {
		t.Fatalf("retry: %v", err)
	}
	if retried.ID == provisional.ID {
		t.Fatal("retry reused the failed id")
	}

	second := f.awaitSend(t)
	if second.CorrelationId != retried.ID {
		t.Fatalf("retry correlation id = %q, want %q", second.CorrelationId, retried.ID)
	}
	if second.Content != "flaky" {
		t.Fatalf("retry content = %q", second.Content)
	}
}

func TestInboundCounterpartMessageAppends(t *testing.T) {
	f := newFakeChatServer(t, nil)
	sess := connectedSession(t, f, alice)

	f.push(chatwire.EventMessage, chatwire.Message{
		Id: "M20", ThreadId: testThread, SenderId: bob.ID,
		SenderName: bob.Name, Content: "from bob", SentAt: time.Now(),
	})

	waitFor(t, func() bool {
		msgs := sess.Messages()
		return len(msgs) == 1 && msgs[0].SenderID == bob.ID
	}, "counterpart message")
}

func TestPresenceFollowsServerReports(t *testing.T) {
	f := newFakeChatServer(t, nil)
	sess := connectedSession(t, f, alice)

	if sess.CounterpartOnline() {
		t.Fatal("counterpart online before any report")
	}

	f.push(chatwire.EventPresence, chatwire.PresencePayload{
		ThreadId: testThread, UserId: bob.ID, Online: true,
	})
	waitFor(t, sess.CounterpartOnline, "counterpart online")

	// Reports about ourselves must not flip the counterpart flag.
	f.push(chatwire.EventPresence, chatwire.PresencePayload{
		ThreadId: testThread, UserId: alice.ID, Online: false,
	})
	time.Sleep(50 * time.Millisecond)
	if !sess.CounterpartOnline() {
		t.Fatal("own presence report changed counterpart state")
	}

	f.push(chatwire.EventPresence, chatwire.PresencePayload{
		ThreadId: testThread, UserId: bob.ID, Online: false,
	})
	waitFor(t, func() bool { return !sess.CounterpartOnline() }, "counterpart offline")
}

// Losing the transport resets presence to offline and fails every
// message still waiting for its ack.
func TestConnectionLossResetsPresenceAndFailsPending(t *testing.T) {
	f := newFakeChatServer(t, nil)
	sess := connectedSession(t, f, alice)

	f.push(chatwire.EventPresence, chatwire.PresencePayload{
		ThreadId: testThread, UserId: bob.ID, Online: true,
	})
	waitFor(t, sess.CounterpartOnline, "counterpart online")

	if _, err := sess.SendText("never acked"); err != nil {
		t.Fatalf("send: %v", err)
	}
	f.awaitSend(t)

	f.dropConnection()

	waitFor(t, func() bool { return sess.State() == StateDisconnected }, "disconnect")
	if sess.CounterpartOnline() {
		t.Fatal("presence survived the disconnect")
	}
	msgs := sess.Messages()
	if len(msgs) != 1 || msgs[0].Status != StatusFailed {
		t.Fatalf("pending entry after disconnect = %+v", msgs)
	}
	if msgs[0].Error != "connection lost" {
		t.Fatalf("failure reason = %q", msgs[0].Error)
	}

	if _, err := sess.SendText("while offline"); err == nil {
		t.Fatal("send accepted while disconnected")
	}
}

func TestDisconnectIsIdempotentAndStopsCallbacks(t *testing.T) {
	f := newFakeChatServer(t, nil)

	var mu sync.Mutex
	updates := 0
	sess, err := NewSession(Config{
		ServerURL:   f.server.URL,
		ThreadID:    testThread,
		User:        alice,
		TokenSource: StaticToken(testToken),
		OnUpdate: func() {
			mu.Lock()
			updates++
			mu.Unlock()
		},
	})
	if err != nil {
		t.Fatalf("new session: %v", err)
	}
	if err := sess.Connect(context.Background()); err != nil {
		t.Fatalf("connect: %v", err)
	}

	sess.Disconnect()
	sess.Disconnect()

	mu.Lock()
	settled := updates
	mu.Unlock()

	// Frames pushed after Disconnect returned must be ignored; the write
	// itself may fail since the socket is gone, which is fine.
	f.mu.Lock()
	if f.conn != nil {
		frame, _ := chatwire.NewFrame(chatwire.EventPresence, chatwire.PresencePayload{
			ThreadId: testThread, UserId: bob.ID, Online: true,
		})
		_ = f.conn.WriteJSON(frame)
	}
	f.mu.Unlock()
	time.Sleep(50 * time.Millisecond)

	mu.Lock()
	after := updates
	mu.Unlock()
	if after != settled {
		t.Fatalf("updates fired after Disconnect: %d -> %d", settled, after)
	}
	if sess.CounterpartOnline() {
		t.Fatal("presence changed after Disconnect")
	}
}
