package chatclient

import (
	"strings"
	"testing"
	"time"

	"auditlink_chat/pkg/chatwire"
)

const (
	testThread = "T123"
)

var (
	alice = User{ID: "U_alice", Name: "Alice"}
	bob   = User{ID: "U_bob", Name: "Bob"}
)

func ackSuccess(correlationID, permanentID, senderID, content string) chatwire.AckPayload {
	return chatwire.AckPayload{
		CorrelationId: correlationID,
		Success:       true,
		Message: &chatwire.Message{
			Id:         permanentID,
			ThreadId:   testThread,
			SenderId:   senderID,
			SenderName: "Alice",
			Type:       chatwire.MessageTypeText,
			Content:    content,
			SentAt:     time.Now(),
		},
	}
}

func ackFailure(correlationID, reason string) chatwire.AckPayload {
	return chatwire.AckPayload{CorrelationId: correlationID, Success: false, Error: reason}
}

func TestAppendOutgoingVisibleImmediately(t *testing.T) {
	s := NewMessageStore(nil)

	msg := s.AppendOutgoing(testThread, alice, chatwire.MessageTypeText, "hello", "")

	if !strings.HasPrefix(msg.ID, "temp_") {
		t.Fatalf("provisional id = %q, want temp_ prefix", msg.ID)
	}
	if msg.Status != StatusSending {
		t.Fatalf("status = %q, want %q", msg.Status, StatusSending)
	}
	snap := s.Snapshot()
	if len(snap) != 1 || snap[0].ID != msg.ID {
		t.Fatalf("snapshot = %+v, want the provisional entry", snap)
	}
}

func TestIdenticalContentProducesDistinctEntries(t *testing.T) {
	s := NewMessageStore(nil)

	first := s.AppendOutgoing(testThread, alice, chatwire.MessageTypeText, "same", "")
	second := s.AppendOutgoing(testThread, alice, chatwire.MessageTypeText, "same", "")

	if first.ID == second.ID {
		t.Fatalf("two sends share id %q", first.ID)
	}
	if s.Len() != 2 {
		t.Fatalf("len = %d, want 2", s.Len())
	}
}

// Acks are matched by the echoed correlation id, so they reconcile the
// right entries even when the server answers out of order.
func TestReconcileOutOfOrderAcks(t *testing.T) {
	s := NewMessageStore(nil)

	a := s.AppendOutgoing(testThread, alice, chatwire.MessageTypeText, "A", "")
	b := s.AppendOutgoing(testThread, alice, chatwire.MessageTypeText, "B", "")

	// B's ack lands first.
	if !s.Reconcile(b.ID, ackSuccess(b.ID, "M2", alice.ID, "B")) {
		t.Fatal("reconcile of B returned false")
	}
	if !s.Reconcile(a.ID, ackSuccess(a.ID, "M1", alice.ID, "A")) {
		t.Fatal("reconcile of A returned false")
	}

	snap := s.Snapshot()
	if snap[0].ID != "M1" || snap[0].Content != "A" {
		t.Fatalf("first entry = %+v, want M1/A", snap[0])
	}
	if snap[1].ID != "M2" || snap[1].Content != "B" {
		t.Fatalf("second entry = %+v, want M2/B", snap[1])
	}
	for i, m := range snap {
		if m.Status != StatusSent {
			t.Fatalf("entry %d status = %q, want sent", i, m.Status)
		}
	}
}

func TestReconcilePreservesPosition(t *testing.T) {
	s := NewMessageStore(nil)

	mine := s.AppendOutgoing(testThread, alice, chatwire.MessageTypeText, "mine", "")
	s.MergeInbound(chatwire.Message{
		Id: "M9", ThreadId: testThread, SenderId: bob.ID, SenderName: bob.Name,
		Content: "theirs", SentAt: time.Now(),
	}, alice.ID)

	s.Reconcile(mine.ID, ackSuccess(mine.ID, "M10", alice.ID, "mine"))

	snap := s.Snapshot()
	if snap[0].ID != "M10" {
		t.Fatalf("confirmed entry moved: order = [%s %s]", snap[0].ID, snap[1].ID)
	}
}

func TestReconcileUnknownAndDuplicateAcksAreNoOps(t *testing.T) {
	s := NewMessageStore(nil)

	if s.Reconcile("temp_gone", ackSuccess("temp_gone", "M1", alice.ID, "x")) {
		t.Fatal("reconcile of unknown id reported a change")
	}

	msg := s.AppendOutgoing(testThread, alice, chatwire.MessageTypeText, "hi", "")
	if !s.Reconcile(msg.ID, ackSuccess(msg.ID, "M1", alice.ID, "hi")) {
		t.Fatal("first reconcile returned false")
	}
	// The provisional id is gone now; a replayed ack must change nothing.
	if s.Reconcile(msg.ID, ackFailure(msg.ID, "late failure")) {
		t.Fatal("replayed ack reported a change")
	}
	if got := s.Snapshot()[0]; got.Status != StatusSent || got.ID != "M1" {
		t.Fatalf("entry after replayed ack = %+v", got)
	}
}

func TestReconcileFailureKeepsEntryVisible(t *testing.T) {
	s := NewMessageStore(nil)

	msg := s.AppendOutgoing(testThread, alice, chatwire.MessageTypeText, "hi", "")
	s.Reconcile(msg.ID, ackFailure(msg.ID, "thread is closed"))

	got := s.Snapshot()[0]
	if got.Status != StatusFailed {
		t.Fatalf("status = %q, want failed", got.Status)
	}
	if got.Error != "thread is closed" {
		t.Fatalf("error = %q", got.Error)
	}
	if got.ID != msg.ID {
		t.Fatalf("failed entry changed id: %q -> %q", msg.ID, got.ID)
	}
}

func TestReconcileFailureDefaultsReason(t *testing.T) {
	s := NewMessageStore(nil)

	msg := s.AppendOutgoing(testThread, alice, chatwire.MessageTypeText, "hi", "")
	s.Reconcile(msg.ID, ackFailure(msg.ID, ""))

	if got := s.Snapshot()[0].Error; got == "" {
		t.Fatal("failed entry has no error text")
	}
}

func TestMergeInboundSuppressesOwnEcho(t *testing.T) {
	s := NewMessageStore(nil)

	msg := s.AppendOutgoing(testThread, alice, chatwire.MessageTypeText, "hello", "")
	s.Reconcile(msg.ID, ackSuccess(msg.ID, "M1", alice.ID, "hello"))

	// The server broadcasts to the whole room, sender included.
	echoed := s.MergeInbound(chatwire.Message{
		Id: "M1", ThreadId: testThread, SenderId: alice.ID, Content: "hello",
	}, alice.ID)

	if echoed {
		t.Fatal("own echo was merged")
	}
	if s.Len() != 1 {
		t.Fatalf("len = %d after echo, want 1", s.Len())
	}
}

func TestMergeInboundSuppressesDuplicates(t *testing.T) {
	s := NewMessageStore(nil)

	in := chatwire.Message{Id: "M5", ThreadId: testThread, SenderId: bob.ID, Content: "yo"}
	if !s.MergeInbound(in, alice.ID) {
		t.Fatal("first merge rejected")
	}
	if s.MergeInbound(in, alice.ID) {
		t.Fatal("duplicate merge accepted")
	}
	if s.Len() != 1 {
		t.Fatalf("len = %d, want 1", s.Len())
	}
}

// A retry is a new send: the failed entry is removed and a fresh
// provisional one is appended at the end, so the list length holds.
func TestRetryAppendsNewEntryAtEnd(t *testing.T) {
	s := NewMessageStore(nil)

	failed := s.AppendOutgoing(testThread, alice, chatwire.MessageTypeText, "try me", "")
	s.Reconcile(failed.ID, ackFailure(failed.ID, "boom"))
	s.MergeInbound(chatwire.Message{Id: "M7", ThreadId: testThread, SenderId: bob.ID, Content: "later"}, alice.ID)

	before := s.Len()
	fresh, ok := s.Retry(failed.ID)
	if !ok {
		t.Fatal("retry returned false")
	}
	if fresh.ID == failed.ID {
		t.Fatal("retry reused the failed id")
	}
	if fresh.Status != StatusSending || fresh.Content != "try me" {
		t.Fatalf("retried entry = %+v", fresh)
	}
	if s.Len() != before {
		t.Fatalf("len changed %d -> %d across retry", before, s.Len())
	}
	snap := s.Snapshot()
	if snap[len(snap)-1].ID != fresh.ID {
		t.Fatal("retried entry is not last")
	}
	if snap[0].ID != "M7" {
		t.Fatalf("remaining entry = %q, want M7", snap[0].ID)
	}
	// The index must have been rebuilt after the removal shift.
	if !s.Reconcile(fresh.ID, ackSuccess(fresh.ID, "M8", alice.ID, "try me")) {
		t.Fatal("reconcile of retried entry failed")
	}
}

func TestRetryRequiresFailedStatus(t *testing.T) {
	s := NewMessageStore(nil)

	pending := s.AppendOutgoing(testThread, alice, chatwire.MessageTypeText, "pending", "")
	if _, ok := s.Retry(pending.ID); ok {
		t.Fatal("retried an entry still sending")
	}
	if _, ok := s.Retry("M404"); ok {
		t.Fatal("retried an unknown id")
	}
}

func TestFailPendingOnlyTouchesSending(t *testing.T) {
	s := NewMessageStore(nil)

	sent := s.AppendOutgoing(testThread, alice, chatwire.MessageTypeText, "one", "")
	s.Reconcile(sent.ID, ackSuccess(sent.ID, "M1", alice.ID, "one"))
	s.AppendOutgoing(testThread, alice, chatwire.MessageTypeText, "two", "")
	s.AppendOutgoing(testThread, alice, chatwire.MessageTypeText, "three", "")

	if n := s.FailPending("connection lost"); n != 2 {
		t.Fatalf("failed %d entries, want 2", n)
	}
	snap := s.Snapshot()
	if snap[0].Status != StatusSent {
		t.Fatal("confirmed entry was failed")
	}
	for _, m := range snap[1:] {
		if m.Status != StatusFailed || m.Error != "connection lost" {
			t.Fatalf("pending entry = %+v", m)
		}
	}
}

func TestHydrateReplacesTimeline(t *testing.T) {
	s := NewMessageStore(nil)
	s.AppendOutgoing(testThread, alice, chatwire.MessageTypeText, "stale", "")

	s.Hydrate([]chatwire.Message{
		{Id: "M1", ThreadId: testThread, SenderId: bob.ID, Content: "a"},
		{Id: "M2", ThreadId: testThread, SenderId: alice.ID, Content: "b"},
		{Id: "M2", ThreadId: testThread, SenderId: alice.ID, Content: "b again"},
	})

	snap := s.Snapshot()
	if len(snap) != 2 {
		t.Fatalf("len = %d, want 2 (duplicate id dropped)", len(snap))
	}
	if snap[0].ID != "M1" || snap[1].ID != "M2" {
		t.Fatalf("order = [%s %s]", snap[0].ID, snap[1].ID)
	}
}

// Full happy path: send, ack, server echo.
func TestSendLifecycleHappyPath(t *testing.T) {
	s := NewMessageStore(nil)

	msg := s.AppendOutgoing(testThread, alice, chatwire.MessageTypeText, "hello bob", "")
	if s.Snapshot()[0].Status != StatusSending {
		t.Fatal("entry not visible as sending")
	}

	s.Reconcile(msg.ID, ackSuccess(msg.ID, "M100", alice.ID, "hello bob"))
	got := s.Snapshot()[0]
	if got.ID != "M100" || got.Status != StatusSent {
		t.Fatalf("after ack = %+v", got)
	}

	s.MergeInbound(chatwire.Message{Id: "M100", ThreadId: testThread, SenderId: alice.ID, Content: "hello bob"}, alice.ID)
	if s.Len() != 1 {
		t.Fatalf("len = %d after echo, want 1", s.Len())
	}
}

// Full failure path: send, failed ack, retry, success.
func TestSendLifecycleFailureAndRetry(t *testing.T) {
	s := NewMessageStore(nil)

	first := s.AppendOutgoing(testThread, alice, chatwire.MessageTypeText, "flaky", "")
	s.Reconcile(first.ID, ackFailure(first.ID, "temporarily unavailable"))

	second, ok := s.Retry(first.ID)
	if !ok {
		t.Fatal("retry failed")
	}
	s.Reconcile(second.ID, ackSuccess(second.ID, "M200", alice.ID, "flaky"))

	snap := s.Snapshot()
	if len(snap) != 1 {
		t.Fatalf("len = %d, want 1", len(snap))
	}
	if snap[0].ID != "M200" || snap[0].Status != StatusSent || snap[0].Content != "flaky" {
		t.Fatalf("final entry = %+v", snap[0])
	}
}
