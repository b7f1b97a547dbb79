package ws

import (
	"encoding/json"
	"testing"
	"time"

	"podium/internal/model"
)

func newTestConnection(h *Hub, committeeID string) *Connection {
	return &Connection{
		CommitteeID: committeeID,
		Send:        make(chan []byte, 8),
		Hub:         h,
		documents:   make(map[string]bool),
	}
}

func receive(t *testing.T, conn *Connection) Message {
	t.Helper()
	select {
	case data, ok := <-conn.Send:
		if !ok {
			t.Fatal("send channel closed")
		}
		var msg Message
		if err := json.Unmarshal(data, &msg); err != nil {
			t.Fatalf("unmarshal: %v", err)
		}
		return msg
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for message")
	}
	return Message{}
}

func expectSilence(t *testing.T, conn *Connection) {
	t.Helper()
	select {
	case data := <-conn.Send:
		t.Fatalf("unexpected message: %s", data)
	case <-time.After(50 * time.Millisecond):
	}
}

func TestHubRoutesByCommitteeChannel(t *testing.T) {
	h := NewHub()

	subscriber := newTestConnection(h, "c1")
	bystander := newTestConnection(h, "c2")
	h.Register(subscriber)
	h.Register(bystander)

	h.Broadcast("c1", model.ChannelMotions, model.UpdateEvent{Type: model.EventNew, Data: "m1"})

	msg := receive(t, subscriber)
	if msg.Channel != model.ChannelMotions || msg.Event.Type != model.EventNew {
		t.Fatalf("unexpected envelope: %+v", msg)
	}
	expectSilence(t, bystander)
}

func TestHubDocumentFollow(t *testing.T) {
	h := NewHub()

	follower := newTestConnection(h, "c1")
	other := newTestConnection(h, "c1")
	h.Register(follower)
	h.Register(other)

	h.FollowDocument(follower, "doc1")
	h.BroadcastDocument("doc1", model.UpdateEvent{Type: model.EventUpdate, Data: "rev2"})

	msg := receive(t, follower)
	if msg.DocumentID != "doc1" || msg.Channel != model.ChannelDocuments {
		t.Fatalf("unexpected envelope: %+v", msg)
	}
	expectSilence(t, other)

	h.UnfollowDocument(follower, "doc1")
	h.BroadcastDocument("doc1", model.UpdateEvent{Type: model.EventUpdate, Data: "rev3"})
	expectSilence(t, follower)
}

func TestHubDisconnectCommittee(t *testing.T) {
	h := NewHub()

	conn := newTestConnection(h, "c1")
	h.Register(conn)
	h.DisconnectCommittee("c1")

	select {
	case _, ok := <-conn.Send:
		if ok {
			t.Fatal("expected closed channel, got message")
		}
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for close")
	}

	// A dropped connection no longer receives committee traffic.
	h.Broadcast("c1", model.ChannelCommittee, model.UpdateEvent{Type: model.EventPartial})
}
