package chat

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/GabrielG71/online-chat/module/chat/model"
)

func testMessage(id, sender, receiver string) *model.Message {
	return &model.Message{
		ID:         id,
		Content:    "hello",
		SenderID:   sender,
		ReceiverID: receiver,
		Sender:     model.Sender{ID: sender, Name: "Sender"},
	}
}

func TestDeliverMessageEchoesSenderAndReceiver(t *testing.T) {
	reg := NewRegistry()
	disp := NewDispatcher(reg)
	alice := &fakeSink{}
	bob := &fakeSink{}
	reg.Register("alice", alice)
	reg.Register("bob", bob)

	disp.DeliverMessage("alice", "bob", testMessage("m1", "alice", "bob"))

	require.Len(t, alice.snapshot(), 1)
	require.Len(t, bob.snapshot(), 1)
	assert.Equal(t, EventNewMessage, alice.snapshot()[0].Type)
	assert.Equal(t, EventNewMessage, bob.snapshot()[0].Type)
}

func TestDeliverMessageSkipsOfflineReceiver(t *testing.T) {
	reg := NewRegistry()
	disp := NewDispatcher(reg)
	alice := &fakeSink{}
	reg.Register("alice", alice)

	disp.DeliverMessage("alice", "bob", testMessage("m1", "alice", "bob"))

	// Sender still gets the echo; the offline receiver is skipped silently.
	assert.Len(t, alice.snapshot(), 1)
}

func TestDeliverMessageSelfChatSingleDelivery(t *testing.T) {
	reg := NewRegistry()
	disp := NewDispatcher(reg)
	alice := &fakeSink{}
	reg.Register("alice", alice)

	disp.DeliverMessage("alice", "alice", testMessage("m1", "alice", "alice"))

	assert.Len(t, alice.snapshot(), 1)
}

func TestDeliverTypingNeverEchoes(t *testing.T) {
	reg := NewRegistry()
	disp := NewDispatcher(reg)
	alice := &fakeSink{}
	bob := &fakeSink{}
	reg.Register("alice", alice)
	reg.Register("bob", bob)

	disp.DeliverTyping("alice", "bob", true)

	assert.Empty(t, alice.snapshot())
	events := bob.snapshot()
	require.Len(t, events, 1)
	assert.Equal(t, EventTypingStatus, events[0].Type)
	assert.Equal(t, "alice", events[0].SenderID)
	require.NotNil(t, events[0].IsTyping)
	assert.True(t, *events[0].IsTyping)
}

func TestDeliverEvictsOnWriteFailure(t *testing.T) {
	reg := NewRegistry()
	disp := NewDispatcher(reg)
	alice := &fakeSink{}
	broken := &fakeSink{failWrites: true}
	reg.Register("alice", alice)
	reg.Register("bob", broken)

	disp.DeliverMessage("alice", "bob", testMessage("m1", "alice", "bob"))

	// The broken sink is gone; the healthy party still got its event.
	_, ok := reg.Lookup("bob")
	assert.False(t, ok)
	assert.Len(t, alice.snapshot(), 1)

	// Further deliveries to the evicted user are plain skips.
	disp.DeliverTyping("alice", "bob", true)
	assert.Equal(t, 1, reg.Size())
}

func TestConversationAcrossDisconnect(t *testing.T) {
	reg := NewRegistry()
	disp := NewDispatcher(reg)
	a := &fakeSink{}
	b := &fakeSink{}
	reg.Register("a", a)
	reg.Register("b", b)

	disp.DeliverMessage("a", "b", testMessage("m1", "a", "b"))
	require.Len(t, a.snapshot(), 1)
	require.Len(t, b.snapshot(), 1)
	assert.Equal(t, "hello", a.snapshot()[0].Message.(*model.Message).Content)

	// B drops; the registry forgets the entry.
	reg.Unregister("b")
	_, ok := reg.Lookup("b")
	require.False(t, ok)

	// A sends again: only A's stream sees the echo, nothing errors.
	disp.DeliverMessage("a", "b", testMessage("m2", "a", "b"))
	assert.Len(t, a.snapshot(), 2)
	assert.Len(t, b.snapshot(), 1)
}

func TestDispatchIsolationAcrossConversations(t *testing.T) {
	reg := NewRegistry()
	disp := NewDispatcher(reg)
	sinks := map[string]*fakeSink{}
	for _, u := range []string{"u1", "u2", "u3"} {
		s := &fakeSink{}
		sinks[u] = s
		reg.Register(u, s)
	}

	disp.DeliverMessage("u1", "u2", testMessage("m1", "u1", "u2"))

	assert.Len(t, sinks["u1"].snapshot(), 1)
	assert.Len(t, sinks["u2"].snapshot(), 1)
	assert.Empty(t, sinks["u3"].snapshot(), "uninvolved user must see nothing")
}
