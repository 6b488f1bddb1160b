package message

import (
	"context"
	"sync"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/GabrielG71/online-chat/module/chat/model"
	"github.com/GabrielG71/online-chat/service/chat"
)

type memStore struct {
	mu        sync.Mutex
	messages  []*model.Message
	insertErr error
}

func (m *memStore) Insert(_ context.Context, senderID, receiverID, content string) (*model.Message, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.insertErr != nil {
		return nil, m.insertErr
	}
	msg := &model.Message{
		ID:         "m" + string(rune('1'+len(m.messages))),
		Content:    content,
		SenderID:   senderID,
		ReceiverID: receiverID,
		Sender:     model.Sender{ID: senderID, Name: "Sender " + senderID},
	}
	m.messages = append(m.messages, msg)
	return msg, nil
}

func (m *memStore) Conversation(_ context.Context, userID, otherID string) ([]*model.Message, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*model.Message
	for _, msg := range m.messages {
		if (msg.SenderID == userID && msg.ReceiverID == otherID) ||
			(msg.SenderID == otherID && msg.ReceiverID == userID) {
			out = append(out, msg)
		}
	}
	return out, nil
}

type captureSink struct {
	mu     sync.Mutex
	events []chat.Event
}

func (c *captureSink) WriteEvent(ev chat.Event) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.events = append(c.events, ev)
	return nil
}

func (c *captureSink) Close() error { return nil }

func (c *captureSink) count() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.events)
}

func newServiceUnderTest(store Store) (*Service, *chat.Registry) {
	reg := chat.NewRegistry()
	return NewService(store, chat.NewDispatcher(reg)), reg
}

func TestSendValidates(t *testing.T) {
	svc, _ := newServiceUnderTest(&memStore{})

	_, err := svc.Send(context.Background(), "alice", "bob", "")
	assert.ErrorIs(t, err, ErrEmptyContent)

	_, err = svc.Send(context.Background(), "alice", "", "hi")
	assert.ErrorIs(t, err, ErrEmptyReceiver)
}

func TestSendPersistsAndFansOut(t *testing.T) {
	store := &memStore{}
	svc, reg := newServiceUnderTest(store)

	alice := &captureSink{}
	bob := &captureSink{}
	reg.Register("alice", alice)
	reg.Register("bob", bob)

	msg, err := svc.Send(context.Background(), "alice", "bob", "hello")
	require.NoError(t, err)
	require.NotNil(t, msg)
	assert.Equal(t, "hello", msg.Content)
	assert.Equal(t, "Sender alice", msg.Sender.Name)

	// Both parties got the live event: receiver delivery plus sender echo.
	assert.Equal(t, 1, alice.count())
	assert.Equal(t, 1, bob.count())
	assert.Len(t, store.messages, 1)
}

func TestSendPersistFailureSkipsFanOut(t *testing.T) {
	store := &memStore{insertErr: errors.New("db down")}
	svc, reg := newServiceUnderTest(store)

	bob := &captureSink{}
	reg.Register("bob", bob)

	_, err := svc.Send(context.Background(), "alice", "bob", "hello")
	require.Error(t, err)
	assert.Equal(t, 0, bob.count(), "nothing is dispatched when persistence fails")
}

func TestSendToOfflineReceiverStillPersists(t *testing.T) {
	store := &memStore{}
	svc, _ := newServiceUnderTest(store)

	msg, err := svc.Send(context.Background(), "alice", "bob", "hello")
	require.NoError(t, err)
	require.NotNil(t, msg)
	assert.Len(t, store.messages, 1)

	// The receiver finds it in history later.
	hist, err := svc.History(context.Background(), "bob", "alice")
	require.NoError(t, err)
	require.Len(t, hist, 1)
	assert.Equal(t, "hello", hist[0].Content)
}

func TestTypingValidatesAndRoutes(t *testing.T) {
	svc, reg := newServiceUnderTest(&memStore{})

	assert.ErrorIs(t, svc.Typing("alice", "", true), ErrEmptyReceiver)

	alice := &captureSink{}
	bob := &captureSink{}
	reg.Register("alice", alice)
	reg.Register("bob", bob)

	require.NoError(t, svc.Typing("alice", "bob", true))
	assert.Equal(t, 0, alice.count(), "typing never echoes to the sender")
	assert.Equal(t, 1, bob.count())
}

func TestHistoryRequiresPeer(t *testing.T) {
	svc, _ := newServiceUnderTest(&memStore{})
	_, err := svc.History(context.Background(), "alice", "")
	assert.ErrorIs(t, err, ErrEmptyReceiver)
}
