package chat

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/GabrielG71/online-chat/module/chat/model"
)

func TestEncodeFraming(t *testing.T) {
	frame, err := NewPingEvent().Encode()
	require.NoError(t, err)

	s := string(frame)
	assert.True(t, strings.HasPrefix(s, "data: "), "frame=%q", s)
	assert.True(t, strings.HasSuffix(s, "\n\n"), "frame=%q", s)
	// Exactly one payload line per frame.
	assert.NotContains(t, strings.TrimSuffix(s, "\n\n"), "\n")
}

func TestEncodeConnected(t *testing.T) {
	frame, err := NewConnectedEvent("alice").Encode()
	require.NoError(t, err)

	var got map[string]any
	body := strings.TrimSuffix(strings.TrimPrefix(string(frame), "data: "), "\n\n")
	require.NoError(t, json.Unmarshal([]byte(body), &got))

	assert.Equal(t, "connected", got["type"])
	assert.Equal(t, "alice", got["userId"])
	assert.NotZero(t, got["timestamp"])
	// Unset fields are omitted from the wire form.
	assert.NotContains(t, got, "message")
	assert.NotContains(t, got, "isTyping")
}

func TestEncodeNewMessage(t *testing.T) {
	msg := &model.Message{
		ID:         "m1",
		Content:    "hi",
		SenderID:   "alice",
		ReceiverID: "bob",
		Sender:     model.Sender{ID: "alice", Name: "Alice"},
	}
	frame, err := NewMessageEvent(msg).Encode()
	require.NoError(t, err)

	var got struct {
		Type    string         `json:"type"`
		Message *model.Message `json:"message"`
	}
	body := strings.TrimSuffix(strings.TrimPrefix(string(frame), "data: "), "\n\n")
	require.NoError(t, json.Unmarshal([]byte(body), &got))

	assert.Equal(t, "new_message", got.Type)
	require.NotNil(t, got.Message)
	assert.Equal(t, "m1", got.Message.ID)
	assert.Equal(t, "Alice", got.Message.Sender.Name)
}

func TestEncodeTypingCarriesFalse(t *testing.T) {
	frame, err := NewTypingEvent("alice", false).Encode()
	require.NoError(t, err)

	body := strings.TrimSuffix(strings.TrimPrefix(string(frame), "data: "), "\n\n")
	var got map[string]any
	require.NoError(t, json.Unmarshal([]byte(body), &got))

	// isTyping=false must survive serialization; it is a real state change.
	v, ok := got["isTyping"]
	require.True(t, ok)
	assert.Equal(t, false, v)
	assert.Equal(t, "alice", got["senderId"])
}

func TestEncodeErrorReason(t *testing.T) {
	frame, err := NewErrorEvent("stream failed").Encode()
	require.NoError(t, err)

	body := strings.TrimSuffix(strings.TrimPrefix(string(frame), "data: "), "\n\n")
	var got map[string]any
	require.NoError(t, json.Unmarshal([]byte(body), &got))
	assert.Equal(t, "error", got["type"])
	assert.Equal(t, "stream failed", got["message"])
}
