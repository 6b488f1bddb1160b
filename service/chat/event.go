package chat

import (
	"encoding/json"
	"time"

	"github.com/GabrielG71/online-chat/module/chat/model"
)

// EventType enumerates the live-update event kinds carried on a stream.
type EventType string

const (
	EventConnected    EventType = "connected"
	EventNewMessage   EventType = "new_message"
	EventTypingStatus EventType = "typing_status"
	EventPing         EventType = "ping"
	EventTimeout      EventType = "timeout"
	EventError        EventType = "error"
)

// Event is the transient wire unit pushed to a sink. Never persisted:
// serialized, written, discarded. The Message field carries a
// *model.Message for new_message and an error string for error events.
type Event struct {
	Type      EventType `json:"type"`
	Timestamp int64     `json:"timestamp,omitempty"`
	Message   any       `json:"message,omitempty"`
	SenderID  string    `json:"senderId,omitempty"`
	IsTyping  *bool     `json:"isTyping,omitempty"`
	UserID    string    `json:"userId,omitempty"`
}

func NewConnectedEvent(userID string) Event {
	return Event{Type: EventConnected, UserID: userID, Timestamp: time.Now().UnixMilli()}
}

func NewMessageEvent(msg *model.Message) Event {
	return Event{Type: EventNewMessage, Message: msg}
}

func NewTypingEvent(senderID string, isTyping bool) Event {
	return Event{Type: EventTypingStatus, SenderID: senderID, IsTyping: &isTyping}
}

func NewPingEvent() Event {
	return Event{Type: EventPing, Timestamp: time.Now().UnixMilli()}
}

func NewTimeoutEvent() Event {
	return Event{Type: EventTimeout, Timestamp: time.Now().UnixMilli()}
}

func NewErrorEvent(reason string) Event {
	return Event{Type: EventError, Message: reason}
}

// Encode renders the SSE frame for the event: `data: <JSON>\n\n`.
func (e Event) Encode() ([]byte, error) {
	body, err := json.Marshal(e)
	if err != nil {
		return nil, err
	}
	frame := make([]byte, 0, len(body)+8)
	frame = append(frame, "data: "...)
	frame = append(frame, body...)
	frame = append(frame, '\n', '\n')
	return frame, nil
}
