package model

import "time"

// Sender is the subset of the user record embedded in every message,
// enough for the peer to render a name without a second lookup.
type Sender struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// Message is the persisted direct-message record. Immutable after creation;
// queried by the (sender, receiver) conversation pair.
type Message struct {
	ID         string    `json:"id"`
	Content    string    `json:"content"`
	SenderID   string    `json:"senderId"`
	ReceiverID string    `json:"receiverId"`
	CreatedAt  time.Time `json:"createdAt"`
	Sender     Sender    `json:"sender"`
}
