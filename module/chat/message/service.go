package message

import (
	"context"

	"github.com/pkg/errors"

	"github.com/GabrielG71/online-chat/module/chat/model"
	"github.com/GabrielG71/online-chat/service/chat"
	"github.com/GabrielG71/online-chat/tools/safe"
)

var (
	ErrEmptyContent  = errors.New("content is required")
	ErrEmptyReceiver = errors.New("receiverId is required")
)

// Service owns the send path: validate, persist, then fan out the live
// event. Persistence failures surface to the caller; fan-out is best-effort
// (a party without a stream still finds the message in history).
type Service struct {
	store Store
	disp  *chat.Dispatcher
}

func NewService(store Store, disp *chat.Dispatcher) *Service {
	safe.MustNotNil(store, "message store")
	safe.MustNotNil(disp, "dispatcher")
	return &Service{store: store, disp: disp}
}

// Send persists a message and pushes it to both parties' live streams.
func (s *Service) Send(ctx context.Context, senderID, receiverID, content string) (*model.Message, error) {
	if content == "" {
		return nil, ErrEmptyContent
	}
	if receiverID == "" {
		return nil, ErrEmptyReceiver
	}

	msg, err := s.store.Insert(ctx, senderID, receiverID, content)
	if err != nil {
		return nil, err
	}

	s.disp.DeliverMessage(senderID, receiverID, msg)
	return msg, nil
}

// Typing forwards a typing indicator to the receiver's live stream.
func (s *Service) Typing(senderID, receiverID string, isTyping bool) error {
	if receiverID == "" {
		return ErrEmptyReceiver
	}
	s.disp.DeliverTyping(senderID, receiverID, isTyping)
	return nil
}

// History returns the conversation between the caller and the other user,
// oldest first.
func (s *Service) History(ctx context.Context, userID, otherID string) ([]*model.Message, error) {
	if otherID == "" {
		return nil, ErrEmptyReceiver
	}
	return s.store.Conversation(ctx, userID, otherID)
}
