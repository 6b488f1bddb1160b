package message

import (
	"context"
	"time"

	"github.com/pkg/errors"

	"github.com/GabrielG71/online-chat/module/chat/model"
	"github.com/GabrielG71/online-chat/service/storage"
	"github.com/GabrielG71/online-chat/tools/ids"
)

// Store persists message records and answers conversation queries.
type Store interface {
	Insert(ctx context.Context, senderID, receiverID, content string) (*model.Message, error)
	Conversation(ctx context.Context, userID, otherID string) ([]*model.Message, error)
}

type pgStore struct{}

// NewStore returns the postgres-backed message store. Requires
// storage.InitPostgres to have run.
func NewStore() Store {
	return &pgStore{}
}

func (s *pgStore) Insert(ctx context.Context, senderID, receiverID, content string) (*model.Message, error) {
	pool := storage.Pool()
	if pool == nil {
		return nil, errors.New("postgres not initialized")
	}

	msg := &model.Message{
		ID:         ids.GenerateString(),
		Content:    content,
		SenderID:   senderID,
		ReceiverID: receiverID,
		CreatedAt:  time.Now().UTC(),
	}

	row := pool.QueryRow(ctx, `
		WITH ins AS (
			INSERT INTO messages (id, content, sender_id, receiver_id, created_at)
			VALUES ($1, $2, $3, $4, $5)
		)
		SELECT name FROM users WHERE id = $3`,
		msg.ID, msg.Content, msg.SenderID, msg.ReceiverID, msg.CreatedAt)

	var senderName string
	if err := row.Scan(&senderName); err != nil {
		return nil, errors.Wrap(err, "insert message")
	}
	msg.Sender = model.Sender{ID: senderID, Name: senderName}
	return msg, nil
}

func (s *pgStore) Conversation(ctx context.Context, userID, otherID string) ([]*model.Message, error) {
	pool := storage.Pool()
	if pool == nil {
		return nil, errors.New("postgres not initialized")
	}

	rows, err := pool.Query(ctx, `
		SELECT m.id, m.content, m.sender_id, m.receiver_id, m.created_at, u.name
		FROM messages m
		JOIN users u ON u.id = m.sender_id
		WHERE (m.sender_id = $1 AND m.receiver_id = $2)
		   OR (m.sender_id = $2 AND m.receiver_id = $1)
		ORDER BY m.created_at ASC`,
		userID, otherID)
	if err != nil {
		return nil, errors.Wrap(err, "query conversation")
	}
	defer rows.Close()

	var out []*model.Message
	for rows.Next() {
		m := &model.Message{}
		if err := rows.Scan(&m.ID, &m.Content, &m.SenderID, &m.ReceiverID, &m.CreatedAt, &m.Sender.Name); err != nil {
			return nil, errors.Wrap(err, "scan message")
		}
		m.Sender.ID = m.SenderID
		out = append(out, m)
	}
	return out, errors.Wrap(rows.Err(), "conversation rows")
}
