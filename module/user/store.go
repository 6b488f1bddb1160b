package user

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/pkg/errors"

	"github.com/GabrielG71/online-chat/module/user/model"
	"github.com/GabrielG71/online-chat/service/storage"
	"github.com/GabrielG71/online-chat/tools/ids"
)

// ErrNotFound reports an absent user.
var ErrNotFound = errors.New("user not found")

// Store persists user accounts.
type Store interface {
	Create(ctx context.Context, name, email, passwordHash string) (*model.User, error)
	FindByEmail(ctx context.Context, email string) (*model.User, error)
	ListOthers(ctx context.Context, userID string) ([]*model.User, error)
}

type pgStore struct{}

// NewStore returns the postgres-backed user store.
func NewStore() Store {
	return &pgStore{}
}

func (s *pgStore) Create(ctx context.Context, name, email, passwordHash string) (*model.User, error) {
	pool := storage.Pool()
	if pool == nil {
		return nil, errors.New("postgres not initialized")
	}

	u := &model.User{
		ID:           ids.GenerateString(),
		Name:         name,
		Email:        email,
		PasswordHash: passwordHash,
		CreatedAt:    time.Now().UTC(),
	}
	_, err := pool.Exec(ctx, `
		INSERT INTO users (id, name, email, password, created_at)
		VALUES ($1, $2, $3, $4, $5)`,
		u.ID, u.Name, u.Email, u.PasswordHash, u.CreatedAt)
	if err != nil {
		return nil, errors.Wrap(err, "insert user")
	}
	return u, nil
}

func (s *pgStore) FindByEmail(ctx context.Context, email string) (*model.User, error) {
	pool := storage.Pool()
	if pool == nil {
		return nil, errors.New("postgres not initialized")
	}

	u := &model.User{}
	err := pool.QueryRow(ctx, `
		SELECT id, name, email, password, created_at
		FROM users WHERE email = $1`, email).
		Scan(&u.ID, &u.Name, &u.Email, &u.PasswordHash, &u.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, errors.Wrap(err, "find user")
	}
	return u, nil
}

func (s *pgStore) ListOthers(ctx context.Context, userID string) ([]*model.User, error) {
	pool := storage.Pool()
	if pool == nil {
		return nil, errors.New("postgres not initialized")
	}

	rows, err := pool.Query(ctx, `
		SELECT id, name, email, created_at
		FROM users WHERE id <> $1 ORDER BY name ASC`, userID)
	if err != nil {
		return nil, errors.Wrap(err, "list users")
	}
	defer rows.Close()

	var out []*model.User
	for rows.Next() {
		u := &model.User{}
		if err := rows.Scan(&u.ID, &u.Name, &u.Email, &u.CreatedAt); err != nil {
			return nil, errors.Wrap(err, "scan user")
		}
		out = append(out, u)
	}
	return out, errors.Wrap(rows.Err(), "user rows")
}
