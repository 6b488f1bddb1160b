package user

import (
	"context"
	"time"

	"github.com/pkg/errors"
	"golang.org/x/crypto/bcrypt"

	"github.com/GabrielG71/online-chat/global"
	"github.com/GabrielG71/online-chat/module/user/model"
	toolsec "github.com/GabrielG71/online-chat/tools/security"
)

var (
	ErrMissingFields      = errors.New("name, email and password are required")
	ErrEmailTaken         = errors.New("email already registered")
	ErrInvalidCredentials = errors.New("invalid email or password")
)

// Service owns registration and credential checks. Token issuance is the
// boundary to the rest of the system: everything downstream only ever sees
// the opaque authenticated user id.
type Service struct {
	store   Store
	authTTL time.Duration
}

func NewService(store Store, authTTL time.Duration) *Service {
	if authTTL <= 0 {
		authTTL = 2 * time.Hour
	}
	return &Service{store: store, authTTL: authTTL}
}

// Register creates a new account with a bcrypt-hashed password.
func (s *Service) Register(ctx context.Context, name, email, password string) (*model.User, error) {
	if name == "" || email == "" || password == "" {
		return nil, ErrMissingFields
	}
	if _, err := s.store.FindByEmail(ctx, email); err == nil {
		return nil, ErrEmailTaken
	} else if !errors.Is(err, ErrNotFound) {
		return nil, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, errors.Wrap(err, "hash password")
	}
	return s.store.Create(ctx, name, email, string(hash))
}

// Login checks credentials and issues a signed session token.
func (s *Service) Login(ctx context.Context, email, password string) (*model.User, string, error) {
	if email == "" || password == "" {
		return nil, "", ErrInvalidCredentials
	}

	u, err := s.store.FindByEmail(ctx, email)
	if errors.Is(err, ErrNotFound) {
		return nil, "", ErrInvalidCredentials
	}
	if err != nil {
		return nil, "", err
	}
	if bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)) != nil {
		return nil, "", ErrInvalidCredentials
	}

	opts := toolsec.DefaultOptions(global.GetJwtSecret())
	opts.TTL = s.authTTL
	token, _, err := toolsec.Generate(opts, u.ID, nil)
	if err != nil {
		return nil, "", errors.Wrap(err, "sign token")
	}
	return u, token, nil
}

// ListOthers returns every user except the caller, for the contact list.
func (s *Service) ListOthers(ctx context.Context, userID string) ([]*model.User, error) {
	return s.store.ListOthers(ctx, userID)
}
