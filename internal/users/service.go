package users

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/dailyfresh/storefront/internal/redisx"
	"github.com/dailyfresh/storefront/internal/tasks"
)

var (
	ErrBadCredentials = errors.New("bad username or password")
	ErrInactive       = errors.New("account not activated")
	ErrBadToken       = errors.New("unknown or expired token")
	ErrNoSession      = errors.New("no session")
)

// userStore is the slice of Repo the service needs; tests supply fakes.
type userStore interface {
	Create(ctx context.Context, username, email, passwordHash string) (int64, error)
	ByUsername(ctx context.Context, username string) (User, error)
	ByID(ctx context.Context, id int64) (User, error)
	Activate(ctx context.Context, id int64) error
}

// kv is a tiny string key-value facade over Redis (SETEX/GET/DEL).
type kv interface {
	SetTTL(ctx context.Context, key, val string, ttl time.Duration) error
	Get(ctx context.Context, key string) (string, error)
	Del(ctx context.Context, key string) error
}

type taskSubmitter interface {
	Submit(taskType, key string, payload any)
}

type Service struct {
	Store userStore
	KV    kv
	Tasks taskSubmitter

	SessionTTL    time.Duration
	ActivationTTL time.Duration
}

// Register creates an inactive account and enqueues the activation email.
func (s *Service) Register(ctx context.Context, username, email, password string) (int64, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return 0, err
	}
	id, err := s.Store.Create(ctx, username, email, string(hash))
	if err != nil {
		return 0, err
	}

	token := uuid.NewString()
	key := fmt.Sprintf(redisx.KeyActivation, token)
	if err := s.KV.SetTTL(ctx, key, strconv.FormatInt(id, 10), s.ActivationTTL); err != nil {
		return 0, err
	}
	s.Tasks.Submit(tasks.TaskActivationEmail, email, tasks.ActivationEmailPayload{
		Email:    email,
		Username: username,
		Token:    token,
	})
	return id, nil
}

// Activate redeems an activation token. Tokens are single-use.
func (s *Service) Activate(ctx context.Context, token string) error {
	key := fmt.Sprintf(redisx.KeyActivation, token)
	v, err := s.KV.Get(ctx, key)
	if err != nil {
		return ErrBadToken
	}
	id, err := strconv.ParseInt(v, 10, 64)
	if err != nil {
		return ErrBadToken
	}
	if err := s.Store.Activate(ctx, id); err != nil {
		return err
	}
	return s.KV.Del(ctx, key)
}

// Login verifies credentials and opens a session, returning its token.
func (s *Service) Login(ctx context.Context, username, password string) (string, error) {
	u, err := s.Store.ByUsername(ctx, username)
	if errors.Is(err, ErrNotFound) {
		return "", ErrBadCredentials
	}
	if err != nil {
		return "", err
	}
	if bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)) != nil {
		return "", ErrBadCredentials
	}
	if !u.Active {
		return "", ErrInactive
	}

	token := uuid.NewString()
	key := fmt.Sprintf(redisx.KeySession, token)
	if err := s.KV.SetTTL(ctx, key, strconv.FormatInt(u.ID, 10), s.SessionTTL); err != nil {
		return "", err
	}
	return token, nil
}

func (s *Service) Logout(ctx context.Context, token string) error {
	return s.KV.Del(ctx, fmt.Sprintf(redisx.KeySession, token))
}

// SessionUser resolves a session token to a user id.
func (s *Service) SessionUser(ctx context.Context, token string) (int64, error) {
	v, err := s.KV.Get(ctx, fmt.Sprintf(redisx.KeySession, token))
	if err != nil {
		return 0, ErrNoSession
	}
	id, err := strconv.ParseInt(v, 10, 64)
	if err != nil {
		return 0, ErrNoSession
	}
	return id, nil
}

func (s *Service) Profile(ctx context.Context, userID int64) (User, error) {
	return s.Store.ByID(ctx, userID)
}
