package service

import (
	"context"
	"time"

	"chat-relay/module/chat/model"
	"chat-relay/module/chat/store"
	"chat-relay/tools/errs"
	"chat-relay/tools/security"
)

type UserService struct {
	users store.UserStore
	jwt   security.Options
}

func NewUserService(users store.UserStore, jwt security.Options) *UserService {
	return &UserService{users: users, jwt: jwt}
}

func (s *UserService) Register(ctx context.Context, username, password string) (*model.User, error) {
	if err := ValidateUsername(username); err != nil {
		return nil, err
	}
	if password == "" {
		return nil, errs.ErrArgs.WithDetail("password is required")
	}
	hash, err := security.HashPassword(password)
	if err != nil {
		return nil, err
	}
	u := &model.User{
		Username:     username,
		PasswordHash: hash,
		CreatedAt:    time.Now().UTC(),
	}
	if err := s.users.Create(ctx, u); err != nil {
		return nil, err
	}
	return u, nil
}

// Login verifies credentials and issues a token. Unknown user and wrong
// password are indistinguishable to the caller.
func (s *UserService) Login(ctx context.Context, username, password string) (token string, expireAt time.Time, err error) {
	u, err := s.users.FindByUsername(ctx, username)
	if err != nil {
		if errs.IsCode(err, errs.ErrNotFound) {
			return "", time.Time{}, errs.ErrBadCredentials
		}
		return "", time.Time{}, err
	}
	if !security.CheckPassword(u.PasswordHash, password) {
		return "", time.Time{}, errs.ErrBadCredentials
	}
	return security.Generate(s.jwt, username)
}

// List returns every user except exclude.
func (s *UserService) List(ctx context.Context, exclude string) ([]model.User, error) {
	return s.users.ListAll(ctx, exclude)
}
