package store

import (
	"context"

	"chat-relay/module/chat/model"
)

// Store interfaces keep the services testable without a live Mongo. The
// Mongo implementations below are the only writers of their collections.

type UserStore interface {
	// Create inserts a new user; errs.ErrUsernameTaken when the username
	// already exists.
	Create(ctx context.Context, u *model.User) error
	FindByUsername(ctx context.Context, username string) (*model.User, error)
	// ListAll returns every user except exclude (empty string excludes no one).
	ListAll(ctx context.Context, exclude string) ([]model.User, error)
}

type MessageStore interface {
	Insert(ctx context.Context, m *model.Message) error
	// ListByRoom returns messages in ascending timestamp order. A positive
	// limit keeps only the newest limit messages (still ascending).
	ListByRoom(ctx context.Context, roomID string, limit int64) ([]model.Message, error)
	// Clear drops every message; administrative testing aid.
	Clear(ctx context.Context) error
}

type FriendRequestStore interface {
	// CreatePending inserts a pending record; errs.ErrDuplicateRequest when
	// a pending record for the same ordered pair already exists.
	CreatePending(ctx context.Context, from, to string) (*model.FriendRequest, error)
	// AcceptPending atomically flips exactly one pending (from, to) record
	// to accepted; errs.ErrNotFound when no such pending record exists.
	AcceptPending(ctx context.Context, from, to string) (*model.FriendRequest, error)
	ListPending(ctx context.Context, to string) ([]model.FriendRequest, error)
	// ListAccepted returns accepted records where user is either side.
	ListAccepted(ctx context.Context, user string) ([]model.FriendRequest, error)
}
