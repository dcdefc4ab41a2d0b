package service

import (
	"context"
	"sort"

	"chat-relay/module/chat/model"
	"chat-relay/module/chat/store"
	"chat-relay/tools/errs"
)

// FriendService owns the request/accept lifecycle. A friendship is not a
// stored entity: it is derived from an accepted request in either direction.
type FriendService struct {
	requests store.FriendRequestStore
	users    store.UserStore
}

func NewFriendService(requests store.FriendRequestStore, users store.UserStore) *FriendService {
	return &FriendService{requests: requests, users: users}
}

// Request creates a pending record From -> To. Duplicate pendings for the
// same ordered pair are rejected by the store's unique index, so two
// concurrent sends cannot race past this.
func (s *FriendService) Request(ctx context.Context, from, to string) (*model.FriendRequest, error) {
	if to == "" {
		return nil, errs.ErrArgs.WithDetail("target username is required")
	}
	if from == to {
		return nil, errs.ErrSelfTarget
	}
	return s.requests.CreatePending(ctx, from, to)
}

// Accept flips the exact pending (from, to) record to accepted and returns
// the canonical room id for the new friendship. A reversed pair, an already
// accepted record, or a request that never existed all report not-found.
func (s *FriendService) Accept(ctx context.Context, from, to string) (roomID string, err error) {
	if from == "" {
		return "", errs.ErrArgs.WithDetail("from username is required")
	}
	if _, err := s.requests.AcceptPending(ctx, from, to); err != nil {
		return "", err
	}
	return CanonicalRoomID(from, to), nil
}

// ListPending returns the requests waiting on user's decision.
func (s *FriendService) ListPending(ctx context.Context, user string) ([]model.FriendRequest, error) {
	return s.requests.ListPending(ctx, user)
}

// ListFriends resolves the distinct counterparties of user's accepted
// requests, whichever side user is on.
func (s *FriendService) ListFriends(ctx context.Context, user string) ([]model.User, error) {
	accepted, err := s.requests.ListAccepted(ctx, user)
	if err != nil {
		return nil, err
	}

	seen := make(map[string]struct{}, len(accepted))
	names := make([]string, 0, len(accepted))
	for _, r := range accepted {
		other := r.From
		if other == user {
			other = r.To
		}
		if _, ok := seen[other]; ok {
			continue
		}
		seen[other] = struct{}{}
		names = append(names, other)
	}
	sort.Strings(names)

	friends := make([]model.User, 0, len(names))
	for _, name := range names {
		u, err := s.users.FindByUsername(ctx, name)
		if err != nil {
			if errs.IsCode(err, errs.ErrNotFound) {
				// Counterparty record without a user document; skip rather
				// than fail the whole listing.
				continue
			}
			return nil, err
		}
		friends = append(friends, *u)
	}
	return friends, nil
}
