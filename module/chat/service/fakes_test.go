package service

import (
	"context"
	"sync"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"chat-relay/module/chat/model"
	"chat-relay/tools/errs"
)

// In-memory stores honoring the same contracts as the Mongo ones.

type fakeUserStore struct {
	mu    sync.Mutex
	users map[string]model.User
}

func newFakeUserStore() *fakeUserStore {
	return &fakeUserStore{users: make(map[string]model.User)}
}

func (s *fakeUserStore) Create(_ context.Context, u *model.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.users[u.Username]; ok {
		return errs.ErrUsernameTaken
	}
	u.ID = primitive.NewObjectID()
	s.users[u.Username] = *u
	return nil
}

func (s *fakeUserStore) FindByUsername(_ context.Context, username string) (*model.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[username]
	if !ok {
		return nil, errs.ErrNotFound
	}
	return &u, nil
}

func (s *fakeUserStore) ListAll(_ context.Context, exclude string) ([]model.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []model.User
	for _, u := range s.users {
		if u.Username != exclude {
			out = append(out, u)
		}
	}
	return out, nil
}

type fakeFriendRequestStore struct {
	mu   sync.Mutex
	reqs []model.FriendRequest
}

func (s *fakeFriendRequestStore) CreatePending(_ context.Context, from, to string) (*model.FriendRequest, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, r := range s.reqs {
		if r.From == from && r.To == to && r.Status == model.RequestStatusPending {
			return nil, errs.ErrDuplicateRequest
		}
	}
	req := model.FriendRequest{
		ID:        primitive.NewObjectID(),
		From:      from,
		To:        to,
		Status:    model.RequestStatusPending,
		CreatedAt: time.Now().UTC(),
		UpdatedAt: time.Now().UTC(),
	}
	s.reqs = append(s.reqs, req)
	return &req, nil
}

func (s *fakeFriendRequestStore) AcceptPending(_ context.Context, from, to string) (*model.FriendRequest, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.reqs {
		r := &s.reqs[i]
		if r.From == from && r.To == to && r.Status == model.RequestStatusPending {
			r.Status = model.RequestStatusAccepted
			r.UpdatedAt = time.Now().UTC()
			out := *r
			return &out, nil
		}
	}
	return nil, errs.ErrNotFound
}

func (s *fakeFriendRequestStore) ListPending(_ context.Context, to string) ([]model.FriendRequest, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []model.FriendRequest
	for _, r := range s.reqs {
		if r.To == to && r.Status == model.RequestStatusPending {
			out = append(out, r)
		}
	}
	return out, nil
}

func (s *fakeFriendRequestStore) ListAccepted(_ context.Context, user string) ([]model.FriendRequest, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []model.FriendRequest
	for _, r := range s.reqs {
		if r.Status == model.RequestStatusAccepted && (r.From == user || r.To == user) {
			out = append(out, r)
		}
	}
	return out, nil
}

type fakeMessageStore struct {
	mu        sync.Mutex
	msgs      []model.Message
	insertErr error
}

func (s *fakeMessageStore) Insert(_ context.Context, m *model.Message) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.insertErr != nil {
		return s.insertErr
	}
	m.ID = primitive.NewObjectID()
	s.msgs = append(s.msgs, *m)
	return nil
}

func (s *fakeMessageStore) ListByRoom(_ context.Context, roomID string, limit int64) ([]model.Message, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []model.Message
	for _, m := range s.msgs {
		if m.RoomID == roomID {
			out = append(out, m)
		}
	}
	if limit > 0 && int64(len(out)) > limit {
		out = out[int64(len(out))-limit:]
	}
	return out, nil
}

func (s *fakeMessageStore) Clear(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.msgs = nil
	return nil
}

type fakePublisher struct {
	mu        sync.Mutex
	published []model.Message
	err       error
}

func (p *fakePublisher) PublishMessage(_ context.Context, m *model.Message) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.err != nil {
		return p.err
	}
	p.published = append(p.published, *m)
	return nil
}

func (p *fakePublisher) count() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.published)
}
