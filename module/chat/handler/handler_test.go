package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"chat-relay/module/chat/model"
	"chat-relay/module/chat/service"
	"chat-relay/tools/errs"
	"chat-relay/tools/security"
)

// In-memory stores mirroring the Mongo contracts, same shape as the
// service-level fakes.

type memUserStore struct {
	mu    sync.Mutex
	users map[string]model.User
}

func (s *memUserStore) Create(_ context.Context, u *model.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.users[u.Username]; ok {
		return errs.ErrUsernameTaken
	}
	u.ID = primitive.NewObjectID()
	s.users[u.Username] = *u
	return nil
}

func (s *memUserStore) FindByUsername(_ context.Context, username string) (*model.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[username]
	if !ok {
		return nil, errs.ErrNotFound
	}
	return &u, nil
}

func (s *memUserStore) ListAll(_ context.Context, exclude string) ([]model.User, error) {
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

type memFriendStore struct {
	mu   sync.Mutex
	reqs []model.FriendRequest
}

func (s *memFriendStore) CreatePending(_ context.Context, from, to string) (*model.FriendRequest, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, r := range s.reqs {
		if r.From == from && r.To == to && r.Status == model.RequestStatusPending {
			return nil, errs.ErrDuplicateRequest
		}
	}
	req := model.FriendRequest{
		ID: primitive.NewObjectID(), From: from, To: to,
		Status: model.RequestStatusPending, CreatedAt: time.Now().UTC(),
	}
	s.reqs = append(s.reqs, req)
	return &req, nil
}

func (s *memFriendStore) AcceptPending(_ context.Context, from, to string) (*model.FriendRequest, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.reqs {
		r := &s.reqs[i]
		if r.From == from && r.To == to && r.Status == model.RequestStatusPending {
			r.Status = model.RequestStatusAccepted
			out := *r
			return &out, nil
		}
	}
	return nil, errs.ErrNotFound
}

func (s *memFriendStore) ListPending(_ context.Context, to string) ([]model.FriendRequest, error) {
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

func (s *memFriendStore) ListAccepted(_ context.Context, user string) ([]model.FriendRequest, error) {
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

type memMessageStore struct {
	mu   sync.Mutex
	msgs []model.Message
}

func (s *memMessageStore) Insert(_ context.Context, m *model.Message) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	m.ID = primitive.NewObjectID()
	s.msgs = append(s.msgs, *m)
	return nil
}

func (s *memMessageStore) ListByRoom(_ context.Context, roomID string, limit int64) ([]model.Message, error) {
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

func (s *memMessageStore) Clear(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.msgs = nil
	return nil
}

type noopPublisher struct{}

func (noopPublisher) PublishMessage(context.Context, *model.Message) error { return nil }

var testJWT = security.DefaultOptions([]byte("handler-test-secret"))

func newTestRouter(t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	users := &memUserStore{users: make(map[string]model.User)}
	h := New(
		service.NewUserService(users, testJWT),
		service.NewMessageService(&memMessageStore{}, noopPublisher{}),
		service.NewFriendService(&memFriendStore{}, users),
		nil,
		HealthProbes{},
		50,
	)
	r := gin.New()
	h.Register(r, testJWT)
	return r
}

func doJSON(t *testing.T, r *gin.Engine, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func registerAndLogin(t *testing.T, r *gin.Engine, username string) string {
	t.Helper()
	w := doJSON(t, r, http.MethodPost, "/api/auth/register", "",
		gin.H{"username": username, "password": "pw"})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	w = doJSON(t, r, http.MethodPost, "/api/auth/login", "",
		gin.H{"username": username, "password": "pw"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var resp struct {
		Token string `json:"token"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.NotEmpty(t, resp.Token)
	return resp.Token
}

func TestRoutesRequireToken(t *testing.T) {
	r := newTestRouter(t)

	w := doJSON(t, r, http.MethodGet, "/api/messages", "", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = doJSON(t, r, http.MethodPost, "/api/friends/request", "garbage-token",
		gin.H{"to": "bob"})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestFriendRequestFlow(t *testing.T) {
	r := newTestRouter(t)
	aliceTok := registerAndLogin(t, r, "alice")
	bobTok := registerAndLogin(t, r, "bob")

	// alice -> bob
	w := doJSON(t, r, http.MethodPost, "/api/friends/request", aliceTok, gin.H{"to": "bob"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	// duplicate rejected
	w = doJSON(t, r, http.MethodPost, "/api/friends/request", aliceTok, gin.H{"to": "bob"})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	// self-target rejected
	w = doJSON(t, r, http.MethodPost, "/api/friends/request", aliceTok, gin.H{"to": "alice"})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	// bob sees one pending request
	w = doJSON(t, r, http.MethodGet, "/api/friends/requests", bobTok, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var pending []model.FriendRequest
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &pending))
	require.Len(t, pending, 1)
	assert.Equal(t, "alice", pending[0].From)

	// bob accepts, gets the canonical room id
	w = doJSON(t, r, http.MethodPost, "/api/friends/accept", bobTok, gin.H{"from": "alice"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var accept struct {
		RoomID string `json:"roomId"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &accept))
	assert.Equal(t, "alice_bob", accept.RoomID)

	// accepting twice is not found
	w = doJSON(t, r, http.MethodPost, "/api/friends/accept", bobTok, gin.H{"from": "alice"})
	assert.Equal(t, http.StatusNotFound, w.Code)

	// both sides list each other
	for tok, friend := range map[string]string{aliceTok: "bob", bobTok: "alice"} {
		w = doJSON(t, r, http.MethodGet, "/api/friends/list", tok, nil)
		require.Equal(t, http.StatusOK, w.Code)
		var friends []struct {
			Username string `json:"username"`
		}
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &friends))
		require.Len(t, friends, 1)
		assert.Equal(t, friend, friends[0].Username)
	}
}

func TestSubmitAndHistory(t *testing.T) {
	r := newTestRouter(t)
	tok := registerAndLogin(t, r, "alice")

	w := doJSON(t, r, http.MethodPost, "/api/messages", tok, gin.H{"text": "hi"})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var m model.Message
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &m))
	assert.Equal(t, "alice", m.SenderUsername)
	assert.Equal(t, model.GeneralRoomID, m.RoomID)

	// empty text rejected
	w = doJSON(t, r, http.MethodPost, "/api/messages", tok, gin.H{"text": ""})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = doJSON(t, r, http.MethodGet, "/api/messages?roomId=general", tok, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var history []model.Message
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &history))
	require.Len(t, history, 1)
	assert.Equal(t, m.ID, history[0].ID)
}

func TestRegisterRejectsReservedUsername(t *testing.T) {
	r := newTestRouter(t)

	w := doJSON(t, r, http.MethodPost, "/api/auth/register", "",
		gin.H{"username": "general", "password": "pw"})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = doJSON(t, r, http.MethodPost, "/api/auth/register", "",
		gin.H{"username": "a_b", "password": "pw"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}
