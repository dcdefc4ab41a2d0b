package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	midsec "chat-relay/middleware/security"
	"chat-relay/module/chat/service"
	"chat-relay/service/storage"
	"chat-relay/tools/errs"
	"chat-relay/tools/security"
)

// Handler wires the REST surface. The push channel is registered separately
// by the gateway.
type Handler struct {
	users        *service.UserService
	messages     *service.MessageService
	friends      *service.FriendService
	presence     *storage.Presence
	health       HealthProbes
	historyLimit int64
}

// HealthProbes reports backend reachability for the health endpoint.
type HealthProbes struct {
	Mongo func(c *gin.Context) bool
	Kafka func() bool
	Redis func(c *gin.Context) bool
}

func New(users *service.UserService, messages *service.MessageService, friends *service.FriendService, presence *storage.Presence, health HealthProbes, historyLimit int64) *Handler {
	if historyLimit <= 0 {
		historyLimit = 50
	}
	return &Handler{
		users: users, messages: messages, friends: friends,
		presence: presence, health: health, historyLimit: historyLimit,
	}
}

func (h *Handler) Register(r *gin.Engine, jwt security.Options) {
	r.GET("/health", h.Health)

	auth := r.Group("/api/auth")
	{
		auth.POST("/register", h.RegisterUser)
		auth.POST("/login", h.Login)
	}

	api := r.Group("/api", midsec.Middleware(jwt))
	{
		api.GET("/messages", h.History)
		api.POST("/messages", h.Submit)
		api.DELETE("/messages", h.ClearMessages)

		api.GET("/private/:roomId", h.PrivateHistory)
		api.POST("/private/:roomId", h.PrivateSubmit)

		api.GET("/users", h.ListUsers)

		api.POST("/friends/request", h.SendFriendRequest)
		api.GET("/friends/requests", h.ListFriendRequests)
		api.POST("/friends/accept", h.AcceptFriendRequest)
		api.GET("/friends/list", h.ListFriends)
	}
}

// writeError maps the error taxonomy to HTTP statuses. Unknown errors are
// internal.
func writeError(c *gin.Context, err error) {
	status := http.StatusInternalServerError
	msg := "internal error"

	switch {
	case errs.IsCode(err, errs.ErrArgs),
		errs.IsCode(err, errs.ErrSelfTarget),
		errs.IsCode(err, errs.ErrUsernameInvalid),
		errs.IsCode(err, errs.ErrUsernameTaken),
		errs.IsCode(err, errs.ErrBadCredentials),
		errs.IsCode(err, errs.ErrDuplicateRequest):
		status = http.StatusBadRequest
	case errs.IsCode(err, errs.ErrNotFound):
		status = http.StatusNotFound
	case errs.IsCode(err, errs.ErrTokenInvalid):
		status = http.StatusUnauthorized
	case errs.IsCode(err, errs.ErrPersistence):
		status = http.StatusServiceUnavailable
	}

	var ce *errs.CodeError
	if errors.As(err, &ce) {
		msg = ce.Msg
	}
	c.JSON(status, gin.H{"error": msg})
}
