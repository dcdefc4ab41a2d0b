package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	midsec "chat-relay/middleware/security"
	"chat-relay/logger"
)

// ListUsers returns everyone except the caller, flagged with live presence.
func (h *Handler) ListUsers(c *gin.Context) {
	me := midsec.Username(c)
	users, err := h.users.List(c.Request.Context(), me)
	if err != nil {
		writeError(c, err)
		return
	}

	resp := make([]gin.H, 0, len(users))
	for _, u := range users {
		online := false
		if h.presence != nil {
			_, on, perr := h.presence.Lookup(c.Request.Context(), u.Username)
			if perr != nil {
				// Presence is cosmetic; a redis hiccup must not fail the
				// listing.
				logger.Warnf("[users] presence lookup failed user=%s: %v", u.Username, perr)
			}
			online = on
		}
		resp = append(resp, gin.H{
			"id":        u.ID,
			"username":  u.Username,
			"createdAt": u.CreatedAt,
			"online":    online,
		})
	}
	c.JSON(http.StatusOK, resp)
}
