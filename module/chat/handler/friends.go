package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	midsec "chat-relay/middleware/security"
	"chat-relay/tools/errs"
)

type friendRequestBody struct {
	To string `json:"to"`
}

func (h *Handler) SendFriendRequest(c *gin.Context) {
	var body friendRequestBody
	if err := c.ShouldBindJSON(&body); err != nil {
		writeError(c, errs.ErrArgs.WithDetail(err.Error()))
		return
	}

	if _, err := h.friends.Request(c.Request.Context(), midsec.Username(c), body.To); err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Friend request sent"})
}

func (h *Handler) ListFriendRequests(c *gin.Context) {
	reqs, err := h.friends.ListPending(c.Request.Context(), midsec.Username(c))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, reqs)
}

type acceptBody struct {
	From string `json:"from"`
}

// AcceptFriendRequest flips the pending record and hands back the canonical
// room id both sides will open.
func (h *Handler) AcceptFriendRequest(c *gin.Context) {
	var body acceptBody
	if err := c.ShouldBindJSON(&body); err != nil {
		writeError(c, errs.ErrArgs.WithDetail(err.Error()))
		return
	}

	roomID, err := h.friends.Accept(c.Request.Context(), body.From, midsec.Username(c))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"message": "Friend request accepted",
		"roomId":  roomID,
	})
}

func (h *Handler) ListFriends(c *gin.Context) {
	friends, err := h.friends.ListFriends(c.Request.Context(), midsec.Username(c))
	if err != nil {
		writeError(c, err)
		return
	}

	resp := make([]gin.H, 0, len(friends))
	for _, f := range friends {
		resp = append(resp, gin.H{"id": f.ID, "username": f.Username})
	}
	c.JSON(http.StatusOK, resp)
}
