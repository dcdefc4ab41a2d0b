package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	midsec "chat-relay/middleware/security"
	"chat-relay/module/chat/model"
	"chat-relay/tools/errs"
)

type submitBody struct {
	Text   string `json:"text"`
	RoomID string `json:"roomId"`
}

// Submit posts to the public room (or an explicit roomId). The sender is
// always the authenticated caller, never a body field.
func (h *Handler) Submit(c *gin.Context) {
	var body submitBody
	if err := c.ShouldBindJSON(&body); err != nil {
		writeError(c, errs.ErrArgs.WithDetail(err.Error()))
		return
	}

	m, err := h.messages.Submit(c.Request.Context(), midsec.Username(c), body.Text, body.RoomID)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, m)
}

func (h *Handler) History(c *gin.Context) {
	roomID := c.DefaultQuery("roomId", model.GeneralRoomID)
	limit := h.historyLimit
	if raw := c.Query("limit"); raw != "" {
		n, err := strconv.ParseInt(raw, 10, 64)
		if err != nil || n < 0 {
			writeError(c, errs.ErrArgs.WithDetail("limit must be a non-negative integer"))
			return
		}
		limit = n
	}

	msgs, err := h.messages.History(c.Request.Context(), roomID, limit)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, msgs)
}

func (h *Handler) PrivateSubmit(c *gin.Context) {
	var body submitBody
	if err := c.ShouldBindJSON(&body); err != nil {
		writeError(c, errs.ErrArgs.WithDetail(err.Error()))
		return
	}

	m, err := h.messages.Submit(c.Request.Context(), midsec.Username(c), body.Text, c.Param("roomId"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, m)
}

// PrivateHistory returns the full room history in ascending order, as the
// private chat view expects.
func (h *Handler) PrivateHistory(c *gin.Context) {
	msgs, err := h.messages.History(c.Request.Context(), c.Param("roomId"), 0)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, msgs)
}

// ClearMessages drops everything; testing aid kept from the original
// deployment.
func (h *Handler) ClearMessages(c *gin.Context) {
	if err := h.messages.ClearAll(c.Request.Context()); err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "All messages deleted"})
}
