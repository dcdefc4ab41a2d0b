package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"chat-relay/tools/errs"
)

type credentialsBody struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

func (h *Handler) RegisterUser(c *gin.Context) {
	var body credentialsBody
	if err := c.ShouldBindJSON(&body); err != nil {
		writeError(c, errs.ErrArgs.WithDetail(err.Error()))
		return
	}

	u, err := h.users.Register(c.Request.Context(), body.Username, body.Password)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{
		"message":  "User registered successfully",
		"username": u.Username,
	})
}

func (h *Handler) Login(c *gin.Context) {
	var body credentialsBody
	if err := c.ShouldBindJSON(&body); err != nil {
		writeError(c, errs.ErrArgs.WithDetail(err.Error()))
		return
	}

	token, expireAt, err := h.users.Login(c.Request.Context(), body.Username, body.Password)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"message":  "Login successful",
		"token":    token,
		"expireAt": expireAt,
	})
}
