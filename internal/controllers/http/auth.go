package http

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

func (h *Handler) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}
	res, err := h.auth.Login(c.Request.Context(), req.Role, req.Username, req.Password)
	if err != nil {
		writeError(c, err)
		return
	}
	respond(c, http.StatusOK, res)
}

func (h *Handler) Logout(c *gin.Context) {
	sess := sessionFrom(c)
	if sess == nil {
		respond(c, http.StatusNoContent, nil)
		return
	}
	if err := h.auth.Logout(c.Request.Context(), sess.ID); err != nil {
		writeError(c, err)
		return
	}
	respond(c, http.StatusNoContent, nil)
}

func (h *Handler) Me(c *gin.Context) {
	respond(c, http.StatusOK, actorFrom(c))
}
