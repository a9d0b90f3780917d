package http

import (
	"net/http"

	"sales-order-service/internal/services"

	"github.com/gin-gonic/gin"
)

func (h *Handler) ListSalespersons(c *gin.Context) {
	list, err := h.salespersons.List(c.Request.Context(), actorFrom(c))
	if err != nil {
		writeError(c, err)
		return
	}
	respond(c, http.StatusOK, list)
}

func (h *Handler) GetSalesperson(c *gin.Context) {
	sp, err := h.salespersons.Get(c.Request.Context(), actorFrom(c), c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}
	respond(c, http.StatusOK, sp)
}

func (h *Handler) CreateSalesperson(c *gin.Context) {
	var in services.SalespersonInput
	if err := c.ShouldBindJSON(&in); err != nil {
		bindError(c, err)
		return
	}
	sp, err := h.salespersons.Create(c.Request.Context(), actorFrom(c), in)
	if err != nil {
		writeError(c, err)
		return
	}
	respond(c, http.StatusCreated, sp)
}

func (h *Handler) UpdateSalesperson(c *gin.Context) {
	var in services.SalespersonInput
	if err := c.ShouldBindJSON(&in); err != nil {
		bindError(c, err)
		return
	}
	sp, err := h.salespersons.Update(c.Request.Context(), actorFrom(c), c.Param("id"), in)
	if err != nil {
		writeError(c, err)
		return
	}
	respond(c, http.StatusOK, sp)
}

func (h *Handler) DeleteSalesperson(c *gin.Context) {
	if err := h.salespersons.Delete(c.Request.Context(), actorFrom(c), c.Param("id")); err != nil {
		writeError(c, err)
		return
	}
	respond(c, http.StatusNoContent, nil)
}
