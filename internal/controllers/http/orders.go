package http

import (
	"net/http"

	"sales-order-service/internal/services"

	"github.com/gin-gonic/gin"
)

func (h *Handler) ListOrders(c *gin.Context) {
	filter := services.OrderFilter{
		SearchBy: c.DefaultQuery("searchBy", services.SearchBySalesperson),
		Query:    c.Query("q"),
	}
	if filter.SearchBy != services.SearchBySalesperson && filter.SearchBy != services.SearchByCustomer {
		respond(c, http.StatusBadRequest, ErrorResponse{Error: "searchBy must be salesperson or customer"})
		return
	}
	orders, err := h.orders.List(c.Request.Context(), actorFrom(c), filter)
	if err != nil {
		writeError(c, err)
		return
	}
	respond(c, http.StatusOK, orders)
}

func (h *Handler) GetOrder(c *gin.Context) {
	o, err := h.orders.Get(c.Request.Context(), actorFrom(c), c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}
	respond(c, http.StatusOK, o)
}

func (h *Handler) CreateOrder(c *gin.Context) {
	var in services.CreateOrderInput
	if err := c.ShouldBindJSON(&in); err != nil {
		bindError(c, err)
		return
	}
	o, err := h.orders.Create(c.Request.Context(), actorFrom(c), in)
	if err != nil {
		writeError(c, err)
		return
	}
	respond(c, http.StatusCreated, o)
}

func (h *Handler) UpdateOrder(c *gin.Context) {
	var in services.UpdateOrderInput
	if err := c.ShouldBindJSON(&in); err != nil {
		bindError(c, err)
		return
	}
	o, err := h.orders.Update(c.Request.Context(), actorFrom(c), c.Param("id"), in)
	if err != nil {
		writeError(c, err)
		return
	}
	respond(c, http.StatusOK, o)
}

func (h *Handler) UpdateOrderStatus(c *gin.Context) {
	var req StatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}
	o, err := h.orders.UpdateStatus(c.Request.Context(), actorFrom(c), c.Param("id"), req.Status)
	if err != nil {
		writeError(c, err)
		return
	}
	respond(c, http.StatusOK, o)
}

func (h *Handler) DeleteOrder(c *gin.Context) {
	var req DeleteOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}
	if err := h.orders.Delete(c.Request.Context(), actorFrom(c), c.Param("id"), req.Password); err != nil {
		writeError(c, err)
		return
	}
	respond(c, http.StatusNoContent, nil)
}

// ExportOrders serves the order list as a CSV download.
func (h *Handler) ExportOrders(c *gin.Context) {
	data, err := h.orders.ExportCSV(c.Request.Context(), actorFrom(c))
	if err != nil {
		writeError(c, err)
		return
	}
	attachNotices(c)
	c.Header("Content-Disposition", `attachment; filename="orders.csv"`)
	c.Data(http.StatusOK, "text/csv; charset=utf-8", data)
}
