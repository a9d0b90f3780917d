package http

import (
	"errors"
	"log/slog"
	"net/http"

	"sales-order-service/internal/notice"
	"sales-order-service/internal/services"

	"github.com/gin-gonic/gin"
)

type Handler struct {
	auth         *services.AuthService
	products     *services.ProductService
	orders       *services.OrderService
	customers    *services.CustomerService
	salespersons *services.SalespersonService
}

func NewHandler(
	auth *services.AuthService,
	products *services.ProductService,
	orders *services.OrderService,
	customers *services.CustomerService,
	salespersons *services.SalespersonService,
) *Handler {
	return &Handler{
		auth:         auth,
		products:     products,
		orders:       orders,
		customers:    customers,
		salespersons: salespersons,
	}
}

func (h *Handler) RegisterRoutes(r *gin.Engine) {
	r.Use(NoticeMiddleware())

	r.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "pong"})
	})
	r.POST("/auth/login", h.Login)

	api := r.Group("/")
	api.Use(AuthMiddleware(h.auth))

	api.POST("/auth/logout", h.Logout)
	api.GET("/auth/me", h.Me)

	products := api.Group("/products")
	products.GET("", h.ListProducts)
	products.POST("", h.CreateProduct)
	products.GET("/:id", h.GetProduct)
	products.PUT("/:id", h.UpdateProduct)
	products.DELETE("/:id", h.DeleteProduct)
	products.POST("/:id/approve", h.ApproveProduct)
	products.POST("/:id/reject", h.RejectProduct)

	orders := api.Group("/orders")
	orders.GET("", h.ListOrders)
	orders.POST("", h.CreateOrder)
	orders.GET("/export", h.ExportOrders)
	orders.GET("/:id", h.GetOrder)
	orders.PUT("/:id", h.UpdateOrder)
	orders.DELETE("/:id", h.DeleteOrder)
	orders.PATCH("/:id/status", h.UpdateOrderStatus)

	customers := api.Group("/customers")
	customers.GET("", h.ListCustomers)
	customers.POST("", h.CreateCustomer)
	customers.GET("/:id", h.GetCustomer)
	customers.PUT("/:id", h.UpdateCustomer)
	customers.DELETE("/:id", h.DeleteCustomer)

	salespersons := api.Group("/salespersons")
	salespersons.GET("", h.ListSalespersons)
	salespersons.POST("", h.CreateSalesperson)
	salespersons.GET("/:id", h.GetSalesperson)
	salespersons.PUT("/:id", h.UpdateSalesperson)
	salespersons.DELETE("/:id", h.DeleteSalesperson)
}

// respond writes body as JSON after attaching any notices raised while
// handling the request.
func respond(c *gin.Context, status int, body any) {
	attachNotices(c)
	if body == nil {
		c.Status(status)
		return
	}
	c.JSON(status, body)
}

func attachNotices(c *gin.Context) {
	v, ok := c.Get(noticesKey)
	if !ok {
		return
	}
	col, ok := v.(*notice.Collector)
	if !ok {
		return
	}
	for _, msg := range col.Messages() {
		c.Writer.Header().Add(NoticeHeader, msg)
	}
}

func statusOf(err error) int {
	switch {
	case errors.Is(err, services.ErrValidation), errors.Is(err, services.ErrInvalidTransition):
		return http.StatusBadRequest
	case errors.Is(err, services.ErrInvalidCredentials), errors.Is(err, services.ErrUnauthorized):
		return http.StatusUnauthorized
	case errors.Is(err, services.ErrForbidden), errors.Is(err, services.ErrWrongDeletePassword):
		return http.StatusForbidden
	case errors.Is(err, services.ErrOrderNotFound),
		errors.Is(err, services.ErrProductNotFound),
		errors.Is(err, services.ErrCustomerNotFound),
		errors.Is(err, services.ErrSalespersonNotFound):
		return http.StatusNotFound
	case errors.Is(err, services.ErrNotEditable), errors.Is(err, services.ErrDuplicateUsername):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

func writeError(c *gin.Context, err error) {
	status := statusOf(err)
	msg := err.Error()
	if status == http.StatusInternalServerError {
		slog.ErrorContext(c.Request.Context(), "request failed", "path", c.FullPath(), "err", err)
		msg = "internal server error"
	}
	respond(c, status, ErrorResponse{Error: msg})
}

func bindError(c *gin.Context, err error) {
	respond(c, http.StatusBadRequest, ErrorResponse{Error: err.Error()})
}
