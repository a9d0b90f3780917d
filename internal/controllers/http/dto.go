package http

import "sales-order-service/internal/domain"

type LoginRequest struct {
	Role     domain.Role `json:"role" binding:"required"`
	Username string      `json:"username" binding:"required"`
	Password string      `json:"password" binding:"required"`
}

type StatusRequest struct {
	Status domain.OrderStatus `json:"status" binding:"required"`
}

type DeleteOrderRequest struct {
	Password string `json:"password"`
}

type ErrorResponse struct {
	Error string `json:"error"`
}
