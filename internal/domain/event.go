package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

const (
	EventOrderCreated       = "order.created"
	EventOrderUpdated       = "order.updated"
	EventOrderStatusChanged = "order.status_changed"
	EventOrderDeleted       = "order.deleted"
	EventProductCreated     = "product.created"
	EventProductApproved    = "product.approved"
	EventProductRejected    = "product.rejected"
)

type OrderEvent struct {
	OrderID     string          `json:"orderId"`
	CustomerID  string          `json:"customerId,omitempty"`
	Status      OrderStatus     `json:"status,omitempty"`
	PrevStatus  OrderStatus     `json:"previousStatus,omitempty"`
	TotalAmount decimal.Decimal `json:"totalAmount"`
	Actor       string          `json:"actor"`
	At          time.Time       `json:"at"`
}

type ProductEvent struct {
	ProductID string    `json:"productId"`
	Name      string    `json:"name"`
	CreatedBy string    `json:"createdBy,omitempty"`
	Pending   bool      `json:"pending"`
	Actor     string    `json:"actor"`
	At        time.Time `json:"at"`
}
