package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

type OrderStatus string

const (
	StatusPending   OrderStatus = "pending"
	StatusApproved  OrderStatus = "approved"
	StatusShipped   OrderStatus = "shipped"
	StatusDelivered OrderStatus = "delivered"
	StatusCancelled OrderStatus = "cancelled"
)

var statusLabels = map[OrderStatus]string{
	StatusPending:   "待审核",
	StatusApproved:  "已批准",
	StatusShipped:   "已发货",
	StatusDelivered: "已送达",
	StatusCancelled: "已取消",
}

// next lists the statuses reachable from each non-terminal status.
var next = map[OrderStatus][]OrderStatus{
	StatusPending:  {StatusApproved, StatusCancelled},
	StatusApproved: {StatusShipped, StatusCancelled},
	StatusShipped:  {StatusDelivered, StatusCancelled},
}

func (s OrderStatus) Valid() bool {
	_, ok := statusLabels[s]
	return ok
}

// Label is the display name used in exports.
func (s OrderStatus) Label() string {
	if l, ok := statusLabels[s]; ok {
		return l
	}
	return string(s)
}

func (s OrderStatus) Terminal() bool {
	return s == StatusDelivered || s == StatusCancelled
}

func (s OrderStatus) CanTransitionTo(to OrderStatus) bool {
	for _, st := range next[s] {
		if st == to {
			return true
		}
	}
	return false
}

// OrderItem is a snapshot of a product line taken when the order was created.
type OrderItem struct {
	ProductID     string           `json:"productId"`
	ProductName   string           `json:"productName"`
	Quantity      int              `json:"quantity"`
	UnitPrice     decimal.Decimal  `json:"unitPrice"`
	OriginalPrice *decimal.Decimal `json:"originalPrice,omitempty"`
}

func (i OrderItem) Subtotal() decimal.Decimal {
	return i.UnitPrice.Mul(decimal.NewFromInt(int64(i.Quantity)))
}

type Order struct {
	ID              string          `json:"id"`
	CustomerID      string          `json:"customerId"`
	CustomerName    string          `json:"customerName"`
	CustomerAddress string          `json:"customerAddress"`
	Products        []OrderItem     `json:"products"`
	TotalAmount     decimal.Decimal `json:"totalAmount"`
	DeliveryDate    string          `json:"deliveryDate"`
	Status          OrderStatus     `json:"status"`
	CreatedBy       string          `json:"createdBy"`
	CreatedAt       time.Time       `json:"createdAt"`
	UpdatedAt       time.Time       `json:"updatedAt"`
}

func (o Order) GetID() string { return o.ID }

// TotalOf sums quantity x unit price over items.
func TotalOf(items []OrderItem) decimal.Decimal {
	total := decimal.Zero
	for _, it := range items {
		total = total.Add(it.Subtotal())
	}
	return total
}
