package services

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"sales-order-service/internal/domain"
	rabbit "sales-order-service/internal/infra/rabbitmq"
	"sales-order-service/internal/repository"

	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"
)

const (
	SearchBySalesperson = "salesperson"
	SearchByCustomer    = "customer"
)

type OrderItemInput struct {
	ProductID string `json:"productId"`
	Quantity  int    `json:"quantity"`
	// UnitPrice overrides the catalog price when set.
	UnitPrice *decimal.Decimal `json:"unitPrice,omitempty"`
}

type CreateOrderInput struct {
	CustomerID string `json:"customerId"`
	// CustomerAddress replaces the customer's address on this order when not blank.
	CustomerAddress string           `json:"customerAddress"`
	Items           []OrderItemInput `json:"products"`
	DeliveryDate    string           `json:"deliveryDate"`
}

// UpdateOrderInput edits the snapshot fields of an order; nil leaves a
// field unchanged.
type UpdateOrderInput struct {
	CustomerName    *string `json:"customerName"`
	CustomerAddress *string `json:"customerAddress"`
	DeliveryDate    *string `json:"deliveryDate"`
}

type OrderFilter struct {
	SearchBy string
	Query    string
}

type OrderService struct {
	orders         *repository.Collection[domain.Order]
	customers      *repository.Collection[domain.Customer]
	products       *repository.Collection[domain.Product]
	publisher      rabbit.PublisherInterface
	deletePassword string
	now            func() time.Time
}

func NewOrderService(
	orders *repository.Collection[domain.Order],
	customers *repository.Collection[domain.Customer],
	products *repository.Collection[domain.Product],
	pub rabbit.PublisherInterface,
	deletePassword string,
) *OrderService {
	return &OrderService{
		orders:         orders,
		customers:      customers,
		products:       products,
		publisher:      pub,
		deletePassword: deletePassword,
		now:            time.Now,
	}
}

func canSeeOrder(actor domain.Actor, o domain.Order) bool {
	return actor.IsAdmin() || actor.Owns(o.CreatedBy)
}

// List returns the orders visible to actor, narrowed by f.
func (s *OrderService) List(ctx context.Context, actor domain.Actor, f OrderFilter) ([]domain.Order, error) {
	all, err := s.orders.Load(ctx)
	if err != nil {
		return nil, err
	}

	q := strings.ToLower(strings.TrimSpace(f.Query))
	out := make([]domain.Order, 0, len(all))
	for _, o := range all {
		if !canSeeOrder(actor, o) {
			continue
		}
		if q != "" && !matches(o, f.SearchBy, q) {
			continue
		}
		out = append(out, o)
	}
	return out, nil
}

func matches(o domain.Order, by, q string) bool {
	field := o.CreatedBy
	if by == SearchByCustomer {
		field = o.CustomerName
	}
	return strings.Contains(strings.ToLower(field), q)
}

func (s *OrderService) Get(ctx context.Context, actor domain.Actor, id string) (*domain.Order, error) {
	o, ok, err := s.orders.Find(ctx, id)
	if err != nil {
		return nil, err
	}
	if !ok || !canSeeOrder(actor, o) {
		return nil, ErrOrderNotFound
	}
	return &o, nil
}

func (s *OrderService) Create(ctx context.Context, actor domain.Actor, in CreateOrderInput) (*domain.Order, error) {
	if strings.TrimSpace(in.CustomerID) == "" || len(in.Items) == 0 || strings.TrimSpace(in.DeliveryDate) == "" {
		return nil, invalid("customer, products and delivery date are required")
	}
	if err := validateDate(in.DeliveryDate); err != nil {
		return nil, err
	}

	var (
		customers []domain.Customer
		products  []domain.Product
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		customers, err = s.customers.Load(gctx)
		return err
	})
	g.Go(func() (err error) {
		products, err = s.products.Load(gctx)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	customer, ok := findCustomer(customers, in.CustomerID)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrCustomerNotFound, in.CustomerID)
	}
	items, err := buildItems(in.Items, products)
	if err != nil {
		return nil, err
	}

	address := strings.TrimSpace(in.CustomerAddress)
	if address == "" {
		address = customer.Address
	}
	now := s.now()
	order := domain.Order{
		ID:              domain.NewID(),
		CustomerID:      customer.ID,
		CustomerName:    customer.Name,
		CustomerAddress: address,
		Products:        items,
		TotalAmount:     domain.TotalOf(items),
		DeliveryDate:    strings.TrimSpace(in.DeliveryDate),
		Status:          domain.StatusPending,
		CreatedBy:       actor.Username,
		CreatedAt:       now,
		UpdatedAt:       now,
	}

	err = s.orders.Update(ctx, func(all []domain.Order) ([]domain.Order, error) {
		return append(all, order), nil
	})
	if err != nil {
		return nil, err
	}

	s.orders.Mirror(ctx, http.MethodPost, "", order)
	publish(ctx, s.publisher, domain.EventOrderCreated, s.event(actor, order, ""))
	return &order, nil
}

// buildItems snapshots each requested product. Only approved catalog
// products can be ordered.
func buildItems(in []OrderItemInput, catalog []domain.Product) ([]domain.OrderItem, error) {
	seen := make(map[string]bool, len(in))
	items := make([]domain.OrderItem, 0, len(in))
	for _, req := range in {
		if req.ProductID == "" {
			return nil, invalid("product id is required")
		}
		if seen[req.ProductID] {
			return nil, invalid("product %s listed twice", req.ProductID)
		}
		seen[req.ProductID] = true
		if req.Quantity < 1 {
			return nil, invalid("quantity for product %s must be at least 1", req.ProductID)
		}

		p, ok := findProduct(catalog, req.ProductID)
		if !ok || p.IsPendingApproval {
			return nil, fmt.Errorf("%w: %s", ErrProductNotFound, req.ProductID)
		}

		item := domain.OrderItem{
			ProductID:   p.ID,
			ProductName: p.Name,
			Quantity:    req.Quantity,
			UnitPrice:   p.Price,
		}
		if req.UnitPrice != nil {
			if req.UnitPrice.IsNegative() {
				return nil, invalid("unit price for product %s cannot be negative", req.ProductID)
			}
			item.UnitPrice = *req.UnitPrice
			if !item.UnitPrice.Equal(p.Price) {
				original := p.Price
				item.OriginalPrice = &original
			}
		}
		items = append(items, item)
	}
	return items, nil
}

// Update edits customer name, address and delivery date. Items, total and
// status cannot be changed here.
func (s *OrderService) Update(ctx context.Context, actor domain.Actor, id string, in UpdateOrderInput) (*domain.Order, error) {
	if in.CustomerName != nil && strings.TrimSpace(*in.CustomerName) == "" {
		return nil, invalid("customer name cannot be blank")
	}
	if in.CustomerAddress != nil && strings.TrimSpace(*in.CustomerAddress) == "" {
		return nil, invalid("customer address cannot be blank")
	}
	if in.DeliveryDate != nil {
		if err := validateDate(*in.DeliveryDate); err != nil {
			return nil, err
		}
	}

	var updated domain.Order
	err := s.orders.Update(ctx, func(all []domain.Order) ([]domain.Order, error) {
		o, ok := findOrder(all, id)
		if !ok || !canSeeOrder(actor, o) {
			return nil, ErrOrderNotFound
		}
		if in.CustomerName != nil {
			o.CustomerName = strings.TrimSpace(*in.CustomerName)
		}
		if in.CustomerAddress != nil {
			o.CustomerAddress = strings.TrimSpace(*in.CustomerAddress)
		}
		if in.DeliveryDate != nil {
			o.DeliveryDate = strings.TrimSpace(*in.DeliveryDate)
		}
		o.UpdatedAt = s.now()
		updated = o
		out, _ := repository.Replace(all, o)
		return out, nil
	})
	if err != nil {
		return nil, err
	}

	s.orders.Mirror(ctx, http.MethodPut, "/"+id, updated)
	publish(ctx, s.publisher, domain.EventOrderUpdated, s.event(actor, updated, ""))
	return &updated, nil
}

// UpdateStatus moves an order along pending, approved, shipped, delivered;
// any non-terminal order may be cancelled. Admin only.
func (s *OrderService) UpdateStatus(ctx context.Context, actor domain.Actor, id string, status domain.OrderStatus) (*domain.Order, error) {
	if !actor.IsAdmin() {
		return nil, ErrForbidden
	}
	if !status.Valid() {
		return nil, invalid("unknown status %q", status)
	}

	var (
		updated domain.Order
		prev    domain.OrderStatus
	)
	err := s.orders.Update(ctx, func(all []domain.Order) ([]domain.Order, error) {
		o, ok := findOrder(all, id)
		if !ok {
			return nil, ErrOrderNotFound
		}
		if !o.Status.CanTransitionTo(status) {
			return nil, fmt.Errorf("%w: %s to %s", ErrInvalidTransition, o.Status, status)
		}
		prev = o.Status
		o.Status = status
		o.UpdatedAt = s.now()
		updated = o
		out, _ := repository.Replace(all, o)
		return out, nil
	})
	if err != nil {
		return nil, err
	}

	s.orders.Mirror(ctx, http.MethodPatch, "/"+id+"/status", map[string]domain.OrderStatus{"status": status})
	publish(ctx, s.publisher, domain.EventOrderStatusChanged, s.event(actor, updated, prev))
	return &updated, nil
}

// Delete removes an order. Admin only, and the delete password must be
// confirmed. Deleting an unknown id is a no-op.
func (s *OrderService) Delete(ctx context.Context, actor domain.Actor, id, password string) error {
	if !actor.IsAdmin() {
		return ErrForbidden
	}
	if password != s.deletePassword {
		return ErrWrongDeletePassword
	}

	var removed *domain.Order
	err := s.orders.Update(ctx, func(all []domain.Order) ([]domain.Order, error) {
		o, ok := findOrder(all, id)
		if !ok {
			return all, nil
		}
		removed = &o
		out, _ := repository.Remove(all, id)
		return out, nil
	})
	if err != nil {
		return err
	}
	if removed == nil {
		return nil
	}

	s.orders.Mirror(ctx, http.MethodDelete, "/"+id, nil)
	publish(ctx, s.publisher, domain.EventOrderDeleted, s.event(actor, *removed, ""))
	return nil
}

func (s *OrderService) event(actor domain.Actor, o domain.Order, prev domain.OrderStatus) domain.OrderEvent {
	return domain.OrderEvent{
		OrderID:     o.ID,
		CustomerID:  o.CustomerID,
		Status:      o.Status,
		PrevStatus:  prev,
		TotalAmount: o.TotalAmount,
		Actor:       actor.Username,
		At:          s.now(),
	}
}

func validateDate(s string) error {
	if _, err := time.Parse(time.DateOnly, strings.TrimSpace(s)); err != nil {
		return invalid("delivery date must be YYYY-MM-DD")
	}
	return nil
}

func findOrder(items []domain.Order, id string) (domain.Order, bool) {
	for _, o := range items {
		if o.ID == id {
			return o, true
		}
	}
	return domain.Order{}, false
}

func findCustomer(items []domain.Customer, id string) (domain.Customer, bool) {
	for _, c := range items {
		if c.ID == id {
			return c, true
		}
	}
	return domain.Customer{}, false
}
