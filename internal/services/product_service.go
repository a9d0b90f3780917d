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
)

type ProductInput struct {
	Name  string          `json:"name"`
	Price decimal.Decimal `json:"price"`
	Image string          `json:"image"`
}

func (in ProductInput) validate() error {
	if strings.TrimSpace(in.Name) == "" {
		return invalid("product name is required")
	}
	if !in.Price.IsPositive() {
		return invalid("product price must be greater than zero")
	}
	return nil
}

// Catalog splits products by approval state as seen by one actor.
type Catalog struct {
	Approved []domain.Product `json:"approved"`
	Pending  []domain.Product `json:"pending"`
}

type ProductService struct {
	products  *repository.Collection[domain.Product]
	publisher rabbit.PublisherInterface
	now       func() time.Time
}

func NewProductService(products *repository.Collection[domain.Product], pub rabbit.PublisherInterface) *ProductService {
	return &ProductService{
		products:  products,
		publisher: pub,
		now:       time.Now,
	}
}

// visible: approved products to everyone, pending ones to admins and to
// the salesperson who submitted them.
func visible(actor domain.Actor, p domain.Product) bool {
	return !p.IsPendingApproval || actor.IsAdmin() || actor.Owns(p.CreatedBy)
}

func (s *ProductService) List(ctx context.Context, actor domain.Actor) (*Catalog, error) {
	all, err := s.products.Load(ctx)
	if err != nil {
		return nil, err
	}
	cat := &Catalog{Approved: []domain.Product{}, Pending: []domain.Product{}}
	for _, p := range all {
		switch {
		case !p.IsPendingApproval:
			cat.Approved = append(cat.Approved, p)
		case visible(actor, p):
			cat.Pending = append(cat.Pending, p)
		}
	}
	return cat, nil
}

func (s *ProductService) Get(ctx context.Context, actor domain.Actor, id string) (*domain.Product, error) {
	p, ok, err := s.products.Find(ctx, id)
	if err != nil {
		return nil, err
	}
	if !ok || !visible(actor, p) {
		return nil, ErrProductNotFound
	}
	return &p, nil
}

// Create adds a product. Salesperson submissions wait for admin approval.
func (s *ProductService) Create(ctx context.Context, actor domain.Actor, in ProductInput) (*domain.Product, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}

	p := domain.Product{
		ID:                domain.NewID(),
		Name:              strings.TrimSpace(in.Name),
		Price:             in.Price,
		Image:             imageOrPlaceholder(in.Image),
		CreatedAt:         s.now(),
		IsPendingApproval: actor.Role == domain.RoleSalesperson,
		CreatedBy:         actor.Username,
	}
	err := s.products.Update(ctx, func(items []domain.Product) ([]domain.Product, error) {
		return append(items, p), nil
	})
	if err != nil {
		return nil, err
	}

	s.products.Mirror(ctx, http.MethodPost, "", p)
	publish(ctx, s.publisher, domain.EventProductCreated, s.event(actor, p))
	return &p, nil
}

// Update edits an approved product. Editing never re-triggers approval.
func (s *ProductService) Update(ctx context.Context, actor domain.Actor, id string, in ProductInput) (*domain.Product, error) {
	if !actor.IsAdmin() {
		return nil, ErrForbidden
	}
	if err := in.validate(); err != nil {
		return nil, err
	}

	var updated domain.Product
	err := s.products.Update(ctx, func(items []domain.Product) ([]domain.Product, error) {
		p, ok := findProduct(items, id)
		if !ok {
			return nil, ErrProductNotFound
		}
		if p.IsPendingApproval {
			return nil, fmt.Errorf("%w: product is awaiting approval", ErrNotEditable)
		}
		p.Name = strings.TrimSpace(in.Name)
		p.Price = in.Price
		p.Image = imageOrPlaceholder(in.Image)
		p.UpdatedAt = s.now()
		updated = p
		out, _ := repository.Replace(items, p)
		return out, nil
	})
	if err != nil {
		return nil, err
	}

	s.products.Mirror(ctx, http.MethodPut, "/"+id, updated)
	return &updated, nil
}

func (s *ProductService) Approve(ctx context.Context, actor domain.Actor, id string) (*domain.Product, error) {
	if !actor.IsAdmin() {
		return nil, ErrForbidden
	}

	var approved domain.Product
	err := s.products.Update(ctx, func(items []domain.Product) ([]domain.Product, error) {
		p, ok := findProduct(items, id)
		if !ok {
			return nil, ErrProductNotFound
		}
		if !p.IsPendingApproval {
			return nil, fmt.Errorf("%w: product is not awaiting approval", ErrNotEditable)
		}
		p.IsPendingApproval = false
		approved = p
		out, _ := repository.Replace(items, p)
		return out, nil
	})
	if err != nil {
		return nil, err
	}

	s.products.Mirror(ctx, http.MethodPost, "/"+id+"/approve", nil)
	publish(ctx, s.publisher, domain.EventProductApproved, s.event(actor, approved))
	return &approved, nil
}

// Reject discards a pending submission. Rejected products are not kept.
func (s *ProductService) Reject(ctx context.Context, actor domain.Actor, id string) error {
	if !actor.IsAdmin() {
		return ErrForbidden
	}

	var rejected domain.Product
	err := s.products.Update(ctx, func(items []domain.Product) ([]domain.Product, error) {
		p, ok := findProduct(items, id)
		if !ok {
			return nil, ErrProductNotFound
		}
		if !p.IsPendingApproval {
			return nil, fmt.Errorf("%w: product is not awaiting approval", ErrNotEditable)
		}
		rejected = p
		out, _ := repository.Remove(items, id)
		return out, nil
	})
	if err != nil {
		return err
	}

	s.products.Mirror(ctx, http.MethodDelete, "/"+id, nil)
	publish(ctx, s.publisher, domain.EventProductRejected, s.event(actor, rejected))
	return nil
}

// Delete removes a product. Admins may delete anything; salespeople may
// withdraw their own pending submissions. Unknown ids are a no-op.
func (s *ProductService) Delete(ctx context.Context, actor domain.Actor, id string) error {
	removed := false
	err := s.products.Update(ctx, func(items []domain.Product) ([]domain.Product, error) {
		p, ok := findProduct(items, id)
		if !ok {
			return items, nil
		}
		if !actor.IsAdmin() && !(p.IsPendingApproval && actor.Owns(p.CreatedBy)) {
			return nil, ErrForbidden
		}
		out, _ := repository.Remove(items, id)
		removed = true
		return out, nil
	})
	if err != nil {
		return err
	}
	if removed {
		s.products.Mirror(ctx, http.MethodDelete, "/"+id, nil)
	}
	return nil
}

func (s *ProductService) event(actor domain.Actor, p domain.Product) domain.ProductEvent {
	return domain.ProductEvent{
		ProductID: p.ID,
		Name:      p.Name,
		CreatedBy: p.CreatedBy,
		Pending:   p.IsPendingApproval,
		Actor:     actor.Username,
		At:        s.now(),
	}
}

func findProduct(items []domain.Product, id string) (domain.Product, bool) {
	for _, p := range items {
		if p.ID == id {
			return p, true
		}
	}
	return domain.Product{}, false
}

func imageOrPlaceholder(img string) string {
	if img = strings.TrimSpace(img); img == "" {
		return domain.PlaceholderImage
	}
	return img
}
