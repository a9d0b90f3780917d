package services

import (
	"context"
	"net/http"
	"strings"
	"time"

	"sales-order-service/internal/domain"
	"sales-order-service/internal/repository"
)

type CustomerInput struct {
	Name    string `json:"name"`
	Address string `json:"address"`
	Contact string `json:"contact"`
	Phone   string `json:"phone"`
}

func (in CustomerInput) validate() error {
	if strings.TrimSpace(in.Name) == "" || strings.TrimSpace(in.Address) == "" {
		return invalid("customer name and address are required")
	}
	return nil
}

type CustomerService struct {
	customers *repository.Collection[domain.Customer]
	now       func() time.Time
}

func NewCustomerService(customers *repository.Collection[domain.Customer]) *CustomerService {
	return &CustomerService{customers: customers, now: time.Now}
}

func (s *CustomerService) List(ctx context.Context) ([]domain.Customer, error) {
	return s.customers.Load(ctx)
}

func (s *CustomerService) Get(ctx context.Context, id string) (*domain.Customer, error) {
	c, ok, err := s.customers.Find(ctx, id)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrCustomerNotFound
	}
	return &c, nil
}

func (s *CustomerService) Create(ctx context.Context, in CustomerInput) (*domain.Customer, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}
	c := domain.Customer{
		ID:        domain.NewID(),
		Name:      strings.TrimSpace(in.Name),
		Address:   strings.TrimSpace(in.Address),
		Contact:   strings.TrimSpace(in.Contact),
		Phone:     strings.TrimSpace(in.Phone),
		CreatedAt: s.now(),
	}
	err := s.customers.Update(ctx, func(items []domain.Customer) ([]domain.Customer, error) {
		return append(items, c), nil
	})
	if err != nil {
		return nil, err
	}
	s.customers.Mirror(ctx, http.MethodPost, "", c)
	return &c, nil
}

// Update replaces the editable fields. Orders keep their own snapshot of
// the customer's name and address.
func (s *CustomerService) Update(ctx context.Context, id string, in CustomerInput) (*domain.Customer, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}
	var updated domain.Customer
	err := s.customers.Update(ctx, func(items []domain.Customer) ([]domain.Customer, error) {
		c, ok := findCustomer(items, id)
		if !ok {
			return nil, ErrCustomerNotFound
		}
		c.Name = strings.TrimSpace(in.Name)
		c.Address = strings.TrimSpace(in.Address)
		c.Contact = strings.TrimSpace(in.Contact)
		c.Phone = strings.TrimSpace(in.Phone)
		c.UpdatedAt = s.now()
		updated = c
		out, _ := repository.Replace(items, c)
		return out, nil
	})
	if err != nil {
		return nil, err
	}
	s.customers.Mirror(ctx, http.MethodPut, "/"+id, updated)
	return &updated, nil
}

// Delete is admin only and leaves orders referencing the customer intact.
func (s *CustomerService) Delete(ctx context.Context, actor domain.Actor, id string) error {
	if !actor.IsAdmin() {
		return ErrForbidden
	}
	removed := false
	err := s.customers.Update(ctx, func(items []domain.Customer) ([]domain.Customer, error) {
		var out []domain.Customer
		out, removed = repository.Remove(items, id)
		return out, nil
	})
	if err != nil {
		return err
	}
	if removed {
		s.customers.Mirror(ctx, http.MethodDelete, "/"+id, nil)
	}
	return nil
}
