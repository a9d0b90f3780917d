package services

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"sales-order-service/internal/domain"
	"sales-order-service/internal/repository"

	"golang.org/x/crypto/bcrypt"
)

type SalespersonInput struct {
	Username string `json:"username"`
	Name     string `json:"name"`
	Phone    string `json:"phone"`
	Password string `json:"password"`
}

// SalespersonService manages salesperson accounts. Every method except
// Verify is admin only.
type SalespersonService struct {
	salespersons *repository.Collection[domain.Salesperson]
	cost         int
	now          func() time.Time
}

func NewSalespersonService(salespersons *repository.Collection[domain.Salesperson]) *SalespersonService {
	return &SalespersonService{
		salespersons: salespersons,
		cost:         bcrypt.DefaultCost,
		now:          time.Now,
	}
}

func (s *SalespersonService) List(ctx context.Context, actor domain.Actor) ([]domain.SalespersonView, error) {
	if !actor.IsAdmin() {
		return nil, ErrForbidden
	}
	all, err := s.salespersons.Load(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]domain.SalespersonView, 0, len(all))
	for _, sp := range all {
		out = append(out, sp.View())
	}
	return out, nil
}

func (s *SalespersonService) Get(ctx context.Context, actor domain.Actor, id string) (*domain.SalespersonView, error) {
	if !actor.IsAdmin() {
		return nil, ErrForbidden
	}
	sp, ok, err := s.salespersons.Find(ctx, id)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrSalespersonNotFound
	}
	v := sp.View()
	return &v, nil
}

func (s *SalespersonService) Create(ctx context.Context, actor domain.Actor, in SalespersonInput) (*domain.SalespersonView, error) {
	if !actor.IsAdmin() {
		return nil, ErrForbidden
	}
	username := strings.TrimSpace(in.Username)
	if username == "" || in.Password == "" {
		return nil, invalid("username and password are required")
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), s.cost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	name := strings.TrimSpace(in.Name)
	if name == "" {
		name = username
	}
	sp := domain.Salesperson{
		ID:           domain.NewID(),
		Username:     username,
		Name:         name,
		Phone:        strings.TrimSpace(in.Phone),
		PasswordHash: string(hash),
		CreatedAt:    s.now(),
	}
	err = s.salespersons.Update(ctx, func(items []domain.Salesperson) ([]domain.Salesperson, error) {
		for _, existing := range items {
			if strings.EqualFold(existing.Username, username) {
				return nil, fmt.Errorf("%w: %s", ErrDuplicateUsername, username)
			}
		}
		return append(items, sp), nil
	})
	if err != nil {
		return nil, err
	}

	v := sp.View()
	s.salespersons.Mirror(ctx, http.MethodPost, "", v)
	return &v, nil
}

// Update changes name and phone, and the password when one is given. The
// username is fixed at creation.
func (s *SalespersonService) Update(ctx context.Context, actor domain.Actor, id string, in SalespersonInput) (*domain.SalespersonView, error) {
	if !actor.IsAdmin() {
		return nil, ErrForbidden
	}
	var hash []byte
	if in.Password != "" {
		var err error
		if hash, err = bcrypt.GenerateFromPassword([]byte(in.Password), s.cost); err != nil {
			return nil, fmt.Errorf("hash password: %w", err)
		}
	}

	var updated domain.Salesperson
	err := s.salespersons.Update(ctx, func(items []domain.Salesperson) ([]domain.Salesperson, error) {
		var sp domain.Salesperson
		found := false
		for _, it := range items {
			if it.ID == id {
				sp, found = it, true
				break
			}
		}
		if !found {
			return nil, ErrSalespersonNotFound
		}
		if name := strings.TrimSpace(in.Name); name != "" {
			sp.Name = name
		}
		sp.Phone = strings.TrimSpace(in.Phone)
		if hash != nil {
			sp.PasswordHash = string(hash)
		}
		sp.UpdatedAt = s.now()
		updated = sp
		out, _ := repository.Replace(items, sp)
		return out, nil
	})
	if err != nil {
		return nil, err
	}

	v := updated.View()
	s.salespersons.Mirror(ctx, http.MethodPut, "/"+id, v)
	return &v, nil
}

func (s *SalespersonService) Delete(ctx context.Context, actor domain.Actor, id string) error {
	if !actor.IsAdmin() {
		return ErrForbidden
	}
	removed := false
	err := s.salespersons.Update(ctx, func(items []domain.Salesperson) ([]domain.Salesperson, error) {
		var out []domain.Salesperson
		out, removed = repository.Remove(items, id)
		return out, nil
	})
	if err != nil {
		return err
	}
	if removed {
		s.salespersons.Mirror(ctx, http.MethodDelete, "/"+id, nil)
	}
	return nil
}

// Verify checks a salesperson's credentials against the stored hash. Hashes
// are never mirrored, so only the local store is consulted.
func (s *SalespersonService) Verify(ctx context.Context, username, password string) (*domain.Salesperson, bool) {
	all, err := s.salespersons.LoadLocal(ctx)
	if err != nil {
		slog.ErrorContext(ctx, "salesperson lookup failed", "err", err)
		return nil, false
	}
	for _, sp := range all {
		if sp.Username != username {
			continue
		}
		if bcrypt.CompareHashAndPassword([]byte(sp.PasswordHash), []byte(password)) == nil {
			return &sp, true
		}
		return nil, false
	}
	return nil, false
}
