package services

import (
	"context"
	"crypto/subtle"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"sales-order-service/internal/auth"
	"sales-order-service/internal/domain"
	"sales-order-service/internal/infra/remote"
	"sales-order-service/internal/repository"
)

type AuthOptions struct {
	AdminUsername string
	AdminPassword string
	TokenTTL      time.Duration
}

type LoginResult struct {
	Token     string       `json:"token"`
	User      domain.Actor `json:"user"`
	ExpiresAt time.Time    `json:"expiresAt"`
}

// AuthService checks credentials against the remote service first and the
// local rules second, then records a session.
type AuthService struct {
	remote       remote.ClientInterface
	salespersons *SalespersonService
	sessions     *repository.Sessions
	issuer       *auth.Issuer
	opts         AuthOptions
	now          func() time.Time
}

// NewAuthService builds the gate; rc may be nil.
func NewAuthService(rc remote.ClientInterface, sp *SalespersonService, sessions *repository.Sessions, issuer *auth.Issuer, opts AuthOptions) *AuthService {
	return &AuthService{
		remote:       rc,
		salespersons: sp,
		sessions:     sessions,
		issuer:       issuer,
		opts:         opts,
		now:          time.Now,
	}
}

func (s *AuthService) Login(ctx context.Context, role domain.Role, username, password string) (*LoginResult, error) {
	username = strings.TrimSpace(username)
	if !role.Valid() || username == "" || password == "" {
		return nil, invalid("role, username and password are required")
	}

	actor, upstream, ok := s.remoteLogin(ctx, role, username, password)
	if !ok {
		actor, ok = s.localLogin(ctx, role, username, password)
	}
	if !ok {
		return nil, ErrInvalidCredentials
	}

	now := s.now()
	sess := domain.Session{
		ID:        domain.NewID(),
		Actor:     actor,
		Token:     upstream,
		IssuedAt:  now,
		ExpiresAt: now.Add(s.opts.TokenTTL),
	}
	if err := s.sessions.Put(ctx, sess); err != nil {
		return nil, err
	}
	token, err := s.issuer.Issue(sess)
	if err != nil {
		return nil, err
	}

	slog.InfoContext(ctx, "login", "role", actor.Role, "username", actor.Username, "upstream", upstream != "")
	return &LoginResult{Token: token, User: actor, ExpiresAt: sess.ExpiresAt}, nil
}

func (s *AuthService) remoteLogin(ctx context.Context, role domain.Role, username, password string) (domain.Actor, string, bool) {
	if s.remote == nil {
		return domain.Actor{}, "", false
	}
	resp, err := s.remote.Login(ctx, remote.LoginRequest{Role: string(role), Username: username, Password: password})
	if err != nil {
		slog.WarnContext(ctx, "remote login failed, using local rules", "err", err)
		return domain.Actor{}, "", false
	}
	if resp == nil {
		return domain.Actor{}, "", false
	}

	actor := domain.Actor{Role: domain.Role(resp.User.Role), Username: resp.User.Username, Name: resp.User.Name}
	if !actor.Role.Valid() {
		actor.Role = role
	}
	if actor.Username == "" {
		actor.Username = username
	}
	if actor.Name == "" {
		actor.Name = actor.Username
	}
	return actor, resp.Token, true
}

func (s *AuthService) localLogin(ctx context.Context, role domain.Role, username, password string) (domain.Actor, bool) {
	switch role {
	case domain.RoleAdmin:
		if equal(username, s.opts.AdminUsername) && equal(password, s.opts.AdminPassword) {
			return domain.Actor{Role: domain.RoleAdmin, Username: username, Name: username}, true
		}
	case domain.RoleSalesperson:
		if sp, ok := s.salespersons.Verify(ctx, username, password); ok {
			return domain.Actor{Role: domain.RoleSalesperson, Username: sp.Username, Name: sp.Name}, true
		}
	}
	return domain.Actor{}, false
}

// Authenticate resolves a bearer token to a live session.
func (s *AuthService) Authenticate(ctx context.Context, token string) (*domain.Session, error) {
	claims, err := s.issuer.Parse(token)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnauthorized, err)
	}
	sess, err := s.sessions.Get(ctx, claims.ID)
	if errors.Is(err, repository.ErrSessionNotFound) {
		return nil, fmt.Errorf("%w: session ended", ErrUnauthorized)
	}
	if err != nil {
		return nil, err
	}
	if sess.Expired(s.now()) {
		_ = s.sessions.Delete(ctx, sess.ID)
		return nil, fmt.Errorf("%w: session expired", ErrUnauthorized)
	}
	return sess, nil
}

func (s *AuthService) Logout(ctx context.Context, sessionID string) error {
	return s.sessions.Delete(ctx, sessionID)
}

func equal(a, b string) bool {
	return subtle.ConstantTimeCompare([]byte(a), []byte(b)) == 1
}
