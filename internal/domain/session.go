package domain

import "time"

type Role string

const (
	RoleAdmin       Role = "admin"
	RoleSalesperson Role = "salesperson"
)

func (r Role) Valid() bool {
	return r == RoleAdmin || r == RoleSalesperson
}

// Actor is the authenticated identity performing an action.
type Actor struct {
	Role     Role   `json:"role"`
	Username string `json:"username"`
	Name     string `json:"name"`
}

func (a Actor) IsAdmin() bool { return a.Role == RoleAdmin }

// Owns reports whether createdBy identifies this actor.
func (a Actor) Owns(createdBy string) bool {
	return createdBy != "" && createdBy == a.Username
}

// Session is created on login and removed on logout. Token is the bearer
// issued by the upstream service, if one answered the login.
type Session struct {
	ID        string    `json:"id"`
	Actor     Actor     `json:"user"`
	Token     string    `json:"token,omitempty"`
	IssuedAt  time.Time `json:"issuedAt"`
	ExpiresAt time.Time `json:"expiresAt"`
}

func (s Session) Expired(now time.Time) bool {
	return !s.ExpiresAt.IsZero() && now.After(s.ExpiresAt)
}
