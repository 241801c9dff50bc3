// Package session reads who is signed in from the API token. The token is
// not verified here; the backend does that on every request and the role only
// decides which actions the terminal offers.
package session

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/MrJamesThe3rd/procura/internal/workflow"
)

var ErrNoToken = errors.New("API token is not configured")

type Session struct {
	Subject   string
	Name      string
	Role      workflow.Role
	ExpiresAt time.Time
}

type claims struct {
	Name  string `json:"name"`
	Role  string `json:"role"`
	Email string `json:"email"`
	jwt.RegisteredClaims
}

// FromToken extracts the session claims of a bearer token.
func FromToken(token string) (Session, error) {
	token = strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(token), "Bearer "))
	if token == "" {
		return Session{}, ErrNoToken
	}

	var c claims
	if _, _, err := jwt.NewParser().ParseUnverified(token, &c); err != nil {
		return Session{}, fmt.Errorf("reading token claims: %w", err)
	}

	s := Session{
		Subject: c.Subject,
		Name:    c.Name,
		Role:    workflow.Role(strings.ToLower(strings.TrimSpace(c.Role))),
	}

	if s.Name == "" {
		s.Name = c.Email
	}

	if c.ExpiresAt != nil {
		s.ExpiresAt = c.ExpiresAt.Time
	}

	return s, nil
}

// Expired reports whether the token has an expiry that is in the past.
func (s Session) Expired(now time.Time) bool {
	return !s.ExpiresAt.IsZero() && now.After(s.ExpiresAt)
}

func (s Session) String() string {
	switch {
	case s.Name == "":
		return "гость"
	case s.Role == "":
		return s.Name
	default:
		return s.Name + " (" + workflow.RoleLabel(s.Role) + ")"
	}
}
