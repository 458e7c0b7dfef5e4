// Package identity holds the local record of customers authenticated by the
// external identity provider.
package identity

import (
	"context"
	"regexp"
	"strings"
	"time"

	"github.com/apparel/storefront/internal/domain/shared"
)

var emailPattern = regexp.MustCompile(`^[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}$`)

// Principal is the caller as vouched for by the identity provider
type Principal struct {
	UserID string
	Email  string
	Admin  bool
}

// IsAuthenticated reports whether the principal names a user
func (p Principal) IsAuthenticated() bool {
	return strings.TrimSpace(p.UserID) != ""
}

// User is a customer known to the store. ID is the identity provider subject.
type User struct {
	ID        string
	Email     string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// NewUser creates a user from identity claims
func NewUser(id, email string) (*User, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return nil, shared.ErrUnauthenticated
	}
	email = strings.ToLower(strings.TrimSpace(email))
	if email != "" {
		if len(email) > 200 {
			return nil, shared.NewDomainError("INVALID_EMAIL", "Email cannot exceed 200 characters")
		}
		if !emailPattern.MatchString(email) {
			return nil, shared.NewDomainError("INVALID_EMAIL", "Invalid email format")
		}
	}
	now := time.Now()
	return &User{ID: id, Email: email, CreatedAt: now, UpdatedAt: now}, nil
}

// UserRepository persists users
type UserRepository interface {
	// FindByID finds a user by identity subject
	FindByID(ctx context.Context, id string) (*User, error)
	// Upsert inserts the user or refreshes its email
	Upsert(ctx context.Context, user *User) error
}
